package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"vnpgate/internal/middleware"
	"vnpgate/internal/notify"
	"vnpgate/internal/reconcile"
	"vnpgate/internal/repository"
	"vnpgate/internal/vnpay"
)

// CallbackHandler serves the two gateway callback channels. Only the
// server-to-server IPN moves order state; the browser return route
// verifies and reports, nothing more.
type CallbackHandler struct {
	engine    *reconcile.Engine
	callbacks *repository.CallbackRepository // nil when running without a database
	deduper   middleware.CallbackDeduper
	notifier  *notify.Notifier // nil when reporting is disabled
	logger    *zap.Logger
}

func NewCallbackHandler(
	engine *reconcile.Engine,
	callbacks *repository.CallbackRepository,
	deduper middleware.CallbackDeduper,
	notifier *notify.Notifier,
	logger *zap.Logger,
) *CallbackHandler {
	return &CallbackHandler{
		engine:    engine,
		callbacks: callbacks,
		deduper:   deduper,
		notifier:  notifier,
		logger:    logger,
	}
}

// callbackParams collects the parameter set from the query string and,
// for POST, the form body. VNPay may deliver on either method; both
// feed the same verification path.
func callbackParams(c echo.Context) vnpay.CallbackParams {
	merged := url.Values{}
	for key, vals := range c.QueryParams() {
		merged[key] = vals
	}
	if form, err := c.FormParams(); err == nil {
		for key, vals := range form {
			merged[key] = vals
		}
	}
	return vnpay.ParamsFromValues(merged)
}

// Notification handles the IPN callback, GET or POST. The response is
// always HTTP 200 with the protocol ack body; the RspCode, not the
// HTTP status, tells the gateway what happened.
func (h *CallbackHandler) Notification(c echo.Context) error {
	params := callbackParams(c)
	ctx := c.Request().Context()

	outcome := h.engine.ProcessNotification(ctx, params)
	ack := reconcile.EncodeAck(outcome.Disposition)

	if h.callbacks != nil {
		if err := h.callbacks.Record(ctx, params, outcome.Result.IsAuthentic, string(outcome.Disposition), ack.RspCode); err != nil {
			h.logger.Warn("callback audit write failed", zap.Error(err))
		}
	}

	switch outcome.Disposition {
	case reconcile.DispositionInternalError:
		// A 99 ack asks the gateway to retry; release the dedup key so
		// the retry is not shed as a duplicate.
		if h.deduper != nil {
			if err := h.deduper.Forget(ctx, params.SecureHash()); err != nil {
				h.logger.Warn("dedup release failed", zap.Error(err))
			}
		}
	case reconcile.DispositionConfirmed:
		if h.notifier != nil {
			go h.notifier.PaymentConfirmed(outcome.Order, params.Get(vnpay.ParamTransactionNo))
		}
	case reconcile.DispositionRejectedByGateway:
		if h.notifier != nil {
			go h.notifier.PaymentRejected(outcome.Order, outcome.Result.ResponseCode, outcome.Result.Reason)
		}
	}

	h.logger.Info("ipn processed",
		zap.String("order_id", params.TxnRef()),
		zap.String("disposition", string(outcome.Disposition)),
		zap.String("rsp_code", ack.RspCode))

	return c.JSON(http.StatusOK, ack)
}

// returnResponse is what the checkout front-end renders after the
// browser redirect.
type returnResponse struct {
	Verified      bool   `json:"verified"`
	Success       bool   `json:"success"`
	OrderRef      string `json:"order_ref,omitempty"`
	Amount        string `json:"amount,omitempty"`
	BankCode      string `json:"bank_code,omitempty"`
	TransactionNo string `json:"transaction_no,omitempty"`
	PayDate       string `json:"pay_date,omitempty"`
	ResponseCode  string `json:"response_code,omitempty"`
	Message       string `json:"message"`
}

// Return handles the browser redirect after payment. Display only: the
// redirect is attacker-observable and replayable, so nothing here
// touches the ledger. The IPN is the authoritative channel.
func (h *CallbackHandler) Return(c echo.Context) error {
	params := callbackParams(c)
	result := h.engine.Verify(params)

	resp := returnResponse{
		Verified: result.IsAuthentic,
		Success:  result.IsAuthentic && result.IsSuccess,
		Message:  result.Reason,
	}
	if result.IsAuthentic {
		resp.OrderRef = params.TxnRef()
		resp.Amount = params.Get(vnpay.ParamAmount)
		resp.BankCode = params.Get(vnpay.ParamBankCode)
		resp.TransactionNo = params.Get(vnpay.ParamTransactionNo)
		resp.PayDate = params.Get(vnpay.ParamPayDate)
		resp.ResponseCode = result.ResponseCode
	}

	return c.JSON(http.StatusOK, resp)
}
