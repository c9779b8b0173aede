package reconcile

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"vnpgate/internal/models"
	"vnpgate/internal/vnpay"
)

// Disposition is the final classified outcome of processing one
// callback. It drives both the order mutation and the gateway
// acknowledgement.
type Disposition string

const (
	DispositionInvalidSignature  Disposition = "invalid_signature"
	DispositionOrderNotFound     Disposition = "order_not_found"
	DispositionAmountMismatch    Disposition = "amount_mismatch"
	DispositionAlreadyConfirmed  Disposition = "already_confirmed"
	DispositionConfirmed         Disposition = "confirmed"
	DispositionRejectedByGateway Disposition = "rejected_by_gateway"
	DispositionInternalError     Disposition = "internal_error"
)

// amountScale is the factor VNPay applies to amounts on the wire
// (vnp_Amount = order amount * 100).
const amountScale = 100

// Outcome is what one reconciliation run produced.
type Outcome struct {
	Disposition Disposition
	Result      vnpay.VerificationResult
	Order       *models.Order
}

// Engine reconciles verified callbacks against the order ledger.
// Each gate in Process fixes exactly one Disposition; nothing past a
// failed gate runs, and the ledger is only written on the last gate.
type Engine struct {
	signer *vnpay.Signer
	ledger Ledger
	logger *zap.Logger

	// failOnReject controls whether an authentic decline moves the
	// order to failed or leaves it pending for manual review.
	failOnReject bool
}

// NewEngine creates a reconciliation engine. failOnReject selects the
// policy for authentic gateway declines.
func NewEngine(signer *vnpay.Signer, ledger Ledger, failOnReject bool, logger *zap.Logger) *Engine {
	return &Engine{
		signer:       signer,
		ledger:       ledger,
		logger:       logger,
		failOnReject: failOnReject,
	}
}

// Verify authenticates and classifies a callback without touching the
// ledger. This is the whole of the return-URL flow: the browser
// redirect is attacker-observable and replayable, so it may inform the
// user but never move an order. Only ProcessNotification mutates state.
func (e *Engine) Verify(params vnpay.CallbackParams) vnpay.VerificationResult {
	return vnpay.Classify(params, e.signer.VerifyParams(params))
}

// ProcessNotification runs the full IPN pipeline for one callback:
// authenticate, match, validate amount, then apply or reject. The
// returned Outcome always carries a Disposition; ledger failures
// surface as DispositionInternalError so the gateway retries instead
// of treating the payment as rejected.
func (e *Engine) ProcessNotification(ctx context.Context, params vnpay.CallbackParams) Outcome {
	// Received -> Authenticated
	result := e.Verify(params)
	if !result.IsAuthentic {
		return Outcome{Disposition: DispositionInvalidSignature, Result: result}
	}

	// Authenticated -> Matched
	ref := params.TxnRef()
	order, err := e.ledger.FindByReference(ctx, ref)
	if err != nil {
		e.logger.Error("ledger lookup failed", zap.String("ref", ref), zap.Error(err))
		return Outcome{Disposition: DispositionInternalError, Result: result}
	}
	if order == nil || order.OrderID != ref {
		return Outcome{Disposition: DispositionOrderNotFound, Result: result}
	}

	// Matched -> Validated. A matched order proves identity, not
	// financial correctness: the reported amount is re-checked against
	// the ledger so a valid signature replayed onto a reused reference
	// cannot confirm a different amount.
	wireAmount, err := strconv.ParseInt(params.Get(vnpay.ParamAmount), 10, 64)
	if err != nil || wireAmount != order.Amount*amountScale {
		return Outcome{Disposition: DispositionAmountMismatch, Result: result, Order: order}
	}

	// Validated -> Applied | Rejected
	if order.Status == models.OrderStatusCompleted {
		// At-least-once delivery: re-confirmations are a no-op.
		return Outcome{Disposition: DispositionAlreadyConfirmed, Result: result, Order: order}
	}

	if !result.IsSuccess {
		return e.reject(ctx, order, result)
	}

	applied, err := e.ledger.TransitionIfPending(ctx, order.OrderID, models.OrderStatusCompleted)
	if err != nil {
		e.logger.Error("ledger transition failed", zap.String("order_id", order.OrderID), zap.Error(err))
		return Outcome{Disposition: DispositionInternalError, Result: result, Order: order}
	}
	if !applied {
		// Lost the race to a concurrent duplicate, or the order left
		// pending through another path. Either way: nothing to redo.
		return Outcome{Disposition: DispositionAlreadyConfirmed, Result: result, Order: order}
	}

	order.Status = models.OrderStatusCompleted
	e.logger.Info("order confirmed",
		zap.String("order_id", order.OrderID),
		zap.Int64("amount", order.Amount),
		zap.String("transaction_no", params.Get(vnpay.ParamTransactionNo)))
	return Outcome{Disposition: DispositionConfirmed, Result: result, Order: order}
}

func (e *Engine) reject(ctx context.Context, order *models.Order, result vnpay.VerificationResult) Outcome {
	if e.failOnReject {
		applied, err := e.ledger.TransitionIfPending(ctx, order.OrderID, models.OrderStatusFailed)
		if err != nil {
			e.logger.Error("ledger transition failed", zap.String("order_id", order.OrderID), zap.Error(err))
			return Outcome{Disposition: DispositionInternalError, Result: result, Order: order}
		}
		if applied {
			order.Status = models.OrderStatusFailed
		}
	}
	e.logger.Info("payment rejected by gateway",
		zap.String("order_id", order.OrderID),
		zap.String("response_code", result.ResponseCode),
		zap.String("reason", result.Reason))
	return Outcome{Disposition: DispositionRejectedByGateway, Result: result, Order: order}
}
