package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vnpgate/internal/models"
	"vnpgate/internal/reconcile"
	"vnpgate/internal/vnpay"
)

const testSecret = "VNPAYSECRETKEY123456"

func newTestHandler(t *testing.T, ledger *reconcile.MemoryLedger) *CallbackHandler {
	t.Helper()
	signer, err := vnpay.NewSigner(testSecret)
	require.NoError(t, err)
	engine := reconcile.NewEngine(signer, ledger, false, zap.NewNop())
	return NewCallbackHandler(engine, nil, nil, nil, zap.NewNop())
}

func signedQuery(t *testing.T, ref, amount, code string) url.Values {
	t.Helper()
	signer, err := vnpay.NewSigner(testSecret)
	require.NoError(t, err)

	params := vnpay.CallbackParams{
		vnpay.ParamAmount:        amount,
		vnpay.ParamTxnRef:        ref,
		vnpay.ParamResponseCode:  code,
		vnpay.ParamTransactionNo: "14400996",
	}
	params[vnpay.ParamSecureHash] = signer.Sign(vnpay.Canonicalize(params))

	values := url.Values{}
	for key, val := range params {
		values.Set(key, val)
	}
	return values
}

func seedPending(ledger *reconcile.MemoryLedger, ref string, amount int64) {
	now := time.Now()
	ledger.Put(&models.Order{
		OrderID:   ref,
		Amount:    amount,
		Status:    models.OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func decodeAck(t *testing.T, rec *httptest.ResponseRecorder) reconcile.Ack {
	t.Helper()
	var ack reconcile.Ack
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	return ack
}

func TestNotificationGETConfirms(t *testing.T) {
	ledger := reconcile.NewMemoryLedger()
	seedPending(ledger, "ORDER1", 50000)
	h := newTestHandler(t, ledger)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/payment/vnpay/ipn?"+signedQuery(t, "ORDER1", "5000000", "00").Encode(), nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Notification(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)
	ack := decodeAck(t, rec)
	assert.Equal(t, "00", ack.RspCode)
	assert.Equal(t, "Confirm Success", ack.Message)

	stored, _ := ledger.FindByReference(context.Background(), "ORDER1")
	assert.Equal(t, models.OrderStatusCompleted, stored.Status)
}

func TestNotificationPOSTFormBehavesLikeGET(t *testing.T) {
	ledger := reconcile.NewMemoryLedger()
	seedPending(ledger, "ORDER1", 50000)
	h := newTestHandler(t, ledger)

	e := echo.New()
	body := signedQuery(t, "ORDER1", "5000000", "00").Encode()
	req := httptest.NewRequest(http.MethodPost, "/payment/vnpay/ipn", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Notification(e.NewContext(req, rec)))

	assert.Equal(t, "00", decodeAck(t, rec).RspCode)
	stored, _ := ledger.FindByReference(context.Background(), "ORDER1")
	assert.Equal(t, models.OrderStatusCompleted, stored.Status)
}

func TestNotificationTamperedSignature(t *testing.T) {
	ledger := reconcile.NewMemoryLedger()
	seedPending(ledger, "ORDER1", 50000)
	h := newTestHandler(t, ledger)

	values := signedQuery(t, "ORDER1", "5000000", "00")
	values.Set(vnpay.ParamSecureHash, strings.Repeat("0", 128))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/payment/vnpay/ipn?"+values.Encode(), nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Notification(e.NewContext(req, rec)))

	ack := decodeAck(t, rec)
	assert.Equal(t, "97", ack.RspCode)
	assert.Equal(t, "Invalid signature", ack.Message)

	stored, _ := ledger.FindByReference(context.Background(), "ORDER1")
	assert.Equal(t, models.OrderStatusPending, stored.Status)
}

func TestNotificationUnknownOrder(t *testing.T) {
	h := newTestHandler(t, reconcile.NewMemoryLedger())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/payment/vnpay/ipn?"+signedQuery(t, "UNKNOWN", "5000000", "00").Encode(), nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Notification(e.NewContext(req, rec)))
	assert.Equal(t, "01", decodeAck(t, rec).RspCode)
}

func TestNotificationDuplicateDelivery(t *testing.T) {
	ledger := reconcile.NewMemoryLedger()
	seedPending(ledger, "ORDER1", 50000)
	h := newTestHandler(t, ledger)

	e := echo.New()
	query := signedQuery(t, "ORDER1", "5000000", "00").Encode()

	for i, want := range []string{"00", "02"} {
		req := httptest.NewRequest(http.MethodGet, "/payment/vnpay/ipn?"+query, nil)
		rec := httptest.NewRecorder()
		require.NoError(t, h.Notification(e.NewContext(req, rec)))
		assert.Equal(t, want, decodeAck(t, rec).RspCode, "delivery %d", i+1)
	}
}

func TestReturnReportsWithoutMutating(t *testing.T) {
	ledger := reconcile.NewMemoryLedger()
	seedPending(ledger, "ORDER1", 50000)
	h := newTestHandler(t, ledger)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/payment/vnpay/return?"+signedQuery(t, "ORDER1", "5000000", "00").Encode(), nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Return(e.NewContext(req, rec)))

	var resp returnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Verified)
	assert.True(t, resp.Success)
	assert.Equal(t, "ORDER1", resp.OrderRef)

	// The browser redirect is for display only; the order waits for
	// the IPN.
	stored, _ := ledger.FindByReference(context.Background(), "ORDER1")
	assert.Equal(t, models.OrderStatusPending, stored.Status)
}

func TestReturnUnverifiedHidesDetails(t *testing.T) {
	h := newTestHandler(t, reconcile.NewMemoryLedger())

	values := signedQuery(t, "ORDER1", "5000000", "00")
	values.Set(vnpay.ParamSecureHash, strings.Repeat("f", 128))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/payment/vnpay/return?"+values.Encode(), nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Return(e.NewContext(req, rec)))

	var resp returnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Verified)
	assert.False(t, resp.Success)
	assert.Empty(t, resp.OrderRef, "unverified parameters are not echoed back")
}
