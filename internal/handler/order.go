package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"vnpgate/internal/models"
	"vnpgate/internal/repository"
	"vnpgate/internal/vnpay"
)

// minOrderAmount is the gateway's minimum transaction amount in VND.
const minOrderAmount = 1000

// OrderStore is what the order API needs from storage. Both the GORM
// repository and the in-memory ledger satisfy it.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	FindByReference(ctx context.Context, ref string) (*models.Order, error)
}

// OrderHandler exposes the order-placement collaborator surface: it
// creates pending orders for the checkout flow and reports their state.
type OrderHandler struct {
	store     OrderStore
	callbacks *repository.CallbackRepository // nil when running without a database
	query     *vnpay.QueryClient
	logger    *zap.Logger
}

func NewOrderHandler(store OrderStore, callbacks *repository.CallbackRepository, query *vnpay.QueryClient, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		store:     store,
		callbacks: callbacks,
		query:     query,
		logger:    logger,
	}
}

type createOrderRequest struct {
	Amount    int64  `json:"amount"`
	OrderInfo string `json:"order_info"`
}

// Create places a new pending order and returns its reference. The
// payment URL pointing the customer at the gateway is built by the
// checkout collaborator, not here.
func (h *OrderHandler) Create(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Amount < minOrderAmount {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("amount must be at least %d VND", minOrderAmount),
		})
	}

	now := time.Now()
	order := &models.Order{
		OrderID:   newOrderRef(now),
		Amount:    req.Amount,
		OrderInfo: req.OrderInfo,
		Status:    models.OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.Create(c.Request().Context(), order); err != nil {
		h.logger.Error("order create failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create order"})
	}

	h.logger.Info("order created",
		zap.String("order_id", order.OrderID),
		zap.Int64("amount", order.Amount))
	return c.JSON(http.StatusCreated, order)
}

// Get returns one order by reference.
func (h *OrderHandler) Get(c echo.Context) error {
	ref := c.Param("ref")
	order, err := h.store.FindByReference(c.Request().Context(), ref)
	if err != nil {
		h.logger.Error("order lookup failed", zap.String("ref", ref), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
	}
	if order == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "order not found"})
	}
	return c.JSON(http.StatusOK, order)
}

// Callbacks returns the logged IPN deliveries for one order.
func (h *OrderHandler) Callbacks(c echo.Context) error {
	if h.callbacks == nil {
		return c.JSON(http.StatusNotImplemented, map[string]string{"error": "audit log requires a database"})
	}
	logs, err := h.callbacks.FindByOrderID(c.Request().Context(), c.Param("ref"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
	}
	return c.JSON(http.StatusOK, logs)
}

type queryTransactionRequest struct {
	OrderRef        string `json:"order_ref"`
	TransactionDate string `json:"transaction_date"`
	OrderInfo       string `json:"order_info"`
}

// QueryTransaction asks the gateway for the authoritative state of a
// transaction. Manual reconciliation aid for when an IPN was missed.
func (h *OrderHandler) QueryTransaction(c echo.Context) error {
	if h.query == nil {
		return c.JSON(http.StatusNotImplemented, map[string]string{"error": "gateway query is not configured"})
	}

	var req queryTransactionRequest
	if err := c.Bind(&req); err != nil || req.OrderRef == "" || req.TransactionDate == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "order_ref and transaction_date are required"})
	}

	result, err := h.query.Query(c.Request().Context(), vnpay.QueryRequest{
		TxnRef:          req.OrderRef,
		TransactionDate: req.TransactionDate,
		OrderInfo:       req.OrderInfo,
		IPAddr:          c.RealIP(),
	})
	if err != nil {
		h.logger.Error("gateway query failed", zap.String("ref", req.OrderRef), zap.Error(err))
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "gateway query failed"})
	}
	return c.JSON(http.StatusOK, result)
}

// newOrderRef builds a unique merchant reference: a timestamp for
// operators plus a uuid fragment for uniqueness.
func newOrderRef(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD%s%s", now.Format("20060102150405"), suffix)
}
