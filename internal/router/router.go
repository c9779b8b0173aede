package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"vnpgate/internal/handler"
	"vnpgate/internal/middleware"
)

// Setup configures all routes for the Echo server.
func Setup(
	e *echo.Echo,
	callbackHandler *handler.CallbackHandler,
	orderHandler *handler.OrderHandler,
	deduper middleware.CallbackDeduper,
) {
	// Global middleware
	e.Use(echomw.Recover())
	e.Use(middleware.CORS())

	// Gateway callback routes. The IPN may arrive as GET or POST and
	// both feed the same handler; duplicates are shed before it.
	paymentGroup := e.Group("/payment/vnpay")
	ipnGroup := paymentGroup.Group("/ipn")
	ipnGroup.Use(middleware.CallbackDedup(deduper))
	ipnGroup.GET("", callbackHandler.Notification)
	ipnGroup.POST("", callbackHandler.Notification)
	paymentGroup.GET("/return", callbackHandler.Return)

	// Order placement and inspection
	e.POST("/orders", orderHandler.Create)
	e.GET("/orders/:ref", orderHandler.Get)
	e.GET("/orders/:ref/callbacks", orderHandler.Callbacks)

	// Manual reconciliation against the gateway's merchant API
	e.POST("/admin/transactions/query", orderHandler.QueryTransaction)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
}
