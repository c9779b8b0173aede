package notify

import (
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"vnpgate/internal/models"
)

// Notifier posts payment reports to a Telegram channel. Best effort:
// a failed report is logged and dropped, it never affects the
// acknowledgement sent to the gateway.
type Notifier struct {
	chatID string
	client *resty.Client
	logger *zap.Logger
}

// New creates a Notifier, or nil when the bot token or chat id is not
// configured. Callers treat a nil Notifier as "reporting disabled".
func New(botToken, chatID string, logger *zap.Logger) *Notifier {
	if botToken == "" || chatID == "" {
		return nil
	}
	return &Notifier{
		chatID: chatID,
		client: resty.New().SetBaseURL("https://api.telegram.org/bot" + botToken),
		logger: logger,
	}
}

// PaymentConfirmed reports a completed order.
func (n *Notifier) PaymentConfirmed(order *models.Order, transactionNo string) {
	text := fmt.Sprintf(
		"💵 Payment confirmed\n\nOrder: %s\nAmount: %d VND\nGateway transaction: %s",
		order.OrderID, order.Amount, transactionNo,
	)
	n.send(text)
}

// PaymentRejected reports an authentic gateway decline.
func (n *Notifier) PaymentRejected(order *models.Order, responseCode, reason string) {
	text := fmt.Sprintf(
		"❌ Payment rejected\n\nOrder: %s\nAmount: %d VND\nGateway code: %s (%s)",
		order.OrderID, order.Amount, responseCode, reason,
	)
	n.send(text)
}

func (n *Notifier) send(text string) {
	_, err := n.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"chat_id":    n.chatID,
			"text":       text,
			"parse_mode": "HTML",
		}).
		Post("/sendMessage")
	if err != nil {
		n.logger.Warn("telegram report failed", zap.Error(err))
	}
}
