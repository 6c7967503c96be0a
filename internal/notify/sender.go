package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/vibecommerce/storefront/internal/orders"
)

// Sender delivers order confirmations. Implementations must treat delivery
// as best-effort; callers never roll back an order on a failed send.
type Sender interface {
	SendOrderConfirmation(ctx context.Context, order *orders.Order) error
}

type SendGridSender struct {
	client    *sendgrid.Client
	fromName  string
	fromEmail string
}

func NewSendGridSender(apiKey, fromName, fromEmail string) *SendGridSender {
	return &SendGridSender{
		client:    sendgrid.NewSendClient(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SendGridSender) SendOrderConfirmation(ctx context.Context, order *orders.Order) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(order.CustomerName, order.CustomerEmail)
	subject := fmt.Sprintf("Order Confirmation - %s", order.OrderNumber)

	var lines strings.Builder
	fmt.Fprintf(&lines, "Hi %s,\n\nThanks for your order %s.\n\n", order.CustomerName, order.OrderNumber)
	for _, item := range order.Items {
		fmt.Fprintf(&lines, "  %s x%d - $%.2f\n", item.Name, item.Quantity, item.Price*float64(item.Quantity))
	}
	fmt.Fprintf(&lines, "\nTotal: $%.2f\n", order.Total)

	message := mail.NewSingleEmail(from, subject, to, lines.String(), "")
	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected message: status %d", resp.StatusCode)
	}
	return nil
}

// NoopSender is used when no email API key is configured.
type NoopSender struct{}

func (NoopSender) SendOrderConfirmation(context.Context, *orders.Order) error {
	return nil
}
