// Package events reacts to order events consumed from the broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"storefront/internal/models"
	"storefront/pkg/mailer"

	amqp "github.com/streadway/amqp"
)

const sendTimeout = 30 * time.Second

// Notifier emails customers when their orders are placed or change status.
type Notifier struct {
	mailer mailer.Mailer
}

// NewNotifier creates a Notifier sending through m.
func NewNotifier(m mailer.Mailer) *Notifier {
	return &Notifier{mailer: m}
}

// HandleDelivery decodes an order event and emails the customer. Undecodable messages are dropped.
func (n *Notifier) HandleDelivery(msg amqp.Delivery) error {
	var event models.OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Printf("Dropping undecodable order event %d: %v", msg.DeliveryTag, err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	return n.Handle(ctx, event)
}

// Handle emails the customer about event. Events without a customer email or of other types are ignored.
func (n *Notifier) Handle(ctx context.Context, event models.OrderEvent) error {
	if event.Email == "" {
		return nil
	}

	var msg mailer.Message
	switch event.Type {
	case models.EventOrderCreated:
		msg = mailer.Message{
			Subject:  fmt.Sprintf("Order %s confirmed", event.OrderID),
			Template: mailer.TemplateOrderConfirmation,
		}
	case models.EventOrderStatusUpdated:
		msg = mailer.Message{
			Subject:  fmt.Sprintf("Order %s is now %s", event.OrderID, event.OrderStatus),
			Template: mailer.TemplateOrderStatus,
		}
	default:
		return nil
	}
	msg.To = []string{event.Email}
	msg.Data = event

	if err := n.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify %s for order %s: %w", event.Type, event.OrderID, err)
	}
	return nil
}
