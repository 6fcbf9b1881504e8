// Package events carries order lifecycle notifications over RabbitMQ. The
// queue is informational only: no consumer mutates catalog or ledger state.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/driveline/carstore-api/internal/model"
)

const (
	OrderQueueName = "order.events"
	DLXExchange    = "order.events.dlx"
	DLQQueueName   = "order.events.dlq"
)

// Publisher abstracts the broker so services stay testable without a live
// connection.
type Publisher interface {
	PublishOrderEvent(ctx context.Context, event model.OrderEvent) error
}

type amqpPublisher struct{ ch *amqp.Channel }

func NewPublisher(ch *amqp.Channel) Publisher {
	return &amqpPublisher{ch: ch}
}

func (p *amqpPublisher) PublishOrderEvent(ctx context.Context, event model.OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	return p.ch.PublishWithContext(ctx, "", OrderQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
	})
}

// Setup declares the order-event queue with its dead-letter topology.
func Setup(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(DLXExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLX: %w", err)
	}
	if _, err := ch.QueueDeclare(DLQQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLQ: %w", err)
	}
	if err := ch.QueueBind(DLQQueueName, OrderQueueName, DLXExchange, false, nil); err != nil {
		return fmt.Errorf("bind DLQ: %w", err)
	}
	if _, err := ch.QueueDeclare(OrderQueueName, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    DLXExchange,
		"x-dead-letter-routing-key": OrderQueueName,
	}); err != nil {
		return fmt.Errorf("declare order event queue: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set QoS: %w", err)
	}
	return nil
}
