package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/driveline/carstore-api/internal/events"
	"github.com/driveline/carstore-api/internal/model"
	"github.com/driveline/carstore-api/internal/repository"
)

const idempotencyTTL = 24 * time.Hour

// Notifier consumes order lifecycle events and emits confirmation and
// cancellation notices. It reads the ledger for context but never writes:
// checkout and cancellation are fully committed before their events are
// published.
type Notifier struct {
	channel     *amqp.Channel
	orderRepo   repository.OrderRepository
	userRepo    repository.UserRepository
	redisClient *redis.Client
	log         *slog.Logger
	done        chan struct{}
}

func NewNotifier(
	ch *amqp.Channel,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	redisClient *redis.Client,
	log *slog.Logger,
) *Notifier {
	return &Notifier{
		channel:     ch,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		redisClient: redisClient,
		log:         log,
		done:        make(chan struct{}),
	}
}

func (w *Notifier) Start(ctx context.Context) error {
	msgs, err := w.channel.Consume(events.OrderQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				w.processMessage(ctx, msg)
			case <-w.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	w.log.Info("order notifier started")
	return nil
}

func (w *Notifier) Stop() { close(w.done) }

func (w *Notifier) processMessage(ctx context.Context, msg amqp.Delivery) {
	var event model.OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		w.log.Error("unmarshal order event", "error", err)
		_ = msg.Nack(false, false)
		return
	}

	log := w.log.With("kind", event.Kind, "order_id", event.OrderID, "user_id", event.UserID)

	// One notification per event, across restarts and redeliveries.
	idempotencyKey := fmt.Sprintf("notified:%s:%s", event.Kind, event.OrderID)
	exists, err := w.redisClient.Exists(ctx, idempotencyKey).Result()
	if err != nil {
		log.Error("check idempotency key", "error", err)
		_ = msg.Nack(false, true)
		return
	}
	if exists > 0 {
		log.Info("event already handled, skipping")
		_ = msg.Ack(false)
		return
	}

	if err := w.notify(ctx, event, log); err != nil {
		log.Error("notify failed", "error", err)
		_ = msg.Nack(false, false) // to DLQ
		return
	}

	if err := w.redisClient.Set(ctx, idempotencyKey, "1", idempotencyTTL).Err(); err != nil {
		log.Error("set idempotency key", "error", err)
	}
	_ = msg.Ack(false)
}

func (w *Notifier) notify(ctx context.Context, event model.OrderEvent, log *slog.Logger) error {
	user, err := w.userRepo.GetByID(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user not found: %s", event.UserID)
	}

	switch event.Kind {
	case model.OrderEventPlaced:
		order, err := w.orderRepo.GetByID(ctx, event.OrderID)
		if err != nil {
			return fmt.Errorf("get order: %w", err)
		}
		if order == nil {
			// Cancelled before the event was consumed; nothing to confirm.
			log.Info("order no longer active, skipping confirmation")
			return nil
		}
		log.Info("order confirmation sent",
			"email", user.Email,
			"product", order.ProductName,
			"total", order.Total.String(),
			"delivery_until", order.DeliveryUntil,
		)
	case model.OrderEventCancelled:
		log.Info("cancellation notice sent", "email", user.Email)
	default:
		return fmt.Errorf("unknown event kind %q", event.Kind)
	}
	return nil
}
