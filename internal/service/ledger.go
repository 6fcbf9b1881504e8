package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/driveline/carstore-api/internal/events"
	"github.com/driveline/carstore-api/internal/model"
	"github.com/driveline/carstore-api/internal/repository"
)

// LedgerService reads and cancels placed orders. An order has exactly one
// transition, Ordered to Cancelled, and cancellation is modelled as
// move-and-delete: the archive row is written first, then the active row is
// removed, then stock is restored. The three writes commit independently.
type LedgerService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	publisher   events.Publisher

	now func() time.Time
}

func NewLedgerService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, publisher events.Publisher) *LedgerService {
	return &LedgerService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		publisher:   publisher,
		now:         time.Now,
	}
}

// ListForUser returns the user's active orders oldest-first. A positive
// sinceDays restricts to orders purchased at or after now minus that many
// days.
func (s *LedgerService) ListForUser(ctx context.Context, userID uuid.UUID, sinceDays int) ([]model.Order, error) {
	var since time.Time
	if sinceDays > 0 {
		since = s.now().AddDate(0, 0, -sinceDays)
	}
	orders, err := s.orderRepo.ListByUser(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *LedgerService) ListCancelledForUser(ctx context.Context, userID uuid.UUID) ([]model.CancelledOrder, error) {
	cancelled, err := s.orderRepo.ListCancelledByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cancelled orders: %w", err)
	}
	return cancelled, nil
}

func (s *LedgerService) ListAll(ctx context.Context) ([]model.Order, error) {
	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all orders: %w", err)
	}
	return orders, nil
}

// Cancel archives the order, removes it from the active ledger and restores
// the product's stock by the ordered quantity. An order already cancelled is
// absent from the active ledger, so it surfaces as not found.
func (s *LedgerService) Cancel(ctx context.Context, userID, orderID uuid.UUID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return invalid("reason", "a cancellation reason is required")
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if order.UserID != userID {
		return ErrOrderAccessDenied
	}

	cancelled := &model.CancelledOrder{
		Order:        *order,
		CancelReason: reason,
		CancelledAt:  s.now(),
	}
	cancelled.Status = model.OrderStatusCancelled

	if err := s.orderRepo.InsertCancelled(ctx, cancelled); err != nil {
		return fmt.Errorf("archive cancelled order: %w", err)
	}
	if err := s.orderRepo.Delete(ctx, orderID); err != nil {
		// Archive row already written.
		return fmt.Errorf("remove order: %w", err)
	}
	if err := s.productRepo.AdjustStock(ctx, order.ProductID, order.Quantity); err != nil {
		// Order is gone from the ledger but stock was not restored.
		return fmt.Errorf("restore stock: %w", err)
	}

	if s.publisher != nil {
		_ = s.publisher.PublishOrderEvent(ctx, model.OrderEvent{
			Kind: model.OrderEventCancelled, OrderID: orderID, UserID: userID,
		})
	}
	return nil
}
