package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/driveline/carstore-api/internal/config"
	"github.com/driveline/carstore-api/internal/dto"
	"github.com/driveline/carstore-api/internal/events"
	"github.com/driveline/carstore-api/internal/model"
	"github.com/driveline/carstore-api/internal/repository"
	"github.com/driveline/carstore-api/internal/session"
)

var upiIDPattern = regexp.MustCompile(`^[\w.-]+@\w+$`)

// CheckoutService validates and commits a purchase against the live catalog.
// The cart snapshot is never trusted: stock is re-read at purchase time.
//
// The commit is a sequence of independently applied writes (order insert,
// stock decrement, cart/staging cleanup) with no enclosing transaction and no
// compensation. If a later step fails after an earlier one committed, the
// partial state stands; see DESIGN.md before wrapping this in a transaction.
type CheckoutService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	sessions    session.Store
	publisher   events.Publisher

	deliveryCharge decimal.Decimal
	freeThreshold  decimal.Decimal
	windowMinDays  int
	windowMaxDays  int

	now func() time.Time
}

func NewCheckoutService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	sessions session.Store,
	publisher events.Publisher,
	cfg config.CheckoutConfig,
) (*CheckoutService, error) {
	charge, err := decimal.NewFromString(cfg.DeliveryCharge)
	if err != nil {
		return nil, fmt.Errorf("parse delivery charge: %w", err)
	}
	threshold, err := decimal.NewFromString(cfg.FreeDeliveryThreshold)
	if err != nil {
		return nil, fmt.Errorf("parse free delivery threshold: %w", err)
	}
	return &CheckoutService{
		orderRepo:      orderRepo,
		cartRepo:       cartRepo,
		productRepo:    productRepo,
		sessions:       sessions,
		publisher:      publisher,
		deliveryCharge: charge,
		freeThreshold:  threshold,
		windowMinDays:  cfg.DeliveryWindowMinDays,
		windowMaxDays:  cfg.DeliveryWindowMaxDays,
		now:            time.Now,
	}, nil
}

// StageBuyNow parks a product in the user's staging slot for direct checkout.
func (s *CheckoutService) StageBuyNow(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	if userID == uuid.Nil {
		return ErrUnauthenticated
	}
	if quantity < 1 {
		quantity = 1
	}
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return ErrProductNotFound
	}
	return s.sessions.StageBuyNow(ctx, userID, session.BuyNowSlot{
		ProductID: productID,
		Quantity:  quantity,
		StagedAt:  s.now(),
	})
}

// Purchase runs the full reconciliation flow. Validation failures commit
// nothing; from the order insert onward each step commits on its own.
func (s *CheckoutService) Purchase(ctx context.Context, userID uuid.UUID, req dto.CheckoutRequest) (*model.Order, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(req.Address) == "" {
		return nil, invalid("address", "delivery address is required")
	}
	if !req.PaymentMethod.Valid() {
		return nil, invalid("payment_method", "unknown payment method")
	}
	details := model.PaymentDetails{}
	if req.PaymentDetails != nil {
		details = *req.PaymentDetails
	}
	switch req.PaymentMethod {
	case model.PaymentCard:
		if details.CardNumber == "" || details.CardExpiry == "" || details.CardCVV == "" {
			return nil, invalid("payment_details", "complete card details are required")
		}
	case model.PaymentUPI:
		if !upiIDPattern.MatchString(strings.TrimSpace(details.UPIID)) {
			return nil, invalid("payment_details", "valid UPI id is required (e.g. name@upi)")
		}
	case model.PaymentCOD:
		details = model.PaymentDetails{}
	}

	// Authoritative stock read. The cart snapshot may be stale.
	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if product.Stock < req.Quantity {
		return nil, &InsufficientStockError{Available: product.Stock}
	}

	qty := decimal.NewFromInt(int64(req.Quantity))
	subtotal := product.Price.Mul(qty)
	charge := decimal.Zero
	if subtotal.LessThan(s.freeThreshold) {
		charge = s.deliveryCharge
	}

	purchasedAt := s.now()
	order := &model.Order{
		UserID:         userID,
		ProductID:      product.ID,
		ProductName:    product.Name,
		ProductImage:   product.Image,
		Quantity:       req.Quantity,
		UnitPrice:      product.Price,
		DeliveryCharge: charge,
		Total:          subtotal.Add(charge),
		Address:        strings.TrimSpace(req.Address),
		PaymentMethod:  req.PaymentMethod,
		PaymentDetails: details,
		Status:         model.OrderStatusOrdered,
		PurchasedAt:    purchasedAt,
		DeliveryFrom:   purchasedAt.AddDate(0, 0, s.windowMinDays),
		DeliveryUntil:  purchasedAt.AddDate(0, 0, s.windowMaxDays),
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.productRepo.AdjustStock(ctx, product.ID, -req.Quantity); err != nil {
		// Order already committed; stock was not decremented.
		return nil, fmt.Errorf("decrement stock: %w", err)
	}

	if req.FromCart {
		cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
		if err == nil {
			_ = s.cartRepo.DeleteItemByProduct(ctx, cart.ID, product.ID)
		}
	} else if s.sessions != nil {
		_ = s.sessions.ClearBuyNow(ctx, userID)
	}

	if s.publisher != nil {
		_ = s.publisher.PublishOrderEvent(ctx, model.OrderEvent{
			Kind: model.OrderEventPlaced, OrderID: order.ID, UserID: userID,
		})
	}
	return order, nil
}
