package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/driveline/carstore-api/internal/dto"
	"github.com/driveline/carstore-api/internal/model"
	"github.com/driveline/carstore-api/internal/repository"
)

// CartService keeps one open cart per user. A product appears at most once;
// adding it again is rejected rather than merged.
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

func (s *CartService) AddItem(ctx context.Context, userID, productID uuid.UUID) error {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return ErrProductNotFound
	}

	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return fmt.Errorf("get or create cart: %w", err)
	}

	err = s.cartRepo.AddItem(ctx, &model.CartItem{
		CartID:    cart.ID,
		ProductID: productID,
		Quantity:  1,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrAlreadyInCart
	}
	return err
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return fmt.Errorf("get cart: %w", err)
	}
	return s.cartRepo.DeleteItemByProduct(ctx, cart.ID, productID)
}

// SetQuantity applies a relative change to the line quantity, clamped to a
// minimum of 1. Removal is explicit via RemoveItem.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID uuid.UUID, delta int) error {
	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return fmt.Errorf("get cart: %w", err)
	}
	cart, err = s.cartRepo.GetCartWithItems(ctx, cart.ID)
	if err != nil {
		return fmt.Errorf("get cart items: %w", err)
	}

	var current int
	found := false
	for _, item := range cart.Items {
		if item.ProductID == productID {
			current = item.Quantity
			found = true
			break
		}
	}
	if !found {
		return ErrProductNotFound
	}

	quantity := current + delta
	if quantity < 1 {
		quantity = 1
	}
	return s.cartRepo.SetItemQuantity(ctx, cart.ID, productID, quantity)
}

func (s *CartService) Contents(ctx context.Context, userID uuid.UUID) (*dto.CartResponse, error) {
	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}
	cartWithItems, err := s.cartRepo.GetCartWithItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}

	items := make([]dto.CartItemResponse, 0, len(cartWithItems.Items))
	for _, item := range cartWithItems.Items {
		entry := dto.CartItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
		// Enrich with a live product snapshot; a product deleted since the
		// add still shows as a bare line.
		if product, err := s.productRepo.GetByID(ctx, item.ProductID); err == nil && product != nil {
			entry.Name = product.Name
			entry.Image = product.Image
			entry.Price = product.Price
			entry.Stock = product.Stock
		}
		items = append(items, entry)
	}
	return &dto.CartResponse{ID: cart.ID, Items: items}, nil
}
