package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driveline/carstore-api/internal/model"
)

func TestUserRepo_CreateAndGetByEmail(t *testing.T) {
	cleanupTable(t, "cancelled_orders", "orders", "cart_items", "carts", "users")

	repo := NewUserRepository(testPool)
	ctx := context.Background()

	user := &model.User{
		Name: "Asha", Email: "test@example.com", Password: "hashed", Role: model.RoleUser,
	}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEqual(t, uuid.Nil, user.ID)

	found, err := repo.GetByEmail(ctx, "test@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, model.RoleUser, found.Role)

	// Duplicate email maps to ErrDuplicate.
	dup := &model.User{Name: "B", Email: "test@example.com", Password: "h", Role: model.RoleUser}
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrDuplicate)
}

func TestUserRepo_SetBlocked(t *testing.T) {
	cleanupTable(t, "cancelled_orders", "orders", "cart_items", "carts", "users")

	repo := NewUserRepository(testPool)
	ctx := context.Background()

	user := &model.User{Name: "B", Email: "blocked@example.com", Password: "h", Role: model.RoleUser}
	require.NoError(t, repo.Create(ctx, user))

	updated, err := repo.SetBlocked(ctx, user.ID, true)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.True(t, updated.IsBlocked)

	missing, err := repo.SetBlocked(ctx, uuid.New(), true)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestProductRepo_CRUD(t *testing.T) {
	cleanupTable(t, "cancelled_orders", "orders", "cart_items", "carts", "product_reviews", "products")

	repo := NewProductRepository(testPool)
	ctx := context.Background()

	product := &model.Product{
		Name: "City Hopper", Brand: "Vantage", Category: model.CategoryHatchback,
		Price: decimal.NewFromFloat(8999.99), Stock: 100,
	}
	require.NoError(t, repo.Create(ctx, product))
	assert.NotEqual(t, uuid.Nil, product.ID)

	found, err := repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "City Hopper", found.Name)

	product.Name = "City Hopper II"
	require.NoError(t, repo.Update(ctx, product))

	found, _ = repo.GetByID(ctx, product.ID)
	assert.Equal(t, "City Hopper II", found.Name)

	byCategory, err := repo.List(ctx, string(model.CategoryHatchback), "")
	require.NoError(t, err)
	assert.Len(t, byCategory, 1)

	bySearch, err := repo.List(ctx, "", "vantage")
	require.NoError(t, err)
	assert.Len(t, bySearch, 1)

	require.NoError(t, repo.Delete(ctx, product.ID))
	found, _ = repo.GetByID(ctx, product.ID)
	assert.Nil(t, found)
}

func TestCartRepo_AddAndGetItems(t *testing.T) {
	cleanupTable(t, "cancelled_orders", "orders", "cart_items", "carts", "products", "users")

	userRepo := NewUserRepository(testPool)
	productRepo := NewProductRepository(testPool)
	cartRepo := NewCartRepository(testPool)
	ctx := context.Background()

	user := &model.User{Name: "C", Email: "cart@example.com", Password: "h", Role: model.RoleUser}
	require.NoError(t, userRepo.Create(ctx, user))

	product := &model.Product{
		Name: "Trail King", Category: model.CategoryTruck,
		Price: decimal.NewFromFloat(45000), Stock: 10,
	}
	require.NoError(t, productRepo.Create(ctx, product))

	cart, err := cartRepo.GetOrCreateCart(ctx, user.ID)
	require.NoError(t, err)

	// Same cart comes back on the second call.
	again, err := cartRepo.GetOrCreateCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)

	require.NoError(t, cartRepo.AddItem(ctx, &model.CartItem{
		CartID: cart.ID, ProductID: product.ID, Quantity: 1,
	}))

	// A product appears at most once per cart.
	err = cartRepo.AddItem(ctx, &model.CartItem{
		CartID: cart.ID, ProductID: product.ID, Quantity: 1,
	})
	assert.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, cartRepo.SetItemQuantity(ctx, cart.ID, product.ID, 3))

	cartWithItems, err := cartRepo.GetCartWithItems(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, cartWithItems.Items, 1)
	assert.Equal(t, 3, cartWithItems.Items[0].Quantity)

	require.NoError(t, cartRepo.DeleteItemByProduct(ctx, cart.ID, product.ID))
	cartWithItems, _ = cartRepo.GetCartWithItems(ctx, cart.ID)
	assert.Empty(t, cartWithItems.Items)
}

func TestOrderRepo_CreateListCancel(t *testing.T) {
	cleanupTable(t, "cancelled_orders", "orders", "cart_items", "carts", "products", "users")

	userRepo := NewUserRepository(testPool)
	orderRepo := NewOrderRepository(testPool)
	ctx := context.Background()

	user := &model.User{Name: "O", Email: "order@example.com", Password: "h", Role: model.RoleUser}
	require.NoError(t, userRepo.Create(ctx, user))

	now := time.Now().UTC().Truncate(time.Millisecond)
	order := &model.Order{
		UserID: user.ID, ProductID: uuid.New(), ProductName: "Trail King",
		Quantity: 2, UnitPrice: decimal.NewFromFloat(45000),
		DeliveryCharge: decimal.Zero, Total: decimal.NewFromFloat(90000),
		Address: "12 Gasket Lane", PaymentMethod: model.PaymentCOD,
		Status: model.OrderStatusOrdered, PurchasedAt: now,
		DeliveryFrom: now.AddDate(0, 0, 3), DeliveryUntil: now.AddDate(0, 0, 5),
	}
	require.NoError(t, orderRepo.Create(ctx, order))
	assert.NotEqual(t, uuid.Nil, order.ID)

	found, err := orderRepo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, model.OrderStatusOrdered, found.Status)
	assert.True(t, found.Total.Equal(order.Total))

	all, err := orderRepo.ListByUser(ctx, user.ID, time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	none, err := orderRepo.ListByUser(ctx, user.ID, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, none)

	cancelled := &model.CancelledOrder{Order: *found, CancelReason: "wrong size", CancelledAt: now}
	cancelled.Status = model.OrderStatusCancelled
	require.NoError(t, orderRepo.InsertCancelled(ctx, cancelled))
	require.NoError(t, orderRepo.Delete(ctx, order.ID))

	archived, err := orderRepo.ListCancelledByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, order.ID, archived[0].ID)
	assert.Equal(t, "wrong size", archived[0].CancelReason)

	gone, err := orderRepo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
