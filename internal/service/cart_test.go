package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driveline/carstore-api/internal/model"
)

func newCartFixture(t *testing.T) (*CartService, *mockCartRepo, *mockProductRepo) {
	t.Helper()
	cartRepo := newMockCartRepo()
	productRepo := newMockProductRepo()
	return NewCartService(cartRepo, productRepo), cartRepo, productRepo
}

func addCartProduct(t *testing.T, productRepo *mockProductRepo, price string, stock int) uuid.UUID {
	t.Helper()
	p := &model.Product{
		Name:     "Test Car",
		Category: model.CategoryHatchback,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
	}
	require.NoError(t, productRepo.Create(context.Background(), p))
	return p.ID
}

func TestCart_AddItem(t *testing.T) {
	svc, _, productRepo := newCartFixture(t)
	pid := addCartProduct(t, productRepo, "100", 5)
	userID := uuid.New()

	require.NoError(t, svc.AddItem(context.Background(), userID, pid))

	contents, err := svc.Contents(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, contents.Items, 1)
	assert.Equal(t, pid, contents.Items[0].ProductID)
	assert.Equal(t, 1, contents.Items[0].Quantity)
	assert.Equal(t, "Test Car", contents.Items[0].Name)
}

func TestCart_AddItem_Duplicate(t *testing.T) {
	svc, cartRepo, productRepo := newCartFixture(t)
	pid := addCartProduct(t, productRepo, "100", 5)
	userID := uuid.New()

	require.NoError(t, svc.AddItem(context.Background(), userID, pid))

	err := svc.AddItem(context.Background(), userID, pid)
	assert.ErrorIs(t, err, ErrAlreadyInCart)
	assert.Len(t, cartRepo.items, 1)
}

func TestCart_AddItem_ProductNotFound(t *testing.T) {
	svc, _, _ := newCartFixture(t)
	err := svc.AddItem(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCart_SetQuantity_ClampsToOne(t *testing.T) {
	svc, _, productRepo := newCartFixture(t)
	pid := addCartProduct(t, productRepo, "100", 5)
	userID := uuid.New()
	require.NoError(t, svc.AddItem(context.Background(), userID, pid))

	// Decrementing below one holds the line at one instead of removing it.
	require.NoError(t, svc.SetQuantity(context.Background(), userID, pid, -3))

	contents, err := svc.Contents(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, contents.Items, 1)
	assert.Equal(t, 1, contents.Items[0].Quantity)
}

func TestCart_SetQuantity_Increment(t *testing.T) {
	svc, _, productRepo := newCartFixture(t)
	pid := addCartProduct(t, productRepo, "100", 5)
	userID := uuid.New()
	require.NoError(t, svc.AddItem(context.Background(), userID, pid))

	require.NoError(t, svc.SetQuantity(context.Background(), userID, pid, 2))

	contents, err := svc.Contents(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 3, contents.Items[0].Quantity)
}

func TestCart_SetQuantity_LineAbsent(t *testing.T) {
	svc, _, productRepo := newCartFixture(t)
	pid := addCartProduct(t, productRepo, "100", 5)

	err := svc.SetQuantity(context.Background(), uuid.New(), pid, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCart_RemoveItem_Idempotent(t *testing.T) {
	svc, _, productRepo := newCartFixture(t)
	pid := addCartProduct(t, productRepo, "100", 5)
	userID := uuid.New()
	require.NoError(t, svc.AddItem(context.Background(), userID, pid))

	require.NoError(t, svc.RemoveItem(context.Background(), userID, pid))
	require.NoError(t, svc.RemoveItem(context.Background(), userID, pid))

	contents, err := svc.Contents(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, contents.Items)
}

func TestCart_Contents_PerUser(t *testing.T) {
	svc, _, productRepo := newCartFixture(t)
	pid := addCartProduct(t, productRepo, "100", 5)
	alice := uuid.New()
	bob := uuid.New()

	require.NoError(t, svc.AddItem(context.Background(), alice, pid))

	bobContents, err := svc.Contents(context.Background(), bob)
	require.NoError(t, err)
	assert.Empty(t, bobContents.Items)

	aliceContents, err := svc.Contents(context.Background(), alice)
	require.NoError(t, err)
	assert.Len(t, aliceContents.Items, 1)
}
