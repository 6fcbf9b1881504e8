package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driveline/carstore-api/internal/dto"
	"github.com/driveline/carstore-api/internal/model"
)

func TestCatalog_Create(t *testing.T) {
	svc := NewCatalogService(newMockProductRepo(), nil)
	resp, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name:     "City Hopper",
		Brand:    "Vantage",
		Category: model.CategoryHatchback,
		Price:    decimal.RequireFromString("8999.99"),
		Stock:    12,
	})
	require.NoError(t, err)
	assert.Equal(t, "City Hopper", resp.Name)
	assert.Equal(t, 12, resp.Stock)
}

func TestCatalog_Create_Invalid(t *testing.T) {
	svc := NewCatalogService(newMockProductRepo(), nil)

	cases := []struct {
		name string
		req  dto.CreateProductRequest
	}{
		{"empty name", dto.CreateProductRequest{Category: model.CategorySedan, Price: decimal.NewFromInt(10)}},
		{"bad category", dto.CreateProductRequest{Name: "X", Category: "Spaceship", Price: decimal.NewFromInt(10)}},
		{"negative price", dto.CreateProductRequest{Name: "X", Category: model.CategorySedan, Price: decimal.NewFromInt(-1)}},
		{"negative stock", dto.CreateProductRequest{Name: "X", Category: model.CategorySedan, Price: decimal.NewFromInt(10), Stock: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.req)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestCatalog_GetByID_NotFound(t *testing.T) {
	svc := NewCatalogService(newMockProductRepo(), nil)
	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCatalog_Update_Partial(t *testing.T) {
	repo := newMockProductRepo()
	svc := NewCatalogService(repo, nil)

	created, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name: "Old Name", Brand: "Vantage", Category: model.CategorySedan,
		Price: decimal.NewFromInt(100), Stock: 3,
	})
	require.NoError(t, err)

	newName := "New Name"
	resp, err := svc.Update(context.Background(), created.ID, dto.UpdateProductRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "New Name", resp.Name)
	assert.Equal(t, "Vantage", resp.Brand)
	assert.Equal(t, 3, resp.Stock)
}

func TestCatalog_SoftDeleteRestoreRoundTrip(t *testing.T) {
	repo := newMockProductRepo()
	svc := NewCatalogService(repo, nil)

	created, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name: "Trail King", Brand: "Ridge", Color: "green",
		Category: model.CategoryTruck, Price: decimal.RequireFromString("45000"), Stock: 4,
	})
	require.NoError(t, err)

	require.NoError(t, svc.SoftDelete(context.Background(), created.ID))

	// Gone from the active catalog.
	list, err := svc.List(context.Background(), dto.ListProductsRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Products)

	// Present in the trash bin.
	trash, err := svc.ListDeleted(context.Background())
	require.NoError(t, err)
	require.Len(t, trash, 1)
	assert.Equal(t, created.ID, trash[0].ID)

	// Restore brings it back with the same field values.
	restored, err := svc.Restore(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, restored.ID)
	assert.Equal(t, "Trail King", restored.Name)
	assert.Equal(t, "green", restored.Color)
	assert.Equal(t, 4, restored.Stock)
	assert.True(t, restored.Price.Equal(created.Price))

	trash, err = svc.ListDeleted(context.Background())
	require.NoError(t, err)
	assert.Empty(t, trash)
}

func TestCatalog_Purge(t *testing.T) {
	repo := newMockProductRepo()
	svc := NewCatalogService(repo, nil)

	created, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name: "Short Lived", Category: model.CategorySedan, Price: decimal.NewFromInt(1), Stock: 1,
	})
	require.NoError(t, err)
	require.NoError(t, svc.SoftDelete(context.Background(), created.ID))

	require.NoError(t, svc.Purge(context.Background(), created.ID))

	_, err = svc.Restore(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCatalog_Purge_NotFound(t *testing.T) {
	svc := NewCatalogService(newMockProductRepo(), nil)
	err := svc.Purge(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCatalog_AddReview(t *testing.T) {
	repo := newMockProductRepo()
	svc := NewCatalogService(repo, nil)

	created, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name: "Reviewed", Category: model.CategorySUV, Price: decimal.NewFromInt(10), Stock: 1,
	})
	require.NoError(t, err)

	err = svc.AddReview(context.Background(), created.ID, "buyer-1", dto.AddReviewRequest{
		Rating: 5, Comment: "smooth ride",
	})
	require.NoError(t, err)

	resp, err := svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, resp.Reviews, 1)
	assert.Equal(t, 5, resp.Reviews[0].Rating)
	assert.Equal(t, "smooth ride", resp.Reviews[0].Comment)
}

func TestCatalog_AddReview_ProductNotFound(t *testing.T) {
	svc := NewCatalogService(newMockProductRepo(), nil)
	err := svc.AddReview(context.Background(), uuid.New(), "buyer-1", dto.AddReviewRequest{Rating: 3, Comment: "ok"})
	assert.ErrorIs(t, err, ErrProductNotFound)
}
