package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/driveline/carstore-api/internal/dto"
	"github.com/driveline/carstore-api/internal/model"
	"github.com/driveline/carstore-api/internal/repository"
)

const productCacheTTL = 60 * time.Second

// CatalogService owns the purchasable products and the trash bin. Soft delete
// moves a record to the deleted_products archive; restore moves it back with
// the same field values. Both are two independently committed writes.
type CatalogService struct {
	productRepo repository.ProductRepository
	redisClient *redis.Client
}

func NewCatalogService(productRepo repository.ProductRepository, redisClient *redis.Client) *CatalogService {
	return &CatalogService{productRepo: productRepo, redisClient: redisClient}
}

func (s *CatalogService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if req.Name == "" {
		return nil, invalid("name", "must not be empty")
	}
	if !req.Category.Valid() {
		return nil, invalid("category", "unknown category")
	}
	if req.Price.IsNegative() {
		return nil, invalid("price", "must not be negative")
	}
	if req.Stock < 0 {
		return nil, invalid("stock", "must not be negative")
	}

	product := &model.Product{
		Name:        req.Name,
		Brand:       req.Brand,
		Color:       req.Color,
		Description: req.Description,
		Image:       req.Image,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	resp := toProductResponse(product)
	return &resp, nil
}

func (s *CatalogService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	cacheKey := "product:" + id.String()

	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var resp dto.ProductResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return &resp, nil
			}
		}
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	reviews, err := s.productRepo.ListReviews(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	product.Reviews = reviews

	resp := toProductResponse(product)

	if s.redisClient != nil {
		if data, err := json.Marshal(resp); err == nil {
			s.redisClient.Set(ctx, cacheKey, data, productCacheTTL)
		}
	}

	return &resp, nil
}

func (s *CatalogService) List(ctx context.Context, req dto.ListProductsRequest) (*dto.ProductListResponse, error) {
	products, err := s.productRepo.List(ctx, req.Category, req.Search)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	items := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, toProductResponse(&p))
	}
	return &dto.ProductListResponse{Products: items, Total: len(items)}, nil
}

func (s *CatalogService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, invalid("name", "must not be empty")
		}
		product.Name = *req.Name
	}
	if req.Brand != nil {
		product.Brand = *req.Brand
	}
	if req.Color != nil {
		product.Color = *req.Color
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Image != nil {
		product.Image = *req.Image
	}
	if req.Category != nil {
		if !req.Category.Valid() {
			return nil, invalid("category", "unknown category")
		}
		product.Category = *req.Category
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, invalid("price", "must not be negative")
		}
		product.Price = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, invalid("stock", "must not be negative")
		}
		product.Stock = *req.Stock
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.invalidateCache(ctx, id)
	resp := toProductResponse(product)
	return &resp, nil
}

// SoftDelete copies the record into the archive, then removes it from the
// active catalog. The two writes commit independently.
func (s *CatalogService) SoftDelete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return ErrProductNotFound
	}

	if err := s.productRepo.InsertDeleted(ctx, &model.DeletedProduct{Product: *product}); err != nil {
		return fmt.Errorf("archive product: %w", err)
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("remove product: %w", err)
	}
	s.invalidateCache(ctx, id)
	return nil
}

func (s *CatalogService) Restore(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	dp, err := s.productRepo.GetDeleted(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get deleted product: %w", err)
	}
	if dp == nil {
		return nil, ErrProductNotFound
	}

	restored := dp.Product
	if err := s.productRepo.Create(ctx, &restored); err != nil {
		return nil, fmt.Errorf("restore product: %w", err)
	}
	if err := s.productRepo.RemoveDeleted(ctx, id); err != nil {
		return nil, fmt.Errorf("remove archived product: %w", err)
	}
	resp := toProductResponse(&restored)
	return &resp, nil
}

func (s *CatalogService) Purge(ctx context.Context, id uuid.UUID) error {
	dp, err := s.productRepo.GetDeleted(ctx, id)
	if err != nil {
		return fmt.Errorf("get deleted product: %w", err)
	}
	if dp == nil {
		return ErrProductNotFound
	}
	if err := s.productRepo.RemoveDeleted(ctx, id); err != nil {
		return fmt.Errorf("purge product: %w", err)
	}
	return nil
}

func (s *CatalogService) ListDeleted(ctx context.Context) ([]dto.DeletedProductResponse, error) {
	deleted, err := s.productRepo.ListDeleted(ctx)
	if err != nil {
		return nil, fmt.Errorf("list deleted products: %w", err)
	}
	items := make([]dto.DeletedProductResponse, 0, len(deleted))
	for _, dp := range deleted {
		items = append(items, dto.DeletedProductResponse{
			ProductResponse: toProductResponse(&dp.Product),
			DeletedAt:       dp.DeletedAt,
		})
	}
	return items, nil
}

func (s *CatalogService) AddReview(ctx context.Context, productID uuid.UUID, author string, req dto.AddReviewRequest) error {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return ErrProductNotFound
	}
	review := &model.Review{
		ProductID: productID,
		Author:    author,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := s.productRepo.AddReview(ctx, review); err != nil {
		return fmt.Errorf("add review: %w", err)
	}
	s.invalidateCache(ctx, productID)
	return nil
}

func (s *CatalogService) invalidateCache(ctx context.Context, id uuid.UUID) {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, "product:"+id.String())
	}
}

func toProductResponse(p *model.Product) dto.ProductResponse {
	var reviews []dto.ReviewResponse
	for _, r := range p.Reviews {
		reviews = append(reviews, dto.ReviewResponse{
			ID: r.ID, Author: r.Author, Rating: r.Rating,
			Comment: r.Comment, CreatedAt: r.CreatedAt,
		})
	}
	return dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       p.Brand,
		Color:       p.Color,
		Description: p.Description,
		Image:       p.Image,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
		Reviews:     reviews,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
