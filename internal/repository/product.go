package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/driveline/carstore-api/internal/model"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, category, search string) ([]model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) error

	InsertDeleted(ctx context.Context, dp *model.DeletedProduct) error
	GetDeleted(ctx context.Context, id uuid.UUID) (*model.DeletedProduct, error)
	ListDeleted(ctx context.Context) ([]model.DeletedProduct, error)
	RemoveDeleted(ctx context.Context, id uuid.UUID) error

	AddReview(ctx context.Context, review *model.Review) error
	ListReviews(ctx context.Context, productID uuid.UUID) ([]model.Review, error)
}

type pgProductRepo struct{ pool *pgxpool.Pool }

func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &pgProductRepo{pool: pool}
}

const productColumns = `id, name, brand, color, description, image, category, price, stock, created_at, updated_at`

// Create inserts a product. A pre-set id is kept so a restore from the trash
// bin reuses the original id.
func (r *pgProductRepo) Create(ctx context.Context, product *model.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	query := `INSERT INTO products (id, name, brand, color, description, image, category, price, stock, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
			  RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		product.ID, product.Name, product.Brand, product.Color, product.Description,
		product.Image, product.Category, product.Price, product.Stock,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *pgProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p := &model.Product{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id,
	).Scan(
		&p.ID, &p.Name, &p.Brand, &p.Color, &p.Description, &p.Image,
		&p.Category, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *pgProductRepo) List(ctx context.Context, category, search string) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE ($1 = '' OR category = $1)
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR brand ILIKE '%' || $2 || '%')
		ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, category, search)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Brand, &p.Color, &p.Description, &p.Image,
			&p.Category, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, nil
}

func (r *pgProductRepo) Update(ctx context.Context, product *model.Product) error {
	query := `UPDATE products SET name=$2, brand=$3, color=$4, description=$5, image=$6,
			  category=$7, price=$8, stock=$9, updated_at=NOW()
			  WHERE id=$1 RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		product.ID, product.Name, product.Brand, product.Color, product.Description,
		product.Image, product.Category, product.Price, product.Stock,
	).Scan(&product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgx.ErrNoRows
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (r *pgProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// AdjustStock applies a relative stock change, flooring the result at zero.
func (r *pgProductRepo) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE products SET stock = GREATEST(stock + $2, 0), updated_at = NOW() WHERE id = $1`,
		id, delta,
	)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgProductRepo) InsertDeleted(ctx context.Context, dp *model.DeletedProduct) error {
	query := `INSERT INTO deleted_products (id, name, brand, color, description, image, category, price, stock, created_at, updated_at, deleted_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
			  RETURNING deleted_at`
	err := r.pool.QueryRow(ctx, query,
		dp.ID, dp.Name, dp.Brand, dp.Color, dp.Description, dp.Image,
		dp.Category, dp.Price, dp.Stock, dp.CreatedAt, dp.UpdatedAt,
	).Scan(&dp.DeletedAt)
	if err != nil {
		return fmt.Errorf("insert deleted product: %w", err)
	}
	return nil
}

func (r *pgProductRepo) GetDeleted(ctx context.Context, id uuid.UUID) (*model.DeletedProduct, error) {
	dp := &model.DeletedProduct{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+productColumns+`, deleted_at FROM deleted_products WHERE id = $1`, id,
	).Scan(
		&dp.ID, &dp.Name, &dp.Brand, &dp.Color, &dp.Description, &dp.Image,
		&dp.Category, &dp.Price, &dp.Stock, &dp.CreatedAt, &dp.UpdatedAt, &dp.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get deleted product: %w", err)
	}
	return dp, nil
}

func (r *pgProductRepo) ListDeleted(ctx context.Context) ([]model.DeletedProduct, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+`, deleted_at FROM deleted_products ORDER BY deleted_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list deleted products: %w", err)
	}
	defer rows.Close()

	var deleted []model.DeletedProduct
	for rows.Next() {
		var dp model.DeletedProduct
		if err := rows.Scan(
			&dp.ID, &dp.Name, &dp.Brand, &dp.Color, &dp.Description, &dp.Image,
			&dp.Category, &dp.Price, &dp.Stock, &dp.CreatedAt, &dp.UpdatedAt, &dp.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan deleted product: %w", err)
		}
		deleted = append(deleted, dp)
	}
	return deleted, nil
}

func (r *pgProductRepo) RemoveDeleted(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM deleted_products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("remove deleted product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgProductRepo) AddReview(ctx context.Context, review *model.Review) error {
	review.ID = uuid.New()
	review.CreatedAt = time.Now()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO product_reviews (id, product_id, author, rating, comment, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		review.ID, review.ProductID, review.Author, review.Rating, review.Comment, review.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("add review: %w", err)
	}
	return nil
}

func (r *pgProductRepo) ListReviews(ctx context.Context, productID uuid.UUID) ([]model.Review, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, author, rating, comment, created_at
		 FROM product_reviews WHERE product_id = $1 ORDER BY created_at`, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.Author, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	return reviews, nil
}
