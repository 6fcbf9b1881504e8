package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/driveline/carstore-api/internal/model"
)

// --- Auth ---

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse carries both the role and the legacy is_admin flag. The
// boolean is derived from the role at this boundary, never stored.
type UserResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	IsAdmin   bool       `json:"isAdmin"`
	IsBlocked bool       `json:"is_blocked"`
}

func ToUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		IsAdmin:   u.Role == model.RoleAdmin,
		IsBlocked: u.IsBlocked,
	}
}

// --- Product ---

type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Brand       string          `json:"brand"`
	Color       string          `json:"color"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Category    model.Category  `json:"category" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Stock       int             `json:"stock" binding:"min=0"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Brand       *string          `json:"brand"`
	Color       *string          `json:"color"`
	Description *string          `json:"description"`
	Image       *string          `json:"image"`
	Category    *model.Category  `json:"category"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
}

type ListProductsRequest struct {
	Category string `form:"category"`
	Search   string `form:"search"`
}

type AddReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required"`
}

type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Color       string          `json:"color"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Category    model.Category  `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Reviews     []ReviewResponse `json:"reviews,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type ReviewResponse struct {
	ID        uuid.UUID `json:"id"`
	Author    string    `json:"author"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int               `json:"total"`
}

type DeletedProductResponse struct {
	ProductResponse
	DeletedAt time.Time `json:"deleted_at"`
}

// --- Cart ---

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}

type SetCartQuantityRequest struct {
	Delta int `json:"delta" binding:"required"`
}

type CartResponse struct {
	ID    uuid.UUID          `json:"id"`
	Items []CartItemResponse `json:"items"`
}

type CartItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Quantity  int             `json:"quantity"`
}

// --- Checkout ---

type CheckoutRequest struct {
	ProductID      uuid.UUID             `json:"product_id" binding:"required"`
	Quantity       int                   `json:"quantity" binding:"required,min=1"`
	Address        string                `json:"address"`
	PaymentMethod  model.PaymentMethod   `json:"payment_method" binding:"required"`
	PaymentDetails *model.PaymentDetails `json:"payment_details"`
	FromCart       bool                  `json:"from_cart"`
}

// --- Order ---

type OrderResponse struct {
	ID             uuid.UUID           `json:"id"`
	ProductID      uuid.UUID           `json:"product_id"`
	ProductName    string              `json:"product_name"`
	ProductImage   string              `json:"product_image"`
	Quantity       int                 `json:"quantity"`
	UnitPrice      decimal.Decimal     `json:"unit_price"`
	DeliveryCharge decimal.Decimal     `json:"delivery_charge"`
	Total          decimal.Decimal     `json:"total"`
	Address        string              `json:"address"`
	PaymentMethod  model.PaymentMethod `json:"payment_method"`
	Status         model.OrderStatus   `json:"status"`
	PurchasedAt    time.Time           `json:"purchased_at"`
	DeliveryFrom   time.Time           `json:"delivery_from"`
	DeliveryUntil  time.Time           `json:"delivery_until"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int             `json:"total"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

type CancelledOrderResponse struct {
	OrderResponse
	CancelReason string    `json:"cancel_reason"`
	CancelledAt  time.Time `json:"cancelled_at"`
}

// --- Admin ---

type SetBlockedRequest struct {
	Blocked bool `json:"blocked"`
}

type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int            `json:"total"`
}
