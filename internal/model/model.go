package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Password  string
	Role      Role
	IsBlocked bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Category string

const (
	CategoryHatchback Category = "Hatchback"
	CategorySedan     Category = "Sedan"
	CategorySUV       Category = "SUV"
	CategoryTruck     Category = "Truck"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryHatchback, CategorySedan, CategorySUV, CategoryTruck:
		return true
	}
	return false
}

type Product struct {
	ID          uuid.UUID
	Name        string
	Brand       string
	Color       string
	Description string
	Image       string
	Category    Category
	Price       decimal.Decimal
	Stock       int
	Reviews     []Review
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DeletedProduct is a product parked in the trash bin. It keeps the original
// product id so a restore puts the record back unchanged.
type DeletedProduct struct {
	Product
	DeletedAt time.Time
}

type Review struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Author    string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

type Cart struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CartItem struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PaymentMethod string

const (
	PaymentCOD  PaymentMethod = "COD"
	PaymentUPI  PaymentMethod = "UPI"
	PaymentCard PaymentMethod = "Card"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCOD, PaymentUPI, PaymentCard:
		return true
	}
	return false
}

// PaymentDetails is captured as-is and stored opaque. Only the shape is
// checked at checkout; nothing is ever charged.
type PaymentDetails struct {
	CardNumber string `json:"number,omitempty"`
	CardExpiry string `json:"expiry,omitempty"`
	CardCVV    string `json:"cvv,omitempty"`
	UPIID      string `json:"upi_id,omitempty"`
}

type OrderStatus string

const (
	OrderStatusOrdered   OrderStatus = "Ordered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

type Order struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	ProductID      uuid.UUID
	ProductName    string
	ProductImage   string
	Quantity       int
	UnitPrice      decimal.Decimal
	DeliveryCharge decimal.Decimal
	Total          decimal.Decimal
	Address        string
	PaymentMethod  PaymentMethod
	PaymentDetails PaymentDetails
	Status         OrderStatus
	PurchasedAt    time.Time
	DeliveryFrom   time.Time
	DeliveryUntil  time.Time
}

// CancelledOrder is an order moved out of the active ledger. The order id is
// preserved so the archive row and the deleted row stay correlated.
type CancelledOrder struct {
	Order
	CancelReason string
	CancelledAt  time.Time
}

type OrderEventKind string

const (
	OrderEventPlaced    OrderEventKind = "order.placed"
	OrderEventCancelled OrderEventKind = "order.cancelled"
)

type OrderEvent struct {
	Kind    OrderEventKind `json:"kind"`
	OrderID uuid.UUID      `json:"order_id"`
	UserID  uuid.UUID      `json:"user_id"`
}
