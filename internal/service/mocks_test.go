package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/driveline/carstore-api/internal/model"
	"github.com/driveline/carstore-api/internal/repository"
	"github.com/driveline/carstore-api/internal/session"
)

// --- product repo ---

type mockProductRepo struct {
	products map[uuid.UUID]*model.Product
	deleted  map[uuid.UUID]*model.DeletedProduct
	reviews  []model.Review
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{
		products: make(map[uuid.UUID]*model.Product),
		deleted:  make(map[uuid.UUID]*model.DeletedProduct),
	}
}

func (m *mockProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *mockProductRepo) List(_ context.Context, category, search string) ([]model.Product, error) {
	var all []model.Product
	for _, p := range m.products {
		if category != "" && string(p.Category) != category {
			continue
		}
		all = append(all, *p)
	}
	return all, nil
}

func (m *mockProductRepo) Update(_ context.Context, p *model.Product) error {
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *mockProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.products, id)
	return nil
}

func (m *mockProductRepo) AdjustStock(_ context.Context, id uuid.UUID, delta int) error {
	p, ok := m.products[id]
	if !ok {
		return ErrProductNotFound
	}
	p.Stock += delta
	if p.Stock < 0 {
		p.Stock = 0
	}
	return nil
}

func (m *mockProductRepo) InsertDeleted(_ context.Context, dp *model.DeletedProduct) error {
	dp.DeletedAt = time.Now()
	cp := *dp
	m.deleted[dp.ID] = &cp
	return nil
}

func (m *mockProductRepo) GetDeleted(_ context.Context, id uuid.UUID) (*model.DeletedProduct, error) {
	dp, ok := m.deleted[id]
	if !ok {
		return nil, nil
	}
	cp := *dp
	return &cp, nil
}

func (m *mockProductRepo) ListDeleted(_ context.Context) ([]model.DeletedProduct, error) {
	var all []model.DeletedProduct
	for _, dp := range m.deleted {
		all = append(all, *dp)
	}
	return all, nil
}

func (m *mockProductRepo) RemoveDeleted(_ context.Context, id uuid.UUID) error {
	delete(m.deleted, id)
	return nil
}

func (m *mockProductRepo) AddReview(_ context.Context, r *model.Review) error {
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	m.reviews = append(m.reviews, *r)
	return nil
}

func (m *mockProductRepo) ListReviews(_ context.Context, productID uuid.UUID) ([]model.Review, error) {
	var out []model.Review
	for _, r := range m.reviews {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

// --- cart repo ---

type mockCartRepo struct {
	carts map[uuid.UUID]*model.Cart
	items []model.CartItem
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{carts: make(map[uuid.UUID]*model.Cart)}
}

func (m *mockCartRepo) GetOrCreateCart(_ context.Context, userID uuid.UUID) (*model.Cart, error) {
	for _, c := range m.carts {
		if c.UserID == userID {
			return c, nil
		}
	}
	cart := &model.Cart{ID: uuid.New(), UserID: userID}
	m.carts[cart.ID] = cart
	return cart, nil
}

func (m *mockCartRepo) GetCartWithItems(_ context.Context, cartID uuid.UUID) (*model.Cart, error) {
	cart, ok := m.carts[cartID]
	if !ok {
		return nil, nil
	}
	cp := *cart
	cp.Items = nil
	for _, item := range m.items {
		if item.CartID == cartID {
			cp.Items = append(cp.Items, item)
		}
	}
	return &cp, nil
}

func (m *mockCartRepo) AddItem(_ context.Context, item *model.CartItem) error {
	for _, existing := range m.items {
		if existing.CartID == item.CartID && existing.ProductID == item.ProductID {
			return repository.ErrDuplicate
		}
	}
	item.ID = uuid.New()
	m.items = append(m.items, *item)
	return nil
}

func (m *mockCartRepo) SetItemQuantity(_ context.Context, cartID, productID uuid.UUID, quantity int) error {
	for i := range m.items {
		if m.items[i].CartID == cartID && m.items[i].ProductID == productID {
			m.items[i].Quantity = quantity
			return nil
		}
	}
	return ErrProductNotFound
}

func (m *mockCartRepo) DeleteItemByProduct(_ context.Context, cartID, productID uuid.UUID) error {
	out := m.items[:0]
	for _, item := range m.items {
		if !(item.CartID == cartID && item.ProductID == productID) {
			out = append(out, item)
		}
	}
	m.items = out
	return nil
}

// --- order repo ---

type mockOrderRepo struct {
	orders    []model.Order
	cancelled []model.CancelledOrder
}

func newMockOrderRepo() *mockOrderRepo { return &mockOrderRepo{} }

func (m *mockOrderRepo) Create(_ context.Context, order *model.Order) error {
	order.ID = uuid.New()
	m.orders = append(m.orders, *order)
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	for _, o := range m.orders {
		if o.ID == id {
			cp := o
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockOrderRepo) ListByUser(_ context.Context, userID uuid.UUID, since time.Time) ([]model.Order, error) {
	var out []model.Order
	for _, o := range m.orders {
		if o.UserID != userID {
			continue
		}
		if !since.IsZero() && o.PurchasedAt.Before(since) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (m *mockOrderRepo) ListAll(_ context.Context) ([]model.Order, error) {
	return append([]model.Order(nil), m.orders...), nil
}

func (m *mockOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, o := range m.orders {
		if o.ID == id {
			m.orders = append(m.orders[:i], m.orders[i+1:]...)
			return nil
		}
	}
	return ErrOrderNotFound
}

func (m *mockOrderRepo) InsertCancelled(_ context.Context, co *model.CancelledOrder) error {
	m.cancelled = append(m.cancelled, *co)
	return nil
}

func (m *mockOrderRepo) ListCancelledByUser(_ context.Context, userID uuid.UUID) ([]model.CancelledOrder, error) {
	var out []model.CancelledOrder
	for _, co := range m.cancelled {
		if co.UserID == userID {
			out = append(out, co)
		}
	}
	return out, nil
}

// --- user repo ---

type mockUserRepo struct {
	users map[string]*model.User
	byID  map[uuid.UUID]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User), byID: make(map[uuid.UUID]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.Email]; ok {
		return repository.ErrDuplicate
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	m.users[user.Email] = user
	m.byID[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	return m.byID[id], nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return m.users[email], nil
}

func (m *mockUserRepo) List(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range m.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockUserRepo) SetBlocked(_ context.Context, id uuid.UUID, blocked bool) (*model.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	u.IsBlocked = blocked
	cp := *u
	return &cp, nil
}

// --- session store ---

type mockSessionStore struct {
	slots map[uuid.UUID]session.BuyNowSlot
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{slots: make(map[uuid.UUID]session.BuyNowSlot)}
}

func (m *mockSessionStore) StageBuyNow(_ context.Context, userID uuid.UUID, slot session.BuyNowSlot) error {
	m.slots[userID] = slot
	return nil
}

func (m *mockSessionStore) BuyNow(_ context.Context, userID uuid.UUID) (*session.BuyNowSlot, error) {
	slot, ok := m.slots[userID]
	if !ok {
		return nil, nil
	}
	return &slot, nil
}

func (m *mockSessionStore) ClearBuyNow(_ context.Context, userID uuid.UUID) error {
	delete(m.slots, userID)
	return nil
}

// --- event publisher ---

type mockPublisher struct {
	events []model.OrderEvent
}

func (m *mockPublisher) PublishOrderEvent(_ context.Context, event model.OrderEvent) error {
	m.events = append(m.events, event)
	return nil
}
