package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"fast-order/config"
	"fast-order/internal/models"
	"fast-order/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory stand-in for *store.Store. Conditional statements
// run under one mutex, like a single SQL statement would.
type memStore struct {
	mu sync.Mutex

	products      map[uuid.UUID]*models.Product
	users         map[uuid.UUID]*models.User
	roles         map[uuid.UUID]*models.Role
	orders        map[uuid.UUID]*models.Order
	notifications map[string]*models.Notification

	delay          time.Duration
	rejectDecrease bool
	updateOrderErr error
	createOrderErr error
}

func newMemStore() *memStore {
	return &memStore{
		products:      map[uuid.UUID]*models.Product{},
		users:         map[uuid.UUID]*models.User{},
		roles:         map[uuid.UUID]*models.Role{},
		orders:        map[uuid.UUID]*models.Order{},
		notifications: map[string]*models.Notification{},
	}
}

func (m *memStore) wait(ctx context.Context) error {
	if m.delay == 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(m.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *memStore) addProduct(stock int) *models.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &models.Product{
		ID:          uuid.New(),
		Name:        "product-" + uuid.NewString()[:8],
		Stock:       stock,
		Price:       decimal.NewFromInt(10),
		Description: "a test product",
	}
	m.products[p.ID] = p
	cp := *p
	return &cp
}

func (m *memStore) addUser() *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &models.User{ID: uuid.New(), Name: "Test User", Email: uuid.NewString()[:8] + "@example.com"}
	m.users[u.ID] = u
	cp := *u
	return &cp
}

func (m *memStore) stockOf(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Stock
}

func (m *memStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func (m *memStore) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) GetProductByName(_ context.Context, name string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) GetProducts(context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Product{}
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memStore) CreateProduct(_ context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.Name == product.Name {
			return store.ErrUniqueViolation
		}
	}
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	cp := *product
	m.products[product.ID] = &cp
	return nil
}

func (m *memStore) UpdateProduct(_ context.Context, product *models.Product) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[product.ID]
	if !ok {
		return 0, nil
	}
	p.Name, p.Price, p.Description = product.Name, product.Price, product.Description
	return 1, nil
}

func (m *memStore) UpdateProductPrice(_ context.Context, id uuid.UUID, price decimal.Decimal) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return 0, nil
	}
	p.Price = price
	return 1, nil
}

func (m *memStore) DeleteProduct(_ context.Context, id uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return 0, nil
	}
	for _, o := range m.orders {
		if o.ProductID == id {
			return 0, store.ErrForeignKeyViolation
		}
	}
	delete(m.products, id)
	return 1, nil
}

func (m *memStore) DecreaseStock(ctx context.Context, id uuid.UUID, amount int) (int64, error) {
	if err := m.wait(ctx); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok || m.rejectDecrease || p.Stock < amount {
		return 0, nil
	}
	p.Stock -= amount
	return 1, nil
}

func (m *memStore) IncreaseStock(ctx context.Context, id uuid.UUID, amount int) (int64, error) {
	if err := m.wait(ctx); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return 0, nil
	}
	p.Stock += amount
	return 1, nil
}

func (m *memStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) GetUsers(context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.User{}
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *memStore) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return store.ErrUniqueViolation
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memStore) UpdateUser(_ context.Context, user *models.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return 0, nil
	}
	cp := *user
	m.users[user.ID] = &cp
	return 1, nil
}

func (m *memStore) DeleteUser(_ context.Context, id uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return 0, nil
	}
	for _, o := range m.orders {
		if o.UserID == id {
			return 0, store.ErrForeignKeyViolation
		}
	}
	delete(m.users, id)
	return 1, nil
}

func (m *memStore) CreateRole(_ context.Context, role *models.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.roles {
		if r.RoleName == role.RoleName {
			return store.ErrUniqueViolation
		}
	}
	cp := *role
	m.roles[role.ID] = &cp
	return nil
}

func (m *memStore) SeedRole(ctx context.Context, role *models.Role) error {
	if err := m.CreateRole(ctx, role); err != nil && err != store.ErrUniqueViolation {
		return err
	}
	return nil
}

func (m *memStore) GetRoleByID(_ context.Context, id uuid.UUID) (*models.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.roles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) GetRoleByName(_ context.Context, name string) (*models.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.roles {
		if r.RoleName == name {
			cp := *r
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) GetRoles(context.Context) ([]models.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Role{}
	for _, r := range m.roles {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoleName < out[j].RoleName })
	return out, nil
}

func (m *memStore) CreateOrder(_ context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createOrderErr != nil {
		return m.createOrderErr
	}
	cp := *order
	m.orders[order.ID] = &cp
	return nil
}

func (m *memStore) UpdateOrder(_ context.Context, order, prev *models.Order) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateOrderErr != nil {
		return 0, m.updateOrderErr
	}
	o, ok := m.orders[order.ID]
	if !ok || o.Status != models.OrderStatusPending || o.Amount != prev.Amount || o.ProductID != prev.ProductID {
		return 0, nil
	}
	o.Amount, o.ProductID, o.UserID, o.Status, o.UpdatedAt = order.Amount, order.ProductID, order.UserID, order.Status, order.UpdatedAt
	return 1, nil
}

func (m *memStore) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memStore) GetOrders(context.Context) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Order{}
	for _, o := range m.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (m *memStore) CancelOrder(_ context.Context, id uuid.UUID, status models.OrderStatus, expectedAmount int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.Status != models.OrderStatusPending || o.Amount != expectedAmount {
		return 0, nil
	}
	o.Status = status
	o.Amount = 0
	o.UpdatedAt = time.Now()
	return 1, nil
}

func (m *memStore) DeleteOrder(_ context.Context, id uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return 0, nil
	}
	delete(m.orders, id)
	return 1, nil
}

func (m *memStore) CreateNotification(_ context.Context, n *models.Notification) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notifications[n.EventID]; ok {
		return false, nil
	}
	n.CreatedAt = time.Now()
	cp := *n
	m.notifications[n.EventID] = &cp
	return true, nil
}

func (m *memStore) GetNotificationsByOrderID(_ context.Context, orderID uuid.UUID) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Notification{}
	for _, n := range m.notifications {
		if n.OrderID == orderID {
			out = append(out, *n)
		}
	}
	return out, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*models.NotificationEvent
	err    error
}

func (p *fakePublisher) PublishNotification(_ context.Context, event *models.NotificationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) messages() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Message)
	}
	return out
}

type fakeIdempotency struct {
	mu    sync.Mutex
	bound map[string]uuid.UUID
}

func (f *fakeIdempotency) LookupOrder(_ context.Context, key string) (uuid.UUID, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.bound[key]
	return id, ok, nil
}

func (f *fakeIdempotency) BindOrder(_ context.Context, key string, orderID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bound[key]; !ok {
		f.bound[key] = orderID
	}
	return nil
}

type fakeDeduper struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func (f *fakeDeduper) IsEventProcessed(_ context.Context, eventID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return f.seen[eventID], nil
}

func (f *fakeDeduper) MarkEventProcessed(_ context.Context, eventID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	first := !f.seen[eventID]
	f.seen[eventID] = true
	return first, nil
}

var testBusiness = config.BusinessConfig{
	PersistenceTimeout: time.Second,
	PublishTimeout:     time.Second,
}

type orderFixture struct {
	store       *memStore
	publisher   *fakePublisher
	idempotency *fakeIdempotency
	ledger      *StockLedger
	orders      *OrderService
}

func newOrderFixture() *orderFixture {
	st := newMemStore()
	pub := &fakePublisher{}
	idem := &fakeIdempotency{bound: map[string]uuid.UUID{}}
	ledger := NewStockLedger(st, testBusiness.PersistenceTimeout)
	return &orderFixture{
		store:       st,
		publisher:   pub,
		idempotency: idem,
		ledger:      ledger,
		orders:      NewOrderService(st, st, st, ledger, pub, idem, testBusiness),
	}
}
