package checkout

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/DMHCAIT/Bag-kibana-sub000/internal/domain"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/notification"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/order"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/payment"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/profile"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/tracking"
)

type memSessionRepo struct {
	m        sync.Mutex
	sessions map[string]*domain.CheckoutSession
	byKey    map[string]string
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{
		sessions: make(map[string]*domain.CheckoutSession),
		byKey:    make(map[string]string),
	}
}

func (r *memSessionRepo) CreateSession(_ context.Context, s *domain.CheckoutSession) error {
	r.m.Lock()
	defer r.m.Unlock()
	cp := *s
	r.sessions[s.ID] = &cp
	if s.IdempotencyKey != "" {
		r.byKey[s.IdempotencyKey] = s.ID
	}
	return nil
}

func (r *memSessionRepo) GetSession(_ context.Context, id string) (*domain.CheckoutSession, error) {
	r.m.Lock()
	defer r.m.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memSessionRepo) GetSessionByIdempotencyKey(_ context.Context, key string) (*domain.CheckoutSession, error) {
	r.m.Lock()
	defer r.m.Unlock()
	id, ok := r.byKey[key]
	if !ok {
		return nil, ErrIdempotencyKeyNotFound
	}
	cp := *r.sessions[id]
	return &cp, nil
}

func (r *memSessionRepo) UpdateSession(_ context.Context, s *domain.CheckoutSession) error {
	r.m.Lock()
	defer r.m.Unlock()
	if _, ok := r.sessions[s.ID]; !ok {
		return ErrSessionNotFound
	}
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

type mockCarts struct {
	m        sync.Mutex
	snapshot domain.CartSnapshot
	clears   int
}

func (m *mockCarts) Snapshot(context.Context, string) (*domain.CartSnapshot, error) {
	m.m.Lock()
	defer m.m.Unlock()
	cp := m.snapshot
	return &cp, nil
}

func (m *mockCarts) Clear(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.clears++
	return nil
}

func (m *mockCarts) clearCount() int {
	m.m.Lock()
	defer m.m.Unlock()
	return m.clears
}

type mockAddressBook struct {
	m     sync.Mutex
	saved *domain.Address
	saves int
}

func (m *mockAddressBook) GetSavedAddress(context.Context, string) (*domain.Address, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.saved == nil {
		return nil, profile.ErrAddressNotFound
	}
	cp := *m.saved
	return &cp, nil
}

func (m *mockAddressBook) SaveAddress(_ context.Context, _ string, addr domain.Address) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.saved = &addr
	m.saves++
	return nil
}

type mockOrders struct {
	m          sync.Mutex
	byCheckout map[uuid.UUID]*domain.Order
	createErr  error
	creates    int
}

func newMockOrders() *mockOrders {
	return &mockOrders{byCheckout: make(map[uuid.UUID]*domain.Order)}
}

func (m *mockOrders) CreateOrder(_ context.Context, ord *domain.Order) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.creates++
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.byCheckout[ord.CheckoutID]; exists {
		return order.ErrDuplicateCheckout
	}
	cp := *ord
	m.byCheckout[ord.CheckoutID] = &cp
	return nil
}

func (m *mockOrders) GetOrderByCheckoutID(_ context.Context, checkoutID uuid.UUID) (*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	ord, ok := m.byCheckout[checkoutID]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	cp := *ord
	return &cp, nil
}

func (m *mockOrders) createCount() int {
	m.m.Lock()
	defer m.m.Unlock()
	return m.creates
}

type mockGateway struct {
	m         sync.Mutex
	createErr error
	verifyOK  bool
	verifyErr error
	created   []payment.GatewayOrder
}

func (m *mockGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string) (*payment.GatewayOrder, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	gw := payment.GatewayOrder{
		ID:       "gw_order_" + uuid.New().String()[:8],
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	}
	m.created = append(m.created, gw)
	return &gw, nil
}

func (m *mockGateway) VerifyPayment(context.Context, payment.CallbackResult) (bool, error) {
	m.m.Lock()
	defer m.m.Unlock()
	return m.verifyOK, m.verifyErr
}

func (m *mockGateway) createdCount() int {
	m.m.Lock()
	defer m.m.Unlock()
	return len(m.created)
}

type mockNotifier struct {
	m      sync.Mutex
	events []notification.OrderConfirmation
}

func (m *mockNotifier) OrderConfirmed(_ context.Context, event notification.OrderConfirmation) {
	m.m.Lock()
	defer m.m.Unlock()
	m.events = append(m.events, event)
}

func (m *mockNotifier) eventCount() int {
	m.m.Lock()
	defer m.m.Unlock()
	return len(m.events)
}

type mockTracker struct {
	m       sync.Mutex
	records map[string]tracking.Record
}

func newMockTracker() *mockTracker {
	return &mockTracker{records: make(map[string]tracking.Record)}
}

func (m *mockTracker) Save(_ context.Context, userID string, record tracking.Record) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.records[userID] = record
	return nil
}

func (m *mockTracker) get(userID string) (tracking.Record, bool) {
	m.m.Lock()
	defer m.m.Unlock()
	r, ok := m.records[userID]
	return r, ok
}
