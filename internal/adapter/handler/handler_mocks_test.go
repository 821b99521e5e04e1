package handler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/cake-orders/internal/adapter/storage"
	"github.com/rl1809/cake-orders/internal/core/domain"
	"github.com/rl1809/cake-orders/internal/core/pricing"
	"github.com/rl1809/cake-orders/internal/core/rush"
	"github.com/rl1809/cake-orders/internal/core/service"
)

// 2026-06-01 09:00 UTC
var testNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

type mockBackend struct {
	mu       sync.Mutex
	orders   []domain.OrderRequest
	orderErr error
	history  map[string][]domain.PastOrder
}

func (m *mockBackend) CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderConfirmation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.orderErr != nil {
		return nil, m.orderErr
	}
	m.orders = append(m.orders, req)
	return &domain.OrderConfirmation{OrderID: "ord-1"}, nil
}

func (m *mockBackend) SearchCustomers(ctx context.Context, query string) ([]domain.Customer, error) {
	return []domain.Customer{{ID: "c-1", Name: query}}, nil
}

func (m *mockBackend) CreateCustomer(ctx context.Context, c domain.NewCustomer) (*domain.Customer, error) {
	return &domain.Customer{ID: "c-new", Name: c.Name, Email: c.Email}, nil
}

func (m *mockBackend) RecentOrders(ctx context.Context, customerID string) ([]domain.PastOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history[customerID], nil
}

type pingStore struct {
	*storage.MemoryAdapter
	mu  sync.Mutex
	err error
}

func (p *pingStore) Ping(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *pingStore) setErr(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

var errDown = errors.New("connection refused")

type testEnv struct {
	handler  *HTTPHandler
	sessions *service.Sessions
	backend  *mockBackend
	clock    *clockwork.FakeClock
}

func newTestEnv() *testEnv {
	fc := clockwork.NewFakeClockAt(testNow)
	store := storage.NewMemoryAdapter()
	backend := &mockBackend{history: map[string][]domain.PastOrder{}}
	policy := rush.NewPolicy(fc, rush.WithLocation(time.UTC))
	engine := pricing.NewEngine(domain.DefaultCatalog())

	sessions := service.NewSessions("test", func(key string) (*service.Wizard, *service.CustomerSearch) {
		w := service.NewWizard(service.WizardConfig{
			Drafts:  service.NewDraftKeeper(store, fc, key, service.DefaultDraftTTL),
			Orders:  backend,
			Pricing: engine,
			Rush:    policy,
			Clock:   fc,
		})
		return w, service.NewCustomerSearch(backend, fc, service.DefaultSearchDebounce)
	})

	h := NewHTTPHandler(sessions, service.NewCustomerService(backend), engine, time.Second)
	return &testEnv{handler: h, sessions: sessions, backend: backend, clock: fc}
}

// waitForWaiters blocks until fc has exactly n pending timers and tickers.
func waitForWaiters(t *testing.T, fc *clockwork.FakeClock, n int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, fc.BlockUntilContext(ctx, n))
}
