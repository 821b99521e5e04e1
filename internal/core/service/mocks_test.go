package service

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
)

var shop = time.FixedZone("shop", 0)

// 2026-06-01 09:00 shop time.
var testNow = time.Date(2026, 6, 1, 9, 0, 0, 0, shop)

// Mock OrderGateway
type mockOrderGateway struct {
	mu       sync.Mutex
	requests []domain.OrderRequest
	err      error
	// block, when set, holds CreateOrder until closed
	block   chan struct{}
	started chan struct{}
}

func (m *mockOrderGateway) CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderConfirmation, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	block, started, err := m.block, m.started, m.err
	m.mu.Unlock()

	if started != nil {
		close(started)
	}
	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	return &domain.OrderConfirmation{OrderID: "order-1"}, nil
}

func (m *mockOrderGateway) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Mock DraftStore that can be made to fail
type failingStore struct {
	*storage.MemoryAdapter
	mu      sync.Mutex
	saveErr error
	loadErr error
	// saveGate, when set, holds every Save until closed; saving reports each held Save
	saveGate chan struct{}
	saving   chan struct{}
}

func (f *failingStore) holdSaves(gate chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveGate = gate
	f.saving = make(chan struct{}, 4)
}

func (f *failingStore) Save(ctx context.Context, key string, blob []byte) error {
	f.mu.Lock()
	err, gate, saving := f.saveErr, f.saveGate, f.saving
	f.mu.Unlock()
	if err != nil {
		return err
	}
	if gate != nil {
		saving <- struct{}{}
		<-gate
	}
	return f.MemoryAdapter.Save(ctx, key, blob)
}

func (f *failingStore) Load(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	err := f.loadErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.MemoryAdapter.Load(ctx, key)
}

var errStoreDown = errors.New("store down")

type wizardEnv struct {
	wizard *Wizard
	clock  *clockwork.FakeClock
	store  *failingStore
	orders *mockOrderGateway
	keeper *DraftKeeper
}

func newWizardEnv() *wizardEnv {
	fc := clockwork.NewFakeClockAt(testNow)
	store := &failingStore{MemoryAdapter: storage.NewMemoryAdapter()}
	orders := &mockOrderGateway{}
	keeper := NewDraftKeeper(store, fc, "test-draft", DefaultDraftTTL)

	ids := 0
	w := NewWizard(WizardConfig{
		Drafts:  keeper,
		Orders:  orders,
		Pricing: pricing.NewEngine(domain.DefaultCatalog()),
		Rush:    rush.NewPolicy(fc, rush.WithLocation(shop)),
		Clock:   fc,
		NewID: func() string {
			ids++
			return "draft-" + string(rune('0'+ids))
		},
	})
	return &wizardEnv{wizard: w, clock: fc, store: store, orders: orders, keeper: keeper}
}

// Mock CustomerDirectory
type mockDirectory struct {
	mu        sync.Mutex
	customers []domain.Customer
	queries   []string
	history   map[string][]domain.PastOrder
	histCalls int
	created   []domain.NewCustomer
	err       error
	// gates holds per-query channels that block SearchCustomers until closed
	gates    map[string]chan struct{}
	started  chan string
	finished chan string
}

func (m *mockDirectory) SearchCustomers(ctx context.Context, query string) ([]domain.Customer, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	gate := m.gates[query]
	started, finished := m.started, m.finished
	m.mu.Unlock()

	if started != nil {
		started <- query
	}
	if finished != nil {
		defer func() { finished <- query }()
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return []domain.Customer{{ID: "c-" + query, Name: query}}, nil
}

func (m *mockDirectory) CreateCustomer(ctx context.Context, c domain.NewCustomer) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, c)
	return &domain.Customer{ID: "c-new", Name: c.Name, Email: c.Email, Phone: c.Phone}, nil
}

func (m *mockDirectory) RecentOrders(ctx context.Context, customerID string) ([]domain.PastOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histCalls++
	return m.history[customerID], nil
}

func (m *mockDirectory) searchedQueries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// waitForWaiters blocks until fc has exactly n pending timers and tickers.
func waitForWaiters(t *testing.T, fc *clockwork.FakeClock, n int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, fc.BlockUntilContext(ctx, n))
}
