package service

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rl1809/cake-orders/internal/core/domain"
	"github.com/rl1809/cake-orders/internal/port"
)

const (
	DefaultSearchDebounce = 300 * time.Millisecond
	MinSearchQueryLength  = 2
	searchTimeout         = 10 * time.Second
)

type SearchResults struct {
	Seq       uint64            `json:"seq"`
	Query     string            `json:"query"`
	Customers []domain.Customer `json:"customers"`
	Pending   bool              `json:"pending"`
	Error     string            `json:"error,omitempty"`
}

// CustomerSearch debounces typed queries into backend searches. Each fired
// request takes the next sequence number and only the latest one may publish.
type CustomerSearch struct {
	dir   port.CustomerDirectory
	clock port.Clock
	delay time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	timer   clockwork.Timer
	issued  uint64
	latest  string
	results SearchResults
	closed  bool
}

func NewCustomerSearch(dir port.CustomerDirectory, clock port.Clock, delay time.Duration) *CustomerSearch {
	if delay <= 0 {
		delay = DefaultSearchDebounce
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &CustomerSearch{
		dir:     dir,
		clock:   clock,
		delay:   delay,
		ctx:     ctx,
		cancel:  cancel,
		results: SearchResults{Customers: []domain.Customer{}},
	}
}

// Query records new input and restarts the quiet period. Short queries clear results immediately.
func (s *CustomerSearch) Query(q string) {
	q = strings.TrimSpace(q)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.latest = q

	if len([]rune(q)) < MinSearchQueryLength {
		s.issued++
		s.results = SearchResults{Seq: s.issued, Query: q, Customers: []domain.Customer{}}
		return
	}

	s.results.Pending = true
	s.timer = s.clock.AfterFunc(s.delay, s.fire)
}

func (s *CustomerSearch) fire() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.issued++
	seq, q := s.issued, s.latest
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(s.ctx, searchTimeout)
	defer cancel()
	customers, err := s.dir.SearchCustomers(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if seq != s.issued {
		log.Printf("customer search: dropping stale response #%d for %q (latest #%d)", seq, q, s.issued)
		return
	}

	res := SearchResults{Seq: seq, Query: q, Customers: customers, Pending: s.timer != nil}
	if err != nil {
		log.Printf("customer search %q failed: %v", q, err)
		res.Error = "customer search failed, please try again"
		res.Customers = nil
	}
	if res.Customers == nil {
		res.Customers = []domain.Customer{}
	}
	s.results = res
}

func (s *CustomerSearch) Results() SearchResults {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.results
	r.Customers = make([]domain.Customer, len(s.results.Customers))
	copy(r.Customers, s.results.Customers)
	return r
}

// Close cancels the pending timer and any request in flight.
func (s *CustomerSearch) Close() {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.cancel()
}
