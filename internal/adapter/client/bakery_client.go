package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/rl1809/cake-orders/internal/core/domain"
	"github.com/rl1809/cake-orders/internal/port"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultTripAfter = 5
	maxErrorBody     = 4 << 10
)

// APIError is a non-2xx reply from the bakery backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bakery api: %d %s", e.Status, e.Message)
}

// Is lets validation rejections match port.ErrRejected.
func (e *APIError) Is(target error) bool {
	if target != port.ErrRejected {
		return false
	}
	return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
}

type BakeryClient struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

type Option func(*options)

type options struct {
	timeout     time.Duration
	tripAfter   uint32
	openTimeout time.Duration
	transport   http.RoundTripper
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithBreaker sets how many consecutive failures open the breaker and how long it stays open.
func WithBreaker(failures uint32, open time.Duration) Option {
	return func(o *options) {
		o.tripAfter = failures
		o.openTimeout = open
	}
}

func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

func NewBakeryClient(baseURL string, opts ...Option) *BakeryClient {
	o := options{
		timeout:     defaultTimeout,
		tripAfter:   defaultTripAfter,
		openTimeout: 30 * time.Second,
		transport:   http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(&o)
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "bakery-api",
		Timeout: o.openTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= o.tripAfter
		},
		// rejected or abandoned requests say nothing about backend health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, port.ErrRejected) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &BakeryClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   o.timeout,
			Transport: otelhttp.NewTransport(o.transport),
		},
		breaker: breaker,
	}
}

func (c *BakeryClient) SearchCustomers(ctx context.Context, query string) ([]domain.Customer, error) {
	var out []domain.Customer
	path := "/api/customers/search?q=" + url.QueryEscape(query)
	if err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	if out == nil {
		out = []domain.Customer{}
	}
	return out, nil
}

func (c *BakeryClient) CreateCustomer(ctx context.Context, nc domain.NewCustomer) (*domain.Customer, error) {
	var out domain.Customer
	if err := c.call(ctx, http.MethodPost, "/api/customers", nc, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *BakeryClient) RecentOrders(ctx context.Context, customerID string) ([]domain.PastOrder, error) {
	var out []domain.PastOrder
	path := "/api/customers/" + url.PathEscape(customerID) + "/orders/recent"
	if err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.PastOrder{}
	}
	return out, nil
}

func (c *BakeryClient) CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderConfirmation, error) {
	var out domain.OrderConfirmation
	if err := c.call(ctx, http.MethodPost, "/api/orders", req, &out); err != nil {
		return nil, err
	}
	if out.OrderID == "" {
		return nil, errors.New("bakery api: order created without an id")
	}
	return &out, nil
}

func (c *BakeryClient) call(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, method, path, payload)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", port.ErrUnavailable, err)
	}
	if err != nil {
		return err
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *BakeryClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(raw, resp.Status)}
	}
	return io.ReadAll(resp.Body)
}

// errorMessage pulls {"error": "..."} or {"message": "..."} out of a reply, falling back to the status line.
func errorMessage(raw []byte, status string) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &e) == nil {
		if e.Error != "" {
			return e.Error
		}
		if e.Message != "" {
			return e.Message
		}
	}
	if s := strings.TrimSpace(string(raw)); s != "" {
		return s
	}
	return status
}
