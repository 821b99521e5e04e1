package port

import (
	"context"
	"errors"

	"github.com/rl1809/cake-orders/internal/core/domain"
)

var (
	// ErrRejected marks a request the backend refused as invalid.
	ErrRejected = errors.New("rejected by backend")
	// ErrUnavailable marks a backend that is not accepting calls right now.
	ErrUnavailable = errors.New("backend unavailable")
)

type OrderGateway interface {
	// CreateOrder submits a finished configuration and returns the backend's order id
	CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderConfirmation, error)
}

type CustomerDirectory interface {
	// SearchCustomers returns customer summaries matching a free-text query
	SearchCustomers(ctx context.Context, query string) ([]domain.Customer, error)

	// CreateCustomer registers a new customer
	CreateCustomer(ctx context.Context, c domain.NewCustomer) (*domain.Customer, error)

	// RecentOrders returns a customer's latest orders, newest first
	RecentOrders(ctx context.Context, customerID string) ([]domain.PastOrder, error)
}
