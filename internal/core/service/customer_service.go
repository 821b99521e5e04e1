package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/rl1809/cake-orders/internal/core/domain"
	"github.com/rl1809/cake-orders/internal/port"
)

var (
	ErrCustomerNameRequired  = errors.New("customer name is required")
	ErrCustomerEmailRequired = errors.New("customer email is required")
	ErrCustomerEmailInvalid  = errors.New("customer email is invalid")
	ErrPastOrderNotFound     = errors.New("past order not found")
)

type CustomerService struct {
	dir port.CustomerDirectory
	sfg singleflight.Group // one history lookup per customer at a time
}

func NewCustomerService(dir port.CustomerDirectory) *CustomerService {
	return &CustomerService{dir: dir}
}

func (s *CustomerService) Directory() port.CustomerDirectory {
	return s.dir
}

func (s *CustomerService) Create(ctx context.Context, nc domain.NewCustomer) (*domain.Customer, error) {
	nc.Name = strings.TrimSpace(nc.Name)
	nc.Email = strings.TrimSpace(nc.Email)
	nc.Phone = strings.TrimSpace(nc.Phone)

	if nc.Name == "" {
		return nil, ErrCustomerNameRequired
	}
	if nc.Email == "" {
		return nil, ErrCustomerEmailRequired
	}
	if addr, err := mail.ParseAddress(nc.Email); err != nil || addr.Address != nc.Email {
		return nil, fmt.Errorf("%w: %q", ErrCustomerEmailInvalid, nc.Email)
	}

	c, err := s.dir.CreateCustomer(ctx, nc)
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return c, nil
}

func (s *CustomerService) RecentOrders(ctx context.Context, customerID string) ([]domain.PastOrder, error) {
	v, err, _ := s.sfg.Do(customerID, func() (interface{}, error) {
		return s.dir.RecentOrders(ctx, customerID)
	})
	if err != nil {
		return nil, fmt.Errorf("recent orders for %s: %w", customerID, err)
	}
	return v.([]domain.PastOrder), nil
}

func (s *CustomerService) PastOrder(ctx context.Context, customerID, orderID string) (*domain.PastOrder, error) {
	orders, err := s.RecentOrders(ctx, customerID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == orderID {
			return &orders[i], nil
		}
	}
	return nil, ErrPastOrderNotFound
}
