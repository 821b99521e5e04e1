package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rl1809/cake-orders/internal/core/domain"
)

// ExtraLayerCents is charged for every custom layer beyond the second.
const ExtraLayerCents = 1500

var ErrInvalidDeposit = errors.New("invalid deposit amount")

var hundred = decimal.NewFromInt(100)

type Engine struct {
	catalog *domain.Catalog
}

func NewEngine(catalog *domain.Catalog) *Engine {
	return &Engine{catalog: catalog}
}

func (e *Engine) Catalog() *domain.Catalog {
	return e.catalog
}

// CalculateTotal returns the order total in cents.
func (e *Engine) CalculateTotal(d domain.OrderDraft) int64 {
	size := e.catalog.SizePrice(d.CakeSize)

	if d.CakeType == domain.CakeTypeStandard {
		return e.catalog.StandardBasePrice(d.StandardCakeID)*100 + size
	}

	total := size
	if extra := len(d.Layers) - domain.MinCustomLayers; extra > 0 {
		total += int64(extra) * ExtraLayerCents
	}
	return total
}

// DepositRequired is half the total, rounded up to the cent.
func DepositRequired(total int64) int64 {
	if total <= 0 {
		return 0
	}
	return (total + 1) / 2
}

func BalanceDue(total, deposit int64) int64 {
	return total - deposit
}

// ParseMoney converts a dollar string such as "30", "30.5" or "$1,200.00" to cents.
func ParseMoney(s string) (int64, error) {
	clean := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
	amount, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDeposit, s)
	}
	if amount.IsNegative() {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidDeposit, s)
	}
	return amount.Mul(hundred).Round(0).IntPart(), nil
}

// ResolveDeposit honors the override string when present, otherwise the required deposit.
func ResolveDeposit(total int64, override string) (int64, error) {
	if strings.TrimSpace(override) == "" {
		return DepositRequired(total), nil
	}
	return ParseMoney(override)
}

type Quote struct {
	TotalCents    int64 `json:"totalCents"`
	DepositCents  int64 `json:"depositCents"`
	RequiredCents int64 `json:"requiredDepositCents"`
	BalanceCents  int64 `json:"balanceCents"`
	// DepositError is set when the override could not be parsed; the required deposit is used instead.
	DepositError string `json:"depositError,omitempty"`
}

func (e *Engine) Quote(d domain.OrderDraft) Quote {
	total := e.CalculateTotal(d)
	q := Quote{
		TotalCents:    total,
		RequiredCents: DepositRequired(total),
	}
	deposit, err := ResolveDeposit(total, d.DepositAmount)
	if err != nil {
		q.DepositError = err.Error()
		deposit = q.RequiredCents
	}
	q.DepositCents = deposit
	q.BalanceCents = BalanceDue(total, deposit)
	return q
}
