// Package rush decides rush-order status and pickup-time validity.
//
// Boundaries are inclusive and computed on exact durations: an event exactly
// MinNoticeDays away is not a rush order, and a pickup exactly PickupBuffer
// away is valid.
package rush

import (
	"errors"
	"fmt"
	"time"

	"github.com/rl1809/cake-orders/internal/core/domain"
	"github.com/rl1809/cake-orders/internal/port"
)

const (
	DefaultMinNoticeDays = 2
	DefaultPickupBuffer  = 4 * time.Hour
)

const day = 24 * time.Hour

var (
	ErrInvalidDate   = errors.New("invalid event date")
	ErrInvalidTime   = errors.New("invalid pickup time")
	ErrPickupPast    = errors.New("pickup time is in the past")
	ErrPickupTooSoon = errors.New("pickup time is too soon")
)

type Policy struct {
	clock         port.Clock
	loc           *time.Location
	minNoticeDays int
	pickupBuffer  time.Duration
}

type Option func(*Policy)

func WithLocation(loc *time.Location) Option {
	return func(p *Policy) { p.loc = loc }
}

func WithMinNoticeDays(n int) Option {
	return func(p *Policy) { p.minNoticeDays = n }
}

func WithPickupBuffer(d time.Duration) Option {
	return func(p *Policy) { p.pickupBuffer = d }
}

func NewPolicy(clock port.Clock, opts ...Option) *Policy {
	p := &Policy{
		clock:         clock,
		loc:           time.Local,
		minNoticeDays: DefaultMinNoticeDays,
		pickupBuffer:  DefaultPickupBuffer,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Policy) MinNoticeDays() int {
	return p.minNoticeDays
}

func (p *Policy) Location() *time.Location {
	return p.loc
}

func (p *Policy) Now() time.Time {
	return p.clock.Now().In(p.loc)
}

// ParseDate reads a YYYY-MM-DD event date as local midnight.
func (p *Policy) ParseDate(eventDate string) (time.Time, error) {
	t, err := time.ParseInLocation(domain.DateLayout, eventDate, p.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, eventDate)
	}
	return t, nil
}

func (p *Policy) untilDate(eventDate string) (time.Duration, error) {
	t, err := p.ParseDate(eventDate)
	if err != nil {
		return 0, err
	}
	return t.Sub(p.clock.Now()), nil
}

// DaysUntil is the signed fractional number of days from now to the start of eventDate.
func (p *Policy) DaysUntil(eventDate string) (float64, error) {
	until, err := p.untilDate(eventDate)
	if err != nil {
		return 0, err
	}
	return until.Hours() / 24, nil
}

// IsDateAtLeastDaysAway reports whether eventDate starts at least days from now.
// Unparseable dates are never far enough away.
func (p *Policy) IsDateAtLeastDaysAway(eventDate string, days int) bool {
	until, err := p.untilDate(eventDate)
	if err != nil {
		return false
	}
	return until >= time.Duration(days)*day
}

// IsRushOrder reports whether eventDate falls inside the minimum notice window.
// An empty or unparseable date is not a rush order.
func (p *Policy) IsRushOrder(eventDate string) bool {
	if _, err := p.ParseDate(eventDate); err != nil {
		return false
	}
	return !p.IsDateAtLeastDaysAway(eventDate, p.minNoticeDays)
}

// IsPastDate reports whether eventDate is a calendar day before today.
func (p *Policy) IsPastDate(eventDate string) bool {
	t, err := p.ParseDate(eventDate)
	if err != nil {
		return false
	}
	now := p.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, p.loc)
	return t.Before(today)
}

type PickupCheck struct {
	Valid      bool    `json:"valid"`
	Error      string  `json:"error,omitempty"`
	HoursUntil float64 `json:"hoursUntil"`
	err        error
}

// Err returns the reason the pickup is invalid, or nil.
func (c PickupCheck) Err() error {
	return c.err
}

func invalidPickup(err error, hours float64) PickupCheck {
	return PickupCheck{Valid: false, Error: err.Error(), HoursUntil: hours, err: err}
}

// IsPickupTimeValid checks that eventDate at pickupTime is in the future and
// at least the preparation buffer away. HoursUntil is always reported.
func (p *Policy) IsPickupTimeValid(eventDate, pickupTime string) PickupCheck {
	if _, err := p.ParseDate(eventDate); err != nil {
		return invalidPickup(err, 0)
	}
	if _, err := time.Parse(domain.TimeLayout, pickupTime); err != nil {
		return invalidPickup(fmt.Errorf("%w: %q", ErrInvalidTime, pickupTime), 0)
	}

	at, err := domain.OrderDraft{EventDate: eventDate, PickupTime: pickupTime}.PickupAt(p.loc)
	if err != nil {
		return invalidPickup(fmt.Errorf("%w: %v", ErrInvalidTime, err), 0)
	}

	until := at.Sub(p.clock.Now())
	hours := until.Hours()

	if until < 0 {
		return invalidPickup(ErrPickupPast, hours)
	}
	if until < p.pickupBuffer {
		return invalidPickup(fmt.Errorf("%w: %.1f hours away, need at least %.0f", ErrPickupTooSoon, hours, p.pickupBuffer.Hours()), hours)
	}
	return PickupCheck{Valid: true, HoursUntil: hours}
}
