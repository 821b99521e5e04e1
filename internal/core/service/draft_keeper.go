package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/rl1809/cake-orders/internal/core/domain"
	"github.com/rl1809/cake-orders/internal/port"
)

const (
	DefaultDraftKey = "cakeOrderDraft"
	DefaultDraftTTL = 24 * time.Hour
)

// storedDraft is the persisted layout.
type storedDraft struct {
	FormData    domain.OrderDraft `json:"formData"`
	CurrentStep domain.Step       `json:"currentStep"`
	Timestamp   time.Time         `json:"timestamp"`
}

type SavedDraft struct {
	Draft   domain.OrderDraft
	Step    domain.Step
	SavedAt time.Time
}

// DraftKeeper saves and restores one wizard's draft under a fixed key.
type DraftKeeper struct {
	store port.DraftStore
	clock port.Clock
	key   string
	ttl   time.Duration
}

func NewDraftKeeper(store port.DraftStore, clock port.Clock, key string, ttl time.Duration) *DraftKeeper {
	if key == "" {
		key = DefaultDraftKey
	}
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	return &DraftKeeper{store: store, clock: clock, key: key, ttl: ttl}
}

func (k *DraftKeeper) Key() string {
	return k.key
}

func (k *DraftKeeper) Save(ctx context.Context, d domain.OrderDraft, step domain.Step) error {
	blob, err := json.Marshal(storedDraft{
		FormData:    d,
		CurrentStep: step,
		Timestamp:   k.clock.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	if err := k.store.Save(ctx, k.key, blob); err != nil {
		return fmt.Errorf("save draft %s: %w", k.key, err)
	}
	return nil
}

// Load returns nil when there is no usable draft. Stale drafts are removed;
// malformed ones are logged and ignored. Only store failures are returned.
func (k *DraftKeeper) Load(ctx context.Context) (*SavedDraft, error) {
	blob, err := k.store.Load(ctx, k.key)
	if errors.Is(err, port.ErrDraftNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load draft %s: %w", k.key, err)
	}

	var stored storedDraft
	if err := json.Unmarshal(blob, &stored); err != nil {
		log.Printf("draft %s: ignoring malformed data: %v", k.key, err)
		return nil, nil
	}
	if stored.Timestamp.IsZero() || !stored.CurrentStep.Valid() {
		log.Printf("draft %s: ignoring draft with timestamp %q and step %d", k.key, stored.Timestamp, stored.CurrentStep)
		return nil, nil
	}

	if age := k.clock.Now().Sub(stored.Timestamp); age > k.ttl {
		log.Printf("draft %s: discarding stale draft saved %s ago", k.key, age.Round(time.Minute))
		if err := k.store.Delete(ctx, k.key); err != nil {
			log.Printf("draft %s: failed to remove stale draft: %v", k.key, err)
		}
		return nil, nil
	}

	return &SavedDraft{Draft: stored.FormData, Step: stored.CurrentStep, SavedAt: stored.Timestamp}, nil
}

func (k *DraftKeeper) Clear(ctx context.Context) error {
	if err := k.store.Delete(ctx, k.key); err != nil {
		return fmt.Errorf("clear draft %s: %w", k.key, err)
	}
	return nil
}
