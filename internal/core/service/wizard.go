package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/rl1809/cake-orders/internal/core/domain"
	"github.com/rl1809/cake-orders/internal/core/pricing"
	"github.com/rl1809/cake-orders/internal/core/rush"
	"github.com/rl1809/cake-orders/internal/core/validation"
	"github.com/rl1809/cake-orders/internal/port"
)

const DefaultAutosaveInterval = 30 * time.Second

var (
	ErrSubmitInProgress = errors.New("submission already in progress")
	ErrNotOnReview      = errors.New("order must be on the review step to submit")
	ErrUnreadableOrder  = errors.New("previous order configuration is unreadable")
)

type WizardConfig struct {
	Drafts           *DraftKeeper
	Orders           port.OrderGateway
	Pricing          *pricing.Engine
	Rush             *rush.Policy
	Clock            port.Clock
	AutosaveInterval time.Duration
	// NewID names fresh drafts; defaults to random UUIDs.
	NewID func() string
}

// Wizard owns one order draft and walks it through the configuration steps.
// It is safe for use from the autosave goroutine and request handlers at once.
type Wizard struct {
	drafts    *DraftKeeper
	orders    port.OrderGateway
	pricing   *pricing.Engine
	rush      *rush.Policy
	validator *validation.Validator
	clock     port.Clock
	interval  time.Duration
	newID     func() string

	mu         sync.Mutex
	draft      domain.OrderDraft
	step       domain.Step
	submitting bool

	// persistMu orders store writes and clears. A save snapshots the draft
	// only once it holds the lock, so it can never land after a later clear.
	persistMu sync.Mutex

	stop context.CancelFunc
	done chan struct{}
}

func NewWizard(cfg WizardConfig) *Wizard {
	if cfg.AutosaveInterval <= 0 {
		cfg.AutosaveInterval = DefaultAutosaveInterval
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &Wizard{
		drafts:    cfg.Drafts,
		orders:    cfg.Orders,
		pricing:   cfg.Pricing,
		rush:      cfg.Rush,
		validator: validation.NewValidator(cfg.Rush),
		clock:     cfg.Clock,
		interval:  cfg.AutosaveInterval,
		newID:     cfg.NewID,
		draft:     domain.NewDraft(cfg.NewID()),
		step:      domain.FirstStep,
	}
}

// Start restores a saved draft if one is still fresh and begins autosaving.
func (w *Wizard) Start(ctx context.Context) {
	if _, err := w.LoadDraft(ctx); err != nil {
		log.Printf("wizard %s: starting from defaults: %v", w.drafts.Key(), err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	w.mu.Lock()
	if w.stop != nil {
		w.mu.Unlock()
		cancel()
		return
	}
	w.stop = cancel
	w.done = make(chan struct{})
	done := w.done
	w.mu.Unlock()

	go w.autosave(loopCtx, w.clock.NewTicker(w.interval), done)
}

// Close stops autosaving. It does not clear the stored draft.
func (w *Wizard) Close() {
	w.mu.Lock()
	stop, done := w.stop, w.done
	w.stop, w.done = nil, nil
	w.mu.Unlock()

	if stop == nil {
		return
	}
	stop()
	<-done
}

func (w *Wizard) autosave(ctx context.Context, ticker clockwork.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			saveCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			if err := w.SaveDraft(saveCtx); err != nil {
				log.Printf("wizard %s: autosave failed: %v", w.drafts.Key(), err)
			}
			cancel()
		}
	}
}

func (w *Wizard) Validator() *validation.Validator {
	return w.validator
}

func (w *Wizard) FormData() domain.OrderDraft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.Clone()
}

func (w *Wizard) CurrentStep() domain.Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// UpdateFormData merges patch into the draft. A new event date re-derives the
// rush flag and always withdraws manager approval. Edits are refused with
// ErrSubmitInProgress while the order is being sent.
func (w *Wizard) UpdateFormData(patch domain.DraftPatch) error {
	if patch.Empty() {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submitting {
		return ErrSubmitInProgress
	}

	next := patch.Apply(w.draft)
	if patch.EventDate != nil && *patch.EventDate != w.draft.EventDate {
		next.IsRushOrder = w.rush.IsRushOrder(next.EventDate)
		next.ManagerApproval = false
	}
	w.draft = next
	return nil
}

// GoNext advances when the current step's gate passes and persists the draft.
// A rejected transition returns a *validation.StepError and changes nothing.
func (w *Wizard) GoNext(ctx context.Context) error {
	w.mu.Lock()
	if err := w.validator.Check(w.step, w.draft); err != nil {
		w.mu.Unlock()
		return err
	}
	if w.step >= domain.LastStep {
		w.mu.Unlock()
		return nil
	}
	w.step++
	w.mu.Unlock()

	if err := w.persist(ctx); err != nil {
		log.Printf("wizard %s: save after step change failed: %v", w.drafts.Key(), err)
	}
	return nil
}

// GoBack reports whether the wizard moved.
func (w *Wizard) GoBack() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step <= domain.FirstStep {
		return false
	}
	w.step--
	return true
}

func (w *Wizard) SaveDraft(ctx context.Context) error {
	return w.persist(ctx)
}

func (w *Wizard) persist(ctx context.Context) error {
	w.persistMu.Lock()
	defer w.persistMu.Unlock()

	w.mu.Lock()
	d, step := w.draft.Clone(), w.step
	w.mu.Unlock()
	return w.drafts.Save(ctx, d, step)
}

// LoadDraft replaces the in-memory state with the stored draft, reporting whether one was found.
func (w *Wizard) LoadDraft(ctx context.Context) (bool, error) {
	saved, err := w.drafts.Load(ctx)
	if err != nil || saved == nil {
		return false, err
	}

	d := saved.Draft
	if d.ID == "" {
		d.ID = w.newID()
	}
	d.IsRushOrder = w.rush.IsRushOrder(d.EventDate)

	w.mu.Lock()
	w.draft = d
	w.step = saved.Step
	w.mu.Unlock()
	return true, nil
}

func (w *Wizard) ClearDraft(ctx context.Context) error {
	w.persistMu.Lock()
	defer w.persistMu.Unlock()
	return w.drafts.Clear(ctx)
}

// Reset discards the draft in memory and in storage.
func (w *Wizard) Reset(ctx context.Context) error {
	w.mu.Lock()
	w.draft = domain.NewDraft(w.newID())
	w.step = domain.FirstStep
	w.mu.Unlock()
	return w.ClearDraft(ctx)
}

func (w *Wizard) Quote() pricing.Quote {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pricing.Quote(w.draft)
}

// Submit sends the finished order. A second call while one is in flight is a
// no-op returning ErrSubmitInProgress. On failure the draft is kept for retry.
func (w *Wizard) Submit(ctx context.Context) (*domain.OrderConfirmation, error) {
	w.mu.Lock()
	if w.submitting {
		w.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	if w.step != domain.LastStep {
		step := w.step
		w.mu.Unlock()
		return nil, &validation.StepError{Step: step, Err: ErrNotOnReview}
	}

	d := w.draft.Clone()
	req, err := w.buildOrderRequest(d)
	if err != nil {
		w.mu.Unlock()
		return nil, err
	}
	w.submitting = true
	w.mu.Unlock()

	conf, err := w.orders.CreateOrder(ctx, req)

	w.mu.Lock()
	w.submitting = false
	if err != nil {
		w.mu.Unlock()
		log.Printf("wizard %s: order submission failed: %v", w.drafts.Key(), err)
		return nil, fmt.Errorf("create order: %w", err)
	}
	w.draft = domain.NewDraft(w.newID())
	w.step = domain.FirstStep
	w.mu.Unlock()

	if err := w.ClearDraft(ctx); err != nil {
		log.Printf("wizard %s: order %s created but draft not cleared: %v", w.drafts.Key(), conf.OrderID, err)
	}
	return conf, nil
}

func (w *Wizard) buildOrderRequest(d domain.OrderDraft) (domain.OrderRequest, error) {
	if err := w.validator.Check(domain.LastStep, d); err != nil {
		return domain.OrderRequest{}, err
	}

	total := w.pricing.CalculateTotal(d)
	deposit, err := pricing.ResolveDeposit(total, d.DepositAmount)
	if err != nil {
		return domain.OrderRequest{}, &validation.StepError{Step: domain.StepPricing, Err: err}
	}
	if err := w.validator.CheckComplete(d, total, deposit); err != nil {
		return domain.OrderRequest{}, err
	}

	return newOrderRequest(d, total, deposit), nil
}

// CopyOrder pre-fills the cake and design fields from an earlier order.
// Unreadable configurations are logged, leave the draft untouched and
// return ErrUnreadableOrder.
func (w *Wizard) CopyOrder(past domain.PastOrder) error {
	var cfg copiedConfiguration
	if err := json.Unmarshal(past.Configuration, &cfg); err != nil {
		log.Printf("wizard %s: cannot copy order %s: %v", w.drafts.Key(), past.ID, err)
		return ErrUnreadableOrder
	}
	return w.UpdateFormData(cfg.patch())
}

type State struct {
	FormData    domain.OrderDraft `json:"formData"`
	CurrentStep domain.Step       `json:"currentStep"`
	StepName    string            `json:"stepName"`
	CanProceed  bool              `json:"canProceed"`
	Blocker     string            `json:"blocker,omitempty"`
	Quote       pricing.Quote     `json:"quote"`
	Pickup      *rush.PickupCheck `json:"pickup,omitempty"`
	DaysUntil   *float64          `json:"daysUntilEvent,omitempty"`
	Submitting  bool              `json:"submitting"`
}

// State is a read-only snapshot for the presentation layer.
func (w *Wizard) State() State {
	w.mu.Lock()
	d, step, submitting := w.draft.Clone(), w.step, w.submitting
	w.mu.Unlock()

	s := State{
		FormData:    d,
		CurrentStep: step,
		StepName:    step.String(),
		CanProceed:  true,
		Quote:       w.pricing.Quote(d),
		Submitting:  submitting,
	}
	if err := w.validator.Check(step, d); err != nil {
		s.CanProceed = false
		s.Blocker = err.Error()
	}
	if d.EventDate != "" {
		if days, err := w.rush.DaysUntil(d.EventDate); err == nil {
			s.DaysUntil = &days
		}
		if d.PickupTime != "" {
			check := w.rush.IsPickupTimeValid(d.EventDate, d.PickupTime)
			s.Pickup = &check
		}
	}
	return s
}
