package validation

import (
	"errors"
	"fmt"

	"github.com/rl1809/cake-orders/internal/core/domain"
)

var (
	ErrCustomerRequired          = errors.New("a customer must be selected")
	ErrCakeTypeRequired          = errors.New("cake type must be standard or custom")
	ErrStandardCakeRequired      = errors.New("a standard cake must be chosen")
	ErrTooFewLayers              = errors.New("custom cakes need at least 2 layers")
	ErrLayerFlavorRequired       = errors.New("flavor is required")
	ErrLayerIcingRequired        = errors.New("icing is required")
	ErrTooManyFillings           = errors.New("at most 2 fillings per layer")
	ErrLayerNotesTooLong         = errors.New("layer notes exceed 255 characters")
	ErrSizeRequired              = errors.New("a cake size must be chosen")
	ErrPaymentStatusRequired     = errors.New("payment status must be set")
	ErrEventDateRequired         = errors.New("event date is required")
	ErrPickupTimeRequired        = errors.New("pickup time is required")
	ErrNoticeTooShort            = errors.New("event is inside the minimum notice window")
	ErrRushApprovalRequired      = errors.New("rush orders need manager approval")
	ErrRushJustificationRequired = errors.New("rush orders need a written justification")
	ErrMessageTooLong            = errors.New("message exceeds 100 characters")
	ErrTooManyImages             = errors.New("at most 5 inspiration images")
	ErrDepositTooLow             = errors.New("deposit is below the required 50%")
	ErrDepositExceedsTotal       = errors.New("deposit is more than the order total")
	ErrEventInPast               = errors.New("event date is in the past")
)

// StepError names the step that blocked a transition and the unmet requirement.
type StepError struct {
	Step domain.Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s) incomplete: %v", e.Step.Number(), e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type LayerError struct {
	Index int
	Err   error
}

func (e *LayerError) Error() string {
	return fmt.Sprintf("layer %d: %v", e.Index+1, e.Err)
}

func (e *LayerError) Unwrap() error {
	return e.Err
}
