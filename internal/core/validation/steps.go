package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/rl1809/cake-orders/internal/core/domain"
	"github.com/rl1809/cake-orders/internal/core/pricing"
	"github.com/rl1809/cake-orders/internal/core/rush"
)

// Validator gates each wizard step. All checks are free of side effects.
type Validator struct {
	rush *rush.Policy
}

func NewValidator(policy *rush.Policy) *Validator {
	return &Validator{rush: policy}
}

func CheckCustomer(in CustomerInput) error {
	if in.Customer == nil {
		return ErrCustomerRequired
	}
	return nil
}

func CheckCakeType(in CakeTypeInput) error {
	switch in.CakeType {
	case domain.CakeTypeStandard:
		if strings.TrimSpace(in.StandardCakeID) == "" {
			return ErrStandardCakeRequired
		}
		return nil
	case domain.CakeTypeCustom:
		return nil
	}
	return ErrCakeTypeRequired
}

func CheckLayers(in LayersInput) error {
	if in.CakeType == domain.CakeTypeStandard {
		return nil
	}
	if len(in.Layers) < domain.MinCustomLayers {
		return ErrTooFewLayers
	}
	for i, l := range in.Layers {
		if err := checkLayer(l); err != nil {
			return &LayerError{Index: i, Err: err}
		}
	}
	return nil
}

func checkLayer(l domain.Layer) error {
	if strings.TrimSpace(l.Flavor) == "" {
		return ErrLayerFlavorRequired
	}
	if strings.TrimSpace(l.Icing) == "" {
		return ErrLayerIcingRequired
	}
	if len(l.Fillings) > domain.MaxLayerFillings {
		return ErrTooManyFillings
	}
	return nil
}

func CheckSize(in SizeInput) error {
	if strings.TrimSpace(in.CakeSize) == "" {
		return ErrSizeRequired
	}
	return nil
}

func CheckPricing(in PricingInput) error {
	if !in.PaymentStatus.Valid() {
		return ErrPaymentStatusRequired
	}
	return nil
}

func (v *Validator) CheckPickup(in PickupInput) error {
	if in.EventDate == "" {
		return ErrEventDateRequired
	}
	if in.PickupTime == "" {
		return ErrPickupTimeRequired
	}
	if !in.ManagerApproval && !v.rush.IsDateAtLeastDaysAway(in.EventDate, v.rush.MinNoticeDays()) {
		return ErrNoticeTooShort
	}
	if check := v.rush.IsPickupTimeValid(in.EventDate, in.PickupTime); !check.Valid {
		return check.Err()
	}
	if in.IsRushOrder {
		if !in.ManagerApproval {
			return ErrRushApprovalRequired
		}
		if strings.TrimSpace(in.RushJustification) == "" {
			return ErrRushJustificationRequired
		}
	}
	return nil
}

// Check runs the gate for step s and wraps any failure in a StepError.
func (v *Validator) Check(s domain.Step, d domain.OrderDraft) error {
	var err error
	switch s {
	case domain.StepCustomer:
		err = CheckCustomer(CustomerOf(d))
	case domain.StepCakeType:
		err = CheckCakeType(CakeTypeOf(d))
	case domain.StepLayers:
		err = CheckLayers(LayersOf(d))
	case domain.StepSize:
		err = CheckSize(SizeOf(d))
	case domain.StepDesign, domain.StepInspiration, domain.StepReview:
		// optional content, nothing to gate
	case domain.StepPricing:
		err = CheckPricing(PricingOf(d))
	case domain.StepPickup:
		err = v.CheckPickup(PickupOf(d))
	}
	if err != nil {
		return &StepError{Step: s, Err: err}
	}
	return nil
}

// CheckAll runs every step gate in order and returns the first failure.
func (v *Validator) CheckAll(d domain.OrderDraft) error {
	for _, s := range domain.Steps() {
		if err := v.Check(s, d); err != nil {
			return err
		}
	}
	return nil
}

// CheckComplete enforces the invariants of a finished order on top of every step gate.
func (v *Validator) CheckComplete(d domain.OrderDraft, totalCents, depositCents int64) error {
	if err := v.CheckAll(d); err != nil {
		return err
	}
	if utf8.RuneCountInString(d.Message) > domain.MaxMessageLength {
		return &StepError{Step: domain.StepDesign, Err: ErrMessageTooLong}
	}
	if len(d.InspirationImages) > domain.MaxInspirationImg {
		return &StepError{Step: domain.StepInspiration, Err: ErrTooManyImages}
	}
	if d.CakeType == domain.CakeTypeCustom {
		for i, l := range d.Layers {
			if utf8.RuneCountInString(l.Notes) > domain.MaxLayerNotes {
				return &StepError{Step: domain.StepLayers, Err: &LayerError{Index: i, Err: ErrLayerNotesTooLong}}
			}
		}
	}
	if depositCents < pricing.DepositRequired(totalCents) {
		return &StepError{Step: domain.StepPricing, Err: ErrDepositTooLow}
	}
	if depositCents > totalCents {
		return &StepError{Step: domain.StepPricing, Err: ErrDepositExceedsTotal}
	}
	if v.rush.IsPastDate(d.EventDate) {
		return &StepError{Step: domain.StepPickup, Err: ErrEventInPast}
	}
	return nil
}

// ValidateStep1 through ValidateStep9 are the one-based boolean gates the UI uses to enable Next.
func (v *Validator) ValidateStep1(d domain.OrderDraft) bool {
	return v.Check(domain.StepCustomer, d) == nil
}

func (v *Validator) ValidateStep2(d domain.OrderDraft) bool {
	return v.Check(domain.StepCakeType, d) == nil
}

func (v *Validator) ValidateStep3(d domain.OrderDraft) bool {
	return v.Check(domain.StepLayers, d) == nil
}

func (v *Validator) ValidateStep4(d domain.OrderDraft) bool {
	return v.Check(domain.StepSize, d) == nil
}

func (v *Validator) ValidateStep5(d domain.OrderDraft) bool {
	return v.Check(domain.StepDesign, d) == nil
}

func (v *Validator) ValidateStep6(d domain.OrderDraft) bool {
	return v.Check(domain.StepInspiration, d) == nil
}

func (v *Validator) ValidateStep7(d domain.OrderDraft) bool {
	return v.Check(domain.StepPricing, d) == nil
}

func (v *Validator) ValidateStep8(d domain.OrderDraft) bool {
	return v.Check(domain.StepPickup, d) == nil
}

func (v *Validator) ValidateStep9(d domain.OrderDraft) bool {
	return v.Check(domain.StepReview, d) == nil
}
