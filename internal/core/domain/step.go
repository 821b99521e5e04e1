package domain

import "fmt"

// Step is a wizard position, 0 through 8.
type Step int

const (
	StepCustomer Step = iota
	StepCakeType
	StepLayers
	StepSize
	StepDesign
	StepInspiration
	StepPricing
	StepPickup
	StepReview
)

const (
	FirstStep = StepCustomer
	LastStep  = StepReview
)

var stepNames = [...]string{
	"customer",
	"cake-type",
	"layers",
	"size",
	"design",
	"inspiration",
	"pricing",
	"pickup",
	"review",
}

func (s Step) Valid() bool {
	return s >= FirstStep && s <= LastStep
}

func (s Step) String() string {
	if !s.Valid() {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

// Number is the one-based position shown to staff.
func (s Step) Number() int {
	return int(s) + 1
}

// Steps lists every step in wizard order.
func Steps() []Step {
	out := make([]Step, 0, len(stepNames))
	for s := FirstStep; s <= LastStep; s++ {
		out = append(out, s)
	}
	return out
}
