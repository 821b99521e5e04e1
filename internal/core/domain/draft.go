package domain

import "time"

type CakeType string

const (
	CakeTypeStandard CakeType = "standard"
	CakeTypeCustom   CakeType = "custom"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusPaid:
		return true
	}
	return false
}

const (
	MinCustomLayers   = 2
	MaxLayerFillings  = 2
	MaxMessageLength  = 100
	MaxLayerNotes     = 255
	MaxInspirationImg = 5
)

// Layout of the date and time-of-day strings carried by a draft.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Customer struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	OrderCount int    `json:"orderCount"`
}

type Layer struct {
	ID       string   `json:"id"`
	Flavor   string   `json:"flavor"`
	Fillings []string `json:"fillings"`
	Icing    string   `json:"icing"`
	Notes    string   `json:"notes"`
}

// OrderDraft is the in-progress configuration assembled by the wizard.
type OrderDraft struct {
	ID                string        `json:"id"`
	Customer          *Customer     `json:"customer"`
	CakeType          CakeType      `json:"cakeType"`
	StandardCakeID    string        `json:"standardCakeId"`
	Layers            []Layer       `json:"layers"`
	CakeSize          string        `json:"cakeSize"`
	IcingColors       []string      `json:"icingColors"`
	Decorations       []string      `json:"decorations"`
	Message           string        `json:"message"`
	InspirationImages []string      `json:"inspirationImages"`
	DepositAmount     string        `json:"depositAmount"`
	PaymentStatus     PaymentStatus `json:"paymentStatus"`
	EventDate         string        `json:"eventDate"`
	PickupTime        string        `json:"pickupTime"`
	Servings          int           `json:"servings"`
	CustomerNotes     string        `json:"customerNotes"`
	Status            string        `json:"status"`
	Priority          string        `json:"priority"`
	AdminNotes        string        `json:"adminNotes"`
	IsRushOrder       bool          `json:"isRushOrder"`
	RushJustification string        `json:"rushJustification"`
	ManagerApproval   bool          `json:"managerApproval"`
}

// NewDraft returns the default configuration: a custom cake with two empty layers.
func NewDraft(id string) OrderDraft {
	return OrderDraft{
		ID:       id,
		CakeType: CakeTypeCustom,
		Layers: []Layer{
			{ID: "layer-1", Fillings: []string{}},
			{ID: "layer-2", Fillings: []string{}},
		},
		IcingColors:       []string{},
		Decorations:       []string{},
		InspirationImages: []string{},
		PaymentStatus:     PaymentStatusPending,
		Status:            "pending",
		Priority:          "normal",
	}
}

// Clone returns a deep copy so callers never share slices with the wizard.
func (d OrderDraft) Clone() OrderDraft {
	out := d
	if d.Customer != nil {
		c := *d.Customer
		out.Customer = &c
	}
	if d.Layers != nil {
		out.Layers = make([]Layer, len(d.Layers))
		for i, l := range d.Layers {
			l.Fillings = cloneStrings(l.Fillings)
			out.Layers[i] = l
		}
	}
	out.IcingColors = cloneStrings(d.IcingColors)
	out.Decorations = cloneStrings(d.Decorations)
	out.InspirationImages = cloneStrings(d.InspirationImages)
	return out
}

// PickupAt composes event date and pickup time in loc.
func (d OrderDraft) PickupAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, d.EventDate+" "+d.PickupTime, loc)
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
