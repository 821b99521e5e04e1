package domain

import (
	"bytes"
	"encoding/json"
)

// DraftPatch is a shallow partial update. Nil fields are left untouched.
type DraftPatch struct {
	Customer          **Customer     `json:"-"`
	CakeType          *CakeType      `json:"cakeType,omitempty"`
	StandardCakeID    *string        `json:"standardCakeId,omitempty"`
	Layers            *[]Layer       `json:"layers,omitempty"`
	CakeSize          *string        `json:"cakeSize,omitempty"`
	IcingColors       *[]string      `json:"icingColors,omitempty"`
	Decorations       *[]string      `json:"decorations,omitempty"`
	Message           *string        `json:"message,omitempty"`
	InspirationImages *[]string      `json:"inspirationImages,omitempty"`
	DepositAmount     *string        `json:"depositAmount,omitempty"`
	PaymentStatus     *PaymentStatus `json:"paymentStatus,omitempty"`
	EventDate         *string        `json:"eventDate,omitempty"`
	PickupTime        *string        `json:"pickupTime,omitempty"`
	Servings          *int           `json:"servings,omitempty"`
	CustomerNotes     *string        `json:"customerNotes,omitempty"`
	Status            *string        `json:"status,omitempty"`
	Priority          *string        `json:"priority,omitempty"`
	AdminNotes        *string        `json:"adminNotes,omitempty"`
	IsRushOrder       *bool          `json:"isRushOrder,omitempty"`
	RushJustification *string        `json:"rushJustification,omitempty"`
	ManagerApproval   *bool          `json:"managerApproval,omitempty"`
}

// SetCustomer selects c, or clears the selection when c is nil.
func (p *DraftPatch) SetCustomer(c *Customer) {
	p.Customer = &c
}

// Empty reports whether the patch carries no field at all.
func (p DraftPatch) Empty() bool {
	return p == DraftPatch{}
}

// Apply returns d with every field present in p replaced.
func (p DraftPatch) Apply(d OrderDraft) OrderDraft {
	out := d.Clone()
	if p.Customer != nil {
		if *p.Customer == nil {
			out.Customer = nil
		} else {
			c := **p.Customer
			out.Customer = &c
		}
	}
	if p.CakeType != nil {
		out.CakeType = *p.CakeType
	}
	if p.StandardCakeID != nil {
		out.StandardCakeID = *p.StandardCakeID
	}
	if p.Layers != nil {
		out.Layers = OrderDraft{Layers: *p.Layers}.Clone().Layers
	}
	if p.CakeSize != nil {
		out.CakeSize = *p.CakeSize
	}
	if p.IcingColors != nil {
		out.IcingColors = cloneStrings(*p.IcingColors)
	}
	if p.Decorations != nil {
		out.Decorations = cloneStrings(*p.Decorations)
	}
	if p.Message != nil {
		out.Message = *p.Message
	}
	if p.InspirationImages != nil {
		out.InspirationImages = cloneStrings(*p.InspirationImages)
	}
	if p.DepositAmount != nil {
		out.DepositAmount = *p.DepositAmount
	}
	if p.PaymentStatus != nil {
		out.PaymentStatus = *p.PaymentStatus
	}
	if p.EventDate != nil {
		out.EventDate = *p.EventDate
	}
	if p.PickupTime != nil {
		out.PickupTime = *p.PickupTime
	}
	if p.Servings != nil {
		out.Servings = *p.Servings
	}
	if p.CustomerNotes != nil {
		out.CustomerNotes = *p.CustomerNotes
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.Priority != nil {
		out.Priority = *p.Priority
	}
	if p.AdminNotes != nil {
		out.AdminNotes = *p.AdminNotes
	}
	if p.IsRushOrder != nil {
		out.IsRushOrder = *p.IsRushOrder
	}
	if p.RushJustification != nil {
		out.RushJustification = *p.RushJustification
	}
	if p.ManagerApproval != nil {
		out.ManagerApproval = *p.ManagerApproval
	}
	return out
}

// UnmarshalJSON accepts "customer": null as an explicit deselection.
func (p *DraftPatch) UnmarshalJSON(data []byte) error {
	type plain DraftPatch
	var aux struct {
		plain
		Customer json.RawMessage `json:"customer"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = DraftPatch(aux.plain)
	if len(aux.Customer) == 0 {
		return nil
	}
	if bytes.Equal(bytes.TrimSpace(aux.Customer), []byte("null")) {
		p.SetCustomer(nil)
		return nil
	}
	var c Customer
	if err := json.Unmarshal(aux.Customer, &c); err != nil {
		return err
	}
	p.SetCustomer(&c)
	return nil
}
