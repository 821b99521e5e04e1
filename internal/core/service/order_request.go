package service

import "github.com/rl1809/cake-orders/internal/core/domain"

func newOrderRequest(d domain.OrderDraft, total, deposit int64) domain.OrderRequest {
	req := domain.OrderRequest{
		ClientReference:   d.ID,
		Servings:          d.Servings,
		EventDate:         d.EventDate,
		PickupTime:        d.PickupTime,
		Message:           d.Message,
		Notes:             d.CustomerNotes,
		CakeType:          d.CakeType,
		CakeSize:          d.CakeSize,
		IcingColors:       nonNil(d.IcingColors),
		Decorations:       nonNil(d.Decorations),
		InspirationImages: d.InspirationImages,
		IsRushOrder:       d.IsRushOrder,
		AdminNotes:        d.AdminNotes,
		Status:            d.Status,
		Priority:          d.Priority,
		DepositAmount:     deposit,
		PaymentStatus:     d.PaymentStatus,
		TotalAmount:       total,
	}
	if c := d.Customer; c != nil {
		req.CustomerID = c.ID
		req.CustomerName = c.Name
		req.CustomerEmail = c.Email
		req.CustomerPhone = c.Phone
	}

	switch d.CakeType {
	case domain.CakeTypeStandard:
		id := d.StandardCakeID
		req.StandardCakeID = &id
	case domain.CakeTypeCustom:
		req.Layers = d.Layers
	}

	if d.IsRushOrder {
		approved := d.ManagerApproval
		req.ManagerApproval = &approved
		req.RushJustification = d.RushJustification
	}
	return req
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// copiedConfiguration is the subset of a previous order that may be reused.
// Dates, payment and approvals are never copied.
type copiedConfiguration struct {
	CakeType       *domain.CakeType `json:"cakeType"`
	StandardCakeID *string          `json:"standardCakeId"`
	Layers         *[]domain.Layer  `json:"layers"`
	CakeSize       *string          `json:"cakeSize"`
	IcingColors    *[]string        `json:"icingColors"`
	Decorations    *[]string        `json:"decorations"`
	Message        *string          `json:"message"`
	Servings       *int             `json:"servings"`
}

func (c copiedConfiguration) patch() domain.DraftPatch {
	return domain.DraftPatch{
		CakeType:       c.CakeType,
		StandardCakeID: c.StandardCakeID,
		Layers:         c.Layers,
		CakeSize:       c.CakeSize,
		IcingColors:    c.IcingColors,
		Decorations:    c.Decorations,
		Message:        c.Message,
		Servings:       c.Servings,
	}
}
