package validation

import "github.com/rl1809/cake-orders/internal/core/domain"

// Each step reads only the fields it needs.

type CustomerInput struct {
	Customer *domain.Customer
}

type CakeTypeInput struct {
	CakeType       domain.CakeType
	StandardCakeID string
}

type LayersInput struct {
	CakeType domain.CakeType
	Layers   []domain.Layer
}

type SizeInput struct {
	CakeSize string
}

type PricingInput struct {
	PaymentStatus domain.PaymentStatus
}

type PickupInput struct {
	EventDate         string
	PickupTime        string
	IsRushOrder       bool
	ManagerApproval   bool
	RushJustification string
}

func CustomerOf(d domain.OrderDraft) CustomerInput {
	return CustomerInput{Customer: d.Customer}
}

func CakeTypeOf(d domain.OrderDraft) CakeTypeInput {
	return CakeTypeInput{CakeType: d.CakeType, StandardCakeID: d.StandardCakeID}
}

func LayersOf(d domain.OrderDraft) LayersInput {
	return LayersInput{CakeType: d.CakeType, Layers: d.Layers}
}

func SizeOf(d domain.OrderDraft) SizeInput {
	return SizeInput{CakeSize: d.CakeSize}
}

func PricingOf(d domain.OrderDraft) PricingInput {
	return PricingInput{PaymentStatus: d.PaymentStatus}
}

func PickupOf(d domain.OrderDraft) PickupInput {
	return PickupInput{
		EventDate:         d.EventDate,
		PickupTime:        d.PickupTime,
		IsRushOrder:       d.IsRushOrder,
		ManagerApproval:   d.ManagerApproval,
		RushJustification: d.RushJustification,
	}
}
