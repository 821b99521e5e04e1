package pricing

import "github.com/rl1809/cake-orders/internal/core/domain"

// Rates drives the layer sandbox estimator. It is a rough guide for staff
// playing with layer combinations and is never used to price an order.
type Rates struct {
	BaseCents       int64            `json:"baseCents"`
	PerLayerCents   int64            `json:"perLayerCents"`
	PerFillingCents int64            `json:"perFillingCents"`
	FlavorUpcharge  map[string]int64 `json:"flavorUpcharge"`
}

func DefaultRates() Rates {
	return Rates{
		BaseCents:       2000,
		PerLayerCents:   800,
		PerFillingCents: 300,
		FlavorUpcharge: map[string]int64{
			"red-velvet":      200,
			"lemon":           150,
			"salted-caramel":  250,
			"pistachio":       300,
			"champagne":       350,
			"chocolate-stout": 250,
		},
	}
}

func CalculateTotalPrice(layers []domain.Layer, r Rates) int64 {
	total := r.BaseCents + r.PerLayerCents*int64(len(layers))
	for _, l := range layers {
		total += r.FlavorUpcharge[l.Flavor]
		total += r.PerFillingCents * int64(len(l.Fillings))
	}
	return total
}
