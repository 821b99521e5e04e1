package domain

import "sort"

type CakeSize struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Servings   int    `json:"servings"`
	PriceCents int64  `json:"priceCents"`
}

type StandardCake struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	BasePriceDollars int64  `json:"basePriceDollars"`
}

// Catalog holds the priced menu consulted by the pricing engine.
type Catalog struct {
	sizes    map[string]CakeSize
	standard map[string]StandardCake
}

func NewCatalog(sizes []CakeSize, cakes []StandardCake) *Catalog {
	c := &Catalog{
		sizes:    make(map[string]CakeSize, len(sizes)),
		standard: make(map[string]StandardCake, len(cakes)),
	}
	for _, s := range sizes {
		c.sizes[s.ID] = s
	}
	for _, k := range cakes {
		c.standard[k.ID] = k
	}
	return c
}

func DefaultCatalog() *Catalog {
	return NewCatalog(
		[]CakeSize{
			{ID: "6-round", Label: "6\" Round", Servings: 8, PriceCents: 3000},
			{ID: "8-round", Label: "8\" Round", Servings: 12, PriceCents: 4500},
			{ID: "10-round", Label: "10\" Round", Servings: 20, PriceCents: 6500},
			{ID: "12-round", Label: "12\" Round", Servings: 30, PriceCents: 8500},
			{ID: "quarter-sheet", Label: "Quarter Sheet", Servings: 24, PriceCents: 5500},
			{ID: "half-sheet", Label: "Half Sheet", Servings: 48, PriceCents: 9000},
			{ID: "full-sheet", Label: "Full Sheet", Servings: 96, PriceCents: 15000},
		},
		[]StandardCake{
			{ID: "classic-vanilla", Name: "Classic Vanilla", BasePriceDollars: 40},
			{ID: "chocolate-fudge", Name: "Chocolate Fudge", BasePriceDollars: 45},
			{ID: "red-velvet", Name: "Red Velvet", BasePriceDollars: 48},
			{ID: "carrot", Name: "Carrot Cake", BasePriceDollars: 42},
			{ID: "lemon-raspberry", Name: "Lemon Raspberry", BasePriceDollars: 46},
		},
	)
}

// SizePrice returns the tier price in cents, or 0 for an unknown or empty size.
func (c *Catalog) SizePrice(id string) int64 {
	return c.sizes[id].PriceCents
}

// StandardBasePrice returns the base price in whole dollars, or 0 when unknown.
func (c *Catalog) StandardBasePrice(id string) int64 {
	return c.standard[id].BasePriceDollars
}

func (c *Catalog) Size(id string) (CakeSize, bool) {
	s, ok := c.sizes[id]
	return s, ok
}

func (c *Catalog) StandardCake(id string) (StandardCake, bool) {
	k, ok := c.standard[id]
	return k, ok
}

func (c *Catalog) Sizes() []CakeSize {
	out := make([]CakeSize, 0, len(c.sizes))
	for _, s := range c.sizes {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PriceCents < out[j].PriceCents })
	return out
}

func (c *Catalog) StandardCakes() []StandardCake {
	out := make([]StandardCake, 0, len(c.standard))
	for _, k := range c.standard {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
