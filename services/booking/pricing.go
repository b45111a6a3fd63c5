package booking

import (
	"math"
	"strconv"
)

// DefaultCategory prices any category missing from the price book.
const DefaultCategory = "other"

// DefaultDenomination is the display-currency step prices snap to.
const DefaultDenomination = 500

// PriceBook holds USD prices per category and add-on, and the conversion
// into the display currency.
type PriceBook struct {
	BaseUSD      map[string]float64
	AddonUSD     map[string]float64
	FXRate       float64
	Denomination int
	Currency     string
}

// DefaultPriceBook returns the standard category and add-on prices.
func DefaultPriceBook(fxRate float64, currency string) PriceBook {
	return PriceBook{
		BaseUSD: map[string]float64{
			"gym":        200,
			"salon":      180,
			"restaurant": 250,
			"other":      180,
		},
		AddonUSD: map[string]float64{
			"web_integration":      100,
			"payment_integration":  100,
			"whatsapp_integration": 50,
		},
		FXRate:       fxRate,
		Denomination: DefaultDenomination,
		Currency:     currency,
	}
}

// Base returns the base price of a category, falling back to the default category.
func (p PriceBook) Base(category string) float64 {
	if base, ok := p.BaseUSD[category]; ok {
		return base
	}
	return p.BaseUSD[DefaultCategory]
}

// Quote computes the price in the display currency, rounded to the nearest
// denomination. Unknown add-ons cost nothing.
func (p PriceBook) Quote(category string, addons []string) int {
	total := p.Base(category)
	for _, a := range addons {
		total += p.AddonUSD[a]
	}
	return roundTo(total*p.FXRate, p.denomination())
}

// Format renders an amount with the currency symbol.
func (p PriceBook) Format(amount int) string {
	return p.Currency + strconv.Itoa(amount)
}

func (p PriceBook) denomination() int {
	if p.Denomination <= 0 {
		return DefaultDenomination
	}
	return p.Denomination
}

// roundTo snaps x to the nearest multiple of step; halves round away from zero.
func roundTo(x float64, step int) int {
	return int(math.Round(x/float64(step))) * step
}
