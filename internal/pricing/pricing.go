// Package pricing quotes the cost of airtime.
package pricing

import (
	"errors"
	"math"
)

// DefaultPricePerSecondCents is the fixed rate of one euro per second.
const DefaultPricePerSecondCents = 100

var (
	ErrInvalidDuration = errors.New("duration must be a positive number of seconds")
	ErrInvalidDays     = errors.New("days must be at least 1")
)

// Quote is the price of a booking.
type Quote struct {
	Seconds             int64   `json:"seconds"`
	Days                int     `json:"days"`
	PricePerSecondCents int64   `json:"pricePerSecondCents"`
	AmountCents         int64   `json:"amountCents"`
	Amount              float64 `json:"amount"`
	Currency            string  `json:"currency"`
}

// Calculator prices airtime at a flat per-second rate.
type Calculator struct {
	pricePerSecond int64
	currency       string
}

// NewCalculator creates a calculator. Non-positive prices use the default rate.
func NewCalculator(pricePerSecondCents int64, currency string) *Calculator {
	if pricePerSecondCents <= 0 {
		pricePerSecondCents = DefaultPricePerSecondCents
	}
	if currency == "" {
		currency = "eur"
	}
	return &Calculator{pricePerSecond: pricePerSecondCents, currency: currency}
}

// Currency returns the configured currency code.
func (c *Calculator) Currency() string { return c.currency }

// Quote prices duration seconds of airtime on each of days days.
// Partial seconds are billed as whole seconds.
func (c *Calculator) Quote(duration float64, days int) (Quote, error) {
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return Quote{}, ErrInvalidDuration
	}
	if days < 1 {
		return Quote{}, ErrInvalidDays
	}
	seconds := int64(math.Ceil(duration))
	amount := seconds * int64(days) * c.pricePerSecond
	return Quote{
		Seconds:             seconds,
		Days:                days,
		PricePerSecondCents: c.pricePerSecond,
		AmountCents:         amount,
		Amount:              float64(amount) / 100,
		Currency:            c.currency,
	}, nil
}
