package models

import "math"

const (
	WeeklyDiscountDays  = 7
	MonthlyDiscountDays = 28
	WeeklyDiscountRate  = 0.15
	MonthlyDiscountRate = 0.30
	PlatformFeeRate     = 0.10
)

// Quote is the price breakdown for renting a space over an inclusive date range.
type Quote struct {
	StartDate    Date    `json:"start_date"`
	EndDate      Date    `json:"end_date"`
	Days         int     `json:"days"`
	PricePerDay  float64 `json:"price_per_day"`
	Subtotal     float64 `json:"subtotal"`
	DiscountRate float64 `json:"discount_rate"`
	Discount     float64 `json:"discount"`
	PlatformFee  float64 `json:"platform_fee"`
	Total        float64 `json:"total"`
}

// DiscountRateFor returns the tiered long-stay discount for a number of days.
func DiscountRateFor(days int) float64 {
	switch {
	case days >= MonthlyDiscountDays:
		return MonthlyDiscountRate
	case days >= WeeklyDiscountDays:
		return WeeklyDiscountRate
	default:
		return 0
	}
}

// roundCents rounds half away from zero to two decimals.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// QuotePrice computes the breakdown for start..end inclusive. The subtotal is
// exact; discount, fee and total are rounded to cents.
func QuotePrice(pricePerDay float64, start, end Date) (*Quote, error) {
	if pricePerDay <= 0 || math.IsNaN(pricePerDay) || math.IsInf(pricePerDay, 0) {
		return nil, ErrInvalidPrice
	}
	r := DateRange{From: start, To: end}
	if !r.Valid() {
		return nil, ErrInvalidDateRange
	}
	days := r.Days()
	if days <= 0 {
		return nil, ErrInvalidDateRange
	}

	subtotal := float64(days) * pricePerDay
	rate := DiscountRateFor(days)
	discount := roundCents(subtotal * rate)
	fee := roundCents((subtotal - discount) * PlatformFeeRate)
	total := roundCents(subtotal - discount + fee)

	return &Quote{
		StartDate:    start,
		EndDate:      end,
		Days:         days,
		PricePerDay:  pricePerDay,
		Subtotal:     subtotal,
		DiscountRate: rate,
		Discount:     discount,
		PlatformFee:  fee,
		Total:        total,
	}, nil
}

// Calculator answers date-selectability and pricing questions for one space.
type Calculator struct {
	PricePerDay  float64
	Availability Availability
	Today        Date
}

// IsSelectable reports whether a renter may pick d as part of a stay.
func (c Calculator) IsSelectable(d Date) bool {
	if d.Before(c.Today) {
		return false
	}
	return !c.Availability.IsDateUnavailable(d)
}

// Quote validates the candidate range against today and the committed ranges
// and prices it.
func (c Calculator) Quote(start, end Date) (*Quote, error) {
	if start.IsZero() || end.IsZero() || start.After(end) {
		return nil, ErrInvalidDateRange
	}
	if start.Before(c.Today) || end.Before(c.Today) {
		return nil, ErrDateInPast
	}
	if _, taken := c.Availability.Conflict(DateRange{From: start, To: end}); taken {
		return nil, ErrDatesUnavailable
	}
	return QuotePrice(c.PricePerDay, start, end)
}
