package engine

import "time"

// Pricing holds the two knobs of the rental fee model, in whole rupiah.
type Pricing struct {
	RatePerHour int64
	MinimumFee  int64
}

// BaseFee computes the time-based portion of a rental's cost: fractional
// elapsed hours times the hourly rate, floored at the minimum fee. A
// zero or negative duration (clock skew) still charges the minimum.
func (p Pricing) BaseFee(elapsed time.Duration) int64 {
	if elapsed < 0 {
		elapsed = 0
	}
	fee := int64(elapsed.Hours() * float64(p.RatePerHour))
	if fee < p.MinimumFee {
		return p.MinimumFee
	}
	return fee
}

// Total is the final cost of a rental: base fee plus the accrued cost
// of attached services. The base fee adds to, never replaces, service
// charges.
func (p Pricing) Total(elapsed time.Duration, serviceCost int64) int64 {
	return p.BaseFee(elapsed) + serviceCost
}
