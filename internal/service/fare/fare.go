// Package fare computes passenger fares. Everything here is a pure function
// of the flight's base price, the discount rate and the booking's layovers.
package fare

// LayoverAdditionalDiscount is added to the discount rate when the booking
// has at least one layover.
const LayoverAdditionalDiscount = 0.10

// Quote prices one seat. The discount rate is a multiplier on the base
// price, not a percentage reduction: "none" carries 1.0 and yields full
// price, a rate of 0 would make the seat free.
func Quote(basePrice, discountRate float64, layoverCount int) float64 {
	rate := discountRate
	if layoverCount > 0 {
		rate += LayoverAdditionalDiscount
	}
	return basePrice * rate
}
