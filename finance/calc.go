package finance

import "math"

// Npv discounts the cash-flow series at rate; index 0 is time zero.
func Npv(rate float64, cashFlows []float64) float64 {
	total := 0.0
	for idx, cf := range cashFlows {
		total += cf / math.Pow(1+rate, float64(idx))
	}
	return total
}

// Irr solves NPV = 0 by bisection over [-0.9999, 10]. Returns nil when the
// series never changes sign or the bracket does not straddle a root, since
// an IRR is undefined for such flows.
func Irr(cashFlows []float64) *float64 {
	if len(cashFlows) == 0 {
		return nil
	}
	hasPositive := false
	hasNegative := false
	for _, cf := range cashFlows {
		if cf > 0 {
			hasPositive = true
		}
		if cf < 0 {
			hasNegative = true
		}
	}
	if !hasPositive || !hasNegative {
		return nil
	}

	low := -0.9999
	high := 10.0
	npvLow := Npv(low, cashFlows)
	npvHigh := Npv(high, cashFlows)
	if npvLow == 0 {
		return &low
	}
	if npvHigh == 0 {
		return &high
	}
	if npvLow*npvHigh > 0 {
		return nil
	}

	mid := 0.0
	for i := 0; i < 100; i++ {
		mid = (low + high) / 2
		npvMid := Npv(mid, cashFlows)
		if math.Abs(npvMid) < 1e-6 {
			return &mid
		}
		if npvLow*npvMid < 0 {
			high = mid
		} else {
			low = mid
			npvLow = npvMid
		}
	}
	return &mid
}

// MonthlyPayment is the standard amortizing mortgage payment.
func MonthlyPayment(principal float64, annualRate float64, years int) float64 {
	if principal <= 0 || years <= 0 {
		return 0
	}
	months := float64(years * 12)
	monthlyRate := annualRate / 12
	if monthlyRate == 0 {
		return principal / months
	}
	factor := math.Pow(1+monthlyRate, months)
	return principal * (monthlyRate * factor) / (factor - 1)
}

// LoanBalance is the outstanding principal after monthsElapsed of an
// amortizing loan.
func LoanBalance(principal float64, annualRate float64, amortYears int, monthsElapsed int) float64 {
	if principal <= 0 || amortYears <= 0 {
		return 0
	}
	n := float64(amortYears * 12)
	m := float64(monthsElapsed)
	if m >= n {
		return 0
	}
	monthlyRate := annualRate / 12
	if monthlyRate == 0 {
		return principal * (1 - m/n)
	}
	fn := math.Pow(1+monthlyRate, n)
	fm := math.Pow(1+monthlyRate, m)
	return principal * (fn - fm) / (fn - 1)
}
