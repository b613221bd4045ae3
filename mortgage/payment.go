package mortgage

import "math"

// Installment returns the fixed monthly payment that retires balance in n
// months at monthlyRate (the French annuity formula). A zero rate splits the
// balance evenly.
func Installment(balance, monthlyRate float64, n int) float64 {
	if n <= 0 {
		return balance
	}
	if monthlyRate == 0 {
		return balance / float64(n)
	}
	// Negative exponent so long terms underflow to 0 instead of Inf/Inf.
	return balance * monthlyRate / (1 - math.Pow(1+monthlyRate, -float64(n)))
}

// MonthsToAmortize returns how many months of installment it takes to retire
// balance at monthlyRate. ok is false when the installment does not exceed
// the interest-only amount, so the balance would never shrink.
func MonthsToAmortize(balance, monthlyRate, installment float64) (n int, ok bool) {
	if balance <= 0 {
		return 0, true
	}
	if installment <= balance*monthlyRate || installment <= 0 {
		return 0, false
	}

	var months float64
	if monthlyRate == 0 {
		months = balance / installment
	} else {
		months = -math.Log(1-balance*monthlyRate/installment) / math.Log(1+monthlyRate)
	}

	// Tolerate float noise so an exact fit does not add a month.
	n = int(math.Ceil(months - 1e-9))
	if n < 1 {
		n = 1
	}
	return n, true
}
