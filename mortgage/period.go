package mortgage

import "sort"

// Contains returns true if month falls within [StartMonth, EndMonth].
func (p InterestPeriod) Contains(month int) bool {
	return month >= p.StartMonth && month <= p.EndMonth
}

// Span returns how many months of the period lie within a term of
// totalMonths. Periods entirely past the term span zero months.
func (p InterestPeriod) Span(totalMonths int) int {
	end := p.EndMonth
	if totalMonths < end {
		end = totalMonths
	}
	if n := end - p.StartMonth + 1; n > 0 {
		return n
	}
	return 0
}

// Type returns the interest type, defaulting to fixed.
func (p InterestPeriod) Type() InterestType {
	if p.InterestType == "" {
		return InterestFixed
	}
	return p.InterestType
}

// IsVariable reports whether the period tracks the reference rate.
func (p InterestPeriod) IsVariable() bool {
	return p.Type() == InterestVariable
}

// Differential is the spread added to the reference rate (percent).
func (p InterestPeriod) Differential() float64 {
	return valueOr(p.EuriborDifferential, 0)
}

// Envelope returns the reference-rate bounds and volatility, with defaults.
func (p InterestPeriod) Envelope() (lo, hi, volatility float64) {
	return valueOr(p.EuriborMin, DefaultEuriborMin),
		valueOr(p.EuriborMax, DefaultEuriborMax),
		valueOr(p.EuriborVolatility, DefaultEuriborVolatility)
}

// MonthlyInsurance is the life plus home premium as a monthly figure.
func (p InterestPeriod) MonthlyInsurance() float64 {
	return monthlyEquivalent(p.LifeInsuranceAmount, p.LifeInsurancePeriod) +
		monthlyEquivalent(p.HomeInsuranceAmount, p.HomeInsurancePeriod)
}

// MonthlyExtraItems is the sum of the period's extra charges per month.
func (p InterestPeriod) MonthlyExtraItems() float64 {
	total := 0.0
	for _, item := range p.ExtraItems {
		total += monthlyEquivalent(item.Amount, item.Period)
	}
	return total
}

// SortPeriods returns a copy of periods ordered by StartMonth.
func SortPeriods(periods []InterestPeriod) []InterestPeriod {
	sorted := make([]InterestPeriod, len(periods))
	copy(sorted, periods)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartMonth < sorted[j].StartMonth
	})
	return sorted
}

// periodFor returns the index of the period covering month, or -1.
func periodFor(sorted []InterestPeriod, month int) int {
	for i, p := range sorted {
		if p.Contains(month) {
			return i
		}
	}
	return -1
}

func monthlyEquivalent(amount float64, period ChargePeriod) float64 {
	if period == ChargeMonthly {
		return amount
	}
	return amount / 12
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
