package mortgage

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RateKind labels the mix of interest types in a config.
type RateKind string

const (
	RateFixed    RateKind = "fixed"
	RateVariable RateKind = "variable"
	RateMixed    RateKind = "mixed"
)

// Summary condenses a schedule into the figures used to compare mortgages.
// Monetary totals are rounded to cents.
type Summary struct {
	Name                     string
	Principal                decimal.Decimal
	Months                   int // nominal term
	ScheduledMonths          int // rows actually produced
	DurationLabel            string
	RateKind                 RateKind
	RateLabel                string
	FirstInstallment         decimal.Decimal
	FirstTotalPayment        decimal.Decimal // installment + insurance + extras
	TotalInterest            decimal.Decimal
	TotalPaid                decimal.Decimal // installments + extra principal + insurance + extras
	TotalPartialAmortization decimal.Decimal
	AverageInsurance         decimal.Decimal
}

// Summarize computes the comparison figures for a config and its schedule.
func Summarize(cfg Config, rows []Row) Summary {
	s := Summary{
		Name:            cfg.Name,
		Principal:       decimal.NewFromFloat(cfg.Principal).Round(2),
		Months:          cfg.Months,
		ScheduledMonths: len(rows),
		DurationLabel:   DurationLabel(cfg.Months),
	}
	s.RateKind, s.RateLabel = rateLabels(cfg.Periods)

	var interest, paid, partial, insurance decimal.Decimal
	for _, r := range rows {
		ins := decimal.NewFromFloat(r.MonthlyInsurance)
		extra := decimal.NewFromFloat(r.PartialAmortization)
		interest = interest.Add(decimal.NewFromFloat(r.InterestPayment))
		paid = paid.Add(decimal.NewFromFloat(r.Payment)).Add(extra).Add(ins).Add(decimal.NewFromFloat(r.MonthlyExtraItems))
		partial = partial.Add(extra)
		insurance = insurance.Add(ins)
	}

	if len(rows) > 0 {
		first := rows[0]
		s.FirstInstallment = decimal.NewFromFloat(first.Payment).Round(2)
		s.FirstTotalPayment = decimal.NewFromFloat(first.Payment + first.MonthlyInsurance + first.MonthlyExtraItems).Round(2)
		s.AverageInsurance = insurance.Div(decimal.NewFromInt(int64(len(rows)))).Round(2)
	}
	s.TotalInterest = interest.Round(2)
	s.TotalPaid = paid.Round(2)
	s.TotalPartialAmortization = partial.Round(2)
	return s
}

// Cheapest returns the index of the summary with the lowest total paid,
// or -1 for an empty slice.
func Cheapest(summaries []Summary) int {
	best := -1
	for i, s := range summaries {
		if best < 0 || s.TotalPaid.LessThan(summaries[best].TotalPaid) {
			best = i
		}
	}
	return best
}

// DurationLabel renders a term as years and months, e.g. "30a" or "10a 6m".
func DurationLabel(months int) string {
	years, rest := months/12, months%12
	if rest > 0 {
		return fmt.Sprintf("%da %dm", years, rest)
	}
	return fmt.Sprintf("%da", years)
}

func rateLabels(periods []InterestPeriod) (RateKind, string) {
	if len(periods) == 0 {
		return RateFixed, ""
	}
	sorted := SortPeriods(periods)

	hasFixed, hasVariable := false, false
	for _, p := range sorted {
		if p.IsVariable() {
			hasVariable = true
		} else {
			hasFixed = true
		}
	}

	first := sorted[0]
	kind := RateFixed
	switch {
	case hasFixed && hasVariable:
		kind = RateMixed
	case first.IsVariable():
		kind = RateVariable
	}

	if first.IsVariable() {
		return kind, fmt.Sprintf("Euribor + %.2f%%", first.Differential())
	}
	return kind, fmt.Sprintf("%.2f%%", first.AnnualInterestRate)
}
