/*
engine.go - Month-by-month amortization

PURPOSE:
  Turns a Config (plus reference-rate paths for variable periods) into a
  complete schedule that retires the principal by the effective end month.

ALGORITHM:
  1. Validate: at least one period, a term of at most MaxMonths, one
     correctly sized path per variable period (indexed in sorted order).
  2. Sort periods by StartMonth.
  3. Walk the months while the balance is above the 0.01 tolerance:
     - resolve the covering period and its monthly rate
     - recompute the installment when the current one has expired
       (fixed: end of period; variable: yearly revision or end of period)
     - split into interest and principal, principal capped at the balance
     - apply due partial amortizations, capped at the balance
         capital -> installment recomputed next month, same end month
         time    -> end month pulled in, installment unchanged
     - append the row
  4. Fold any residual balance into the last row.

INSTALLMENT VALIDITY:
  validThrough holds the last month the current installment applies to.
  Anything that needs a new installment next month sets it to the current
  month, so the recomputation happens at the top of the next iteration.

SEE ALSO:
  - payment.go: Installment and MonthsToAmortize
  - period.go: period lookup and charge conversion
*/
package mortgage

import (
	"fmt"
	"math"
)

// balanceTolerance is the residual treated as a fully repaid loan.
const balanceTolerance = 0.01

// revisionInterval is how long a variable-rate installment holds.
const revisionInterval = 12

// Compute produces the amortization schedule for cfg.
//
// paths must hold, for every variable period (0-based index in StartMonth
// order), exactly Span(cfg.Months) monthly reference-rate values. Fixed
// periods ignore paths. Contiguity of the periods is the caller's contract:
// the schedule stops at the first month no period covers, and the residual
// balance is folded into the last row.
func Compute(cfg Config, paths EuriborPaths) ([]Row, error) {
	if len(cfg.Periods) == 0 {
		return nil, ErrNoPeriods
	}
	if cfg.Months > MaxMonths {
		return nil, fmt.Errorf("%w: %d > %d", ErrTermTooLong, cfg.Months, MaxMonths)
	}

	sorted := SortPeriods(cfg.Periods)
	if err := validatePaths(sorted, cfg.Months, paths); err != nil {
		return nil, err
	}

	schedule := make([]Row, 0, max(cfg.Months, 0))

	var (
		balance      = cfg.Principal
		effectiveEnd = cfg.Months
		installment  float64
		validThrough int
	)

	for month := 1; month <= effectiveEnd && balance > balanceTolerance; month++ {
		idx := periodFor(sorted, month)
		if idx < 0 {
			break
		}
		period := sorted[idx]
		rate := monthlyRate(period, paths[idx], month)

		if month > validThrough {
			installment = Installment(balance, rate, effectiveEnd-month+1)
			validThrough = revisionEnd(period, month)
		}

		interest := balance * rate
		if !isFinite(installment + interest + period.MonthlyInsurance() + period.MonthlyExtraItems()) {
			return nil, fmt.Errorf("%w: month %d", ErrNonFinite, month)
		}
		principal := installment - interest
		payment := installment
		if principal > balance {
			principal = balance
			payment = interest + principal
		}
		balance -= principal

		extra, capital, timeType := 0.0, false, false
		for _, pa := range cfg.PartialAmortizations {
			if !pa.dueIn(month) || balance <= balanceTolerance {
				continue
			}
			applied := math.Min(pa.Amount, balance)
			balance -= applied
			extra += applied
			switch pa.Type {
			case AmortizeCapital:
				capital = true
			case AmortizeTime:
				timeType = true
			}
		}

		if timeType {
			if n, ok := MonthsToAmortize(balance, rate, installment); ok && month+n < effectiveEnd {
				effectiveEnd = month + n
			}
		}
		if capital {
			validThrough = month
		}

		schedule = append(schedule, Row{
			Month:               month,
			Period:              idx + 1,
			Payment:             payment,
			PrincipalPayment:    principal + extra,
			InterestPayment:     interest,
			RemainingBalance:    math.Max(0, balance),
			MonthlyInsurance:    period.MonthlyInsurance(),
			MonthlyExtraItems:   period.MonthlyExtraItems(),
			PartialAmortization: extra,
		})
	}

	if n := len(schedule); n > 0 {
		last := &schedule[n-1]
		if balance > 0 {
			last.Payment += balance
			last.PrincipalPayment += balance
		}
		last.RemainingBalance = 0
	}

	return schedule, nil
}

func validatePaths(sorted []InterestPeriod, months int, paths EuriborPaths) error {
	for i, p := range sorted {
		if !p.IsVariable() {
			continue
		}
		want := p.Span(months)
		path, ok := paths[i]
		if !ok {
			if want == 0 {
				continue
			}
			return &PathError{Period: i, Want: want, Missing: true}
		}
		if len(path) != want {
			return &PathError{Period: i, Want: want, Got: len(path)}
		}
	}
	return nil
}

func monthlyRate(p InterestPeriod, path []float64, month int) float64 {
	if p.IsVariable() {
		return (path[month-p.StartMonth] + p.Differential()) / 100 / 12
	}
	return p.AnnualInterestRate / 100 / 12
}

// revisionEnd is the last month an installment computed in month stays valid.
func revisionEnd(p InterestPeriod, month int) int {
	if p.IsVariable() {
		return min(month+revisionInterval-1, p.EndMonth)
	}
	return p.EndMonth
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (pa PartialAmortization) dueIn(month int) bool {
	return pa.PeriodMonths > 0 && pa.Amount > 0 && month%pa.PeriodMonths == 0
}
