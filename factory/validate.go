package factory

import (
	"errors"
	"fmt"

	"github.com/warp/mortgage-engine/mortgage"
)

// ErrInvalidConfig is wrapped by every ValidationError.
var ErrInvalidConfig = errors.New("invalid mortgage configuration")

// ValidationError names the offending field of a mortgage definition.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ValidateConfig checks everything the engine assumes but does not verify:
// a positive principal and term, and periods that, sorted by start month,
// begin at month 1, leave no gap or overlap and reach the end of the term.
func ValidateConfig(cfg mortgage.Config) error {
	if cfg.Principal <= 0 {
		return invalid("principal", "must be positive")
	}
	if cfg.Months <= 0 {
		return invalid("months", "must be positive")
	}
	if cfg.Months > mortgage.MaxMonths {
		return invalid("months", "must not exceed %d", mortgage.MaxMonths)
	}
	if len(cfg.Periods) == 0 {
		return invalid("periods", "at least one interest period is required")
	}

	sorted := mortgage.SortPeriods(cfg.Periods)
	for i, p := range sorted {
		if p.EndMonth < p.StartMonth {
			return invalid("periods", "period %d ends (month %d) before it starts (month %d)", i+1, p.EndMonth, p.StartMonth)
		}
		if i > 0 && sorted[i-1].EndMonth+1 != p.StartMonth {
			return invalid("periods", "periods must be consecutive without gaps: period %d ends at month %d, next starts at month %d",
				i, sorted[i-1].EndMonth, p.StartMonth)
		}
	}
	if sorted[0].StartMonth != 1 {
		return invalid("periods", "the first period must start at month 1")
	}
	if last := sorted[len(sorted)-1]; last.EndMonth < cfg.Months {
		return invalid("periods", "the last period must reach month %d", cfg.Months)
	}

	for i, pa := range cfg.PartialAmortizations {
		if pa.PeriodMonths <= 0 {
			return invalid("partial_amortizations", "rule %d: period_months must be positive", i+1)
		}
		if pa.Amount <= 0 {
			return invalid("partial_amortizations", "rule %d: amount must be positive", i+1)
		}
	}
	return nil
}

// AppendPeriod returns cfg with a new fixed period covering the months after
// the current last period up to the end of the term. The new period copies
// the last period's rate and insurance so editing starts from a sane value.
func AppendPeriod(cfg mortgage.Config) (mortgage.Config, error) {
	if len(cfg.Periods) == 0 {
		cfg.Periods = []mortgage.InterestPeriod{{StartMonth: 1, EndMonth: cfg.Months, InterestType: mortgage.InterestFixed}}
		return cfg, nil
	}
	sorted := mortgage.SortPeriods(cfg.Periods)
	last := sorted[len(sorted)-1]
	if last.EndMonth >= cfg.Months {
		return cfg, invalid("periods", "a period already covers the end of the term")
	}

	next := mortgage.InterestPeriod{
		StartMonth:          last.EndMonth + 1,
		EndMonth:            cfg.Months,
		InterestType:        mortgage.InterestFixed,
		AnnualInterestRate:  last.AnnualInterestRate,
		LifeInsuranceAmount: last.LifeInsuranceAmount,
		LifeInsurancePeriod: last.LifeInsurancePeriod,
		HomeInsuranceAmount: last.HomeInsuranceAmount,
		HomeInsurancePeriod: last.HomeInsurancePeriod,
	}
	cfg.Periods = append(sorted, next)
	return cfg, nil
}

// RemovePeriod returns cfg without the period at index i (in the order
// given). The last remaining period cannot be removed.
func RemovePeriod(cfg mortgage.Config, i int) (mortgage.Config, error) {
	if len(cfg.Periods) <= 1 {
		return cfg, invalid("periods", "at least one interest period is required")
	}
	if i < 0 || i >= len(cfg.Periods) {
		return cfg, invalid("periods", "no period at index %d", i)
	}
	periods := make([]mortgage.InterestPeriod, 0, len(cfg.Periods)-1)
	periods = append(periods, cfg.Periods[:i]...)
	cfg.Periods = append(periods, cfg.Periods[i+1:]...)
	return cfg, nil
}
