/*
Package factory provides JSON to Go mortgage conversion.

PURPOSE:
  Converts JSON mortgage definitions into mortgage.Config values and back.
  The API, the SQLite store and the preset scenarios all speak this JSON,
  so the engine's Go types never leak into a wire or storage format.

JSON SCHEMA:
  {
    "name": "Mixed 10y",
    "principal": 208000,
    "months": 360,
    "periods": [
      {"start_month": 1, "end_month": 120, "interest_type": "fixed",
       "annual_interest_rate": 2.45,
       "life_insurance_amount": 300, "life_insurance_period": "annual"},
      {"start_month": 121, "end_month": 360, "interest_type": "variable",
       "euribor_differential": 0.89, "euribor_min": 2, "euribor_max": 4,
       "euribor_volatility": 2,
       "extra_items": [{"name": "account fee", "amount": 60, "period": "annual"}]}
    ],
    "partial_amortizations": [
      {"period_months": 12, "amount": 3000, "type": "time"}
    ]
  }

DEFAULTS:
  - interest_type:      fixed
  - *_period:           annual
  - euribor envelope:   left unset; mortgage.InterestPeriod applies 2 / 5 / 2

VALIDATION:
  ValidateConfig enforces the caller-side contract the engine relies on:
  periods start at month 1, are contiguous and reach the end of the term.

SEE ALSO:
  - mortgage/types.go: target types
  - portfolio/service.go: uses ValidateConfig before computing
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/warp/mortgage-engine/mortgage"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// MortgageJSON is the JSON representation of a mortgage.
type MortgageJSON struct {
	Name                 string                    `json:"name,omitempty"`
	Principal            float64                   `json:"principal"`
	Months               int                       `json:"months"`
	Periods              []PeriodJSON              `json:"periods"`
	PartialAmortizations []PartialAmortizationJSON `json:"partial_amortizations,omitempty"`
}

// PeriodJSON represents one interest period.
type PeriodJSON struct {
	StartMonth          int             `json:"start_month"`
	EndMonth            int             `json:"end_month"`
	InterestType        string          `json:"interest_type,omitempty"` // fixed, variable
	AnnualInterestRate  float64         `json:"annual_interest_rate,omitempty"`
	EuriborDifferential *float64        `json:"euribor_differential,omitempty"`
	EuriborMin          *float64        `json:"euribor_min,omitempty"`
	EuriborMax          *float64        `json:"euribor_max,omitempty"`
	EuriborVolatility   *float64        `json:"euribor_volatility,omitempty"`
	LifeInsuranceAmount float64         `json:"life_insurance_amount,omitempty"`
	LifeInsurancePeriod string          `json:"life_insurance_period,omitempty"` // annual, monthly
	HomeInsuranceAmount float64         `json:"home_insurance_amount,omitempty"`
	HomeInsurancePeriod string          `json:"home_insurance_period,omitempty"`
	ExtraItems          []ExtraItemJSON `json:"extra_items,omitempty"`
}

// ExtraItemJSON represents a recurring charge.
type ExtraItemJSON struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Period string  `json:"period,omitempty"`
}

// PartialAmortizationJSON represents an extra principal payment rule.
type PartialAmortizationJSON struct {
	PeriodMonths int     `json:"period_months"`
	Amount       float64 `json:"amount"`
	Type         string  `json:"type"` // time, capital
}

// =============================================================================
// MORTGAGE FACTORY
// =============================================================================

// MortgageFactory converts JSON mortgages to engine configs.
type MortgageFactory struct{}

// NewMortgageFactory creates a new mortgage factory.
func NewMortgageFactory() *MortgageFactory {
	return &MortgageFactory{}
}

// ParseMortgage parses a JSON string into a mortgage.Config.
func (f *MortgageFactory) ParseMortgage(jsonStr string) (mortgage.Config, error) {
	var mj MortgageJSON
	if err := json.Unmarshal([]byte(jsonStr), &mj); err != nil {
		return mortgage.Config{}, fmt.Errorf("failed to parse mortgage JSON: %w", err)
	}
	return f.FromJSON(mj)
}

// FromJSON converts MortgageJSON to mortgage.Config, applying defaults.
// Unknown enumeration values, terms longer than mortgage.MaxMonths and
// periods starting before month 1 are rejected.
func (f *MortgageFactory) FromJSON(mj MortgageJSON) (mortgage.Config, error) {
	if mj.Months > mortgage.MaxMonths {
		return mortgage.Config{}, invalid("months", "must not exceed %d", mortgage.MaxMonths)
	}
	cfg := mortgage.Config{
		Name:      mj.Name,
		Principal: mj.Principal,
		Months:    mj.Months,
		Periods:   make([]mortgage.InterestPeriod, 0, len(mj.Periods)),
	}

	for i, pj := range mj.Periods {
		period, err := parsePeriod(pj)
		if err != nil {
			return mortgage.Config{}, fmt.Errorf("period %d: %w", i+1, err)
		}
		cfg.Periods = append(cfg.Periods, period)
	}

	for i, aj := range mj.PartialAmortizations {
		typ, err := parseAmortizationType(aj.Type)
		if err != nil {
			return mortgage.Config{}, fmt.Errorf("partial amortization %d: %w", i+1, err)
		}
		cfg.PartialAmortizations = append(cfg.PartialAmortizations, mortgage.PartialAmortization{
			PeriodMonths: aj.PeriodMonths,
			Amount:       aj.Amount,
			Type:         typ,
		})
	}

	return cfg, nil
}

// ToJSON converts a config back to its JSON representation.
func ToJSON(cfg mortgage.Config) MortgageJSON {
	mj := MortgageJSON{
		Name:      cfg.Name,
		Principal: cfg.Principal,
		Months:    cfg.Months,
		Periods:   make([]PeriodJSON, 0, len(cfg.Periods)),
	}
	for _, p := range cfg.Periods {
		pj := PeriodJSON{
			StartMonth:          p.StartMonth,
			EndMonth:            p.EndMonth,
			InterestType:        string(p.Type()),
			AnnualInterestRate:  p.AnnualInterestRate,
			EuriborDifferential: p.EuriborDifferential,
			EuriborMin:          p.EuriborMin,
			EuriborMax:          p.EuriborMax,
			EuriborVolatility:   p.EuriborVolatility,
			LifeInsuranceAmount: p.LifeInsuranceAmount,
			LifeInsurancePeriod: string(chargeOrDefault(p.LifeInsurancePeriod)),
			HomeInsuranceAmount: p.HomeInsuranceAmount,
			HomeInsurancePeriod: string(chargeOrDefault(p.HomeInsurancePeriod)),
		}
		for _, item := range p.ExtraItems {
			pj.ExtraItems = append(pj.ExtraItems, ExtraItemJSON{
				Name:   item.Name,
				Amount: item.Amount,
				Period: string(chargeOrDefault(item.Period)),
			})
		}
		mj.Periods = append(mj.Periods, pj)
	}
	for _, pa := range cfg.PartialAmortizations {
		mj.PartialAmortizations = append(mj.PartialAmortizations, PartialAmortizationJSON{
			PeriodMonths: pa.PeriodMonths,
			Amount:       pa.Amount,
			Type:         string(pa.Type),
		})
	}
	return mj
}

// MarshalConfig renders a config as its JSON string.
func MarshalConfig(cfg mortgage.Config) (string, error) {
	data, err := json.Marshal(ToJSON(cfg))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parsePeriod(pj PeriodJSON) (mortgage.InterestPeriod, error) {
	if pj.StartMonth < 1 {
		return mortgage.InterestPeriod{}, invalid("start_month", "must be at least 1")
	}
	typ, err := parseInterestType(pj.InterestType)
	if err != nil {
		return mortgage.InterestPeriod{}, err
	}
	life, err := parseChargePeriod(pj.LifeInsurancePeriod)
	if err != nil {
		return mortgage.InterestPeriod{}, err
	}
	home, err := parseChargePeriod(pj.HomeInsurancePeriod)
	if err != nil {
		return mortgage.InterestPeriod{}, err
	}

	period := mortgage.InterestPeriod{
		StartMonth:          pj.StartMonth,
		EndMonth:            pj.EndMonth,
		InterestType:        typ,
		AnnualInterestRate:  pj.AnnualInterestRate,
		EuriborDifferential: pj.EuriborDifferential,
		EuriborMin:          pj.EuriborMin,
		EuriborMax:          pj.EuriborMax,
		EuriborVolatility:   pj.EuriborVolatility,
		LifeInsuranceAmount: pj.LifeInsuranceAmount,
		LifeInsurancePeriod: life,
		HomeInsuranceAmount: pj.HomeInsuranceAmount,
		HomeInsurancePeriod: home,
	}
	for _, ij := range pj.ExtraItems {
		cp, err := parseChargePeriod(ij.Period)
		if err != nil {
			return mortgage.InterestPeriod{}, fmt.Errorf("extra item %q: %w", ij.Name, err)
		}
		period.ExtraItems = append(period.ExtraItems, mortgage.ExtraItem{Name: ij.Name, Amount: ij.Amount, Period: cp})
	}
	return period, nil
}

func parseInterestType(s string) (mortgage.InterestType, error) {
	switch mortgage.InterestType(s) {
	case "", mortgage.InterestFixed:
		return mortgage.InterestFixed, nil
	case mortgage.InterestVariable:
		return mortgage.InterestVariable, nil
	default:
		return "", &ValidationError{Field: "interest_type", Message: fmt.Sprintf("unknown interest type %q", s)}
	}
}

func parseChargePeriod(s string) (mortgage.ChargePeriod, error) {
	switch mortgage.ChargePeriod(s) {
	case "", mortgage.ChargeAnnual:
		return mortgage.ChargeAnnual, nil
	case mortgage.ChargeMonthly:
		return mortgage.ChargeMonthly, nil
	default:
		return "", &ValidationError{Field: "period", Message: fmt.Sprintf("unknown charge period %q", s)}
	}
}

func parseAmortizationType(s string) (mortgage.AmortizationType, error) {
	switch mortgage.AmortizationType(s) {
	case mortgage.AmortizeTime, mortgage.AmortizeCapital:
		return mortgage.AmortizationType(s), nil
	default:
		return "", &ValidationError{Field: "type", Message: fmt.Sprintf("unknown amortization type %q (use time or capital)", s)}
	}
}

func chargeOrDefault(p mortgage.ChargePeriod) mortgage.ChargePeriod {
	if p == "" {
		return mortgage.ChargeAnnual
	}
	return p
}
