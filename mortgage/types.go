/*
Package mortgage provides the amortization engine.

PURPOSE:
  Computes month-by-month payment schedules for mortgages whose life is
  split into interest periods. Each period is either fixed-rate or
  variable-rate (reference rate + differential). Optional recurring extra
  principal payments either shorten the term or lower the installment.

KEY CONCEPTS IN THIS FILE (types.go):
  - InterestPeriod: a contiguous span of months with a single rate regime
  - PartialAmortization: a recurring extra principal payment rule
  - Config: the full loan definition handed to the engine
  - EuriborPaths: caller-supplied reference-rate values per variable period
  - Row: one month of the resulting schedule

DESIGN PRINCIPLES:
  1. Purity: Compute is a function of its inputs. No I/O, no randomness.
  2. Explicit optionality: variable-rate parameters are pointers, defaults
     are applied at the point of use.
  3. Stability: installments are only recomputed on period entry, annual
     revision or after an extra payment, like a real bank statement.

USAGE:
  rows, err := mortgage.Compute(mortgage.Config{
      Principal: 100000,
      Months:    120,
      Periods: []mortgage.InterestPeriod{
          {StartMonth: 1, EndMonth: 120, AnnualInterestRate: 3.5},
      },
  }, nil)

SEE ALSO:
  - engine.go: Compute
  - period.go: period helpers and monthly-equivalent charges
  - errors.go: configuration errors
  - summary.go: totals over a schedule
*/
package mortgage

// =============================================================================
// ENUMERATIONS
// =============================================================================

// InterestType selects how a period's monthly rate is obtained.
type InterestType string

const (
	InterestFixed    InterestType = "fixed"
	InterestVariable InterestType = "variable"
)

// ChargePeriod says whether a charge amount is billed yearly or monthly.
type ChargePeriod string

const (
	ChargeAnnual  ChargePeriod = "annual"
	ChargeMonthly ChargePeriod = "monthly"
)

// AmortizationType selects what an extra principal payment reduces.
type AmortizationType string

const (
	// AmortizeTime keeps the installment and shortens the term.
	AmortizeTime AmortizationType = "time"
	// AmortizeCapital keeps the term and lowers the installment.
	AmortizeCapital AmortizationType = "capital"
)

// Default envelope for variable periods that leave it unset.
const (
	DefaultEuriborMin        = 2.0
	DefaultEuriborMax        = 5.0
	DefaultEuriborVolatility = 2.0
	MaxEuriborVolatility     = 5.0
)

// MaxMonths is the longest term the engine accepts (100 years).
const MaxMonths = 1200

// =============================================================================
// INPUT
// =============================================================================

// ExtraItem is a recurring charge attached to a period (fees, maintenance).
type ExtraItem struct {
	Name   string       `json:"name"`
	Amount float64      `json:"amount"`
	Period ChargePeriod `json:"period,omitempty"`
}

// InterestPeriod is one contiguous span of the loan's life.
// StartMonth and EndMonth are 1-based and inclusive.
type InterestPeriod struct {
	StartMonth   int          `json:"startMonth"`
	EndMonth     int          `json:"endMonth"`
	InterestType InterestType `json:"interestType,omitempty"`

	// Fixed periods only.
	AnnualInterestRate float64 `json:"annualInterestRate"`

	// Variable periods only.
	EuriborDifferential *float64 `json:"euriborDifferential,omitempty"`
	EuriborMin          *float64 `json:"euriborMin,omitempty"`
	EuriborMax          *float64 `json:"euriborMax,omitempty"`
	EuriborVolatility   *float64 `json:"euriborVolatility,omitempty"`

	LifeInsuranceAmount float64      `json:"lifeInsuranceAmount"`
	LifeInsurancePeriod ChargePeriod `json:"lifeInsurancePeriod,omitempty"`
	HomeInsuranceAmount float64      `json:"homeInsuranceAmount"`
	HomeInsurancePeriod ChargePeriod `json:"homeInsurancePeriod,omitempty"`

	ExtraItems []ExtraItem `json:"extraItems,omitempty"`
}

// PartialAmortization is an extra principal payment applied on every month
// that is an exact multiple of PeriodMonths.
type PartialAmortization struct {
	PeriodMonths int              `json:"periodMonths"`
	Amount       float64          `json:"amount"`
	Type         AmortizationType `json:"type"`
}

// Config is the complete loan definition.
type Config struct {
	Name                 string                `json:"name,omitempty"`
	Principal            float64               `json:"principal"`
	Months               int                   `json:"months"`
	Periods              []InterestPeriod      `json:"periods"`
	PartialAmortizations []PartialAmortization `json:"partialAmortizations,omitempty"`
}

// EuriborPaths maps a 0-based index into the sorted periods to the monthly
// reference-rate values (percent) of that period.
type EuriborPaths map[int][]float64

// =============================================================================
// OUTPUT
// =============================================================================

// Row is one month of an amortization schedule.
//
// Payment is the installment (principal + interest) and excludes insurance
// and extra items. PrincipalPayment includes any extra payment applied.
type Row struct {
	Month               int     `json:"month"`
	Period              int     `json:"period"` // 1-based index into sorted periods
	Payment             float64 `json:"payment"`
	PrincipalPayment    float64 `json:"principalPayment"`
	InterestPayment     float64 `json:"interestPayment"`
	RemainingBalance    float64 `json:"remainingBalance"`
	MonthlyInsurance    float64 `json:"monthlyInsurance"`
	MonthlyExtraItems   float64 `json:"monthlyExtraItems"`
	PartialAmortization float64 `json:"partialAmortization,omitempty"`
}

// Float returns a pointer to v, for the optional period parameters.
func Float(v float64) *float64 {
	return &v
}
