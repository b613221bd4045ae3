/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Mortgage
  configurations travel in the factory JSON format (snake_case); schedule
  rows and summaries are converted here with amounts rounded to cents.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

SEE ALSO:
  - handlers.go: Uses these types
  - factory/mortgage.go: MortgageJSON type
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/mortgage-engine/euribor"
	"github.com/warp/mortgage-engine/factory"
	"github.com/warp/mortgage-engine/mortgage"
	"github.com/warp/mortgage-engine/portfolio"
)

// =============================================================================
// SCHEDULE
// =============================================================================

// ScheduleRequest asks for a one-off computation. Without euribor_paths,
// paths are generated for every variable period, repeatably when a seed
// is given.
type ScheduleRequest struct {
	Mortgage     factory.MortgageJSON `json:"mortgage"`
	EuriborPaths map[int][]float64    `json:"euribor_paths,omitempty"`
	Seed         *int64               `json:"seed,omitempty"`
}

// ScheduleResponse is a computed schedule.
type ScheduleResponse struct {
	Rows         []RowDTO          `json:"rows"`
	Summary      SummaryDTO        `json:"summary"`
	EuriborPaths map[int][]float64 `json:"euribor_paths,omitempty"`
	Cached       bool              `json:"cached"`
}

// RowDTO is one month of a schedule.
type RowDTO struct {
	Month               int     `json:"month"`
	Period              int     `json:"period"`
	Payment             float64 `json:"payment"`
	PrincipalPayment    float64 `json:"principal_payment"`
	InterestPayment     float64 `json:"interest_payment"`
	RemainingBalance    float64 `json:"remaining_balance"`
	MonthlyInsurance    float64 `json:"monthly_insurance"`
	MonthlyExtraItems   float64 `json:"monthly_extra_items"`
	PartialAmortization float64 `json:"partial_amortization,omitempty"`
	TotalPayment        float64 `json:"total_payment"`
}

// SummaryDTO holds the comparison figures of a schedule.
type SummaryDTO struct {
	Principal                float64 `json:"principal"`
	Months                   int     `json:"months"`
	ScheduledMonths          int     `json:"scheduled_months"`
	Duration                 string  `json:"duration"`
	RateKind                 string  `json:"rate_kind"`
	Rate                     string  `json:"rate"`
	FirstInstallment         float64 `json:"first_installment"`
	FirstTotalPayment        float64 `json:"first_total_payment"`
	TotalInterest            float64 `json:"total_interest"`
	TotalPaid                float64 `json:"total_paid"`
	TotalPartialAmortization float64 `json:"total_partial_amortization"`
	AverageInsurance         float64 `json:"average_insurance"`
}

// =============================================================================
// EURIBOR
// =============================================================================

// EuriborPathRequest generates a standalone path. Omitted bounds take the
// period defaults (2%, 5%, volatility 2).
type EuriborPathRequest struct {
	Months     int      `json:"months"`
	Min        *float64 `json:"min,omitempty"`
	Max        *float64 `json:"max,omitempty"`
	Volatility *float64 `json:"volatility,omitempty"`
	Seed       *int64   `json:"seed,omitempty"`
}

type EuriborPathResponse struct {
	Values []float64 `json:"values"`
}

// PreviewRequest previews the paths of a configuration's variable periods.
type PreviewRequest struct {
	Mortgage     factory.MortgageJSON `json:"mortgage"`
	EuriborPaths map[int][]float64    `json:"euribor_paths,omitempty"`
}

type SeriesDTO struct {
	StartMonth int       `json:"start_month"`
	Values     []float64 `json:"values"`
}

type PreviewResponse struct {
	Series []SeriesDTO `json:"series"`
}

// =============================================================================
// WORKSPACE
// =============================================================================

// AddMortgageRequest creates a mortgage. Without a mortgage body the
// default configuration is used.
type AddMortgageRequest struct {
	Name     string                `json:"name,omitempty"`
	Mortgage *factory.MortgageJSON `json:"mortgage,omitempty"`
}

// MortgageDTO represents a workspace mortgage.
type MortgageDTO struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Active       bool                 `json:"active"`
	Config       factory.MortgageJSON `json:"config"`
	Calculated   bool                 `json:"calculated"`
	Summary      *SummaryDTO          `json:"summary,omitempty"`
	Schedule     []RowDTO             `json:"schedule,omitempty"`
	EuriborPaths map[int][]float64    `json:"euribor_paths,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

type MortgageListResponse struct {
	Mortgages []MortgageDTO `json:"mortgages"`
	ActiveID  string        `json:"active_id,omitempty"`
}

type ComparisonEntryDTO struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Summary SummaryDTO `json:"summary"`
}

type ComparisonResponse struct {
	Entries    []ComparisonEntryDTO `json:"entries"`
	CheapestID string               `json:"cheapest_id,omitempty"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a preset mortgage.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func cents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func toRowDTOs(rows []mortgage.Row) []RowDTO {
	dtos := make([]RowDTO, len(rows))
	for i, r := range rows {
		dtos[i] = RowDTO{
			Month:               r.Month,
			Period:              r.Period,
			Payment:             cents(r.Payment),
			PrincipalPayment:    cents(r.PrincipalPayment),
			InterestPayment:     cents(r.InterestPayment),
			RemainingBalance:    cents(r.RemainingBalance),
			MonthlyInsurance:    cents(r.MonthlyInsurance),
			MonthlyExtraItems:   cents(r.MonthlyExtraItems),
			PartialAmortization: cents(r.PartialAmortization),
			TotalPayment:        cents(r.Payment + r.MonthlyInsurance + r.MonthlyExtraItems),
		}
	}
	return dtos
}

func toSummaryDTO(s mortgage.Summary) SummaryDTO {
	return SummaryDTO{
		Principal:                s.Principal.InexactFloat64(),
		Months:                   s.Months,
		ScheduledMonths:          s.ScheduledMonths,
		Duration:                 s.DurationLabel,
		RateKind:                 string(s.RateKind),
		Rate:                     s.RateLabel,
		FirstInstallment:         s.FirstInstallment.InexactFloat64(),
		FirstTotalPayment:        s.FirstTotalPayment.InexactFloat64(),
		TotalInterest:            s.TotalInterest.InexactFloat64(),
		TotalPaid:                s.TotalPaid.InexactFloat64(),
		TotalPartialAmortization: s.TotalPartialAmortization.InexactFloat64(),
		AverageInsurance:         s.AverageInsurance.InexactFloat64(),
	}
}

// toMortgageDTO converts a workspace mortgage; the schedule is only
// included when withSchedule is set.
func toMortgageDTO(m portfolio.Mortgage, active portfolio.MortgageID, withSchedule bool) MortgageDTO {
	dto := MortgageDTO{
		ID:         string(m.ID),
		Name:       m.Name,
		Active:     m.ID == active,
		Config:     factory.ToJSON(m.Config),
		Calculated: m.HasSchedule(),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if m.HasSchedule() {
		summary := toSummaryDTO(mortgage.Summarize(m.Config, m.Schedule))
		dto.Summary = &summary
	}
	if withSchedule {
		dto.Schedule = toRowDTOs(m.Schedule)
		dto.EuriborPaths = m.EuriborPaths
	}
	return dto
}

func toSeriesDTOs(series []euribor.Series) []SeriesDTO {
	dtos := make([]SeriesDTO, len(series))
	for i, s := range series {
		dtos[i] = SeriesDTO{StartMonth: s.StartMonth, Values: s.Values}
	}
	return dtos
}
