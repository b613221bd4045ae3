package factory

import "fmt"

// DefaultMortgageJSON is the starting point for a new mortgage:
// 208,000 over 30 years at 3.5% fixed, no insurance.
func DefaultMortgageJSON(name string) string {
	return fmt.Sprintf(`{
		"name": %q,
		"principal": 208000,
		"months": 360,
		"periods": [
			{"start_month": 1, "end_month": 360, "interest_type": "fixed",
			 "annual_interest_rate": 3.5,
			 "life_insurance_period": "annual", "home_insurance_period": "annual"}
		]
	}`, name)
}

// MixedMortgageJSON is a fixed first stretch followed by Euribor + differential.
func MixedMortgageJSON(name string, principal float64, months, fixedMonths int, fixedRate, differential float64) string {
	return fmt.Sprintf(`{
		"name": %q,
		"principal": %v,
		"months": %d,
		"periods": [
			{"start_month": 1, "end_month": %d, "interest_type": "fixed",
			 "annual_interest_rate": %v,
			 "life_insurance_amount": 280, "home_insurance_amount": 190},
			{"start_month": %d, "end_month": %d, "interest_type": "variable",
			 "euribor_differential": %v, "euribor_min": 2, "euribor_max": 4, "euribor_volatility": 2,
			 "life_insurance_amount": 280, "home_insurance_amount": 190}
		]
	}`, name, principal, months, fixedMonths, fixedRate, fixedMonths+1, months, differential)
}

// VariableMortgageJSON tracks Euribor for the whole term.
func VariableMortgageJSON(name string, principal float64, months int, differential float64) string {
	return fmt.Sprintf(`{
		"name": %q,
		"principal": %v,
		"months": %d,
		"periods": [
			{"start_month": 1, "end_month": %d, "interest_type": "variable",
			 "euribor_differential": %v, "euribor_min": 1.5, "euribor_max": 4.5, "euribor_volatility": 3,
			 "extra_items": [{"name": "account maintenance", "amount": 8, "period": "monthly"}]}
		]
	}`, name, principal, months, months, differential)
}

// PrepaymentMortgageJSON is a fixed mortgage with a yearly extra payment.
func PrepaymentMortgageJSON(name string, amount float64, kind string) string {
	return fmt.Sprintf(`{
		"name": %q,
		"principal": 208000,
		"months": 360,
		"periods": [
			{"start_month": 1, "end_month": 360, "annual_interest_rate": 3.5}
		],
		"partial_amortizations": [
			{"period_months": 12, "amount": %v, "type": %q}
		]
	}`, name, amount, kind)
}
