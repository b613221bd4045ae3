/*
scenarios.go - Preset mortgages for demos and quick comparisons

PURPOSE:
  Provides ready-made configurations that exercise the engine's features:
  fixed, mixed and variable rates, and both kinds of extra payment.
  Loading a scenario adds it to the workspace and calculates it; nothing
  already in the workspace is touched.

AVAILABLE SCENARIOS:

	fixed-30y:          208,000 over 30 years at 3.5%
	mixed-10y:          10 years fixed at 2.45%, then Euribor + 0.89%
	variable:           Euribor + 0.75% for 20 years, monthly account fee
	prepayment-time:    Fixed with 3,000 a year shortening the term
	prepayment-capital: Fixed with 3,000 a year lowering the installment

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "mixed-10y"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Add its JSON to scenarioJSON

SEE ALSO:
  - handlers.go: error mapping
  - factory/presets.go: Preset JSON definitions
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/mortgage-engine/factory"
)

var errScenarioNotFound = errors.New("scenario not found")

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "fixed-30y",
		Name:        "Fixed 30 years",
		Description: "208,000 over 30 years at 3.5% fixed",
		Category:    "fixed",
	},
	{
		ID:          "mixed-10y",
		Name:        "Mixed 10 + 15",
		Description: "10 years fixed at 2.45%, then Euribor + 0.89% with insurance",
		Category:    "mixed",
	},
	{
		ID:          "variable",
		Name:        "Variable",
		Description: "Euribor + 0.75% over 20 years with a monthly account fee",
		Category:    "variable",
	},
	{
		ID:          "prepayment-time",
		Name:        "Prepayment (term)",
		Description: "Fixed 3.5% with 3,000 a year applied to shorten the term",
		Category:    "prepayment",
	},
	{
		ID:          "prepayment-capital",
		Name:        "Prepayment (installment)",
		Description: "Fixed 3.5% with 3,000 a year applied to lower the installment",
		Category:    "prepayment",
	},
}

func scenarioJSON(id string) (string, error) {
	switch id {
	case "fixed-30y":
		return factory.DefaultMortgageJSON("Fixed 30 years"), nil
	case "mixed-10y":
		return factory.MixedMortgageJSON("Mixed 10 + 15", 250_000, 300, 120, 2.45, 0.89), nil
	case "variable":
		return factory.VariableMortgageJSON("Variable", 180_000, 240, 0.75), nil
	case "prepayment-time":
		return factory.PrepaymentMortgageJSON("Prepayment (term)", 3000, "time"), nil
	case "prepayment-capital":
		return factory.PrepaymentMortgageJSON("Prepayment (installment)", 3000, "capital"), nil
	default:
		return "", fmt.Errorf("%w: %q", errScenarioNotFound, id)
	}
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns the available presets.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario adds a preset to the workspace and calculates it.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	js, err := scenarioJSON(req.ScenarioID)
	if err != nil {
		writeServiceError(w, "Unknown scenario", err)
		return
	}
	cfg, err := h.Factory.ParseMortgage(js)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Invalid scenario definition", err)
		return
	}

	m, err := h.Portfolio.AddConfig(ctx, cfg)
	if err != nil {
		writeServiceError(w, "Failed to add scenario", err)
		return
	}

	start := time.Now()
	m, err = h.Portfolio.Calculate(ctx, m.ID, nil)
	h.Metrics.observeComputation("workspace", start, err)
	if err != nil {
		writeServiceError(w, "Failed to calculate scenario", err)
		return
	}

	h.Logger.Info("scenario loaded", "scenario", req.ScenarioID, "id", m.ID)
	writeJSON(w, http.StatusCreated, toMortgageDTO(m, m.ID, true))
}
