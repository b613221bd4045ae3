/*
scenarios_test.go - Unit tests for preset scenarios

PURPOSE:
	Tests that each scenario parses, passes validation, lands in the
	workspace as a new active mortgage and is calculated to a zero balance.
	Runs against SQLite so the persisted form is exercised too.
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/warp/mortgage-engine/euribor"
	"github.com/warp/mortgage-engine/factory"
	"github.com/warp/mortgage-engine/portfolio"
	"github.com/warp/mortgage-engine/store/sqlite"
)

func setupScenarioRouter(t *testing.T) (*Handler, http.Handler) {
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	svc := portfolio.NewService(store, portfolio.WithSource(euribor.NewSeededSource(2024)))
	handler := NewHandler(svc, nil, nil)
	return handler, NewRouter(handler)
}

func TestScenarios_AllDefinitionsValid(t *testing.T) {
	f := factory.NewMortgageFactory()

	for _, sc := range scenarios {
		js, err := scenarioJSON(sc.ID)
		if err != nil {
			t.Fatalf("%s: no definition: %v", sc.ID, err)
		}
		cfg, err := f.ParseMortgage(js)
		if err != nil {
			t.Fatalf("%s: parse failed: %v", sc.ID, err)
		}
		if err := factory.ValidateConfig(cfg); err != nil {
			t.Errorf("%s: invalid config: %v", sc.ID, err)
		}
	}
}

func TestScenarios_List(t *testing.T) {
	_, router := setupScenarioRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scenarios", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var got []ScenarioDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if len(got) != len(scenarios) {
		t.Errorf("Expected %d scenarios, got %d", len(scenarios), len(got))
	}
}

func TestScenarios_LoadEach(t *testing.T) {
	// GIVEN: an empty workspace
	// WHEN: every scenario is loaded
	// THEN: each becomes a calculated, active mortgage

	handler, router := setupScenarioRouter(t)

	for i, sc := range scenarios {
		rec := httptest.NewRecorder()
		body := strings.NewReader(`{"scenario_id": "` + sc.ID + `"}`)
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/scenarios/load", body))

		if rec.Code != http.StatusCreated {
			t.Fatalf("%s: expected 201, got %d: %s", sc.ID, rec.Code, rec.Body.String())
		}
		var m MortgageDTO
		if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
			t.Fatalf("%s: decode: %v", sc.ID, err)
		}
		if !m.Active || !m.Calculated {
			t.Errorf("%s: expected active and calculated, got active=%v calculated=%v", sc.ID, m.Active, m.Calculated)
		}
		if len(m.Schedule) == 0 {
			t.Fatalf("%s: empty schedule", sc.ID)
		}
		if last := m.Schedule[len(m.Schedule)-1]; last.RemainingBalance != 0 {
			t.Errorf("%s: final balance %v", sc.ID, last.RemainingBalance)
		}

		all, err := handler.Portfolio.List(context.Background())
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(all) != i+1 {
			t.Errorf("Expected %d mortgages, got %d", i+1, len(all))
		}
	}
}

func TestScenarios_PrepaymentShortensTerm(t *testing.T) {
	_, router := setupScenarioRouter(t)

	load := func(id string) MortgageDTO {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/scenarios/load",
			strings.NewReader(`{"scenario_id": "`+id+`"}`)))
		var m MortgageDTO
		if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
			t.Fatalf("%s: decode: %v", id, err)
		}
		return m
	}

	plain := load("fixed-30y")
	byTerm := load("prepayment-time")
	byCapital := load("prepayment-capital")

	if len(byTerm.Schedule) >= len(plain.Schedule) {
		t.Errorf("term prepayment should shorten the loan: %d vs %d", len(byTerm.Schedule), len(plain.Schedule))
	}
	if byCapital.Schedule[12].Payment >= plain.Schedule[12].Payment {
		t.Errorf("capital prepayment should lower the installment after month 12")
	}
	if byTerm.Summary.TotalInterest >= byCapital.Summary.TotalInterest {
		t.Errorf("shortening the term should save more interest")
	}
}

func TestScenarios_Unknown(t *testing.T) {
	_, router := setupScenarioRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/scenarios/load",
		strings.NewReader(`{"scenario_id": "nope"}`)))

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}
