/*
handlers.go - HTTP API handlers for the mortgage engine

PURPOSE:
  Exposes the amortization engine and the mortgage workspace via REST API.
  Handles HTTP request/response, JSON serialization, and delegates to the
  domain packages.

ENDPOINTS:
  Schedules:
    POST   /api/schedule                  One-off computation (cached)
    POST   /api/euribor/path              Generate a reference-rate path
    POST   /api/euribor/preview           Preview paths of a configuration

  Workspace:
    GET    /api/mortgages                 List mortgages and the active id
    POST   /api/mortgages                 Add a mortgage
    GET    /api/mortgages/{id}            Mortgage with schedule and summary
    PUT    /api/mortgages/{id}            Replace the configuration
    DELETE /api/mortgages/{id}            Remove (never the last one)
    POST   /api/mortgages/{id}/clone      Clone and calculate
    POST   /api/mortgages/{id}/calculate  Calculate, optionally with a new config
    POST   /api/mortgages/{id}/activate   Make active
    POST   /api/mortgages/{id}/periods    Append a period up to the end of the term
    DELETE /api/mortgages/{id}/periods/{index}  Remove a period (0-based)
    GET    /api/comparison                Summaries of calculated mortgages

  Scenarios:
    GET    /api/scenarios                 List preset mortgages
    POST   /api/scenarios/load            Add a preset to the workspace

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid configuration, bad Euribor paths, malformed body
  - 404: Unknown mortgage or scenario
  - 409: Removing the last mortgage
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Preset loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/mortgage-engine/cache"
	"github.com/warp/mortgage-engine/euribor"
	"github.com/warp/mortgage-engine/factory"
	"github.com/warp/mortgage-engine/mortgage"
	"github.com/warp/mortgage-engine/portfolio"
)

// DefaultCacheTTL applies when the handler is built without one.
const DefaultCacheTTL = 10 * time.Minute

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Portfolio *portfolio.Service
	Factory   *factory.MortgageFactory
	Cache     cache.Cache
	CacheTTL  time.Duration
	Metrics   *Metrics
	Logger    *slog.Logger
}

// NewHandler creates a handler. A nil cache selects the in-memory cache and
// nil metrics a fresh registry.
func NewHandler(svc *portfolio.Service, schedules cache.Cache, metrics *Metrics) *Handler {
	if schedules == nil {
		schedules = cache.NewMemory()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Handler{
		Portfolio: svc,
		Factory:   factory.NewMortgageFactory(),
		Cache:     schedules,
		CacheTTL:  DefaultCacheTTL,
		Metrics:   metrics,
		Logger:    slog.Default(),
	}
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// ComputeSchedule runs the engine on a configuration without storing it.
// POST /api/schedule
func (h *Handler) ComputeSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cfg, err := h.Factory.FromJSON(req.Mortgage)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid mortgage configuration", err)
		return
	}

	paths := mortgage.EuriborPaths(req.EuriborPaths)
	deterministic := true
	if paths == nil {
		rng := euribor.NewRandomSource()
		if req.Seed != nil {
			rng = euribor.NewSeededSource(*req.Seed)
		} else {
			deterministic = hasNoVariablePeriod(cfg)
		}
		paths = euribor.PathsFor(cfg, rng)
	}

	key := ""
	if deterministic {
		key, err = cache.Fingerprint(cfg, paths)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to fingerprint request", err)
			return
		}
		if resp, ok := h.cachedSchedule(ctx, key); ok {
			writeJSON(w, http.StatusOK, resp)
			return
		}
	}

	start := time.Now()
	rows, err := mortgage.Compute(cfg, paths)
	h.Metrics.observeComputation("schedule", start, err)
	if err != nil {
		writeServiceError(w, "Failed to compute schedule", err)
		return
	}

	resp := ScheduleResponse{
		Rows:    toRowDTOs(rows),
		Summary: toSummaryDTO(mortgage.Summarize(cfg, rows)),
	}
	if len(paths) > 0 {
		resp.EuriborPaths = paths
	}

	if key != "" {
		h.storeSchedule(ctx, key, resp)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) cachedSchedule(ctx context.Context, key string) (ScheduleResponse, bool) {
	data, ok, err := h.Cache.Get(ctx, key)
	if err != nil {
		h.Metrics.cacheError()
		h.Logger.Warn("schedule cache read failed", "key", key, "error", err)
		return ScheduleResponse{}, false
	}
	if !ok {
		h.Metrics.cacheMiss()
		return ScheduleResponse{}, false
	}

	var resp ScheduleResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		h.Metrics.cacheError()
		h.Logger.Warn("schedule cache entry unreadable", "key", key, "error", err)
		return ScheduleResponse{}, false
	}
	h.Metrics.cacheHit()
	resp.Cached = true
	return resp, true
}

func (h *Handler) storeSchedule(ctx context.Context, key string, resp ScheduleResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		h.Logger.Warn("schedule cache encode failed", "key", key, "error", err)
		return
	}
	if err := h.Cache.Set(ctx, key, data, h.CacheTTL); err != nil {
		h.Logger.Warn("schedule cache write failed", "key", key, "error", err)
	}
}

// GenerateEuriborPath returns a standalone reference-rate path.
// POST /api/euribor/path
func (h *Handler) GenerateEuriborPath(w http.ResponseWriter, r *http.Request) {
	var req EuriborPathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Months <= 0 || req.Months > mortgage.MaxMonths {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("months must be between 1 and %d", mortgage.MaxMonths), nil)
		return
	}

	p := mortgage.InterestPeriod{
		StartMonth:        1,
		EndMonth:          req.Months,
		InterestType:      mortgage.InterestVariable,
		EuriborMin:        req.Min,
		EuriborMax:        req.Max,
		EuriborVolatility: req.Volatility,
	}
	rng := euribor.NewRandomSource()
	if req.Seed != nil {
		rng = euribor.NewSeededSource(*req.Seed)
	}

	values, err := euribor.PathFor(p, req.Months, rng)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate path", err)
		return
	}
	writeJSON(w, http.StatusOK, EuriborPathResponse{Values: values})
}

// PreviewEuribor returns the path of every variable period of a config,
// reusing saved paths that still fit.
// POST /api/euribor/preview
func (h *Handler) PreviewEuribor(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	cfg, err := h.Factory.FromJSON(req.Mortgage)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid mortgage configuration", err)
		return
	}

	series := euribor.PreviewSeries(cfg, req.EuriborPaths)
	writeJSON(w, http.StatusOK, PreviewResponse{Series: toSeriesDTOs(series)})
}

// =============================================================================
// WORKSPACE HANDLERS
// =============================================================================

// ListMortgages returns every mortgage without schedules.
// GET /api/mortgages
func (h *Handler) ListMortgages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	all, err := h.Portfolio.List(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list mortgages", err)
		return
	}
	active, err := h.Portfolio.Active(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read active mortgage", err)
		return
	}

	resp := MortgageListResponse{
		Mortgages: make([]MortgageDTO, len(all)),
		ActiveID:  string(active),
	}
	for i, m := range all {
		resp.Mortgages[i] = toMortgageDTO(m, active, false)
	}
	writeJSON(w, http.StatusOK, resp)
}

// AddMortgage creates a mortgage, from the body's configuration or the
// default one.
// POST /api/mortgages
func (h *Handler) AddMortgage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AddMortgageRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var (
		m   portfolio.Mortgage
		err error
	)
	if req.Mortgage != nil {
		cfg, perr := h.Factory.FromJSON(*req.Mortgage)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "Invalid mortgage configuration", perr)
			return
		}
		if req.Name != "" {
			cfg.Name = req.Name
		}
		m, err = h.Portfolio.AddConfig(ctx, cfg)
	} else {
		m, err = h.Portfolio.Add(ctx, req.Name)
	}
	if err != nil {
		writeServiceError(w, "Failed to add mortgage", err)
		return
	}

	writeJSON(w, http.StatusCreated, toMortgageDTO(m, m.ID, false))
}

// GetMortgage returns a mortgage with its schedule.
// GET /api/mortgages/{id}
func (h *Handler) GetMortgage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := portfolio.MortgageID(chi.URLParam(r, "id"))

	m, err := h.Portfolio.Get(ctx, id)
	if err != nil {
		writeServiceError(w, "Failed to get mortgage", err)
		return
	}
	active, err := h.Portfolio.Active(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read active mortgage", err)
		return
	}
	writeJSON(w, http.StatusOK, toMortgageDTO(m, active, true))
}

// UpdateMortgage replaces a mortgage's configuration.
// PUT /api/mortgages/{id}
func (h *Handler) UpdateMortgage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := portfolio.MortgageID(chi.URLParam(r, "id"))

	var req factory.MortgageJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	cfg, err := h.Factory.FromJSON(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid mortgage configuration", err)
		return
	}

	m, err := h.Portfolio.Update(ctx, id, cfg)
	if err != nil {
		writeServiceError(w, "Failed to update mortgage", err)
		return
	}
	h.writeMortgage(w, r, http.StatusOK, m)
}

// RemoveMortgage deletes a mortgage.
// DELETE /api/mortgages/{id}
func (h *Handler) RemoveMortgage(w http.ResponseWriter, r *http.Request) {
	id := portfolio.MortgageID(chi.URLParam(r, "id"))

	if err := h.Portfolio.Remove(r.Context(), id); err != nil {
		writeServiceError(w, "Failed to remove mortgage", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CloneMortgage copies and calculates a mortgage.
// POST /api/mortgages/{id}/clone
func (h *Handler) CloneMortgage(w http.ResponseWriter, r *http.Request) {
	id := portfolio.MortgageID(chi.URLParam(r, "id"))

	start := time.Now()
	m, err := h.Portfolio.Clone(r.Context(), id)
	if !errors.Is(err, portfolio.ErrNotFound) {
		h.Metrics.observeComputation("workspace", start, err)
	}
	if err != nil {
		writeServiceError(w, "Failed to clone mortgage", err)
		return
	}
	writeJSON(w, http.StatusCreated, toMortgageDTO(m, m.ID, true))
}

// CalculateMortgage computes a mortgage's schedule. An optional body
// replaces the configuration first.
// POST /api/mortgages/{id}/calculate
func (h *Handler) CalculateMortgage(w http.ResponseWriter, r *http.Request) {
	id := portfolio.MortgageID(chi.URLParam(r, "id"))

	var req *factory.MortgageJSON
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var cfg *mortgage.Config
	if req != nil {
		parsed, err := h.Factory.FromJSON(*req)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid mortgage configuration", err)
			return
		}
		cfg = &parsed
	}

	start := time.Now()
	m, err := h.Portfolio.Calculate(r.Context(), id, cfg)
	if !errors.Is(err, portfolio.ErrNotFound) {
		h.Metrics.observeComputation("workspace", start, err)
	}
	if err != nil {
		writeServiceError(w, "Failed to calculate mortgage", err)
		return
	}
	h.writeMortgage(w, r, http.StatusOK, m)
}

// AddPeriod appends a period covering the rest of the term.
// POST /api/mortgages/{id}/periods
func (h *Handler) AddPeriod(w http.ResponseWriter, r *http.Request) {
	id := portfolio.MortgageID(chi.URLParam(r, "id"))

	m, err := h.Portfolio.AddPeriod(r.Context(), id)
	if err != nil {
		writeServiceError(w, "Failed to add period", err)
		return
	}
	h.writeMortgage(w, r, http.StatusOK, m)
}

// RemovePeriod deletes one period of a mortgage.
// DELETE /api/mortgages/{id}/periods/{index}
func (h *Handler) RemovePeriod(w http.ResponseWriter, r *http.Request) {
	id := portfolio.MortgageID(chi.URLParam(r, "id"))
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period index", err)
		return
	}

	m, err := h.Portfolio.RemovePeriod(r.Context(), id, index)
	if err != nil {
		writeServiceError(w, "Failed to remove period", err)
		return
	}
	h.writeMortgage(w, r, http.StatusOK, m)
}

// ActivateMortgage makes a mortgage the active one.
// POST /api/mortgages/{id}/activate
func (h *Handler) ActivateMortgage(w http.ResponseWriter, r *http.Request) {
	id := portfolio.MortgageID(chi.URLParam(r, "id"))

	if err := h.Portfolio.SetActive(r.Context(), id); err != nil {
		writeServiceError(w, "Failed to activate mortgage", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"active_id": string(id)})
}

// Compare summarises every calculated mortgage.
// GET /api/comparison
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	cmp, err := h.Portfolio.Compare(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compare mortgages", err)
		return
	}

	resp := ComparisonResponse{
		Entries:    make([]ComparisonEntryDTO, len(cmp.Entries)),
		CheapestID: string(cmp.CheapestID),
	}
	for i, e := range cmp.Entries {
		resp.Entries[i] = ComparisonEntryDTO{
			ID:      string(e.ID),
			Name:    e.Name,
			Summary: toSummaryDTO(e.Summary),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) writeMortgage(w http.ResponseWriter, r *http.Request, status int, m portfolio.Mortgage) {
	active, err := h.Portfolio.Active(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read active mortgage", err)
		return
	}
	writeJSON(w, status, toMortgageDTO(m, active, true))
}

func hasNoVariablePeriod(cfg mortgage.Config) bool {
	for _, p := range cfg.Periods {
		if p.IsVariable() {
			return false
		}
	}
	return true
}

// decodeOptional decodes a JSON body, leaving v untouched when the body
// is empty.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, portfolio.ErrNotFound), errors.Is(err, errScenarioNotFound):
		return http.StatusNotFound
	case errors.Is(err, portfolio.ErrLastMortgage):
		return http.StatusConflict
	case errors.Is(err, factory.ErrInvalidConfig), mortgage.IsConfigurationError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, message string, err error) {
	writeError(w, statusFor(err), message, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
