/*
service.go - Multi-mortgage workspace

PURPOSE:
  Holds several named mortgages side by side so they can be edited,
  calculated and compared. One mortgage is "active" at a time.

RULES:
  - Add creates "Mortgage N" with the default configuration and makes it active
  - Clone deep-copies the configuration as "<name> (copy)", makes it active
    and calculates it straight away with fresh Euribor paths
  - Remove refuses to drop the last mortgage; removing the active one moves
    the pointer to the first remaining mortgage
  - Update replaces the configuration and discards the stale schedule
  - AddPeriod / RemovePeriod edit the periods one at a time; the result is
    only validated when it is calculated
  - Calculate draws new Euribor paths for every variable period, runs the
    engine and stores schedule and paths together

CONCURRENCY:
  The service serialises mutations with a mutex. The random source is only
  touched under that mutex, so a seeded source gives reproducible runs.

SEE ALSO:
  - store.go: persistence interface
  - mortgage/engine.go: schedule computation
  - euribor/path.go: path generation
*/
package portfolio

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/mortgage-engine/euribor"
	"github.com/warp/mortgage-engine/factory"
	"github.com/warp/mortgage-engine/mortgage"
)

// Service manages the mortgage workspace.
type Service struct {
	mu      sync.Mutex
	store   Store
	factory *factory.MortgageFactory
	rng     euribor.Source
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithSource sets the random source used for Euribor paths.
func WithSource(src euribor.Source) Option {
	return func(s *Service) { s.rng = src }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		factory: factory.NewMortgageFactory(),
		rng:     euribor.NewRandomSource(),
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ComparisonEntry is one column of the comparison table.
type ComparisonEntry struct {
	ID      MortgageID
	Name    string
	Summary mortgage.Summary
}

// Comparison summarises every calculated mortgage.
type Comparison struct {
	Entries    []ComparisonEntry
	CheapestID MortgageID // "" when nothing has been calculated
}

// =============================================================================
// WORKSPACE OPERATIONS
// =============================================================================

// EnsureDefault seeds an empty workspace with one default mortgage.
func (s *Service) EnsureDefault(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.ListMortgages(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	_, err = s.add(ctx, "", 0)
	return err
}

// Add creates a mortgage with the default configuration. An empty name
// becomes "Mortgage N".
func (s *Service) Add(ctx context.Context, name string) (Mortgage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.ListMortgages(ctx)
	if err != nil {
		return Mortgage{}, err
	}
	return s.add(ctx, name, len(existing))
}

func (s *Service) add(ctx context.Context, name string, count int) (Mortgage, error) {
	if strings.TrimSpace(name) == "" {
		name = fmt.Sprintf("Mortgage %d", count+1)
	}
	cfg, err := s.factory.ParseMortgage(factory.DefaultMortgageJSON(name))
	if err != nil {
		return Mortgage{}, err
	}
	return s.insert(ctx, name, cfg)
}

// AddConfig creates a mortgage from an existing configuration.
func (s *Service) AddConfig(ctx context.Context, cfg mortgage.Config) (Mortgage, error) {
	if err := factory.ValidateConfig(cfg); err != nil {
		return Mortgage{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.ListMortgages(ctx)
	if err != nil {
		return Mortgage{}, err
	}
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = fmt.Sprintf("Mortgage %d", len(existing)+1)
	}
	return s.insert(ctx, name, cfg)
}

func (s *Service) insert(ctx context.Context, name string, cfg mortgage.Config) (Mortgage, error) {
	return s.persistNew(ctx, s.newMortgage(name, cfg))
}

func (s *Service) newMortgage(name string, cfg mortgage.Config) Mortgage {
	now := s.now()
	cfg.Name = name
	return Mortgage{
		ID:        MortgageID(uuid.NewString()),
		Name:      name,
		Config:    cfg,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// persistNew stores a new mortgage and makes it active.
func (s *Service) persistNew(ctx context.Context, m Mortgage) (Mortgage, error) {
	if err := s.store.SaveMortgage(ctx, m); err != nil {
		return Mortgage{}, fmt.Errorf("save mortgage: %w", err)
	}
	if err := s.store.SetActive(ctx, m.ID); err != nil {
		return Mortgage{}, fmt.Errorf("set active: %w", err)
	}
	s.logger.Info("mortgage added", "id", m.ID, "name", m.Name)
	return m, nil
}

// Clone copies a mortgage's configuration under "<name> (copy)" and
// calculates it. Nothing is stored when the calculation fails.
func (s *Service) Clone(ctx context.Context, id MortgageID) (Mortgage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	source, err := s.store.GetMortgage(ctx, id)
	if err != nil {
		return Mortgage{}, err
	}

	base := strings.TrimSpace(source.Name)
	if base == "" {
		base = "Mortgage"
	}
	cfg := copyConfig(source.Config)
	if err := factory.ValidateConfig(cfg); err != nil {
		return Mortgage{}, err
	}

	m, err := s.schedule(s.newMortgage(base+" (copy)", cfg))
	if err != nil {
		return Mortgage{}, err
	}
	return s.persistNew(ctx, m)
}

// Remove deletes a mortgage. The last mortgage cannot be removed.
func (s *Service) Remove(ctx context.Context, id MortgageID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.store.ListMortgages(ctx)
	if err != nil {
		return err
	}
	if !containsID(all, id) {
		return ErrNotFound
	}
	if len(all) == 1 {
		return ErrLastMortgage
	}

	active, err := s.store.GetActive(ctx)
	if err != nil {
		return err
	}
	if err := s.store.DeleteMortgage(ctx, id); err != nil {
		return err
	}
	if active == id {
		for _, m := range all {
			if m.ID != id {
				if err := s.store.SetActive(ctx, m.ID); err != nil {
					return err
				}
				break
			}
		}
	}

	s.logger.Info("mortgage removed", "id", id)
	return nil
}

// SetActive selects the mortgage being worked on.
func (s *Service) SetActive(ctx context.Context, id MortgageID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.GetMortgage(ctx, id); err != nil {
		return err
	}
	return s.store.SetActive(ctx, id)
}

// Active returns the active mortgage id, "" when none.
func (s *Service) Active(ctx context.Context) (MortgageID, error) {
	return s.store.GetActive(ctx)
}

func (s *Service) Get(ctx context.Context, id MortgageID) (Mortgage, error) {
	return s.store.GetMortgage(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Mortgage, error) {
	return s.store.ListMortgages(ctx)
}

// Update replaces a mortgage's configuration. The previous schedule and
// paths no longer describe the configuration and are dropped.
func (s *Service) Update(ctx context.Context, id MortgageID, cfg mortgage.Config) (Mortgage, error) {
	if err := factory.ValidateConfig(cfg); err != nil {
		return Mortgage{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.store.GetMortgage(ctx, id)
	if err != nil {
		return Mortgage{}, err
	}
	if name := strings.TrimSpace(cfg.Name); name != "" {
		m.Name = name
	}
	cfg.Name = m.Name
	m.Config = cfg
	m.Schedule = nil
	m.EuriborPaths = nil
	m.UpdatedAt = s.now()

	if err := s.store.SaveMortgage(ctx, m); err != nil {
		return Mortgage{}, fmt.Errorf("save mortgage: %w", err)
	}
	return m, nil
}

// Calculate computes the schedule of a mortgage. When cfg is non-nil it
// replaces the stored configuration first.
func (s *Service) Calculate(ctx context.Context, id MortgageID, cfg *mortgage.Config) (Mortgage, error) {
	if cfg != nil {
		if err := factory.ValidateConfig(*cfg); err != nil {
			return Mortgage{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.store.GetMortgage(ctx, id)
	if err != nil {
		return Mortgage{}, err
	}
	if cfg != nil {
		if name := strings.TrimSpace(cfg.Name); name != "" {
			m.Name = name
		}
		m.Config = copyConfig(*cfg)
		m.Config.Name = m.Name
	} else if err := factory.ValidateConfig(m.Config); err != nil {
		return Mortgage{}, err
	}
	return s.calculate(ctx, m)
}

func (s *Service) calculate(ctx context.Context, m Mortgage) (Mortgage, error) {
	m, err := s.schedule(m)
	if err != nil {
		return Mortgage{}, err
	}
	if err := s.store.SaveMortgage(ctx, m); err != nil {
		return Mortgage{}, fmt.Errorf("save mortgage: %w", err)
	}
	return m, nil
}

// schedule draws fresh paths and runs the engine without storing anything.
func (s *Service) schedule(m Mortgage) (Mortgage, error) {
	start := s.now()
	paths := euribor.PathsFor(m.Config, s.rng)

	rows, err := mortgage.Compute(m.Config, paths)
	if err != nil {
		return Mortgage{}, fmt.Errorf("compute schedule for %s: %w", m.ID, err)
	}

	m.Schedule = rows
	m.EuriborPaths = nil
	if len(paths) > 0 {
		m.EuriborPaths = paths
	}
	m.UpdatedAt = s.now()

	s.logger.Info("schedule calculated",
		"id", m.ID,
		"months", len(rows),
		"variable_periods", len(paths),
		"elapsed", s.now().Sub(start),
	)
	return m, nil
}

// AddPeriod appends a fixed period running from the end of the last one to
// the end of the term. Like every edit it drops the schedule.
func (s *Service) AddPeriod(ctx context.Context, id MortgageID) (Mortgage, error) {
	return s.editPeriods(ctx, id, factory.AppendPeriod)
}

// RemovePeriod drops the period at index. The result may leave a gap;
// Calculate rejects it until the periods cover the term again.
func (s *Service) RemovePeriod(ctx context.Context, id MortgageID, index int) (Mortgage, error) {
	return s.editPeriods(ctx, id, func(cfg mortgage.Config) (mortgage.Config, error) {
		return factory.RemovePeriod(cfg, index)
	})
}

func (s *Service) editPeriods(ctx context.Context, id MortgageID, edit func(mortgage.Config) (mortgage.Config, error)) (Mortgage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.store.GetMortgage(ctx, id)
	if err != nil {
		return Mortgage{}, err
	}
	cfg, err := edit(copyConfig(m.Config))
	if err != nil {
		return Mortgage{}, err
	}
	m.Config = cfg
	m.Schedule = nil
	m.EuriborPaths = nil
	m.UpdatedAt = s.now()

	if err := s.store.SaveMortgage(ctx, m); err != nil {
		return Mortgage{}, fmt.Errorf("save mortgage: %w", err)
	}
	return m, nil
}

// Compare summarises every mortgage that has a schedule, in workspace order.
func (s *Service) Compare(ctx context.Context) (Comparison, error) {
	all, err := s.store.ListMortgages(ctx)
	if err != nil {
		return Comparison{}, err
	}

	var cmp Comparison
	summaries := make([]mortgage.Summary, 0, len(all))
	for _, m := range all {
		if !m.HasSchedule() {
			continue
		}
		sum := mortgage.Summarize(m.Config, m.Schedule)
		summaries = append(summaries, sum)
		cmp.Entries = append(cmp.Entries, ComparisonEntry{ID: m.ID, Name: m.Name, Summary: sum})
	}
	if i := mortgage.Cheapest(summaries); i >= 0 {
		cmp.CheapestID = cmp.Entries[i].ID
	}
	return cmp, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func containsID(all []Mortgage, id MortgageID) bool {
	for _, m := range all {
		if m.ID == id {
			return true
		}
	}
	return false
}

func copyConfig(cfg mortgage.Config) mortgage.Config {
	out := cfg
	out.Periods = make([]mortgage.InterestPeriod, len(cfg.Periods))
	for i, p := range cfg.Periods {
		p.ExtraItems = append([]mortgage.ExtraItem(nil), p.ExtraItems...)
		p.EuriborDifferential = copyFloat(p.EuriborDifferential)
		p.EuriborMin = copyFloat(p.EuriborMin)
		p.EuriborMax = copyFloat(p.EuriborMax)
		p.EuriborVolatility = copyFloat(p.EuriborVolatility)
		out.Periods[i] = p
	}
	out.PartialAmortizations = append([]mortgage.PartialAmortization(nil), cfg.PartialAmortizations...)
	return out
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return mortgage.Float(*v)
}
