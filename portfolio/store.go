/*
store.go - Persistence interface for the mortgage workspace

PURPOSE:
  Defines the boundary between the portfolio service and storage. The
  service owns the rules (naming, cloning, never removing the last
  mortgage); a Store only saves and loads.

KEY TYPES:
  Mortgage: a named configuration plus its last computed schedule and the
            Euribor paths that schedule was computed with
  Store:    CRUD over mortgages plus the active-mortgage pointer

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - portfolio/store/memory.go: In-memory for testing

SEE ALSO:
  - service.go: business rules on top of Store
*/
package portfolio

import (
	"context"
	"errors"
	"time"

	"github.com/warp/mortgage-engine/mortgage"
)

var (
	// ErrNotFound is returned when a mortgage id is unknown.
	ErrNotFound = errors.New("mortgage not found")

	// ErrLastMortgage is returned when removing the only mortgage left.
	ErrLastMortgage = errors.New("cannot remove the last mortgage")
)

// MortgageID identifies a mortgage in the workspace.
type MortgageID string

// Mortgage is one entry of the workspace.
type Mortgage struct {
	ID           MortgageID
	Name         string
	Config       mortgage.Config
	Schedule     []mortgage.Row
	EuriborPaths mortgage.EuriborPaths
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasSchedule reports whether the mortgage has been calculated.
func (m Mortgage) HasSchedule() bool {
	return len(m.Schedule) > 0
}

// Store persists mortgages.
type Store interface {
	// SaveMortgage inserts or replaces a mortgage.
	SaveMortgage(ctx context.Context, m Mortgage) error

	// GetMortgage returns ErrNotFound for an unknown id.
	GetMortgage(ctx context.Context, id MortgageID) (Mortgage, error)

	// ListMortgages returns all mortgages in creation order.
	ListMortgages(ctx context.Context) ([]Mortgage, error)

	// DeleteMortgage returns ErrNotFound for an unknown id.
	DeleteMortgage(ctx context.Context, id MortgageID) error

	// SetActive records which mortgage the user is working on.
	SetActive(ctx context.Context, id MortgageID) error

	// GetActive returns "" when no mortgage is active.
	GetActive(ctx context.Context) (MortgageID, error)
}
