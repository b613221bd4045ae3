/*
Package sqlite provides a SQLite-backed implementation of portfolio.Store.

PURPOSE:
  Persists the mortgage workspace so configurations, their last computed
  schedules and the Euribor paths behind them survive restarts.

KEY TABLES:
  mortgages: one row per mortgage
             config_json         factory JSON (snake_case) of the config
             schedule_json       computed rows, NULL until calculated
             euribor_paths_json  paths by sorted-period index, NULL if none
  settings:  key/value pairs; "active_mortgage_id" holds the active mortgage

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. An in-memory database is pinned to
  one connection, since every new connection would see an empty database.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/mortgages.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := portfolio.NewService(store)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - portfolio/store.go: Interface definition
  - portfolio/store/memory.go: In-memory implementation for testing
  - factory/mortgage.go: config JSON format
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/mortgage-engine/factory"
	"github.com/warp/mortgage-engine/mortgage"
	"github.com/warp/mortgage-engine/portfolio"
)

// Fixed-width so lexical order matches time order.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

const activeKey = "active_mortgage_id"

// Store implements portfolio.Store using SQLite.
type Store struct {
	db      *sql.DB
	mu      sync.RWMutex
	factory *factory.MortgageFactory
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, factory: factory.NewMortgageFactory()}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS mortgages (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		config_json TEXT NOT NULL,
		schedule_json TEXT,
		euribor_paths_json TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_mortgages_created_at
		ON mortgages(created_at);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// MORTGAGES
// =============================================================================

// SaveMortgage inserts or replaces a mortgage.
func (s *Store) SaveMortgage(ctx context.Context, m portfolio.Mortgage) error {
	configJSON, err := factory.MarshalConfig(m.Config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	scheduleJSON, err := nullableJSON(len(m.Schedule) > 0, m.Schedule)
	if err != nil {
		return fmt.Errorf("marshal schedule: %w", err)
	}
	pathsJSON, err := nullableJSON(len(m.EuriborPaths) > 0, m.EuriborPaths)
	if err != nil {
		return fmt.Errorf("marshal euribor paths: %w", err)
	}

	createdAt, updatedAt := m.CreatedAt, m.UpdatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO mortgages (id, name, config_json, schedule_json, euribor_paths_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			config_json = excluded.config_json,
			schedule_json = excluded.schedule_json,
			euribor_paths_json = excluded.euribor_paths_json,
			updated_at = excluded.updated_at
	`,
		string(m.ID),
		m.Name,
		configJSON,
		scheduleJSON,
		pathsJSON,
		createdAt.UTC().Format(timeFormat),
		updatedAt.UTC().Format(timeFormat),
	)
	return err
}

// GetMortgage retrieves a mortgage by id.
func (s *Store) GetMortgage(ctx context.Context, id portfolio.MortgageID) (portfolio.Mortgage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, config_json, schedule_json, euribor_paths_json, created_at, updated_at
		FROM mortgages WHERE id = ?
	`, string(id))

	m, err := s.scanMortgage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return portfolio.Mortgage{}, portfolio.ErrNotFound
	}
	return m, err
}

// ListMortgages returns all mortgages in creation order.
func (s *Store) ListMortgages(ctx context.Context) ([]portfolio.Mortgage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, config_json, schedule_json, euribor_paths_json, created_at, updated_at
		FROM mortgages ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []portfolio.Mortgage
	for rows.Next() {
		m, err := s.scanMortgage(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// DeleteMortgage removes a mortgage and clears the active pointer if it
// referenced it.
func (s *Store) DeleteMortgage(ctx context.Context, id portfolio.MortgageID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM mortgages WHERE id = ?", string(id))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return portfolio.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM settings WHERE key = ? AND value = ?", activeKey, string(id),
	); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// ACTIVE MORTGAGE
// =============================================================================

// SetActive records the active mortgage.
func (s *Store) SetActive(ctx context.Context, id portfolio.MortgageID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, activeKey, string(id))
	return err
}

// GetActive returns the active mortgage id, "" when unset.
func (s *Store) GetActive(ctx context.Context) (portfolio.MortgageID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var id string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", activeKey).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return portfolio.MortgageID(id), nil
}

// =============================================================================
// HELPERS
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanMortgage(row scanner) (portfolio.Mortgage, error) {
	var (
		m                       portfolio.Mortgage
		id, configJSON          string
		scheduleJSON, pathsJSON sql.NullString
		createdAt, updatedAt    string
	)
	if err := row.Scan(&id, &m.Name, &configJSON, &scheduleJSON, &pathsJSON, &createdAt, &updatedAt); err != nil {
		return portfolio.Mortgage{}, err
	}
	m.ID = portfolio.MortgageID(id)

	cfg, err := s.factory.ParseMortgage(configJSON)
	if err != nil {
		return portfolio.Mortgage{}, fmt.Errorf("mortgage %s: %w", id, err)
	}
	m.Config = cfg

	if scheduleJSON.Valid {
		if err := json.Unmarshal([]byte(scheduleJSON.String), &m.Schedule); err != nil {
			return portfolio.Mortgage{}, fmt.Errorf("mortgage %s schedule: %w", id, err)
		}
	}
	if pathsJSON.Valid {
		var paths mortgage.EuriborPaths
		if err := json.Unmarshal([]byte(pathsJSON.String), &paths); err != nil {
			return portfolio.Mortgage{}, fmt.Errorf("mortgage %s euribor paths: %w", id, err)
		}
		m.EuriborPaths = paths
	}

	if m.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		return portfolio.Mortgage{}, fmt.Errorf("mortgage %s created_at: %w", id, err)
	}
	if m.UpdatedAt, err = time.Parse(timeFormat, updatedAt); err != nil {
		return portfolio.Mortgage{}, fmt.Errorf("mortgage %s updated_at: %w", id, err)
	}
	return m, nil
}

func nullableJSON(present bool, v any) (sql.NullString, error) {
	if !present {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
