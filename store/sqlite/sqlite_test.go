package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/mortgage-engine/euribor"
	"github.com/warp/mortgage-engine/factory"
	"github.com/warp/mortgage-engine/mortgage"
	"github.com/warp/mortgage-engine/portfolio"
	"github.com/warp/mortgage-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func calculated(t *testing.T, id portfolio.MortgageID, created time.Time) portfolio.Mortgage {
	t.Helper()
	cfg, err := factory.NewMortgageFactory().ParseMortgage(
		factory.MixedMortgageJSON("Mixed", 150_000, 240, 60, 2.1, 0.7))
	require.NoError(t, err)

	paths := euribor.PathsFor(cfg, euribor.NewSeededSource(9))
	rows, err := mortgage.Compute(cfg, paths)
	require.NoError(t, err)

	return portfolio.Mortgage{
		ID:           id,
		Name:         cfg.Name,
		Config:       cfg,
		Schedule:     rows,
		EuriborPaths: paths,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

func TestStore_SaveAndGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	created := time.Date(2025, 3, 1, 10, 0, 0, 123, time.UTC)

	// GIVEN: a calculated mixed mortgage
	m := calculated(t, "m-1", created)

	// WHEN: it is saved and loaded
	require.NoError(t, store.SaveMortgage(ctx, m))
	got, err := store.GetMortgage(ctx, "m-1")

	// THEN: config, schedule and paths survive
	require.NoError(t, err)
	assert.Equal(t, m.Name, got.Name)
	assert.Equal(t, m.Config, got.Config)
	assert.Equal(t, m.Schedule, got.Schedule)
	assert.Equal(t, m.EuriborPaths, got.EuriborPaths)
	assert.True(t, created.Equal(got.CreatedAt))

	// AND: the stored paths reproduce the stored schedule
	rows, err := mortgage.Compute(got.Config, got.EuriborPaths)
	require.NoError(t, err)
	assert.Equal(t, got.Schedule, rows)
}

func TestStore_SaveUncalculated(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	m := calculated(t, "m-1", time.Now())
	m.Schedule = nil
	m.EuriborPaths = nil
	require.NoError(t, store.SaveMortgage(ctx, m))

	got, err := store.GetMortgage(ctx, "m-1")
	require.NoError(t, err)
	assert.False(t, got.HasSchedule())
	assert.Nil(t, got.EuriborPaths)
}

func TestStore_Upsert(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	m := calculated(t, "m-1", created)
	require.NoError(t, store.SaveMortgage(ctx, m))

	m.Name = "Renamed"
	m.Schedule = nil
	m.UpdatedAt = created.Add(time.Hour)
	require.NoError(t, store.SaveMortgage(ctx, m))

	list, err := store.ListMortgages(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Renamed", list[0].Name)
	assert.False(t, list[0].HasSchedule())
	assert.True(t, created.Equal(list[0].CreatedAt), "created_at is kept")
	assert.True(t, created.Add(time.Hour).Equal(list[0].UpdatedAt))
}

func TestStore_ListInCreationOrder(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveMortgage(ctx, calculated(t, "c", base.Add(2*time.Millisecond))))
	require.NoError(t, store.SaveMortgage(ctx, calculated(t, "a", base.Add(10*time.Second))))
	require.NoError(t, store.SaveMortgage(ctx, calculated(t, "b", base)))

	list, err := store.ListMortgages(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, portfolio.MortgageID("b"), list[0].ID)
	assert.Equal(t, portfolio.MortgageID("c"), list[1].ID)
	assert.Equal(t, portfolio.MortgageID("a"), list[2].ID)
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	_, err := store.GetMortgage(ctx, "missing")
	assert.ErrorIs(t, err, portfolio.ErrNotFound)
	assert.ErrorIs(t, store.DeleteMortgage(ctx, "missing"), portfolio.ErrNotFound)
}

func TestStore_ActivePointer(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	active, err := store.GetActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, store.SaveMortgage(ctx, calculated(t, "a", time.Now())))
	require.NoError(t, store.SaveMortgage(ctx, calculated(t, "b", time.Now())))

	require.NoError(t, store.SetActive(ctx, "a"))
	require.NoError(t, store.SetActive(ctx, "b"))
	active, err = store.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, portfolio.MortgageID("b"), active)

	// Deleting another mortgage keeps the pointer
	require.NoError(t, store.DeleteMortgage(ctx, "a"))
	active, err = store.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, portfolio.MortgageID("b"), active)

	// Deleting the active one clears it
	require.NoError(t, store.DeleteMortgage(ctx, "b"))
	active, err = store.GetActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "mortgages.db")

	store, err := sqlite.New(path)
	require.NoError(t, err)
	m := calculated(t, "m-1", time.Now())
	require.NoError(t, store.SaveMortgage(ctx, m))
	require.NoError(t, store.SetActive(ctx, m.ID))
	require.NoError(t, store.Close())

	reopened, err := sqlite.New(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetMortgage(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.Schedule, got.Schedule)

	active, err := reopened.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, m.ID, active)
}

func TestStore_CorruptTimestampIsAnError(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "mortgages.db")

	store, err := sqlite.New(path)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.SaveMortgage(ctx, calculated(t, "m-1", time.Now())))

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer raw.Close()
	_, err = raw.ExecContext(ctx, `UPDATE mortgages SET created_at = 'yesterday' WHERE id = 'm-1'`)
	require.NoError(t, err)

	_, err = store.GetMortgage(ctx, "m-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "created_at")

	_, err = store.ListMortgages(ctx)
	assert.Error(t, err)
}

func TestStore_WithService(t *testing.T) {
	ctx := context.Background()
	svc := portfolio.NewService(newStore(t), portfolio.WithSource(euribor.NewSeededSource(1)))

	require.NoError(t, svc.EnsureDefault(ctx))
	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	cp, err := svc.Clone(ctx, list[0].ID)
	require.NoError(t, err)
	assert.Len(t, cp.Schedule, 360)

	require.NoError(t, svc.Remove(ctx, list[0].ID))
	active, err := svc.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, cp.ID, active)
}
