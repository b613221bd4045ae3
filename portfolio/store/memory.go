// Package store provides portfolio.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/mortgage-engine/mortgage"
	"github.com/warp/mortgage-engine/portfolio"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	mortgages map[portfolio.MortgageID]portfolio.Mortgage
	active    portfolio.MortgageID
}

func NewMemory() *Memory {
	return &Memory{
		mortgages: make(map[portfolio.MortgageID]portfolio.Mortgage),
	}
}

func (m *Memory) SaveMortgage(_ context.Context, mg portfolio.Mortgage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mortgages[mg.ID] = clone(mg)
	return nil
}

func (m *Memory) GetMortgage(_ context.Context, id portfolio.MortgageID) (portfolio.Mortgage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mg, ok := m.mortgages[id]
	if !ok {
		return portfolio.Mortgage{}, portfolio.ErrNotFound
	}
	return clone(mg), nil
}

func (m *Memory) ListMortgages(_ context.Context) ([]portfolio.Mortgage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]portfolio.Mortgage, 0, len(m.mortgages))
	for _, mg := range m.mortgages {
		result = append(result, clone(mg))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *Memory) DeleteMortgage(_ context.Context, id portfolio.MortgageID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.mortgages[id]; !ok {
		return portfolio.ErrNotFound
	}
	delete(m.mortgages, id)
	if m.active == id {
		m.active = ""
	}
	return nil
}

func (m *Memory) SetActive(_ context.Context, id portfolio.MortgageID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = id
	return nil
}

func (m *Memory) GetActive(_ context.Context) (portfolio.MortgageID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active, nil
}

// clone copies the slices and maps so callers cannot mutate stored state.
func clone(mg portfolio.Mortgage) portfolio.Mortgage {
	out := mg
	out.Config.Periods = append([]mortgage.InterestPeriod(nil), mg.Config.Periods...)
	for i, p := range out.Config.Periods {
		out.Config.Periods[i].ExtraItems = append([]mortgage.ExtraItem(nil), p.ExtraItems...)
	}
	out.Config.PartialAmortizations = append([]mortgage.PartialAmortization(nil), mg.Config.PartialAmortizations...)
	out.Schedule = append([]mortgage.Row(nil), mg.Schedule...)
	if mg.EuriborPaths != nil {
		out.EuriborPaths = make(mortgage.EuriborPaths, len(mg.EuriborPaths))
		for k, v := range mg.EuriborPaths {
			out.EuriborPaths[k] = append([]float64(nil), v...)
		}
	}
	return out
}
