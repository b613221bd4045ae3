package euribor

import "github.com/warp/mortgage-engine/mortgage"

// Series is the path of one variable period placed on the loan timeline.
type Series struct {
	StartMonth int       `json:"startMonth"`
	Values     []float64 `json:"values"`
}

// PreviewSeries returns one series per variable period of cfg. A saved path
// is reused when its length still matches the period; otherwise a path is
// generated from a seed derived from the period bounds, so the preview is
// stable across calls.
func PreviewSeries(cfg mortgage.Config, saved mortgage.EuriborPaths) []Series {
	var series []Series
	for i, p := range mortgage.SortPeriods(cfg.Periods) {
		if !p.IsVariable() {
			continue
		}
		span := p.Span(cfg.Months)
		values, ok := saved[i]
		if !ok || len(values) != span {
			seed := int64(p.StartMonth*1000 + p.EndMonth)
			values, _ = PathFor(p, cfg.Months, NewSeededSource(seed))
		}
		series = append(series, Series{StartMonth: p.StartMonth, Values: values})
	}
	return series
}

// SeriesToPaths converts preview series back into engine input, matching
// series to variable periods by start month.
func SeriesToPaths(series []Series, cfg mortgage.Config) mortgage.EuriborPaths {
	paths := mortgage.EuriborPaths{}
	for i, p := range mortgage.SortPeriods(cfg.Periods) {
		if !p.IsVariable() {
			continue
		}
		for _, s := range series {
			if s.StartMonth == p.StartMonth {
				paths[i] = s.Values
				break
			}
		}
	}
	return paths
}
