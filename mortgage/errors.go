package mortgage

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNoPeriods is returned when a config carries no interest period.
	ErrNoPeriods = errors.New("at least one interest period is required")

	// ErrEuriborPath is returned when a variable period has no reference-rate
	// path or the path length does not match the months it spans.
	ErrEuriborPath = errors.New("missing or wrong-length euribor path")

	// ErrTermTooLong is returned when the term exceeds MaxMonths.
	ErrTermTooLong = errors.New("term exceeds the maximum number of months")

	// ErrNonFinite is returned when the rates and amounts overflow float64.
	ErrNonFinite = errors.New("rates and amounts produce a non-finite payment")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// PathError names the variable period whose path is unusable.
type PathError struct {
	Period  int // 0-based index into the sorted periods
	Want    int
	Got     int
	Missing bool
}

func (e *PathError) Error() string {
	if e.Missing {
		return fmt.Sprintf("variable period %d: no euribor path supplied (need %d months)", e.Period+1, e.Want)
	}
	return fmt.Sprintf("variable period %d: euribor path has %d months, need %d", e.Period+1, e.Got, e.Want)
}

func (e *PathError) Unwrap() error {
	return ErrEuriborPath
}

// IsConfigurationError reports whether err was caused by the caller's input.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrNoPeriods) || errors.Is(err, ErrEuriborPath) ||
		errors.Is(err, ErrTermTooLong) || errors.Is(err, ErrNonFinite)
}
