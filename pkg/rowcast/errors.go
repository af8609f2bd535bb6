package rowcast

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when an operation needs at least one known position.
	ErrEmptyInput = errors.New("no known positions")
	// ErrInvalidRange is returned for a row below 1, a column outside [1, maxCols] or a
	// non-positive grid bound.
	ErrInvalidRange = errors.New("position out of range")
	// ErrExhausted signals that no free row remains at or below maxRows.
	ErrExhausted = errors.New("no free row left")
)

// ValidatePositions checks every position against the grid bounds.
func ValidatePositions(positions []Position, maxCols int) error {
	if maxCols < 1 {
		return fmt.Errorf("max columns %d: %w", maxCols, ErrInvalidRange)
	}
	for _, p := range positions {
		if p.Row < 1 {
			return fmt.Errorf("row %d: %w", p.Row, ErrInvalidRange)
		}
		if p.Col < 1 || p.Col > maxCols {
			return fmt.Errorf("column %d not in [1, %d]: %w", p.Col, maxCols, ErrInvalidRange)
		}
	}
	return nil
}
