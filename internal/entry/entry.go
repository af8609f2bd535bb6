// Package entry turns hand-typed text into known positions and keeps the known set
// free of duplicates.
package entry

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jsnanigans/rowcast/pkg/rowcast"
)

var (
	// ErrMalformed is returned when text holds no usable row,column pair.
	ErrMalformed = errors.New("malformed position")
	// ErrDuplicate is returned when a position is already known.
	ErrDuplicate = errors.New("position already added")
)

var bracketPair = regexp.MustCompile(`\[(\d+),\s*(\d+)\]`)

// ParseEntry reads a single position typed as "7,2", "[7,2]" or "7 2".
func ParseEntry(s string) (rowcast.Position, error) {
	cleaned := strings.TrimSpace(strings.NewReplacer("[", "", "]", "").Replace(s))

	var parts []string
	switch {
	case strings.Contains(cleaned, ","):
		parts = strings.Split(cleaned, ",")
	case strings.Contains(cleaned, " "):
		parts = strings.Fields(cleaned)
	default:
		return rowcast.Position{}, fmt.Errorf("%q: use row,column (e.g. 7,2): %w", s, ErrMalformed)
	}
	if len(parts) < 2 {
		return rowcast.Position{}, fmt.Errorf("%q: %w", s, ErrMalformed)
	}

	row, errRow := strconv.Atoi(strings.TrimSpace(parts[0]))
	col, errCol := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errRow != nil || errCol != nil {
		return rowcast.Position{}, fmt.Errorf("%q: invalid numbers: %w", s, ErrMalformed)
	}
	return rowcast.Position{Row: row, Col: col}, nil
}

// ParseBulk reads many positions. When any "[row,col]" pair is present only those are
// used; otherwise whitespace-separated "row,col" tokens are read and bad tokens skipped.
func ParseBulk(s string) ([]rowcast.Position, error) {
	var positions []rowcast.Position

	if matches := bracketPair.FindAllStringSubmatch(s, -1); len(matches) > 0 {
		for _, m := range matches {
			row, _ := strconv.Atoi(m[1])
			col, _ := strconv.Atoi(m[2])
			positions = append(positions, rowcast.Position{Row: row, Col: col})
		}
	} else {
		for _, token := range strings.Fields(s) {
			if !strings.Contains(token, ",") {
				continue
			}
			parts := strings.SplitN(token, ",", 2)
			row, errRow := strconv.Atoi(strings.TrimSpace(parts[0]))
			col, errCol := strconv.Atoi(strings.TrimSpace(parts[1]))
			if errRow != nil || errCol != nil {
				continue
			}
			positions = append(positions, rowcast.Position{Row: row, Col: col})
		}
	}

	if len(positions) == 0 {
		return nil, fmt.Errorf("no valid positions found, use [7,2],[19,5] or 7,2 19,5: %w", ErrMalformed)
	}
	return positions, nil
}

// Book is the set of known positions, kept sorted by row.
type Book struct {
	maxCols   int
	positions []rowcast.Position
}

// NewBook returns an empty book for a grid maxCols wide.
func NewBook(maxCols int) *Book {
	return &Book{maxCols: maxCols}
}

// Add validates p and inserts it. Exact duplicates are rejected.
func (b *Book) Add(p rowcast.Position) error {
	if err := rowcast.ValidatePositions([]rowcast.Position{p}, b.maxCols); err != nil {
		return err
	}
	for _, known := range b.positions {
		if known == p {
			return fmt.Errorf("row %d, column %d: %w", p.Row, p.Col, ErrDuplicate)
		}
	}
	b.positions = append(b.positions, p)
	b.sort()
	return nil
}

// Replace swaps the whole set, as a bulk import does. Nothing changes on error.
func (b *Book) Replace(positions []rowcast.Position) error {
	if err := rowcast.ValidatePositions(positions, b.maxCols); err != nil {
		return err
	}
	b.positions = append([]rowcast.Position(nil), positions...)
	b.sort()
	return nil
}

// Clear forgets every position.
func (b *Book) Clear() {
	b.positions = nil
}

// Len returns the number of known positions.
func (b *Book) Len() int {
	return len(b.positions)
}

// Positions returns a copy of the known positions in row order.
func (b *Book) Positions() []rowcast.Position {
	return append([]rowcast.Position(nil), b.positions...)
}

func (b *Book) sort() {
	sort.SliceStable(b.positions, func(i, j int) bool {
		return b.positions[i].Row < b.positions[j].Row
	})
}
