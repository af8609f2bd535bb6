package rowcast

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	fibonacciTolerance  = 2
	fibonacciConfidence = 0.95
	// coldStartRows bounds the guess made when nothing is known yet.
	coldStartRows = 20
	minInterval   = 2
)

// FibonacciMatch reports a gap progression where each gap is roughly the sum of the previous two.
type FibonacciMatch struct {
	NextInterval int
	Confidence   float64
}

// IntervalPredictor proposes rows from the gaps between known rows.
// It is built over a snapshot; build a new one whenever the position set changes.
type IntervalPredictor struct {
	rows      []int
	intervals []int
	rng       Rand
}

// NewIntervalPredictor sorts a copy of positions by row and derives the interval sequence.
// A nil rng falls back to a time-seeded source.
func NewIntervalPredictor(positions []Position, rng Rand) *IntervalPredictor {
	sorted := sortedByRow(positions)
	rows := make([]int, len(sorted))
	for i, p := range sorted {
		rows[i] = p.Row
	}
	var intervals []int
	for i := 1; i < len(rows); i++ {
		intervals = append(intervals, rows[i]-rows[i-1])
	}
	return &IntervalPredictor{rows: rows, intervals: intervals, rng: rng}
}

// RowStatsOf summarizes the intervals of positions.
func RowStatsOf(positions []Position) RowStats {
	return NewIntervalPredictor(positions, nil).Stats()
}

// PredictNextRow builds a predictor over positions and asks it for the next row.
func PredictNextRow(positions []Position, used RowSet, maxRows int, rng Rand) (int, error) {
	return NewIntervalPredictor(positions, rng).PredictNextRow(used, maxRows)
}

// Intervals returns a copy of the gaps between consecutive known rows.
func (p *IntervalPredictor) Intervals() []int {
	return append([]int(nil), p.intervals...)
}

// DetectFibonacci needs at least three intervals; each from the third on must be within
// two of the sum of the previous two.
func (p *IntervalPredictor) DetectFibonacci() (FibonacciMatch, bool) {
	iv := p.intervals
	if len(iv) < 3 {
		return FibonacciMatch{}, false
	}
	for i := 2; i < len(iv); i++ {
		if abs(iv[i]-(iv[i-1]+iv[i-2])) > fibonacciTolerance {
			return FibonacciMatch{}, false
		}
	}
	last := len(iv) - 1
	return FibonacciMatch{
		NextInterval: iv[last] + iv[last-1],
		Confidence:   fibonacciConfidence,
	}, true
}

// PredictNextRow returns the most probable unclaimed row. Interior gaps are filled
// before rows ahead of the first known row, and both before extrapolating past the last.
// ErrExhausted is returned when every candidate up to maxRows is taken.
//
// With no positions at all the result is a cold-start guess in [1, 20] that ignores
// both used and maxRows; callers bound-check it themselves, as RunPredictions does.
func (p *IntervalPredictor) PredictNextRow(used RowSet, maxRows int) (int, error) {
	if len(p.rows) == 0 {
		return defaultRand(p.rng).Intn(coldStartRows) + 1, nil
	}
	if used == nil {
		used = RowSet{}
	}
	typical := p.typicalInterval(maxRows)

	for _, g := range p.gaps() {
		candidate := g.start + clamp(g.size/2, 1, typical)
		for candidate < g.end && used.Has(candidate) {
			candidate++
		}
		if candidate < g.end {
			return candidate, nil
		}
	}

	first := p.rows[0]
	if first-1 >= typical {
		candidate := max(1, first-typical)
		for candidate < first && used.Has(candidate) {
			candidate++
		}
		if candidate < first {
			return candidate, nil
		}
	}

	step := typical
	if fib, ok := p.DetectFibonacci(); ok {
		step = fib.NextInterval
	} else if len(p.intervals) > 0 {
		step = p.medianInterval()
	}
	last := p.rows[len(p.rows)-1]
	next := last + step
	if next <= maxRows && !used.Has(next) {
		return next, nil
	}
	for row := last + 1; row <= maxRows; row++ {
		if !used.Has(row) {
			return row, nil
		}
	}
	return 0, fmt.Errorf("after row %d with max %d: %w", last, maxRows, ErrExhausted)
}

// Stats is pure: repeated calls on the same predictor return equal values.
func (p *IntervalPredictor) Stats() RowStats {
	if len(p.intervals) == 0 {
		return RowStats{Pattern: "insufficient"}
	}
	values := make([]float64, len(p.intervals))
	for i, v := range p.intervals {
		values[i] = float64(v)
	}
	_, fib := p.DetectFibonacci()
	pattern := "Variable"
	if fib {
		pattern = "Fibonacci"
	}
	return RowStats{
		Avg:         stat.Mean(values, nil),
		Median:      p.medianInterval(),
		Min:         int(floats.Min(values)),
		Max:         int(floats.Max(values)),
		Pattern:     pattern,
		IsFibonacci: fib,
		Intervals:   p.Intervals(),
	}
}

// typicalInterval is the median gap capped by a density target so predictions neither
// bunch up nor spread out as the position set grows.
func (p *IntervalPredictor) typicalInterval(maxRows int) int {
	if len(p.intervals) == 0 {
		return max(minInterval, roundDiv(maxRows, 10))
	}
	density := max(minInterval, roundDiv(maxRows, max(len(p.rows)+4, 6)))
	return max(minInterval, min(p.medianInterval(), density))
}

// medianInterval is the upper median: sorted[len/2].
func (p *IntervalPredictor) medianInterval() int {
	sorted := p.Intervals()
	sort.Ints(sorted)
	return sorted[len(sorted)/2]
}

type gap struct {
	start, end, size int
}

// gaps lists the open stretches between consecutive rows, largest first.
func (p *IntervalPredictor) gaps() []gap {
	var out []gap
	for i := 0; i+1 < len(p.rows); i++ {
		start, end := p.rows[i], p.rows[i+1]
		if size := end - start - 1; size > 0 {
			out = append(out, gap{start: start, end: end, size: size})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].size > out[j].size
	})
	return out
}

func roundDiv(a, b int) int {
	return int(math.Round(float64(a) / float64(b)))
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
