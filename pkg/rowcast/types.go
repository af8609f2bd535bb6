package rowcast

import (
	"math/rand"
	"sort"
	"time"
)

// Position is a confirmed or predicted event location.
type Position struct {
	Row int `json:"row" yaml:"row"` // 1-based depth index
	Col int `json:"col" yaml:"col"` // 1-based lane, at most maxCols
}

// PatternType names the detector that produced a PatternResult.
type PatternType string

const (
	PatternSequential PatternType = "sequential"
	PatternRepeating  PatternType = "repeating"
	PatternMarkov     PatternType = "markov"
	PatternFrequency  PatternType = "frequency"
)

// PatternResult describes the structure found in a column sequence.
type PatternResult struct {
	Type        PatternType `json:"type"`
	Confidence  float64     `json:"confidence"`
	NextCol     int         `json:"nextCol"`
	Description string      `json:"description"`
	// Template is the matched sub-pattern (repeating only).
	Template []int `json:"template,omitempty"`
	// Frequencies maps column -> observation count (frequency only).
	Frequencies map[int]int `json:"frequencies,omitempty"`
}

// Tier is the coarse confidence bucket shown next to a prediction.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// Method selects how the orchestrator picks columns.
type Method string

const (
	MethodRandom  Method = "random"
	MethodPattern Method = "pattern"
)

// Prediction is a guessed event location emitted by RunPredictions.
type Prediction struct {
	Row   int     `json:"row"`
	Col   int     `json:"col"`
	Tier  Tier    `json:"confidence"`
	Score float64 `json:"score"`
}

// RowStats summarizes the gaps between known rows.
type RowStats struct {
	Avg         float64 `json:"avg"`
	Median      int     `json:"median"`
	Min         int     `json:"min"`
	Max         int     `json:"max"`
	Pattern     string  `json:"pattern"`
	IsFibonacci bool    `json:"isFibonacci"`
	Intervals   []int   `json:"intervals,omitempty"`
}

// Report is the outcome of one prediction run.
type Report struct {
	RunID       string        `json:"runId"`
	Method      Method        `json:"method"`
	Predictions []Prediction  `json:"predictions"`
	Pattern     PatternResult `json:"pattern"`
	Stats       RowStats      `json:"stats"`
}

// Rand is the random source used for sampling. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// RowSet is a set of claimed rows.
type RowSet map[int]struct{}

// NewRowSet returns a set holding the rows of positions.
func NewRowSet(positions []Position) RowSet {
	set := make(RowSet, len(positions))
	for _, p := range positions {
		set.Add(p.Row)
	}
	return set
}

// Has reports whether row is claimed.
func (s RowSet) Has(row int) bool {
	_, ok := s[row]
	return ok
}

// Add claims row.
func (s RowSet) Add(row int) {
	s[row] = struct{}{}
}

// Sorted returns the claimed rows in ascending order.
func (s RowSet) Sorted() []int {
	rows := make([]int, 0, len(s))
	for r := range s {
		rows = append(rows, r)
	}
	sort.Ints(rows)
	return rows
}

// sortedByRow returns a row-ascending copy of positions. Equal rows keep their input order.
func sortedByRow(positions []Position) []Position {
	sorted := make([]Position, len(positions))
	copy(sorted, positions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Row < sorted[j].Row
	})
	return sorted
}

func defaultRand(rng Rand) Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
