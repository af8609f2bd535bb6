package rowcast

import (
	"fmt"
	"sort"
	"strings"
)

const (
	repeatingMinAccuracy = 0.85
	markovMinConfidence  = 0.4
	frequencyFloor       = 0.3
)

// ColumnAnalyzer looks for structure in the column values of a position list.
// Row order is ignored: columns are read in the order the positions were supplied.
type ColumnAnalyzer struct {
	cols    []int
	maxCols int
}

// detector returns a pattern or nil when its shape is not present.
type detector func(a *ColumnAnalyzer) *PatternResult

// detectors run in this order; on equal confidence the earlier one wins.
var detectors = []detector{
	(*ColumnAnalyzer).detectSequential,
	(*ColumnAnalyzer).detectRepeating,
	(*ColumnAnalyzer).detectMarkov,
	(*ColumnAnalyzer).detectFrequency,
}

// NewColumnAnalyzer snapshots the columns of positions.
func NewColumnAnalyzer(positions []Position, maxCols int) *ColumnAnalyzer {
	cols := make([]int, len(positions))
	for i, p := range positions {
		cols[i] = p.Col
	}
	return &ColumnAnalyzer{cols: cols, maxCols: maxCols}
}

// AnalyzeColumns validates positions and returns the best column pattern.
func AnalyzeColumns(positions []Position, maxCols int) (PatternResult, error) {
	if len(positions) == 0 {
		return PatternResult{}, ErrEmptyInput
	}
	if err := ValidatePositions(positions, maxCols); err != nil {
		return PatternResult{}, err
	}
	return NewColumnAnalyzer(positions, maxCols).Analyze(), nil
}

// Analyze runs every detector and returns the highest-confidence result.
// The analyzer must hold at least one column.
func (a *ColumnAnalyzer) Analyze() PatternResult {
	var results []*PatternResult
	for _, detect := range detectors {
		if r := detect(a); r != nil {
			results = append(results, r)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
	return *results[0]
}

// detectSequential matches a cyclic ascending counter such as 3,4,5,1,2.
func (a *ColumnAnalyzer) detectSequential() *PatternResult {
	if len(a.cols) < 3 {
		return nil
	}
	for i := 1; i < len(a.cols); i++ {
		if a.cols[i] != a.cols[i-1]%a.maxCols+1 {
			return nil
		}
	}
	return &PatternResult{
		Type:        PatternSequential,
		Confidence:  1.0,
		NextCol:     a.cols[len(a.cols)-1]%a.maxCols + 1,
		Description: fmt.Sprintf("Sequential (1→2→3...→%d→1)", a.maxCols),
	}
}

// detectRepeating accepts the shortest period whose template matches at least 85% of the columns.
func (a *ColumnAnalyzer) detectRepeating() *PatternResult {
	n := len(a.cols)
	if n < 4 {
		return nil
	}
	for period := 2; period <= n/2; period++ {
		template := a.cols[:period]
		matches := 0
		for i, c := range a.cols {
			if c == template[i%period] {
				matches++
			}
		}
		accuracy := float64(matches) / float64(n)
		if accuracy < repeatingMinAccuracy {
			continue
		}
		return &PatternResult{
			Type:       PatternRepeating,
			Confidence: accuracy,
			NextCol:    template[n%period],
			Template:   append([]int(nil), template...),
			Description: fmt.Sprintf("Repeating [%s] (%.0f%% match)",
				joinInts(template, ", "), accuracy*100),
		}
	}
	return nil
}

// detectMarkov predicts the most frequent successor of the last column.
func (a *ColumnAnalyzer) detectMarkov() *PatternResult {
	n := len(a.cols)
	if n < 3 {
		return nil
	}
	last := a.cols[n-1]
	successors := make(map[int]int)
	total := 0
	for i := 0; i < n-1; i++ {
		if a.cols[i] == last {
			successors[a.cols[i+1]]++
			total++
		}
	}
	if total == 0 {
		return nil
	}
	next, count := mostFrequent(successors)
	confidence := float64(count) / float64(total)
	if confidence < markovMinConfidence {
		return nil
	}
	return &PatternResult{
		Type:        PatternMarkov,
		Confidence:  confidence,
		NextCol:     next,
		Description: fmt.Sprintf("Markov chain: %d→%d (%.0f%% probable)", last, next, confidence*100),
	}
}

// detectFrequency always matches. Small samples are discounted so that two equal
// columns do not read as certainty.
func (a *ColumnAnalyzer) detectFrequency() *PatternResult {
	n := len(a.cols)
	counts := make(map[int]int)
	for _, c := range a.cols {
		counts[c]++
	}
	top, count := mostFrequent(counts)
	confidence := float64(count) / float64(n)
	switch {
	case n < 5:
		confidence *= float64(n) / 10
	case n < 10:
		confidence *= 0.7
	}
	return &PatternResult{
		Type:        PatternFrequency,
		Confidence:  max(frequencyFloor, confidence),
		NextCol:     top,
		Frequencies: counts,
		Description: fmt.Sprintf("Most frequent: Column %d (%.0f%% of time, %d samples)",
			top, confidence*100, n),
	}
}

// mostFrequent returns the key with the highest count, smallest key on ties.
func mostFrequent(counts map[int]int) (key, count int) {
	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		if counts[k] > count {
			key, count = k, counts[k]
		}
	}
	return key, count
}

func joinInts(values []int, sep string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, sep)
}
