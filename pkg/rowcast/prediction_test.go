package rowcast

import (
	"testing"
)

// stubRand replays fixed draws, cycling when exhausted.
type stubRand struct {
	ints   []int
	floats []float64
	i, f   int
}

func (r *stubRand) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[r.i%len(r.ints)] % n
	r.i++
	return v
}

func (r *stubRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[r.f%len(r.floats)]
	r.f++
	return v
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		score float64
		want  Tier
	}{
		{1.0, TierHigh},
		{0.8, TierHigh},
		{0.79, TierMedium},
		{0.5, TierMedium},
		{0.49, TierLow},
		{0.3, TierLow},
	}
	for _, tt := range tests {
		if got := TierFor(tt.score); got != tt.want {
			t.Errorf("TierFor(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestWeightedColumn(t *testing.T) {
	frequency := PatternResult{Type: PatternFrequency, Frequencies: map[int]int{2: 3}}
	markov := PatternResult{Type: PatternMarkov, NextCol: 1, Confidence: 0.7}

	tests := []struct {
		name    string
		pattern PatternResult
		maxCols int
		draw    float64
		want    int
	}{
		// Weights 0.5, 3.5, 0.5 over a total of 4.5.
		{"Zero draw lands on first column", frequency, 3, 0.0, 1},
		{"Heavy column", frequency, 3, 0.5, 2},
		{"Tail column", frequency, 3, 0.95, 3},
		// Non-frequency patterns sample uniformly: 0.5 each over 4 columns.
		{"Uniform without counts", markov, 4, 0.6, 3},
		{"Uniform upper edge", markov, 4, 0.99, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := weightedColumn(tt.pattern, tt.maxCols, &stubRand{floats: []float64{tt.draw}})
			if got != tt.want {
				t.Errorf("weightedColumn() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestChooseColumn(t *testing.T) {
	rng := &stubRand{floats: []float64{0.0}}
	tests := []struct {
		name    string
		pattern PatternResult
		want    int
	}{
		{
			name:    "Strong sequential is followed",
			pattern: PatternResult{Type: PatternSequential, Confidence: 1.0, NextCol: 4},
			want:    4,
		},
		{
			name:    "Strong repeating is followed",
			pattern: PatternResult{Type: PatternRepeating, Confidence: 0.9, NextCol: 5},
			want:    5,
		},
		{
			name:    "Weak repeating is sampled",
			pattern: PatternResult{Type: PatternRepeating, Confidence: 0.88, NextCol: 5},
			want:    1,
		},
		{
			name:    "Certain markov is still sampled",
			pattern: PatternResult{Type: PatternMarkov, Confidence: 1.0, NextCol: 5},
			want:    1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := chooseColumn(tt.pattern, 5, rng); got != tt.want {
				t.Errorf("chooseColumn() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRandomPrediction(t *testing.T) {
	got := randomPrediction(12, 5, &stubRand{ints: []int{3}})
	want := Prediction{Row: 12, Col: 4, Tier: TierMedium, Score: 0.5}
	if got != want {
		t.Errorf("randomPrediction() = %+v, want %+v", got, want)
	}
}
