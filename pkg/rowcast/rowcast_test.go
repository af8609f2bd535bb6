package rowcast

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func defaultOptions() Options {
	return Options{MaxRows: 90, MaxCols: 5, Iterations: 10, Method: MethodPattern}
}

func TestRunPredictionsRejectsInput(t *testing.T) {
	tests := []struct {
		name    string
		known   []Position
		mutate  func(*Options)
		wantErr error
	}{
		{name: "No known positions", known: nil, wantErr: ErrEmptyInput},
		{name: "Column above max", known: []Position{{Row: 5, Col: 6}}, wantErr: ErrInvalidRange},
		{name: "Row below one", known: []Position{{Row: 0, Col: 1}}, wantErr: ErrInvalidRange},
		{
			name:    "Zero max rows",
			known:   []Position{{Row: 5, Col: 1}},
			mutate:  func(o *Options) { o.MaxRows = 0 },
			wantErr: ErrInvalidRange,
		},
		{
			name:    "Negative iterations",
			known:   []Position{{Row: 5, Col: 1}},
			mutate:  func(o *Options) { o.Iterations = -1 },
			wantErr: ErrInvalidRange,
		},
		{
			name:    "Unknown method",
			known:   []Position{{Row: 5, Col: 1}},
			mutate:  func(o *Options) { o.Method = "oracle" },
			wantErr: ErrInvalidRange,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultOptions()
			if tt.mutate != nil {
				tt.mutate(&opts)
			}
			report, err := RunPredictions(tt.known, opts)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, report)
		})
	}
}

func TestRunPredictionsHugeIterationsStopsAtGridEnd(t *testing.T) {
	opts := Options{MaxRows: 5, MaxCols: 5, Iterations: math.MaxInt, Method: MethodRandom, Rand: rand.New(rand.NewSource(3))}

	var report *Report
	var err error
	require.NotPanics(t, func() {
		report, err = RunPredictions([]Position{{Row: 1, Col: 1}}, opts)
	})
	require.NoError(t, err)
	require.NotEmpty(t, report.Predictions)
	assert.LessOrEqual(t, len(report.Predictions), 4)

	seen := map[int]bool{1: true}
	for _, p := range report.Predictions {
		assert.False(t, seen[p.Row], "row %d reused", p.Row)
		seen[p.Row] = true
		assert.LessOrEqual(t, p.Row, 5)
	}
}

func TestRunPredictionsNeverReusesRows(t *testing.T) {
	known := []Position{{Row: 3, Col: 2}, {Row: 9, Col: 4}, {Row: 14, Col: 2}, {Row: 25, Col: 1}}
	for _, method := range []Method{MethodRandom, MethodPattern} {
		for seed := int64(1); seed <= 20; seed++ {
			opts := Options{
				MaxRows:    40,
				MaxCols:    5,
				Iterations: 50,
				Method:     method,
				Rand:       rand.New(rand.NewSource(seed)),
			}
			report, err := RunPredictions(known, opts)
			require.NoError(t, err)
			require.LessOrEqual(t, len(report.Predictions), opts.Iterations)

			used := NewRowSet(known)
			for _, p := range report.Predictions {
				require.Falsef(t, used.Has(p.Row), "method %s seed %d: row %d predicted twice", method, seed, p.Row)
				require.GreaterOrEqual(t, p.Row, 1)
				require.LessOrEqual(t, p.Row, opts.MaxRows)
				require.GreaterOrEqual(t, p.Col, 1)
				require.LessOrEqual(t, p.Col, opts.MaxCols)
				used.Add(p.Row)
			}
			// 40 rows minus 4 known leaves room for all 36.
			require.Len(t, report.Predictions, 36)
		}
	}
}

func TestRunPredictionsStopsWhenExhausted(t *testing.T) {
	known := positionsFromCols(1, 2, 3, 4, 5, 1, 2, 3) // rows 1..8
	opts := Options{MaxRows: 10, MaxCols: 5, Iterations: 5, Method: MethodRandom, Rand: rand.New(rand.NewSource(7))}

	report, err := RunPredictions(known, opts)
	require.NoError(t, err)

	rows := make([]int, len(report.Predictions))
	for i, p := range report.Predictions {
		rows[i] = p.Row
	}
	// Iteration order, not row order.
	assert.Equal(t, []int{10, 9}, rows)
}

func TestRunPredictionsFillsInteriorGapFirst(t *testing.T) {
	known := []Position{{Row: 1, Col: 1}, {Row: 20, Col: 2}}
	opts := Options{MaxRows: 30, MaxCols: 5, Iterations: 1, Method: MethodRandom}

	report, err := RunPredictions(known, opts)
	require.NoError(t, err)
	require.Len(t, report.Predictions, 1)
	first := report.Predictions[0].Row
	assert.Greater(t, first, 1)
	assert.Less(t, first, 20)
}

func TestRunPredictionsRandomMode(t *testing.T) {
	known := []Position{{Row: 4, Col: 1}, {Row: 10, Col: 3}}
	opts := Options{MaxRows: 60, MaxCols: 5, Iterations: 8, Method: MethodRandom, Rand: rand.New(rand.NewSource(3))}

	report, err := RunPredictions(known, opts)
	require.NoError(t, err)
	require.NotEmpty(t, report.Predictions)
	for _, p := range report.Predictions {
		assert.Equal(t, TierMedium, p.Tier)
		assert.Equal(t, 0.5, p.Score)
	}
	assert.Equal(t, MethodRandom, report.Method)
}

func TestRunPredictionsEarlyFeedback(t *testing.T) {
	// A full 1..5 cycle: the first three guesses continue the cycle including earlier
	// guesses; afterwards only known positions count, so the next column resets to 1.
	known := []Position{{Row: 1, Col: 1}, {Row: 3, Col: 2}, {Row: 5, Col: 3}, {Row: 7, Col: 4}, {Row: 9, Col: 5}}
	opts := Options{MaxRows: 90, MaxCols: 5, Iterations: 5, Method: MethodPattern, Rand: &stubRand{}}

	report, err := RunPredictions(known, opts)
	require.NoError(t, err)
	require.Len(t, report.Predictions, 5)

	cols := make([]int, len(report.Predictions))
	for i, p := range report.Predictions {
		cols[i] = p.Col
		assert.Equal(t, TierHigh, p.Tier)
		assert.Equal(t, 1.0, p.Score)
	}
	assert.Equal(t, []int{1, 2, 3, 1, 1}, cols)
	assert.Equal(t, PatternSequential, report.Pattern.Type)
}

func TestRunPredictionsReport(t *testing.T) {
	known := []Position{{Row: 19, Col: 3}, {Row: 1, Col: 3}, {Row: 6, Col: 3}, {Row: 3, Col: 3}, {Row: 11, Col: 3}}
	before := append([]Position(nil), known...)

	core, logs := observer.New(zap.DebugLevel)
	opts := defaultOptions()
	opts.Iterations = 3
	opts.Logger = zap.New(core)

	report, err := RunPredictions(known, opts)
	require.NoError(t, err)

	if diff := cmp.Diff(before, known); diff != "" {
		t.Errorf("known positions mutated (-want +got):\n%s", diff)
	}
	assert.NotEmpty(t, report.RunID)
	if diff := cmp.Diff(NewColumnAnalyzer(known, 5).Analyze(), report.Pattern); diff != "" {
		t.Errorf("report pattern mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []int{2, 3, 5, 8}, report.Stats.Intervals)
	assert.Equal(t, 3, logs.FilterMessage("Predicted position").Len())
	assert.Equal(t, 1, logs.FilterMessage("Prediction run finished").Len())
	for _, entry := range logs.All() {
		assert.Equal(t, report.RunID, entry.ContextMap()["run_id"])
	}
}

func TestRunPredictionsZeroIterations(t *testing.T) {
	opts := defaultOptions()
	opts.Iterations = 0
	report, err := RunPredictions([]Position{{Row: 2, Col: 2}}, opts)
	require.NoError(t, err)
	assert.Empty(t, report.Predictions)
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    Method
		wantErr bool
	}{
		{"random", MethodRandom, false},
		{"", MethodRandom, false},
		{"pattern", MethodPattern, false},
		{"pattern-detection", MethodPattern, false},
		{"dice", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMethod(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidRange)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
