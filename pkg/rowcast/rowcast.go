// Package rowcast guesses where the unseen events of a partially observed row/column
// sequence are. A column analyzer and a row-interval predictor are combined by
// RunPredictions into an ordered list of scored guesses.
package rowcast

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// earlyFeedbackIterations is how many iterations let the column analyzer see the
// predictions made so far. Later iterations only use known positions so synthetic
// guesses do not compound.
const earlyFeedbackIterations = 3

// Options configures one prediction run.
type Options struct {
	MaxRows    int
	MaxCols    int
	Iterations int
	Method     Method
	// Rand is the sampling source; nil uses a time-seeded one.
	Rand   Rand
	Logger *zap.Logger
}

// workingSet accumulates the predictions of a single run. It owns its slices; the
// caller's positions are copied in.
type workingSet struct {
	known     []Position
	positions []Position
	used      RowSet
}

func newWorkingSet(known []Position) *workingSet {
	return &workingSet{
		known:     append([]Position(nil), known...),
		positions: append([]Position(nil), known...),
		used:      NewRowSet(known),
	}
}

func (w *workingSet) add(p Prediction) {
	w.positions = append(w.positions, Position{Row: p.Row, Col: p.Col})
	w.used.Add(p.Row)
}

// RunPredictions generates up to opts.Iterations guesses from the known positions.
// The list is shorter when the grid runs out of free rows. The report also carries
// the column pattern and row statistics of the known positions.
func RunPredictions(known []Position, opts Options) (*Report, error) {
	if len(known) == 0 {
		return nil, ErrEmptyInput
	}
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	if err := ValidatePositions(known, opts.MaxCols); err != nil {
		return nil, err
	}

	method := opts.Method
	if method == "" {
		method = MethodRandom
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rng := defaultRand(opts.Rand)
	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	report := &Report{
		RunID:       runID,
		Method:      method,
		Predictions: make([]Prediction, 0, min(opts.Iterations, opts.MaxRows)),
		Pattern:     NewColumnAnalyzer(known, opts.MaxCols).Analyze(),
		Stats:       RowStatsOf(known),
	}
	logger.Debug("Starting prediction run",
		zap.Int("known", len(known)),
		zap.String("method", string(method)),
		zap.Int("iterations", opts.Iterations))

	ws := newWorkingSet(known)
	for i := 0; i < opts.Iterations; i++ {
		row, err := NewIntervalPredictor(ws.positions, rng).PredictNextRow(ws.used, opts.MaxRows)
		if errors.Is(err, ErrExhausted) || (err == nil && row > opts.MaxRows) {
			logger.Info("Grid exhausted, stopping early",
				zap.Int("iteration", i),
				zap.Int("max_rows", opts.MaxRows))
			break
		}
		if err != nil {
			return nil, err
		}

		var pred Prediction
		if method == MethodRandom {
			pred = randomPrediction(row, opts.MaxCols, rng)
		} else {
			basis := ws.known
			if i < earlyFeedbackIterations {
				basis = ws.positions
			}
			pattern := NewColumnAnalyzer(basis, opts.MaxCols).Analyze()
			pred = Prediction{
				Row:   row,
				Col:   chooseColumn(pattern, opts.MaxCols, rng),
				Tier:  TierFor(pattern.Confidence),
				Score: pattern.Confidence,
			}
		}

		logger.Debug("Predicted position",
			zap.Int("iteration", i),
			zap.Int("row", pred.Row),
			zap.Int("col", pred.Col),
			zap.String("tier", string(pred.Tier)))
		report.Predictions = append(report.Predictions, pred)
		ws.add(pred)
	}

	logger.Info("Prediction run finished",
		zap.Int("predictions", len(report.Predictions)),
		zap.String("pattern", string(report.Pattern.Type)))
	return report, nil
}

func validateOptions(opts Options) error {
	if opts.MaxRows < 1 {
		return fmt.Errorf("max rows %d: %w", opts.MaxRows, ErrInvalidRange)
	}
	if opts.Iterations < 0 {
		return fmt.Errorf("iterations %d: %w", opts.Iterations, ErrInvalidRange)
	}
	switch opts.Method {
	case "", MethodRandom, MethodPattern:
		return nil
	default:
		return fmt.Errorf("unknown column method %q: %w", opts.Method, ErrInvalidRange)
	}
}

// ParseMethod maps a user-facing method name to a Method.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "random", "":
		return MethodRandom, nil
	case "pattern", "pattern-detection":
		return MethodPattern, nil
	}
	return "", fmt.Errorf("unknown column method %q: %w", s, ErrInvalidRange)
}
