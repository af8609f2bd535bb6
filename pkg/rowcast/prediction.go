package rowcast

const (
	directConfidence = 0.9
	// smoothingWeight keeps unseen columns reachable in weighted sampling.
	smoothingWeight = 0.5
	randomScore     = 0.5
)

// TierFor buckets a confidence score.
func TierFor(score float64) Tier {
	switch {
	case score >= 0.8:
		return TierHigh
	case score >= 0.5:
		return TierMedium
	default:
		return TierLow
	}
}

// chooseColumn picks a column for one prediction in pattern mode. Strong sequential or
// repeating patterns are followed directly; everything else is sampled by weight.
func chooseColumn(pattern PatternResult, maxCols int, rng Rand) int {
	if pattern.Confidence >= directConfidence &&
		(pattern.Type == PatternSequential || pattern.Type == PatternRepeating) {
		return pattern.NextCol
	}
	return weightedColumn(pattern, maxCols, rng)
}

// weightedColumn does roulette-wheel selection over columns 1..maxCols. Weights are the
// frequency counts plus smoothing; a non-frequency pattern contributes no counts, which
// makes the draw uniform.
func weightedColumn(pattern PatternResult, maxCols int, rng Rand) int {
	weights := make([]float64, maxCols)
	total := 0.0
	for c := 1; c <= maxCols; c++ {
		w := smoothingWeight
		if pattern.Type == PatternFrequency {
			w += float64(pattern.Frequencies[c])
		}
		weights[c-1] = w
		total += w
	}

	r := rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r <= 0 {
			return i + 1
		}
	}
	return maxCols
}

// randomPrediction is the random-mode column: uniform, fixed medium confidence.
func randomPrediction(row, maxCols int, rng Rand) Prediction {
	return Prediction{
		Row:   row,
		Col:   rng.Intn(maxCols) + 1,
		Tier:  TierMedium,
		Score: randomScore,
	}
}
