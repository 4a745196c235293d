package score

// FactorTrace records every named multiplier applied to a candidate, in
// cascade order, for diagnostics and tuning. The product of all fields
// times the weighted blend gives the pre-clamp combined score.
type FactorTrace struct {
	Monotonicity   float64
	WrongLetter    float64
	PathExhaustion float64
	LengthBonus    float64
	RepeatRatio    float64
	Coverage       float64
	AnchorStart    float64
	AnchorEnd      float64
	StartDirection float64
	Traversal      float64
	VertexLength   float64
	PathRatio      float64
	Passthrough    float64
}

// Product multiplies every factor in cascade order.
func (f FactorTrace) Product() float64 {
	return f.Monotonicity * f.WrongLetter * f.PathExhaustion * f.LengthBonus *
		f.RepeatRatio * f.Coverage * f.AnchorStart * f.AnchorEnd *
		f.StartDirection * f.Traversal * f.VertexLength * f.PathRatio *
		f.Passthrough
}

// CandidateResult is the scoring output for one (candidate, signal) pair.
// Created fresh per call, never mutated after return. CombinedScore is
// clamped to [0,1] before Residual is derived, so Residual is always in
// [0,1] as well.
type CandidateResult struct {
	Word string

	// Residual is 1 - CombinedScore; lower is a better match.
	Residual float64

	// SpatialScore is the mean per-letter kernel score before the
	// correction cascade.
	SpatialScore float64

	// FrequencyScore is the entry's normalized frequency, carried through
	// for ranking tie-breaks.
	FrequencyScore float64

	CombinedScore float64

	// PathCoverage is the raw matched-index span minus order-violation
	// deductions, in [0,1].
	PathCoverage float64

	// LetterPathIndices maps each word letter to its matched path index.
	// Always len(word) entries.
	LetterPathIndices []int

	Factors FactorTrace
}
