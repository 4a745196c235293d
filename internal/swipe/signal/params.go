package signal

// Params holds the Signal Builder thresholds. All values are tuned
// heuristics; the accuracy corpus under internal/swipe/eval guards them
// against regression.
type Params struct {
	// HeadingWindow is the sample span used to smooth segment headings
	// before turn-angle detection.
	HeadingWindow int

	// VertexTurnThresholdDeg is the minimum accumulated heading change
	// (degrees) for a local maximum to count as a vertex.
	VertexTurnThresholdDeg float64

	// VertexMinSeparation is the minimum sample distance between two
	// vertices; the sharper one wins inside the window.
	VertexMinSeparation int

	// CornerTurnThresholdDeg and SharpTurnThresholdDeg bound the
	// curvature bands: below corner = shallow, above sharp = sharp.
	CornerTurnThresholdDeg float64
	SharpTurnThresholdDeg  float64

	// CornerCompensationFraction scales the outward apex offset applied
	// to corner and sharp vertices, as a fraction of the nearest key's
	// sigma. Fingers cut corners; the intended key sits outside the
	// rounded apex.
	CornerCompensationFraction float64

	// DwellVelocityQuantile selects the velocity threshold below which
	// samples count as dwelling, as a quantile of the smoothed series.
	DwellVelocityQuantile float64

	// DwellMeanVelocityCap caps the dwell threshold at this fraction of
	// the mean velocity, so uniform-speed gestures produce no dwells.
	DwellMeanVelocityCap float64

	// MinDwellDurationNanos is the minimum sustained low-velocity span.
	MinDwellDurationNanos int64

	// AnchorAmbiguityGapFraction: an anchor is ambiguous when the two
	// nearest keys differ by less than this fraction of the key pitch.
	AnchorAmbiguityGapFraction float64

	// AnchorLockRadiusFraction: an unambiguous anchor locks when the
	// nearest key is within this fraction of its sigma.
	AnchorLockRadiusFraction float64

	// BackprojectionLead is the number of leading (trailing) samples that
	// may be jittered; the stable heading is measured just past them.
	BackprojectionLead int

	// BackprojectionSpan is the sample span defining the stable heading.
	BackprojectionSpan int

	// BackprojectionJitterFraction: the raw endpoint is replaced by an
	// extrapolated point when it sits further than this fraction of the
	// nearest key's sigma off the stable heading line.
	BackprojectionJitterFraction float64

	// TraversalSigmaFactor: a key is traversed when the path's closest
	// approach is within factor x the key's adaptive sigma.
	TraversalSigmaFactor float64

	// PassthroughVelocityFactor: a traversed key is passthrough when the
	// velocity at closest approach exceeds factor x the gesture mean and
	// no dwell or vertex covers that index.
	PassthroughVelocityFactor float64

	// PassthroughVertexSlack is the index distance within which a vertex
	// rescues a key from passthrough classification.
	PassthroughVertexSlack int

	// BoundsPadFraction pads the path envelope by this fraction of the
	// pitch when computing CharsInBounds.
	BoundsPadFraction float64

	// SigmaSpacingBoost widens per-signal sigma with sparse sampling:
	// scale = 1 + boost x (mean sample spacing / pitch), clamped.
	SigmaSpacingBoost float64
	SigmaScaleMin     float64
	SigmaScaleMax     float64

	// PitchPerLetter converts path length to a letter-count estimate:
	// successive letters sit roughly this many pitches apart.
	PitchPerLetter float64

	// BaseSpatialWeight and BaseFrequencyWeight are the gesture-level
	// starting blend; scoring adapts them per candidate.
	BaseSpatialWeight   float64
	BaseFrequencyWeight float64
}

// DefaultParams returns thresholds tuned on the QWERTY accuracy corpus.
func DefaultParams() Params {
	return Params{
		HeadingWindow:          3,
		VertexTurnThresholdDeg: 35.0,
		VertexMinSeparation:    4,
		CornerTurnThresholdDeg: 70.0,
		SharpTurnThresholdDeg:  120.0,

		CornerCompensationFraction: 0.35,

		DwellVelocityQuantile: 0.25,
		DwellMeanVelocityCap:  0.55,
		MinDwellDurationNanos: 40_000_000, // 40ms

		AnchorAmbiguityGapFraction: 0.25,
		AnchorLockRadiusFraction:   0.85,

		BackprojectionLead:           2,
		BackprojectionSpan:           3,
		BackprojectionJitterFraction: 0.60,

		TraversalSigmaFactor:      1.0,
		PassthroughVelocityFactor: 1.15,
		PassthroughVertexSlack:    2,

		BoundsPadFraction: 0.55,

		SigmaSpacingBoost: 0.50,
		SigmaScaleMin:     0.85,
		SigmaScaleMax:     1.30,

		PitchPerLetter: 1.8,

		BaseSpatialWeight:   0.72,
		BaseFrequencyWeight: 0.28,
	}
}
