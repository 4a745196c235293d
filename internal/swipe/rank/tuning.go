package rank

import (
	"github.com/featherkey/swipekit/internal/config"
)

// OptionsFromTuning builds recognizer options from a tuning overlay.
// Thresholds the overlay does not name keep their tuned defaults, so an
// empty config reproduces DefaultOptions exactly.
func OptionsFromTuning(t *config.TuningConfig) Options {
	opts := DefaultOptions()
	if t == nil {
		return opts
	}

	opts.Signal.VertexTurnThresholdDeg = t.GetVertexTurnThresholdDeg()
	opts.Signal.DwellVelocityQuantile = t.GetDwellVelocityQuantile()
	opts.Signal.MinDwellDurationNanos = t.GetMinDwellDurationNanos()
	opts.Signal.AnchorAmbiguityGapFraction = t.GetAnchorAmbiguityGapFraction()
	opts.Signal.AnchorLockRadiusFraction = t.GetAnchorLockRadiusFraction()
	opts.Signal.BaseSpatialWeight = t.GetBaseSpatialWeight()
	opts.Signal.BaseFrequencyWeight = t.GetBaseFrequencyWeight()

	opts.Score.Letter.TemporalDeviationWeight = t.GetTemporalDeviationWeight()
	opts.Score.Cascade.VeryLowLetterThreshold = t.GetVeryLowLetterThreshold()
	opts.Score.Cascade.LowLetterThreshold = t.GetLowLetterThreshold()
	opts.Score.Cascade.PathExcessSoftRatio = t.GetPathExcessSoftRatio()
	opts.Score.Cascade.PathExcessHardRatio = t.GetPathExcessHardRatio()
	opts.Score.Cascade.PathExcessSevereRatio = t.GetPathExcessSevereRatio()
	opts.Score.Cascade.PassthroughPenalty1 = t.GetPassthroughPenaltyFirst()
	opts.Score.Weights.ClusterRadiusFraction = t.GetClusterRadiusFraction()
	opts.Score.Weights.FrequencyWeightGain = t.GetFrequencyWeightGain()

	opts.TopN = t.GetTopN()
	opts.Workers = t.GetWorkers()

	return opts
}
