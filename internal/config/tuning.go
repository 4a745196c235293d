package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig is the root configuration for recognition tuning. Every
// field is a pointer so a partial JSON file overlays only the thresholds
// it names; the Get* accessors fall back to the built-in defaults. The
// numeric values are tuned heuristics guarded by the accuracy corpus, not
// derived constants.
type TuningConfig struct {
	// Signal builder params
	VertexTurnThresholdDeg   *float64 `json:"vertex_turn_threshold_deg,omitempty"`
	DwellVelocityQuantile    *float64 `json:"dwell_velocity_quantile,omitempty"`
	MinDwellDurationNanos    *int64   `json:"min_dwell_duration_nanos,omitempty"`
	AnchorAmbiguityGapFrac   *float64 `json:"anchor_ambiguity_gap_fraction,omitempty"`
	AnchorLockRadiusFraction *float64 `json:"anchor_lock_radius_fraction,omitempty"`
	BaseSpatialWeight        *float64 `json:"base_spatial_weight,omitempty"`
	BaseFrequencyWeight      *float64 `json:"base_frequency_weight,omitempty"`

	// Scoring params
	TemporalDeviationWeight *float64 `json:"temporal_deviation_weight,omitempty"`
	VeryLowLetterThreshold  *float64 `json:"very_low_letter_threshold,omitempty"`
	LowLetterThreshold      *float64 `json:"low_letter_threshold,omitempty"`
	PathExcessSoftRatio     *float64 `json:"path_excess_soft_ratio,omitempty"`
	PathExcessHardRatio     *float64 `json:"path_excess_hard_ratio,omitempty"`
	PathExcessSevereRatio   *float64 `json:"path_excess_severe_ratio,omitempty"`
	PassthroughPenaltyFirst *float64 `json:"passthrough_penalty_first,omitempty"`
	ClusterRadiusFraction   *float64 `json:"cluster_radius_fraction,omitempty"`
	FrequencyWeightGain     *float64 `json:"frequency_weight_gain,omitempty"`

	// Ranking params
	TopN    *int `json:"top_n,omitempty"`
	Workers *int `json:"workers,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrInt64(v int64) *int64       { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from a file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under
// the max file size. Fields omitted from the JSON file retain their
// default values, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Tuning overlays are small; reject anything over 1MB.
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON into empty config. The Get* methods provide fallback
	// defaults for any fields not specified in the JSON.
	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from
// DefaultConfigPath. It searches from the current directory up through
// common parent directories. Panics if the file cannot be loaded,
// intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from internal/swipe/*
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.VertexTurnThresholdDeg != nil {
		if *c.VertexTurnThresholdDeg <= 0 || *c.VertexTurnThresholdDeg >= 180 {
			return fmt.Errorf("vertex_turn_threshold_deg must be in (0, 180), got %f", *c.VertexTurnThresholdDeg)
		}
	}

	if c.DwellVelocityQuantile != nil {
		if *c.DwellVelocityQuantile <= 0 || *c.DwellVelocityQuantile >= 1 {
			return fmt.Errorf("dwell_velocity_quantile must be in (0, 1), got %f", *c.DwellVelocityQuantile)
		}
	}

	if c.MinDwellDurationNanos != nil && *c.MinDwellDurationNanos < 0 {
		return fmt.Errorf("min_dwell_duration_nanos must be non-negative, got %d", *c.MinDwellDurationNanos)
	}

	for name, v := range map[string]*float64{
		"base_spatial_weight":       c.BaseSpatialWeight,
		"base_frequency_weight":     c.BaseFrequencyWeight,
		"very_low_letter_threshold": c.VeryLowLetterThreshold,
		"low_letter_threshold":      c.LowLetterThreshold,
		"passthrough_penalty_first": c.PassthroughPenaltyFirst,
	} {
		if v != nil && (*v < 0 || *v > 1) {
			return fmt.Errorf("%s must be between 0 and 1, got %f", name, *v)
		}
	}

	if c.VeryLowLetterThreshold != nil && c.LowLetterThreshold != nil {
		if *c.VeryLowLetterThreshold >= *c.LowLetterThreshold {
			return fmt.Errorf("very_low_letter_threshold (%f) must be below low_letter_threshold (%f)",
				*c.VeryLowLetterThreshold, *c.LowLetterThreshold)
		}
	}

	soft, hard, severe := c.GetPathExcessSoftRatio(), c.GetPathExcessHardRatio(), c.GetPathExcessSevereRatio()
	if soft <= 1 {
		return fmt.Errorf("path_excess_soft_ratio must exceed 1, got %f", soft)
	}
	if !(soft < hard && hard < severe) {
		return fmt.Errorf("path excess ratios must escalate: soft %f < hard %f < severe %f", soft, hard, severe)
	}

	if c.TopN != nil && *c.TopN < 1 {
		return fmt.Errorf("top_n must be at least 1, got %d", *c.TopN)
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}

	return nil
}

// GetVertexTurnThresholdDeg returns the vertex_turn_threshold_deg value or the default.
func (c *TuningConfig) GetVertexTurnThresholdDeg() float64 {
	if c.VertexTurnThresholdDeg == nil {
		return 35.0
	}
	return *c.VertexTurnThresholdDeg
}

// GetDwellVelocityQuantile returns the dwell_velocity_quantile value or the default.
func (c *TuningConfig) GetDwellVelocityQuantile() float64 {
	if c.DwellVelocityQuantile == nil {
		return 0.25
	}
	return *c.DwellVelocityQuantile
}

// GetMinDwellDurationNanos returns the min_dwell_duration_nanos value or the default.
func (c *TuningConfig) GetMinDwellDurationNanos() int64 {
	if c.MinDwellDurationNanos == nil {
		return 40000000 // 40ms
	}
	return *c.MinDwellDurationNanos
}

// GetAnchorAmbiguityGapFraction returns the anchor_ambiguity_gap_fraction value or the default.
func (c *TuningConfig) GetAnchorAmbiguityGapFraction() float64 {
	if c.AnchorAmbiguityGapFrac == nil {
		return 0.25
	}
	return *c.AnchorAmbiguityGapFrac
}

// GetAnchorLockRadiusFraction returns the anchor_lock_radius_fraction value or the default.
func (c *TuningConfig) GetAnchorLockRadiusFraction() float64 {
	if c.AnchorLockRadiusFraction == nil {
		return 0.85
	}
	return *c.AnchorLockRadiusFraction
}

// GetBaseSpatialWeight returns the base_spatial_weight value or the default.
func (c *TuningConfig) GetBaseSpatialWeight() float64 {
	if c.BaseSpatialWeight == nil {
		return 0.72
	}
	return *c.BaseSpatialWeight
}

// GetBaseFrequencyWeight returns the base_frequency_weight value or the default.
func (c *TuningConfig) GetBaseFrequencyWeight() float64 {
	if c.BaseFrequencyWeight == nil {
		return 0.28
	}
	return *c.BaseFrequencyWeight
}

// GetTemporalDeviationWeight returns the temporal_deviation_weight value or the default.
func (c *TuningConfig) GetTemporalDeviationWeight() float64 {
	if c.TemporalDeviationWeight == nil {
		return 0.8
	}
	return *c.TemporalDeviationWeight
}

// GetVeryLowLetterThreshold returns the very_low_letter_threshold value or the default.
func (c *TuningConfig) GetVeryLowLetterThreshold() float64 {
	if c.VeryLowLetterThreshold == nil {
		return 0.15
	}
	return *c.VeryLowLetterThreshold
}

// GetLowLetterThreshold returns the low_letter_threshold value or the default.
func (c *TuningConfig) GetLowLetterThreshold() float64 {
	if c.LowLetterThreshold == nil {
		return 0.35
	}
	return *c.LowLetterThreshold
}

// GetPathExcessSoftRatio returns the path_excess_soft_ratio value or the default.
func (c *TuningConfig) GetPathExcessSoftRatio() float64 {
	if c.PathExcessSoftRatio == nil {
		return 2.0
	}
	return *c.PathExcessSoftRatio
}

// GetPathExcessHardRatio returns the path_excess_hard_ratio value or the default.
func (c *TuningConfig) GetPathExcessHardRatio() float64 {
	if c.PathExcessHardRatio == nil {
		return 2.5
	}
	return *c.PathExcessHardRatio
}

// GetPathExcessSevereRatio returns the path_excess_severe_ratio value or the default.
func (c *TuningConfig) GetPathExcessSevereRatio() float64 {
	if c.PathExcessSevereRatio == nil {
		return 3.0
	}
	return *c.PathExcessSevereRatio
}

// GetPassthroughPenaltyFirst returns the passthrough_penalty_first value or the default.
func (c *TuningConfig) GetPassthroughPenaltyFirst() float64 {
	if c.PassthroughPenaltyFirst == nil {
		return 0.90
	}
	return *c.PassthroughPenaltyFirst
}

// GetClusterRadiusFraction returns the cluster_radius_fraction value or the default.
func (c *TuningConfig) GetClusterRadiusFraction() float64 {
	if c.ClusterRadiusFraction == nil {
		return 1.25
	}
	return *c.ClusterRadiusFraction
}

// GetFrequencyWeightGain returns the frequency_weight_gain value or the default.
func (c *TuningConfig) GetFrequencyWeightGain() float64 {
	if c.FrequencyWeightGain == nil {
		return 0.18
	}
	return *c.FrequencyWeightGain
}

// GetTopN returns the top_n value or the default.
func (c *TuningConfig) GetTopN() int {
	if c.TopN == nil {
		return 5
	}
	return *c.TopN
}

// GetWorkers returns the workers value or the default. Zero means one
// scorer per available CPU.
func (c *TuningConfig) GetWorkers() int {
	if c.Workers == nil {
		return 1
	}
	return *c.Workers
}
