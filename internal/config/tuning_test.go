package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEmptyTuningConfigDefaults(t *testing.T) {
	cfg := EmptyTuningConfig()

	if cfg.VertexTurnThresholdDeg != nil {
		t.Errorf("Expected nil VertexTurnThresholdDeg, got %v", cfg.VertexTurnThresholdDeg)
	}

	// Getter fallbacks
	if got := cfg.GetVertexTurnThresholdDeg(); got != 35.0 {
		t.Errorf("GetVertexTurnThresholdDeg() = %f, want 35.0", got)
	}
	if got := cfg.GetDwellVelocityQuantile(); got != 0.25 {
		t.Errorf("GetDwellVelocityQuantile() = %f, want 0.25", got)
	}
	if got := cfg.GetMinDwellDurationNanos(); got != 40000000 {
		t.Errorf("GetMinDwellDurationNanos() = %d, want 40000000", got)
	}
	if got := cfg.GetBaseSpatialWeight(); got != 0.72 {
		t.Errorf("GetBaseSpatialWeight() = %f, want 0.72", got)
	}
	if got := cfg.GetBaseFrequencyWeight(); got != 0.28 {
		t.Errorf("GetBaseFrequencyWeight() = %f, want 0.28", got)
	}
	if got := cfg.GetPathExcessSevereRatio(); got != 3.0 {
		t.Errorf("GetPathExcessSevereRatio() = %f, want 3.0", got)
	}
	if got := cfg.GetFrequencyWeightGain(); got != 0.18 {
		t.Errorf("GetFrequencyWeightGain() = %f, want 0.18", got)
	}
	if got := cfg.GetTopN(); got != 5 {
		t.Errorf("GetTopN() = %d, want 5", got)
	}
	if got := cfg.GetWorkers(); got != 1 {
		t.Errorf("GetWorkers() = %d, want 1", got)
	}
}

func TestLoadTuningConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	testJSON := `{
  "vertex_turn_threshold_deg": 40.0,
  "dwell_velocity_quantile": 0.3,
  "top_n": 3,
  "workers": 4
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.VertexTurnThresholdDeg == nil || *cfg.VertexTurnThresholdDeg != 40.0 {
		t.Errorf("Expected VertexTurnThresholdDeg 40.0, got %v", cfg.VertexTurnThresholdDeg)
	}
	if cfg.GetDwellVelocityQuantile() != 0.3 {
		t.Errorf("GetDwellVelocityQuantile() = %f, want 0.3", cfg.GetDwellVelocityQuantile())
	}
	if cfg.GetTopN() != 3 {
		t.Errorf("GetTopN() = %d, want 3", cfg.GetTopN())
	}
	if cfg.GetWorkers() != 4 {
		t.Errorf("GetWorkers() = %d, want 4", cfg.GetWorkers())
	}

	// Fields absent from the file keep their defaults.
	if cfg.GetBaseSpatialWeight() != 0.72 {
		t.Errorf("GetBaseSpatialWeight() = %f, want default 0.72", cfg.GetBaseSpatialWeight())
	}
}

func TestLoadTuningConfigMissing(t *testing.T) {
	_, err := LoadTuningConfig("/nonexistent/path/to/config.json")
	if err == nil {
		t.Error("Expected error when loading missing file, got nil")
	}
}

func TestLoadTuningConfigBadExtension(t *testing.T) {
	_, err := LoadTuningConfig("/tmp/config.yaml")
	if err == nil {
		t.Error("Expected error for non-json extension, got nil")
	}
}

func TestLoadTuningConfigInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_config.json")

	invalidJSON := `{
  "vertex_turn_threshold_deg": "invalid"
`
	if err := os.WriteFile(configPath, []byte(invalidJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	if _, err := LoadTuningConfig(configPath); err == nil {
		t.Error("Expected error when loading invalid JSON, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *TuningConfig
		wantErr bool
	}{
		{
			name:    "empty config valid",
			cfg:     EmptyTuningConfig(),
			wantErr: false,
		},
		{
			name:    "valid overrides",
			cfg:     &TuningConfig{VertexTurnThresholdDeg: ptrFloat64(45), TopN: ptrInt(10)},
			wantErr: false,
		},
		{
			name:    "turn threshold out of range",
			cfg:     &TuningConfig{VertexTurnThresholdDeg: ptrFloat64(200)},
			wantErr: true,
		},
		{
			name:    "quantile at one",
			cfg:     &TuningConfig{DwellVelocityQuantile: ptrFloat64(1.0)},
			wantErr: true,
		},
		{
			name:    "negative dwell duration",
			cfg:     &TuningConfig{MinDwellDurationNanos: ptrInt64(-1)},
			wantErr: true,
		},
		{
			name:    "spatial weight above one",
			cfg:     &TuningConfig{BaseSpatialWeight: ptrFloat64(1.5)},
			wantErr: true,
		},
		{
			name: "letter thresholds inverted",
			cfg: &TuningConfig{
				VeryLowLetterThreshold: ptrFloat64(0.5),
				LowLetterThreshold:     ptrFloat64(0.3),
			},
			wantErr: true,
		},
		{
			name:    "path excess ratios out of order",
			cfg:     &TuningConfig{PathExcessHardRatio: ptrFloat64(3.5)},
			wantErr: true,
		},
		{
			name:    "soft ratio not above one",
			cfg:     &TuningConfig{PathExcessSoftRatio: ptrFloat64(0.9)},
			wantErr: true,
		},
		{
			name:    "zero top_n",
			cfg:     &TuningConfig{TopN: ptrInt(0)},
			wantErr: true,
		},
		{
			name:    "negative workers",
			cfg:     &TuningConfig{Workers: ptrInt(-1)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultsFileMatchesBuiltins(t *testing.T) {
	cfg, err := LoadTuningConfig("../../" + DefaultConfigPath)
	if err != nil {
		t.Fatalf("Failed to load defaults file: %v", err)
	}

	empty := EmptyTuningConfig()
	if cfg.GetVertexTurnThresholdDeg() != empty.GetVertexTurnThresholdDeg() {
		t.Errorf("defaults file vertex_turn_threshold_deg = %f, builtin %f",
			cfg.GetVertexTurnThresholdDeg(), empty.GetVertexTurnThresholdDeg())
	}
	if cfg.GetPathExcessSevereRatio() != empty.GetPathExcessSevereRatio() {
		t.Errorf("defaults file path_excess_severe_ratio = %f, builtin %f",
			cfg.GetPathExcessSevereRatio(), empty.GetPathExcessSevereRatio())
	}
	if cfg.GetTopN() != empty.GetTopN() {
		t.Errorf("defaults file top_n = %d, builtin %d", cfg.GetTopN(), empty.GetTopN())
	}
	if cfg.GetWorkers() != empty.GetWorkers() {
		t.Errorf("defaults file workers = %d, builtin %d", cfg.GetWorkers(), empty.GetWorkers())
	}
}
