package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// TuningConfig represents the root configuration for analysis tuning
// parameters. The schema matches the /api/transit/params endpoint so the
// same JSON can be used for both startup configuration and runtime updates.
// All fields are pointers: anything omitted from the JSON keeps its default,
// so partial configs are safe.
type TuningConfig struct {
	// Trajectory build params
	Workers *int `json:"workers,omitempty"`

	// Histogram params
	HistogramBins *int `json:"histogram_bins,omitempty"`

	// Overlay rendering params
	OverlayDelayMs *int `json:"overlay_delay_ms,omitempty"`

	// Display unit params
	PixelPitchMicrons *float64 `json:"pixel_pitch_microns,omitempty"`
	VelocityUnits     *string  `json:"velocity_units,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file is
// validated to have a .json extension and to be under the max file size.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.Workers != nil && *c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", *c.Workers)
	}
	if c.HistogramBins != nil && *c.HistogramBins < 1 {
		return fmt.Errorf("histogram_bins must be at least 1, got %d", *c.HistogramBins)
	}
	if c.OverlayDelayMs != nil && *c.OverlayDelayMs < 0 {
		return fmt.Errorf("overlay_delay_ms must be non-negative, got %d", *c.OverlayDelayMs)
	}
	if c.PixelPitchMicrons != nil && *c.PixelPitchMicrons <= 0 {
		return fmt.Errorf("pixel_pitch_microns must be positive, got %f", *c.PixelPitchMicrons)
	}
	return nil
}

// GetWorkers returns the workers value or the default.
func (c *TuningConfig) GetWorkers() int {
	if c.Workers == nil {
		return 1 // default: sequential extraction
	}
	return *c.Workers
}

// GetHistogramBins returns the histogram_bins value or the default.
func (c *TuningConfig) GetHistogramBins() int {
	if c.HistogramBins == nil {
		return 16
	}
	return *c.HistogramBins
}

// GetOverlayDelayMs returns the overlay_delay_ms value or the default.
func (c *TuningConfig) GetOverlayDelayMs() int {
	if c.OverlayDelayMs == nil {
		return 50 // matches a 20 fps playback loop
	}
	return *c.OverlayDelayMs
}

// GetPixelPitchMicrons returns the pixel_pitch_microns value or the default.
func (c *TuningConfig) GetPixelPitchMicrons() float64 {
	if c.PixelPitchMicrons == nil {
		return 0 // default: uncalibrated, display stays in pixel units
	}
	return *c.PixelPitchMicrons
}

// GetVelocityUnits returns the velocity_units value or the default.
func (c *TuningConfig) GetVelocityUnits() string {
	if c.VelocityUnits == nil {
		return "pxps"
	}
	return *c.VelocityUnits
}
