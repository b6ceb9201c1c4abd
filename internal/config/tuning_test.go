package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadTuningConfig(t *testing.T) {
	path := writeConfig(t, "tuning.json", `{
		"workers": 4,
		"histogram_bins": 32,
		"overlay_delay_ms": 100,
		"pixel_pitch_microns": 6.5,
		"velocity_units": "umps"
	}`)
	cfg, err := LoadTuningConfig(path)
	if err != nil {
		t.Fatalf("LoadTuningConfig: %v", err)
	}
	if got := cfg.GetWorkers(); got != 4 {
		t.Errorf("GetWorkers = %d, want 4", got)
	}
	if got := cfg.GetHistogramBins(); got != 32 {
		t.Errorf("GetHistogramBins = %d, want 32", got)
	}
	if got := cfg.GetOverlayDelayMs(); got != 100 {
		t.Errorf("GetOverlayDelayMs = %d, want 100", got)
	}
	if got := cfg.GetPixelPitchMicrons(); got != 6.5 {
		t.Errorf("GetPixelPitchMicrons = %v, want 6.5", got)
	}
	if got := cfg.GetVelocityUnits(); got != "umps" {
		t.Errorf("GetVelocityUnits = %q, want umps", got)
	}
}

func TestLoadTuningConfigPartial(t *testing.T) {
	// Omitted fields keep their defaults.
	path := writeConfig(t, "tuning.json", `{"workers": 2}`)
	cfg, err := LoadTuningConfig(path)
	if err != nil {
		t.Fatalf("LoadTuningConfig: %v", err)
	}
	if got := cfg.GetWorkers(); got != 2 {
		t.Errorf("GetWorkers = %d, want 2", got)
	}
	if got := cfg.GetHistogramBins(); got != 16 {
		t.Errorf("GetHistogramBins = %d, want default 16", got)
	}
	if got := cfg.GetVelocityUnits(); got != "pxps" {
		t.Errorf("GetVelocityUnits = %q, want default pxps", got)
	}
}

func TestLoadTuningConfigRequiresJSONExtension(t *testing.T) {
	path := writeConfig(t, "tuning.yaml", `{}`)
	if _, err := LoadTuningConfig(path); err == nil {
		t.Fatal("expected error for non-.json extension")
	}
}

func TestLoadTuningConfigInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"zero workers", `{"workers": 0}`, "workers"},
		{"zero bins", `{"histogram_bins": 0}`, "histogram_bins"},
		{"negative delay", `{"overlay_delay_ms": -1}`, "overlay_delay_ms"},
		{"zero pitch", `{"pixel_pitch_microns": 0}`, "pixel_pitch_microns"},
		{"bad json", `{`, "parse"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, "tuning.json", tc.content)
			_, err := LoadTuningConfig(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("error = %v, want mention of %q", err, tc.wantMsg)
			}
		})
	}
}

func TestEmptyTuningConfigDefaults(t *testing.T) {
	cfg := EmptyTuningConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate on empty config: %v", err)
	}
	if cfg.GetWorkers() != 1 || cfg.GetHistogramBins() != 16 ||
		cfg.GetOverlayDelayMs() != 50 || cfg.GetPixelPitchMicrons() != 0 ||
		cfg.GetVelocityUnits() != "pxps" {
		t.Error("empty config does not return documented defaults")
	}
}
