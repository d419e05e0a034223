package config

import (
	"path/filepath"
	"testing"
)

func TestPresetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "preset.yaml")

	cfg := Default()
	cfg.Palette = "tiktok_neon"
	cfg.Particles = 120
	cfg.FadeDuration = 0.25
	cfg.SourceURL = "https://example.com/poems"

	if err := SavePreset(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded := Default()
	if err := LoadPreset(path, loaded); err != nil {
		t.Fatal(err)
	}

	if loaded.Palette != cfg.Palette {
		t.Errorf("palette: got %q, want %q", loaded.Palette, cfg.Palette)
	}
	if loaded.Particles != cfg.Particles {
		t.Errorf("particles: got %d, want %d", loaded.Particles, cfg.Particles)
	}
	if loaded.FadeDuration != cfg.FadeDuration {
		t.Errorf("fade: got %f, want %f", loaded.FadeDuration, cfg.FadeDuration)
	}
	if loaded.SourceURL != cfg.SourceURL {
		t.Errorf("source url: got %q, want %q", loaded.SourceURL, cfg.SourceURL)
	}
}

func TestValidateRejectsOddDimensions(t *testing.T) {
	cfg := Default()
	cfg.Width = 1081
	if err := cfg.Validate(); err == nil {
		t.Error("odd width must be rejected")
	}
}

func TestValidateClampsZoomFactor(t *testing.T) {
	cfg := Default()
	cfg.ZoomFactor = 0.5
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.ZoomFactor != 1 {
		t.Errorf("zoom factor should be clamped to 1, got %f", cfg.ZoomFactor)
	}
}

func TestValidateRejectsBadFPS(t *testing.T) {
	cfg := Default()
	cfg.FPS = 0
	if err := cfg.Validate(); err == nil {
		t.Error("fps 0 must be rejected")
	}
}
