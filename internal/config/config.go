package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the parameter bundle for one batch invocation. Immutable per run.
type Config struct {
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`

	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	FPS    int `yaml:"fps"`

	Palette       string  `yaml:"palette"` // имя или "random"
	Direction     string  `yaml:"direction"`
	ImagePath     string  `yaml:"image_path"` // фон-картинка вместо градиента
	ZoomEnabled   bool    `yaml:"zoom"`
	ZoomFactor    float64 `yaml:"zoom_factor"`
	Particles     int     `yaml:"particles"`
	Sparkles      bool    `yaml:"sparkles"`
	FontSize      float64 `yaml:"font_size"`
	FadeDuration  float64 `yaml:"fade_duration"`
	PauseDuration float64 `yaml:"pause_duration"`

	TTSBackend string `yaml:"tts_backend"`
	TTSModel   string `yaml:"tts_model"`
	TTSVoice   string `yaml:"tts_voice"`
	ForceLang  string `yaml:"lang"`
	BatchTTS   bool   `yaml:"batch_tts"`

	SourceURL string `yaml:"source_url"` // для QR-водяного знака, пусто = без QR

	VideoEncoder string `yaml:"-"`
	Quality      int    `yaml:"quality"`
	ShowStats    bool   `yaml:"-"`
	Seed         int64  `yaml:"-"`
}

// Default returns the vertical 9:16 preset tuned for short-form platforms.
func Default() *Config {
	return &Config{
		InputDir:      "input",
		OutputDir:     "output",
		Width:         1080,
		Height:        1920,
		FPS:           30,
		Palette:       "random",
		Direction:     "diagonal",
		ZoomEnabled:   true,
		ZoomFactor:    1.15,
		Particles:     80,
		Sparkles:      true,
		FontSize:      80,
		FadeDuration:  0.5,
		PauseDuration: 0.6,
		TTSBackend:    "piper",
		Quality:       0, // 0 = авто по выбранному энкодеру
	}
}

// LoadPreset overlays a yaml preset file onto the config.
func LoadPreset(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("разбор пресета %s: %w", path, err)
	}
	return nil
}

// SavePreset writes the current settings as a yaml preset.
func SavePreset(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects configurations the render path cannot serve.
func (c *Config) Validate() error {
	if c.Width < 2 || c.Height < 2 {
		return fmt.Errorf("некорректное разрешение %dx%d", c.Width, c.Height)
	}
	if c.Width%2 != 0 || c.Height%2 != 0 {
		return fmt.Errorf("размеры должны быть чётными для yuv420p: %dx%d", c.Width, c.Height)
	}
	if c.FPS < 1 {
		return fmt.Errorf("некорректный FPS: %d", c.FPS)
	}
	if c.FadeDuration < 0 {
		return fmt.Errorf("отрицательная длительность fade: %f", c.FadeDuration)
	}
	if c.ZoomFactor < 1 {
		c.ZoomFactor = 1
	}
	return nil
}
