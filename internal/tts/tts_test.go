package tts

import (
	"os"
	"path/filepath"
	"testing"
)

// fakeEngine records invocations; used through the cache.
type fakeEngine struct {
	calls int
}

func (f *fakeEngine) SynthesizeToFile(text, outPath string) error {
	f.calls++
	return nil
}

func TestCacheReusesEngines(t *testing.T) {
	c := NewCache()

	// Кладём движок напрямую, чтобы не зависеть от внешних бинарников.
	key := Key{Backend: "fake", Lang: "es"}
	engine := &fakeEngine{}
	c.engines[key] = engine

	got, err := c.Get(Options{Backend: "fake", Lang: "es"})
	if err != nil {
		t.Fatal(err)
	}
	if got != engine {
		t.Error("cache should return the stored instance")
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 cached engine, got %d", c.Len())
	}
}

func TestCacheKeySeparatesLanguages(t *testing.T) {
	c := NewCache()
	c.engines[Key{Backend: "fake", Lang: "es"}] = &fakeEngine{}
	c.engines[Key{Backend: "fake", Lang: "en"}] = &fakeEngine{}

	if c.Len() != 2 {
		t.Errorf("expected 2 cached engines, got %d", c.Len())
	}
}

func TestNewUnknownBackendFailsClosed(t *testing.T) {
	// Неизвестный бэкенд падает в цепочку фолбэков; если и она недоступна,
	// должен вернуться осмысленный error, а не паника.
	s, err := New(Options{Backend: "no-such-backend"})
	if err == nil {
		if s == nil {
			t.Error("nil synthesizer without error")
		}
		// Фолбэк-движок установлен в системе — это тоже корректный исход.
	}
}

func TestPiperModelByLang(t *testing.T) {
	for _, lang := range []string{"es", "en", "fr", "it"} {
		if piperModelByLang[lang] == "" {
			t.Errorf("no piper model mapped for %q", lang)
		}
	}
}

func TestModelSampleRateFromQualitySuffix(t *testing.T) {
	tests := []struct {
		model string
		want  int
	}{
		{"it_IT-riccardo-x_low.onnx", 16000},
		{"de_DE-thorsten-low.onnx", 16000},
		{"es_ES-sharvard-medium.onnx", 22050},
		{"en_US-lessac-high.onnx", 22050},
	}
	for _, tt := range tests {
		if got := modelSampleRate(tt.model); got != tt.want {
			t.Errorf("modelSampleRate(%q) = %d, want %d", tt.model, got, tt.want)
		}
	}
}

func TestModelSampleRateFromJSONConfig(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "voz-medium.onnx")

	// Конфиг рядом с моделью важнее суффикса имени.
	cfg := []byte(`{"audio": {"sample_rate": 16000}, "num_speakers": 1}`)
	if err := os.WriteFile(model+".json", cfg, 0644); err != nil {
		t.Fatal(err)
	}

	if got := modelSampleRate(model); got != 16000 {
		t.Errorf("modelSampleRate with json config = %d, want 16000", got)
	}
}

func TestModelSampleRateIgnoresBrokenJSON(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "voz-x_low.onnx")
	if err := os.WriteFile(model+".json", []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if got := modelSampleRate(model); got != 16000 {
		t.Errorf("broken json must fall back to the name heuristic, got %d", got)
	}
}
