package tts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ivlev/poem2video/internal/audio"
)

// Piper runs a fresh piper process per line, reading raw 16-bit PCM from
// stdout and wrapping it into a WAV container.
type Piper struct {
	Binary     string
	ModelPath  string
	SampleRate int
}

// Модели piper по языкам; переопределяются опцией Model.
var piperModelByLang = map[string]string{
	"es": "es_ES-sharvard-medium.onnx",
	"en": "en_US-lessac-medium.onnx",
	"fr": "fr_FR-siwis-medium.onnx",
	"it": "it_IT-riccardo-x_low.onnx",
}

const piperDefaultModel = "en_US-lessac-medium.onnx"

// NewPiper resolves the piper binary and a model for the language.
func NewPiper(lang, model string) (*Piper, error) {
	bin, err := lookBinary("piper", "piper-tts")
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = piperModelByLang[strings.ToLower(lang)]
		if model == "" {
			model = piperDefaultModel
		}
	}
	if dir := os.Getenv("PIPER_MODEL_DIR"); dir != "" && !filepath.IsAbs(model) {
		model = filepath.Join(dir, model)
	}
	return &Piper{Binary: bin, ModelPath: model, SampleRate: modelSampleRate(model)}, nil
}

// modelSampleRate resolves the PCM rate of a piper voice. Неверная частота в
// WAV-заголовке ломает измерение длительностей и синхронизацию субтитров.
// Конфиг <model>.json рядом с моделью авторитетен; без него частота выводится
// из суффикса качества: x_low/low — 16 кГц, medium/high — 22.05 кГц.
func modelSampleRate(modelPath string) int {
	if data, err := os.ReadFile(modelPath + ".json"); err == nil {
		var mc struct {
			Audio struct {
				SampleRate int `json:"sample_rate"`
			} `json:"audio"`
		}
		if json.Unmarshal(data, &mc) == nil && mc.Audio.SampleRate > 0 {
			return mc.Audio.SampleRate
		}
	}

	name := strings.ToLower(filepath.Base(modelPath))
	if strings.Contains(name, "x_low") || strings.Contains(name, "-low") {
		return 16000
	}
	return 22050
}

func (p *Piper) SynthesizeToFile(text, outPath string) error {
	cmd := exec.Command(p.Binary, "--model", p.ModelPath, "--output-raw")
	cmd.Stdin = bytes.NewBufferString(text + "\n")

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("piper: %v: %s", err, stderr.String())
	}
	if len(out) == 0 {
		return fmt.Errorf("piper: пустой вывод для текста %.40q", text)
	}

	clip := &audio.Clip{
		Format: audio.Format{SampleRate: p.SampleRate, Channels: 1, BitsPerSample: 16},
		Data:   out,
	}
	if err := audio.WriteFile(outPath, clip); err != nil {
		os.Remove(outPath)
		return err
	}
	return nil
}

// SynthesizeBatchToFiles keeps a single conceptual voice session: lines are
// fed to one engine instance sequentially, all-or-nothing.
func (p *Piper) SynthesizeBatchToFiles(texts, outPaths []string) error {
	if len(texts) != len(outPaths) {
		return fmt.Errorf("piper batch: %d текстов и %d путей", len(texts), len(outPaths))
	}
	for i, text := range texts {
		if err := p.SynthesizeToFile(text, outPaths[i]); err != nil {
			// Всё или ничего: подчищаем уже записанные файлы.
			for _, done := range outPaths[:i] {
				os.Remove(done)
			}
			return fmt.Errorf("piper batch, строка %d: %w", i+1, err)
		}
	}
	return nil
}

// Espeak wraps espeak-ng writing WAV files directly.
type Espeak struct {
	Binary string
	Voice  string
}

// NewEspeak resolves espeak-ng; the voice defaults to the language code.
func NewEspeak(lang, voice string) (*Espeak, error) {
	bin, err := lookBinary("espeak-ng", "espeak")
	if err != nil {
		return nil, err
	}
	if voice == "" {
		voice = strings.ToLower(lang)
		if voice == "" {
			voice = "en"
		}
	}
	return &Espeak{Binary: bin, Voice: voice}, nil
}

func (e *Espeak) SynthesizeToFile(text, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return err
	}
	cmd := exec.Command(e.Binary, "-v", e.Voice, "-w", outPath, text)
	if out, err := cmd.CombinedOutput(); err != nil {
		os.Remove(outPath)
		return fmt.Errorf("espeak: %v: %s", err, string(out))
	}
	return nil
}

// Say wraps the macOS `say` command; the AIFF result is converted to WAV via
// ffmpeg so downstream measurement and concatenation stay uniform.
type Say struct {
	Binary string
	FFmpeg string
	Voice  string
}

// NewSay resolves both `say` and ffmpeg.
func NewSay(voice string) (*Say, error) {
	bin, err := lookBinary("say")
	if err != nil {
		return nil, err
	}
	ff, err := lookBinary("ffmpeg")
	if err != nil {
		return nil, err
	}
	return &Say{Binary: bin, FFmpeg: ff, Voice: voice}, nil
}

func (s *Say) SynthesizeToFile(text, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return err
	}
	aiff := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".aiff"
	defer os.Remove(aiff)

	args := []string{"-o", aiff}
	if s.Voice != "" {
		args = append(args, "-v", s.Voice)
	}
	args = append(args, text)
	if out, err := exec.Command(s.Binary, args...).CombinedOutput(); err != nil {
		return fmt.Errorf("say: %v: %s", err, string(out))
	}

	conv := exec.Command(s.FFmpeg, "-y", "-i", aiff,
		"-ar", "22050", "-ac", "1", "-sample_fmt", "s16", outPath)
	if out, err := conv.CombinedOutput(); err != nil {
		os.Remove(outPath)
		return fmt.Errorf("ffmpeg aiff->wav: %v: %s", err, string(out))
	}
	return nil
}
