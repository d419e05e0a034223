// Package tts предоставляет границу синтеза речи: интерфейс Synthesizer и
// набор движков поверх внешних программ (piper, espeak-ng, say).
package tts

import (
	"fmt"
	"os/exec"
	"strings"
)

// Synthesizer converts one line of text into a playable audio file.
// Implementations must not leave a partial file behind on failure.
type Synthesizer interface {
	SynthesizeToFile(text, outPath string) error
}

// BatchSynthesizer is the optional voice-consistency batch mode: all lines in
// one call, results re-associated by index. Any failure is all-or-nothing.
type BatchSynthesizer interface {
	Synthesizer
	SynthesizeBatchToFiles(texts, outPaths []string) error
}

// Options selects a concrete engine.
type Options struct {
	Backend string // "piper", "espeak", "say"; пусто = авто
	Lang    string // 2-буквенный код
	Model   string // путь/имя модели для piper
	Voice   string // конкретный голос движка
}

// DefaultBackend пробуется последним в цепочке кандидатов.
const DefaultBackend = "espeak"

// New builds a synthesizer for the requested backend with an ordered fallback
// chain: the requested backend first, then the default. Exhaustion is a
// defined error, not a silent degradation.
func New(opts Options) (Synthesizer, error) {
	backends := []string{strings.ToLower(opts.Backend)}
	if backends[0] == "" {
		backends[0] = "piper"
	}
	if backends[0] != DefaultBackend {
		backends = append(backends, DefaultBackend)
	}

	var errs []string
	for _, b := range backends {
		s, err := build(b, opts)
		if err == nil {
			return s, nil
		}
		errs = append(errs, fmt.Sprintf("%s: %v", b, err))
	}
	return nil, fmt.Errorf("ни один TTS-движок не доступен: %s", strings.Join(errs, "; "))
}

func build(backend string, opts Options) (Synthesizer, error) {
	switch backend {
	case "piper":
		return NewPiper(opts.Lang, opts.Model)
	case "espeak":
		return NewEspeak(opts.Lang, opts.Voice)
	case "say":
		return NewSay(opts.Voice)
	default:
		return nil, fmt.Errorf("неизвестный TTS-бэкенд: %s", backend)
	}
}

func lookBinary(names ...string) (string, error) {
	for _, n := range names {
		if path, err := exec.LookPath(n); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("не найден исполняемый файл (%s)", strings.Join(names, ", "))
}
