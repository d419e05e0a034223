// Package segmenter превращает текст стихотворения в таймлайн: построчный
// синтез речи, измерение реальных длительностей и склейка полной дорожки.
package segmenter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ivlev/poem2video/internal/audio"
	"github.com/ivlev/poem2video/internal/tts"
)

// Segment is one timed speech unit. Empty Text marks a silent pause.
type Segment struct {
	Text     string
	Start    float64
	Duration float64
}

// Options controls synthesis of one poem.
type Options struct {
	PauseDuration float64 // пауза для пустой строки, сек
	SampleRate    int     // частота для файлов тишины
	Batch         bool    // пакетный режим, если движок его поддерживает
}

// DefaultPause — пауза на пустой строке. ShortPause подходит для коротких
// вертикальных роликов с плотным монтажом.
const (
	DefaultPause = 0.6
	ShortPause   = 0.15
)

// SplitLines splits the body into lines, normalizing line endings and keeping
// blank lines: they become explicit pause segments downstream.
func SplitLines(body string) []string {
	if body == "" {
		return nil
	}
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\r", "\n")
	return strings.Split(body, "\n")
}

// Synthesize drives per-line TTS, measures each fragment and concatenates the
// full narration track at trackPath. The returned timeline is contiguous:
// start[i+1] == start[i] + duration[i], start[0] == 0.
//
// A failed line aborts the poem: a partially synthesized track must never be
// produced silently.
func Synthesize(body string, synth tts.Synthesizer, fragDir, trackPath string, opts Options) ([]Segment, error) {
	if opts.PauseDuration <= 0 {
		opts.PauseDuration = DefaultPause
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = audio.DefaultSampleRate
	}

	lines := SplitLines(body)
	if len(lines) == 0 {
		return nil, fmt.Errorf("пустой текст стихотворения")
	}
	if err := os.MkdirAll(fragDir, 0755); err != nil {
		return nil, err
	}

	fragPaths := make([]string, len(lines))
	for j := range lines {
		fragPaths[j] = filepath.Join(fragDir, fmt.Sprintf("frag_%d.wav", j+1))
	}

	// Пакетный режим: все непустые строки одним вызовом ради стабильности
	// голоса, результат возвращается на свои индексы.
	batcher, canBatch := synth.(tts.BatchSynthesizer)
	if opts.Batch && canBatch {
		var texts []string
		var outs []string
		for j, line := range lines {
			if strings.TrimSpace(line) != "" {
				texts = append(texts, line)
				outs = append(outs, fragPaths[j])
			}
		}
		if len(texts) > 0 {
			if err := batcher.SynthesizeBatchToFiles(texts, outs); err != nil {
				return nil, fmt.Errorf("пакетный синтез: %w", err)
			}
		}
		for j, line := range lines {
			if strings.TrimSpace(line) == "" {
				if err := audio.WriteSilence(fragPaths[j], opts.PauseDuration, opts.SampleRate); err != nil {
					return nil, err
				}
			}
		}
	} else {
		for j, line := range lines {
			if strings.TrimSpace(line) == "" {
				if err := audio.WriteSilence(fragPaths[j], opts.PauseDuration, opts.SampleRate); err != nil {
					return nil, err
				}
				continue
			}
			if err := synth.SynthesizeToFile(line, fragPaths[j]); err != nil {
				return nil, fmt.Errorf("синтез строки %d (%.40q): %w", j+1, line, err)
			}
		}
	}

	// Реальная длительность каждого фрагмента — авторитетный источник
	// таймингов субтитров; оценки не используются.
	segments := make([]Segment, 0, len(lines))
	start := 0.0
	for j, line := range lines {
		dur, err := audio.Duration(fragPaths[j])
		if err != nil {
			return nil, fmt.Errorf("измерение фрагмента %d: %w", j+1, err)
		}
		text := line
		if strings.TrimSpace(line) == "" {
			text = ""
		}
		segments = append(segments, Segment{Text: text, Start: start, Duration: dur})
		start += dur
	}

	if err := audio.Concat(fragPaths, trackPath); err != nil {
		return nil, fmt.Errorf("склейка дорожки: %w", err)
	}

	return segments, nil
}

// TotalDuration returns the timeline length in seconds.
func TotalDuration(segments []Segment) float64 {
	if len(segments) == 0 {
		return 0
	}
	last := segments[len(segments)-1]
	return last.Start + last.Duration
}
