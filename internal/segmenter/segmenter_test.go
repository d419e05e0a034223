package segmenter

import (
	"fmt"
	"math"
	"path/filepath"
	"testing"

	"github.com/ivlev/poem2video/internal/audio"
)

// silenceSynth writes a fixed-length silence WAV per line, so durations are
// real and measurable without an external TTS binary.
type silenceSynth struct {
	perLine float64
	calls   []string
	failOn  string
}

func (s *silenceSynth) SynthesizeToFile(text, outPath string) error {
	if s.failOn != "" && text == s.failOn {
		return fmt.Errorf("simulated failure on %q", text)
	}
	s.calls = append(s.calls, text)
	return audio.WriteSilence(outPath, s.perLine, audio.DefaultSampleRate)
}

// batchSilenceSynth also implements the batch interface.
type batchSilenceSynth struct {
	silenceSynth
	batchCalls int
}

func (s *batchSilenceSynth) SynthesizeBatchToFiles(texts, outPaths []string) error {
	s.batchCalls++
	for i, t := range texts {
		if err := s.SynthesizeToFile(t, outPaths[i]); err != nil {
			return err
		}
	}
	return nil
}

func TestBlankLineBecomesPause(t *testing.T) {
	dir := t.TempDir()
	synth := &silenceSynth{perLine: 0.5}

	segs, err := Synthesize("Line A\n\nLine B", synth,
		filepath.Join(dir, "frags"), filepath.Join(dir, "track.wav"), Options{})
	if err != nil {
		t.Fatal(err)
	}

	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segs))
	}
	if segs[0].Text != "Line A" || segs[1].Text != "" || segs[2].Text != "Line B" {
		t.Errorf("unexpected segment texts: %+v", segs)
	}
	if segs[1].Duration <= 0 {
		t.Error("pause segment must have positive duration")
	}
	if math.Abs(segs[1].Duration-DefaultPause) > 0.01 {
		t.Errorf("pause duration: got %f, want ~%f", segs[1].Duration, DefaultPause)
	}
}

func TestTimelineContiguity(t *testing.T) {
	dir := t.TempDir()
	synth := &silenceSynth{perLine: 0.3}

	segs, err := Synthesize("uno\ndos\n\ntres\ncuatro", synth,
		filepath.Join(dir, "frags"), filepath.Join(dir, "track.wav"), Options{})
	if err != nil {
		t.Fatal(err)
	}

	if segs[0].Start != 0 {
		t.Errorf("first segment must start at 0, got %f", segs[0].Start)
	}
	for i := 0; i+1 < len(segs); i++ {
		want := segs[i].Start + segs[i].Duration
		if math.Abs(segs[i+1].Start-want) > 1e-6 {
			t.Errorf("segment %d: start %f, want %f", i+1, segs[i+1].Start, want)
		}
	}
}

func TestTrackDurationMatchesTimeline(t *testing.T) {
	dir := t.TempDir()
	synth := &silenceSynth{perLine: 0.4}
	track := filepath.Join(dir, "track.wav")

	segs, err := Synthesize("a\n\nb\nc", synth, filepath.Join(dir, "frags"), track, Options{})
	if err != nil {
		t.Fatal(err)
	}

	trackDur, err := audio.Duration(track)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(trackDur-TotalDuration(segs)) > 0.005 {
		t.Errorf("track %fs vs timeline %fs", trackDur, TotalDuration(segs))
	}
}

func TestLineFailureAbortsPoem(t *testing.T) {
	dir := t.TempDir()
	synth := &silenceSynth{perLine: 0.3, failOn: "dos"}

	_, err := Synthesize("uno\ndos\ntres", synth,
		filepath.Join(dir, "frags"), filepath.Join(dir, "track.wav"), Options{})
	if err == nil {
		t.Fatal("per-line synthesis failure must abort the poem")
	}
}

func TestBatchModeReassociatesByIndex(t *testing.T) {
	dir := t.TempDir()
	synth := &batchSilenceSynth{silenceSynth: silenceSynth{perLine: 0.2}}

	segs, err := Synthesize("primera\n\nsegunda", synth,
		filepath.Join(dir, "frags"), filepath.Join(dir, "track.wav"), Options{Batch: true})
	if err != nil {
		t.Fatal(err)
	}

	if synth.batchCalls != 1 {
		t.Errorf("expected exactly one batch call, got %d", synth.batchCalls)
	}
	if len(segs) != 3 || segs[0].Text != "primera" || segs[1].Text != "" || segs[2].Text != "segunda" {
		t.Errorf("batch mode broke line order: %+v", segs)
	}
}

func TestSplitLinesKeepsBlanksAndNormalizesEndings(t *testing.T) {
	lines := SplitLines("a\r\n\r\nb\rc")
	want := []string{"a", "", "b", "c"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %v", len(lines), len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestEmptyBodyIsError(t *testing.T) {
	dir := t.TempDir()
	synth := &silenceSynth{perLine: 0.3}
	if _, err := Synthesize("", synth, dir, filepath.Join(dir, "t.wav"), Options{}); err == nil {
		t.Error("empty body should be an error")
	}
}

func TestShortPauseOption(t *testing.T) {
	dir := t.TempDir()
	synth := &silenceSynth{perLine: 0.3}

	segs, err := Synthesize("a\n\nb", synth,
		filepath.Join(dir, "frags"), filepath.Join(dir, "track.wav"),
		Options{PauseDuration: ShortPause})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(segs[1].Duration-ShortPause) > 0.01 {
		t.Errorf("pause: got %f, want ~%f", segs[1].Duration, ShortPause)
	}
}
