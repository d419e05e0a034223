package compositor

import (
	"bytes"
	"image"
	"math"
	"strings"
	"testing"

	"github.com/ivlev/poem2video/internal/background"
	"github.com/ivlev/poem2video/internal/palette"
	"github.com/ivlev/poem2video/internal/segmenter"
)

func TestFadeAlphaEnvelope(t *testing.T) {
	// Segment of 2.0s with 0.5s fade: ramp, plateau, ramp.
	cases := []struct {
		t    float64
		want float64
	}{
		{-0.1, 0},
		{0, 0},
		{0.25, 0.5},
		{0.5, 1},
		{1.0, 1},
		{1.5, 1},
		{1.75, 0.5},
		{2.0, 0},
		{2.1, 0},
	}
	for _, c := range cases {
		got := FadeAlpha(c.t, 0, 2.0, 0.5)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("FadeAlpha(%f) = %f, want %f", c.t, got, c.want)
		}
	}
}

func TestFadeAlphaShortSegmentCapsFade(t *testing.T) {
	// duration 1.0, fade 0.5 -> effective fade 0.25, plateau is at least half.
	plateau := 0.0
	const steps = 1000
	for i := 0; i <= steps; i++ {
		tt := float64(i) / steps
		if FadeAlpha(tt, 0, 1.0, 0.5) >= 0.999 {
			plateau += 1.0 / steps
		}
	}
	if plateau < 0.5 {
		t.Errorf("plateau %f of segment, want >= 0.5", plateau)
	}
}

func TestFadeAlphaOffsetSegment(t *testing.T) {
	if got := FadeAlpha(3.0, 3.0, 2.0, 0.5); got != 0 {
		t.Errorf("at segment start alpha must be 0, got %f", got)
	}
	if got := FadeAlpha(4.0, 3.0, 2.0, 0.5); got != 1 {
		t.Errorf("mid-segment alpha must be 1, got %f", got)
	}
}

func testBackdrop(w, h int) *image.RGBA {
	pal, _ := palette.Get("sunset")
	return background.Generate(w, h, pal, background.Options{Direction: background.Vertical})
}

func testTimeline() []segmenter.Segment {
	return []segmenter.Segment{
		{Text: "Primera línea", Start: 0, Duration: 1.2},
		{Text: "", Start: 1.2, Duration: 0.6},
		{Text: "Segunda línea", Start: 1.8, Duration: 1.4},
	}
}

func TestFrameRendererFrameCount(t *testing.T) {
	spec := Spec{Width: 108, Height: 192, FPS: 30, FontSize: 20, FadeDuration: 0.3}
	r, err := newFrameRenderer(spec, testBackdrop(124, 220), testTimeline())
	if err != nil {
		t.Fatal(err)
	}
	// 3.2s at 30 fps.
	want := int(3.2*30) + 1
	if got := r.frameCount(); got != want {
		t.Errorf("frame count: got %d, want %d", got, want)
	}
}

func TestRenderFrameSizeAndOpacity(t *testing.T) {
	spec := Spec{
		Width: 108, Height: 192, FPS: 30,
		Title: "Prueba", Author: "Autor",
		FontSize: 20, FadeDuration: 0.3,
		ZoomEnabled: true, Particles: 10, Sparkles: true,
	}
	r, err := newFrameRenderer(spec, testBackdrop(124, 220), testTimeline())
	if err != nil {
		t.Fatal(err)
	}

	frame := r.renderFrame(0)
	if frame.Bounds().Dx() != 108 || frame.Bounds().Dy() != 192 {
		t.Fatalf("frame bounds %v", frame.Bounds())
	}
	// The backdrop layer is drawn with Src: every pixel must be opaque, or the
	// rawvideo stream would carry transparency into yuv420p.
	for i := 3; i < len(frame.Pix); i += 4 * 97 {
		if frame.Pix[i] != 255 {
			t.Fatalf("transparent pixel at offset %d", i)
		}
	}
}

func TestRenderFrameParticleOverlayDeterministic(t *testing.T) {
	spec := Spec{
		Width: 108, Height: 192, FPS: 30, FontSize: 20,
		Particles: 15, Sparkles: true, Seed: 7, ZoomEnabled: true,
	}
	a, err := newFrameRenderer(spec, testBackdrop(124, 220), testTimeline())
	if err != nil {
		t.Fatal(err)
	}
	b, err := newFrameRenderer(spec, testBackdrop(124, 220), testTimeline())
	if err != nil {
		t.Fatal(err)
	}

	// Частицы идут через покадровый источник: одинаковый seed обязан давать
	// идентичную последовательность кадров.
	for n := 0; n < 5; n++ {
		fa := a.renderFrame(n)
		fb := b.renderFrame(n)
		if !bytes.Equal(fa.Pix, fb.Pix) {
			t.Fatalf("frame %d differs between identically seeded renderers", n)
		}
	}
}

func TestBackdropSmallerThanFrameRejected(t *testing.T) {
	spec := Spec{Width: 108, Height: 192, FPS: 30, FontSize: 20}
	if _, err := newFrameRenderer(spec, testBackdrop(50, 50), testTimeline()); err == nil {
		t.Error("undersized backdrop must be rejected")
	}
}

func TestEmptyTimelineRejected(t *testing.T) {
	spec := Spec{Width: 108, Height: 192, FPS: 30}
	if _, err := newFrameRenderer(spec, testBackdrop(124, 220), nil); err == nil {
		t.Error("empty timeline must be rejected")
	}
}

func TestQRWatermarkRendered(t *testing.T) {
	spec := Spec{
		Width: 216, Height: 384, FPS: 30, FontSize: 20,
		QRURL: "https://example.com/poema",
	}
	r, err := newFrameRenderer(spec, testBackdrop(240, 420), testTimeline())
	if err != nil {
		t.Fatal(err)
	}
	if r.qr == nil {
		t.Fatal("qr layer missing")
	}
	if r.qr.Bounds().Dx() < 24 {
		t.Errorf("qr too small: %v", r.qr.Bounds())
	}
}

func TestMuxArgsQualityPerEncoder(t *testing.T) {
	spec := Spec{Width: 1080, Height: 1920, FPS: 30, Encoder: "h264_nvenc", Quality: 23}
	args := buildMuxArgs("voz.wav", spec, 10, "out.mp4")

	joined := strings.Join(args, " ")
	for _, want := range []string{"-cq 23", "rawvideo", "1080x1920", "-shortest", "-c:a aac"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}
}
