package textrender

import (
	"image/color"
	"strings"
	"testing"

	"golang.org/x/image/font/basicfont"
)

func TestWrapTextRespectsWidth(t *testing.T) {
	face := basicfont.Face7x13
	text := "the quick brown fox jumps over the lazy dog"

	lines := WrapText(text, face, 100, 0)

	if len(lines) < 2 {
		t.Fatalf("expected text to wrap, got %d line(s)", len(lines))
	}
	for _, line := range lines {
		if measure(face, line) > 100 {
			t.Errorf("line %q wider than 100px", line)
		}
	}

	joined := strings.Join(lines, " ")
	if joined != text {
		t.Errorf("wrap lost content: %q", joined)
	}
}

func TestWrapTextLineCap(t *testing.T) {
	face := basicfont.Face7x13
	// Wide enough that the collapsed last line still fits measured wrapping:
	// all overflow must concatenate into line 2.
	text := "alpha beta gamma delta epsilon zeta eta theta iota kappa"

	free := WrapText(text, face, 120, 0)
	if len(free) < 4 {
		t.Fatalf("test premise: text should wrap to 4+ lines, got %d", len(free))
	}

	capped := WrapText(text, face, 120, 2)
	if len(capped) != 2 {
		t.Fatalf("maxLines=2: expected exactly 2 lines, got %d: %v", len(capped), capped)
	}

	// Second line carries everything that overflowed.
	if joined := strings.Join(capped, " "); joined != text {
		t.Errorf("collapsed wrap lost content: %q", joined)
	}
}

func TestWrapEmptyText(t *testing.T) {
	face := basicfont.Face7x13
	lines := WrapText("", face, 100, 0)
	if len(lines) != 1 {
		t.Errorf("empty text should yield one line, got %d", len(lines))
	}
}

func TestRenderProducesExactResolution(t *testing.T) {
	img := Render("Hola mundo", 320, 480, Options{
		FontSize: 20,
		VAlign:   Center,
		Padding:  20,
	})

	if img.Bounds().Dx() != 320 || img.Bounds().Dy() != 480 {
		t.Errorf("expected 320x480, got %v", img.Bounds())
	}
}

func TestRenderDrawsSomethingOpaque(t *testing.T) {
	img := Render("XXXX", 200, 200, Options{
		FontSize: 16,
		Color:    color.RGBA{255, 255, 255, 255},
		VAlign:   Center,
		Padding:  10,
	})

	found := false
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] > 0 {
			found = true
			break
		}
	}
	if !found {
		t.Error("rendered text left the buffer fully transparent")
	}
}

func TestRenderEmptyBufferIsTransparentOutsideText(t *testing.T) {
	img := Render("hi", 100, 300, Options{FontSize: 12, VAlign: Top, Padding: 10})

	// Bottom rows must stay untouched for a top-aligned short string.
	for y := 250; y < 300; y++ {
		for x := 0; x < 100; x++ {
			if img.RGBAAt(x, y).A != 0 {
				t.Fatalf("pixel (%d,%d) should be transparent", x, y)
			}
		}
	}
}

func TestLoadFaceNeverFails(t *testing.T) {
	face := LoadFace(40, []string{"/nonexistent/font.ttf"})
	if face == nil {
		t.Fatal("LoadFace must always return a usable face")
	}
}

func TestRenderStrokeDefaultsWidth(t *testing.T) {
	opts := Options{
		FontSize: 16,
		Color:    color.RGBA{255, 255, 255, 255},
		VAlign:   Center,
		Padding:  10,
	}

	plain := Render("XXXX", 200, 200, opts)
	opts.Stroke = true // без явной ширины
	stroked := Render("XXXX", 200, 200, opts)

	if len(plain.Pix) != len(stroked.Pix) {
		t.Fatal("buffers must match in size")
	}
	diff := 0
	for i := range plain.Pix {
		if plain.Pix[i] != stroked.Pix[i] {
			diff++
		}
	}
	if diff == 0 {
		t.Error("Stroke without explicit width must still draw an outline")
	}
}

func TestRenderStrokeExplicitWidth(t *testing.T) {
	opts := Options{
		FontSize:    16,
		VAlign:      Center,
		Padding:     10,
		Stroke:      true,
		StrokeWidth: 3,
		StrokeColor: color.RGBA{0, 0, 0, 255},
	}

	img := Render("XXXX", 200, 200, opts)
	// Контур рисуется чёрным вокруг белых глифов: должны быть и те, и другие.
	white, black := false, false
	for i := 0; i+3 < len(img.Pix); i += 4 {
		if img.Pix[i+3] == 0 {
			continue
		}
		if img.Pix[i] > 200 && img.Pix[i+1] > 200 {
			white = true
		}
		if img.Pix[i] < 50 && img.Pix[i+1] < 50 {
			black = true
		}
	}
	if !white || !black {
		t.Errorf("expected both fill and outline pixels, white=%v black=%v", white, black)
	}
}
