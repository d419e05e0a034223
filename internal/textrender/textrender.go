package textrender

import (
	"image"
	"image/color"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// VAlign anchors the wrapped text block vertically.
type VAlign string

const (
	Top    VAlign = "top"
	Center VAlign = "center"
	Bottom VAlign = "bottom"
)

// Options controls one text rasterization.
type Options struct {
	FontSize     float64
	FontPaths    []string // preferred TTF files, tried in order
	Color        color.RGBA
	VAlign       VAlign
	Padding      int // horizontal padding on both sides
	BottomMargin int // distance from the bottom edge for VAlign == Bottom
	Shadow       bool
	Stroke       bool
	StrokeWidth  int
	StrokeColor  color.RGBA
	MaxLines     int // 0 = unlimited
}

// Предпочтительные системные шрифты: сначала засечки (поэзия), потом гротески.
var defaultFontPaths = []string{
	"/usr/share/fonts/truetype/liberation/LiberationSerif-Regular.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSerif.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Bold.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/Library/Fonts/Georgia.ttf",
	"/System/Library/Fonts/Supplemental/Georgia.ttf",
	"/System/Library/Fonts/Supplemental/Times New Roman.ttf",
}

// LoadFace tries each candidate font file in order and falls back to the
// built-in bitmap face. It never fails: absence of preferred fonts must not
// break rendering.
func LoadFace(size float64, preferred []string) font.Face {
	candidates := append(append([]string{}, preferred...), defaultFontPaths...)
	for _, path := range candidates {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		ft, err := opentype.Parse(data)
		if err != nil {
			continue
		}
		face, err := opentype.NewFace(ft, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			continue
		}
		return face
	}
	return basicfont.Face7x13
}

func measure(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// WrapText greedily packs words into lines no wider than maxWidth pixels.
// With maxLines > 0, overflow lines are collapsed into the last permitted
// line; if that line is still too wide a rune-count heuristic rewraps the
// whole text instead.
func WrapText(text string, face font.Face, maxWidth, maxLines int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{text}
	}

	var lines []string
	current := words[0]
	for _, w := range words[1:] {
		candidate := current + " " + w
		if measure(face, candidate) <= maxWidth {
			current = candidate
		} else {
			lines = append(lines, current)
			current = w
		}
	}
	lines = append(lines, current)

	if maxLines > 0 && len(lines) > maxLines {
		head := lines[:maxLines-1]
		tail := strings.Join(lines[maxLines-1:], " ")
		lines = append(append([]string{}, head...), tail)

		if measure(face, lines[maxLines-1]) > maxWidth {
			if byRunes := wrapByRunes(text, face, maxWidth, maxLines); len(byRunes) > 0 {
				lines = byRunes
			}
		}
	}

	return lines
}

// wrapByRunes wraps words by an estimated character budget per line when
// measured wrapping cannot satisfy the line cap. Words are never split.
func wrapByRunes(text string, face font.Face, maxWidth, maxLines int) []string {
	avg := measure(face, "A")
	if avg < 1 {
		avg = 1
	}
	perLine := maxWidth / avg
	if perLine < 10 {
		perLine = 10
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, w := range words[1:] {
		if len([]rune(current))+1+len([]rune(w)) <= perLine {
			current += " " + w
		} else {
			lines = append(lines, current)
			current = w
		}
	}
	lines = append(lines, current)

	if maxLines > 0 && len(lines) > maxLines {
		head := lines[:maxLines-1]
		tail := strings.Join(lines[maxLines-1:], " ")
		lines = append(append([]string{}, head...), tail)
	}
	return lines
}

// Render lays out text as wrapped, centered lines into a transparent RGBA
// buffer of exactly width x height.
func Render(text string, width, height int, opts Options) *image.RGBA {
	if opts.Padding == 0 {
		opts.Padding = 80
	}
	if opts.BottomMargin == 0 {
		opts.BottomMargin = 140
	}
	if opts.FontSize == 0 {
		opts.FontSize = 60
	}
	if opts.Color.A == 0 {
		opts.Color = color.RGBA{255, 255, 255, 255}
	}
	if opts.Stroke && opts.StrokeWidth <= 0 {
		opts.StrokeWidth = 2
	}

	face := LoadFace(opts.FontSize, opts.FontPaths)
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	maxWidth := width - 2*opts.Padding
	if maxWidth < 1 {
		maxWidth = width
	}
	lines := WrapText(text, face, maxWidth, opts.MaxLines)

	metrics := face.Metrics()
	lineHeight := (metrics.Ascent + metrics.Descent).Ceil()
	if lineHeight < 1 {
		lineHeight = int(opts.FontSize)
	}
	lineSpacing := int(float64(lineHeight) * 0.35)
	blockHeight := lineHeight*len(lines) + lineSpacing*max(0, len(lines)-1)

	var y int
	switch opts.VAlign {
	case Bottom:
		y = height - opts.BottomMargin - blockHeight
	case Top:
		y = opts.Padding
	default: // Center
		y = (height - blockHeight) / 2
	}

	for _, line := range lines {
		w := measure(face, line)
		x := (width - w) / 2
		baseline := y + metrics.Ascent.Ceil()

		if opts.Shadow {
			shadow := color.RGBA{0, 0, 0, 180}
			for _, off := range [][2]int{{2, 2}, {1, 1}} {
				drawLine(img, face, line, x+off[0], baseline+off[1], shadow)
			}
		}

		if opts.Stroke && opts.StrokeWidth > 0 {
			// x/image/font не умеет обводку, рисуем вручную по смещениям.
			sc := opts.StrokeColor
			if sc.A == 0 {
				sc = color.RGBA{0, 0, 0, 255}
			}
			for dx := -opts.StrokeWidth; dx <= opts.StrokeWidth; dx++ {
				for dy := -opts.StrokeWidth; dy <= opts.StrokeWidth; dy++ {
					if dx == 0 && dy == 0 {
						continue
					}
					drawLine(img, face, line, x+dx, baseline+dy, sc)
				}
			}
		}

		drawLine(img, face, line, x, baseline, opts.Color)
		y += lineHeight + lineSpacing
	}

	return img
}

func drawLine(dst *image.RGBA, face font.Face, s string, x, baseline int, c color.RGBA) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(s)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
