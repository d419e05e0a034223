package background

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"github.com/ivlev/poem2video/internal/palette"
)

// Direction selects how per-pixel gradient progress is computed.
type Direction string

const (
	Vertical   Direction = "vertical"
	Horizontal Direction = "horizontal"
	Diagonal   Direction = "diagonal"
	Radial     Direction = "radial"
	Spiral     Direction = "spiral"
)

// Options controls a single gradient render.
type Options struct {
	Direction Direction
	Noise     bool
	Animated  bool
	Time      float64 // 0..1, used by Animated and Spiral
	Rand      *rand.Rand
}

// Generate renders a gradient of the given size. The result is an RGBA image
// with full alpha; noise and animation are off unless requested.
func Generate(width, height int, pal palette.Palette, opts Options) *image.RGBA {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	colors := pal
	if opts.Animated {
		colors = shiftColors(pal, opts.Time)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))

	switch opts.Direction {
	case Horizontal:
		for x := 0; x < width; x++ {
			c := sample(colors, progress(x, width))
			for y := 0; y < height; y++ {
				img.SetRGBA(x, y, c)
			}
		}
	case Diagonal:
		maxDist := math.Sqrt(float64(width*width + height*height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				dist := math.Sqrt(float64(x*x + y*y))
				img.SetRGBA(x, y, sample(colors, dist/maxDist))
			}
		}
	case Radial:
		cx, cy := float64(width)/2, float64(height)/2
		maxDist := math.Sqrt(cx*cx + cy*cy)
		if maxDist == 0 {
			maxDist = 1
		}
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				dx, dy := float64(x)-cx, float64(y)-cy
				dist := math.Sqrt(dx*dx + dy*dy)
				img.SetRGBA(x, y, sample(colors, dist/maxDist))
			}
		}
	case Spiral:
		cx, cy := float64(width)/2, float64(height)/2
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				dx, dy := float64(x)-cx, float64(y)-cy
				dist := math.Sqrt(dx*dx + dy*dy)
				angle := math.Atan2(dy, dx) + opts.Time*2*math.Pi
				// Дистанция и угол вместе дают вращающийся спиральный узор.
				spiral := dist/100 + angle/(2*math.Pi)
				p := spiral - math.Floor(spiral)
				img.SetRGBA(x, y, sample(colors, p))
			}
		}
	default: // Vertical
		for y := 0; y < height; y++ {
			c := sample(colors, progress(y, height))
			for x := 0; x < width; x++ {
				img.SetRGBA(x, y, c)
			}
		}
	}

	if opts.Noise {
		r := opts.Rand
		if r == nil {
			r = rand.New(rand.NewSource(1))
		}
		addNoise(img, 0.03, r)
	}

	return img
}

// GenerateZoomed renders a gradient inflated by zoomFactor for Ken Burns
// cropping by the compositor.
func GenerateZoomed(width, height int, zoomFactor float64, pal palette.Palette, opts Options) *image.RGBA {
	if zoomFactor < 1 {
		zoomFactor = 1
	}
	bigW := int(float64(width) * zoomFactor)
	bigH := int(float64(height) * zoomFactor)
	return Generate(bigW, bigH, pal, opts)
}

// progress maps index i in [0, n) to [0, 1]. Guards n == 1.
func progress(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}

// sample maps gradient progress p into the palette with linear interpolation
// between adjacent stops, clamped at the last stop.
func sample(pal palette.Palette, p float64) color.RGBA {
	n := len(pal)
	if n == 1 {
		c := pal[0]
		return color.RGBA{c.R, c.G, c.B, 255}
	}
	if p < 0 {
		p = 0
	}

	t := p * float64(n-1)
	idx := int(t)
	if idx >= n-1 {
		c := pal[n-1]
		return color.RGBA{c.R, c.G, c.B, 255}
	}
	frac := t - float64(idx)

	c1, c2 := pal[idx], pal[idx+1]
	return color.RGBA{
		R: lerp8(c1.R, c2.R, frac),
		G: lerp8(c1.G, c2.G, frac),
		B: lerp8(c1.B, c2.B, frac),
		A: 255,
	}
}

func lerp8(a, b uint8, t float64) uint8 {
	v := float64(a)*(1-t) + float64(b)*t
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(v + 0.5)
}

// shiftColors perturbs each palette stop for the breathing animation effect.
func shiftColors(pal palette.Palette, t float64) palette.Palette {
	shifted := make(palette.Palette, len(pal))
	for i, c := range pal {
		shift := math.Sin(t*2*math.Pi+float64(i)*0.5) * 0.1
		shifted[i] = palette.RGB{
			R: clamp255(float64(c.R) * (1 + shift)),
			G: clamp255(float64(c.G) * (1 + shift)),
			B: clamp255(float64(c.B) * (1 + shift)),
		}
	}
	return shifted
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// addNoise adds zero-mean gaussian grain to break up banding.
func addNoise(img *image.RGBA, intensity float64, r *rand.Rand) {
	sigma := intensity * 255
	pix := img.Pix
	for i := 0; i < len(pix); i += 4 {
		n := r.NormFloat64() * sigma
		pix[i] = clamp255(float64(pix[i]) + n)
		pix[i+1] = clamp255(float64(pix[i+1]) + n)
		pix[i+2] = clamp255(float64(pix[i+2]) + n)
	}
}
