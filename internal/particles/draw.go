package particles

import (
	"image"
	"math"

	"github.com/ivlev/poem2video/internal/palette"
)

// drawFunc renders one shape kind at a position with size, opacity and rotation.
type drawFunc func(dst *image.RGBA, x, y, size float64, c palette.RGB, opacity, rotation float64)

// Диспетчеризация по форме вместо ветвления по тегам в цикле рендера.
var shapeDrawers = map[Shape]drawFunc{
	Disc:       drawDisc,
	Star:       drawStar,
	SparkCross: drawSparkCross,
	Diamond:    drawDiamond,
	Heart:      drawHeart,
}

// blendPixel composites src color over dst at (x, y) with alpha in [0, 255].
func blendPixel(dst *image.RGBA, x, y int, c palette.RGB, alpha uint8) {
	if alpha == 0 {
		return
	}
	b := dst.Bounds()
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return
	}
	i := dst.PixOffset(x, y)
	sa := uint32(alpha)
	da := uint32(dst.Pix[i+3])
	// Standard source-over in 8-bit space.
	outA := sa + da*(255-sa)/255
	if outA == 0 {
		return
	}
	blend := func(s uint8, d uint8) uint8 {
		v := (uint32(s)*sa + uint32(d)*da*(255-sa)/255) / outA
		if v > 255 {
			v = 255
		}
		return uint8(v)
	}
	dst.Pix[i] = blend(c.R, dst.Pix[i])
	dst.Pix[i+1] = blend(c.G, dst.Pix[i+1])
	dst.Pix[i+2] = blend(c.B, dst.Pix[i+2])
	dst.Pix[i+3] = uint8(outA)
}

// fillEllipse fills an axis-aligned ellipse centered at (cx, cy).
func fillEllipse(dst *image.RGBA, cx, cy, rx, ry float64, c palette.RGB, alpha uint8) {
	if rx <= 0 || ry <= 0 {
		return
	}
	minY := int(math.Floor(cy - ry))
	maxY := int(math.Ceil(cy + ry))
	for y := minY; y <= maxY; y++ {
		dy := (float64(y) - cy) / ry
		if dy*dy > 1 {
			continue
		}
		halfW := rx * math.Sqrt(1-dy*dy)
		minX := int(math.Floor(cx - halfW))
		maxX := int(math.Ceil(cx + halfW))
		for x := minX; x <= maxX; x++ {
			dx := (float64(x) - cx) / rx
			if dx*dx+dy*dy <= 1 {
				blendPixel(dst, x, y, c, alpha)
			}
		}
	}
}

type point struct{ x, y float64 }

// fillPolygon fills a convex or star-shaped polygon with even-odd scanlines.
func fillPolygon(dst *image.RGBA, pts []point, c palette.RGB, alpha uint8) {
	if len(pts) < 3 {
		return
	}
	minY, maxY := pts[0].y, pts[0].y
	for _, p := range pts[1:] {
		minY = math.Min(minY, p.y)
		maxY = math.Max(maxY, p.y)
	}

	for y := int(math.Floor(minY)); y <= int(math.Ceil(maxY)); y++ {
		fy := float64(y) + 0.5
		var xs []float64
		for i := range pts {
			a := pts[i]
			b := pts[(i+1)%len(pts)]
			if (a.y <= fy && b.y > fy) || (b.y <= fy && a.y > fy) {
				t := (fy - a.y) / (b.y - a.y)
				xs = append(xs, a.x+t*(b.x-a.x))
			}
		}
		if len(xs) < 2 {
			continue
		}
		// Insertion sort is enough for a handful of crossings.
		for i := 1; i < len(xs); i++ {
			for j := i; j > 0 && xs[j] < xs[j-1]; j-- {
				xs[j], xs[j-1] = xs[j-1], xs[j]
			}
		}
		for i := 0; i+1 < len(xs); i += 2 {
			for x := int(math.Ceil(xs[i])); x <= int(math.Floor(xs[i+1])); x++ {
				blendPixel(dst, x, y, c, alpha)
			}
		}
	}
}

func toAlpha(opacity float64) uint8 {
	if opacity <= 0 {
		return 0
	}
	if opacity >= 1 {
		return 255
	}
	return uint8(opacity * 255)
}

func drawDisc(dst *image.RGBA, x, y, size float64, c palette.RGB, opacity, _ float64) {
	fillEllipse(dst, x, y, size, size, c, toAlpha(opacity))
}

func drawStar(dst *image.RGBA, x, y, size float64, c palette.RGB, opacity, _ float64) {
	pts := make([]point, 0, 10)
	for i := 0; i < 10; i++ {
		angle := math.Pi/2 + 2*math.Pi*float64(i)/10
		r := size
		if i%2 != 0 {
			r = size * 0.4
		}
		pts = append(pts, point{x + r*math.Cos(angle), y - r*math.Sin(angle)})
	}
	fillPolygon(dst, pts, c, toAlpha(opacity))
}

func drawSparkCross(dst *image.RGBA, x, y, size float64, c palette.RGB, opacity, _ float64) {
	alpha := toAlpha(opacity)
	armLen := size
	armWidth := size * 0.2
	if armWidth < 0.5 {
		armWidth = 0.5
	}
	fillEllipse(dst, x, y, armLen, armWidth, c, alpha)
	fillEllipse(dst, x, y, armWidth, armLen, c, alpha)
}

func drawDiamond(dst *image.RGBA, x, y, size float64, c palette.RGB, opacity, rotation float64) {
	rad := rotation * math.Pi / 180
	pts := make([]point, 0, 4)
	for i := 0; i < 4; i++ {
		angle := rad + math.Pi/2*float64(i)
		r := size
		if i%2 != 0 {
			r = size * 0.6
		}
		pts = append(pts, point{x + r*math.Cos(angle), y + r*math.Sin(angle)})
	}
	fillPolygon(dst, pts, c, toAlpha(opacity))
}

func drawHeart(dst *image.RGBA, x, y, size float64, c palette.RGB, opacity, _ float64) {
	alpha := toAlpha(opacity)
	// Две доли и нижний треугольник приближают форму сердца.
	fillEllipse(dst, x-size*0.3, y-size*0.05, size*0.3, size*0.35, c, alpha)
	fillEllipse(dst, x+size*0.3, y-size*0.05, size*0.3, size*0.35, c, alpha)
	fillPolygon(dst, []point{
		{x - size*0.5, y + size*0.1},
		{x + size*0.5, y + size*0.1},
		{x, y + size*0.8},
	}, c, alpha)
}

// drawGlow paints three soft concentric rings behind a particle.
func drawGlow(dst *image.RGBA, x, y, size float64, c palette.RGB, opacity float64) {
	for i := 3; i > 0; i-- {
		glowSize := size * (1 + float64(i)*0.5)
		glowAlpha := opacity * 30 / float64(i) // out of 255
		if glowAlpha > 255 {
			glowAlpha = 255
		}
		fillEllipse(dst, x, y, glowSize, glowSize, c, uint8(glowAlpha))
	}
}
