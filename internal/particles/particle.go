package particles

import (
	"math"
	"math/rand"

	"github.com/ivlev/poem2video/internal/palette"
)

// Shape is the closed set of particle sprite kinds.
type Shape int

const (
	Disc Shape = iota
	Star
	SparkCross
	Diamond
	Heart
)

// Margin за пределами кадра, после которого частица считается ушедшей.
const edgeMargin = 20

// shapeWeights favors the simple shapes (disc, star) over the decorative ones.
var shapeWeights = []struct {
	shape  Shape
	weight float64
}{
	{Disc, 0.4},
	{Star, 0.3},
	{SparkCross, 0.2},
	{Diamond, 0.05},
	{Heart, 0.05},
}

// particleColors: whites, golds, pinks, cyans, light yellows.
var particleColors = []palette.Palette{
	{{R: 255, G: 255, B: 255}},
	{{R: 255, G: 215, B: 0}, {R: 255, G: 223, B: 100}},
	{{R: 255, G: 105, B: 180}, {R: 255, G: 150, B: 200}},
	{{R: 0, G: 255, B: 255}, {R: 100, G: 255, B: 255}},
	{{R: 255, G: 255, B: 150}, {R: 255, G: 255, B: 200}},
}

// Particle is one floating decorative sprite.
type Particle struct {
	X, Y   float64
	VX, VY float64

	SwayAmplitude float64
	SwayFrequency float64
	SwayPhase     float64

	Size        float64
	BaseOpacity float64
	Opacity     float64

	TwinkleSpeed float64
	TwinklePhase float64

	Shape    Shape
	Color    palette.RGB
	Rotation float64 // degrees
	RotSpeed float64 // degrees per tick unit

	time          float64
	width, height float64
}

// NewParticle spawns a particle biased toward the bottom of the frame with an
// upward drift, matching the floating-embers look.
func NewParticle(width, height int, r *rand.Rand) *Particle {
	w, h := float64(width), float64(height)
	p := &Particle{
		X:  r.Float64() * w,
		Y:  h*0.8 + r.Float64()*h*0.2,
		VX: -1.0 + r.Float64()*2.0,
		VY: -2.5 + r.Float64()*1.7, // [-2.5, -0.8]

		SwayAmplitude: 0.5 + r.Float64()*1.5,
		SwayFrequency: 0.5 + r.Float64()*1.5,
		SwayPhase:     r.Float64() * 2 * math.Pi,

		Size:        2 + r.Float64()*6,
		BaseOpacity: 0.15 + r.Float64()*0.45,

		TwinkleSpeed: 1.0 + r.Float64()*2.0,
		TwinklePhase: r.Float64() * 2 * math.Pi,

		Shape:    pickShape(r),
		Rotation: r.Float64() * 360,
		RotSpeed: -30 + r.Float64()*60,

		width:  w,
		height: h,
	}
	p.Opacity = p.BaseOpacity

	pal := particleColors[r.Intn(len(particleColors))]
	p.Color = pal[r.Intn(len(pal))]
	return p
}

func pickShape(r *rand.Rand) Shape {
	v := r.Float64()
	acc := 0.0
	for _, sw := range shapeWeights {
		acc += sw.weight
		if v < acc {
			return sw.shape
		}
	}
	return Disc
}

// Update advances the particle by dt seconds of simulated time.
func (p *Particle) Update(dt float64, r *rand.Rand) {
	p.time += dt * 0.1

	// Синусоидальное покачивание поверх линейной скорости.
	sway := math.Sin(p.time*p.SwayFrequency+p.SwayPhase) * p.SwayAmplitude
	p.X += p.VX + sway*0.1
	p.Y += p.VY

	twinkle := math.Sin(p.time*p.TwinkleSpeed + p.TwinklePhase)
	p.Opacity = p.BaseOpacity * (0.7 + 0.3*twinkle)

	p.Rotation += p.RotSpeed * dt * 0.1

	// Уход за верхнюю кромку: респаун снизу с нулевой прозрачностью.
	if p.Y < -edgeMargin {
		p.Y = p.height + edgeMargin
		p.X = r.Float64() * p.width
		p.Opacity = 0
	}
	if p.X < -edgeMargin {
		p.X = p.width + edgeMargin
	}
	if p.X > p.width+edgeMargin {
		p.X = -edgeMargin
	}
}
