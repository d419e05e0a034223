package particles

import (
	"math/rand"

	"github.com/ivlev/poem2video/internal/palette"
)

var sparkleColors = []palette.RGB{
	{R: 255, G: 255, B: 255},
	{R: 255, G: 215, B: 0},
	{R: 255, G: 105, B: 180},
	{R: 0, G: 255, B: 255},
	{R: 255, G: 255, B: 150},
}

// Sparkle is a short-lived radial light burst.
type Sparkle struct {
	X, Y    float64
	Size    float64
	MaxLife float64
	Life    float64
	Color   palette.RGB
	Active  bool

	width, height float64
}

// NewSparkle creates an inactive sparkle bound to the frame size.
func NewSparkle(width, height int) *Sparkle {
	return &Sparkle{width: float64(width), height: float64(height)}
}

// Reset moves the sparkle to a new random position and restarts its lifetime.
func (s *Sparkle) Reset(r *rand.Rand) {
	s.X = r.Float64() * s.width
	s.Y = r.Float64() * s.height
	s.Size = 5 + r.Float64()*15
	s.MaxLife = 0.5 + r.Float64()*1.5
	s.Life = s.MaxLife
	s.Color = sparkleColors[r.Intn(len(sparkleColors))]
	s.Active = true
}

// Update counts the lifetime down; at zero the sparkle deactivates.
func (s *Sparkle) Update(dt float64) {
	s.Life -= dt
	if s.Life <= 0 {
		s.Active = false
	}
}

// Opacity returns the fast fade-in / slow fade-out envelope keyed to the
// remaining lifetime fraction.
func (s *Sparkle) Opacity() float64 {
	if s.MaxLife <= 0 {
		return 0
	}
	if s.Life > s.MaxLife*0.7 {
		return 1 - (s.Life-s.MaxLife*0.7)/(s.MaxLife*0.3)
	}
	return s.Life / (s.MaxLife * 0.7)
}
