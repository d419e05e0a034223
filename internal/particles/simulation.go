package particles

import (
	"image"
	"math/rand"
)

// Вероятность активации неактивной искры за один тик.
const sparkleSpawnChance = 0.02

const maxSparkles = 5

// Simulation holds the full particle/sparkle state for one overlay clip.
// It is advanced by explicit Tick(dt) calls so the state is testable without
// any rendering callback machinery.
type Simulation struct {
	Width, Height int
	Particles     []*Particle
	Sparkles      []*Sparkle

	rng *rand.Rand
}

// NewSimulation seeds count particles over the whole frame (staggered start
// positions) plus a pool of inactive sparkles.
func NewSimulation(width, height, count int, sparkles bool, seed int64) *Simulation {
	rng := rand.New(rand.NewSource(seed))

	sim := &Simulation{
		Width:  width,
		Height: height,
		rng:    rng,
	}

	for i := 0; i < count; i++ {
		p := NewParticle(width, height, rng)
		// На старте клипа частицы распределены по всему кадру.
		p.Y = rng.Float64() * float64(height)
		sim.Particles = append(sim.Particles, p)
	}

	if sparkles {
		for i := 0; i < maxSparkles; i++ {
			sim.Sparkles = append(sim.Sparkles, NewSparkle(width, height))
		}
	}

	return sim
}

// Tick advances all particles and sparkles by dt seconds.
func (s *Simulation) Tick(dt float64) {
	for _, p := range s.Particles {
		p.Update(dt, s.rng)
	}
	for _, sp := range s.Sparkles {
		if sp.Active {
			sp.Update(dt)
		} else if s.rng.Float64() < sparkleSpawnChance {
			sp.Reset(s.rng)
		}
	}
}

// RenderFrame draws the current state onto a fresh transparent RGBA frame.
func (s *Simulation) RenderFrame() *image.RGBA {
	frame := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	s.RenderInto(frame)
	return frame
}

// RenderInto draws the current state into dst (not cleared first).
func (s *Simulation) RenderInto(dst *image.RGBA) {
	for _, p := range s.Particles {
		op := p.Opacity
		if op < 0 {
			op = 0
		}
		if op > 1 {
			op = 1
		}
		if op*255 < 10 {
			continue
		}

		drawGlow(dst, p.X, p.Y, p.Size, p.Color, op)

		draw := shapeDrawers[p.Shape]
		size := p.Size
		if p.Shape == SparkCross {
			size *= 1.5
		}
		draw(dst, p.X, p.Y, size, p.Color, op, p.Rotation)
	}

	for _, sp := range s.Sparkles {
		if !sp.Active {
			continue
		}
		drawSparkCross(dst, sp.X, sp.Y, sp.Size, sp.Color, sp.Opacity(), 0)
	}
}

// FrameSource produces overlay frames for a clip of fixed duration and fps.
// Frames must be requested in order; dt is derived from the frame index, not
// wall clock, so output is deterministic for a given seed.
type FrameSource struct {
	sim       *Simulation
	fps       int
	lastFrame int
}

// NewFrameSource wraps a simulation for frame-indexed access.
func NewFrameSource(sim *Simulation, fps int) *FrameSource {
	return &FrameSource{sim: sim, fps: fps, lastFrame: -1}
}

// FrameInto advances the simulation by the elapsed frames since the previous
// call and composites the overlay for frame index n into dst.
func (f *FrameSource) FrameInto(n int, dst *image.RGBA) {
	steps := n - f.lastFrame
	if steps < 0 {
		steps = 1
	}
	dt := 1.0 / float64(f.fps)
	for i := 0; i < steps; i++ {
		f.sim.Tick(dt)
	}
	f.lastFrame = n
	f.sim.RenderInto(dst)
}

// FrameAt returns a standalone transparent overlay for frame index n.
func (f *FrameSource) FrameAt(n int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, f.sim.Width, f.sim.Height))
	f.FrameInto(n, dst)
	return dst
}
