package treebloom

import (
	"math"
	"math/rand/v2"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// treeThreshold is the progress below which fields use tree-layout behavior
// (pointer repulsion and the tree bob).
const treeThreshold = 0.1

// FieldState is the global state every field transform is a function of.
type FieldState struct {
	// Progress is the transition progress in [0, 1].
	Progress float64
	// Time is the elapsed scene time in seconds.
	Time float64
	// Pointer is the pointer position in world space (z = 0 plane).
	Pointer Vec3
	// Phase is the current phase.
	Phase Phase
}

// TreeLayout reports whether progress is close enough to the tree layout
// for pointer repulsion to apply.
func (s FieldState) TreeLayout() bool {
	return s.Progress < treeThreshold
}

// ParticleRecord is the static description of one tree particle.
type ParticleRecord struct {
	TreePosition   Vec3
	NebulaPosition Vec3
	BaseScale      float64
	Color          Color
}

// Interpolate returns the particle's layout position at progress p, before
// any bob or repulsion is applied.
func (r ParticleRecord) Interpolate(p float64) Vec3 {
	return lerpVec3(r.TreePosition, r.NebulaPosition, p)
}

// ParticleConfig controls how the particle field is generated.
type ParticleConfig struct {
	// Count is the fixed pool size.
	Count int
	// TreeHeight and TreeRadius describe the cone of the tree layout.
	TreeHeight float64
	TreeRadius float64
	// NebulaRadius is the annulus of the nebula layout.
	NebulaRadius Range
	// BaseScale is the range of per-particle scales.
	BaseScale Range
	// Hue is the HSL hue range in turns (0..1); Saturation and Lightness are fixed.
	Hue        Range
	Saturation float64
	Lightness  float64
}

// DefaultParticleConfig returns the standard green tree configuration.
func DefaultParticleConfig() ParticleConfig {
	return ParticleConfig{
		Count:        5000,
		TreeHeight:   14,
		TreeRadius:   6,
		NebulaRadius: Range{10, 25},
		BaseScale:    Range{0.05, 0.2},
		Hue:          Range{0.3, 0.4},
		Saturation:   0.8,
		Lightness:    0.5,
	}
}

// repulsion pushes instances away from the pointer while the tree layout
// is active.
type repulsion struct {
	radius   float64
	strength float64
	zDamp    float64
}

var (
	particleRepulsion = repulsion{radius: 3, strength: 1.5, zDamp: 0.5}
	ornamentRepulsion = repulsion{radius: 3, strength: 2, zDamp: 1}
)

// displace returns pos pushed away from pointer. Positions outside the
// radius, or exactly on the pointer, are returned unchanged.
func (r repulsion) displace(pos, pointer Vec3) Vec3 {
	d := pos.Sub(pointer)
	dist := d.Len()
	if dist >= r.radius || dist == 0 {
		return pos
	}
	push := d.Mul((r.radius - dist) * r.strength / dist)
	push[2] *= r.zDamp
	return pos.Add(push)
}

// Bob amplitudes and frequencies.
const (
	treeBobAmplitude   = 0.1
	treeBobFrequency   = 2
	nebulaBobAmplitude = 0.2
)

// bloomPulse is the scale multiplier applied while blooming. It is 1 at both
// ends of the transition and peaks at 3 halfway through.
func bloomPulse(s FieldState) float64 {
	if s.Phase != PhaseBlooming {
		return 1
	}
	return 1 + math.Sin(s.Progress*math.Pi)*2
}

// ParticleField owns a fixed pool of particle records and turns them into
// per-frame instances. It holds no per-particle simulation state: every
// frame is recomputed from the records and the FieldState.
type ParticleField struct {
	config  ParticleConfig
	records []ParticleRecord
}

// NewParticleField generates cfg.Count particles. A non-positive count
// falls back to the default pool size.
func NewParticleField(cfg ParticleConfig, rng *rand.Rand) *ParticleField {
	if cfg.Count <= 0 {
		cfg.Count = DefaultParticleConfig().Count
	}
	f := &ParticleField{
		config:  cfg,
		records: make([]ParticleRecord, cfg.Count),
	}
	for i := range f.records {
		r := &f.records[i]
		r.TreePosition = ConePoint(rng, cfg.TreeHeight, cfg.TreeRadius)
		r.NebulaPosition = NebulaPoint(rng, cfg.NebulaRadius.Min, cfg.NebulaRadius.Max)
		r.BaseScale = cfg.BaseScale.sample(rng)
		hue := cfg.Hue.sample(rng)
		r.Color = colorFromColorful(colorful.Hsl(hue*360, cfg.Saturation, cfg.Lightness))
	}
	return f
}

// Len returns the pool size.
func (f *ParticleField) Len() int {
	return len(f.records)
}

// Records returns the static particle records. The returned slice MUST NOT be mutated.
func (f *ParticleField) Records() []ParticleRecord {
	return f.records
}

// Config returns the configuration the field was generated from.
func (f *ParticleField) Config() ParticleConfig {
	return f.config
}

// ComputeTransforms writes one Instance per particle into dst, growing it
// if needed, and returns the filled slice.
func (f *ParticleField) ComputeTransforms(s FieldState, dst []Instance) []Instance {
	dst = resizeInstances(dst, len(f.records))
	tree := s.TreeLayout()
	pulse := bloomPulse(s)

	for i := range f.records {
		r := &f.records[i]
		pos := r.Interpolate(s.Progress)

		if tree {
			pos = particleRepulsion.displace(pos, s.Pointer)
			pos[1] += math.Sin(s.Time*treeBobFrequency+r.TreePosition[0]) * treeBobAmplitude
		} else {
			pos[1] += math.Sin(s.Time+r.NebulaPosition[0]) * nebulaBobAmplitude
		}

		dst[i] = Instance{
			Position: pos,
			Scale:    r.BaseScale * pulse,
			Color:    r.Color,
		}
	}
	return dst
}

// resizeInstances returns a slice of length n reusing dst's backing array
// when it is large enough.
func resizeInstances(dst []Instance, n int) []Instance {
	if cap(dst) < n {
		return make([]Instance, n)
	}
	return dst[:n]
}

// sample returns a value in [Min, Max] drawn from rng.
func (r Range) sample(rng *rand.Rand) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}
