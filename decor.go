package treebloom

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Topper star constants.
var TopperPosition = Vec3{0, 7.5, 0}

const (
	topperPoints      = 5
	topperOuterRadius = 0.8
	topperInnerRadius = 0.4
	topperSparkles    = 20
	topperSparkleBox  = 3.0

	// Float motion: noise speed, bob and tilt amplitude.
	floatSpeed     = 2.0
	floatBob       = 0.5
	floatRotation  = 0.5
	floatNoiseRate = 0.25
)

// TopperInstance is the per-frame render description of the topper star.
type TopperInstance struct {
	Visible bool
	// Position is the star centre in group space.
	Position Vec3
	// Rotation turns the flat star outline (XY plane) into group space.
	Rotation mgl64.Quat
	// Outline is the star polygon in local units.
	Outline []Vec2
	Color   Color
	// Sparkles are in group space.
	Sparkles []Instance
}

// Topper is the star at the top of the tree. It floats on smooth noise and
// is visible only in the tree-shaped phases.
type Topper struct {
	outline  []Vec2
	noise    opensimplex.Noise
	sparkles []Vec3
	phases   []float64
	buf      []Instance
}

// NewTopper builds the star and its sparkle cloud.
func NewTopper(rng *rand.Rand) *Topper {
	t := &Topper{
		outline:  StarOutline(topperPoints, topperOuterRadius, topperInnerRadius),
		noise:    opensimplex.New(rng.Int64()),
		sparkles: make([]Vec3, topperSparkles),
		phases:   make([]float64, topperSparkles),
	}
	for i := range t.sparkles {
		t.sparkles[i] = Vec3{
			(rng.Float64() - 0.5) * topperSparkleBox,
			(rng.Float64() - 0.5) * topperSparkleBox,
			(rng.Float64() - 0.5) * topperSparkleBox,
		}
		t.phases[i] = rng.Float64() * 2 * math.Pi
	}
	return t
}

// Outline returns the star polygon.
func (t *Topper) Outline() []Vec2 {
	return t.outline
}

// Transform returns the star for this frame. The returned Sparkles slice is
// reused on the next call.
func (t *Topper) Transform(time float64, phase Phase) TopperInstance {
	if !phase.treeShaped() {
		return TopperInstance{}
	}
	nt := time * floatSpeed * floatNoiseRate
	bob := t.noise.Eval2(nt, 0) * floatBob
	tiltX := t.noise.Eval2(0, nt) * floatRotation * 0.5
	tiltZ := t.noise.Eval2(nt, nt) * floatRotation * 0.5

	center := TopperPosition.Add(Vec3{0, bob, 0})
	rot := mgl64.AnglesToQuat(tiltX, 0, tiltZ, mgl64.XYZ)

	t.buf = resizeInstances(t.buf, len(t.sparkles))
	for i, off := range t.sparkles {
		drift := Vec3{
			t.noise.Eval3(off[0], off[1], nt),
			t.noise.Eval3(off[1], off[2], nt),
			t.noise.Eval3(off[2], off[0], nt),
		}.Mul(0.2)
		twinkle := 0.5 + 0.5*math.Sin(time*3+t.phases[i])
		t.buf[i] = Instance{
			Position: center.Add(off).Add(drift),
			Scale:    0.06,
			Color:    Color{1, 1, 1, twinkle},
		}
	}

	return TopperInstance{
		Visible:  true,
		Position: center,
		Rotation: rot,
		Outline:  t.outline,
		Color:    ColorGold,
		Sparkles: t.buf,
	}
}

// Backdrop constants.
const (
	starCount        = 5000
	starRadius       = 100
	starDepth        = 50
	backdropSparkles = 200
	backdropBox      = 20.0
	backdropDrift    = 0.5
)

// Backdrop is the scene-space decoration behind the tree: a starfield shell
// and a box of slowly drifting sparkles. It is not affected by the group
// rotation.
type Backdrop struct {
	stars    []Instance
	sparkles []Vec3
	phases   []float64
	noise    opensimplex.Noise
	buf      []Instance
}

// NewBackdrop builds a backdrop with the default star and sparkle counts.
func NewBackdrop(rng *rand.Rand) *Backdrop {
	return newBackdrop(rng, starCount, backdropSparkles)
}

func newBackdrop(rng *rand.Rand, stars, sparkles int) *Backdrop {
	b := &Backdrop{
		stars:    make([]Instance, stars),
		sparkles: make([]Vec3, sparkles),
		phases:   make([]float64, sparkles),
		noise:    opensimplex.NewNormalized(rng.Int64()),
	}
	for i := range b.stars {
		b.stars[i] = Instance{
			Position: ShellPoint(rng, starRadius, starDepth),
			Scale:    0.2 + rng.Float64()*0.4,
			Color:    ColorWhite,
		}
	}
	for i := range b.sparkles {
		b.sparkles[i] = Vec3{
			(rng.Float64() - 0.5) * backdropBox,
			(rng.Float64() - 0.5) * backdropBox,
			(rng.Float64() - 0.5) * backdropBox,
		}
		b.phases[i] = rng.Float64() * 2 * math.Pi
	}
	return b
}

// Stars returns the static starfield. The slice MUST NOT be mutated.
func (b *Backdrop) Stars() []Instance {
	return b.stars
}

// Sparkles returns the drifting sparkles for time. The returned slice is
// reused on the next call.
func (b *Backdrop) Sparkles(time float64) []Instance {
	b.buf = resizeInstances(b.buf, len(b.sparkles))
	nt := time * backdropDrift * floatNoiseRate
	for i, p := range b.sparkles {
		// NewNormalized yields [0, 1]; recentre before scaling.
		rise := (b.noise.Eval3(p[0], p[2], nt) - 0.5) * 2
		b.buf[i] = Instance{
			Position: p.Add(Vec3{0, rise, 0}),
			Scale:    0.05,
			Color:    Color{1, 1, 1, 0.5 * (0.5 + 0.5*math.Sin(time+b.phases[i]))},
		}
	}
	return b.buf
}
