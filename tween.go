package treebloom

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 float64 fields simultaneously toward fixed
// targets. Create one via the convenience constructors (TweenValue,
// TweenVec3) and call Update(dt) each frame. Start values are captured when
// the group actually starts, i.e. after Delay has elapsed, so a delayed
// group picks up wherever another animation left its fields.
//
// OnSettle runs exactly once, on the Update call that finishes the group.
// Fields are written to their exact targets before it runs.
//
// There is no global animation manager; owners call Update themselves.
type TweenGroup struct {
	tweens   [4]*gween.Tween
	count    int
	fields   [4]*float64
	targets  [4]float64
	duration float32
	fn       ease.TweenFunc

	// Delay is the number of seconds to wait before the group starts.
	Delay float32
	// OnSettle is called once when every field reaches its target.
	OnSettle func()

	waited  float32
	started bool
	Done    bool
}

func newTweenGroup(duration float32, fn ease.TweenFunc, fields ...*float64) *TweenGroup {
	if fn == nil {
		fn = ease.Linear
	}
	g := &TweenGroup{count: len(fields), duration: duration, fn: fn}
	copy(g.fields[:], fields)
	return g
}

// TweenValue creates a TweenGroup that animates *field to the target value
// over duration seconds using the easing function.
func TweenValue(field *float64, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(duration, fn, field)
	g.targets[0] = to
	return g
}

// TweenVec3 creates a TweenGroup that animates all three components of
// *field to the target vector.
func TweenVec3(field *Vec3, to Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(duration, fn, &field[0], &field[1], &field[2])
	g.targets[0], g.targets[1], g.targets[2] = to[0], to[1], to[2]
	return g
}

// Started reports whether the group's delay has elapsed.
func (g *TweenGroup) Started() bool {
	return g.started
}

// Target returns the target of the i-th field.
func (g *TweenGroup) Target(i int) float64 {
	return g.targets[i]
}

func (g *TweenGroup) start() {
	for i := 0; i < g.count; i++ {
		g.tweens[i] = gween.New(float32(*g.fields[i]), float32(g.targets[i]), g.duration, g.fn)
	}
	g.started = true
}

// Update advances all tweens by dt seconds and writes values to the target
// fields. Negative dt is treated as zero.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if dt < 0 {
		dt = 0
	}

	if !g.started {
		g.waited += dt
		if g.waited < g.Delay {
			return
		}
		// Carry the part of this frame that fell after the delay.
		dt = g.waited - g.Delay
		g.start()
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	if !allDone {
		return
	}

	for i := 0; i < g.count; i++ {
		*g.fields[i] = g.targets[i]
	}
	g.Done = true
	if g.OnSettle != nil {
		g.OnSettle()
	}
}
