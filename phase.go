package treebloom

import (
	"math"
	"sync/atomic"

	"github.com/tanema/gween/ease"
)

// Default transition timings.
const (
	DefaultBloomDuration    = 2.5
	DefaultCollapseDuration = 2.0
)

// PhaseMachine owns the current Phase and the TransitionProgress scalar.
//
// Only the frame tick writes to it (Trigger and Update); Phase and Progress
// are safe to read from any goroutine. A gesture can start a transition only
// while no transition tween is in flight, so a settling tween never races a
// newly requested one.
type PhaseMachine struct {
	phase    atomic.Int32
	progress atomic.Uint64

	value float64
	tween *TweenGroup

	// BloomDuration and BloomEase shape the Tree -> Nebula transition.
	BloomDuration float32
	BloomEase     ease.TweenFunc
	// CollapseDuration and CollapseEase shape the Nebula -> Tree transition.
	CollapseDuration float32
	CollapseEase     ease.TweenFunc

	// OnPhaseChange, if set, is called after every phase change with the
	// previous and new phase.
	OnPhaseChange func(from, to Phase)
}

// NewPhaseMachine returns a machine in PhaseTree with progress 0.
func NewPhaseMachine() *PhaseMachine {
	return &PhaseMachine{
		BloomDuration:    DefaultBloomDuration,
		BloomEase:        ease.OutQuart,
		CollapseDuration: DefaultCollapseDuration,
		CollapseEase:     ease.InOutCubic,
	}
}

// Phase returns the current phase.
func (m *PhaseMachine) Phase() Phase {
	return Phase(m.phase.Load())
}

// Progress returns the current transition progress in [0, 1].
func (m *PhaseMachine) Progress() float64 {
	return math.Float64frombits(m.progress.Load())
}

// InFlight reports whether a transition tween is currently running.
func (m *PhaseMachine) InFlight() bool {
	return m.tween != nil
}

// Trigger feeds the latest accepted gesture to the machine. It returns true
// if the gesture started a transition. OpenPalm in Tree starts Blooming,
// ClosedFist in Nebula starts Collapsing; every other combination, and any
// gesture while a tween is in flight, is ignored.
func (m *PhaseMachine) Trigger(g Gesture) bool {
	if m.tween != nil {
		return false
	}

	switch {
	case m.Phase() == PhaseTree && g == GestureOpenPalm:
		m.begin(PhaseBlooming, PhaseNebula, 1, m.BloomDuration, m.BloomEase)
		return true
	case m.Phase() == PhaseNebula && g == GestureClosedFist:
		m.begin(PhaseCollapsing, PhaseTree, 0, m.CollapseDuration, m.CollapseEase)
		return true
	}
	return false
}

func (m *PhaseMachine) begin(moving, settled Phase, target float64, duration float32, fn ease.TweenFunc) {
	m.setPhase(moving)
	tw := TweenValue(&m.value, target, duration, fn)
	tw.OnSettle = func() {
		m.tween = nil
		m.storeProgress()
		m.setPhase(settled)
	}
	m.tween = tw
}

// Update advances the in-flight transition by dt seconds. When the tween
// reaches its target the machine moves to the settled phase (Nebula or Tree)
// exactly once.
func (m *PhaseMachine) Update(dt float64) {
	if m.tween == nil {
		return
	}
	m.tween.Update(float32(dt))
	m.storeProgress()
}

// Reset forces the machine back to PhaseTree with progress 0, dropping any
// in-flight transition without calling its settle callback.
func (m *PhaseMachine) Reset() {
	m.tween = nil
	m.value = 0
	m.storeProgress()
	m.setPhase(PhaseTree)
}

func (m *PhaseMachine) storeProgress() {
	m.progress.Store(math.Float64bits(clamp01(m.value)))
}

func (m *PhaseMachine) setPhase(p Phase) {
	from := m.Phase()
	if from == p {
		return
	}
	m.phase.Store(int32(p))
	if m.OnPhaseChange != nil {
		m.OnPhaseChange(from, p)
	}
}
