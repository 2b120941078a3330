package treebloom

import "sync/atomic"

// Gesture is a hand gesture category understood by the engine.
type Gesture uint8

const (
	GestureNone       Gesture = iota // no hand, or an unrecognized/low-confidence sample
	GestureOpenPalm                  // blooms the tree; spins the nebula while held
	GestureClosedFist                // collapses the nebula back into the tree
	GesturePointingUp                // recognized but currently unbound
)

// String returns the recognizer's category name for the gesture.
func (g Gesture) String() string {
	switch g {
	case GestureOpenPalm:
		return "Open_Palm"
	case GestureClosedFist:
		return "Closed_Fist"
	case GesturePointingUp:
		return "Pointing_Up"
	default:
		return "None"
	}
}

// ParseGesture maps a recognizer category name to a Gesture. Unknown names
// map to GestureNone.
func ParseGesture(name string) Gesture {
	switch name {
	case "Open_Palm":
		return GestureOpenPalm
	case "Closed_Fist":
		return GestureClosedFist
	case "Pointing_Up":
		return GesturePointingUp
	}
	return GestureNone
}

// MinGestureConfidence is the exclusive lower bound for accepting a sample.
const MinGestureConfidence = 0.5

// GestureSample is one classification produced by the vision collaborator
// for a single video frame.
type GestureSample struct {
	Category   Gesture
	Confidence float64
}

// Accepted returns the sample's category if its confidence is strictly
// above MinGestureConfidence, and GestureNone otherwise.
func (s GestureSample) Accepted() Gesture {
	if s.Confidence > MinGestureConfidence {
		return s.Category
	}
	return GestureNone
}

// GestureBridge holds the latest accepted gesture. The perception tick
// writes it; the frame tick reads it once per frame, forwards it to the
// PhaseMachine, and uses it to modulate the nebula spin.
type GestureBridge struct {
	latest   atomic.Uint32
	degraded atomic.Bool
}

// Accept consumes the ranked classifications for one video frame. Only the
// top classification is considered. An empty result or a low-confidence top
// sample is coerced to GestureNone. Accept returns the stored gesture.
func (b *GestureBridge) Accept(samples []GestureSample) Gesture {
	g := GestureNone
	if len(samples) > 0 && !b.degraded.Load() {
		g = samples[0].Accepted()
	}
	b.latest.Store(uint32(g))
	return g
}

// Latest returns the most recently accepted gesture.
func (b *GestureBridge) Latest() Gesture {
	return Gesture(b.latest.Load())
}

// Clear resets the latest gesture to GestureNone.
func (b *GestureBridge) Clear() {
	b.latest.Store(uint32(GestureNone))
}

// Degrade switches the bridge into permanent "no gestures" mode. Used when
// the recognizer cannot be initialized.
func (b *GestureBridge) Degrade() {
	b.degraded.Store(true)
	b.Clear()
}

// Degraded reports whether the bridge has been degraded.
func (b *GestureBridge) Degraded() bool {
	return b.degraded.Load()
}

// set stores g regardless of degradation. Injected gestures use it so
// scripted and keyboard input keep working without a recognizer.
func (b *GestureBridge) set(g Gesture) {
	b.latest.Store(uint32(g))
}
