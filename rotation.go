package treebloom

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// Group spin rates in radians per second.
const (
	IdleSpinRate = 0.12
	FastSpinRate = 0.6
)

// Spring shaping the return to rest outside the nebula.
const (
	rotationFrequency = 3.0
	rotationDamping   = 1.0
)

// GroupRotation is the Y-axis rotation applied to the whole tree group.
// In Nebula the group spins, faster while an open palm is shown; in every
// other phase it springs back to 0.
type GroupRotation struct {
	angle    float64
	velocity float64

	spring   harmonica.Spring
	springDt float64
}

// Angle returns the current rotation in radians, in [-pi, pi].
func (r *GroupRotation) Angle() float64 {
	return r.angle
}

// Update advances the rotation by dt seconds.
func (r *GroupRotation) Update(dt float64, phase Phase, gesture Gesture) {
	if dt <= 0 {
		return
	}
	if phase == PhaseNebula {
		rate := IdleSpinRate
		if gesture == GestureOpenPalm {
			rate = FastSpinRate
		}
		r.angle = math.Remainder(r.angle+rate*dt, 2*math.Pi)
		r.velocity = rate
		return
	}

	if r.angle == 0 && r.velocity == 0 {
		return
	}
	if dt != r.springDt {
		r.spring = harmonica.NewSpring(dt, rotationFrequency, rotationDamping)
		r.springDt = dt
	}
	r.angle, r.velocity = r.spring.Update(r.angle, r.velocity, 0)
	if math.Abs(r.angle) < 1e-4 && math.Abs(r.velocity) < 1e-4 {
		r.angle, r.velocity = 0, 0
	}
}

// Reset snaps the rotation to rest.
func (r *GroupRotation) Reset() {
	r.angle, r.velocity = 0, 0
}
