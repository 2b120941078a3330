package treebloom

import (
	"math"
	"testing"
)

func TestGroupRotationSpinsInNebula(t *testing.T) {
	var r GroupRotation
	r.Update(1, PhaseNebula, GestureNone)
	if !approxEqual(r.Angle(), IdleSpinRate, epsilon) {
		t.Errorf("idle spin = %f, want %f", r.Angle(), IdleSpinRate)
	}
	r.Update(1, PhaseNebula, GestureOpenPalm)
	if !approxEqual(r.Angle(), IdleSpinRate+FastSpinRate, epsilon) {
		t.Errorf("fast spin = %f, want %f", r.Angle(), IdleSpinRate+FastSpinRate)
	}
}

func TestGroupRotationWraps(t *testing.T) {
	var r GroupRotation
	for i := 0; i < 600; i++ {
		r.Update(1.0/60, PhaseNebula, GestureOpenPalm)
		if math.Abs(r.Angle()) > math.Pi+epsilon {
			t.Fatalf("angle %f outside [-pi, pi]", r.Angle())
		}
	}
}

func TestGroupRotationSpringsBack(t *testing.T) {
	var r GroupRotation
	for i := 0; i < 120; i++ {
		r.Update(1.0/60, PhaseNebula, GestureOpenPalm)
	}
	if r.Angle() == 0 {
		t.Fatal("no spin in nebula")
	}
	for i := 0; i < 600; i++ {
		r.Update(1.0/60, PhaseCollapsing, GestureClosedFist)
	}
	if r.Angle() != 0 {
		t.Errorf("angle after 10s outside nebula = %f, want 0", r.Angle())
	}
}

func TestGroupRotationStillInTree(t *testing.T) {
	var r GroupRotation
	r.Update(1.0/60, PhaseTree, GestureOpenPalm)
	r.Update(1.0/60, PhaseBlooming, GestureOpenPalm)
	if r.Angle() != 0 {
		t.Errorf("angle = %f, want 0 outside nebula", r.Angle())
	}
	r.Update(0, PhaseNebula, GestureNone)
	if r.Angle() != 0 {
		t.Error("zero dt moved the rotation")
	}
}
