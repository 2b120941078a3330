package treebloom

import (
	"math"
	"testing"
)

func TestTopperVisibility(t *testing.T) {
	top := NewTopper(newRand(3))
	for phase, want := range map[Phase]bool{
		PhaseTree:       true,
		PhaseBlooming:   false,
		PhaseNebula:     false,
		PhaseCollapsing: true,
	} {
		if got := top.Transform(1, phase).Visible; got != want {
			t.Errorf("Visible in %v = %v, want %v", phase, got, want)
		}
	}
}

func TestTopperFloatsNearTop(t *testing.T) {
	top := NewTopper(newRand(3))
	if len(top.Outline()) != 10 {
		t.Errorf("outline has %d vertices, want 10", len(top.Outline()))
	}
	for _, tm := range []float64{0, 0.5, 2, 9.7} {
		inst := top.Transform(tm, PhaseTree)
		d := inst.Position.Sub(TopperPosition)
		if d[0] != 0 || d[2] != 0 || math.Abs(d[1]) > floatBob*1.1 {
			t.Errorf("t=%f position %v strays from %v", tm, inst.Position, TopperPosition)
		}
		if len(inst.Sparkles) != topperSparkles {
			t.Errorf("sparkles = %d, want %d", len(inst.Sparkles), topperSparkles)
		}
		if inst.Color != ColorGold {
			t.Errorf("color = %v, want gold", inst.Color)
		}
		if l := inst.Rotation.Len(); !approxEqual(l, 1, 1e-9) {
			t.Errorf("rotation not unit: %f", l)
		}
	}
}

func TestBackdropStars(t *testing.T) {
	b := newBackdrop(newRand(5), 200, 10)
	stars := b.Stars()
	if len(stars) != 200 {
		t.Fatalf("stars = %d, want 200", len(stars))
	}
	for i, s := range stars {
		d := s.Position.Len()
		if d < starRadius-epsilon || d > starRadius+starDepth+epsilon {
			t.Fatalf("star %d at distance %f", i, d)
		}
	}
}

func TestBackdropSparklesDrift(t *testing.T) {
	b := newBackdrop(newRand(5), 1, 30)
	for _, tm := range []float64{0, 1, 10} {
		sp := b.Sparkles(tm)
		if len(sp) != 30 {
			t.Fatalf("sparkles = %d, want 30", len(sp))
		}
		for i, s := range sp {
			base := b.sparkles[i]
			if s.Position[0] != base[0] || s.Position[2] != base[2] {
				t.Fatalf("sparkle %d drifted sideways", i)
			}
			if math.Abs(s.Position[1]-base[1]) > 1+epsilon {
				t.Fatalf("sparkle %d rose %f", i, s.Position[1]-base[1])
			}
			if s.Color.A < 0 || s.Color.A > 0.5 {
				t.Fatalf("sparkle %d alpha %f", i, s.Color.A)
			}
		}
	}
}
