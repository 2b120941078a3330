package treebloom

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

const epsilon = 1e-6

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func TestTweenValueReachesTarget(t *testing.T) {
	v := 2.0
	tw := TweenValue(&v, 10, 1.0, ease.Linear)

	tw.Update(0.5)
	if !approxEqual(v, 6, 1e-4) {
		t.Errorf("halfway v = %f, want 6", v)
	}
	if tw.Done {
		t.Error("Done = true at halfway")
	}

	tw.Update(0.6)
	if v != 10 {
		t.Errorf("v = %f, want exactly 10", v)
	}
	if !tw.Done {
		t.Error("Done = false after duration")
	}
}

func TestTweenOnSettleRunsOnce(t *testing.T) {
	v := 0.0
	tw := TweenValue(&v, 1, 0.1, ease.Linear)
	calls := 0
	tw.OnSettle = func() { calls++ }

	for i := 0; i < 10; i++ {
		tw.Update(0.05)
	}
	if calls != 1 {
		t.Errorf("OnSettle calls = %d, want 1", calls)
	}
}

func TestTweenDelayCapturesStartLate(t *testing.T) {
	v := 0.0
	tw := TweenValue(&v, 10, 1.0, ease.Linear)
	tw.Delay = 0.5

	tw.Update(0.25)
	if tw.Started() || v != 0 {
		t.Fatalf("started early: started=%v v=%f", tw.Started(), v)
	}

	// Something else moves the field during the delay.
	v = 4
	tw.Update(0.25)
	if !tw.Started() {
		t.Fatal("Started = false after delay")
	}
	if !approxEqual(v, 4, 1e-4) {
		t.Errorf("v = %f, want 4 at start", v)
	}

	tw.Update(0.5)
	if !approxEqual(v, 7, 1e-4) {
		t.Errorf("v = %f, want 7 halfway from 4 to 10", v)
	}
}

func TestTweenVec3(t *testing.T) {
	p := Vec3{0, 0, 0}
	tw := TweenVec3(&p, Vec3{1, 2, 3}, 0.5, ease.OutCubic)
	for !tw.Done {
		tw.Update(1.0 / 60)
	}
	if p != (Vec3{1, 2, 3}) {
		t.Errorf("p = %v, want [1 2 3]", p)
	}
	if tw.Target(2) != 3 {
		t.Errorf("Target(2) = %f, want 3", tw.Target(2))
	}
}

func TestTweenNegativeDtIgnored(t *testing.T) {
	v := 0.0
	tw := TweenValue(&v, 1, 1, ease.Linear)
	tw.Update(-5)
	if v != 0 || tw.Done {
		t.Errorf("v = %f done=%v after negative dt", v, tw.Done)
	}
}
