package treebloom

import "testing"

func TestCardNextPrevWrap(t *testing.T) {
	c := NewCard("hi")
	if c.ActivePhotoIndex() != -1 {
		t.Fatalf("initial active = %d, want -1", c.ActivePhotoIndex())
	}

	c.NextPhoto(3)
	c.NextPhoto(3)
	c.NextPhoto(3)
	if c.ActivePhotoIndex() != 2 {
		t.Errorf("after 3 Next = %d, want 2", c.ActivePhotoIndex())
	}
	c.NextPhoto(3)
	if c.ActivePhotoIndex() != 0 {
		t.Errorf("Next wrap = %d, want 0", c.ActivePhotoIndex())
	}
	c.PrevPhoto(3)
	if c.ActivePhotoIndex() != 2 {
		t.Errorf("Prev wrap = %d, want 2", c.ActivePhotoIndex())
	}
	c.PrevPhoto(3)
	if c.ActivePhotoIndex() != 1 {
		t.Errorf("Prev = %d, want 1", c.ActivePhotoIndex())
	}
}

func TestCardNoPhotos(t *testing.T) {
	c := NewCard("")
	c.SetActivePhotoIndex(4)
	c.NextPhoto(0)
	if c.ActivePhotoIndex() != -1 {
		t.Errorf("Next with no photos = %d, want -1", c.ActivePhotoIndex())
	}
	c.SetActivePhotoIndex(-7)
	if c.ActivePhotoIndex() != -1 {
		t.Errorf("SetActivePhotoIndex(-7) = %d, want -1", c.ActivePhotoIndex())
	}
}

func TestCardClampActive(t *testing.T) {
	c := NewCard("")
	c.SetActivePhotoIndex(5)
	c.clampActive(10)
	if c.ActivePhotoIndex() != 5 {
		t.Errorf("clamp kept = %d, want 5", c.ActivePhotoIndex())
	}
	c.clampActive(3)
	if c.ActivePhotoIndex() != -1 {
		t.Errorf("clamp dropped = %d, want -1", c.ActivePhotoIndex())
	}
}

func TestInstructions(t *testing.T) {
	tests := map[Phase]string{
		PhaseTree:       "Show 'OPEN PALM' to bloom.",
		PhaseBlooming:   "Magic happening...",
		PhaseNebula:     "Show 'OPEN PALM' to rotate. 'CLOSED FIST' to reset.",
		PhaseCollapsing: "Resetting...",
	}
	for phase, want := range tests {
		if got := Instructions(phase); got != want {
			t.Errorf("Instructions(%v) = %q, want %q", phase, got, want)
		}
	}
}
