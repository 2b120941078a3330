package treebloom

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func testCamera() *Camera {
	return NewCamera(Rect{Width: 800, Height: 600})
}

func TestCameraDefaults(t *testing.T) {
	cam := testCamera()
	eye := cam.Eye()
	if !eye.ApproxEqualThreshold(Vec3{0, 0, 25}, 1e-9) {
		t.Errorf("Eye = %v, want [0 0 25]", eye)
	}
	if cam.FOV != 45 {
		t.Errorf("FOV = %f, want 45", cam.FOV)
	}
}

func TestCameraProjectTargetToCenter(t *testing.T) {
	cam := testCamera()
	sx, sy, depth, ok := cam.Project(Vec3{}, cam.ViewProjection())
	if !ok {
		t.Fatal("target not visible")
	}
	if !approxEqual(sx, 400, 1e-6) || !approxEqual(sy, 300, 1e-6) {
		t.Errorf("Project(origin) = (%f,%f), want (400,300)", sx, sy)
	}
	if !approxEqual(depth, 25, 1e-6) {
		t.Errorf("depth = %f, want 25", depth)
	}
}

func TestCameraProjectYUp(t *testing.T) {
	cam := testCamera()
	vp := cam.ViewProjection()
	_, syUp, _, _ := cam.Project(Vec3{0, 1, 0}, vp)
	sxRight, _, _, _ := cam.Project(Vec3{1, 0, 0}, vp)
	if syUp >= 300 {
		t.Errorf("+Y projected to sy=%f, want above centre", syUp)
	}
	if sxRight <= 400 {
		t.Errorf("+X projected to sx=%f, want right of centre", sxRight)
	}

	// One unit at the target distance spans PixelsPerUnit pixels.
	want := cam.PixelsPerUnit(25)
	if !approxEqual(300-syUp, want, 1e-6) {
		t.Errorf("1 unit = %f px, want %f", 300-syUp, want)
	}
}

func TestCameraProjectBehind(t *testing.T) {
	cam := testCamera()
	if _, _, _, ok := cam.Project(Vec3{0, 0, 30}, cam.ViewProjection()); ok {
		t.Error("point behind the eye reported visible")
	}
}

func TestCameraScreenToNDC(t *testing.T) {
	cam := testCamera()
	tests := []struct {
		sx, sy, nx, ny float64
	}{
		{400, 300, 0, 0},
		{0, 0, -1, 1},
		{800, 600, 1, -1},
	}
	for _, tt := range tests {
		nx, ny := cam.ScreenToNDC(tt.sx, tt.sy)
		if !approxEqual(nx, tt.nx, epsilon) || !approxEqual(ny, tt.ny, epsilon) {
			t.Errorf("ScreenToNDC(%v,%v) = (%f,%f), want (%v,%v)", tt.sx, tt.sy, nx, ny, tt.nx, tt.ny)
		}
	}
}

func TestCameraPointerWorld(t *testing.T) {
	cam := testCamera()
	if p := cam.PointerWorld(0, 0); p != (Vec3{}) {
		t.Errorf("PointerWorld(0,0) = %v, want origin", p)
	}
	halfH := math.Tan(math.Pi/8) * 25
	p := cam.PointerWorld(1, 1)
	if !approxEqual(p[1], halfH, epsilon) || !approxEqual(p[0], halfH*800/600, epsilon) || p[2] != 0 {
		t.Errorf("PointerWorld(1,1) = %v, want [%f %f 0]", p, halfH*800/600, halfH)
	}

	// The pointer at the screen corner projects back to that corner.
	sx, sy, _, _ := cam.Project(p, cam.ViewProjection())
	if !approxEqual(sx, 800, 1e-6) || !approxEqual(sy, 0, 1e-6) {
		t.Errorf("corner round trip = (%f,%f), want (800,0)", sx, sy)
	}
}

func TestCameraOrbitClampsPolar(t *testing.T) {
	cam := testCamera()
	cam.Orbit(0.3, 10)
	if cam.Polar != cam.MaxPolar {
		t.Errorf("Polar = %f, want clamped %f", cam.Polar, cam.MaxPolar)
	}
	if cam.Azimuth != 0.3 {
		t.Errorf("Azimuth = %f, want 0.3", cam.Azimuth)
	}
	cam.Orbit(0, -10)
	if cam.Polar != cam.MinPolar {
		t.Errorf("Polar = %f, want clamped %f", cam.Polar, cam.MinPolar)
	}
}

func TestCameraDolly(t *testing.T) {
	cam := testCamera()
	cam.Dolly(0.1)
	if cam.Distance != cam.MinDistance {
		t.Errorf("Distance = %f, want %f", cam.Distance, cam.MinDistance)
	}
	cam.Dolly(100)
	if cam.Distance != cam.MaxDistance {
		t.Errorf("Distance = %f, want %f", cam.Distance, cam.MaxDistance)
	}
}

func TestCameraDollyTo(t *testing.T) {
	cam := testCamera()
	cam.DollyTo(15, 1, ease.Linear)
	cam.update(0.5)
	if !approxEqual(cam.Distance, 20, 1e-4) {
		t.Errorf("halfway Distance = %f, want 20", cam.Distance)
	}
	cam.update(0.6)
	if cam.Distance != 15 || cam.dolly != nil {
		t.Errorf("Distance = %f dolly=%v, want 15 and done", cam.Distance, cam.dolly)
	}
}
