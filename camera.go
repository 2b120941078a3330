package treebloom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween/ease"
)

// Camera is a perspective camera orbiting a target point. It maps world
// space to the screen for the render adapter and maps the pointer back onto
// the z = 0 plane for field repulsion.
type Camera struct {
	// Target is the world point the camera orbits and looks at.
	Target Vec3
	// Distance is the distance from Target to the eye.
	Distance float64
	// Azimuth is the rotation about +Y in radians; 0 puts the eye on +Z.
	Azimuth float64
	// Polar is the angle from +Y in radians; pi/2 is level with the target.
	Polar float64
	// FOV is the vertical field of view in degrees.
	FOV float64
	// Near and Far are the clip plane distances.
	Near, Far float64
	// Viewport is the screen-space rectangle this camera renders into.
	Viewport Rect

	// Orbit limits.
	MinPolar, MaxPolar       float64
	MinDistance, MaxDistance float64

	dolly *TweenGroup
}

// NewCamera returns the default camera: 25 units in front of the origin
// with a 45 degree field of view.
func NewCamera(viewport Rect) *Camera {
	return &Camera{
		Distance:    25,
		Polar:       math.Pi / 2,
		FOV:         45,
		Near:        0.1,
		Far:         1000,
		Viewport:    viewport,
		MinPolar:    math.Pi / 3,
		MaxPolar:    math.Pi / 1.5,
		MinDistance: 10,
		MaxDistance: 40,
	}
}

// Eye returns the camera position in world space.
func (c *Camera) Eye() Vec3 {
	sp, cp := math.Sincos(c.Polar)
	sa, ca := math.Sincos(c.Azimuth)
	return c.Target.Add(Vec3{c.Distance * sp * sa, c.Distance * cp, c.Distance * sp * ca})
}

func (c *Camera) aspect() float64 {
	if c.Viewport.Height <= 0 {
		return 1
	}
	return c.Viewport.Width / c.Viewport.Height
}

// View returns the world-to-camera matrix.
func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Eye(), c.Target, Vec3{0, 1, 0})
}

// Projection returns the perspective projection matrix.
func (c *Camera) Projection() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.FOV), c.aspect(), c.Near, c.Far)
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() mgl64.Mat4 {
	return c.Projection().Mul4(c.View())
}

// Orbit rotates the camera around the target, clamping the polar angle.
func (c *Camera) Orbit(dAzimuth, dPolar float64) {
	c.Azimuth += dAzimuth
	c.Polar = mgl64.Clamp(c.Polar+dPolar, c.MinPolar, c.MaxPolar)
}

// Dolly multiplies the distance by factor, clamped to the distance limits.
// Any running DollyTo animation is dropped.
func (c *Camera) Dolly(factor float64) {
	c.dolly = nil
	c.Distance = mgl64.Clamp(c.Distance*factor, c.MinDistance, c.MaxDistance)
}

// DollyTo animates the distance to the given value over duration seconds.
func (c *Camera) DollyTo(distance float64, duration float32, fn ease.TweenFunc) {
	distance = mgl64.Clamp(distance, c.MinDistance, c.MaxDistance)
	c.dolly = TweenValue(&c.Distance, distance, duration, fn)
}

// update advances the dolly animation. Called from Scene.Update.
func (c *Camera) update(dt float32) {
	if c.dolly == nil {
		return
	}
	c.dolly.Update(dt)
	if c.dolly.Done {
		c.dolly = nil
	}
}

// Project maps a world point to screen coordinates. depth is the clip-space
// w (distance along the view axis). ok is false for points behind the
// near plane.
func (c *Camera) Project(world Vec3, vp mgl64.Mat4) (sx, sy, depth float64, ok bool) {
	clip := vp.Mul4x1(world.Vec4(1))
	w := clip[3]
	if w <= c.Near {
		return 0, 0, w, false
	}
	nx, ny := clip[0]/w, clip[1]/w
	sx = c.Viewport.X + (nx+1)/2*c.Viewport.Width
	sy = c.Viewport.Y + (1-ny)/2*c.Viewport.Height
	return sx, sy, w, true
}

// PixelsPerUnit returns how many screen pixels one world unit spans at the
// given depth.
func (c *Camera) PixelsPerUnit(depth float64) float64 {
	if depth <= 0 {
		return 0
	}
	return c.Viewport.Height / 2 / (math.Tan(mgl64.DegToRad(c.FOV)/2) * depth)
}

// ScreenToNDC converts screen coordinates to normalized device coordinates
// in [-1, 1] with +Y up.
func (c *Camera) ScreenToNDC(sx, sy float64) (float64, float64) {
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return 0, 0
	}
	nx := (sx-c.Viewport.X)/c.Viewport.Width*2 - 1
	ny := 1 - (sy-c.Viewport.Y)/c.Viewport.Height*2
	return nx, ny
}

// PointerWorld maps a pointer in NDC onto the z = 0 plane by scaling it with
// the half extents of the visible area at the target distance.
func (c *Camera) PointerWorld(nx, ny float64) Vec3 {
	halfH := math.Tan(mgl64.DegToRad(c.FOV)/2) * c.Distance
	halfW := halfH * c.aspect()
	return Vec3{nx * halfW, ny * halfH, 0}
}
