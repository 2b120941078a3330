package treebloom

import (
	"math"
	"math/rand/v2"
)

// ConePoint returns a random point inside an upright cone of the given height
// and base radius, centered vertically on the origin. The radial draw is
// sqrt-scaled so points are uniform over each horizontal slice.
func ConePoint(rng *rand.Rand, height, radius float64) Vec3 {
	y := rng.Float64() * height
	rAtY := (1 - y/height) * radius
	angle := rng.Float64() * math.Pi * 2
	r := math.Sqrt(rng.Float64()) * rAtY

	return Vec3{math.Cos(angle) * r, y - height/2, math.Sin(angle) * r}
}

// SpiralPoint returns the point at parameter t in [0, 1] along a spiral that
// winds turns times around a cone of the given height and base radius.
func SpiralPoint(t, height, radius, turns float64) Vec3 {
	y := t*height - height/2
	rAtY := (1 - t) * radius
	angle := t * math.Pi * 2 * turns

	return Vec3{math.Cos(angle) * rAtY, y, math.Sin(angle) * rAtY}
}

// nebulaSpread is the full vertical thickness of the nebula disk.
const nebulaSpread = 4.0

// NebulaPoint returns a random point in a flat annulus between minRadius and
// maxRadius, with a small vertical spread.
func NebulaPoint(rng *rand.Rand, minRadius, maxRadius float64) Vec3 {
	angle := rng.Float64() * math.Pi * 2
	r := math.Sqrt(rng.Float64())*(maxRadius-minRadius) + minRadius
	y := (rng.Float64() - 0.5) * nebulaSpread

	return Vec3{math.Cos(angle) * r, y, math.Sin(angle) * r}
}

// RandomDirection returns a unit vector built by normalizing a point drawn
// uniformly from the cube [-0.5, 0.5]^3. A degenerate draw falls back to +Y.
func RandomDirection(rng *rand.Rand) Vec3 {
	v := Vec3{rng.Float64() - 0.5, rng.Float64() - 0.5, rng.Float64() - 0.5}
	if v.Len() < 1e-9 {
		return Vec3{0, 1, 0}
	}
	return v.Normalize()
}

// ShellPoint returns a random point between radius and radius+depth from the
// origin, uniform over direction.
func ShellPoint(rng *rand.Rand, radius, depth float64) Vec3 {
	// Uniform direction on the sphere via z/phi sampling.
	z := rng.Float64()*2 - 1
	phi := rng.Float64() * math.Pi * 2
	s := math.Sqrt(1 - z*z)
	r := radius + rng.Float64()*depth
	return Vec3{s * math.Cos(phi) * r, z * r, s * math.Sin(phi) * r}
}

// StarOutline returns the 2*points vertices of a star polygon in the XY
// plane, alternating outer and inner radius, starting at angle -pi/2.
func StarOutline(points int, outerRadius, innerRadius float64) []Vec2 {
	out := make([]Vec2, 0, points*2)
	for i := 0; i < points*2; i++ {
		angle := float64(i)*math.Pi/float64(points) - math.Pi/2
		r := innerRadius
		if i%2 == 0 {
			r = outerRadius
		}
		out = append(out, Vec2{math.Cos(angle) * r, math.Sin(angle) * r})
	}
	return out
}

// lerpVec3 interpolates between a and b by t. Written as a*(1-t) + b*t so
// t == 0 returns a and t == 1 returns b exactly.
func lerpVec3(a, b Vec3, t float64) Vec3 {
	u := 1 - t
	return Vec3{
		a[0]*u + b[0]*t,
		a[1]*u + b[1]*t,
		a[2]*u + b[2]*t,
	}
}

// lerp linearly interpolates between a and b by t.
func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

// newRand returns a PCG-backed generator. A zero seed draws a fresh one.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
