package treebloom

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Filter is a full-screen effect applied to the rendered scene.
type Filter interface {
	// Apply renders src into dst with the effect. dst is cleared and has the
	// same size as src.
	Apply(src, dst *ebiten.Image)
}

// Default post-processing parameters of the card.
const (
	DefaultBloomThreshold   = 0.5
	DefaultBloomSmoothing   = 0.025
	DefaultBloomIntensity   = 1.5
	DefaultBloomRadius      = 16
	DefaultVignetteOffset   = 0.1
	DefaultVignetteDarkness = 0.6
)

// --- Kage shader sources ---
// Ebitengine uses premultiplied alpha; shaders un-premultiply before processing
// and re-premultiply the result.

const thresholdShaderSrc = `//kage:unit pixels
package main

var Threshold float
var Smoothing float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	if c.a == 0 {
		return vec4(0)
	}
	rgb := c.rgb / c.a
	lum := dot(rgb, vec3(0.2126, 0.7152, 0.0722))
	return c * smoothstep(Threshold, Threshold+Smoothing, lum)
}
`

const vignetteShaderSrc = `//kage:unit pixels
package main

var Offset float
var Darkness float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	uv := (dst.xy - imageDstOrigin()) / imageDstSize()
	coord := (uv - vec2(0.5)) * Offset
	rgb := c.rgb
	if c.a > 0 {
		rgb /= c.a
	}
	rgb = mix(rgb, vec3(1.0-Darkness), dot(coord, coord))
	return vec4(rgb*c.a, c.a)
}
`

var (
	thresholdShader *ebiten.Shader
	vignetteShader  *ebiten.Shader
)

func ensureShader(dst **ebiten.Shader, name, src string) *ebiten.Shader {
	if *dst == nil {
		s, err := ebiten.NewShader([]byte(src))
		if err != nil {
			panic("treebloom: failed to compile " + name + " shader: " + err.Error())
		}
		*dst = s
	}
	return *dst
}

// --- Render target pool ---

// targetPool hands out reusable offscreen images keyed by exact size.
// Screen-sized targets change only when the window is resized.
type targetPool struct {
	buckets map[uint64][]*ebiten.Image
}

func poolKey(w, h int) uint64 {
	return uint64(w)<<32 | uint64(h)
}

// Acquire returns a cleared w x h image.
func (p *targetPool) Acquire(w, h int) *ebiten.Image {
	key := poolKey(w, h)
	if stack := p.buckets[key]; len(stack) > 0 {
		img := stack[len(stack)-1]
		p.buckets[key] = stack[:len(stack)-1]
		img.Clear()
		return img
	}
	return ebiten.NewImage(w, h)
}

// Release returns img to the pool. It is cleared on the next Acquire.
func (p *targetPool) Release(img *ebiten.Image) {
	if img == nil {
		return
	}
	b := img.Bounds()
	if p.buckets == nil {
		p.buckets = make(map[uint64][]*ebiten.Image)
	}
	key := poolKey(b.Dx(), b.Dy())
	p.buckets[key] = append(p.buckets[key], img)
}

// Purge deallocates every pooled image.
func (p *targetPool) Purge() {
	for key, stack := range p.buckets {
		for _, img := range stack {
			img.Deallocate()
		}
		delete(p.buckets, key)
	}
}

// --- BlurFilter ---

// BlurFilter applies a Kawase-style blur through a chain of half-size
// downscales followed by bilinear upscales.
type BlurFilter struct {
	Radius int
	pool   *targetPool
	chain  []*ebiten.Image
	op     ebiten.DrawImageOptions
}

// NewBlurFilter creates a blur with the given radius in pixels.
func NewBlurFilter(radius int) *BlurFilter {
	return &BlurFilter{Radius: max(radius, 0), pool: &targetPool{}}
}

func blurPasses(radius int) int {
	if radius <= 1 {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(radius))))
}

func (f *BlurFilter) drawScaled(dst, src *ebiten.Image) {
	op := &f.op
	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.Blend = ebiten.Blend{}
	op.Filter = ebiten.FilterLinear
	sb, db := src.Bounds(), dst.Bounds()
	op.GeoM.Scale(float64(db.Dx())/float64(sb.Dx()), float64(db.Dy())/float64(sb.Dy()))
	dst.DrawImage(src, op)
}

// Apply blurs src into dst.
func (f *BlurFilter) Apply(src, dst *ebiten.Image) {
	if f.Radius <= 0 {
		f.drawScaled(dst, src)
		return
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	f.chain = f.chain[:0]
	current := src
	for i := 0; i < blurPasses(f.Radius); i++ {
		w, h = max(w/2, 1), max(h/2, 1)
		next := f.pool.Acquire(w, h)
		f.drawScaled(next, current)
		f.chain = append(f.chain, next)
		current = next
	}
	for i := len(f.chain) - 2; i >= 0; i-- {
		f.chain[i].Clear()
		f.drawScaled(f.chain[i], current)
		current = f.chain[i]
	}
	f.drawScaled(dst, current)

	for _, img := range f.chain {
		f.pool.Release(img)
	}
}

// --- BloomFilter ---

// BloomFilter adds a blurred copy of the bright parts of the image back on
// top of it.
type BloomFilter struct {
	Threshold float64
	Smoothing float64
	Intensity float64
	blur      *BlurFilter
	pool      *targetPool
	shaderOp  ebiten.DrawRectShaderOptions
	op        ebiten.DrawImageOptions
}

// NewBloomFilter creates a bloom with the card's default parameters.
func NewBloomFilter() *BloomFilter {
	return &BloomFilter{
		Threshold: DefaultBloomThreshold,
		Smoothing: DefaultBloomSmoothing,
		Intensity: DefaultBloomIntensity,
		blur:      NewBlurFilter(DefaultBloomRadius),
		pool:      &targetPool{},
	}
}

// SetRadius sets the blur radius of the glow in pixels.
func (f *BloomFilter) SetRadius(radius int) {
	f.blur.Radius = max(radius, 0)
}

// Apply composites src plus its bloom into dst.
func (f *BloomFilter) Apply(src, dst *ebiten.Image) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	bright := f.pool.Acquire(w, h)
	f.shaderOp.Images[0] = src
	f.shaderOp.Uniforms = map[string]any{
		"Threshold": float32(f.Threshold),
		"Smoothing": float32(f.Smoothing),
	}
	bright.DrawRectShader(w, h, ensureShader(&thresholdShader, "threshold", thresholdShaderSrc), &f.shaderOp)

	glow := f.pool.Acquire(w, h)
	f.blur.Apply(bright, glow)

	op := &f.op
	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.Blend = ebiten.Blend{}
	dst.DrawImage(src, op)
	op.ColorScale.Scale(float32(f.Intensity), float32(f.Intensity), float32(f.Intensity), 1)
	op.Blend = ebiten.BlendLighter
	dst.DrawImage(glow, op)

	f.pool.Release(bright)
	f.pool.Release(glow)
}

// --- VignetteFilter ---

// VignetteFilter fades the image toward a grey level away from the centre.
type VignetteFilter struct {
	Offset   float64
	Darkness float64
	op       ebiten.DrawRectShaderOptions
}

// NewVignetteFilter creates a vignette with the card's default parameters.
func NewVignetteFilter() *VignetteFilter {
	return &VignetteFilter{Offset: DefaultVignetteOffset, Darkness: DefaultVignetteDarkness}
}

// Apply renders the vignetted src into dst.
func (f *VignetteFilter) Apply(src, dst *ebiten.Image) {
	b := src.Bounds()
	f.op.Images[0] = src
	f.op.Uniforms = map[string]any{
		"Offset":   float32(f.Offset),
		"Darkness": float32(f.Darkness),
	}
	dst.DrawRectShader(b.Dx(), b.Dy(), ensureShader(&vignetteShader, "vignette", vignetteShaderSrc), &f.op)
}

// --- Post-processing chain ---

// DefaultFilters returns the card's post-processing chain: bloom, then
// vignette.
func DefaultFilters() []Filter {
	return []Filter{NewBloomFilter(), NewVignetteFilter()}
}

// SetFilters sets the post-processing chain run over the 3D scene before
// the text overlay is drawn. Nil disables post-processing.
func (s *Scene) SetFilters(filters []Filter) {
	s.filters = filters
	s.render.targets.Purge()
}

// Filters returns the post-processing chain.
func (s *Scene) Filters() []Filter {
	return s.filters
}

// applyFilters runs filters over src, ping-ponging between pooled targets,
// and returns the image holding the result. Every acquired target except
// the returned one goes back to the pool.
func applyFilters(filters []Filter, src *ebiten.Image, pool *targetPool) *ebiten.Image {
	if len(filters) == 0 {
		return src
	}
	b := src.Bounds()
	current := src
	for _, f := range filters {
		next := pool.Acquire(b.Dx(), b.Dy())
		f.Apply(current, next)
		if current != src {
			pool.Release(current)
		}
		current = next
	}
	return current
}
