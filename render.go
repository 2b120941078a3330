package treebloom

import (
	"image/color"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// BackgroundColor fills the screen before each frame.
var BackgroundColor = color.RGBA{0x02, 0x03, 0x0a, 0xff}

// drawKind selects the source texture of a draw command.
type drawKind uint8

const (
	drawSquare drawKind = iota // solid quad from the white pixel
	drawDisc                   // soft disc sprite
	drawGlow                   // disc sprite, additive blend
	drawPhoto                  // decoded photo texture
	drawStar                   // topper polygon, triangle fan
)

// color32 is a premultiplied vertex color.
type color32 struct {
	R, G, B, A float32
}

func premultiplied(c Color) color32 {
	a := float32(clamp01(c.A))
	return color32{float32(clamp01(c.R)) * a, float32(clamp01(c.G)) * a, float32(clamp01(c.B)) * a, a}
}

// drawCmd is one depth-sorted draw: a screen-space quad, or a triangle fan
// for drawStar.
type drawCmd struct {
	kind    drawKind
	depth   float64
	order   int
	corners [4][2]float32 // TL, TR, BL, BR
	color   color32
	image   *ebiten.Image

	// fan indexes renderState.fan for drawStar.
	fanStart, fanLen int
}

// renderState holds the render buffers. Everything here is touched only on
// the draw goroutine.
type renderState struct {
	cmds    []drawCmd
	sortBuf []drawCmd
	fan     [][2]float32
	verts   []ebiten.Vertex
	inds    []uint32

	white   *ebiten.Image
	disc    *ebiten.Image
	photos  map[*PhotoAsset]*ebiten.Image
	version uint64
	order   int

	targets targetPool
}

const (
	discTextureSize = 32
	maxBatchVerts   = 1 << 16
)

func (r *renderState) ensureTextures() {
	if r.white != nil {
		return
	}
	r.white = ebiten.NewImage(3, 3)
	r.white.Fill(color.White)

	r.disc = ebiten.NewImage(discTextureSize, discTextureSize)
	half := float32(discTextureSize) / 2
	vector.DrawFilledCircle(r.disc, half, half, half-1, color.White, true)

	r.photos = make(map[*PhotoAsset]*ebiten.Image)
}

// photoImage uploads a decoded photo the first time it is drawn.
func (r *renderState) photoImage(a *PhotoAsset) *ebiten.Image {
	if a == nil || !a.Ready() {
		return nil
	}
	if img, ok := r.photos[a]; ok {
		return img
	}
	img := ebiten.NewImageFromImage(a.Image())
	r.photos[a] = img
	return img
}

// Draw renders the latest Frame to screen.
func (s *Scene) Draw(screen *ebiten.Image) {
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	r := &s.render
	r.ensureTextures()
	if r.version != s.photoVersion {
		r.release(s.photos)
		r.version = s.photoVersion
	}
	b := screen.Bounds()
	s.camera.Viewport = Rect{Width: float64(b.Dx()), Height: float64(b.Dy())}

	target := screen
	if len(s.filters) > 0 {
		target = r.targets.Acquire(b.Dx(), b.Dy())
	}
	target.Fill(BackgroundColor)

	r.cmds = r.cmds[:0]
	r.fan = r.fan[:0]
	r.order = 0
	s.emitFrame()
	s.mergeSort()
	calls, tris := s.submitBatches(target)

	if target != screen {
		out := applyFilters(s.filters, target, &r.targets)
		screen.DrawImage(out, nil)
		if out != target {
			r.targets.Release(out)
		}
		r.targets.Release(target)
	}

	s.drawOverlay(screen)
	s.flushScreenshots(screen)

	if s.debug {
		s.stats.drawTime = time.Since(t0)
		s.stats.instanceCount = frameInstanceCount(&s.frame)
		s.stats.drawCallCount = calls
		s.stats.triangleCount = tris
	}
}

// emitFrame converts the Frame into draw commands.
func (s *Scene) emitFrame() {
	f := &s.frame
	vp := s.camera.ViewProjection()
	group := vp.Mul4(mgl64.HomogRotate3DY(f.GroupRotation))

	s.emitBillboards(f.Stars, vp, drawSquare)
	s.emitBillboards(f.Sparkles, vp, drawGlow)
	s.emitBillboards(f.Particles, group, drawSquare)
	s.emitBillboards(f.Ornaments, group, drawDisc)
	s.emitBillboards(f.Satellites, group, drawGlow)
	if f.Topper.Visible {
		s.emitStar(&f.Topper, group)
		s.emitBillboards(f.Topper.Sparkles, group, drawGlow)
	}
	for i := range f.Photos {
		s.emitPhoto(&f.Photos[i], group, i == f.ActivePhotoIndex)
	}
}

// emitBillboards adds one screen-aligned quad per instance. Scale is the
// half-size in world units.
func (s *Scene) emitBillboards(instances []Instance, vp mgl64.Mat4, kind drawKind) {
	r := &s.render
	for i := range instances {
		in := &instances[i]
		if in.Scale <= 0 || in.Color.A <= 0 {
			continue
		}
		sx, sy, depth, ok := s.camera.Project(in.Position, vp)
		if !ok {
			continue
		}
		half := float32(max(in.Scale*s.camera.PixelsPerUnit(depth), 0.5))
		x, y := float32(sx), float32(sy)
		r.cmds = append(r.cmds, drawCmd{
			kind:  kind,
			depth: depth,
			order: r.next(),
			corners: [4][2]float32{
				{x - half, y - half}, {x + half, y - half},
				{x - half, y + half}, {x + half, y + half},
			},
			color: premultiplied(in.Color),
		})
	}
}

func (r *renderState) next() int {
	r.order++
	return r.order
}

// emitStar projects the topper outline as a triangle fan around its centre.
func (s *Scene) emitStar(t *TopperInstance, vp mgl64.Mat4) {
	r := &s.render
	cx, cy, depth, ok := s.camera.Project(t.Position, vp)
	if !ok {
		return
	}
	start := len(r.fan)
	r.fan = append(r.fan, [2]float32{float32(cx), float32(cy)})
	for _, p := range t.Outline {
		w := t.Position.Add(t.Rotation.Rotate(Vec3{p.X, -p.Y, 0}))
		sx, sy, _, ok := s.camera.Project(w, vp)
		if !ok {
			r.fan = r.fan[:start]
			return
		}
		r.fan = append(r.fan, [2]float32{float32(sx), float32(sy)})
	}
	r.cmds = append(r.cmds, drawCmd{
		kind:     drawStar,
		depth:    depth,
		order:    r.next(),
		color:    premultiplied(t.Color),
		fanStart: start,
		fanLen:   len(r.fan) - start,
	})
}

// emitPhoto adds the white frame card and, once decoded, the picture.
func (s *Scene) emitPhoto(p *PhotoInstance, vp mgl64.Mat4, active bool) {
	if p.Scale <= 0 {
		return
	}
	scale := p.Scale
	if active {
		scale *= 1.5
	}

	r := &s.render
	frame, depth, ok := s.projectRect(p, vp, p.FrameSize, 0, scale)
	if !ok {
		return
	}
	r.cmds = append(r.cmds, drawCmd{
		kind:    drawSquare,
		depth:   depth,
		order:   r.next(),
		corners: frame,
		color:   premultiplied(ColorWhite),
	})

	img := r.photoImage(p.Asset)
	if img == nil {
		return
	}
	pic, _, ok := s.projectRect(p, vp, p.ImageSize, p.ImageOffsetY, scale)
	if !ok {
		return
	}
	r.cmds = append(r.cmds, drawCmd{
		kind:    drawPhoto,
		depth:   depth,
		order:   r.next(),
		corners: pic,
		color:   premultiplied(ColorWhite),
		image:   img,
	})
}

// projectRect projects a size-by-size rectangle in the photo's local XY
// plane, raised by offsetY, and returns its screen corners and the depth of
// the photo centre.
func (s *Scene) projectRect(p *PhotoInstance, vp mgl64.Mat4, size Vec2, offsetY, scale float64) ([4][2]float32, float64, bool) {
	var out [4][2]float32
	hw, hh := size.X/2, size.Y/2
	local := [4]Vec3{
		{-hw, hh + offsetY, 0}, {hw, hh + offsetY, 0},
		{-hw, -hh + offsetY, 0}, {hw, -hh + offsetY, 0},
	}
	for i, l := range local {
		w := p.Position.Add(p.Rotation.Rotate(l.Mul(scale)))
		sx, sy, _, ok := s.camera.Project(w, vp)
		if !ok {
			return out, 0, false
		}
		out[i] = [2]float32{float32(sx), float32(sy)}
	}
	_, _, depth, ok := s.camera.Project(p.Position, vp)
	return out, depth, ok
}

// commandLessOrEqual orders far-to-near, then by emission order. Using <=
// for order keeps the sort stable.
func commandLessOrEqual(a, b *drawCmd) bool {
	if a.depth != b.depth {
		return a.depth > b.depth
	}
	return a.order <= b.order
}

// mergeSort sorts the draw commands in place using sortBuf as scratch.
// Bottom-up merge sort: no allocations once the buffer has grown.
func (s *Scene) mergeSort() {
	r := &s.render
	n := len(r.cmds)
	if n <= 1 {
		return
	}
	if cap(r.sortBuf) < n {
		r.sortBuf = make([]drawCmd, n)
	}
	r.sortBuf = r.sortBuf[:n]

	a, b := r.cmds, r.sortBuf
	swapped := false
	for width := 1; width < n; width *= 2 {
		for lo := 0; lo < n; lo += 2 * width {
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}
	if swapped {
		copy(r.cmds, r.sortBuf)
	}
}

// mergeRun merges the sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []drawCmd, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for ; i < mid && j < hi; k++ {
		if commandLessOrEqual(&src[i], &src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
	}
	k += copy(dst[k:], src[i:mid])
	copy(dst[k:], src[j:hi])
}

// batchKey groups commands that share a texture and blend mode.
type batchKey struct {
	image *ebiten.Image
	glow  bool
}

func (r *renderState) commandBatchKey(cmd *drawCmd) batchKey {
	switch cmd.kind {
	case drawDisc:
		return batchKey{image: r.disc}
	case drawGlow:
		return batchKey{image: r.disc, glow: true}
	case drawPhoto:
		return batchKey{image: cmd.image}
	}
	return batchKey{image: r.white}
}

// submitBatches walks the sorted commands and draws each run sharing a
// batch key with one DrawTriangles32 call. It returns the number of draw
// calls and triangles submitted.
func (s *Scene) submitBatches(target *ebiten.Image) (calls, tris int) {
	r := &s.render
	if len(r.cmds) == 0 {
		return 0, 0
	}
	key := r.commandBatchKey(&r.cmds[0])
	for i := range r.cmds {
		cmd := &r.cmds[i]
		k := r.commandBatchKey(cmd)
		if k != key || len(r.verts) >= maxBatchVerts {
			c, t := r.flush(target, key)
			calls += c
			tris += t
			key = k
		}
		if cmd.kind == drawStar {
			r.appendFan(cmd)
		} else {
			r.appendQuad(cmd, k.image)
		}
	}
	c, t := r.flush(target, key)
	return calls + c, tris + t
}

// appendQuad adds two triangles: TL-TR-BL, TR-BR-BL.
func (r *renderState) appendQuad(cmd *drawCmd, src *ebiten.Image) {
	b := src.Bounds()
	u0, v0 := float32(b.Min.X), float32(b.Min.Y)
	u1, v1 := float32(b.Max.X), float32(b.Max.Y)
	if src == r.white {
		// Sample the centre texel only.
		u0, v0, u1, v1 = 1, 1, 2, 2
	}
	us := [4]float32{u0, u1, u0, u1}
	vs := [4]float32{v0, v0, v1, v1}

	base := uint32(len(r.verts))
	for j := 0; j < 4; j++ {
		r.verts = append(r.verts, ebiten.Vertex{
			DstX: cmd.corners[j][0], DstY: cmd.corners[j][1],
			SrcX: us[j], SrcY: vs[j],
			ColorR: cmd.color.R, ColorG: cmd.color.G, ColorB: cmd.color.B, ColorA: cmd.color.A,
		})
	}
	r.inds = append(r.inds,
		base+0, base+1, base+2,
		base+1, base+3, base+2,
	)
}

// appendFan adds a closed triangle fan from renderState.fan.
func (r *renderState) appendFan(cmd *drawCmd) {
	pts := r.fan[cmd.fanStart : cmd.fanStart+cmd.fanLen]
	if len(pts) < 3 {
		return
	}
	base := uint32(len(r.verts))
	for _, p := range pts {
		r.verts = append(r.verts, ebiten.Vertex{
			DstX: p[0], DstY: p[1],
			SrcX: 1.5, SrcY: 1.5,
			ColorR: cmd.color.R, ColorG: cmd.color.G, ColorB: cmd.color.B, ColorA: cmd.color.A,
		})
	}
	rim := uint32(len(pts) - 1)
	for i := uint32(0); i < rim; i++ {
		r.inds = append(r.inds, base, base+1+i, base+1+(i+1)%rim)
	}
}

func (r *renderState) flush(target *ebiten.Image, key batchKey) (calls, tris int) {
	if len(r.inds) == 0 {
		r.verts = r.verts[:0]
		return 0, 0
	}
	var op ebiten.DrawTrianglesOptions
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	if key.glow {
		op.Blend = ebiten.BlendLighter
	}
	target.DrawTriangles32(r.verts, r.inds, key.image, &op)

	tris = len(r.inds) / 3
	r.verts = r.verts[:0]
	r.inds = r.inds[:0]
	return 1, tris
}

// release frees GPU images held for photos that left the collection.
func (r *renderState) release(live []*PhotoItem) {
	if len(r.photos) == 0 {
		return
	}
	keep := make(map[*PhotoAsset]bool, len(live))
	for _, p := range live {
		keep[p.Asset] = true
	}
	for a, img := range r.photos {
		if !keep[a] {
			img.Deallocate()
			delete(r.photos, a)
		}
	}
}
