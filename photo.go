package treebloom

import (
	"io"
	"math"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/tanema/gween/ease"
)

// PhotoRecord is one photograph shown on the tree and in the nebula.
type PhotoRecord struct {
	ID        string
	SourceURI string
	Title     string

	// open, when set, replaces URI resolution. Dropped files use it.
	open func() (io.ReadCloser, error)
}

// Upload is one user-provided asset: a display name plus where to read it
// from. Open takes precedence over URI when both are set.
type Upload struct {
	Name string
	URI  string
	Open func() (io.ReadCloser, error)
}

// PhotoOrigin tags where the current photo list came from.
type PhotoOrigin uint8

const (
	PhotoOriginDefault      PhotoOrigin = iota // the built-in photo set
	PhotoOriginUserProvided                    // at least one upload has replaced the defaults
)

// DefaultPhotos returns the built-in photo set.
func DefaultPhotos() []PhotoRecord {
	src := []struct{ uri, title string }{
		{"https://images.unsplash.com/photo-1563241527-3004b7be0fee?auto=format&fit=crop&w=600", "Pink Bouquet"},
		{"https://images.unsplash.com/photo-1583093952416-8c4309c86918?auto=format&fit=crop&w=600", "Traditional Beauty"},
		{"https://images.unsplash.com/photo-1506784983877-45594efa4cbe?auto=format&fit=crop&w=600", "365 Days"},
		{"https://images.unsplash.com/photo-1542296332-2e44a99cfef9?auto=format&fit=crop&w=600", "Snowy Night"},
		{"https://images.unsplash.com/photo-1516575150278-77136aed6920?auto=format&fit=crop&w=600", "Warm Embrace"},
		{"https://images.unsplash.com/photo-1478131143081-80f7f84ca84d?auto=format&fit=crop&w=600", "Night Stroll"},
		{"https://images.unsplash.com/photo-1495616811223-4d98c6e9d869?auto=format&fit=crop&w=600", "Sunset Heart"},
		{"https://images.unsplash.com/photo-1501854140884-074bf86ee911?auto=format&fit=crop&w=600", "Green Hills"},
		{"https://images.unsplash.com/photo-1522858547137-f1dcec554f55?auto=format&fit=crop&w=600", "Retro Love"},
		{"https://images.unsplash.com/photo-1529626455594-4ff0802cfb7e?auto=format&fit=crop&w=600", "Flowers & Smiles"},
		{"https://images.unsplash.com/photo-1507525428034-b723cf961d3e?auto=format&fit=crop&w=600", "Beach Day"},
		{"https://images.unsplash.com/photo-1441974231531-c6227db76b6e?auto=format&fit=crop&w=600", "Peace in Woods"},
		{"https://images.unsplash.com/photo-1621112904887-41553d46784e?auto=format&fit=crop&w=600", "Holding Hands"},
		{"https://images.unsplash.com/photo-1438761681033-6461ffad8d80?auto=format&fit=crop&w=600", "Lakeside"},
	}
	out := make([]PhotoRecord, len(src))
	for i, s := range src {
		out[i] = PhotoRecord{
			ID:        "default-" + strconv.Itoa(i+1),
			SourceURI: s.uri,
			Title:     s.title,
		}
	}
	return out
}

// PhotoCollection is the ordered list of photos plus its origin tag.
// Uploads replace the list while it still holds the defaults and append to
// it afterwards. It is owned by the frame tick goroutine.
type PhotoCollection struct {
	photos  []PhotoRecord
	origin  PhotoOrigin
	version uint64
}

// NewPhotoCollection returns a collection holding defaults, tagged
// PhotoOriginDefault.
func NewPhotoCollection(defaults []PhotoRecord) *PhotoCollection {
	photos := make([]PhotoRecord, len(defaults))
	copy(photos, defaults)
	return &PhotoCollection{photos: photos, origin: PhotoOriginDefault}
}

// Photos returns the current list. The returned slice MUST NOT be mutated.
func (c *PhotoCollection) Photos() []PhotoRecord {
	return c.photos
}

// Len returns the number of photos.
func (c *PhotoCollection) Len() int {
	return len(c.photos)
}

// Origin returns the origin tag.
func (c *PhotoCollection) Origin() PhotoOrigin {
	return c.origin
}

// Version increments on every change to the list.
func (c *PhotoCollection) Version() uint64 {
	return c.version
}

// AddUploads converts uploads to photo records with fresh IDs. If the
// collection still holds the defaults they are replaced; otherwise the new
// records are appended. An empty upload list is a no-op. The new records
// are returned.
func (c *PhotoCollection) AddUploads(uploads []Upload) []PhotoRecord {
	if len(uploads) == 0 {
		return nil
	}
	added := make([]PhotoRecord, len(uploads))
	for i, u := range uploads {
		added[i] = PhotoRecord{
			ID:        uuid.NewString(),
			SourceURI: u.URI,
			Title:     titleFromName(u.Name),
			open:      u.Open,
		}
	}

	if c.origin == PhotoOriginDefault {
		c.photos = added
		c.origin = PhotoOriginUserProvided
	} else {
		c.photos = append(c.photos, added...)
	}
	c.version++
	return added
}

// titleFromName returns the part of the file's base name before its first dot.
func titleFromName(name string) string {
	base := path.Base(filepath.ToSlash(name))
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}

// Photo layout constants.
const (
	photoSpiralHeight = 14
	photoSpiralRadius = 6.5
	photoSpiralTurns  = 6
	photoNebulaMin    = 18
)

// PhotoSpiralT maps a photo index to its parameter on the tree spiral. The
// span is compressed to [0.05, 0.95) so photos sit between ornaments.
func PhotoSpiralT(index, total int) float64 {
	if total <= 0 {
		return 0.05
	}
	return float64(index)/float64(total)*0.9 + 0.05
}

// PhotoTreePosition returns a photo's tree-layout position. The spiral
// radius is larger than the ornament spiral so photos float just outside it.
func PhotoTreePosition(index, total int) Vec3 {
	return SpiralPoint(PhotoSpiralT(index, total), photoSpiralHeight, photoSpiralRadius, photoSpiralTurns)
}

// PhotoNebulaRadius is the radius of the nebula photo ring for total photos.
func PhotoNebulaRadius(total int) float64 {
	return math.Max(photoNebulaMin, 12+float64(total)*0.5)
}

// PhotoNebulaPosition returns a photo's nebula-layout position, evenly
// spaced around a ring in the y = 0 plane.
func PhotoNebulaPosition(index, total int) Vec3 {
	if total <= 0 {
		total = 1
	}
	angle := float64(index) / float64(total) * math.Pi * 2
	r := PhotoNebulaRadius(total)
	return Vec3{math.Cos(angle) * r, 0, math.Sin(angle) * r}
}

// Photo animation timings.
const (
	photoTreeDuration        = 2.0
	photoTreeScaleDuration   = 1.5
	photoNebulaDuration      = 2.5
	photoNebulaScaleDuration = 2.0
	photoNebulaDelay         = 0.5
	photoTreeScale           = 0.4
	photoNebulaScale         = 1.0
	photoNebulaBob           = 0.5
)

// Photo frame dimensions by orientation.
var (
	landscapeFrame = Vec2{4.2, 3.5}
	landscapeImage = Vec2{3.8, 2.8}
	portraitFrame  = Vec2{3.2, 4.5}
	portraitImage  = Vec2{2.8, 3.8}
)

const photoImageOffsetY = 0.2

type photoTarget uint8

const (
	photoTargetNone photoTarget = iota
	photoTargetTree
	photoTargetNebula
)

func targetForPhase(p Phase) photoTarget {
	if p.treeShaped() {
		return photoTargetTree
	}
	return photoTargetNebula
}

// PhotoItem animates one photo between its tree and nebula layouts. Unlike
// the particle fields it does not follow TransitionProgress: each photo runs
// its own tweens whenever the phase crosses between the tree-shaped phases
// (Tree, Collapsing) and the nebula-shaped ones (Blooming, Nebula).
type PhotoItem struct {
	Record PhotoRecord
	Asset  *PhotoAsset

	index, total int
	treePos      Vec3
	nebulaPos    Vec3

	position   Vec3
	scale      float64
	yaw, pitch float64

	target     photoTarget
	posTween   *TweenGroup
	scaleTween *TweenGroup
}

// NewPhotoItem creates a photo at its tree position with zero scale and
// immediately starts the animation for phase.
func NewPhotoItem(rec PhotoRecord, index, total int, phase Phase) *PhotoItem {
	p := &PhotoItem{Record: rec}
	p.setLayout(index, total)
	p.position = p.treePos
	p.SetPhase(phase)
	return p
}

func (p *PhotoItem) setLayout(index, total int) {
	p.index, p.total = index, total
	p.treePos = PhotoTreePosition(index, total)
	p.nebulaPos = PhotoNebulaPosition(index, total)
}

// Relayout moves the photo to a new slot, e.g. after uploads changed the
// photo count, and retargets its animation if the slot changed.
func (p *PhotoItem) Relayout(index, total int, phase Phase) {
	if index == p.index && total == p.total {
		return
	}
	p.setLayout(index, total)
	p.target = photoTargetNone
	p.SetPhase(phase)
}

// SetPhase starts the tweens for phase unless the photo is already heading
// to that layout.
func (p *PhotoItem) SetPhase(phase Phase) {
	target := targetForPhase(phase)
	if target == p.target {
		return
	}
	p.target = target

	switch target {
	case photoTargetTree:
		p.posTween = TweenVec3(&p.position, p.treePos, photoTreeDuration, ease.OutCubic)
		p.scaleTween = TweenValue(&p.scale, photoTreeScale, photoTreeScaleDuration, ease.OutQuad)
	case photoTargetNebula:
		p.posTween = TweenVec3(&p.position, p.nebulaPos, photoNebulaDuration, ease.OutElastic)
		p.posTween.Delay = photoNebulaDelay
		p.scaleTween = TweenValue(&p.scale, photoNebulaScale, photoNebulaScaleDuration, ease.OutQuad)
		p.scaleTween.Delay = photoNebulaDelay
	}
}

// Update advances the photo's tweens and orientation.
func (p *PhotoItem) Update(dt float32, time float64, phase Phase) {
	p.SetPhase(phase)
	if p.posTween != nil {
		p.posTween.Update(dt)
	}
	if p.scaleTween != nil {
		p.scaleTween.Update(dt)
	}

	pos := p.displayPosition(time, phase)
	switch phase {
	case PhaseNebula:
		// Face the center of the nebula.
		p.yaw, p.pitch = facing(pos, Vec3{})
	case PhaseTree:
		// Face away from the trunk at the photo's own height.
		yaw, _ := facing(pos, Vec3{0, pos[1], 0})
		p.yaw, p.pitch = yaw+math.Pi, 0
	}
}

// displayPosition adds the nebula bob on top of the tweened position.
func (p *PhotoItem) displayPosition(time float64, phase Phase) Vec3 {
	pos := p.position
	if phase == PhaseNebula {
		pos[1] = p.nebulaPos[1] + math.Sin(time+float64(p.index))*photoNebulaBob
	}
	return pos
}

// facing returns the yaw (about +Y) and pitch (about +X) that turn the +Z
// axis at from toward to.
func facing(from, to Vec3) (yaw, pitch float64) {
	d := to.Sub(from)
	horiz := math.Hypot(d[0], d[2])
	if horiz == 0 && d[1] == 0 {
		return 0, 0
	}
	return math.Atan2(d[0], d[2]), -math.Atan2(d[1], horiz)
}

// Index returns the photo's slot in the collection.
func (p *PhotoItem) Index() int {
	return p.index
}

// Position returns the tweened position without the nebula bob.
func (p *PhotoItem) Position() Vec3 {
	return p.position
}

// Scale returns the tweened scale.
func (p *PhotoItem) Scale() float64 {
	return p.scale
}

// Settled reports whether both of the photo's tweens have finished.
func (p *PhotoItem) Settled() bool {
	return (p.posTween == nil || p.posTween.Done) && (p.scaleTween == nil || p.scaleTween.Done)
}

// TreePosition returns the photo's tree-layout slot.
func (p *PhotoItem) TreePosition() Vec3 {
	return p.treePos
}

// NebulaPosition returns the photo's nebula-layout slot.
func (p *PhotoItem) NebulaPosition() Vec3 {
	return p.nebulaPos
}

// PhotoInstance is the per-frame render description of one photo.
type PhotoInstance struct {
	ID       string
	Title    string
	Position Vec3
	Rotation mgl64.Quat
	Scale    float64
	// FrameSize is the white backing card; ImageSize the picture on it,
	// raised by ImageOffsetY. Both are in local units before Scale.
	FrameSize    Vec2
	ImageSize    Vec2
	ImageOffsetY float64
	// Asset is nil if no loader is attached. Draw the picture only when
	// Asset.Ready() is true.
	Asset *PhotoAsset
}

// Transform returns the photo's render description for this frame.
func (p *PhotoItem) Transform(time float64, phase Phase) PhotoInstance {
	aspect := 1.0
	if p.Asset != nil {
		aspect = p.Asset.Aspect()
	}
	frame, img := portraitFrame, portraitImage
	if aspect > 1 {
		frame, img = landscapeFrame, landscapeImage
	}

	rot := mgl64.QuatRotate(p.yaw, Vec3{0, 1, 0}).Mul(mgl64.QuatRotate(p.pitch, Vec3{1, 0, 0}))
	return PhotoInstance{
		ID:           p.Record.ID,
		Title:        p.Record.Title,
		Position:     p.displayPosition(time, phase),
		Rotation:     rot,
		Scale:        p.scale,
		FrameSize:    frame,
		ImageSize:    img,
		ImageOffsetY: photoImageOffsetY,
		Asset:        p.Asset,
	}
}
