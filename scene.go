package treebloom

import (
	"sync"
	"time"
)

// EntityStore is the interface for optional ECS integration.
// When set on a Scene, phase changes are forwarded to the ECS.
type EntityStore interface {
	EmitPhase(event PhaseEvent)
}

// SceneConfig describes everything fixed for the lifetime of a Scene.
type SceneConfig struct {
	Particles  ParticleConfig
	Ornaments  OrnamentConfig
	Photos     []PhotoRecord
	CenterText string
	// Seed drives every random layout. Zero picks a random seed.
	Seed uint64
	// Viewport is the screen rectangle of the camera.
	Viewport Rect
	// Loader decodes photo images. Nil leaves PhotoInstance.Asset nil.
	Loader *ImageLoader
}

// DefaultSceneConfig returns the standard card at 1280x720.
func DefaultSceneConfig() SceneConfig {
	return SceneConfig{
		Particles:  DefaultParticleConfig(),
		Ornaments:  DefaultOrnamentConfig(),
		Photos:     DefaultPhotos(),
		CenterText: DefaultCenterText,
		Viewport:   Rect{Width: 1280, Height: 720},
	}
}

// SceneConfigFromSettings applies the counts, text and seed of s to the
// default configuration.
func SceneConfigFromSettings(s Settings) SceneConfig {
	cfg := DefaultSceneConfig()
	cfg.CenterText = s.CenterText
	cfg.Seed = s.Seed
	if s.ParticleCount > 0 {
		cfg.Particles.Count = s.ParticleCount
	}
	if s.OrnamentCount > 0 {
		cfg.Ornaments.Count = s.OrnamentCount
	}
	return cfg
}

// Frame is the output of one Scene.Update: every transform the render
// adapter needs. Positions are in group space except Stars and Sparkles,
// which are in scene space; apply GroupRotation about +Y to the rest.
// Slices are reused by the next Update.
type Frame struct {
	Phase    Phase
	Progress float64
	Time     float64
	Gesture  Gesture
	// GroupRotation is the Y-axis rotation of the tree group in radians.
	GroupRotation float64
	Pointer       Vec3

	Particles  []Instance
	Ornaments  []Instance
	Satellites []Instance
	Photos     []PhotoInstance
	Topper     TopperInstance

	Stars    []Instance
	Sparkles []Instance

	CenterText       string
	Instructions     string
	ActivePhotoIndex int
}

// Scene is the top-level object that owns the phase machine, the gesture
// bridge, every field, and the render buffers. Update and Draw must be
// called from the same goroutine; only the GestureBridge and AddPhotos are
// safe to use from others.
type Scene struct {
	cfg   SceneConfig
	store EntityStore
	debug bool

	machine   *PhaseMachine
	bridge    *GestureBridge
	particles *ParticleField
	ornaments *OrnamentField
	topper    *Topper
	backdrop  *Backdrop
	rotation  GroupRotation
	camera    *Camera
	card      *Card

	collection   *PhotoCollection
	photos       []*PhotoItem
	photoVersion uint64
	loader       *ImageLoader

	uploadMu sync.Mutex
	uploads  []Upload

	time       float64
	pointerNDC [2]float64
	frame      Frame
	stats      debugStats

	// Input and automation.
	injectQueue     []syntheticEvent
	testRunner      *TestRunner
	input           inputState
	screenshotQueue []string
	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir string
	// OnMusicDropped is called with audio files dropped on the window.
	OnMusicDropped func(Upload)
	updateFunc     func() error

	render  renderState
	filters []Filter
	fonts   overlayFonts
	music   *MusicPlayer
	showFPS bool
	fps     fpsWidget
}

// NewScene builds every field from cfg. The scene starts in PhaseTree.
func NewScene(cfg SceneConfig) *Scene {
	rng := newRand(cfg.Seed)
	s := &Scene{
		cfg:           cfg,
		machine:       NewPhaseMachine(),
		bridge:        &GestureBridge{},
		particles:     NewParticleField(cfg.Particles, rng),
		ornaments:     NewOrnamentField(cfg.Ornaments, rng),
		topper:        NewTopper(rng),
		backdrop:      NewBackdrop(rng),
		camera:        NewCamera(cfg.Viewport),
		card:          NewCard(cfg.CenterText),
		collection:    NewPhotoCollection(cfg.Photos),
		loader:        cfg.Loader,
		filters:       DefaultFilters(),
		ScreenshotDir: "screenshots",
	}
	s.machine.OnPhaseChange = s.onPhaseChange
	s.syncPhotos()
	s.computeFrame()
	return s
}

// Machine returns the phase state machine.
func (s *Scene) Machine() *PhaseMachine {
	return s.machine
}

// Bridge returns the gesture bridge. Hand it to a HandTracker so the
// perception goroutine can publish gestures.
func (s *Scene) Bridge() *GestureBridge {
	return s.bridge
}

// Camera returns the scene's camera.
func (s *Scene) Camera() *Camera {
	return s.camera
}

// Card returns the card state.
func (s *Scene) Card() *Card {
	return s.card
}

// Photos returns the photo collection.
func (s *Scene) Photos() *PhotoCollection {
	return s.collection
}

// PhotoItems returns the live photo items in collection order. The returned
// slice MUST NOT be mutated.
func (s *Scene) PhotoItems() []*PhotoItem {
	return s.photos
}

// Particles returns the particle field.
func (s *Scene) Particles() *ParticleField {
	return s.particles
}

// Ornaments returns the ornament field.
func (s *Scene) Ornaments() *OrnamentField {
	return s.ornaments
}

// Time returns the elapsed scene time in seconds.
func (s *Scene) Time() float64 {
	return s.time
}

// Frame returns the most recent frame. It is valid until the next Update.
func (s *Scene) Frame() *Frame {
	return &s.frame
}

// AddPhotos queues uploaded photos. They are applied at the start of the
// next Update. Safe to call from any goroutine.
func (s *Scene) AddPhotos(uploads ...Upload) {
	if len(uploads) == 0 {
		return
	}
	s.uploadMu.Lock()
	s.uploads = append(s.uploads, uploads...)
	s.uploadMu.Unlock()
}

// SetPointer sets the pointer in normalized device coordinates.
func (s *Scene) SetPointer(nx, ny float64) {
	s.pointerNDC = [2]float64{nx, ny}
}

// Update advances the scene by dt seconds and recomputes the Frame.
func (s *Scene) Update(dt float64) {
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	if s.testRunner != nil {
		s.testRunner.step(s)
	}
	s.processInjected()
	s.applyUploads()

	gesture := s.bridge.Latest()
	s.machine.Trigger(gesture)
	s.machine.Update(dt)

	s.time += dt
	s.camera.update(float32(dt))
	s.rotation.Update(dt, s.machine.Phase(), gesture)

	s.syncPhotos()
	phase := s.machine.Phase()
	for _, p := range s.photos {
		p.Update(float32(dt), s.time, phase)
	}

	s.computeFrame()

	if s.debug {
		s.stats.updateTime = time.Since(t0)
		s.debugLog()
	}
}

// Reset returns the scene to the tree layout at rest. The latest gesture is
// cleared so a held Open_Palm does not restart the bloom on the next Update.
func (s *Scene) Reset() {
	s.bridge.Clear()
	s.machine.Reset()
	s.rotation.Reset()
}

func (s *Scene) onPhaseChange(from, to Phase) {
	if s.debug {
		s.debugPhase(from, to)
	}
	if s.store == nil {
		return
	}
	s.store.EmitPhase(PhaseEvent{
		From:     from,
		To:       to,
		Progress: s.machine.Progress(),
		Time:     s.time,
	})
}

func (s *Scene) applyUploads() {
	s.uploadMu.Lock()
	uploads := s.uploads
	s.uploads = nil
	s.uploadMu.Unlock()

	s.collection.AddUploads(uploads)
}

// syncPhotos rebuilds the photo items after the collection changed. Items
// are matched by ID so surviving photos keep their animation state.
func (s *Scene) syncPhotos() {
	if s.photos != nil && s.collection.Version() == s.photoVersion {
		return
	}
	s.photoVersion = s.collection.Version()

	existing := make(map[string]*PhotoItem, len(s.photos))
	for _, p := range s.photos {
		existing[p.Record.ID] = p
	}

	records := s.collection.Photos()
	total := len(records)
	phase := s.machine.Phase()
	items := make([]*PhotoItem, 0, total)
	for i, rec := range records {
		if p, ok := existing[rec.ID]; ok {
			p.Relayout(i, total, phase)
			items = append(items, p)
			continue
		}
		p := NewPhotoItem(rec, i, total, phase)
		if s.loader != nil {
			p.Asset = s.loader.Load(rec)
		}
		items = append(items, p)
	}
	s.photos = items
	s.card.clampActive(total)
}

func (s *Scene) computeFrame() {
	f := &s.frame
	f.Phase = s.machine.Phase()
	f.Progress = s.machine.Progress()
	f.Time = s.time
	f.Gesture = s.bridge.Latest()
	f.GroupRotation = s.rotation.Angle()
	f.Pointer = s.camera.PointerWorld(s.pointerNDC[0], s.pointerNDC[1])

	state := FieldState{
		Progress: f.Progress,
		Time:     f.Time,
		Pointer:  f.Pointer,
		Phase:    f.Phase,
	}
	f.Particles = s.particles.ComputeTransforms(state, f.Particles)
	f.Ornaments, f.Satellites = s.ornaments.ComputeTransforms(state, f.Ornaments, f.Satellites)

	if cap(f.Photos) < len(s.photos) {
		f.Photos = make([]PhotoInstance, len(s.photos))
	}
	f.Photos = f.Photos[:len(s.photos)]
	for i, p := range s.photos {
		f.Photos[i] = p.Transform(f.Time, f.Phase)
	}

	f.Topper = s.topper.Transform(f.Time, f.Phase)
	f.Stars = s.backdrop.Stars()
	f.Sparkles = s.backdrop.Sparkles(f.Time)

	f.CenterText = s.card.CenterText
	f.Instructions = Instructions(f.Phase)
	f.ActivePhotoIndex = s.card.ActivePhotoIndex()
}

// SetEntityStore sets the optional ECS bridge.
func (s *Scene) SetEntityStore(store EntityStore) {
	s.store = store
}

// SetDebugMode enables or disables debug mode. When enabled, phase changes
// and per-frame timing stats are logged to stderr.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
}
