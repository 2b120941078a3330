package treebloom

import (
	"io"
	"io/fs"
	"log"
	"math"
	"path"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	defaultDragDeadZone = 4.0   // pixels
	orbitPerPixel       = 0.005 // radians per dragged pixel
	dollyPerWheelStep   = 0.1
)

// inputState tracks the primary pointer between frames.
type inputState struct {
	down     bool
	dragging bool
	startX   float64
	startY   float64
	lastX    float64
	lastY    float64
	touch    []ebiten.TouchID
}

// processInput reads ebiten's mouse, touch, wheel and file-drop state.
// Called once per tick by the game loop before Scene.Update, and skipped
// while injected events or a test script drive the scene.
func (s *Scene) processInput() {
	sx, sy, pressed := s.readPointer()
	s.processPointer(sx, sy, pressed)

	if _, wy := ebiten.Wheel(); wy != 0 {
		s.camera.Dolly(1 - wy*dollyPerWheelStep)
	}

	if files := ebiten.DroppedFiles(); files != nil {
		s.processDroppedFiles(files)
	}
}

// readPointer returns the primary pointer: the first touch if any,
// otherwise the mouse.
func (s *Scene) readPointer() (float64, float64, bool) {
	s.input.touch = ebiten.AppendTouchIDs(s.input.touch[:0])
	if len(s.input.touch) > 0 {
		tx, ty := ebiten.TouchPosition(s.input.touch[0])
		return float64(tx), float64(ty), true
	}
	mx, my := ebiten.CursorPosition()
	return float64(mx), float64(my), ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
}

// processPointer updates the repulsion pointer and orbits the camera while
// the pointer is dragged. Screen coordinates are in pixels.
func (s *Scene) processPointer(sx, sy float64, pressed bool) {
	s.SetPointer(s.camera.ScreenToNDC(sx, sy))

	in := &s.input
	switch {
	case pressed && !in.down:
		in.down = true
		in.dragging = false
		in.startX, in.startY = sx, sy
	case !pressed && in.down:
		in.down = false
		in.dragging = false
	case pressed && in.down:
		if !in.dragging && math.Hypot(sx-in.startX, sy-in.startY) > defaultDragDeadZone {
			in.dragging = true
		}
		if in.dragging {
			s.camera.Orbit(-(sx-in.lastX)*orbitPerPixel, -(sy-in.lastY)*orbitPerPixel)
		}
	}
	in.lastX, in.lastY = sx, sy
}

// processDroppedFiles routes dropped images to the photo collection and
// dropped audio to OnMusicDropped. Other files are ignored.
func (s *Scene) processDroppedFiles(fsys fs.FS) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		log.Printf("treebloom: read dropped files: %v", err)
		return
	}

	var photos []Upload
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		u := droppedUpload(fsys, e.Name())
		switch {
		case IsImageFile(u.Name):
			photos = append(photos, u)
		case IsAudioFile(u.Name):
			if s.OnMusicDropped != nil {
				s.OnMusicDropped(u)
			}
		default:
			log.Printf("treebloom: ignoring dropped file %q", u.Name)
		}
	}
	s.AddPhotos(photos...)
}

func droppedUpload(fsys fs.FS, name string) Upload {
	return Upload{
		Name: name,
		URI:  "dropped:" + name,
		Open: func() (io.ReadCloser, error) {
			return fsys.Open(name)
		},
	}
}

// IsImageFile reports whether name has a photo extension the loader decodes.
func IsImageFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
		return true
	}
	return false
}

// IsAudioFile reports whether name has an extension MusicPlayer decodes.
func IsAudioFile(name string) bool {
	switch audioExt(name) {
	case ".mp3", ".ogg", ".wav":
		return true
	}
	return false
}
