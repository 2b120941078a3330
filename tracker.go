package treebloom

import (
	"context"
	"errors"
	"image"
	"log"
	"sync"
	"time"
)

// Collaborator failures. Both degrade the tracker instead of stopping the
// engine.
var (
	ErrCameraDenied          = errors.New("treebloom: camera permission denied")
	ErrRecognizerUnavailable = errors.New("treebloom: gesture recognizer unavailable")
)

// VideoFrame is one captured camera frame.
type VideoFrame struct {
	Image     image.Image
	Timestamp time.Time
}

// Recognizer classifies hand gestures in a video frame. Results are ranked,
// best first; an empty result means no hand was seen.
type Recognizer interface {
	Recognize(ctx context.Context, frame VideoFrame) ([]GestureSample, error)
}

// RecognizerFactory initializes a Recognizer. Initialization may be slow
// (model download) and may fail.
type RecognizerFactory func(ctx context.Context) (Recognizer, error)

// CameraDevice is a video source. Open may fail with ErrCameraDenied.
// Frame returns false when no new frame is available yet.
type CameraDevice interface {
	Open(ctx context.Context) error
	Frame(ctx context.Context) (VideoFrame, bool, error)
	Close() error
}

// DefaultPerceptionInterval is the default cadence of the perception tick.
const DefaultPerceptionInterval = 33 * time.Millisecond

// HandTracker runs the perception tick: it samples the camera, classifies
// each frame, and feeds the GestureBridge. It runs on its own goroutine at
// its own cadence and never blocks the frame tick.
type HandTracker struct {
	bridge   *GestureBridge
	camera   CameraDevice
	factory  RecognizerFactory
	interval time.Duration

	mu         sync.Mutex
	recognizer Recognizer
	cameraOpen bool
	wantCamera bool
	loaded     bool

	done chan struct{}
}

// NewHandTracker returns a tracker feeding bridge. camera or factory may be
// nil, in which case the tracker degrades immediately on Start.
func NewHandTracker(bridge *GestureBridge, camera CameraDevice, factory RecognizerFactory, interval time.Duration) *HandTracker {
	if interval <= 0 {
		interval = DefaultPerceptionInterval
	}
	return &HandTracker{
		bridge:     bridge,
		camera:     camera,
		factory:    factory,
		interval:   interval,
		wantCamera: true,
		done:       make(chan struct{}),
	}
}

// Start initializes the recognizer and runs the perception loop until ctx
// is canceled. It returns immediately.
func (t *HandTracker) Start(ctx context.Context) {
	go t.run(ctx)
}

// Done is closed when the perception loop has exited and the camera has
// been released.
func (t *HandTracker) Done() <-chan struct{} {
	return t.done
}

// Loaded reports whether the recognizer finished initializing.
func (t *HandTracker) Loaded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loaded
}

// CameraOpen reports whether the camera stream is currently running.
func (t *HandTracker) CameraOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cameraOpen
}

// SetCameraEnabled asks the tracker to open or release the camera. The
// change takes effect on the next perception tick.
func (t *HandTracker) SetCameraEnabled(enabled bool) {
	t.mu.Lock()
	t.wantCamera = enabled
	t.mu.Unlock()
}

// ToggleCamera flips the requested camera state and returns the new request.
func (t *HandTracker) ToggleCamera() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.wantCamera = !t.wantCamera
	return t.wantCamera
}

func (t *HandTracker) run(ctx context.Context) {
	defer close(t.done)
	defer t.closeCamera()

	rec, err := t.initRecognizer(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("treebloom: gesture recognizer disabled: %v", err)
		}
		t.bridge.Degrade()
		return
	}
	t.mu.Lock()
	t.recognizer = rec
	t.loaded = true
	t.mu.Unlock()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.tick(ctx)
		}
	}
}

func (t *HandTracker) initRecognizer(ctx context.Context) (Recognizer, error) {
	if t.factory == nil || t.camera == nil {
		return nil, ErrRecognizerUnavailable
	}
	rec, err := t.factory(ctx)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrRecognizerUnavailable
	}
	return rec, nil
}

// tick runs one perception step.
func (t *HandTracker) tick(ctx context.Context) {
	if !t.syncCamera(ctx) {
		return
	}

	frame, ok, err := t.camera.Frame(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("treebloom: camera frame: %v", err)
		}
		return
	}
	if !ok {
		return
	}

	samples, err := t.recognizer.Recognize(ctx, frame)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("treebloom: recognize: %v", err)
		}
		return
	}
	t.bridge.Accept(samples)
}

// syncCamera opens or closes the camera to match the requested state and
// reports whether it is open. A failed open leaves the camera closed and
// withdraws the request so it is not retried every tick.
func (t *HandTracker) syncCamera(ctx context.Context) bool {
	t.mu.Lock()
	want, open := t.wantCamera, t.cameraOpen
	t.mu.Unlock()

	switch {
	case want && !open:
		if err := t.camera.Open(ctx); err != nil {
			log.Printf("treebloom: camera unavailable: %v", err)
			t.mu.Lock()
			t.wantCamera = false
			t.mu.Unlock()
			return false
		}
		t.mu.Lock()
		t.cameraOpen = true
		t.mu.Unlock()
		return true
	case !want && open:
		t.closeCamera()
		return false
	}
	return open
}

func (t *HandTracker) closeCamera() {
	t.mu.Lock()
	open := t.cameraOpen
	t.cameraOpen = false
	t.mu.Unlock()
	if !open {
		return
	}
	if err := t.camera.Close(); err != nil {
		log.Printf("treebloom: camera close: %v", err)
	}
	t.bridge.Clear()
}
