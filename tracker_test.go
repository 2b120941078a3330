package treebloom

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"
	"time"
)

type fakeCamera struct {
	openErr error
	opens   atomic.Int32
	closes  atomic.Int32
}

func (c *fakeCamera) Open(ctx context.Context) error {
	if c.openErr != nil {
		return c.openErr
	}
	c.opens.Add(1)
	return nil
}

func (c *fakeCamera) Frame(ctx context.Context) (VideoFrame, bool, error) {
	return VideoFrame{Image: image.NewRGBA(image.Rect(0, 0, 4, 4)), Timestamp: time.Now()}, true, nil
}

func (c *fakeCamera) Close() error {
	c.closes.Add(1)
	return nil
}

type fakeRecognizer struct {
	samples []GestureSample
	calls   atomic.Int32
}

func (r *fakeRecognizer) Recognize(ctx context.Context, frame VideoFrame) ([]GestureSample, error) {
	r.calls.Add(1)
	return r.samples, nil
}

func factoryFor(r Recognizer, err error) RecognizerFactory {
	return func(ctx context.Context) (Recognizer, error) {
		return r, err
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func waitDone(t *testing.T, tr *HandTracker) {
	t.Helper()
	select {
	case <-tr.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("tracker did not stop")
	}
}

func TestHandTrackerDegradesWithoutRecognizer(t *testing.T) {
	tests := []struct {
		name    string
		camera  CameraDevice
		factory RecognizerFactory
	}{
		{"nil factory", &fakeCamera{}, nil},
		{"nil camera", nil, factoryFor(&fakeRecognizer{}, nil)},
		{"factory error", &fakeCamera{}, factoryFor(nil, errors.New("model download failed"))},
		{"nil recognizer", &fakeCamera{}, factoryFor(nil, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var bridge GestureBridge
			tr := NewHandTracker(&bridge, tt.camera, tt.factory, time.Millisecond)
			tr.Start(context.Background())
			waitDone(t, tr)
			if !bridge.Degraded() {
				t.Error("bridge not degraded")
			}
			if tr.Loaded() {
				t.Error("Loaded = true")
			}
		})
	}
}

func TestHandTrackerFeedsBridge(t *testing.T) {
	var bridge GestureBridge
	cam := &fakeCamera{}
	rec := &fakeRecognizer{samples: []GestureSample{{Category: GestureOpenPalm, Confidence: 0.9}}}
	tr := NewHandTracker(&bridge, cam, factoryFor(rec, nil), time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	tr.Start(ctx)
	waitFor(t, "open palm", func() bool { return bridge.Latest() == GestureOpenPalm })
	if !tr.Loaded() || !tr.CameraOpen() {
		t.Errorf("loaded=%v cameraOpen=%v", tr.Loaded(), tr.CameraOpen())
	}

	cancel()
	waitDone(t, tr)
	if cam.closes.Load() != 1 {
		t.Errorf("camera closed %d times, want 1", cam.closes.Load())
	}
	if bridge.Latest() != GestureNone {
		t.Errorf("Latest after stop = %v, want None", bridge.Latest())
	}
}

func TestHandTrackerCameraDenied(t *testing.T) {
	var bridge GestureBridge
	cam := &fakeCamera{openErr: ErrCameraDenied}
	rec := &fakeRecognizer{samples: []GestureSample{{Category: GestureOpenPalm, Confidence: 0.9}}}
	tr := NewHandTracker(&bridge, cam, factoryFor(rec, nil), time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tr.Start(ctx)
	waitFor(t, "recognizer", tr.Loaded)
	time.Sleep(20 * time.Millisecond)

	if tr.CameraOpen() {
		t.Error("CameraOpen = true after denial")
	}
	if rec.calls.Load() != 0 {
		t.Errorf("recognizer called %d times without a camera", rec.calls.Load())
	}
	if bridge.Latest() != GestureNone || bridge.Degraded() {
		t.Errorf("bridge latest=%v degraded=%v", bridge.Latest(), bridge.Degraded())
	}
	// The request was withdrawn: toggling asks for the camera again.
	if !tr.ToggleCamera() {
		t.Error("ToggleCamera = false, want a fresh request")
	}
}

func TestHandTrackerCameraToggle(t *testing.T) {
	var bridge GestureBridge
	cam := &fakeCamera{}
	rec := &fakeRecognizer{samples: []GestureSample{{Category: GestureClosedFist, Confidence: 0.7}}}
	tr := NewHandTracker(&bridge, cam, factoryFor(rec, nil), time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		waitDone(t, tr)
	}()
	tr.Start(ctx)
	waitFor(t, "camera open", tr.CameraOpen)

	tr.SetCameraEnabled(false)
	waitFor(t, "camera closed", func() bool { return !tr.CameraOpen() })
	waitFor(t, "gesture cleared", func() bool { return bridge.Latest() == GestureNone })

	tr.SetCameraEnabled(true)
	waitFor(t, "camera reopened", func() bool { return cam.opens.Load() == 2 })
}
