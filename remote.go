package treebloom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"strconv"
	"time"
)

// RemoteRecognizer sends frames to a gesture classification service over
// HTTP. Each frame is POSTed as JPEG; the service answers with the
// recognizer's native result shape:
//
//	{"gestures": [[{"categoryName": "Open_Palm", "score": 0.93}]]}
//
// Only the first hand's ranked categories are used.
type RemoteRecognizer struct {
	url    string
	client *http.Client
}

type remoteCategory struct {
	CategoryName string  `json:"categoryName"`
	Score        float64 `json:"score"`
}

type remoteResult struct {
	Gestures [][]remoteCategory `json:"gestures"`
}

// NewRemoteRecognizerFactory returns a factory that checks the service is
// reachable before handing out a recognizer.
func NewRemoteRecognizerFactory(url string) RecognizerFactory {
	return func(ctx context.Context) (Recognizer, error) {
		if url == "" {
			return nil, ErrRecognizerUnavailable
		}
		r := &RemoteRecognizer{url: url, client: &http.Client{Timeout: 5 * time.Second}}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRecognizerUnavailable, err)
		}
		resp, err := r.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRecognizerUnavailable, err)
		}
		resp.Body.Close()
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: status %s", ErrRecognizerUnavailable, resp.Status)
		}
		return r, nil
	}
}

// Recognize implements Recognizer.
func (r *RemoteRecognizer) Recognize(ctx context.Context, frame VideoFrame) ([]GestureSample, error) {
	var body bytes.Buffer
	if err := jpeg.Encode(&body, frame.Image, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "image/jpeg")
	req.Header.Set("X-Frame-Timestamp", strconv.FormatInt(frame.Timestamp.UnixMilli(), 10))

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recognizer status %s", resp.Status)
	}

	var res remoteResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return res.samples(), nil
}

func (res remoteResult) samples() []GestureSample {
	if len(res.Gestures) == 0 {
		return nil
	}
	hand := res.Gestures[0]
	out := make([]GestureSample, 0, len(hand))
	for _, c := range hand {
		out = append(out, GestureSample{Category: ParseGesture(c.CategoryName), Confidence: c.Score})
	}
	return out
}

// SnapshotCamera polls a still-image endpoint (an IP camera or a local
// capture helper) for frames. 401 and 403 responses on Open are reported as
// ErrCameraDenied.
type SnapshotCamera struct {
	url    string
	client *http.Client
	open   bool
}

// NewSnapshotCamera returns a camera polling url.
func NewSnapshotCamera(url string) *SnapshotCamera {
	return &SnapshotCamera{url: url, client: &http.Client{Timeout: 5 * time.Second}}
}

// Open implements CameraDevice.
func (c *SnapshotCamera) Open(ctx context.Context) error {
	if _, err := c.fetch(ctx); err != nil {
		return err
	}
	c.open = true
	return nil
}

// Frame implements CameraDevice.
func (c *SnapshotCamera) Frame(ctx context.Context) (VideoFrame, bool, error) {
	if !c.open {
		return VideoFrame{}, false, nil
	}
	img, err := c.fetch(ctx)
	if err != nil {
		return VideoFrame{}, false, err
	}
	return VideoFrame{Image: img, Timestamp: time.Now()}, true, nil
}

// Close implements CameraDevice.
func (c *SnapshotCamera) Close() error {
	c.open = false
	c.client.CloseIdleConnections()
	return nil
}

func (c *SnapshotCamera) fetch(ctx context.Context) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrCameraDenied
	default:
		return nil, fmt.Errorf("snapshot status %s", resp.Status)
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return img, nil
}
