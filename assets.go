package treebloom

import (
	"context"
	"fmt"
	"image"
	_ "image/gif" // photo formats
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	_ "golang.org/x/image/webp"
)

// PhotoAsset is the decoded picture for one photo. It is written once by
// the loader goroutine and read by the frame tick; readers must check
// Ready before using Image.
type PhotoAsset struct {
	uri    string
	img    image.Image
	aspect float64
	ready  atomic.Bool
	failed atomic.Bool
}

// URI returns the source the asset was loaded from.
func (a *PhotoAsset) URI() string {
	return a.uri
}

// Ready reports whether the picture decoded successfully.
func (a *PhotoAsset) Ready() bool {
	return a != nil && a.ready.Load()
}

// Failed reports whether loading failed. A failed asset never becomes ready.
func (a *PhotoAsset) Failed() bool {
	return a != nil && a.failed.Load()
}

// Image returns the decoded picture, or nil if the asset is not ready.
func (a *PhotoAsset) Image() image.Image {
	if !a.Ready() {
		return nil
	}
	return a.img
}

// Aspect returns width/height of the decoded picture, or 1 if not ready.
func (a *PhotoAsset) Aspect() float64 {
	if !a.Ready() {
		return 1
	}
	return a.aspect
}

func (a *PhotoAsset) resolve(img image.Image) {
	b := img.Bounds()
	a.img = img
	a.aspect = 1
	if b.Dy() > 0 {
		a.aspect = float64(b.Dx()) / float64(b.Dy())
	}
	a.ready.Store(true)
}

// ImageLoader decodes photo assets off the frame tick. Every load runs in
// its own goroutine; a failure is logged and only affects that asset.
type ImageLoader struct {
	client *http.Client
	ctx    context.Context
	wg     sync.WaitGroup
}

// NewImageLoader returns a loader whose loads are canceled with ctx.
func NewImageLoader(ctx context.Context) *ImageLoader {
	return &ImageLoader{
		client: &http.Client{Timeout: 30 * time.Second},
		ctx:    ctx,
	}
}

// Load starts loading rec's picture and returns its asset immediately.
func (l *ImageLoader) Load(rec PhotoRecord) *PhotoAsset {
	a := &PhotoAsset{uri: rec.SourceURI}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		img, err := l.decode(rec)
		if err != nil {
			a.failed.Store(true)
			log.Printf("treebloom: failed to load image %q: %v", rec.SourceURI, err)
			return
		}
		a.resolve(img)
	}()
	return a
}

// Wait blocks until every started load has finished.
func (l *ImageLoader) Wait() {
	l.wg.Wait()
}

func (l *ImageLoader) decode(rec PhotoRecord) (image.Image, error) {
	rc, err := openSource(l.ctx, l.client, rec.SourceURI, rec.open)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, _, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}

// openSource opens an asset. open wins when set; otherwise http(s) URIs
// are fetched and anything else is treated as a local path.
func openSource(ctx context.Context, client *http.Client, uri string, open func() (io.ReadCloser, error)) (io.ReadCloser, error) {
	if open != nil {
		return open()
	}
	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return nil, fmt.Errorf("request %s: %w", uri, err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", uri, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: status %s", uri, resp.Status)
		}
		return resp.Body, nil
	}
	f, err := os.Open(strings.TrimPrefix(uri, "file://"))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", uri, err)
	}
	return f, nil
}
