package treebloom

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// DefaultMusicURI is the built-in background track.
const DefaultMusicURI = "https://cdn.pixabay.com/download/audio/2022/11/22/audio_febc508520.mp3?filename=christmas-magic-127540.mp3"

// DefaultMusicTitle is shown while the built-in track is selected.
const DefaultMusicTitle = "Merry Christmas Mr. Lawrence - Ryuichi Sakamoto (Cover)"

// ErrUnsupportedAudio is returned for audio formats other than mp3, ogg and wav.
var ErrUnsupportedAudio = errors.New("treebloom: unsupported audio format")

// audioStream is what every ebiten decoder returns.
type audioStream interface {
	io.ReadSeeker
	Length() int64
}

// decodeAudio decodes data according to the extension of name.
func decodeAudio(name string, data []byte, sampleRate int) (audioStream, error) {
	r := bytes.NewReader(data)
	switch audioExt(name) {
	case ".mp3":
		s, err := mp3.DecodeWithSampleRate(sampleRate, r)
		if err != nil {
			return nil, fmt.Errorf("decode mp3 %s: %w", name, err)
		}
		return s, nil
	case ".ogg":
		s, err := vorbis.DecodeWithSampleRate(sampleRate, r)
		if err != nil {
			return nil, fmt.Errorf("decode ogg %s: %w", name, err)
		}
		return s, nil
	case ".wav":
		s, err := wav.DecodeWithSampleRate(sampleRate, r)
		if err != nil {
			return nil, fmt.Errorf("decode wav %s: %w", name, err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedAudio, name)
}

// audioExt returns the lowercase extension of name, honoring the
// "?filename=" convention used by download links.
func audioExt(name string) string {
	if i := strings.Index(name, "filename="); i >= 0 {
		name = name[i+len("filename="):]
	}
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(path.Ext(name))
}

// track is the playback surface of *audio.Player used by MusicPlayer.
type track interface {
	Play()
	Pause()
	SetVolume(volume float64)
	Close() error
}

// MusicPlayer plays one looping background track. SetSource swaps the track
// asynchronously; a track that fails to load is logged and the previous one
// keeps playing. Only the most recently requested track is installed, however
// the loads finish.
type MusicPlayer struct {
	ctx     *audio.Context
	client  *http.Client
	volume  float64
	newPlay func(ctx context.Context, u Upload) (track, error)

	mu      sync.Mutex
	player  track
	uri     string
	custom  bool
	playing bool
	gen     uint64
	loads   sync.WaitGroup
}

// NewMusicPlayer returns a player on the given audio context.
func NewMusicPlayer(ctx *audio.Context, volume float64) *MusicPlayer {
	m := &MusicPlayer{
		ctx:    ctx,
		client: &http.Client{Timeout: time.Minute},
		volume: clamp01(volume),
	}
	m.newPlay = m.open
	return m
}

// URI returns the current track's source.
func (m *MusicPlayer) URI() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uri
}

// IsCustom reports whether the current track came from an upload.
func (m *MusicPlayer) IsCustom() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.custom
}

// Title returns a display label for the current track.
func (m *MusicPlayer) Title() string {
	if m.IsCustom() {
		return "Playing Custom Music"
	}
	return DefaultMusicTitle
}

// Playing reports whether the track is playing.
func (m *MusicPlayer) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// SetVolume sets the volume in [0, 1].
func (m *MusicPlayer) SetVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = clamp01(v)
	if m.player != nil {
		m.player.SetVolume(m.volume)
	}
}

// LoadDefault starts loading uri as the non-custom track.
func (m *MusicPlayer) LoadDefault(ctx context.Context, uri string) {
	m.load(ctx, Upload{Name: uri, URI: uri}, false)
}

// SetSource starts loading an uploaded track. When it is ready it replaces
// the current one, and starts playing if the previous track was playing.
func (m *MusicPlayer) SetSource(ctx context.Context, u Upload) {
	m.load(ctx, u, true)
}

func (m *MusicPlayer) load(ctx context.Context, u Upload, custom bool) {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.mu.Unlock()

	m.loads.Add(1)
	go func() {
		defer m.loads.Done()
		p, err := m.newPlay(ctx, u)
		if err != nil {
			log.Printf("treebloom: failed to load music %q: %v", u.Name, err)
			return
		}
		m.swap(gen, p, u.URI, custom)
	}()
}

// Wait blocks until pending loads finish.
func (m *MusicPlayer) Wait() {
	m.loads.Wait()
}

func (m *MusicPlayer) open(ctx context.Context, u Upload) (track, error) {
	rc, err := openSource(ctx, m.client, u.URI, u.Open)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", u.Name, err)
	}

	stream, err := decodeAudio(u.Name, data, m.ctx.SampleRate())
	if err != nil {
		return nil, err
	}
	p, err := m.ctx.NewPlayer(audio.NewInfiniteLoop(stream, stream.Length()))
	if err != nil {
		return nil, fmt.Errorf("create player for %s: %w", u.Name, err)
	}
	return p, nil
}

// swap installs p unless a newer load was requested after gen.
func (m *MusicPlayer) swap(gen uint64, p track, uri string, custom bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen {
		_ = p.Close()
		return
	}
	if m.player != nil {
		m.player.Pause()
		_ = m.player.Close()
	}
	m.player = p
	m.uri = uri
	m.custom = custom
	p.SetVolume(m.volume)
	if m.playing {
		p.Play()
	}
}

// Toggle pauses a playing track or plays a paused one. With no track
// loaded yet it records the intent to play once one arrives.
func (m *MusicPlayer) Toggle() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.playing = !m.playing
	if m.player == nil {
		return
	}
	if m.playing {
		m.player.Play()
	} else {
		m.player.Pause()
	}
}

// Close stops playback and releases the player.
func (m *MusicPlayer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = false
	if m.player == nil {
		return nil
	}
	m.player.Pause()
	err := m.player.Close()
	m.player = nil
	return err
}
