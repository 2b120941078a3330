package treebloom

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// Font wraps Ebitengine's text/v2 for TrueType card text.
type Font struct {
	face *text.GoTextFace
	lh   float64 // cached line height
}

// LoadFont loads a TrueType font from raw TTF/OTF data at the given size.
func LoadFont(ttfData []byte, size float64) (*Font, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(ttfData))
	if err != nil {
		return nil, fmt.Errorf("treebloom: failed to parse TTF data: %w", err)
	}
	face := &text.GoTextFace{Source: source, Size: size}
	m := face.Metrics()
	return &Font{face: face, lh: m.HAscent + m.HDescent + m.HLineGap}, nil
}

// MeasureString returns the width and height of the rendered text.
func (f *Font) MeasureString(s string) (width, height float64) {
	return text.Measure(s, f.face, f.lh)
}

// LineHeight returns the vertical distance between baselines.
func (f *Font) LineHeight() float64 {
	return f.lh
}

// overlayFonts are the faces used for the card text. Without them the
// overlay falls back to ebitenutil's debug font.
type overlayFonts struct {
	title *Font
	body  *Font
}

var (
	titleColor = color.RGBA{0xf7, 0xe7, 0xce, 0xff}
	hintColor  = color.RGBA{0xc5, 0xa0, 0x59, 0xff}
)

// SetFonts sets the faces for the card title and the smaller status lines.
// Either may be nil.
func (s *Scene) SetFonts(title, body *Font) {
	s.fonts = overlayFonts{title: title, body: body}
}

// SetMusic attaches the music player whose track title the overlay shows.
func (s *Scene) SetMusic(m *MusicPlayer) {
	s.music = m
}

// SetShowFPS toggles the FPS/TPS readout in the top-left corner.
func (s *Scene) SetShowFPS(show bool) {
	s.showFPS = show
}

// drawOverlay draws the card text over the rendered frame.
func (s *Scene) drawOverlay(screen *ebiten.Image) {
	f := &s.frame
	w := float64(screen.Bounds().Dx())
	h := float64(screen.Bounds().Dy())

	s.drawText(screen, s.fonts.title, f.CenterText, w/2, h*0.08, titleColor)
	s.drawText(screen, s.fonts.body, f.Instructions, w/2, h-40, hintColor)

	if i := f.ActivePhotoIndex; i >= 0 && i < len(f.Photos) {
		s.drawText(screen, s.fonts.body, f.Photos[i].Title, w/2, h-70, titleColor)
	}
	if s.music != nil {
		label := s.music.Title()
		if !s.music.Playing() {
			label += " (paused)"
		}
		s.drawText(screen, s.fonts.body, label, w/2, h-16, color.White)
	}
	if s.showFPS {
		s.fps.draw(screen)
	}
}

// drawText draws str centred horizontally on cx with its top at y.
func (s *Scene) drawText(screen *ebiten.Image, font *Font, str string, cx, y float64, clr color.Color) {
	if str == "" {
		return
	}
	if font == nil {
		// The debug font is 6px wide per glyph.
		ebitenutil.DebugPrintAt(screen, str, int(cx)-len(str)*3, int(y))
		return
	}
	op := &text.DrawOptions{}
	op.PrimaryAlign = text.AlignCenter
	op.LineSpacing = font.lh
	op.GeoM.Translate(cx, y)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, str, font.face, op)
}
