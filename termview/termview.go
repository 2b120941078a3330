// Package termview renders treebloom frames into a terminal with tcell. It
// is a low-fidelity preview: every instance becomes one character cell,
// nearest wins.
package termview

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/mattn/go-runewidth"
	"github.com/phanxgames/treebloom"
)

// Cell is one rasterized character.
type Cell struct {
	X, Y  int
	Rune  rune
	Color treebloom.Color
	depth float64
}

// Glyphs used for each layer.
const (
	runeStar      = '.'
	runeParticle  = '*'
	runeOrnament  = 'o'
	runeSatellite = '+'
	runePhoto     = '#'
	runeTopper    = '$'
)

// Rasterizer projects frames onto a character grid. Terminal cells are
// about twice as tall as wide, so the camera sees a viewport of
// cols x rows*2 and rows are sampled at half resolution.
type Rasterizer struct {
	Camera *treebloom.Camera

	cols, rows int
	grid       []Cell
	out        []Cell
}

// NewRasterizer returns a rasterizer with the default orbit camera.
func NewRasterizer() *Rasterizer {
	return &Rasterizer{Camera: treebloom.NewCamera(treebloom.Rect{})}
}

// Rasterize returns the visible cells of f for a cols x rows terminal. The
// returned slice is reused by the next call.
func (r *Rasterizer) Rasterize(f *treebloom.Frame, cols, rows int) []Cell {
	r.resize(cols, rows)
	r.Camera.Viewport = treebloom.Rect{Width: float64(cols), Height: float64(rows * 2)}

	vp := r.Camera.ViewProjection()
	group := vp.Mul4(mgl64.HomogRotate3DY(f.GroupRotation))

	r.plot(f.Stars, vp, runeStar)
	r.plot(f.Particles, group, runeParticle)
	r.plot(f.Ornaments, group, runeOrnament)
	r.plot(f.Satellites, group, runeSatellite)
	if f.Topper.Visible {
		r.plotPoint(f.Topper.Position, group, runeTopper, f.Topper.Color)
	}
	for i := range f.Photos {
		if f.Photos[i].Scale > 0 {
			r.plotPoint(f.Photos[i].Position, group, runePhoto, treebloom.ColorWhite)
		}
	}

	r.out = r.out[:0]
	for _, c := range r.grid {
		if c.Rune != 0 {
			r.out = append(r.out, c)
		}
	}
	return r.out
}

func (r *Rasterizer) resize(cols, rows int) {
	if cols != r.cols || rows != r.rows {
		r.cols, r.rows = cols, rows
		r.grid = make([]Cell, cols*rows)
		return
	}
	clear(r.grid)
}

func (r *Rasterizer) plot(instances []treebloom.Instance, vp mgl64.Mat4, glyph rune) {
	for i := range instances {
		if instances[i].Scale <= 0 || instances[i].Color.A <= 0 {
			continue
		}
		r.plotPoint(instances[i].Position, vp, glyph, instances[i].Color)
	}
}

func (r *Rasterizer) plotPoint(p treebloom.Vec3, vp mgl64.Mat4, glyph rune, c treebloom.Color) {
	sx, sy, depth, ok := r.Camera.Project(p, vp)
	if !ok {
		return
	}
	x, y := int(math.Floor(sx)), int(math.Floor(sy/2))
	if x < 0 || y < 0 || x >= r.cols || y >= r.rows {
		return
	}
	cell := &r.grid[y*r.cols+x]
	if cell.Rune != 0 && cell.depth <= depth {
		return
	}
	*cell = Cell{X: x, Y: y, Rune: glyph, Color: c, depth: depth}
}

// Renderer draws frames to a tcell screen.
type Renderer struct {
	screen tcell.Screen
	raster *Rasterizer
}

// NewRenderer returns a renderer drawing to screen, which must already be
// initialized.
func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{screen: screen, raster: NewRasterizer()}
}

// Camera returns the camera used for projection.
func (r *Renderer) Camera() *treebloom.Camera {
	return r.raster.Camera
}

// Draw renders f plus the card's status lines and shows the result.
func (r *Renderer) Draw(f *treebloom.Frame) {
	r.screen.Clear()
	cols, rows := r.screen.Size()
	for _, c := range r.raster.Rasterize(f, cols, rows) {
		r.screen.SetContent(c.X, c.Y, c.Rune, nil, tcell.StyleDefault.Foreground(toTcell(c.Color)))
	}

	title := tcell.StyleDefault.Foreground(tcell.NewRGBColor(0xf7, 0xe7, 0xce)).Bold(true)
	hint := tcell.StyleDefault.Foreground(tcell.NewRGBColor(0xc5, 0xa0, 0x59))
	drawCentered(r.screen, 0, f.CenterText, title)
	drawCentered(r.screen, rows-1, f.Instructions, hint)
	r.screen.Show()
}

func toTcell(c treebloom.Color) tcell.Color {
	// No alpha in a terminal; fade toward black instead.
	a := math.Max(0, math.Min(1, c.A))
	return tcell.NewRGBColor(
		int32(math.Round(c.R*a*255)),
		int32(math.Round(c.G*a*255)),
		int32(math.Round(c.B*a*255)),
	)
}

func drawCentered(screen tcell.Screen, y int, s string, style tcell.Style) {
	cols, _ := screen.Size()
	x := max((cols-runewidth.StringWidth(s))/2, 0)
	for _, ch := range s {
		screen.SetContent(x, y, ch, nil, style)
		x += runewidth.RuneWidth(ch)
	}
}
