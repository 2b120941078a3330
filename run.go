package treebloom

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window created by Run.
type RunConfig struct {
	Title         string
	Width, Height int
	// ShowFPS draws an FPS/TPS readout in the top-left corner.
	ShowFPS bool
	// Resizable lets the user resize the window; the camera follows.
	Resizable bool
	// Debug enables Scene debug mode.
	Debug bool
	// ExitWhenScriptDone ends Run after an attached TestRunner finishes.
	ExitWhenScriptDone bool
}

// errScriptDone ends the ebiten loop once a test script has finished.
var errScriptDone = errors.New("treebloom: test script done")

// SetUpdateFunc sets a callback run once per tick before Scene.Update.
// Returning an error stops Run.
func (s *Scene) SetUpdateFunc(fn func() error) {
	s.updateFunc = fn
}

// game adapts a Scene to ebiten.Game.
type game struct {
	scene *Scene
	cfg   RunConfig
}

func (g *game) Update() error {
	s := g.scene
	if s.updateFunc != nil {
		if err := s.updateFunc(); err != nil {
			return err
		}
	}
	if !s.Injecting() {
		s.processInput()
	}
	s.Update(1.0 / float64(ebiten.TPS()))

	if g.cfg.ExitWhenScriptDone && s.testRunner != nil && s.testRunner.Done() && len(s.screenshotQueue) == 0 {
		return errScriptDone
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.cfg.Resizable {
		return outsideWidth, outsideHeight
	}
	return g.cfg.Width, g.cfg.Height
}

// Run opens a window and drives scene until the window closes, an update
// callback fails, or a finished test script ends the run.
func Run(scene *Scene, cfg RunConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 1280, 720
	}
	scene.camera.Viewport = Rect{Width: float64(cfg.Width), Height: float64(cfg.Height)}
	scene.SetShowFPS(cfg.ShowFPS)
	if cfg.Debug {
		scene.SetDebugMode(true)
	}

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	err := ebiten.RunGame(&game{scene: scene, cfg: cfg})
	if errors.Is(err, errScriptDone) {
		return nil
	}
	return err
}
