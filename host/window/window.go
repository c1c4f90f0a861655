// Package window runs the engine inside an ebiten window so a generation
// run can be watched while it progresses.
package window

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/skarab/awesome-shader-nft/host"
	"github.com/skarab/awesome-shader-nft/log"
)

var logger = log.New("window")

// Window options.
type Options struct {
	Title string

	// Integer window scale applied to the main camera resolution.
	Scale int

	// Display frame statistics.
	ShowStats bool
}

// An ebiten game that ticks the engine once per ebiten update.
type Game struct {
	engine *host.Engine
	opts   Options
	paused bool
	err    error
}

// Create a game for engine.
func NewGame(engine *host.Engine, opts Options) *Game {
	if opts.Scale < 1 {
		opts.Scale = 1
	}
	return &Game{engine: engine, opts: opts}
}

// Advance the engine. Space toggles pause, F1 toggles the statistics
// overlay and escape stops the engine.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.engine.Stop(nil)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
		logger.Infof("paused: %t", g.paused)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.opts.ShowStats = !g.opts.ShowStats
	}

	if !g.paused && !g.engine.Stopped() {
		if err := g.engine.Tick(); err != nil {
			g.err = err
		}
	}

	if g.engine.Stopped() {
		return ebiten.Termination
	}
	return nil
}

// Copy the main camera target to the screen.
func (g *Game) Draw(screen *ebiten.Image) {
	cam := g.engine.MainCamera()
	if cam == nil || cam.Target == nil {
		return
	}
	if w, h := screen.Bounds().Dx(), screen.Bounds().Dy(); w == cam.PixelW && h == cam.PixelH {
		screen.WritePixels(cam.Target.Pix)
	}

	if g.opts.ShowStats {
		stats := g.engine.Pipeline().Stats()
		msg := fmt.Sprintf("TPS: %.1f\nFrame: %d\nDevice: %s\nRender: %s",
			ebiten.ActualTPS(), g.engine.Frame(), stats.Device.Id, stats.RenderTime)
		if g.paused {
			msg += "\nPAUSED"
		}
		ebitenutil.DebugPrint(screen, msg)
	}
}

// Report the main camera resolution as the logical screen size.
func (g *Game) Layout(_, _ int) (int, int) {
	cam := g.engine.MainCamera()
	if cam == nil {
		return 1, 1
	}
	return cam.PixelW, cam.PixelH
}

// Open a window and run the engine until it stops or the window is closed.
// Returns the engine stop reason; closing the window reports host.ErrStopped.
func Run(engine *host.Engine, opts Options) error {
	cam := engine.MainCamera()
	if cam == nil {
		return host.ErrNoCamera
	}

	g := NewGame(engine, opts)
	ebiten.SetWindowSize(cam.PixelW*g.opts.Scale, cam.PixelH*g.opts.Scale)
	ebiten.SetWindowTitle(opts.Title)
	if err := ebiten.RunGame(g); err != nil {
		return err
	}

	if g.err != nil {
		return g.err
	}
	if !engine.Stopped() {
		engine.Stop(nil)
	}
	return engine.StopReason()
}
