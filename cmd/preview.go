package cmd

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/skarab/awesome-shader-nft/capture"
	"github.com/skarab/awesome-shader-nft/driver"
	"github.com/skarab/awesome-shader-nft/host"
	"github.com/skarab/awesome-shader-nft/host/window"
	"github.com/urfave/cli"
)

// Preview flags on top of GenerateFlags.
func PreviewFlags() []cli.Flag {
	return append(GenerateFlags(),
		cli.BoolFlag{
			Name:  "capture",
			Usage: "write artifacts while previewing",
		},
		cli.IntFlag{
			Name:  "scale",
			Value: 3,
			Usage: "window scale factor",
		},
		cli.IntFlag{
			Name:  "tps",
			Value: ebiten.DefaultTPS,
			Usage: "iterations per second",
		},
		cli.BoolFlag{
			Name:  "stats",
			Usage: "show frame statistics overlay (toggle with F1)",
		},
	)
}

// Discards frames; lets the preview advance through the iterations
// without writing artifacts.
type discardCapturer struct{}

func (discardCapturer) Capture(int) (string, error) {
	return "", nil
}

// Run the iteration loop inside a window.
func Preview(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	setupLogging(ctx, cfg.LogLevel)

	rs, err := newRenderSetup(cfg)
	if err != nil {
		return err
	}
	defer rs.Close()

	var capturer driver.Capturer = discardCapturer{}
	if ctx.Bool("capture") {
		capturer = capture.New(cfg.CollectionDir, cfg.Prefix, rs.engine)
	}
	drv := driver.New(cfg, rs.generator, capturer, rs.engine)
	rs.engine.AddBehaviour(drv)

	ebiten.SetTPS(ctx.Int("tps"))
	err = window.Run(rs.engine, window.Options{
		Title:     "pearl preview",
		Scale:     ctx.Int("scale"),
		ShowStats: ctx.Bool("stats"),
	})
	logger.Noticef("preview stopped at iteration %d (%s)", drv.Counter(), drv.State())

	if errors.Is(err, driver.ErrHalted) || errors.Is(err, host.ErrStopped) {
		return nil
	}
	return err
}
