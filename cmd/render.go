package cmd

import (
	"errors"
	"time"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/skarab/awesome-shader-nft/synth"
	"github.com/urfave/cli"
)

// Render flags on top of ConfigFlags.
func RenderFlags() []cli.Flag {
	return append(ConfigFlags(),
		cli.IntFlag{
			Name:  "seed",
			Usage: "iteration seed",
		},
		cli.StringFlag{
			Name:  "file, f",
			Value: "frame.png",
			Usage: "image filename for the rendered frame",
		},
	)
}

// Render the frame of a single seed without running the iteration driver.
func RenderFrame(ctx *cli.Context) error {
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

	seed := ctx.Int("seed")
	done, err := rs.generator.SetPending(synth.New(cfg.ObjectCapacity, cfg.ParamsPerObject).Synthesize(seed))
	if err != nil {
		return err
	}

	start := time.Now()
	if err = rs.engine.Tick(); err != nil {
		return err
	}
	select {
	case <-done:
	default:
		return errors.New("render: no frame was produced")
	}
	rs.generator.ClearPending()

	img, err := rs.engine.Screenshot()
	if err != nil {
		return err
	}
	imgFile := ctx.String("file")
	if err = imgio.Save(imgFile, img, imgio.PNGEncoder()); err != nil {
		return err
	}
	logger.Noticef("rendered seed %d to %s in %d ms", seed, imgFile, time.Since(start).Nanoseconds()/1000000)

	displayFrameStats(rs.pipeline.Stats())
	return nil
}
