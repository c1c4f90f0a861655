package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/skarab/awesome-shader-nft/capture"
	"github.com/skarab/awesome-shader-nft/driver"
	"github.com/urfave/cli"
)

// Generate flags on top of ConfigFlags.
func GenerateFlags() []cli.Flag {
	return append(ConfigFlags(),
		cli.IntFlag{
			Name:  "limit, n",
			Usage: "number of artifacts after which the run halts",
		},
		cli.IntFlag{
			Name:  "start",
			Usage: "resume a run after the artifact with this index",
		},
	)
}

// Run the iteration loop headless and write the whole collection.
func Generate(ctx *cli.Context) error {
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

	fc := capture.New(cfg.CollectionDir, cfg.Prefix, rs.engine)
	drv := driver.New(cfg, rs.generator, fc, rs.engine)
	rs.engine.AddBehaviour(drv)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Noticef("generating artifacts %d to %d into %s", cfg.StartIndex+1, cfg.IterationLimit, cfg.CollectionDir)
	start := time.Now()
	err = rs.engine.Run(runCtx)
	displayRunStats(runStats{
		driver:    drv.Stats(),
		generator: rs.generator.Stats(),
		frame:     rs.pipeline.Stats(),
		ticks:     rs.engine.Frame(),
		elapsed:   time.Since(start),
	})

	switch {
	case errors.Is(err, driver.ErrHalted):
		return nil
	case errors.Is(err, capture.ErrCaptureFailed), errors.Is(err, context.Canceled):
		logger.Errorf("run aborted; restart with --start %d to resume", drv.Counter())
	}
	return err
}
