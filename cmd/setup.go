package cmd

import (
	"fmt"
	"strings"

	"github.com/skarab/awesome-shader-nft/asset"
	"github.com/skarab/awesome-shader-nft/asset/texture"
	"github.com/skarab/awesome-shader-nft/config"
	"github.com/skarab/awesome-shader-nft/generator"
	"github.com/skarab/awesome-shader-nft/host"
	"github.com/skarab/awesome-shader-nft/renderer"
	"github.com/skarab/awesome-shader-nft/scene"
	"github.com/skarab/awesome-shader-nft/tracer"
	"github.com/skarab/awesome-shader-nft/tracer/cpu"
	"github.com/skarab/awesome-shader-nft/tracer/opencl"
	"github.com/urfave/cli"
)

// Flags that override config file values. Shared by all rendering commands.
func ConfigFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "load settings from a TOML config file",
		},
		cli.StringFlag{
			Name:  "out, o",
			Value: config.DefaultCollectionDir,
			Usage: "collection directory for the generated artifacts",
		},
		cli.StringFlag{
			Name:  "prefix",
			Value: config.DefaultPrefix,
			Usage: "artifact file name prefix",
		},
		cli.IntFlag{
			Name:  "width",
			Value: config.DefaultExpectedWidth,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: config.DefaultExpectedHeight,
			Usage: "frame height",
		},
		cli.IntFlag{
			Name:  "objects",
			Value: config.DefaultObjectCapacity,
			Usage: "number of object slots",
		},
		cli.StringSliceFlag{
			Name:  "palette, p",
			Value: &cli.StringSlice{},
			Usage: "palette color in hex notation; may be repeated",
		},
		cli.StringFlag{
			Name:  "signature, s",
			Usage: "path or url of the signature image blended over every frame",
		},
		cli.StringFlag{
			Name:  "device, d",
			Value: config.DefaultDevice,
			Usage: `tracer device: "cpu" or "opencl[:index|:name]"`,
		},
		cli.IntFlag{
			Name:  "workers",
			Usage: "number of cpu device workers; 0 uses all cores",
		},
	}
}

// Load the config file (if any) and apply flag overrides. Only flags that
// were explicitly set override config file values; flag defaults match the
// config defaults.
func loadConfig(ctx *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := ctx.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}

	if ctx.IsSet("out") {
		cfg.CollectionDir = ctx.String("out")
	}
	if ctx.IsSet("prefix") {
		cfg.Prefix = ctx.String("prefix")
	}
	if ctx.IsSet("width") {
		cfg.ExpectedWidth = ctx.Int("width")
	}
	if ctx.IsSet("height") {
		cfg.ExpectedHeight = ctx.Int("height")
	}
	if ctx.IsSet("objects") {
		cfg.ObjectCapacity = ctx.Int("objects")
	}
	if palette := ctx.StringSlice("palette"); len(palette) != 0 {
		cfg.Palette = palette
	}
	if ctx.IsSet("signature") {
		cfg.Signature = ctx.String("signature")
	}
	if ctx.IsSet("device") {
		cfg.Device = ctx.String("device")
	}
	if ctx.IsSet("workers") {
		cfg.Workers = ctx.Int("workers")
	}
	if ctx.IsSet("limit") {
		cfg.IterationLimit = ctx.Int("limit")
	}
	if ctx.IsSet("start") {
		cfg.StartIndex = ctx.Int("start")
	}

	return cfg, cfg.Validate()
}

// Create and initialize the configured tracer device.
func openDevice(cfg config.Config) (tracer.Device, error) {
	var (
		dev tracer.Device
		err error
	)
	switch {
	case cfg.Device == cpu.DeviceId:
		dev = cpu.New(cfg.Workers)
	case strings.HasPrefix(cfg.Device, "opencl"):
		if dev, err = opencl.New(cfg.Device); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown device %q", cfg.Device)
	}

	if err = dev.Init(); err != nil {
		return nil, err
	}
	logger.Infof("using device %q", dev.Id())
	return dev, nil
}

// Load the signature texture. An empty path yields a nil texture.
func loadSignature(cfg config.Config) (*texture.Texture, error) {
	if cfg.Signature == "" {
		return nil, nil
	}

	res, err := asset.NewResource(cfg.Signature, nil)
	if err != nil {
		return nil, err
	}
	return texture.New(res)
}

// The objects shared by all rendering commands.
type renderSetup struct {
	device    tracer.Device
	pipeline  *renderer.Pipeline
	generator *generator.Generator
	engine    *host.Engine
}

// Acquire the device, open a generator session and create a headless
// engine with a single camera at the expected resolution.
func newRenderSetup(cfg config.Config) (*renderSetup, error) {
	signature, err := loadSignature(cfg)
	if err != nil {
		return nil, err
	}

	dev, err := openDevice(cfg)
	if err != nil {
		return nil, err
	}

	pipeline := renderer.NewPipeline(dev)
	gen, err := generator.New(cfg, pipeline, signature)
	if err != nil {
		dev.Close()
		return nil, err
	}

	cam := scene.NewCamera("main", cfg.ExpectedWidth, cfg.ExpectedHeight)
	return &renderSetup{
		device:    dev,
		pipeline:  pipeline,
		generator: gen,
		engine:    host.New(pipeline, cam),
	}, nil
}

func (rs *renderSetup) Close() {
	rs.generator.Close()
	rs.device.Close()
}
