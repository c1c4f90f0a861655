package cmd

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/skarab/awesome-shader-nft/config"
	"github.com/skarab/awesome-shader-nft/tracer/cpu"
	"github.com/urfave/cli"
)

func newContext(t *testing.T, args ...string) *cli.Context {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range GenerateFlags() {
		f.Apply(set)
	}
	if err := set.Parse(args); err != nil {
		t.Fatal(err)
	}
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(newContext(t))
	if err != nil {
		t.Fatal(err)
	}
	def := config.Default()
	if cfg.ExpectedWidth != def.ExpectedWidth || cfg.CollectionDir != def.CollectionDir || cfg.IterationLimit != def.IterationLimit {
		t.Fatalf("expected default config; got %+v", cfg)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pearl.toml")
	data := []byte("iterationLimit = 5\nprefix = \"shader\"\nexpectedHeight = 64\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(newContext(t, "--config", path, "--width", "32", "--limit", "3", "--palette", "#fff"))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.IterationLimit != 3 {
		t.Fatalf("expected flag to override the iteration limit; got %d", cfg.IterationLimit)
	}
	if cfg.Prefix != "shader" || cfg.ExpectedHeight != 64 {
		t.Fatalf("expected config file values to be kept; got prefix %q and height %d", cfg.Prefix, cfg.ExpectedHeight)
	}
	if cfg.ExpectedWidth != 32 {
		t.Fatalf("expected width 32; got %d", cfg.ExpectedWidth)
	}
	if len(cfg.Palette) != 1 || cfg.Palette[0] != "#fff" {
		t.Fatalf("expected palette [#fff]; got %v", cfg.Palette)
	}
}

func TestLoadConfigValidates(t *testing.T) {
	_, err := loadConfig(newContext(t, "--limit", "3", "--start", "4"))
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected error %v; got %v", config.ErrInvalidConfig, err)
	}
}

func TestOpenDevice(t *testing.T) {
	cfg := config.Default()
	cfg.Workers = 2

	dev, err := openDevice(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Close()
	if dev.Id() != cpu.DeviceId {
		t.Fatalf("expected device %q; got %q", cpu.DeviceId, dev.Id())
	}

	cfg.Device = "vulkan"
	if _, err = openDevice(cfg); err == nil {
		t.Fatal("expected an error for an unknown device")
	}

	cfg.Device = "opencl:bogus:"
	if _, err = openDevice(cfg); err == nil {
		t.Fatal("expected an error for an unavailable opencl device")
	}
}

func TestRenderSetup(t *testing.T) {
	cfg := config.Default()
	cfg.ObjectCapacity = 4
	cfg.ExpectedWidth = 8
	cfg.ExpectedHeight = 8

	rs, err := newRenderSetup(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer rs.Close()

	cam := rs.engine.MainCamera()
	if cam == nil || cam.PixelW != 8 || cam.PixelH != 8 {
		t.Fatalf("expected an 8x8 main camera; got %+v", cam)
	}

	cfg.Signature = filepath.Join(t.TempDir(), "missing.png")
	if _, err = newRenderSetup(cfg); err == nil {
		t.Fatal("expected an error for a missing signature")
	}
}

