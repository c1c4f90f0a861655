// Package config holds the generator configuration surface. Values are read
// from an optional TOML file and then overridden by command line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Fixed values of the reference collection.
const (
	DefaultObjectCapacity  = 80
	DefaultParamsPerObject = 10
	DefaultIterationLimit  = 1000
	DefaultExpectedWidth   = 180
	DefaultExpectedHeight  = 180
	DefaultCollectionDir   = "../collection"
	DefaultPrefix          = "awesome_shader"
	DefaultDevice          = "cpu"
)

var (
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// The default palette used when none is configured.
var DefaultPalette = []string{
	"#1b1b3a", "#693668", "#a74482", "#f84aa7", "#ff3562",
	"#2ec4b6", "#e71d36", "#ff9f1c", "#fdfffc", "#011627",
}

// Config enumerates every tunable of a generation run.
type Config struct {
	// Number of object slots in the object and bounding volume buffers.
	ObjectCapacity int `toml:"objectCapacity"`

	// Number of synthesized parameters per object.
	ParamsPerObject int `toml:"paramsPerObject"`

	// Number of artifacts after which the driver halts.
	IterationLimit int `toml:"iterationLimit"`

	// The only frame size the pipeline renders at.
	ExpectedWidth  int `toml:"expectedWidth"`
	ExpectedHeight int `toml:"expectedHeight"`

	// Artifact output location and naming.
	CollectionDir string `toml:"collectionDir"`
	Prefix        string `toml:"prefix"`

	// Counter value to resume from. Artifact names start at StartIndex+1.
	StartIndex int `toml:"startIndex"`

	// Palette colors as hex strings (#rgb, #rrggbb or #rrggbbaa).
	Palette []string `toml:"palette"`

	// Path or http(s) url of the signature texture. May be empty.
	Signature string `toml:"signature"`

	// Device backend name ("cpu" or "opencl[:name filter]").
	Device string `toml:"device"`

	// Number of worker goroutines for the cpu backend; 0 selects GOMAXPROCS.
	Workers int `toml:"workers"`

	// Log level name.
	LogLevel string `toml:"logLevel"`
}

// Get the default configuration.
func Default() Config {
	palette := make([]string, len(DefaultPalette))
	copy(palette, DefaultPalette)

	return Config{
		ObjectCapacity:  DefaultObjectCapacity,
		ParamsPerObject: DefaultParamsPerObject,
		IterationLimit:  DefaultIterationLimit,
		ExpectedWidth:   DefaultExpectedWidth,
		ExpectedHeight:  DefaultExpectedHeight,
		CollectionDir:   DefaultCollectionDir,
		Prefix:          DefaultPrefix,
		Palette:         palette,
		Device:          DefaultDevice,
		LogLevel:        "notice",
	}
}

// Load a TOML config file on top of the default configuration. Keys missing
// from the file keep their default values. Relative signature paths are
// resolved against the directory of the config file.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: could not read %s: %w", path, err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err = dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config: could not parse %s: %w", path, err)
	}

	if cfg.Signature != "" && !isURL(cfg.Signature) && !filepath.IsAbs(cfg.Signature) {
		cfg.Signature = filepath.Join(filepath.Dir(path), cfg.Signature)
	}

	return cfg, nil
}

// Encode the configuration as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Total length of the parameter vector synthesized per iteration.
func (c Config) ParamCount() int {
	return c.ObjectCapacity * c.ParamsPerObject
}

// Validate the configuration. All returned errors wrap ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.ObjectCapacity <= 0:
		return fmt.Errorf("%w: objectCapacity must be positive; got %d", ErrInvalidConfig, c.ObjectCapacity)
	case c.ParamsPerObject <= 0:
		return fmt.Errorf("%w: paramsPerObject must be positive; got %d", ErrInvalidConfig, c.ParamsPerObject)
	case c.IterationLimit <= 0:
		return fmt.Errorf("%w: iterationLimit must be positive; got %d", ErrInvalidConfig, c.IterationLimit)
	case c.ExpectedWidth <= 0 || c.ExpectedHeight <= 0:
		return fmt.Errorf("%w: expected frame size must be positive; got %dx%d", ErrInvalidConfig, c.ExpectedWidth, c.ExpectedHeight)
	case c.StartIndex < 0 || c.StartIndex > c.IterationLimit:
		return fmt.Errorf("%w: startIndex must be in [0, %d]; got %d", ErrInvalidConfig, c.IterationLimit, c.StartIndex)
	case len(c.Palette) == 0:
		return fmt.Errorf("%w: palette must not be empty", ErrInvalidConfig)
	case c.Prefix == "":
		return fmt.Errorf("%w: prefix must not be empty", ErrInvalidConfig)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative; got %d", ErrInvalidConfig, c.Workers)
	}

	return nil
}

func isURL(s string) bool {
	return len(s) > 7 && (s[:7] == "http://" || (len(s) > 8 && s[:8] == "https://"))
}
