// Package capture persists composited frames as numbered PNG artifacts.
package capture

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/skarab/awesome-shader-nft/log"
)

var (
	ErrCaptureFailed = errors.New("capture: could not persist frame")
	ErrInvalidIndex  = errors.New("capture: artifact index must be positive")
)

// A source of final composited frames.
type Screen interface {
	Screenshot() (image.Image, error)
}

// Writes frames to <dir>/<prefix>_<index:04d>.png.
type FrameCapture struct {
	logger log.Logger
	dir    string
	prefix string
	screen Screen
}

// Create a frame capture that reads frames from screen.
func New(dir, prefix string, screen Screen) *FrameCapture {
	return &FrameCapture{
		logger: log.New("capture"),
		dir:    dir,
		prefix: prefix,
		screen: screen,
	}
}

// Get the artifact path for index.
func (fc *FrameCapture) Path(index int) string {
	return filepath.Join(fc.dir, fmt.Sprintf("%s_%04d.png", fc.prefix, index))
}

// Capture the current frame as artifact index. The artifact is written to a
// temporary file that is renamed into place so a failed capture never
// leaves a partial artifact behind. All errors wrap ErrCaptureFailed.
func (fc *FrameCapture) Capture(index int) (string, error) {
	if index <= 0 {
		return "", fmt.Errorf("%w: %w: %d", ErrCaptureFailed, ErrInvalidIndex, index)
	}

	img, err := fc.screen.Screenshot()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCaptureFailed, err)
	}

	if err = os.MkdirAll(fc.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCaptureFailed, err)
	}

	path := fc.Path(index)
	tmpPath := path + ".tmp"
	if err = imgio.Save(tmpPath, img, imgio.PNGEncoder()); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("%w: %s: %w", ErrCaptureFailed, path, err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("%w: %s: %w", ErrCaptureFailed, path, err)
	}

	fc.logger.Debugf("captured %s", path)
	return path, nil
}
