// Package host provides the frame loop that drives the render pipeline.
// Every tick runs the Update step of all behaviours, renders all cameras,
// runs the LateUpdate step and finally the end of frame callbacks.
package host

import (
	"context"
	"errors"
	"image"

	"github.com/skarab/awesome-shader-nft/log"
	"github.com/skarab/awesome-shader-nft/renderer"
	"github.com/skarab/awesome-shader-nft/scene"
	"golang.org/x/image/draw"
)

var (
	ErrStopped  = errors.New("host: engine stopped")
	ErrNoCamera = errors.New("host: no camera")
)

// A per tick participant of the frame loop.
type Behaviour interface {
	// Called at the start of every tick, before rendering.
	Update() error

	// Called after all cameras have been rendered.
	LateUpdate() error
}

// A headless engine.
type Engine struct {
	logger   log.Logger
	pipeline *renderer.Pipeline
	cameras  []*scene.Camera

	behaviours []Behaviour
	endOfFrame []func() error

	frame      uint64
	stopped    bool
	stopReason error
}

// Create an engine that renders cameras through pipeline. The first camera
// is the main camera.
func New(pipeline *renderer.Pipeline, cameras ...*scene.Camera) *Engine {
	return &Engine{
		logger:   log.New("engine"),
		pipeline: pipeline,
		cameras:  cameras,
	}
}

// Register a behaviour. Behaviours run in registration order.
func (e *Engine) AddBehaviour(b Behaviour) {
	e.behaviours = append(e.behaviours, b)
}

// Get the engine cameras.
func (e *Engine) Cameras() []*scene.Camera {
	return e.cameras
}

// Get the main camera or nil if the engine has no cameras.
func (e *Engine) MainCamera() *scene.Camera {
	if len(e.cameras) == 0 {
		return nil
	}
	return e.cameras[0]
}

// Get the render pipeline.
func (e *Engine) Pipeline() *renderer.Pipeline {
	return e.pipeline
}

// Get the number of completed ticks.
func (e *Engine) Frame() uint64 {
	return e.frame
}

// Schedule fn to run once the current frame has been fully rendered. An
// error returned by fn stops the engine.
func (e *Engine) WaitForEndOfFrame(fn func() error) {
	e.endOfFrame = append(e.endOfFrame, fn)
}

// Stop the engine. The reason is returned by Run; a nil reason is
// reported as ErrStopped. Only the first reason is kept.
func (e *Engine) Stop(reason error) {
	if e.stopped {
		return
	}
	if reason == nil {
		reason = ErrStopped
	}
	e.stopped = true
	e.stopReason = reason
	e.logger.Debugf("stopping at frame %d: %v", e.frame, reason)
}

// Check whether the engine has been stopped.
func (e *Engine) Stopped() bool {
	return e.stopped
}

// Get the reason passed to Stop.
func (e *Engine) StopReason() error {
	return e.stopReason
}

// Run a single frame. Calling Tick on a stopped engine returns the stop reason.
func (e *Engine) Tick() error {
	if e.stopped {
		return e.stopReason
	}

	for _, b := range e.behaviours {
		if err := b.Update(); err != nil {
			e.Stop(err)
			return err
		}
	}
	if e.stopped {
		e.endOfFrame = nil
		return nil
	}

	if err := e.pipeline.Render(e.cameras); err != nil {
		e.Stop(err)
		return err
	}

	for _, b := range e.behaviours {
		if err := b.LateUpdate(); err != nil {
			e.Stop(err)
			return err
		}
	}

	// Callbacks registered while running are deferred to the next frame.
	callbacks := e.endOfFrame
	e.endOfFrame = nil
	for _, fn := range callbacks {
		if err := fn(); err != nil {
			e.Stop(err)
			return err
		}
	}

	e.frame++
	return nil
}

// Tick until the engine stops or ctx is cancelled. Returns the stop reason
// or the context error.
func (e *Engine) Run(ctx context.Context) error {
	for !e.stopped {
		select {
		case <-ctx.Done():
			e.Stop(ctx.Err())
			return ctx.Err()
		default:
		}

		if err := e.Tick(); err != nil {
			return err
		}
	}
	return e.stopReason
}

// Copy the main camera target. Implements capture.Screen.
func (e *Engine) Screenshot() (image.Image, error) {
	cam := e.MainCamera()
	if cam == nil || cam.Target == nil {
		return nil, ErrNoCamera
	}
	b := cam.Target.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(out, image.Point{}, cam.Target, b, draw.Src, nil)
	return out, nil
}
