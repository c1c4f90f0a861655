// Package renderer implements the frame pipeline that drives a single
// subscribed render handler once per visible camera and executes the
// commands it records on a tracer device.
package renderer

import (
	"fmt"
	"sync"
	"time"

	"github.com/skarab/awesome-shader-nft/log"
	"github.com/skarab/awesome-shader-nft/scene"
	"github.com/skarab/awesome-shader-nft/tracer"
)

// The result of the visibility pass for a camera.
type Visibility struct {
	// Viewport size in pixels.
	Width  int
	Height int
}

// The per camera render callback.
type RenderHandler func(rc *RenderContext, cmd *CommandStream, cam *scene.Camera, vis Visibility) error

// The capability returned by Subscribe. Dropping the subscription makes the
// handler slot available again.
type Subscription struct {
	pipeline *Pipeline
	handler  RenderHandler
}

// Remove the handler from the pipeline. Calling Unsubscribe more than once
// is a no-op.
func (s *Subscription) Unsubscribe() {
	p := s.pipeline
	if p == nil {
		return
	}

	p.mu.Lock()
	if p.sub == s {
		p.sub = nil
	}
	p.mu.Unlock()
	s.pipeline = nil
}

// Check whether the subscription still owns the handler slot.
func (s *Subscription) Active() bool {
	p := s.pipeline
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sub == s
}

// The render pipeline.
type Pipeline struct {
	logger log.Logger
	device tracer.Device

	mu  sync.Mutex
	sub *Subscription

	stats FrameStats
}

// Create a pipeline executing commands on dev.
func NewPipeline(dev tracer.Device) *Pipeline {
	return &Pipeline{
		logger: log.New("pipeline"),
		device: dev,
	}
}

// Register the render handler. At most one subscription can be active.
func (p *Pipeline) Subscribe(handler RenderHandler) (*Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sub != nil {
		return nil, ErrAlreadySubscribed
	}

	p.sub = &Subscription{pipeline: p, handler: handler}
	return p.sub, nil
}

// Get the device used for executing commands.
func (p *Pipeline) Device() tracer.Device {
	return p.device
}

// Render a frame for each camera. Cameras without a target are culled. For
// every visible camera the subscribed handler records its commands which
// are submitted before moving to the next camera.
func (p *Pipeline) Render(cameras []*scene.Camera) error {
	start := time.Now()
	stats := FrameStats{}
	defer func() {
		stats.RenderTime = time.Since(start)
		devStats := p.device.Stats()
		stats.Device = DeviceStat{
			Id:           p.device.Id(),
			GenerateTime: devStats.GenerateTime,
			TraceTime:    devStats.TraceTime,
			Rays:         devStats.Rays,
		}
		p.mu.Lock()
		p.stats = stats
		p.mu.Unlock()
	}()

	p.mu.Lock()
	sub := p.sub
	p.mu.Unlock()

	for _, cam := range cameras {
		vis, visible := cull(cam)
		if !visible {
			stats.Culled++
			continue
		}
		stats.Cameras++

		rc := &RenderContext{device: p.device, stats: &stats}
		if sub != nil {
			cmd := NewCommandStream(cam.Name)
			if err := sub.handler(rc, cmd, cam, vis); err != nil {
				return fmt.Errorf("renderer: camera %s: %w", cam.Name, err)
			}
		}
		if err := rc.Submit(); err != nil {
			return fmt.Errorf("renderer: camera %s: %w", cam.Name, err)
		}
	}

	return nil
}

// Get the statistics of the last rendered frame.
func (p *Pipeline) Stats() FrameStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func cull(cam *scene.Camera) (Visibility, bool) {
	if cam == nil || cam.Target == nil {
		return Visibility{}, false
	}
	size := cam.Target.Bounds().Size()
	if size.X <= 0 || size.Y <= 0 {
		return Visibility{}, false
	}
	return Visibility{Width: cam.PixelW, Height: cam.PixelH}, true
}

// The per camera render context. Command streams passed to
// ExecuteCommandStream are queued and run in order on Submit.
type RenderContext struct {
	device tracer.Device
	stats  *FrameStats
	queued []command
}

// Get the device that executes submitted commands.
func (rc *RenderContext) Device() tracer.Device {
	return rc.device
}

// Queue the commands recorded in cmd and clear it.
func (rc *RenderContext) ExecuteCommandStream(cmd *CommandStream) {
	rc.queued = append(rc.queued, cmd.commands...)
	cmd.commands = nil
}

// Run all queued commands in order and wait for the device to drain. The
// first failing command aborts the submission.
func (rc *RenderContext) Submit() error {
	cmds := rc.queued
	rc.queued = nil
	if len(cmds) == 0 {
		return nil
	}

	ex := &executor{
		device: rc.device,
		stats:  rc.stats,
		open:   make(map[string]time.Time),
	}
	defer ex.releaseTemps()

	for _, c := range cmds {
		if err := c.exec(ex); err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
	}
	for name := range ex.open {
		return fmt.Errorf("%w: %q never ended", ErrUnbalancedSample, name)
	}
	return rc.device.Finish()
}
