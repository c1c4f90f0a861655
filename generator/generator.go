// Package generator connects synthesized parameter vectors to the render
// pipeline. Its render hook runs the object generation kernel followed by
// the ray tracing pass and composites the result into the camera target.
package generator

import (
	"fmt"
	"sync"

	"github.com/skarab/awesome-shader-nft/asset/texture"
	"github.com/skarab/awesome-shader-nft/config"
	"github.com/skarab/awesome-shader-nft/log"
	"github.com/skarab/awesome-shader-nft/renderer"
	"github.com/skarab/awesome-shader-nft/scene"
	"github.com/skarab/awesome-shader-nft/tracer"
)

// Profiling sample names.
const (
	SampleCreateObjects = "Create objects"
	SampleRaytracing    = "Raytracing"
)

var logger = log.New("generator")

// Generator statistics.
type Stats struct {
	// Frames produced by the render hook.
	Frames int

	// Hook invocations skipped because of a resolution mismatch.
	SkippedResolution int

	// Hook invocations skipped because no parameters were pending.
	SkippedIdle int
}

// A Generator owns a session and the pipeline subscription for its render hook.
type Generator struct {
	cfg     config.Config
	session *Session
	sub     *renderer.Subscription

	mu      sync.Mutex
	pending []float32
	done    chan struct{}
	stats   Stats
}

// Create a generator that renders through pipeline. All device resources
// are acquired here; a failure releases whatever was acquired and leaves
// the pipeline without a subscription.
func New(cfg config.Config, pipeline *renderer.Pipeline, signature *texture.Texture) (*Generator, error) {
	session, err := openSession(pipeline.Device(), cfg, signature)
	if err != nil {
		return nil, err
	}

	g := &Generator{
		cfg:     cfg,
		session: session,
	}
	if g.sub, err = pipeline.Subscribe(g.OnRender); err != nil {
		session.Close()
		return nil, err
	}

	logger.Infof(
		"session opened: %d slots, %d params per object, %dx%d frames, %d palette colors",
		cfg.ObjectCapacity, cfg.ParamsPerObject, cfg.ExpectedWidth, cfg.ExpectedHeight, len(session.palette),
	)
	return g, nil
}

// Get the generator session.
func (g *Generator) Session() *Session {
	return g.session
}

// Hand a parameter vector to the render hook. The returned channel receives
// a single value once a frame has been produced from these parameters.
func (g *Generator) SetPending(params []float32) (<-chan struct{}, error) {
	if err := g.session.check(); err != nil {
		return nil, err
	}
	if len(params) != g.cfg.ParamCount() {
		return nil, fmt.Errorf("%w: got %d; expected %d", ErrParamCount, len(params), g.cfg.ParamCount())
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = params
	g.done = make(chan struct{}, 1)
	return g.done, nil
}

// Drop the pending parameters. Later hook invocations are no-ops until new
// parameters are set.
func (g *Generator) ClearPending() {
	g.mu.Lock()
	g.pending = nil
	g.done = nil
	g.mu.Unlock()
}

// Check whether parameters are pending.
func (g *Generator) HasPending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending != nil
}

// Get generator statistics.
func (g *Generator) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stats
}

// The pipeline render hook.
func (g *Generator) OnRender(rc *renderer.RenderContext, cmd *renderer.CommandStream, cam *scene.Camera, vis renderer.Visibility) error {
	if err := g.session.check(); err != nil {
		return err
	}

	g.mu.Lock()
	if vis.Width != g.cfg.ExpectedWidth || vis.Height != g.cfg.ExpectedHeight {
		g.stats.SkippedResolution++
		g.mu.Unlock()
		logger.Debugf("skipping camera %s: resolution %dx%d does not match %dx%d", cam.Name, vis.Width, vis.Height, g.cfg.ExpectedWidth, g.cfg.ExpectedHeight)
		return nil
	}
	params, done := g.pending, g.done
	if params == nil {
		g.stats.SkippedIdle++
		g.mu.Unlock()
		return nil
	}
	g.stats.Frames++
	g.mu.Unlock()

	s := g.session
	width, height := vis.Width, vis.Height

	cmd.BeginSample(SampleCreateObjects)
	cmd.SetBufferData(s.values, params)
	cmd.SetBufferData(s.paletteData, s.palette.Floats())
	cmd.DispatchCompute(tracer.GenerateArgs{
		Width:        width,
		Height:       height,
		Objects:      s.objects,
		ObjectValues: s.values,
		Palette:      s.paletteData,
	})
	cmd.Barrier()
	cmd.EndSample(SampleCreateObjects)

	cmd.BeginSample(SampleRaytracing)
	output := cmd.GetTemporaryTarget("outputTex", width, height)
	cmd.DispatchRays(tracer.TraceArgs{
		Camera:    cam,
		Accel:     s.binding,
		Objects:   s.objects,
		Signature: s.signature,
	}, output)
	cmd.Blit(output, cam.Target)
	cmd.ReleaseTemporaryTarget(output)
	cmd.EndSample(SampleRaytracing)

	cmd.SignalCompletion(done)
	rc.ExecuteCommandStream(cmd)
	return nil
}

// Drop the pipeline subscription and release the session.
func (g *Generator) Close() {
	if g.sub != nil {
		g.sub.Unsubscribe()
	}
	g.ClearPending()
	g.session.Close()
}
