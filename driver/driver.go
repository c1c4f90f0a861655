// Package driver implements the iteration state machine that feeds the
// generator with synthesized parameters and captures every produced frame.
package driver

import (
	"errors"
	"fmt"
	"time"

	"github.com/skarab/awesome-shader-nft/config"
	"github.com/skarab/awesome-shader-nft/log"
	"github.com/skarab/awesome-shader-nft/synth"
)

// ErrHalted is passed to the host when the iteration limit is reached.
var ErrHalted = errors.New("driver: iteration limit reached")

type State uint8

const (
	Seeding State = iota
	AwaitingRender
	Capturing
	Halted
)

func (s State) String() string {
	switch s {
	case Seeding:
		return "SEEDING"
	case AwaitingRender:
		return "AWAITING_RENDER"
	case Capturing:
		return "CAPTURING"
	case Halted:
		return "HALTED"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// The frame loop that runs the driver.
type Host interface {
	WaitForEndOfFrame(fn func() error)
	Stop(reason error)
}

// Receives pending parameter vectors.
type Target interface {
	SetPending(params []float32) (<-chan struct{}, error)
	ClearPending()
}

// Persists the final frame for an artifact index.
type Capturer interface {
	Capture(index int) (string, error)
}

// Driver statistics.
type Stats struct {
	Captured    int
	LastPath    string
	CaptureTime time.Duration
}

// A Driver advances one iteration per produced frame. It is meant to be
// registered as a host behaviour.
type Driver struct {
	logger   log.Logger
	target   Target
	capturer Capturer
	host     Host
	synth    *synth.Synthesizer

	limit   int
	counter int
	state   State
	done    <-chan struct{}
	stats   Stats
}

// Create a driver. The counter starts at cfg.StartIndex so the first
// artifact is numbered StartIndex+1.
func New(cfg config.Config, target Target, capturer Capturer, host Host) *Driver {
	return &Driver{
		logger:   log.New("driver"),
		target:   target,
		capturer: capturer,
		host:     host,
		synth:    synth.New(cfg.ObjectCapacity, cfg.ParamsPerObject),
		limit:    cfg.IterationLimit,
		counter:  cfg.StartIndex,
		state:    Seeding,
	}
}

// Get the current state.
func (d *Driver) State() State {
	return d.state
}

// Get the iteration counter. It equals the number of the last captured artifact.
func (d *Driver) Counter() int {
	return d.counter
}

// Get driver statistics.
func (d *Driver) Stats() Stats {
	return d.stats
}

// Seed the next iteration or halt once the limit has been reached.
func (d *Driver) Update() error {
	switch d.state {
	case Halted:
		return nil
	case Capturing:
		// Capture still scheduled for the end of the previous frame.
		return nil
	}

	if d.counter >= d.limit {
		d.state = Halted
		d.done = nil
		d.target.ClearPending()
		d.logger.Noticef("iteration limit %d reached", d.limit)
		d.host.Stop(ErrHalted)
		return nil
	}

	done, err := d.target.SetPending(d.synth.Synthesize(d.counter))
	if err != nil {
		d.state = Halted
		return err
	}
	d.done = done
	d.state = AwaitingRender
	return nil
}

// Schedule a capture if a frame was produced during this tick.
func (d *Driver) LateUpdate() error {
	if d.state != AwaitingRender {
		return nil
	}

	select {
	case <-d.done:
	default:
		// Frame skipped by the render hook; keep the parameters pending.
		return nil
	}

	d.done = nil
	d.target.ClearPending()
	d.state = Capturing
	index := d.counter + 1
	d.host.WaitForEndOfFrame(func() error {
		return d.capture(index)
	})
	return nil
}

func (d *Driver) capture(index int) error {
	start := time.Now()
	path, err := d.capturer.Capture(index)
	if err != nil {
		d.state = Halted
		d.logger.Errorf("capture of iteration %d failed: %v", index, err)
		return err
	}

	d.counter = index
	d.stats.Captured++
	d.stats.LastPath = path
	d.stats.CaptureTime += time.Since(start)
	d.state = Seeding
	d.logger.Infof("[%d/%d] wrote %s", index, d.limit, path)
	return nil
}
