package renderer

import (
	"fmt"
	"image"
	"time"

	"github.com/skarab/awesome-shader-nft/tracer"
	"golang.org/x/image/draw"
)

// A temporary render target. The backing texture only exists between the
// execution of the commands that acquire and release it.
type TempTarget struct {
	Name   string
	Width  int
	Height int

	texture tracer.Texture
}

// Get the backing texture. It is nil outside the acquire/release window.
func (t *TempTarget) Texture() tracer.Texture {
	return t.texture
}

type command struct {
	name string
	exec func(*executor) error
}

// State shared by the commands of a single submission.
type executor struct {
	device tracer.Device
	stats  *FrameStats
	open   map[string]time.Time

	// Targets acquired during this submission.
	temps []*TempTarget
}

// Release targets that are still held when a submission ends.
func (ex *executor) releaseTemps() {
	for _, t := range ex.temps {
		if t.texture != nil {
			t.texture.Release()
			t.texture = nil
		}
	}
	ex.temps = nil
}

// An ordered list of recorded commands. Recording never touches the device;
// commands run when the owning render context submits.
type CommandStream struct {
	Name string

	commands []command
}

// Create an empty command stream.
func NewCommandStream(name string) *CommandStream {
	return &CommandStream{Name: name}
}

// Get the number of recorded commands.
func (cs *CommandStream) Len() int {
	return len(cs.commands)
}

// Get the names of the recorded commands.
func (cs *CommandStream) Commands() []string {
	names := make([]string, len(cs.commands))
	for idx, c := range cs.commands {
		names[idx] = c.name
	}
	return names
}

// Remove all recorded commands.
func (cs *CommandStream) Clear() {
	cs.commands = cs.commands[:0]
}

func (cs *CommandStream) record(name string, exec func(*executor) error) {
	cs.commands = append(cs.commands, command{name: name, exec: exec})
}

// Start a named profiling sample.
func (cs *CommandStream) BeginSample(name string) {
	cs.record("BeginSample:"+name, func(ex *executor) error {
		if _, open := ex.open[name]; open {
			return fmt.Errorf("%w: %q already started", ErrUnbalancedSample, name)
		}
		ex.open[name] = time.Now()
		return nil
	})
}

// End a named profiling sample.
func (cs *CommandStream) EndSample(name string) {
	cs.record("EndSample:"+name, func(ex *executor) error {
		start, open := ex.open[name]
		if !open {
			return fmt.Errorf("%w: %q not started", ErrUnbalancedSample, name)
		}
		delete(ex.open, name)
		ex.stats.Samples = append(ex.stats.Samples, SampleStat{Name: name, Duration: time.Since(start)})
		return nil
	})
}

// Record a generation kernel dispatch.
func (cs *CommandStream) DispatchCompute(args tracer.GenerateArgs) {
	cs.record("DispatchCompute:"+tracer.GenerateObjectsKernel, func(ex *executor) error {
		return ex.device.GenerateObjects(args)
	})
}

// Record a completion barrier. Commands recorded after the barrier observe
// the results of every command recorded before it.
func (cs *CommandStream) Barrier() {
	cs.record("Barrier", func(ex *executor) error {
		return ex.device.Finish()
	})
}

// Record a ray dispatch over the output extent. The output texture is
// resolved from the temporary target at execution time.
func (cs *CommandStream) DispatchRays(args tracer.TraceArgs, output *TempTarget) {
	cs.record("DispatchRays:"+tracer.DispatchEntryPoint, func(ex *executor) error {
		if output.texture == nil {
			return fmt.Errorf("%w: %s", ErrTargetNotAcquired, output.Name)
		}
		args.Output = output.texture
		return ex.device.DispatchRays(args, output.Width, output.Height)
	})
}

// Record the acquisition of a temporary target.
func (cs *CommandStream) GetTemporaryTarget(name string, width, height int) *TempTarget {
	target := &TempTarget{Name: name, Width: width, Height: height}
	cs.record("GetTemporaryTarget:"+name, func(ex *executor) error {
		tex, err := ex.device.NewTexture(name, width, height)
		if err != nil {
			return err
		}
		target.texture = tex
		ex.temps = append(ex.temps, target)
		return nil
	})
	return target
}

// Record the release of a temporary target.
func (cs *CommandStream) ReleaseTemporaryTarget(target *TempTarget) {
	cs.record("ReleaseTemporaryTarget:"+target.Name, func(_ *executor) error {
		if target.texture != nil {
			target.texture.Release()
			target.texture = nil
		}
		return nil
	})
}

// Record a copy of src into dst. The copy is scaled when the sizes differ.
func (cs *CommandStream) Blit(src *TempTarget, dst *image.RGBA) {
	cs.record("Blit:"+src.Name, func(ex *executor) error {
		if src.texture == nil {
			return fmt.Errorf("%w: %s", ErrTargetNotAcquired, src.Name)
		}
		if err := ex.device.Finish(); err != nil {
			return err
		}

		img := image.NewRGBA(image.Rect(0, 0, src.Width, src.Height))
		if err := src.texture.Read(img.Pix); err != nil {
			return err
		}

		if img.Bounds().Size() == dst.Bounds().Size() {
			draw.Copy(dst, dst.Bounds().Min, img, img.Bounds(), draw.Src, nil)
		} else {
			draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		}
		return nil
	})
}

// Record an upload of data into buf. The data is copied at record time.
func (cs *CommandStream) SetBufferData(buf tracer.Buffer, data []float32) {
	snapshot := append([]float32(nil), data...)
	cs.record("SetBufferData:"+buf.Name(), func(_ *executor) error {
		return buf.Write(snapshot)
	})
}

// Record a completion signal. When executed, the command performs a
// non-blocking send on done; a signal that is already pending is kept.
func (cs *CommandStream) SignalCompletion(done chan<- struct{}) {
	cs.record("SignalCompletion", func(_ *executor) error {
		select {
		case done <- struct{}{}:
		default:
		}
		return nil
	})
}
