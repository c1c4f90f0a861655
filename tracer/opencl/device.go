//go:build opencl

package opencl

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/jgillich/go-opencl/cl"
	"github.com/skarab/awesome-shader-nft/log"
	"github.com/skarab/awesome-shader-nft/scene"
	"github.com/skarab/awesome-shader-nft/tracer"
	"github.com/skarab/awesome-shader-nft/types"
)

//go:embed program.cl
var programSource string

// An opencl backed tracer device.
type Device struct {
	logger log.Logger
	info   DeviceInfo
	device *cl.Device

	// Opencl handles; allocated when device is initialized.
	ctx             *cl.Context
	queue           *cl.CommandQueue
	program         *cl.Program
	generateKernel  *cl.Kernel
	dispatchKernel  *cl.Kernel
	emptySignature  *cl.MemObject
	frustrum        *cl.MemObject
	maxWorkGroupLen int

	stats tracer.Stats
}

// Create an opencl device matching selector ("opencl", "opencl:<index>" or
// "opencl:<name filter>"). The device must be initialized before use.
func New(selector string) (tracer.Device, error) {
	sel, err := ParseSelector(selector)
	if err != nil {
		return nil, err
	}
	pd, err := selectDevice(sel)
	if err != nil {
		return nil, err
	}
	return &Device{
		logger: log.New("opencl device"),
		info:   pd.info,
		device: pd.device,
	}, nil
}

func (d *Device) Id() string {
	return fmt.Sprintf("opencl:%s", d.info.Name)
}

// Create the context and command queue and build the device program.
func (d *Device) Init() error {
	var err error

	// Already initialized
	if d.ctx != nil {
		return nil
	}

	if d.ctx, err = cl.CreateContext([]*cl.Device{d.device}); err != nil {
		return fmt.Errorf("opencl device (%s): could not create context: %w", d.info.Name, err)
	}
	if d.queue, err = d.ctx.CreateCommandQueue(d.device, 0); err != nil {
		defer d.Close()
		return fmt.Errorf("opencl device (%s): could not create command queue: %w", d.info.Name, err)
	}
	if d.program, err = d.ctx.CreateProgramWithSource([]string{programSource}); err != nil {
		defer d.Close()
		return fmt.Errorf("opencl device (%s): could not create program: %w", d.info.Name, err)
	}
	if err = d.program.BuildProgram([]*cl.Device{d.device}, ""); err != nil {
		defer d.Close()
		if buildErr, ok := err.(cl.BuildError); ok {
			return fmt.Errorf("%w (%s):\n%s", ErrProgramBuild, d.info.Name, string(buildErr))
		}
		return fmt.Errorf("%w (%s): %v", ErrProgramBuild, d.info.Name, err)
	}
	if d.generateKernel, err = d.program.CreateKernel(tracer.GenerateObjectsKernel); err != nil {
		defer d.Close()
		return fmt.Errorf("opencl device (%s): could not load kernel %s: %w", d.info.Name, tracer.GenerateObjectsKernel, err)
	}
	if d.dispatchKernel, err = d.program.CreateKernel(tracer.DispatchEntryPoint); err != nil {
		defer d.Close()
		return fmt.Errorf("opencl device (%s): could not load kernel %s: %w", d.info.Name, tracer.DispatchEntryPoint, err)
	}

	// Bound in place of a missing signature texture.
	if d.emptySignature, err = d.ctx.CreateEmptyBuffer(cl.MemReadOnly, 4); err != nil {
		defer d.Close()
		return fmt.Errorf("opencl device (%s): could not allocate signature placeholder: %w", d.info.Name, err)
	}

	if d.frustrum, err = d.ctx.CreateEmptyBuffer(cl.MemReadOnly, 16*4); err != nil {
		defer d.Close()
		return fmt.Errorf("opencl device (%s): could not allocate camera frustrum: %w", d.info.Name, err)
	}

	d.maxWorkGroupLen = d.device.MaxWorkGroupSize()
	d.logger.Noticef("initialized %s", d.info)
	return nil
}

// Shut down the device.
func (d *Device) Close() {
	if d.frustrum != nil {
		d.frustrum.Release()
		d.frustrum = nil
	}
	if d.emptySignature != nil {
		d.emptySignature.Release()
		d.emptySignature = nil
	}
	if d.dispatchKernel != nil {
		d.dispatchKernel.Release()
		d.dispatchKernel = nil
	}
	if d.generateKernel != nil {
		d.generateKernel.Release()
		d.generateKernel = nil
	}
	if d.program != nil {
		d.program.Release()
		d.program = nil
	}
	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.ctx != nil {
		d.ctx.Release()
		d.ctx = nil
	}
}

func (d *Device) SpeedEstimate() float32 {
	return float32(d.info.Speed)
}

func (d *Device) NewBuffer(name string, count, stride int) (tracer.Buffer, error) {
	if d.ctx == nil {
		return nil, ErrNotInitialized
	}
	if count <= 0 || stride <= 0 {
		return nil, fmt.Errorf("opencl device (%s): buffer %s: invalid size %d x %d: %w", d.info.Name, name, count, stride, tracer.ErrInvalidArgs)
	}
	mem, err := d.ctx.CreateEmptyBuffer(cl.MemReadWrite, count*stride*4)
	if err != nil {
		return nil, fmt.Errorf("opencl device (%s): could not allocate buffer %s of size %d: %w", d.info.Name, name, count*stride*4, err)
	}
	return &buffer{device: d, name: name, count: count, stride: stride, mem: mem}, nil
}

func (d *Device) NewTexture(name string, width, height int) (tracer.Texture, error) {
	if d.ctx == nil {
		return nil, ErrNotInitialized
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("opencl device (%s): texture %s: invalid size %d x %d: %w", d.info.Name, name, width, height, tracer.ErrInvalidArgs)
	}
	mem, err := d.ctx.CreateEmptyBuffer(cl.MemReadWrite, 4*width*height)
	if err != nil {
		return nil, fmt.Errorf("opencl device (%s): could not allocate texture %s: %w", d.info.Name, name, err)
	}
	return &texture{device: d, name: name, width: width, height: height, mem: mem}, nil
}

// Enqueue the generation kernel as a single work group.
func (d *Device) GenerateObjects(args tracer.GenerateArgs) error {
	if d.ctx == nil {
		return ErrNotInitialized
	}
	switch {
	case args.Objects == nil || args.ObjectValues == nil || args.Palette == nil:
		return fmt.Errorf("opencl device (%s): %s: missing buffer: %w", d.info.Name, tracer.GenerateObjectsKernel, tracer.ErrInvalidArgs)
	case args.Objects.Stride() != scene.ObjectFloats || args.Width <= 0 || args.Height <= 0:
		return fmt.Errorf("opencl device (%s): %s: %w", d.info.Name, tracer.GenerateObjectsKernel, tracer.ErrInvalidArgs)
	case args.ObjectValues.Len() != args.Objects.Len():
		return fmt.Errorf("opencl device (%s): %s: %d parameter vectors for %d objects: %w", d.info.Name, tracer.GenerateObjectsKernel, args.ObjectValues.Len(), args.Objects.Len(), tracer.ErrSizeMismatch)
	case args.Palette.Stride() != 4 || args.Palette.Len() == 0:
		return fmt.Errorf("opencl device (%s): %s: palette: %w", d.info.Name, tracer.GenerateObjectsKernel, scene.ErrEmptyPalette)
	}

	objects, err := d.memBuffer(args.Objects)
	if err != nil {
		return err
	}
	values, err := d.memBuffer(args.ObjectValues)
	if err != nil {
		return err
	}
	palette, err := d.memBuffer(args.Palette)
	if err != nil {
		return err
	}

	if err = d.generateKernel.SetArgs(
		int32(args.Width),
		int32(args.Height),
		objects,
		values,
		int32(args.ObjectValues.Stride()),
		palette,
		int32(args.Palette.Len()),
		int32(args.Objects.Len()),
	); err != nil {
		return fmt.Errorf("opencl device (%s): %s: could not set args: %w", d.info.Name, tracer.GenerateObjectsKernel, err)
	}

	count := args.Objects.Len()
	var local []int
	if count <= d.maxWorkGroupLen {
		local = []int{count}
	} else {
		d.logger.Warningf("object count %d exceeds the max work group size %d; running multiple work groups", count, d.maxWorkGroupLen)
	}

	start := time.Now()
	if _, err = d.queue.EnqueueNDRangeKernel(d.generateKernel, nil, []int{count}, local, nil); err != nil {
		return fmt.Errorf("opencl device (%s): could not enqueue %s: %w", d.info.Name, tracer.GenerateObjectsKernel, err)
	}
	d.stats.GenerateTime = time.Since(start)
	return nil
}

// Enqueue the ray dispatch over a width x height grid.
func (d *Device) DispatchRays(args tracer.TraceArgs, width, height int) error {
	if d.ctx == nil {
		return ErrNotInitialized
	}
	switch {
	case args.Camera == nil || args.Accel == nil || args.Objects == nil || args.Output == nil:
		return fmt.Errorf("opencl device (%s): %s: missing binding: %w", d.info.Name, tracer.DispatchEntryPoint, tracer.ErrInvalidArgs)
	case args.Accel.Pass != tracer.RaytracingPass:
		return fmt.Errorf("opencl device (%s): %s: pass %q: %w", d.info.Name, tracer.DispatchEntryPoint, args.Accel.Pass, tracer.ErrUnknownPass)
	case args.Output.Width() != width || args.Output.Height() != height:
		return fmt.Errorf("opencl device (%s): %s: output size: %w", d.info.Name, tracer.DispatchEntryPoint, tracer.ErrSizeMismatch)
	case args.Camera.PixelW != width || args.Camera.PixelH != height:
		return fmt.Errorf("opencl device (%s): %s: camera size: %w", d.info.Name, tracer.DispatchEntryPoint, tracer.ErrSizeMismatch)
	case args.Camera.Direction != types.XYZ(0, 0, 1):
		return fmt.Errorf("opencl device (%s): %s: camera direction %v: %w", d.info.Name, tracer.DispatchEntryPoint, args.Camera.Direction, tracer.ErrInvalidArgs)
	}

	frustrum := make([]float32, 0, 16)
	for _, corner := range args.Camera.Frustrum {
		frustrum = append(frustrum, corner[:]...)
	}
	if _, err := d.queue.EnqueueWriteBufferFloat32(d.frustrum, true, 0, frustrum, nil); err != nil {
		return fmt.Errorf("opencl device (%s): could not upload camera frustrum: %w", d.info.Name, err)
	}

	nodes, err := d.memBuffer(args.Accel.Nodes)
	if err != nil {
		return err
	}
	items, err := d.memBuffer(args.Accel.Items)
	if err != nil {
		return err
	}
	volumes, err := d.memBuffer(args.Accel.Volumes)
	if err != nil {
		return err
	}
	objects, err := d.memBuffer(args.Objects)
	if err != nil {
		return err
	}
	output, err := d.memTexture(args.Output)
	if err != nil {
		return err
	}

	signature, sigW, sigH, hasSignature := d.emptySignature, int32(1), int32(1), int32(0)
	if args.Signature != nil {
		sig, err := d.memTexture(args.Signature)
		if err != nil {
			return err
		}
		signature, sigW, sigH, hasSignature = sig.mem, int32(sig.width), int32(sig.height), 1
	}

	if err = d.dispatchKernel.SetArgs(
		d.frustrum,
		nodes,
		items,
		volumes,
		objects,
		int32(args.Objects.Len()),
		signature,
		sigW,
		sigH,
		hasSignature,
		output.mem,
		int32(width),
		int32(height),
	); err != nil {
		return fmt.Errorf("opencl device (%s): %s: could not set args: %w", d.info.Name, tracer.DispatchEntryPoint, err)
	}

	start := time.Now()
	if _, err = d.queue.EnqueueNDRangeKernel(d.dispatchKernel, nil, []int{width, height}, nil, nil); err != nil {
		return fmt.Errorf("opencl device (%s): could not enqueue %s: %w", d.info.Name, tracer.DispatchEntryPoint, err)
	}
	d.stats.TraceTime = time.Since(start)
	d.stats.Rays = width * height
	return nil
}

// Block until the command queue drains.
func (d *Device) Finish() error {
	if d.queue == nil {
		return ErrNotInitialized
	}
	if err := d.queue.Finish(); err != nil {
		return fmt.Errorf("opencl device (%s): %w", d.info.Name, err)
	}
	return nil
}

func (d *Device) Stats() *tracer.Stats {
	return &d.stats
}
