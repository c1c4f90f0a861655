// Package cpu implements a tracer device that executes the generation
// kernel and the ray tracing program on the host. Ray dispatches are split
// into row blocks that run in parallel.
package cpu

import (
	"fmt"
	"runtime"
	"time"

	"github.com/skarab/awesome-shader-nft/log"
	"github.com/skarab/awesome-shader-nft/scene"
	"github.com/skarab/awesome-shader-nft/tracer"
	"github.com/skarab/awesome-shader-nft/types"
	"golang.org/x/sync/errgroup"
)

// The device id reported by Id().
const DeviceId = "cpu"

// A row block worker.
type lane struct {
	stats tracer.BlockStats
}

func (l *lane) SpeedEstimate() float32 {
	return 1
}

func (l *lane) BlockStats() *tracer.BlockStats {
	return &l.stats
}

// A host device.
type Device struct {
	logger log.Logger

	workers   int
	lanes     []*lane
	laneList  []tracer.Lane
	scheduler tracer.BlockScheduler

	stats  tracer.Stats
	closed bool
}

// Create a cpu device that traces rays with the given number of workers.
// A non-positive worker count selects GOMAXPROCS workers.
func New(workers int) *Device {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Device{
		logger:    log.New("cpu device"),
		workers:   workers,
		scheduler: tracer.NewPerfectScheduler(),
	}
}

func (d *Device) Id() string {
	return DeviceId
}

// Allocate the worker lanes.
func (d *Device) Init() error {
	if d.closed {
		return tracer.ErrDeviceClosed
	}
	if d.lanes != nil {
		return nil
	}

	d.lanes = make([]*lane, d.workers)
	d.laneList = make([]tracer.Lane, d.workers)
	for idx := range d.lanes {
		d.lanes[idx] = &lane{}
		d.laneList[idx] = d.lanes[idx]
	}
	d.logger.Debugf("initialized with %d workers", d.workers)
	return nil
}

func (d *Device) Close() {
	d.closed = true
	d.lanes = nil
	d.laneList = nil
}

func (d *Device) SpeedEstimate() float32 {
	return float32(d.workers)
}

func (d *Device) NewBuffer(name string, count, stride int) (tracer.Buffer, error) {
	if d.closed {
		return nil, tracer.ErrDeviceClosed
	}
	if count <= 0 || stride <= 0 {
		return nil, fmt.Errorf("cpu device: buffer %s: invalid size %d x %d: %w", name, count, stride, tracer.ErrInvalidArgs)
	}
	return &buffer{
		device: d,
		name:   name,
		count:  count,
		stride: stride,
		data:   make([]float32, count*stride),
	}, nil
}

func (d *Device) NewTexture(name string, width, height int) (tracer.Texture, error) {
	if d.closed {
		return nil, tracer.ErrDeviceClosed
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("cpu device: texture %s: invalid size %d x %d: %w", name, width, height, tracer.ErrInvalidArgs)
	}
	return &texture{
		device: d,
		name:   name,
		width:  width,
		height: height,
		pix:    make([]uint8, 4*width*height),
	}, nil
}

// Run the generation kernel. Work item i reads parameter vector i and
// writes object record i.
func (d *Device) GenerateObjects(args tracer.GenerateArgs) error {
	if d.closed {
		return tracer.ErrDeviceClosed
	}
	if err := validateGenerateArgs(args); err != nil {
		return err
	}

	objects, err := d.bufferData(args.Objects)
	if err != nil {
		return err
	}
	values, err := d.bufferData(args.ObjectValues)
	if err != nil {
		return err
	}
	paletteData, err := d.bufferData(args.Palette)
	if err != nil {
		return err
	}

	start := time.Now()
	palette := make(scene.Palette, args.Palette.Len())
	for idx := range palette {
		copy(palette[idx][:], paletteData[idx*4:])
	}

	paramsPerObject := args.ObjectValues.Stride()
	width, height := float32(args.Width), float32(args.Height)
	for item := 0; item < args.Objects.Len(); item++ {
		params := values[item*paramsPerObject : (item+1)*paramsPerObject]
		obj := generateObject(params, palette, width, height)
		obj.Flatten(objects[item*scene.ObjectFloats:])
	}

	d.stats.GenerateTime = time.Since(start)
	return nil
}

func validateGenerateArgs(args tracer.GenerateArgs) error {
	switch {
	case args.Objects == nil || args.ObjectValues == nil || args.Palette == nil:
		return fmt.Errorf("cpu device: %s: missing buffer: %w", tracer.GenerateObjectsKernel, tracer.ErrInvalidArgs)
	case args.Width <= 0 || args.Height <= 0:
		return fmt.Errorf("cpu device: %s: invalid frame size %dx%d: %w", tracer.GenerateObjectsKernel, args.Width, args.Height, tracer.ErrInvalidArgs)
	case args.Objects.Stride() != scene.ObjectFloats:
		return fmt.Errorf("cpu device: %s: object stride %d: %w", tracer.GenerateObjectsKernel, args.Objects.Stride(), tracer.ErrInvalidArgs)
	case args.ObjectValues.Len() != args.Objects.Len():
		return fmt.Errorf("cpu device: %s: %d parameter vectors for %d objects: %w", tracer.GenerateObjectsKernel, args.ObjectValues.Len(), args.Objects.Len(), tracer.ErrSizeMismatch)
	case args.Palette.Stride() != 4 || args.Palette.Len() == 0:
		return fmt.Errorf("cpu device: %s: palette: %w", tracer.GenerateObjectsKernel, scene.ErrEmptyPalette)
	}
	return nil
}

// Run the ray tracing program. Rows are split into blocks which are traced
// in parallel by the worker lanes.
func (d *Device) DispatchRays(args tracer.TraceArgs, width, height int) error {
	if d.closed {
		return tracer.ErrDeviceClosed
	}
	if d.lanes == nil {
		if err := d.Init(); err != nil {
			return err
		}
	}

	prog, err := d.bindTraceProgram(args, width, height)
	if err != nil {
		return err
	}

	start := time.Now()
	blocks := d.scheduler.Schedule(d.laneList, uint32(height))

	var group errgroup.Group
	blockY := 0
	for idx, blockH := range blocks {
		l := d.lanes[idx]
		if blockH == 0 {
			l.stats = tracer.BlockStats{}
			continue
		}
		y0, y1 := blockY, blockY+int(blockH)
		blockY = y1

		group.Go(func() error {
			blockStart := time.Now()
			prog.traceRows(y0, y1)
			l.stats.BlockH = uint32(y1 - y0)
			l.stats.BlockTime = time.Since(blockStart).Nanoseconds() + 1
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	d.stats.TraceTime = time.Since(start)
	d.stats.Rays = width * height
	return nil
}

func (d *Device) bindTraceProgram(args tracer.TraceArgs, width, height int) (*traceProgram, error) {
	switch {
	case args.Camera == nil || args.Accel == nil || args.Objects == nil || args.Output == nil:
		return nil, fmt.Errorf("cpu device: %s: missing binding: %w", tracer.DispatchEntryPoint, tracer.ErrInvalidArgs)
	case args.Accel.Pass != tracer.RaytracingPass:
		return nil, fmt.Errorf("cpu device: %s: pass %q: %w", tracer.DispatchEntryPoint, args.Accel.Pass, tracer.ErrUnknownPass)
	case width <= 0 || height <= 0:
		return nil, fmt.Errorf("cpu device: %s: invalid extent %dx%d: %w", tracer.DispatchEntryPoint, width, height, tracer.ErrInvalidArgs)
	case args.Output.Width() != width || args.Output.Height() != height:
		return nil, fmt.Errorf("cpu device: %s: output %dx%d for extent %dx%d: %w", tracer.DispatchEntryPoint, args.Output.Width(), args.Output.Height(), width, height, tracer.ErrSizeMismatch)
	case args.Camera.PixelW != width || args.Camera.PixelH != height:
		return nil, fmt.Errorf("cpu device: %s: camera %dx%d for extent %dx%d: %w", tracer.DispatchEntryPoint, args.Camera.PixelW, args.Camera.PixelH, width, height, tracer.ErrSizeMismatch)
	case args.Camera.Direction != types.XYZ(0, 0, 1):
		return nil, fmt.Errorf("cpu device: %s: camera direction %v: %w", tracer.DispatchEntryPoint, args.Camera.Direction, tracer.ErrInvalidArgs)
	case args.Objects.Stride() != scene.ObjectFloats:
		return nil, fmt.Errorf("cpu device: %s: object stride %d: %w", tracer.DispatchEntryPoint, args.Objects.Stride(), tracer.ErrInvalidArgs)
	}

	prog := &traceProgram{width: width, height: height, camera: args.Camera}

	nodeData, err := d.bufferData(args.Accel.Nodes)
	if err != nil {
		return nil, err
	}
	prog.nodes = make([]scene.BvhNode, len(nodeData)/8)
	for idx := range prog.nodes {
		copy(prog.nodes[idx].Min[:], nodeData[idx*8:])
		copy(prog.nodes[idx].Max[:], nodeData[idx*8+4:])
	}

	itemData, err := d.bufferData(args.Accel.Items)
	if err != nil {
		return nil, err
	}
	prog.items = make([]uint32, len(itemData))
	for idx, v := range itemData {
		prog.items[idx] = uint32(v)
	}

	volumeData, err := d.bufferData(args.Accel.Volumes)
	if err != nil {
		return nil, err
	}
	if prog.volumes, err = scene.VolumesFromFloats(volumeData); err != nil {
		return nil, err
	}
	for idx, slot := range prog.items {
		if int(slot) >= len(prog.volumes) {
			return nil, fmt.Errorf("cpu device: %s: leaf item %d references volume %d of %d: %w", tracer.DispatchEntryPoint, idx, slot, len(prog.volumes), tracer.ErrInvalidArgs)
		}
	}

	objectData, err := d.bufferData(args.Objects)
	if err != nil {
		return nil, err
	}
	if prog.objects, err = scene.ObjectsFromFloats(objectData); err != nil {
		return nil, err
	}

	if args.Signature != nil {
		if prog.signature, err = d.textureData(args.Signature); err != nil {
			return nil, err
		}
	}

	out, err := d.textureData(args.Output)
	if err != nil {
		return nil, err
	}
	prog.output = out.pix

	return prog, nil
}

// All work is executed synchronously.
func (d *Device) Finish() error {
	if d.closed {
		return tracer.ErrDeviceClosed
	}
	return nil
}

func (d *Device) Stats() *tracer.Stats {
	return &d.stats
}
