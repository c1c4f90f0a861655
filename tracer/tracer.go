package tracer

import (
	"time"

	"github.com/skarab/awesome-shader-nft/scene"
)

// Entry points that every device program exposes.
const (
	// Compute kernel that turns parameter vectors into object records.
	GenerateObjectsKernel = "GenerateObjects"

	// Ray generation entry point of the ray tracing program.
	DispatchEntryPoint = "Dispatch"

	// Hit group bound to the object instances of the acceleration structure.
	RaytracingPass = "RaytracingPass"
)

// A device visible float32 array of fixed size records.
type Buffer interface {
	// The name used for identifying the buffer in logs and errors.
	Name() string

	// Number of records.
	Len() int

	// Record size in float32 units.
	Stride() int

	// Overwrite buffer contents. The data length must match Len()*Stride().
	Write(data []float32) error

	// Copy buffer contents into dst. The dst length must match Len()*Stride().
	Read(dst []float32) error

	// Free the underlying storage. Calling Release on a released buffer is a no-op.
	Release()
}

// A device visible RGBA8 2D texture.
type Texture interface {
	Name() string
	Width() int
	Height() int

	// Overwrite the texel data. The pix length must be 4*Width()*Height().
	Write(pix []uint8) error

	// Copy texel data into pix.
	Read(pix []uint8) error

	Release()
}

// Arguments of the object generation kernel.
type GenerateArgs struct {
	// Output frame size in pixels.
	Width  int
	Height int

	// Output object records; one record per work item.
	Objects Buffer

	// Synthesized parameters; Stride() is the number of parameters per object.
	ObjectValues Buffer

	// Palette colors with a stride of 4.
	Palette Buffer
}

// The device side of an acceleration structure.
type AccelBinding struct {
	// Flattened bvh nodes (8 float32 per node).
	Nodes Buffer

	// Volume indices referenced by the bvh leafs.
	Items Buffer

	// Bounding volumes (6 float32 per volume).
	Volumes Buffer

	// The hit group invoked for intersections with instance volumes.
	Pass string
}

// Arguments of the ray dispatch.
type TraceArgs struct {
	// The camera generating the primary rays. Its pixel size must match
	// the output texture and it must look down +z.
	Camera *scene.Camera

	Accel     *AccelBinding
	Objects   Buffer
	Signature Texture
	Output    Texture
}

// Device statistics.
type Stats struct {
	// The time spent in the last generation kernel.
	GenerateTime time.Duration

	// The time spent in the last ray dispatch.
	TraceTime time.Duration

	// Number of rays traced by the last dispatch.
	Rays int
}

// A compute device capable of running the generation kernel and the ray
// tracing program.
type Device interface {
	// Get device id.
	Id() string

	// Initialize the device.
	Init() error

	// Shutdown and cleanup device.
	Close()

	// Get the device computation speed estimate compared to a
	// baseline (cpu) implementation.
	SpeedEstimate() float32

	// Allocate a buffer holding count records of stride float32 values.
	NewBuffer(name string, count, stride int) (Buffer, error)

	// Allocate a RGBA8 texture.
	NewTexture(name string, width, height int) (Texture, error)

	// Run the generation kernel as a single work group with one work item per object record.
	GenerateObjects(args GenerateArgs) error

	// Run the ray tracing program over a width x height grid.
	DispatchRays(args TraceArgs, width, height int) error

	// Block until all enqueued work completes.
	Finish() error

	// Retrieve last dispatch statistics.
	Stats() *Stats
}
