//go:build opencl

package opencl

import (
	"fmt"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"
	"github.com/skarab/awesome-shader-nft/tracer"
)

type buffer struct {
	device *Device
	name   string
	count  int
	stride int
	mem    *cl.MemObject
}

func (b *buffer) Name() string { return b.name }
func (b *buffer) Len() int     { return b.count }
func (b *buffer) Stride() int  { return b.stride }

func (b *buffer) Write(data []float32) error {
	if b.mem == nil {
		return fmt.Errorf("opencl device (%s): buffer %s: %w", b.device.info.Name, b.name, tracer.ErrResourceReleased)
	}
	if len(data) != b.count*b.stride {
		return fmt.Errorf("opencl device (%s): buffer %s: write of %d values into %d: %w", b.device.info.Name, b.name, len(data), b.count*b.stride, tracer.ErrSizeMismatch)
	}
	if _, err := b.device.queue.EnqueueWriteBufferFloat32(b.mem, true, 0, data, nil); err != nil {
		return fmt.Errorf("opencl device (%s): could not write buffer %s: %w", b.device.info.Name, b.name, err)
	}
	return nil
}

func (b *buffer) Read(dst []float32) error {
	if b.mem == nil {
		return fmt.Errorf("opencl device (%s): buffer %s: %w", b.device.info.Name, b.name, tracer.ErrResourceReleased)
	}
	if len(dst) != b.count*b.stride {
		return fmt.Errorf("opencl device (%s): buffer %s: read of %d values from %d: %w", b.device.info.Name, b.name, len(dst), b.count*b.stride, tracer.ErrSizeMismatch)
	}
	if _, err := b.device.queue.EnqueueReadBufferFloat32(b.mem, true, 0, dst, nil); err != nil {
		return fmt.Errorf("opencl device (%s): could not read buffer %s: %w", b.device.info.Name, b.name, err)
	}
	return nil
}

func (b *buffer) Release() {
	if b.mem != nil {
		b.mem.Release()
		b.mem = nil
	}
}

type texture struct {
	device *Device
	name   string
	width  int
	height int
	mem    *cl.MemObject
}

func (t *texture) Name() string { return t.name }
func (t *texture) Width() int   { return t.width }
func (t *texture) Height() int  { return t.height }

func (t *texture) Write(pix []uint8) error {
	if t.mem == nil {
		return fmt.Errorf("opencl device (%s): texture %s: %w", t.device.info.Name, t.name, tracer.ErrResourceReleased)
	}
	if len(pix) != 4*t.width*t.height {
		return fmt.Errorf("opencl device (%s): texture %s: write of %d bytes: %w", t.device.info.Name, t.name, len(pix), tracer.ErrSizeMismatch)
	}
	if _, err := t.device.queue.EnqueueWriteBuffer(t.mem, true, 0, len(pix), unsafe.Pointer(&pix[0]), nil); err != nil {
		return fmt.Errorf("opencl device (%s): could not write texture %s: %w", t.device.info.Name, t.name, err)
	}
	return nil
}

func (t *texture) Read(pix []uint8) error {
	if t.mem == nil {
		return fmt.Errorf("opencl device (%s): texture %s: %w", t.device.info.Name, t.name, tracer.ErrResourceReleased)
	}
	if len(pix) != 4*t.width*t.height {
		return fmt.Errorf("opencl device (%s): texture %s: read of %d bytes: %w", t.device.info.Name, t.name, len(pix), tracer.ErrSizeMismatch)
	}
	if _, err := t.device.queue.EnqueueReadBuffer(t.mem, true, 0, len(pix), unsafe.Pointer(&pix[0]), nil); err != nil {
		return fmt.Errorf("opencl device (%s): could not read texture %s: %w", t.device.info.Name, t.name, err)
	}
	return nil
}

func (t *texture) Release() {
	if t.mem != nil {
		t.mem.Release()
		t.mem = nil
	}
}

func (d *Device) memBuffer(buf tracer.Buffer) (*cl.MemObject, error) {
	b, ok := buf.(*buffer)
	if !ok || b == nil || b.device != d {
		return nil, tracer.ErrForeignResource
	}
	if b.mem == nil {
		return nil, fmt.Errorf("opencl device (%s): buffer %s: %w", d.info.Name, b.name, tracer.ErrResourceReleased)
	}
	return b.mem, nil
}

func (d *Device) memTexture(tex tracer.Texture) (*texture, error) {
	t, ok := tex.(*texture)
	if !ok || t == nil || t.device != d {
		return nil, tracer.ErrForeignResource
	}
	if t.mem == nil {
		return nil, fmt.Errorf("opencl device (%s): texture %s: %w", d.info.Name, t.name, tracer.ErrResourceReleased)
	}
	return t, nil
}
