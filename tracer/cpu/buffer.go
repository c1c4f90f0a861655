package cpu

import (
	"fmt"

	"github.com/skarab/awesome-shader-nft/tracer"
)

// A host memory buffer.
type buffer struct {
	device   *Device
	name     string
	count    int
	stride   int
	data     []float32
	released bool
}

func (b *buffer) Name() string { return b.name }
func (b *buffer) Len() int     { return b.count }
func (b *buffer) Stride() int  { return b.stride }

func (b *buffer) Write(data []float32) error {
	if b.released {
		return fmt.Errorf("cpu device: buffer %s: %w", b.name, tracer.ErrResourceReleased)
	}
	if len(data) != len(b.data) {
		return fmt.Errorf("cpu device: buffer %s: write of %d values into %d: %w", b.name, len(data), len(b.data), tracer.ErrSizeMismatch)
	}
	copy(b.data, data)
	return nil
}

func (b *buffer) Read(dst []float32) error {
	if b.released {
		return fmt.Errorf("cpu device: buffer %s: %w", b.name, tracer.ErrResourceReleased)
	}
	if len(dst) != len(b.data) {
		return fmt.Errorf("cpu device: buffer %s: read of %d values from %d: %w", b.name, len(dst), len(b.data), tracer.ErrSizeMismatch)
	}
	copy(dst, b.data)
	return nil
}

func (b *buffer) Release() {
	b.released = true
	b.data = nil
}

// A host memory RGBA8 texture.
type texture struct {
	device   *Device
	name     string
	width    int
	height   int
	pix      []uint8
	released bool
}

func (t *texture) Name() string { return t.name }
func (t *texture) Width() int   { return t.width }
func (t *texture) Height() int  { return t.height }

func (t *texture) Write(pix []uint8) error {
	if t.released {
		return fmt.Errorf("cpu device: texture %s: %w", t.name, tracer.ErrResourceReleased)
	}
	if len(pix) != len(t.pix) {
		return fmt.Errorf("cpu device: texture %s: write of %d bytes into %d: %w", t.name, len(pix), len(t.pix), tracer.ErrSizeMismatch)
	}
	copy(t.pix, pix)
	return nil
}

func (t *texture) Read(pix []uint8) error {
	if t.released {
		return fmt.Errorf("cpu device: texture %s: %w", t.name, tracer.ErrResourceReleased)
	}
	if len(pix) != len(t.pix) {
		return fmt.Errorf("cpu device: texture %s: read of %d bytes from %d: %w", t.name, len(pix), len(t.pix), tracer.ErrSizeMismatch)
	}
	copy(pix, t.pix)
	return nil
}

func (t *texture) Release() {
	t.released = true
	t.pix = nil
}

// Get the backing store of a buffer allocated by this device.
func (d *Device) bufferData(buf tracer.Buffer) ([]float32, error) {
	b, ok := buf.(*buffer)
	if !ok || b == nil || b.device != d {
		return nil, tracer.ErrForeignResource
	}
	if b.released {
		return nil, fmt.Errorf("cpu device: buffer %s: %w", b.name, tracer.ErrResourceReleased)
	}
	return b.data, nil
}

// Get a texture allocated by this device.
func (d *Device) textureData(tex tracer.Texture) (*texture, error) {
	t, ok := tex.(*texture)
	if !ok || t == nil || t.device != d {
		return nil, tracer.ErrForeignResource
	}
	if t.released {
		return nil, fmt.Errorf("cpu device: texture %s: %w", t.name, tracer.ErrResourceReleased)
	}
	return t, nil
}
