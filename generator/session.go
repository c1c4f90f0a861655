package generator

import (
	"fmt"

	"github.com/skarab/awesome-shader-nft/asset/texture"
	"github.com/skarab/awesome-shader-nft/config"
	"github.com/skarab/awesome-shader-nft/scene"
	"github.com/skarab/awesome-shader-nft/tracer"
	"github.com/skarab/awesome-shader-nft/tracer/accel"
)

// The material bound to the object volumes.
var objectMaterial = scene.Material{
	Name:   "awesome_shader",
	Shader: "RaytracingShader",
	Pass:   tracer.RaytracingPass,
}

// A Session owns every device resource used by the generator. All
// resources are acquired by openSession and released by Close.
type Session struct {
	device tracer.Device

	// Object records and the parameters they are generated from.
	objects tracer.Buffer
	values  tracer.Buffer

	palette     scene.Palette
	paletteData tracer.Buffer

	volumes   []scene.BoundingVolume
	accel     *accel.AccelerationStructure
	binding   *tracer.AccelBinding
	signature tracer.Texture

	closed bool
}

// Acquire all session resources. On failure every resource acquired so
// far is released before returning.
func openSession(dev tracer.Device, cfg config.Config, signature *texture.Texture) (s *Session, err error) {
	if dev == nil {
		return nil, ErrNoDevice
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	palette, err := scene.ParsePalette(cfg.Palette)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	s = &Session{
		device:  dev,
		palette: palette,
		volumes: scene.PlaceholderVolumes(cfg.ObjectCapacity),
	}
	defer func() {
		if err != nil {
			s.Close()
			s = nil
		}
	}()

	if s.objects, err = dev.NewBuffer("objects", cfg.ObjectCapacity, scene.ObjectFloats); err != nil {
		return s, err
	}
	if s.values, err = dev.NewBuffer("objectValues", cfg.ObjectCapacity, cfg.ParamsPerObject); err != nil {
		return s, err
	}
	if s.paletteData, err = dev.NewBuffer("palette", len(palette), 4); err != nil {
		return s, err
	}

	s.accel = accel.New(dev)
	if _, err = s.accel.AddInstance(s.volumes, &objectMaterial); err != nil {
		return s, err
	}
	if err = s.accel.Build(); err != nil {
		return s, err
	}
	if s.binding, err = s.accel.Binding(); err != nil {
		return s, err
	}

	if signature != nil {
		fit := signature.Fit(cfg.ExpectedWidth, cfg.ExpectedHeight)
		if s.signature, err = dev.NewTexture("signature", int(fit.Width), int(fit.Height)); err != nil {
			return s, err
		}
		if err = s.signature.Write(fit.Data); err != nil {
			return s, err
		}
	}

	return s, nil
}

// Get the number of object slots.
func (s *Session) Capacity() int {
	return len(s.volumes)
}

// Read back the generated object records.
func (s *Session) Objects() ([]scene.ObjectRecord, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	data := make([]float32, s.objects.Len()*scene.ObjectFloats)
	if err := s.objects.Read(data); err != nil {
		return nil, err
	}
	return scene.ObjectsFromFloats(data)
}

// Read back the device bounding volumes and check that volume i still
// encodes slot i.
func (s *Session) VerifySlots() error {
	if s.closed {
		return ErrSessionClosed
	}
	data := make([]float32, s.binding.Volumes.Len()*scene.VolumeFloats)
	if err := s.binding.Volumes.Read(data); err != nil {
		return err
	}
	volumes, err := scene.VolumesFromFloats(data)
	if err != nil {
		return err
	}
	if len(volumes) != len(s.volumes) {
		return fmt.Errorf("%w: %d device volumes for %d slots", ErrSlotIdentity, len(volumes), len(s.volumes))
	}
	for idx, bv := range volumes {
		if bv != s.volumes[idx] || scene.PlaceholderSlot(bv) != idx {
			return fmt.Errorf("%w: volume %d", ErrSlotIdentity, idx)
		}
	}
	return nil
}

// Release all session resources. Close can be called any number of times.
func (s *Session) Close() {
	if s == nil || s.closed {
		return
	}
	s.closed = true

	if s.accel != nil {
		s.accel.Release()
	}
	for _, buf := range []tracer.Buffer{s.objects, s.values, s.paletteData} {
		if buf != nil {
			buf.Release()
		}
	}
	if s.signature != nil {
		s.signature.Release()
	}
}

func (s *Session) check() error {
	if s == nil || s.closed {
		return ErrSessionClosed
	}
	return nil
}
