// Package accel maintains the spatial index that routes ray queries to
// object slots. The index is built once from a set of bounding volume
// instances and then bound read-only to every ray dispatch.
package accel

import (
	"errors"
	"fmt"

	"github.com/skarab/awesome-shader-nft/asset/compiler/bvh"
	"github.com/skarab/awesome-shader-nft/log"
	"github.com/skarab/awesome-shader-nft/scene"
	"github.com/skarab/awesome-shader-nft/tracer"
)

// The number of volumes that can share a bvh leaf. Slots must stay
// individually addressable so each leaf holds a single volume.
const minLeafItems = 1

var (
	ErrAlreadyBuilt      = errors.New("accel: acceleration structure already built")
	ErrNotBuilt          = errors.New("accel: acceleration structure not built")
	ErrReleased          = errors.New("accel: acceleration structure released")
	ErrNoInstances       = errors.New("accel: no instances")
	ErrMalformedVolume   = errors.New("accel: malformed bounding volume")
	ErrOverlappingVolume = errors.New("accel: overlapping bounding volumes")
	ErrPassMismatch      = errors.New("accel: instances bind different passes")
)

// A renderable instance: a range of bounding volumes bound to a material.
type Instance struct {
	Volumes  []scene.BoundingVolume
	Material *scene.Material

	// Index of the first volume in the combined volume list.
	First int
}

// A volume tagged with its index in the combined volume list.
type indexedVolume struct {
	scene.BoundingVolume
	index uint32
}

// An acceleration structure over a fixed set of bounding volumes.
type AccelerationStructure struct {
	logger log.Logger
	device tracer.Device

	instances []Instance
	volumes   []scene.BoundingVolume

	nodes []scene.BvhNode
	items []uint32
	stats bvh.Stats

	binding  *tracer.AccelBinding
	built    bool
	released bool
}

// Create an empty acceleration structure whose device side resources are
// allocated on dev.
func New(dev tracer.Device) *AccelerationStructure {
	return &AccelerationStructure{
		logger: log.New("accel"),
		device: dev,
	}
}

// Register volumes bound to mat. Instances can only be added before Build.
func (as *AccelerationStructure) AddInstance(volumes []scene.BoundingVolume, mat *scene.Material) (int, error) {
	switch {
	case as.released:
		return -1, ErrReleased
	case as.built:
		return -1, ErrAlreadyBuilt
	}

	inst := Instance{
		Volumes:  append([]scene.BoundingVolume(nil), volumes...),
		Material: mat,
		First:    len(as.volumes),
	}
	as.instances = append(as.instances, inst)
	as.volumes = append(as.volumes, inst.Volumes...)
	return len(as.instances) - 1, nil
}

// Validate instances, partition their volumes into a bvh and upload the
// result to the device. Build runs once; later calls are no-ops. Any
// validation failure leaves the structure unbuilt and nothing allocated.
func (as *AccelerationStructure) Build() error {
	switch {
	case as.released:
		return ErrReleased
	case as.built:
		return nil
	}

	pass, err := as.validate()
	if err != nil {
		return err
	}

	workList := make([]bvh.BoundedVolume, len(as.volumes))
	for idx, bv := range as.volumes {
		workList[idx] = indexedVolume{BoundingVolume: bv, index: uint32(idx)}
	}

	as.items = make([]uint32, 0, len(as.volumes))
	as.nodes, as.stats = bvh.Build(workList, minLeafItems, func(leaf *scene.BvhNode, itemList []bvh.BoundedVolume) {
		leaf.SetItems(uint32(len(as.items)), uint32(len(itemList)))
		for _, item := range itemList {
			as.items = append(as.items, item.(indexedVolume).index)
		}
	}, bvh.SurfaceAreaHeuristic)

	if len(as.items) != len(as.volumes) {
		return fmt.Errorf("accel: bvh partitioned %d of %d volumes: %w", len(as.items), len(as.volumes), ErrMalformedVolume)
	}

	binding, err := as.upload(pass)
	if err != nil {
		return err
	}

	as.binding = binding
	as.built = true
	as.logger.Debugf("built acceleration structure: %d volumes, %d nodes, %d instances", len(as.volumes), len(as.nodes), len(as.instances))
	return nil
}

func (as *AccelerationStructure) validate() (string, error) {
	if len(as.instances) == 0 || len(as.volumes) == 0 {
		return "", ErrNoInstances
	}

	pass := ""
	for idx, inst := range as.instances {
		if err := inst.Material.Validate(); err != nil {
			return "", fmt.Errorf("accel: instance %d: %w", idx, err)
		}
		if inst.Material.Pass != tracer.RaytracingPass {
			return "", fmt.Errorf("accel: instance %d pass %q: %w", idx, inst.Material.Pass, tracer.ErrUnknownPass)
		}
		if pass != "" && inst.Material.Pass != pass {
			return "", ErrPassMismatch
		}
		pass = inst.Material.Pass
	}

	for idx, bv := range as.volumes {
		if !bv.Valid() {
			return "", fmt.Errorf("accel: volume %d (%v, %v): %w", idx, bv.Min, bv.Max, ErrMalformedVolume)
		}
		for other := idx + 1; other < len(as.volumes); other++ {
			if bv.Overlaps(as.volumes[other]) {
				return "", fmt.Errorf("accel: volumes %d and %d: %w", idx, other, ErrOverlappingVolume)
			}
		}
	}

	return pass, nil
}

func (as *AccelerationStructure) upload(pass string) (*tracer.AccelBinding, error) {
	var err error
	binding := &tracer.AccelBinding{Pass: pass}
	defer func() {
		if err != nil {
			releaseBinding(binding)
		}
	}()

	if binding.Nodes, err = as.device.NewBuffer("bvhNodes", len(as.nodes), 8); err != nil {
		return nil, err
	}
	if err = binding.Nodes.Write(scene.FlattenBvhNodes(as.nodes)); err != nil {
		return nil, err
	}

	if binding.Items, err = as.device.NewBuffer("bvhItems", len(as.items), 1); err != nil {
		return nil, err
	}
	itemData := make([]float32, len(as.items))
	for idx, item := range as.items {
		itemData[idx] = float32(item)
	}
	if err = binding.Items.Write(itemData); err != nil {
		return nil, err
	}

	if binding.Volumes, err = as.device.NewBuffer("volumes", len(as.volumes), scene.VolumeFloats); err != nil {
		return nil, err
	}
	if err = binding.Volumes.Write(scene.FlattenVolumes(as.volumes)); err != nil {
		return nil, err
	}

	return binding, nil
}

// Get the device binding. It is only available after a successful Build.
func (as *AccelerationStructure) Binding() (*tracer.AccelBinding, error) {
	switch {
	case as.released:
		return nil, ErrReleased
	case !as.built:
		return nil, ErrNotBuilt
	}
	return as.binding, nil
}

// Get the registered instances.
func (as *AccelerationStructure) Instances() []Instance {
	return as.instances
}

// Get the combined volume list. Volume i is bound to object slot i.
func (as *AccelerationStructure) Volumes() []scene.BoundingVolume {
	return as.volumes
}

// Get the built bvh nodes and the volume indices referenced by their leafs.
func (as *AccelerationStructure) Nodes() ([]scene.BvhNode, []uint32) {
	return as.nodes, as.items
}

// Get the bvh build statistics.
func (as *AccelerationStructure) Stats() bvh.Stats {
	return as.stats
}

// Free all device resources. Release can be called any number of times.
func (as *AccelerationStructure) Release() {
	if as.released {
		return
	}
	as.released = true
	if as.binding != nil {
		releaseBinding(as.binding)
		as.binding = nil
	}
	as.logger.Debug("released acceleration structure")
}

func releaseBinding(b *tracer.AccelBinding) {
	for _, buf := range []tracer.Buffer{b.Nodes, b.Items, b.Volumes} {
		if buf != nil {
			buf.Release()
		}
	}
}
