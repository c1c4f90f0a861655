package accel

import (
	"errors"
	"math"
	"testing"

	"github.com/skarab/awesome-shader-nft/scene"
	"github.com/skarab/awesome-shader-nft/tracer"
	"github.com/skarab/awesome-shader-nft/tracer/cpu"
	"github.com/skarab/awesome-shader-nft/types"
)

func testMaterial() *scene.Material {
	return &scene.Material{Name: "objects", Shader: "RaytracingShader", Pass: tracer.RaytracingPass}
}

func TestBuildPlaceholderVolumes(t *testing.T) {
	dev := cpu.New(1)
	defer dev.Close()

	as := New(dev)
	defer as.Release()

	const slots = 80
	if _, err := as.AddInstance(scene.PlaceholderVolumes(slots), testMaterial()); err != nil {
		t.Fatal(err)
	}
	if _, err := as.Binding(); !errors.Is(err, ErrNotBuilt) {
		t.Fatalf("expected error %v; got %v", ErrNotBuilt, err)
	}
	if err := as.Build(); err != nil {
		t.Fatal(err)
	}

	nodes, items := as.Nodes()
	if len(items) != slots {
		t.Fatalf("expected %d leaf items; got %d", slots, len(items))
	}

	// Every leaf holds exactly one volume and every slot appears once.
	seen := make([]bool, slots)
	for _, node := range nodes {
		if !node.IsLeaf() {
			continue
		}
		first, count := node.Items()
		if count != 1 {
			t.Fatalf("expected leafs with a single volume; got %d", count)
		}
		slot := items[first]
		if seen[slot] {
			t.Fatalf("expected slot %d to appear in one leaf", slot)
		}
		seen[slot] = true

		// Leaf bounds must be the bounds of its slot volume.
		vol := as.Volumes()[slot]
		if node.Min.Vec3() != vol.Min || node.Max.Vec3() != vol.Max {
			t.Fatalf("expected leaf bounds of slot %d to match its volume", slot)
		}
	}

	binding, err := as.Binding()
	if err != nil {
		t.Fatal(err)
	}
	if binding.Pass != tracer.RaytracingPass {
		t.Fatalf("expected pass %q; got %q", tracer.RaytracingPass, binding.Pass)
	}
	if binding.Volumes.Len() != slots || binding.Items.Len() != slots || binding.Nodes.Len() != len(nodes) {
		t.Fatal("expected device buffers to match the built structure")
	}

	// Volume i keeps its slot identity on the device.
	data := make([]float32, slots*scene.VolumeFloats)
	if err = binding.Volumes.Read(data); err != nil {
		t.Fatal(err)
	}
	volumes, _ := scene.VolumesFromFloats(data)
	for idx, vol := range volumes {
		if scene.PlaceholderSlot(vol) != idx {
			t.Fatalf("expected device volume %d to encode slot %d; got %d", idx, idx, scene.PlaceholderSlot(vol))
		}
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	dev := cpu.New(1)
	defer dev.Close()

	as := New(dev)
	defer as.Release()
	_, _ = as.AddInstance(scene.PlaceholderVolumes(4), testMaterial())

	if err := as.Build(); err != nil {
		t.Fatal(err)
	}
	first, _ := as.Binding()
	if err := as.Build(); err != nil {
		t.Fatalf("expected second build to be a no-op; got %v", err)
	}
	second, _ := as.Binding()
	if first != second {
		t.Fatal("expected second build to keep the existing binding")
	}

	if _, err := as.AddInstance(scene.PlaceholderVolumes(1), testMaterial()); !errors.Is(err, ErrAlreadyBuilt) {
		t.Fatalf("expected error %v; got %v", ErrAlreadyBuilt, err)
	}
}

func TestBuildFailures(t *testing.T) {
	nan := float32(math.NaN())
	overlapping := []scene.BoundingVolume{
		{Min: types.XYZ(0, 0, 0), Max: types.XYZ(2, 2, 2)},
		{Min: types.XYZ(1, 1, 1), Max: types.XYZ(3, 3, 3)},
	}

	type spec struct {
		volumes []scene.BoundingVolume
		mat     *scene.Material
		expErr  error
	}
	specs := []spec{
		{nil, testMaterial(), ErrNoInstances},
		{scene.PlaceholderVolumes(2), nil, scene.ErrMissingShader},
		{scene.PlaceholderVolumes(2), &scene.Material{Shader: "RaytracingShader", Pass: "ShadowPass"}, tracer.ErrUnknownPass},
		{[]scene.BoundingVolume{{Min: types.XYZ(1, 0, 0), Max: types.XYZ(0, 1, 1)}}, testMaterial(), ErrMalformedVolume},
		{[]scene.BoundingVolume{{Min: types.XYZ(nan, 0, 0), Max: types.XYZ(1, 1, 1)}}, testMaterial(), ErrMalformedVolume},
		{overlapping, testMaterial(), ErrOverlappingVolume},
	}

	for index, s := range specs {
		dev := cpu.New(1)
		as := New(dev)
		if s.volumes != nil || s.mat != nil {
			_, _ = as.AddInstance(s.volumes, s.mat)
		}
		if err := as.Build(); !errors.Is(err, s.expErr) {
			t.Fatalf("[spec %d] expected error %v; got %v", index, s.expErr, err)
		}
		if _, err := as.Binding(); !errors.Is(err, ErrNotBuilt) {
			t.Fatalf("[spec %d] expected failed build to leave the structure unbuilt; got %v", index, err)
		}
		as.Release()
		dev.Close()
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	dev := cpu.New(1)
	defer dev.Close()

	as := New(dev)
	_, _ = as.AddInstance(scene.PlaceholderVolumes(3), testMaterial())
	if err := as.Build(); err != nil {
		t.Fatal(err)
	}
	binding, _ := as.Binding()

	as.Release()
	as.Release()

	if err := binding.Volumes.Read(make([]float32, 3*scene.VolumeFloats)); !errors.Is(err, tracer.ErrResourceReleased) {
		t.Fatalf("expected released volume buffer; got %v", err)
	}
	if _, err := as.Binding(); !errors.Is(err, ErrReleased) {
		t.Fatalf("expected error %v; got %v", ErrReleased, err)
	}
	if err := as.Build(); !errors.Is(err, ErrReleased) {
		t.Fatalf("expected error %v; got %v", ErrReleased, err)
	}
}
