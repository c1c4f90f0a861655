package scene

import (
	"math"
	"testing"

	"github.com/skarab/awesome-shader-nft/types"
)

func TestPlaceholderVolumesAreDisjoint(t *testing.T) {
	volumes := PlaceholderVolumes(80)
	if len(volumes) != 80 {
		t.Fatalf("expected 80 volumes; got %d", len(volumes))
	}

	for i, a := range volumes {
		if !a.Valid() {
			t.Fatalf("expected volume %d to be valid; got %v", i, a)
		}
		if slot := PlaceholderSlot(a); slot != i {
			t.Fatalf("expected volume %d to encode slot %d; got %d", i, i, slot)
		}
		for j := i + 1; j < len(volumes); j++ {
			if a.Overlaps(volumes[j]) {
				t.Fatalf("expected volumes %d and %d not to overlap", i, j)
			}
		}
	}

	exp := BoundingVolume{
		Min: types.XYZ(-10000, -10000, 3),
		Max: types.XYZ(10000, 10000, 3.5),
	}
	if volumes[2] != exp {
		t.Fatalf("expected volume 2 to be %v; got %v", exp, volumes[2])
	}
}

func TestVolumeFlattenRoundTrip(t *testing.T) {
	volumes := PlaceholderVolumes(4)
	data := FlattenVolumes(volumes)
	if len(data) != 4*VolumeFloats {
		t.Fatalf("expected %d floats; got %d", 4*VolumeFloats, len(data))
	}

	decoded, err := VolumesFromFloats(data)
	if err != nil {
		t.Fatal(err)
	}
	for i := range volumes {
		if decoded[i] != volumes[i] {
			t.Fatalf("expected volume %d to be %v; got %v", i, volumes[i], decoded[i])
		}
	}

	if _, err = VolumesFromFloats(data[:5]); err == nil {
		t.Fatal("expected an error for a truncated volume buffer")
	}
}

func TestVolumeIntersectRay(t *testing.T) {
	bv := PlaceholderVolumes(3)[2]
	inf := float32(math.Inf(1))
	invDir := types.XYZ(inf, inf, 1)

	tNear, tFar, hit := bv.IntersectRay(types.XYZ(90, 90, 0), invDir, 0, 1e6)
	if !hit {
		t.Fatal("expected ray to hit the volume")
	}
	if tNear != 3 || tFar != 3.5 {
		t.Fatalf("expected hit interval [3, 3.5]; got [%f, %f]", tNear, tFar)
	}

	if _, _, hit = bv.IntersectRay(types.XYZ(90, 90, 0), invDir, 0, 2.5); hit {
		t.Fatal("expected a ray interval ending before the volume to miss")
	}
}

func TestVolumeValid(t *testing.T) {
	bv := BoundingVolume{Min: types.XYZ(1, 0, 0), Max: types.XYZ(0, 1, 1)}
	if bv.Valid() {
		t.Fatal("expected inverted volume to be invalid")
	}
}
