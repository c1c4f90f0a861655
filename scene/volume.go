package scene

import (
	"fmt"

	"github.com/skarab/awesome-shader-nft/types"
)

// Number of float32 fields in a bounding volume record.
const VolumeFloats = 6

// Placeholder volume extents. The x/y extents cover any frame the pipeline
// renders; the z extents encode the slot index as a disjoint ray interval.
const (
	placeholderExtent float32 = 10000.0
	placeholderDepth  float32 = 0.5
)

// An axis aligned bounding volume.
type BoundingVolume struct {
	Min types.Vec3
	Max types.Vec3
}

// Implements bvh.BoundedVolume.
func (bv BoundingVolume) BBox() [2]types.Vec3 {
	return [2]types.Vec3{bv.Min, bv.Max}
}

// Implements bvh.BoundedVolume.
func (bv BoundingVolume) Center() types.Vec3 {
	return bv.Min.Add(bv.Max).Mul(0.5)
}

// Check that the volume has finite extents and min <= max on every axis.
func (bv BoundingVolume) Valid() bool {
	if !bv.Min.IsFinite() || !bv.Max.IsFinite() {
		return false
	}
	return bv.Min[0] <= bv.Max[0] && bv.Min[1] <= bv.Max[1] && bv.Min[2] <= bv.Max[2]
}

// Check whether two volumes share any interior point.
func (bv BoundingVolume) Overlaps(other BoundingVolume) bool {
	for axis := 0; axis < 3; axis++ {
		if bv.Max[axis] <= other.Min[axis] || other.Max[axis] <= bv.Min[axis] {
			return false
		}
	}
	return true
}

// Slab test against a ray. Returns the entry and exit distances and whether
// the ray interval [tMin, tMax] intersects the volume.
func (bv BoundingVolume) IntersectRay(origin, invDir types.Vec3, tMin, tMax float32) (float32, float32, bool) {
	return intersectBox(bv.Min, bv.Max, origin, invDir, tMin, tMax)
}

// Build the placeholder volumes for count object slots. Slot i covers the
// ray interval z in [i+1, i+1.5] so that every slot owns a distinct spatial
// identity before the first generation pass runs.
func PlaceholderVolumes(count int) []BoundingVolume {
	out := make([]BoundingVolume, count)
	for i := range out {
		z := float32(i) + 1.0
		out[i] = BoundingVolume{
			Min: types.XYZ(-placeholderExtent, -placeholderExtent, z),
			Max: types.XYZ(placeholderExtent, placeholderExtent, z+placeholderDepth),
		}
	}
	return out
}

// Get the slot encoded in a placeholder volume.
func PlaceholderSlot(bv BoundingVolume) int {
	return int(bv.Min[2]) - 1
}

// Encode volumes into the flat device layout.
func FlattenVolumes(volumes []BoundingVolume) []float32 {
	out := make([]float32, len(volumes)*VolumeFloats)
	for i, bv := range volumes {
		copy(out[i*VolumeFloats:], bv.Min[:])
		copy(out[i*VolumeFloats+3:], bv.Max[:])
	}
	return out
}

// Decode volumes from the flat device layout.
func VolumesFromFloats(data []float32) ([]BoundingVolume, error) {
	if len(data)%VolumeFloats != 0 {
		return nil, fmt.Errorf("scene: volume data length %d is not a multiple of %d", len(data), VolumeFloats)
	}

	out := make([]BoundingVolume, len(data)/VolumeFloats)
	for i := range out {
		off := i * VolumeFloats
		out[i].Min = types.XYZ(data[off], data[off+1], data[off+2])
		out[i].Max = types.XYZ(data[off+3], data[off+4], data[off+5])
	}
	return out, nil
}

func intersectBox(min, max, origin, invDir types.Vec3, tMin, tMax float32) (float32, float32, bool) {
	for axis := 0; axis < 3; axis++ {
		t0 := (min[axis] - origin[axis]) * invDir[axis]
		t1 := (max[axis] - origin[axis]) * invDir[axis]
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		// NaN (0 * Inf) leaves the interval untouched.
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMax < tMin {
			return tMin, tMax, false
		}
	}
	return tMin, tMax, true
}
