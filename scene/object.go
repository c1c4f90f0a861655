package scene

import (
	"fmt"

	"github.com/skarab/awesome-shader-nft/types"
)

// Number of float32 fields in an object record.
const ObjectFloats = 12

// Size of an object record in bytes.
const ObjectSize = ObjectFloats * 4

type ShapeType uint32

const (
	EllipseShape ShapeType = iota
	BoxShape
	RingShape

	numShapes
)

// The number of supported shapes.
const ShapeCount = int(numShapes)

func (st ShapeType) String() string {
	switch st {
	case EllipseShape:
		return "ellipse"
	case BoxShape:
		return "box"
	case RingShape:
		return "ring"
	}
	return fmt.Sprintf("shape(%d)", uint32(st))
}

// A generated object. The field order matches the device layout:
//
//	center.xy, halfSize.xy, rotation, shape, color.rgba, softness, visible
type ObjectRecord struct {
	// Object center in pixels.
	Center types.Vec2

	// Half extents in pixels before rotation.
	HalfSize types.Vec2

	// Rotation in radians.
	Rotation float32

	// Shape type stored as a float.
	Shape float32

	// Straight (non premultiplied) rgba color.
	Color types.Vec4

	// Edge feathering as a fraction of the half size.
	Softness float32

	// 1 if the object participates in the render; 0 otherwise.
	Visible float32
}

// Get the object shape.
func (o *ObjectRecord) ShapeType() ShapeType {
	return ShapeType(uint32(o.Shape))
}

// Check whether the object is visible.
func (o *ObjectRecord) IsVisible() bool {
	return o.Visible > 0.5
}

// Write the record fields into dst which must hold at least ObjectFloats values.
func (o *ObjectRecord) Flatten(dst []float32) {
	_ = dst[ObjectFloats-1]
	dst[0], dst[1] = o.Center[0], o.Center[1]
	dst[2], dst[3] = o.HalfSize[0], o.HalfSize[1]
	dst[4] = o.Rotation
	dst[5] = o.Shape
	dst[6], dst[7], dst[8], dst[9] = o.Color[0], o.Color[1], o.Color[2], o.Color[3]
	dst[10] = o.Softness
	dst[11] = o.Visible
}

// Populate the record from src which must hold at least ObjectFloats values.
func (o *ObjectRecord) Unflatten(src []float32) {
	_ = src[ObjectFloats-1]
	o.Center = types.XY(src[0], src[1])
	o.HalfSize = types.XY(src[2], src[3])
	o.Rotation = src[4]
	o.Shape = src[5]
	o.Color = types.XYZW(src[6], src[7], src[8], src[9])
	o.Softness = src[10]
	o.Visible = src[11]
}

// Decode a flat float slice into object records.
func ObjectsFromFloats(data []float32) ([]ObjectRecord, error) {
	if len(data)%ObjectFloats != 0 {
		return nil, fmt.Errorf("scene: object data length %d is not a multiple of %d", len(data), ObjectFloats)
	}

	out := make([]ObjectRecord, len(data)/ObjectFloats)
	for i := range out {
		out[i].Unflatten(data[i*ObjectFloats:])
	}
	return out, nil
}
