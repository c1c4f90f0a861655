package scene

import (
	"testing"

	"github.com/skarab/awesome-shader-nft/types"
)

func TestObjectFieldLayout(t *testing.T) {
	data := make([]float32, ObjectFloats)
	for i := range data {
		data[i] = float32(i)
	}

	objs, err := ObjectsFromFloats(data)
	if err != nil {
		t.Fatal(err)
	}
	o := objs[0]

	if o.Center != types.XY(0, 1) || o.HalfSize != types.XY(2, 3) {
		t.Fatalf("unexpected center/half size: %v %v", o.Center, o.HalfSize)
	}
	if o.Rotation != 4 || o.ShapeType() != ShapeType(5) {
		t.Fatalf("unexpected rotation/shape: %f %v", o.Rotation, o.ShapeType())
	}
	if o.Color != types.XYZW(6, 7, 8, 9) || o.Softness != 10 || !o.IsVisible() {
		t.Fatalf("unexpected color/softness/visible: %v %f %f", o.Color, o.Softness, o.Visible)
	}

	out := make([]float32, ObjectFloats)
	o.Flatten(out)
	for i := range out {
		if out[i] != data[i] {
			t.Fatalf("expected field %d to be %f; got %f", i, data[i], out[i])
		}
	}
}
