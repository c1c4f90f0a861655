package types

import (
	"image/color"
	"math"
	"testing"
)

func TestVec2Rotate(t *testing.T) {
	v := XY(1, 0).Rotate(math.Pi / 2)
	if !ApproxEqual(v.Vec3(0), XYZ(0, 1, 0), 1e-5) {
		t.Fatalf("expected rotated vector to be (0, 1); got %v", v)
	}
}

func TestMinMaxVec3(t *testing.T) {
	a := XYZ(-1, 5, 2)
	b := XYZ(3, -2, 2)

	if exp, got := XYZ(-1, -2, 2), MinVec3(a, b); exp != got {
		t.Fatalf("expected min to be %v; got %v", exp, got)
	}
	if exp, got := XYZ(3, 5, 2), MaxVec3(a, b); exp != got {
		t.Fatalf("expected max to be %v; got %v", exp, got)
	}
}

func TestRGBA8Clamping(t *testing.T) {
	type spec struct {
		in  Vec4
		exp color.RGBA
	}
	specs := []spec{
		{XYZW(0, 0, 0, 0), color.RGBA{0, 0, 0, 0}},
		{XYZW(1, 1, 1, 1), color.RGBA{255, 255, 255, 255}},
		{XYZW(-1, 2, 0.5, 1), color.RGBA{0, 255, 128, 255}},
	}

	for index, s := range specs {
		if got := s.in.RGBA8(); got != s.exp {
			t.Fatalf("[spec %d] expected %v; got %v", index, s.exp, got)
		}
	}
}

func TestColorVec4RoundTrip(t *testing.T) {
	c := color.RGBA{10, 20, 30, 255}
	if got := ColorVec4(c).RGBA8(); got != c {
		t.Fatalf("expected %v; got %v", c, got)
	}
}

func TestSmoothstep(t *testing.T) {
	if v := Smoothstep(0, 1, -1); v != 0 {
		t.Fatalf("expected 0 below edge0; got %f", v)
	}
	if v := Smoothstep(0, 1, 2); v != 1 {
		t.Fatalf("expected 1 above edge1; got %f", v)
	}
	if v := Smoothstep(0, 1, 0.5); v != 0.5 {
		t.Fatalf("expected 0.5 at the midpoint; got %f", v)
	}
	if v := Smoothstep(1, 1, 1); v != 1 {
		t.Fatalf("expected step behavior for degenerate edges; got %f", v)
	}
}

func TestIsFinite(t *testing.T) {
	if !XYZ(1, 2, 3).IsFinite() {
		t.Fatal("expected vector to be finite")
	}
	if XYZ(float32(math.Inf(1)), 0, 0).IsFinite() {
		t.Fatal("expected vector with +Inf to be reported as non-finite")
	}
	if XYZ(0, float32(math.NaN()), 0).IsFinite() {
		t.Fatal("expected vector with NaN to be reported as non-finite")
	}
}
