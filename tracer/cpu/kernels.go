package cpu

import (
	"math"

	"github.com/skarab/awesome-shader-nft/scene"
	"github.com/skarab/awesome-shader-nft/types"
)

// Generation constants. The OpenCL program uses the same values.
const (
	minHalfSize   float32 = 0.02
	halfSizeRange float32 = 0.23
	minAlpha      float32 = 0.35
	maxSoftness   float32 = 0.5
	visibleCutoff float32 = 0.2

	// Ring shapes cover |r - ringRadius| < ringWidth in normalized units.
	ringRadius float32 = 0.75
	ringWidth  float32 = 0.25
)

// Run the GenerateObjects work item for a single object.
func generateObject(params []float32, palette []types.Vec4, width, height float32) scene.ObjectRecord {
	p := func(i int) float32 {
		if i < len(params) {
			return params[i]
		}
		return 0
	}

	shape := float32(math.Floor(float64(p(5) * float32(scene.ShapeCount))))
	if shape > float32(scene.ShapeCount-1) {
		shape = float32(scene.ShapeCount - 1)
	}

	color := palette[int(p(6)*float32(len(palette)))%len(palette)]
	color[3] = minAlpha + (1-minAlpha)*p(7)

	var visible float32
	if p(9) >= visibleCutoff {
		visible = 1
	}

	return scene.ObjectRecord{
		Center: types.XY(p(0)*width, p(1)*height),
		HalfSize: types.XY(
			(minHalfSize+halfSizeRange*p(2))*width,
			(minHalfSize+halfSizeRange*p(3))*height,
		),
		Rotation: p(4) * 2 * math.Pi,
		Shape:    shape,
		Color:    color,
		Softness: p(8) * maxSoftness,
		Visible:  visible,
	}
}

// Evaluate how much of the pixel sample at (px, py) is covered by o. The
// result is in [0, 1] and is 0 outside the shape.
func coverage(o *scene.ObjectRecord, px, py float32) float32 {
	if o.HalfSize[0] <= 0 || o.HalfSize[1] <= 0 {
		return 0
	}

	local := types.XY(px, py).Sub(o.Center).Rotate(-o.Rotation)
	q := types.XY(local[0]/o.HalfSize[0], local[1]/o.HalfSize[1])

	var dist float32
	switch o.ShapeType() {
	case scene.BoxShape:
		dist = float32(math.Max(math.Abs(float64(q[0])), math.Abs(float64(q[1])))) - 1
	case scene.RingShape:
		dist = float32(math.Abs(float64(q.Len()-ringRadius))) - ringWidth
	default:
		dist = q.Len() - 1
	}

	return 1 - types.Smoothstep(-o.Softness, 0, dist)
}

// Blend the premultiplied signature texel sig over an opaque color.
func blendSignature(rgb types.Vec3, sig types.Vec4) types.Vec3 {
	return sig.Vec3().Add(rgb.Mul(1 - sig[3]))
}
