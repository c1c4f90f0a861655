package cpu

import (
	"math"
	"sort"

	"github.com/skarab/awesome-shader-nft/scene"
	"github.com/skarab/awesome-shader-nft/types"
)

var (
	// Primary rays travel along +z.
	rayInvDir = types.XYZ(float32(math.Inf(1)), float32(math.Inf(1)), 1)
	rayMaxT   = float32(math.Inf(1))
)

// A ray hit accepted by the hit program.
type hit struct {
	t        float32
	slot     uint32
	coverage float32
}

// The decoded state of a ray dispatch.
type traceProgram struct {
	width  int
	height int
	camera *scene.Camera

	nodes   []scene.BvhNode
	items   []uint32
	volumes []scene.BoundingVolume
	objects []scene.ObjectRecord

	signature *texture
	output    []uint8
}

// Trace all pixels in rows [y0, y1).
func (p *traceProgram) traceRows(y0, y1 int) {
	hits := make([]hit, 0, 16)
	stack := make([]uint32, 0, 32)
	for y := y0; y < y1; y++ {
		for x := 0; x < p.width; x++ {
			var rgb types.Vec3
			rgb, hits, stack = p.tracePixel(x, y, hits, stack)

			c := rgb.Vec4(1).RGBA8()
			off := (y*p.width + x) * 4
			p.output[off+0] = c.R
			p.output[off+1] = c.G
			p.output[off+2] = c.B
			p.output[off+3] = c.A
		}
	}
}

// The Dispatch entry point for a single pixel.
func (p *traceProgram) tracePixel(x, y int, hits []hit, stack []uint32) (types.Vec3, []hit, []uint32) {
	origin, _ := p.camera.RayAt(x, y)

	hits, stack = p.traverse(origin, origin[0], origin[1], hits[:0], stack[:0])
	sort.Slice(hits, func(i, j int) bool { return hits[i].t < hits[j].t })

	// Front to back compositing of straight alpha colors.
	var acc types.Vec4
	for _, h := range hits {
		o := &p.objects[h.slot]
		a := o.Color[3] * h.coverage * (1 - acc[3])
		acc = acc.Add(types.XYZW(o.Color[0]*a, o.Color[1]*a, o.Color[2]*a, a))
	}

	// Over an opaque black background the accumulated premultiplied
	// color is the final color.
	rgb := acc.Vec3()
	if p.signature != nil {
		rgb = blendSignature(rgb, p.sampleSignature(x, y))
	}
	return rgb, hits, stack
}

// Walk the bvh collecting the hits accepted by the RaytracingPass program.
func (p *traceProgram) traverse(origin types.Vec3, px, py float32, hits []hit, stack []uint32) ([]hit, []uint32) {
	if len(p.nodes) == 0 {
		return hits, stack
	}

	stack = append(stack, 0)
	for len(stack) > 0 {
		node := &p.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]

		if _, _, ok := node.IntersectRay(origin, rayInvDir, 0, rayMaxT); !ok {
			continue
		}

		if !node.IsLeaf() {
			left, right := node.ChildNodes()
			stack = append(stack, right, left)
			continue
		}

		first, count := node.Items()
		for k := first; k < first+count; k++ {
			slot := p.items[k]
			tNear, _, ok := p.volumes[slot].IntersectRay(origin, rayInvDir, 0, rayMaxT)
			if !ok {
				continue
			}
			if cov := p.anyHit(slot, px, py); cov > 0 {
				hits = append(hits, hit{t: tNear, slot: slot, coverage: cov})
			}
		}
	}
	return hits, stack
}

// The RaytracingPass hit program. Slot i resolves against object record i.
func (p *traceProgram) anyHit(slot uint32, px, py float32) float32 {
	if int(slot) >= len(p.objects) {
		return 0
	}
	o := &p.objects[slot]
	if !o.IsVisible() {
		return 0
	}
	return coverage(o, px, py)
}

// Fetch the premultiplied signature texel mapped to output pixel (x, y).
func (p *traceProgram) sampleSignature(x, y int) types.Vec4 {
	sig := p.signature
	sx := x * sig.width / p.width
	sy := y * sig.height / p.height
	off := (sy*sig.width + sx) * 4
	return types.XYZW(
		float32(sig.pix[off+0])/255,
		float32(sig.pix[off+1])/255,
		float32(sig.pix[off+2])/255,
		float32(sig.pix[off+3])/255,
	)
}
