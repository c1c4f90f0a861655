package scene

import (
	"image"

	"github.com/skarab/awesome-shader-nft/types"
)

// Stores the ray origins at the four corners of the camera near plane. It is
// used as a shortcut for generating per pixel rays via interpolation of the
// corner rays. While we don't care about the W coordinate we use Vec4 since
// opencl provides a vectorized float4 type
type Frustrum [4]types.Vec4

// An orthographic camera looking down +z at the pixel plane. Pixel (x, y)
// maps to the world point (x + 0.5, y + 0.5, 0).
type Camera struct {
	Name string

	// Pixel dimensions of the camera target.
	PixelW int
	PixelH int

	// The final render target. A nil target makes the camera invisible to
	// the render pipeline.
	Target *image.RGBA

	Frustrum  Frustrum
	Direction types.Vec3
}

// Create a camera that renders into a newly allocated target of the given size.
func NewCamera(name string, width, height int) *Camera {
	c := &Camera{
		Name:      name,
		PixelW:    width,
		PixelH:    height,
		Target:    image.NewRGBA(image.Rect(0, 0, width, height)),
		Direction: types.XYZ(0, 0, 1),
	}
	c.updateFrustrum()
	return c
}

// Get the ray origin and direction for pixel (x, y). The origin is a bilinear
// blend of the frustrum corners sampled at the pixel center.
func (c *Camera) RayAt(x, y int) (types.Vec3, types.Vec3) {
	tx := (float32(x) + 0.5) / float32(c.PixelW)
	ty := (float32(y) + 0.5) / float32(c.PixelH)
	lVec := c.Frustrum[0].Mul(1.0 - ty).Vec3().Add(c.Frustrum[2].Mul(ty).Vec3())
	rVec := c.Frustrum[1].Mul(1.0 - ty).Vec3().Add(c.Frustrum[3].Mul(ty).Vec3())
	return lVec.Mul(1.0 - tx).Add(rVec.Mul(tx)), c.Direction
}

func (c *Camera) updateFrustrum() {
	w, h := float32(c.PixelW), float32(c.PixelH)
	c.Frustrum[0] = types.XYZW(0, 0, 0, 0)
	c.Frustrum[1] = types.XYZW(w, 0, 0, 0)
	c.Frustrum[2] = types.XYZW(0, h, 0, 0)
	c.Frustrum[3] = types.XYZW(w, h, 0, 0)
}
