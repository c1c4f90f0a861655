// Package texture loads the signature texture that the ray program blends
// over every rendered frame.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/anthonynsimon/bild/transform"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/skarab/awesome-shader-nft/asset"
	"github.com/skarab/awesome-shader-nft/types"
)

var (
	ErrNotAnImage = errors.New("texture: resource is not an image")
)

// A texture image with premultiplied RGBA8 texels.
type Texture struct {
	Width  uint32
	Height uint32

	// Row-major premultiplied rgba texels.
	Data []byte
}

// Create a new texture from a Resource. The resource is consumed and closed.
func New(res *asset.Resource) (*Texture, error) {
	data, err := res.ReadAll()
	if err != nil {
		return nil, err
	}

	if !filetype.IsImage(data) {
		kind, _ := filetype.Match(data)
		return nil, fmt.Errorf("%w: %s (detected type %q)", ErrNotAnImage, res.Path(), kind.MIME.Value)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("texture: could not decode %s: %w", res.Path(), err)
	}

	return FromImage(img), nil
}

// Create a texture from an image.
func FromImage(img image.Image) *Texture {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	return &Texture{
		Width:  uint32(b.Dx()),
		Height: uint32(b.Dy()),
		Data:   rgba.Pix,
	}
}

// Create a fully transparent texture.
func Empty(width, height int) *Texture {
	return &Texture{
		Width:  uint32(width),
		Height: uint32(height),
		Data:   make([]byte, width*height*4),
	}
}

// Wrap texture data in an image without copying.
func (t *Texture) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    t.Data,
		Stride: int(t.Width) * 4,
		Rect:   image.Rect(0, 0, int(t.Width), int(t.Height)),
	}
}

// Get a copy of the texture scaled to width x height using bilinear
// filtering. If the texture already has the requested size it is returned as is.
func (t *Texture) Fit(width, height int) *Texture {
	if int(t.Width) == width && int(t.Height) == height {
		return t
	}
	if t.Width == 0 || t.Height == 0 {
		return Empty(width, height)
	}

	return FromImage(transform.Resize(t.Image(), width, height, transform.Linear))
}

// Get the premultiplied texel at (x, y) as a [0, 1] color. Coordinates are
// clamped to the texture edges.
func (t *Texture) Texel(x, y int) types.Vec4 {
	if t.Width == 0 || t.Height == 0 {
		return types.Vec4{}
	}
	x = clampInt(x, 0, int(t.Width)-1)
	y = clampInt(y, 0, int(t.Height)-1)
	off := (y*int(t.Width) + x) * 4
	return types.XYZW(
		float32(t.Data[off])/255,
		float32(t.Data[off+1])/255,
		float32(t.Data[off+2])/255,
		float32(t.Data[off+3])/255,
	)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
