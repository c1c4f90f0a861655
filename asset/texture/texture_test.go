package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/skarab/awesome-shader-nft/asset"
)

func TestPngTexture(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	img.Set(1, 0, color.NRGBA{0, 0, 255, 128})

	tex, err := New(mockImage(t, img))
	if err != nil {
		t.Fatal(err)
	}

	if tex.Width != 2 || tex.Height != 1 {
		t.Fatalf("expected tex dims to be 2x1; got %dx%d", tex.Width, tex.Height)
	}

	expLen := 8
	if len(tex.Data) != expLen {
		t.Fatalf("expected tex data len to be %d; got %d", expLen, len(tex.Data))
	}

	if texel := tex.Texel(0, 0); texel[0] != 1 || texel[3] != 1 {
		t.Fatalf("expected opaque red texel; got %v", texel)
	}

	// Texels are premultiplied
	texel := tex.Texel(1, 0)
	if texel[2] > 0.51 || texel[2] < 0.49 || texel[3] > 0.51 || texel[3] < 0.49 {
		t.Fatalf("expected premultiplied half transparent blue; got %v", texel)
	}

	// Out of range coordinates are clamped
	if tex.Texel(5, -3) != tex.Texel(1, 0) {
		t.Fatalf("expected clamped lookup to match the edge texel")
	}
}

func TestNonImageResource(t *testing.T) {
	res := asset.NewResourceFromStream("notes.txt", strings.NewReader("definitely not an image"))
	_, err := New(res)
	if !errors.Is(err, ErrNotAnImage) {
		t.Fatalf("expected ErrNotAnImage; got %v", err)
	}
}

func TestFit(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	tex := FromImage(src)

	if same := tex.Fit(4, 4); same != tex {
		t.Fatal("expected Fit to return the same texture when sizes match")
	}

	scaled := tex.Fit(8, 2)
	if scaled.Width != 8 || scaled.Height != 2 {
		t.Fatalf("expected scaled dims to be 8x2; got %dx%d", scaled.Width, scaled.Height)
	}
	if texel := scaled.Texel(3, 1); texel[3] < 0.99 {
		t.Fatalf("expected scaled texel to stay opaque; got %v", texel)
	}

	if fromEmpty := Empty(0, 0).Fit(2, 2); len(fromEmpty.Data) != 16 {
		t.Fatalf("expected empty texture to fit to 2x2; got %d bytes", len(fromEmpty.Data))
	}
}

func TestEmpty(t *testing.T) {
	tex := Empty(3, 2)
	if len(tex.Data) != 24 {
		t.Fatalf("expected 24 bytes; got %d", len(tex.Data))
	}
	if tex.Texel(2, 1)[3] != 0 {
		t.Fatal("expected empty texture to be transparent")
	}
}

func mockImage(t *testing.T, img image.Image) *asset.Resource {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return asset.NewResourceFromStream("mock.png", &buf)
}
