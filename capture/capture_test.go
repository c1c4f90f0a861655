package capture

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/anthonynsimon/bild/imgio"
)

type mockScreen struct {
	img image.Image
	err error
}

func (ms *mockScreen) Screenshot() (image.Image, error) {
	return ms.img, ms.err
}

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(1, 1, color.RGBA{10, 20, 30, 255})
	return img
}

func TestPath(t *testing.T) {
	fc := New("collection", "awesome_shader", nil)

	type spec struct {
		index int
		exp   string
	}
	specs := []spec{
		{1, filepath.Join("collection", "awesome_shader_0001.png")},
		{42, filepath.Join("collection", "awesome_shader_0042.png")},
		{1000, filepath.Join("collection", "awesome_shader_1000.png")},
		{12345, filepath.Join("collection", "awesome_shader_12345.png")},
	}
	for index, s := range specs {
		if got := fc.Path(s.index); got != s.exp {
			t.Fatalf("[spec %d] expected path %q; got %q", index, s.exp, got)
		}
	}
}

func TestCapture(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "collection")
	fc := New(dir, "awesome_shader", &mockScreen{img: testImage()})

	path, err := fc.Capture(1)
	if err != nil {
		t.Fatal(err)
	}
	if exp := filepath.Join(dir, "awesome_shader_0001.png"); path != exp {
		t.Fatalf("expected artifact %q; got %q", exp, path)
	}

	img, err := imgio.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Fatalf("expected a 3x2 artifact; got %v", img.Bounds())
	}
	r, g, b, a := img.At(1, 1).RGBA()
	if r>>8 != 10 || g>>8 != 20 || b>>8 != 30 || a>>8 != 255 {
		t.Fatalf("expected lossless pixel (10, 20, 30, 255); got (%d, %d, %d, %d)", r>>8, g>>8, b>>8, a>>8)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected a single file in the collection; got %d", len(entries))
	}
}

func TestCaptureFailures(t *testing.T) {
	screenErr := errors.New("screen unavailable")

	// A regular file where the collection dir should be.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	type spec struct {
		fc     *FrameCapture
		index  int
		expErr error
	}
	specs := []spec{
		{New(t.TempDir(), "p", &mockScreen{img: testImage()}), 0, ErrInvalidIndex},
		{New(t.TempDir(), "p", &mockScreen{err: screenErr}), 1, screenErr},
		{New(filepath.Join(blocker, "collection"), "p", &mockScreen{img: testImage()}), 1, ErrCaptureFailed},
	}

	for index, s := range specs {
		_, err := s.fc.Capture(s.index)
		if !errors.Is(err, ErrCaptureFailed) {
			t.Fatalf("[spec %d] expected error %v; got %v", index, ErrCaptureFailed, err)
		}
		if !errors.Is(err, s.expErr) {
			t.Fatalf("[spec %d] expected error %v; got %v", index, s.expErr, err)
		}
	}
}
