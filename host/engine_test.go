package host

import (
	"context"
	"errors"
	"image/color"
	"testing"

	"github.com/skarab/awesome-shader-nft/renderer"
	"github.com/skarab/awesome-shader-nft/scene"
	"github.com/skarab/awesome-shader-nft/tracer/cpu"
)

type recorder struct {
	calls *[]string
	name  string

	updateErr error
	onUpdate  func()
}

func (r *recorder) Update() error {
	*r.calls = append(*r.calls, r.name+":update")
	if r.onUpdate != nil {
		r.onUpdate()
	}
	return r.updateErr
}

func (r *recorder) LateUpdate() error {
	*r.calls = append(*r.calls, r.name+":late")
	return nil
}

func newEngine(t *testing.T, calls *[]string) *Engine {
	dev := cpu.New(1)
	if err := dev.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(dev.Close)

	p := renderer.NewPipeline(dev)
	_, err := p.Subscribe(func(_ *renderer.RenderContext, _ *renderer.CommandStream, cam *scene.Camera, _ renderer.Visibility) error {
		*calls = append(*calls, "render:"+cam.Name)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	return New(p, scene.NewCamera("main", 4, 4))
}

func TestTickOrder(t *testing.T) {
	var calls []string
	e := newEngine(t, &calls)
	e.AddBehaviour(&recorder{calls: &calls, name: "a"})
	e.AddBehaviour(&recorder{calls: &calls, name: "b"})
	e.WaitForEndOfFrame(func() error {
		calls = append(calls, "eof")
		// Deferred to the next frame.
		e.WaitForEndOfFrame(func() error {
			calls = append(calls, "eof2")
			return nil
		})
		return nil
	})

	if err := e.Tick(); err != nil {
		t.Fatal(err)
	}

	exp := []string{"a:update", "b:update", "render:main", "a:late", "b:late", "eof"}
	if len(calls) != len(exp) {
		t.Fatalf("expected calls %v; got %v", exp, calls)
	}
	for index := range exp {
		if calls[index] != exp[index] {
			t.Fatalf("expected call %d to be %q; got %q", index, exp[index], calls[index])
		}
	}
	if e.Frame() != 1 {
		t.Fatalf("expected frame counter to be 1; got %d", e.Frame())
	}

	calls = nil
	if err := e.Tick(); err != nil {
		t.Fatal(err)
	}
	if last := calls[len(calls)-1]; last != "eof2" {
		t.Fatalf("expected callback registered during end of frame to run on the next frame; got %v", calls)
	}
}

func TestStopDuringUpdateSkipsRendering(t *testing.T) {
	var calls []string
	e := newEngine(t, &calls)
	halt := errors.New("halted")
	e.AddBehaviour(&recorder{calls: &calls, name: "a", onUpdate: func() { e.Stop(halt) }})
	e.WaitForEndOfFrame(func() error {
		calls = append(calls, "eof")
		return nil
	})

	if err := e.Tick(); err != nil {
		t.Fatalf("expected stop request to not be reported as a tick error; got %v", err)
	}
	if len(calls) != 1 || calls[0] != "a:update" {
		t.Fatalf("expected only the update step to run; got %v", calls)
	}
	if !e.Stopped() || !errors.Is(e.StopReason(), halt) {
		t.Fatalf("expected engine to be stopped with %v; got %v", halt, e.StopReason())
	}

	// Only the first reason is kept.
	e.Stop(errors.New("other"))
	if err := e.Tick(); !errors.Is(err, halt) {
		t.Fatalf("expected tick on stopped engine to return %v; got %v", halt, err)
	}
}

func TestErrorsStopTheEngine(t *testing.T) {
	expErr := errors.New("behaviour failed")

	var calls []string
	e := newEngine(t, &calls)
	e.AddBehaviour(&recorder{calls: &calls, name: "a", updateErr: expErr})
	if err := e.Tick(); !errors.Is(err, expErr) {
		t.Fatalf("expected error %v; got %v", expErr, err)
	}
	if !e.Stopped() {
		t.Fatal("expected engine to be stopped")
	}

	calls = nil
	e = newEngine(t, &calls)
	e.WaitForEndOfFrame(func() error { return expErr })
	if err := e.Tick(); !errors.Is(err, expErr) {
		t.Fatalf("expected error %v; got %v", expErr, err)
	}
	if e.Frame() != 0 {
		t.Fatalf("expected failed frame to not be counted; got %d", e.Frame())
	}
}

func TestRun(t *testing.T) {
	var calls []string
	e := newEngine(t, &calls)
	halt := errors.New("halted")
	e.AddBehaviour(&recorder{calls: &calls, name: "a", onUpdate: func() {
		if e.Frame() == 3 {
			e.Stop(halt)
		}
	}})

	if err := e.Run(context.Background()); !errors.Is(err, halt) {
		t.Fatalf("expected Run to return %v; got %v", halt, err)
	}
	if e.Frame() != 3 {
		t.Fatalf("expected 3 completed frames; got %d", e.Frame())
	}

	calls = nil
	e = newEngine(t, &calls)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected error %v; got %v", context.Canceled, err)
	}
	if e.Frame() != 0 {
		t.Fatalf("expected no frames after cancellation; got %d", e.Frame())
	}
}

func TestStopWithNilReason(t *testing.T) {
	var calls []string
	e := newEngine(t, &calls)
	e.Stop(nil)
	if err := e.Run(context.Background()); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected error %v; got %v", ErrStopped, err)
	}
}

func TestScreenshot(t *testing.T) {
	var calls []string
	e := newEngine(t, &calls)
	cam := e.MainCamera()
	cam.Target.SetRGBA(2, 3, color.RGBA{1, 2, 3, 255})

	img, err := e.Screenshot()
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 4 {
		t.Fatalf("expected a 4x4 screenshot; got %v", img.Bounds())
	}
	r, g, b, _ := img.At(2, 3).RGBA()
	if r>>8 != 1 || g>>8 != 2 || b>>8 != 3 {
		t.Fatalf("expected pixel (1, 2, 3); got (%d, %d, %d)", r>>8, g>>8, b>>8)
	}

	// The screenshot is a copy.
	cam.Target.SetRGBA(2, 3, color.RGBA{9, 9, 9, 255})
	if r, _, _, _ = img.At(2, 3).RGBA(); r>>8 != 1 {
		t.Fatal("expected screenshot to be detached from the camera target")
	}

	headless := New(e.Pipeline())
	if _, err = headless.Screenshot(); !errors.Is(err, ErrNoCamera) {
		t.Fatalf("expected error %v; got %v", ErrNoCamera, err)
	}
}
