package asset

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalResource(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "palette.toml")
	if err := os.WriteFile(file, []byte("palette = []"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := NewResource(file, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.IsRemote() {
		t.Fatal("expected local resource not to be remote")
	}
	data, err := res.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "palette = []" {
		t.Fatalf("unexpected resource contents: %q", string(data))
	}

	if _, err = NewResource(filepath.Join(dir, "missing.png"), nil); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected error %v; got %v", os.ErrNotExist, err)
	}
}

func TestHttpResource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/signature.png" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("PNG"))
	}))
	defer server.Close()

	res, err := NewResource(server.URL+"/signature.png", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsRemote() {
		t.Fatal("expected http resource to be remote")
	}
	data, err := res.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "PNG" {
		t.Fatalf("expected body PNG; got %q", string(data))
	}

	_, err = NewResource(server.URL+"/missing.png", nil)
	if !errors.Is(err, ErrFetchFailed) || !strings.Contains(err.Error(), "status 404") {
		t.Fatalf("expected a 404 fetch error; got %v", err)
	}
}

func TestRelativeResources(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte("OK"))
	}))
	defer server.Close()

	parent, err := NewResource(server.URL+"/foo/pearl.toml", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer parent.Close()

	child, err := NewResource("signature.png", parent)
	if err != nil {
		t.Fatal(err)
	}
	defer child.Close()

	if len(paths) != 2 || paths[1] != "/foo/signature.png" {
		t.Fatalf("expected relative resource to resolve to /foo/signature.png; got %v", paths)
	}

	dir := t.TempDir()
	if err = os.WriteFile(filepath.Join(dir, "signature.png"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	local := NewResourceFromStream(filepath.Join(dir, "pearl.toml"), strings.NewReader(""))
	sibling, err := NewResource("signature.png", local)
	if err != nil {
		t.Fatal(err)
	}
	sibling.Close()
}

func TestUnsupportedResourceScheme(t *testing.T) {
	if _, err := NewResource("gopher://digging.go", nil); !errors.Is(err, ErrUnsupportedScheme) {
		t.Fatalf("expected error %v; got %v", ErrUnsupportedScheme, err)
	}
}

func TestResourceFromStream(t *testing.T) {
	res := NewResourceFromStream("embedded", strings.NewReader("payload"))
	data, err := res.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Fatalf("expected payload; got %q", string(data))
	}
	if res.Path() != "embedded" {
		t.Fatalf("expected path embedded; got %q", res.Path())
	}
}
