package scene

import (
	"errors"
	"testing"

	"github.com/skarab/awesome-shader-nft/types"
)

func TestParseHexColor(t *testing.T) {
	type spec struct {
		in  string
		exp types.Vec4
	}
	specs := []spec{
		{"#ff0000", types.XYZW(1, 0, 0, 1)},
		{"00ff00", types.XYZW(0, 1, 0, 1)},
		{"#00f", types.XYZW(0, 0, 1, 1)},
		{"#ffffff00", types.XYZW(1, 1, 1, 0)},
		{"#33669980", types.XYZW(0.2, 0.4, 0.6, 128.0/255)},
	}

	for index, s := range specs {
		got, err := ParseHexColor(s.in)
		if err != nil {
			t.Fatalf("[spec %d] unexpected error: %v", index, err)
		}
		if got != s.exp {
			t.Fatalf("[spec %d] expected %v; got %v", index, s.exp, got)
		}
	}

	for _, bad := range []string{"", "#12", "#gggggg", "#1234567"} {
		if _, err := ParseHexColor(bad); err == nil {
			t.Fatalf("expected an error while parsing %q", bad)
		}
	}
}

func TestParsePalette(t *testing.T) {
	p, err := ParsePalette([]string{"#000", "#fff"})
	if err != nil {
		t.Fatal(err)
	}

	floats := p.Floats()
	if len(floats) != 8 {
		t.Fatalf("expected 8 floats; got %d", len(floats))
	}
	if floats[4] != 1 || floats[7] != 1 {
		t.Fatalf("expected second entry to be white; got %v", floats[4:])
	}

	if _, err = ParsePalette(nil); !errors.Is(err, ErrEmptyPalette) {
		t.Fatalf("expected ErrEmptyPalette; got %v", err)
	}
}
