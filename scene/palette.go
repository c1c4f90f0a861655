package scene

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/skarab/awesome-shader-nft/types"
)

var (
	ErrEmptyPalette = errors.New("scene: palette is empty")
)

// An ordered list of straight rgba colors in the [0, 1] range.
type Palette []types.Vec4

// Parse a palette from a list of hex color strings.
func ParsePalette(colors []string) (Palette, error) {
	if len(colors) == 0 {
		return nil, ErrEmptyPalette
	}

	out := make(Palette, len(colors))
	for i, c := range colors {
		v, err := ParseHexColor(c)
		if err != nil {
			return nil, fmt.Errorf("scene: palette entry %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// Flatten palette into 4 float32 per entry.
func (p Palette) Floats() []float32 {
	out := make([]float32, 0, len(p)*4)
	for _, c := range p {
		out = append(out, c[:]...)
	}
	return out
}

// Parse a #rgb, #rrggbb or #rrggbbaa color. The leading # is optional.
func ParseHexColor(s string) (types.Vec4, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")

	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]}) + "ff"
	case 6:
		hex += "ff"
	case 8:
	default:
		return types.Vec4{}, fmt.Errorf("invalid color %q", s)
	}

	val, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return types.Vec4{}, fmt.Errorf("invalid color %q", s)
	}

	// Channels are carried over as straight alpha values.
	return types.ColorVec4(color.RGBA{
		R: uint8(val >> 24),
		G: uint8(val >> 16),
		B: uint8(val >> 8),
		A: uint8(val),
	}), nil
}
