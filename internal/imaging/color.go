package imaging

import (
	"fmt"
	"image/color"
	"math/rand"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Marker colour modes accepted by NewMarkerPalette besides a hex colour.
const (
	// ColorRandom draws each channel uniformly from 0-255.
	ColorRandom = "random"

	// ColorHappy draws saturated, mid-bright hues.
	ColorHappy = "happy"
)

// MarkerPalette picks the colour of each synthesized inhibit marker.
type MarkerPalette struct {
	mode  string
	fixed color.NRGBA
}

// NewMarkerPalette parses a colour mode: "random", "happy" or a fixed
// "#RRGGBB" colour.
func NewMarkerPalette(spec string) (*MarkerPalette, error) {
	mode := strings.ToLower(strings.TrimSpace(spec))
	switch mode {
	case "", ColorRandom:
		return &MarkerPalette{mode: ColorRandom}, nil
	case ColorHappy:
		return &MarkerPalette{mode: ColorHappy}, nil
	}

	if !strings.HasPrefix(mode, "#") {
		mode = "#" + mode
	}
	c, err := colorful.Hex(mode)
	if err != nil {
		return nil, fmt.Errorf("invalid marker color %q: %w", spec, err)
	}
	r, g, b := c.RGB255()
	return &MarkerPalette{mode: mode, fixed: color.NRGBA{R: r, G: g, B: b, A: 255}}, nil
}

// Mode returns the palette's mode string.
func (p *MarkerPalette) Mode() string {
	return p.mode
}

// Next returns the next marker colour drawn from rng.
func (p *MarkerPalette) Next(rng *rand.Rand) color.NRGBA {
	switch p.mode {
	case ColorRandom:
		return color.NRGBA{
			R: uint8(rng.Intn(256)),
			G: uint8(rng.Intn(256)),
			B: uint8(rng.Intn(256)),
			A: 255,
		}
	case ColorHappy:
		c := colorful.Hsv(rng.Float64()*360, 0.7+rng.Float64()*0.3, 0.6+rng.Float64()*0.3)
		r, g, b := c.Clamped().RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: 255}
	default:
		return p.fixed
	}
}

// HexColor formats a colour as "#rrggbb".
func HexColor(c color.Color) string {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return "#000000"
	}
	return cf.Hex()
}
