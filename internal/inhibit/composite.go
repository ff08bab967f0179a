package inhibit

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math/rand"

	disimaging "github.com/disintegration/imaging"

	"github.com/santhosh11wnl/Sai/internal/annotation"
	"github.com/santhosh11wnl/Sai/internal/detection"
	"github.com/santhosh11wnl/Sai/internal/imaging"
)

// Defaults used by NewCompositor.
const (
	DefaultInpaintRadius = 3
	DefaultMinThickness  = 2
	DefaultMaxThickness  = 4
)

// Inpainter fills the non-zero pixels of mask from their surroundings.
type Inpainter interface {
	Inpaint(img image.Image, mask *image.Gray, radius float64) (*image.NRGBA, error)
}

// InpainterFunc adapts a function to the Inpainter interface.
type InpainterFunc func(img image.Image, mask *image.Gray, radius float64) (*image.NRGBA, error)

// Inpaint calls f.
func (f InpainterFunc) Inpaint(img image.Image, mask *image.Gray, radius float64) (*image.NRGBA, error) {
	return f(img, mask, radius)
}

// Result is the outcome of replacing one matched arrow.
type Result struct {
	Match     detection.Match
	Marker    Marker
	Color     color.NRGBA
	Thickness int

	// Err is set when no marker could be computed for the arrow. The arrow
	// is still erased from the image.
	Err error
}

// OK reports whether a marker was drawn for the arrow.
func (r Result) OK() bool {
	return r.Err == nil
}

// Compositor erases matched arrows and draws inhibit markers in their place.
type Compositor struct {
	Inpainter    Inpainter
	Palette      *imaging.MarkerPalette
	Radius       float64
	MinThickness int
	MaxThickness int
}

// NewCompositor returns a compositor with the default radius and stroke
// thickness range.
func NewCompositor(inpainter Inpainter, palette *imaging.MarkerPalette) *Compositor {
	return &Compositor{
		Inpainter:    inpainter,
		Palette:      palette,
		Radius:       DefaultInpaintRadius,
		MinThickness: DefaultMinThickness,
		MaxThickness: DefaultMaxThickness,
	}
}

// Validate checks the compositor settings.
func (c *Compositor) Validate() error {
	if c.Inpainter == nil {
		return errors.New("compositor has no inpainter")
	}
	if c.Palette == nil {
		return errors.New("compositor has no marker palette")
	}
	if c.Radius <= 0 {
		return fmt.Errorf("inpaint radius must be positive, got %v", c.Radius)
	}
	if c.MinThickness < 1 || c.MaxThickness < c.MinThickness {
		return fmt.Errorf("invalid marker thickness range %d-%d", c.MinThickness, c.MaxThickness)
	}
	return nil
}

// Compose returns a copy of img with every matched arrow replaced.
//
// All arrow rectangles are painted white and inpainted in a single pass.
// Then, arrow by arrow, a stroke thickness and a colour are drawn from rng
// and the marker's shaft and tick are drawn with them. Thickness and colour
// are drawn even for arrows whose geometry fails, so a fixed seed gives the
// same colours to the same arrows. img is not modified.
func (c *Compositor) Compose(img image.Image, matches []detection.Match, rng *rand.Rand) (*image.NRGBA, []Result, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	canvas := disimaging.Clone(img)
	mask := image.NewGray(canvas.Bounds())
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	for _, m := range matches {
		corners := m.Rect.IntPoints()
		imaging.FillPolygon(canvas, corners[:], white)
		imaging.FillPolygon(mask, corners[:], color.Gray{Y: 255})
	}

	out, err := c.Inpainter.Inpaint(canvas, mask, c.Radius)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to inpaint arrows: %w", err)
	}

	results := make([]Result, len(matches))
	for i, m := range matches {
		res := Result{Match: m}
		res.Thickness = c.MinThickness + rng.Intn(c.MaxThickness-c.MinThickness+1)
		res.Color = c.Palette.Next(rng)

		res.Marker, res.Err = Synthesize(m.Rect, m.Head)
		if res.Err == nil {
			res.Marker.Color = imaging.HexColor(res.Color)
			res.Marker.Thickness = res.Thickness
			imaging.DrawLine(out, res.Marker.Shaft[0], res.Marker.Shaft[1], res.Thickness, res.Color)
			imaging.DrawLine(out, res.Marker.Tick[0], res.Marker.Tick[1], res.Thickness, res.Color)
		}
		results[i] = res
	}
	return out, results, nil
}

// Replacements converts results into annotation replacements. Failed
// results carry a nil polygon so the arrow keeps its original annotation.
func Replacements(results []Result) []annotation.Replacement {
	reps := make([]annotation.Replacement, 0, len(results))
	for _, r := range results {
		rep := annotation.Replacement{Head: r.Match.Head}
		if r.OK() {
			rep.Polygon = r.Marker.Box.Points()
		}
		reps = append(reps, rep)
	}
	return reps
}

// Failed counts the results without a marker.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.OK() {
			n++
		}
	}
	return n
}
