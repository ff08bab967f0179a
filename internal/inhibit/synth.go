package inhibit

import (
	"fmt"
	"image"
	"math"

	"github.com/golang/geo/r2"

	"github.com/santhosh11wnl/Sai/internal/geometry"
)

// GeometryError reports an arrow whose inhibit marker cannot be computed.
type GeometryError struct {
	Reason string
}

func (e *GeometryError) Error() string {
	return "inhibit geometry: " + e.Reason
}

func geometryErrorf(format string, args ...interface{}) error {
	return &GeometryError{Reason: fmt.Sprintf(format, args...)}
}

// Box is the 4-point polygon annotated for a synthesized inhibit marker.
type Box [4]image.Point

// Points returns the box vertices as a slice.
func (b Box) Points() []image.Point {
	return b[:]
}

// Marker describes the inhibit symbol replacing one arrow: the arrow's
// shaft redrawn along the long axis of its rectangle, a tick perpendicular
// to the shaft at the head end, and the box annotated around the tick.
type Marker struct {
	Shaft        [2]image.Point `json:"shaft"`
	Anchor       image.Point    `json:"anchor"`
	Tick         [2]image.Point `json:"tick"`
	Box          Box            `json:"box"`
	Slope        float64        `json:"slope"`
	SlopeDefined bool           `json:"slope_defined"`
	HeadLength   float64        `json:"head_length"`

	// Color and Thickness are the stroke the compositor drew the marker
	// with, empty when the marker was only synthesized.
	Color     string `json:"color,omitempty"`
	Thickness int    `json:"thickness,omitempty"`
}

// Fixed offsets of the axis-aligned boxes used when the shaft is horizontal
// or vertical.
const (
	boxHalfThickness = 10
	boxEndMargin     = 5
	boxScale         = 1.5
)

// HeadLengths measures a head box. Two points are read as opposite corners
// of an axis-aligned box; four or more as a polygon whose sides 0-1 and 0-3
// are measured. The head length is the larger measure and secondary is the
// 0-3 (or vertical) one.
func HeadLengths(head []r2.Point) (headLength, secondary float64, err error) {
	var width, length float64
	switch {
	case len(head) == 2:
		width = math.Abs(head[1].X - head[0].X)
		length = math.Abs(head[1].Y - head[0].Y)
	case len(head) >= 4:
		width = geometry.Distance(head[0], head[1])
		length = geometry.Distance(head[0], head[3])
	default:
		return 0, 0, geometryErrorf("head box has %d points, need 2 or at least 4", len(head))
	}

	if math.IsNaN(width) || math.IsNaN(length) || math.IsInf(width, 0) || math.IsInf(length, 0) {
		return 0, 0, geometryErrorf("head box has non-finite coordinates")
	}

	headLength = length
	if width > length {
		headLength = width
	}
	if headLength == 0 {
		return 0, 0, geometryErrorf("head box is degenerate")
	}
	return headLength, length, nil
}

// LongAxis returns the midpoints of the two short edges of the rectangle,
// i.e. the end points of its long axis. Corners and midpoints are truncated
// to pixels.
func LongAxis(rect geometry.RotatedRect) (image.Point, image.Point) {
	c := rect.IntPoints()
	p := geometry.ToR2(c[:])
	if geometry.Distance(p[0], p[1]) < geometry.Distance(p[0], p[3]) {
		return geometry.Midpoint(c[0], c[1]), geometry.Midpoint(c[2], c[3])
	}
	return geometry.Midpoint(c[0], c[3]), geometry.Midpoint(c[2], c[1])
}

// Anchor picks the long-axis end point nearer to the head box centroid and
// the slope of the axis. Head vertices are truncated before averaging. Ties
// go to v1. ok is false when the axis is vertical.
func Anchor(v1, v2 image.Point, head []r2.Point) (anchor image.Point, slope float64, ok bool, err error) {
	center := geometry.Centroid(geometry.ToR2(geometry.TruncateAll(head)))
	if !geometry.IsFinite(center) {
		return image.Point{}, 0, false, geometryErrorf("head box has no centroid")
	}

	p1 := r2.Point{X: float64(v1.X), Y: float64(v1.Y)}
	p2 := r2.Point{X: float64(v2.X), Y: float64(v2.Y)}
	d1 := geometry.Distance(p1, center)
	d2 := geometry.Distance(p2, center)

	switch {
	case d1 <= d2:
		slope, ok = geometry.Slope(p1, p2)
		return v1, slope, ok, nil
	case d1 > d2:
		slope, ok = geometry.Slope(p2, p1)
		return v2, slope, ok, nil
	}
	return image.Point{}, 0, false, geometryErrorf("cannot compare distances to head box")
}

// Synthesize computes the inhibit marker for an arrow whose contour has the
// given minimum-area rectangle and whose head was annotated as head.
//
// The tick has the head's length and is centred on the anchor,
// perpendicular to the shaft. The box is:
//
//   - for a sloped shaft, a rectangle centred on the anchor, 1.5x the head's
//     secondary length wide and 1.5x the head length high, rotated by
//     atan(-1/slope)
//   - for a horizontal shaft, an axis-aligned box 20 px wide and
//     head length + 10 px high
//   - for a vertical shaft, the same box transposed
func Synthesize(rect geometry.RotatedRect, head []r2.Point) (Marker, error) {
	headLength, secondary, err := HeadLengths(head)
	if err != nil {
		return Marker{}, err
	}

	v1, v2 := LongAxis(rect)
	anchor, slope, defined, err := Anchor(v1, v2, head)
	if err != nil {
		return Marker{}, err
	}

	m := Marker{
		Shaft:        [2]image.Point{v1, v2},
		Anchor:       anchor,
		Slope:        slope,
		SlopeDefined: defined,
		HeadLength:   headLength,
	}
	fx, fy := float64(anchor.X), float64(anchor.Y)
	half := 0.5 * headLength

	if !defined {
		m.Tick = [2]image.Point{
			{X: int(fx - half), Y: anchor.Y},
			{X: int(fx + half), Y: anchor.Y},
		}
		left, right := int(fx-half-boxEndMargin), int(fx+half+boxEndMargin)
		m.Box = Box{
			{X: left, Y: anchor.Y - boxHalfThickness},
			{X: right, Y: anchor.Y - boxHalfThickness},
			{X: right, Y: anchor.Y + boxHalfThickness},
			{X: left, Y: anchor.Y + boxHalfThickness},
		}
		return m, nil
	}

	norm := 2 * math.Sqrt(1+slope*slope)
	cx := headLength * slope / norm
	cy := headLength / norm
	m.Tick = [2]image.Point{
		{X: int(fx + cx), Y: int(fy - cy)},
		{X: int(fx - cx), Y: int(fy + cy)},
	}

	if slope == 0 {
		top, bottom := int(fy-half-boxEndMargin), int(fy+half+boxEndMargin)
		m.Box = Box{
			{X: anchor.X - boxHalfThickness, Y: top},
			{X: anchor.X - boxHalfThickness, Y: bottom},
			{X: anchor.X + boxHalfThickness, Y: bottom},
			{X: anchor.X + boxHalfThickness, Y: top},
		}
		return m, nil
	}

	box := geometry.RotatedRect{
		Center: r2.Point{X: fx, Y: fy},
		Width:  float64(int(secondary * boxScale)),
		Height: float64(int(headLength * boxScale)),
		Angle:  math.Atan(-1/slope) * 180 / math.Pi,
	}
	m.Box = Box(box.IntPoints())
	return m, nil
}
