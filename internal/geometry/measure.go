package geometry

import (
	"image"
	"math"

	"github.com/golang/geo/r2"
)

// Distance returns the Euclidean distance between two points.
func Distance(p1, p2 r2.Point) float64 {
	return p2.Sub(p1).Norm()
}

// Slope returns dy/dx for the segment running from "from" to "to".
// The second return value is false when the segment is vertical and the
// slope is undefined.
func Slope(from, to r2.Point) (float64, bool) {
	dx := to.X - from.X
	if dx == 0 {
		return 0, false
	}
	return (to.Y - from.Y) / dx, true
}

// Midpoint returns the integer midpoint of two pixel positions. Each
// coordinate is averaged and truncated toward zero.
func Midpoint(a, b image.Point) image.Point {
	return image.Point{
		X: int(float64(a.X+b.X) / 2),
		Y: int(float64(a.Y+b.Y) / 2),
	}
}

// Centroid returns the mean of the given vertices. An empty slice yields a
// NaN point so that callers can reject it with IsFinite.
func Centroid(points []r2.Point) r2.Point {
	if len(points) == 0 {
		return r2.Point{X: math.NaN(), Y: math.NaN()}
	}
	var sum r2.Point
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Mul(1 / float64(len(points)))
}

// Truncate converts a point to pixel coordinates, truncating toward zero.
func Truncate(p r2.Point) image.Point {
	return image.Point{X: int(p.X), Y: int(p.Y)}
}

// TruncateAll converts every vertex with Truncate.
func TruncateAll(points []r2.Point) []image.Point {
	out := make([]image.Point, len(points))
	for i, p := range points {
		out[i] = Truncate(p)
	}
	return out
}

// ToR2 converts pixel positions to r2 points.
func ToR2(points []image.Point) []r2.Point {
	out := make([]r2.Point, len(points))
	for i, p := range points {
		out[i] = r2.Point{X: float64(p.X), Y: float64(p.Y)}
	}
	return out
}

// Bounds returns the floating point axis-aligned bounding rectangle of the
// vertices.
func Bounds(points []r2.Point) r2.Rect {
	if len(points) == 0 {
		return r2.EmptyRect()
	}
	return r2.RectFromPoints(points...)
}

// PixelBounds returns the bounding box of the truncated vertices as a
// half-open rectangle [minX, maxX) x [minY, maxY). The maximum row and column
// are excluded, so a polygon whose vertices share an x or y value yields an
// empty rectangle.
func PixelBounds(points []r2.Point) image.Rectangle {
	if len(points) == 0 {
		return image.Rectangle{}
	}
	pts := TruncateAll(points)
	r := image.Rectangle{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		if p.X < r.Min.X {
			r.Min.X = p.X
		}
		if p.Y < r.Min.Y {
			r.Min.Y = p.Y
		}
		if p.X > r.Max.X {
			r.Max.X = p.X
		}
		if p.Y > r.Max.Y {
			r.Max.Y = p.Y
		}
	}
	return r
}

// IsFinite reports whether both coordinates are finite numbers.
func IsFinite(p r2.Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Equal reports whether two vertex lists are identical, element by element.
func Equal(a, b []r2.Point) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
