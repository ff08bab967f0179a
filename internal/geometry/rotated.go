package geometry

import (
	"encoding/json"
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/golang/geo/r2"
)

// RotatedRect is an oriented rectangle described by its center, its size and
// a rotation angle in degrees.
type RotatedRect struct {
	Center r2.Point
	Width  float64
	Height float64
	Angle  float64
}

// Points returns the four corners of the rectangle.
//
// The order is bottom-left, top-left, top-right, bottom-right for an
// unrotated rectangle, so edge 0-1 has length Height and edge 0-3 has
// length Width.
func (r RotatedRect) Points() [4]r2.Point {
	rad := r.Angle * math.Pi / 180
	b := math.Cos(rad) * 0.5
	a := math.Sin(rad) * 0.5

	var pts [4]r2.Point
	pts[0] = r2.Point{
		X: r.Center.X - a*r.Height - b*r.Width,
		Y: r.Center.Y + b*r.Height - a*r.Width,
	}
	pts[1] = r2.Point{
		X: r.Center.X + a*r.Height - b*r.Width,
		Y: r.Center.Y - b*r.Height - a*r.Width,
	}
	pts[2] = r.Center.Mul(2).Sub(pts[0])
	pts[3] = r.Center.Mul(2).Sub(pts[1])
	return pts
}

// IntPoints returns the corners truncated to pixel coordinates.
func (r RotatedRect) IntPoints() [4]image.Point {
	pts := r.Points()
	var out [4]image.Point
	for i, p := range pts {
		out[i] = Truncate(p)
	}
	return out
}

// Area returns Width x Height.
func (r RotatedRect) Area() float64 {
	return r.Width * r.Height
}

// MarshalJSON encodes the rectangle as [cx, cy, w, h, angle].
func (r RotatedRect) MarshalJSON() ([]byte, error) {
	return json.Marshal([5]float64{r.Center.X, r.Center.Y, r.Width, r.Height, r.Angle})
}

// UnmarshalJSON accepts either the flat [cx, cy, w, h, angle] form or the
// nested [[cx, cy], [w, h], angle] form.
func (r *RotatedRect) UnmarshalJSON(data []byte) error {
	var flat []float64
	if err := json.Unmarshal(data, &flat); err == nil {
		if len(flat) != 5 {
			return fmt.Errorf("rotated box needs 5 values, got %d", len(flat))
		}
		*r = RotatedRect{
			Center: r2.Point{X: flat[0], Y: flat[1]},
			Width:  flat[2],
			Height: flat[3],
			Angle:  flat[4],
		}
		return nil
	}

	var nested []json.RawMessage
	if err := json.Unmarshal(data, &nested); err != nil {
		return fmt.Errorf("invalid rotated box: %w", err)
	}
	if len(nested) != 3 {
		return fmt.Errorf("rotated box needs 3 nested values, got %d", len(nested))
	}
	var center, size [2]float64
	var angle float64
	if err := json.Unmarshal(nested[0], &center); err != nil {
		return fmt.Errorf("invalid rotated box center: %w", err)
	}
	if err := json.Unmarshal(nested[1], &size); err != nil {
		return fmt.Errorf("invalid rotated box size: %w", err)
	}
	if err := json.Unmarshal(nested[2], &angle); err != nil {
		return fmt.Errorf("invalid rotated box angle: %w", err)
	}
	*r = RotatedRect{
		Center: r2.Point{X: center[0], Y: center[1]},
		Width:  size[0],
		Height: size[1],
		Angle:  angle,
	}
	return nil
}

// ConvexHull returns the convex hull of the points in counter-clockwise
// order (in a y-up frame) without collinear vertices.
func ConvexHull(points []r2.Point) []r2.Point {
	pts := make([]r2.Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	// drop duplicates
	uniq := pts[:0]
	for i, p := range pts {
		if i == 0 || p != pts[i-1] {
			uniq = append(uniq, p)
		}
	}
	pts = uniq
	if len(pts) < 3 {
		return pts
	}

	hull := make([]r2.Point, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && hull[len(hull)-1].Sub(hull[len(hull)-2]).Cross(p.Sub(hull[len(hull)-2])) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && hull[len(hull)-1].Sub(hull[len(hull)-2]).Cross(p.Sub(hull[len(hull)-2])) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// MinAreaRect returns the rotated rectangle of minimum area enclosing the
// points, using rotating calipers over the convex hull. Ties keep the first
// hull edge found.
func MinAreaRect(points []r2.Point) RotatedRect {
	hull := ConvexHull(points)
	switch len(hull) {
	case 0:
		return RotatedRect{}
	case 1:
		return RotatedRect{Center: hull[0]}
	case 2:
		d := hull[1].Sub(hull[0])
		return normalizeRect(RotatedRect{
			Center: hull[0].Add(hull[1]).Mul(0.5),
			Width:  d.Norm(),
			Angle:  math.Atan2(d.Y, d.X) * 180 / math.Pi,
		})
	}

	best := RotatedRect{}
	bestArea := math.Inf(1)
	for i := range hull {
		edge := hull[(i+1)%len(hull)].Sub(hull[i])
		if edge.Norm() == 0 {
			continue
		}
		u := edge.Normalize()
		v := u.Ortho()

		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			pu, pv := p.Dot(u), p.Dot(v)
			minU = math.Min(minU, pu)
			maxU = math.Max(maxU, pu)
			minV = math.Min(minV, pv)
			maxV = math.Max(maxV, pv)
		}

		r := RotatedRect{
			Center: u.Mul((minU + maxU) / 2).Add(v.Mul((minV + maxV) / 2)),
			Width:  maxU - minU,
			Height: maxV - minV,
			Angle:  math.Atan2(u.Y, u.X) * 180 / math.Pi,
		}
		if area := r.Area(); area < bestArea {
			bestArea = area
			best = r
		}
	}
	return normalizeRect(best)
}

const angleEpsilon = 1e-9

// normalizeRect folds the angle into [0, 90), swapping width and height when
// the reference direction turns by a quarter.
func normalizeRect(r RotatedRect) RotatedRect {
	a := math.Mod(r.Angle, 180)
	if a < 0 {
		a += 180
	}
	if a >= 180-angleEpsilon {
		a = 0
	}
	if a >= 90-angleEpsilon {
		a -= 90
		r.Width, r.Height = r.Height, r.Width
	}
	if math.Abs(a) < angleEpsilon {
		a = 0
	}
	r.Angle = a
	return r
}
