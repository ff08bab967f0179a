package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sort"
)

// FillPolygon paints the interior and the outline of a closed polygon.
func FillPolygon(img draw.Image, pts []image.Point, c color.Color) {
	if len(pts) == 0 {
		return
	}
	bounds := img.Bounds()

	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts[1:] {
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	minY = clamp(minY, bounds.Min.Y, bounds.Max.Y-1)
	maxY = clamp(maxY, bounds.Min.Y, bounds.Max.Y-1)

	var xs []float64
	for y := minY; y <= maxY; y++ {
		xs = xs[:0]
		fy := float64(y)
		for i := range pts {
			a, b := pts[i], pts[(i+1)%len(pts)]
			ay, by := float64(a.Y), float64(b.Y)
			if (ay <= fy && fy < by) || (by <= fy && fy < ay) {
				xs = append(xs, float64(a.X)+(fy-ay)*float64(b.X-a.X)/(by-ay))
			}
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			x0 := int(math.Ceil(xs[i]))
			x1 := int(math.Floor(xs[i+1]))
			for x := x0; x <= x1; x++ {
				setPixel(img, bounds, x, y, c)
			}
		}
	}

	for i := range pts {
		DrawLine(img, pts[i], pts[(i+1)%len(pts)], 1, c)
	}
}

// DrawLine draws a segment. A thickness of 1 or less gives an 8-connected
// line; larger values paint every pixel within thickness/2 of the segment,
// which rounds the ends.
func DrawLine(img draw.Image, p0, p1 image.Point, thickness int, c color.Color) {
	bounds := img.Bounds()
	if thickness <= 1 {
		bresenham(p0, p1, func(x, y int) { setPixel(img, bounds, x, y, c) })
		return
	}

	half := float64(thickness) / 2
	pad := int(math.Ceil(half))
	r := image.Rect(p0.X, p0.Y, p1.X, p1.Y).Canon()
	r = image.Rect(r.Min.X-pad, r.Min.Y-pad, r.Max.X+pad+1, r.Max.Y+pad+1).Intersect(bounds)

	ax, ay := float64(p0.X), float64(p0.Y)
	dx, dy := float64(p1.X-p0.X), float64(p1.Y-p0.Y)
	l2 := dx*dx + dy*dy
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			px, py := float64(x)-ax, float64(y)-ay
			t := 0.0
			if l2 > 0 {
				t = math.Max(0, math.Min(1, (px*dx+py*dy)/l2))
			}
			ex, ey := px-t*dx, py-t*dy
			if ex*ex+ey*ey <= half*half {
				img.Set(x, y, c)
			}
		}
	}
}

// DrawPolyline outlines a closed polygon with the given thickness.
func DrawPolyline(img draw.Image, pts []image.Point, thickness int, c color.Color) {
	for i := range pts {
		DrawLine(img, pts[i], pts[(i+1)%len(pts)], thickness, c)
	}
}

func bresenham(p0, p1 image.Point, plot func(x, y int)) {
	dx := abs(p1.X - p0.X)
	dy := -abs(p1.Y - p0.Y)
	sx, sy := 1, 1
	if p0.X > p1.X {
		sx = -1
	}
	if p0.Y > p1.Y {
		sy = -1
	}
	err := dx + dy
	x, y := p0.X, p0.Y
	for {
		plot(x, y)
		if x == p1.X && y == p1.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func setPixel(img draw.Image, bounds image.Rectangle, x, y int, c color.Color) {
	if image.Pt(x, y).In(bounds) {
		img.Set(x, y, c)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
