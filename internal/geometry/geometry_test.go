package geometry

import (
	"encoding/json"
	"image"
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pt(x, y float64) r2.Point {
	return r2.Point{X: x, Y: y}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name   string
		p1, p2 r2.Point
		want   float64
	}{
		{"horizontal", pt(0, 0), pt(100, 0), 100},
		{"vertical", pt(0, 0), pt(0, 50), 50},
		{"3-4-5 triangle", pt(0, 0), pt(30, 40), 50},
		{"same point", pt(10, 10), pt(10, 10), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Distance(tt.p1, tt.p2), 1e-9)
		})
	}
}

func TestSlope(t *testing.T) {
	s, ok := Slope(pt(80, 100), pt(120, 100))
	require.True(t, ok)
	assert.Equal(t, 0.0, s)

	s, ok = Slope(pt(0, 0), pt(10, 20))
	require.True(t, ok)
	assert.Equal(t, 2.0, s)

	_, ok = Slope(pt(5, 0), pt(5, 30))
	assert.False(t, ok, "vertical segment must have undefined slope")
}

func TestMidpoint_Truncates(t *testing.T) {
	assert.Equal(t, image.Pt(80, 100), Midpoint(image.Pt(80, 95), image.Pt(81, 105)))
	assert.Equal(t, image.Pt(-2, 0), Midpoint(image.Pt(-5, 0), image.Pt(0, 1)))
}

func TestCentroid(t *testing.T) {
	c := Centroid([]r2.Point{pt(95, 95), pt(105, 105)})
	assert.Equal(t, pt(100, 100), c)

	assert.False(t, IsFinite(Centroid(nil)))
}

func TestPixelBounds(t *testing.T) {
	r := PixelBounds([]r2.Point{pt(10.7, 20.2), pt(30.9, 5.5), pt(15, 40)})
	assert.Equal(t, image.Rect(10, 5, 30, 40), r)

	assert.True(t, PixelBounds([]r2.Point{pt(3, 3), pt(3, 9)}).Empty())
	assert.True(t, PixelBounds(nil).Empty())
}

func TestEqual(t *testing.T) {
	a := []r2.Point{pt(1, 2), pt(3, 4)}
	assert.True(t, Equal(a, []r2.Point{pt(1, 2), pt(3, 4)}))
	assert.False(t, Equal(a, []r2.Point{pt(1, 2)}))
	assert.False(t, Equal(a, []r2.Point{pt(1, 2), pt(3, 5)}))
}

func TestRotatedRect_Points(t *testing.T) {
	r := RotatedRect{Center: pt(100, 100), Width: 40, Height: 10}
	got := r.IntPoints()
	want := [4]image.Point{{80, 105}, {80, 95}, {120, 95}, {120, 105}}
	assert.Equal(t, want, got)

	pts := r.Points()
	assert.InDelta(t, 10, Distance(pts[0], pts[1]), 1e-9)
	assert.InDelta(t, 40, Distance(pts[0], pts[3]), 1e-9)
}

func TestRotatedRect_PointsRotated(t *testing.T) {
	r := RotatedRect{Center: pt(50, 50), Width: 20, Height: 10, Angle: 30}
	pts := r.Points()

	assert.InDelta(t, 10, Distance(pts[0], pts[1]), 1e-9)
	assert.InDelta(t, 20, Distance(pts[1], pts[2]), 1e-9)
	mid := pts[0].Add(pts[2]).Mul(0.5)
	assert.InDelta(t, 50, mid.X, 1e-9)
	assert.InDelta(t, 50, mid.Y, 1e-9)
}

func TestConvexHull(t *testing.T) {
	tests := []struct {
		name   string
		points []r2.Point
		want   int
	}{
		{"empty", nil, 0},
		{"single", []r2.Point{pt(1, 1)}, 1},
		{"duplicates", []r2.Point{pt(1, 1), pt(1, 1)}, 1},
		{"collinear", []r2.Point{pt(0, 0), pt(5, 0), pt(10, 0)}, 2},
		{"square with interior", []r2.Point{pt(0, 0), pt(10, 0), pt(10, 10), pt(0, 10), pt(5, 5), pt(5, 0)}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, ConvexHull(tt.points), tt.want)
		})
	}
}

func TestMinAreaRect_AxisAligned(t *testing.T) {
	var border []r2.Point
	for x := 80; x <= 120; x++ {
		border = append(border, pt(float64(x), 95), pt(float64(x), 105))
	}
	for y := 96; y < 105; y++ {
		border = append(border, pt(80, float64(y)), pt(120, float64(y)))
	}

	r := MinAreaRect(border)
	assert.InDelta(t, 100, r.Center.X, 1e-9)
	assert.InDelta(t, 100, r.Center.Y, 1e-9)
	assert.InDelta(t, 40, r.Width, 1e-9)
	assert.InDelta(t, 10, r.Height, 1e-9)
	assert.InDelta(t, 0, r.Angle, 1e-9)
}

func TestMinAreaRect_Vertical(t *testing.T) {
	r := MinAreaRect([]r2.Point{pt(0, 0), pt(4, 0), pt(4, 30), pt(0, 30)})
	assert.InDelta(t, 0, r.Angle, 1e-9)
	assert.InDelta(t, 4, r.Width, 1e-9)
	assert.InDelta(t, 30, r.Height, 1e-9)
}

func TestMinAreaRect_Diamond(t *testing.T) {
	r := MinAreaRect([]r2.Point{pt(0, 10), pt(10, 0), pt(20, 10), pt(10, 20)})
	assert.InDelta(t, 45, r.Angle, 1e-9)
	assert.InDelta(t, math.Sqrt(200), r.Width, 1e-9)
	assert.InDelta(t, math.Sqrt(200), r.Height, 1e-9)
	assert.InDelta(t, 10, r.Center.X, 1e-9)
	assert.InDelta(t, 10, r.Center.Y, 1e-9)
}

func TestMinAreaRect_Degenerate(t *testing.T) {
	assert.Equal(t, RotatedRect{}, MinAreaRect(nil))
	assert.Equal(t, RotatedRect{Center: pt(3, 4)}, MinAreaRect([]r2.Point{pt(3, 4)}))

	line := MinAreaRect([]r2.Point{pt(0, 0), pt(0, 10)})
	assert.InDelta(t, 0, line.Angle, 1e-9)
	assert.InDelta(t, 10, line.Height, 1e-9)
	assert.InDelta(t, 0, line.Width, 1e-9)
}

func TestMinAreaRect_RoundTripsBoxPoints(t *testing.T) {
	in := RotatedRect{Center: pt(200, 150), Width: 60, Height: 14, Angle: 25}
	pts := in.Points()
	out := MinAreaRect(pts[:])

	assert.InDelta(t, in.Center.X, out.Center.X, 1e-6)
	assert.InDelta(t, in.Center.Y, out.Center.Y, 1e-6)
	assert.InDelta(t, in.Area(), out.Area(), 1e-6)
}

func TestRotatedRect_JSON(t *testing.T) {
	r := RotatedRect{Center: pt(1.5, 2), Width: 3, Height: 4, Angle: 12.5}
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5, 2, 3, 4, 12.5]`, string(data))

	var flat RotatedRect
	require.NoError(t, json.Unmarshal(data, &flat))
	assert.Equal(t, r, flat)

	var nested RotatedRect
	require.NoError(t, json.Unmarshal([]byte(`[[1.5, 2], [3, 4], 12.5]`), &nested))
	assert.Equal(t, r, nested)

	var bad RotatedRect
	assert.Error(t, json.Unmarshal([]byte(`[1, 2, 3]`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`"box"`), &bad))
}
