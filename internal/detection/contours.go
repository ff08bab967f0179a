package detection

import (
	"image"
)

// Hierarchy links a contour to its neighbours in the two-level contour tree.
// Every field is an index into the contour slice, or -1 when absent.
//
// Outer borders of connected components sit at the top level and hole
// borders are children of the outer border that surrounds them. A component
// found inside a hole is still placed at the top level.
type Hierarchy struct {
	Next       int `json:"next"`
	Prev       int `json:"prev"`
	FirstChild int `json:"first_child"`
	Parent     int `json:"parent"`
}

// Contour is a closed border of foreground pixels.
type Contour struct {
	// Points lists every border pixel in tracing order. Pixels may repeat
	// where the border runs along a one pixel wide stroke.
	Points []image.Point `json:"points"`

	// Hole is true for the border between a component and a hole inside it.
	Hole bool `json:"hole"`

	Hierarchy Hierarchy `json:"hierarchy"`

	bounds image.Rectangle
	pixels map[image.Point]struct{}
}

// NewContour builds a contour from its border pixels.
func NewContour(points []image.Point, hole bool, h Hierarchy) Contour {
	c := Contour{Points: points, Hole: hole, Hierarchy: h}
	c.index()
	return c
}

func (c *Contour) index() {
	c.pixels = make(map[image.Point]struct{}, len(c.Points))
	if len(c.Points) == 0 {
		c.bounds = image.Rectangle{}
		return
	}
	b := image.Rectangle{Min: c.Points[0], Max: c.Points[0]}
	for _, p := range c.Points {
		c.pixels[p] = struct{}{}
		if p.X < b.Min.X {
			b.Min.X = p.X
		}
		if p.Y < b.Min.Y {
			b.Min.Y = p.Y
		}
		if p.X > b.Max.X {
			b.Max.X = p.X
		}
		if p.Y > b.Max.Y {
			b.Max.Y = p.Y
		}
	}
	c.bounds = image.Rectangle{Min: b.Min, Max: b.Max.Add(image.Pt(1, 1))}
}

// Bounds returns the smallest rectangle containing every border pixel.
func (c *Contour) Bounds() image.Rectangle {
	if c.pixels == nil {
		c.index()
	}
	return c.bounds
}

// Standalone reports whether the contour neither encloses a hole nor is a
// hole itself.
func (c *Contour) Standalone() bool {
	return c.Hierarchy.FirstChild < 0 && c.Hierarchy.Parent < 0
}

// Overlap counts the distinct border pixels that lie inside r. The maximum
// row and column of r are excluded.
func (c *Contour) Overlap(r image.Rectangle) int {
	if c.pixels == nil {
		c.index()
	}
	if !c.bounds.Overlaps(r) {
		return 0
	}
	n := 0
	for p := range c.pixels {
		if p.In(r) {
			n++
		}
	}
	return n
}

// Neighbour directions, counter-clockwise on screen starting east.
var (
	dirX = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	dirY = [8]int{0, -1, -1, -1, 0, 1, 1, 1}
)

type border struct {
	hole   bool
	parent int32
	points []image.Point
}

// tracer holds the labelled, zero-padded copy of a binary image.
type tracer struct {
	f      []int32
	stride int
	off    [8]int
	origin image.Point
}

func newTracer(bin *image.Gray) *tracer {
	b := bin.Bounds()
	stride := b.Dx() + 2
	t := &tracer{
		f:      make([]int32, stride*(b.Dy()+2)),
		stride: stride,
		origin: b.Min,
	}
	for k := range t.off {
		t.off[k] = dirY[k]*stride + dirX[k]
	}
	for y := 0; y < b.Dy(); y++ {
		row := bin.Pix[y*bin.Stride : y*bin.Stride+b.Dx()]
		for x, v := range row {
			if v != 0 {
				t.f[(y+1)*stride+x+1] = 1
			}
		}
	}
	return t
}

func (t *tracer) point(i int) image.Point {
	return image.Point{X: i%t.stride - 1 + t.origin.X, Y: i/t.stride - 1 + t.origin.Y}
}

// direction returns the neighbour index k such that to == from + off[k].
func (t *tracer) direction(from, to int) int {
	d := to - from
	for k, o := range t.off {
		if o == d {
			return k
		}
	}
	return 0
}

// follow traces one border starting at start, whose zero neighbour "from"
// triggered the detection, and labels it with nbd.
func (t *tracer) follow(start, from int, nbd int32) []image.Point {
	f := t.f

	// clockwise search for the first non-zero neighbour
	d0 := t.direction(start, from)
	first := -1
	for k := 0; k < 8; k++ {
		d := (d0 - k + 8) % 8
		if f[start+t.off[d]] != 0 {
			first = start + t.off[d]
			break
		}
	}
	if first < 0 {
		f[start] = -nbd
		return []image.Point{t.point(start)}
	}

	points := []image.Point{t.point(start)}
	prev, cur := first, start
	for {
		// counter-clockwise search starting after prev
		d := t.direction(cur, prev)
		next := -1
		eastZero := false
		for k := 1; k <= 8; k++ {
			dd := (d + k) % 8
			q := cur + t.off[dd]
			if f[q] != 0 {
				next = q
				break
			}
			if dd == 0 {
				eastZero = true
			}
		}

		if eastZero {
			f[cur] = -nbd
		} else if f[cur] == 1 {
			f[cur] = nbd
		}

		if next == start && cur == first {
			break
		}
		prev, cur = cur, next
		points = append(points, t.point(cur))
	}
	return points
}

// FindContours extracts every border of the non-zero pixels in bin.
//
// Foreground components are 8-connected and holes 4-connected. Each border
// keeps all of its pixels. The hierarchy has two levels: outer borders at
// the top and hole borders below the outer border of their component.
// Contours are returned in raster order of their starting pixel.
func FindContours(bin *image.Gray) []Contour {
	b := bin.Bounds()
	if b.Empty() {
		return nil
	}
	t := newTracer(bin)
	f := t.f
	w, h := b.Dx()+2, b.Dy()+2

	// borders[0] is unused, borders[1] is the image frame.
	borders := []border{{}, {hole: true, parent: 0}}

	for y := 1; y < h-1; y++ {
		lnbd := int32(1)
		for x := 1; x < w-1; x++ {
			i := y*t.stride + x
			v := f[i]
			if v == 0 {
				continue
			}

			from, hole := -1, false
			switch {
			case v == 1 && f[i-1] == 0:
				from = i - 1
			case v >= 1 && f[i+1] == 0:
				from, hole = i+1, true
				if v > 1 {
					lnbd = v
				}
			}

			if from >= 0 {
				nbd := int32(len(borders))
				ref := borders[lnbd]
				var parent int32
				switch {
				case hole && ref.hole:
					parent = ref.parent
				case hole:
					parent = lnbd
				case ref.hole:
					parent = lnbd
				default:
					parent = ref.parent
				}
				pts := t.follow(i, from, nbd)
				borders = append(borders, border{hole: hole, parent: parent, points: pts})
			}

			if f[i] != 1 {
				if f[i] < 0 {
					lnbd = -f[i]
				} else {
					lnbd = f[i]
				}
			}
		}
	}

	return buildHierarchy(borders[2:])
}

// buildHierarchy converts traced borders into contours linked in the
// two-level layout. A border's parent is always traced before it.
func buildHierarchy(borders []border) []Contour {
	contours := make([]Contour, len(borders))
	lastChild := make(map[int]int)
	lastTop := -1

	for i, bd := range borders {
		contours[i] = Contour{
			Points:    bd.points,
			Hole:      bd.hole,
			Hierarchy: Hierarchy{Next: -1, Prev: -1, FirstChild: -1, Parent: -1},
		}
		h := &contours[i].Hierarchy

		parent := int(bd.parent) - 2
		if bd.hole && parent >= 0 && !borders[parent].hole {
			h.Parent = parent
			if prev, ok := lastChild[parent]; ok {
				h.Prev = prev
				contours[prev].Hierarchy.Next = i
			} else {
				contours[parent].Hierarchy.FirstChild = i
			}
			lastChild[parent] = i
		} else {
			if lastTop >= 0 {
				h.Prev = lastTop
				contours[lastTop].Hierarchy.Next = i
			}
			lastTop = i
		}
		contours[i].index()
	}
	return contours
}
