package imaging

import (
	"container/heap"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Pixel states of the fast marching method.
const (
	stateKnown uint8 = iota
	stateBand
	stateInside
)

const farAway = 1e6

// Inpaint fills the non-zero pixels of mask from their surroundings with
// Telea's fast marching method and returns the repaired copy.
//
// Pixels are restored in order of their distance from the mask border. Each
// one becomes a weighted average of the already known pixels within radius,
// favouring pixels that are close, that lie along the marching direction
// and that sit at a similar distance from the border.
func Inpaint(img image.Image, mask *image.Gray, radius float64) (*image.NRGBA, error) {
	dst := imaging.Clone(img)
	b := dst.Bounds()
	if mask.Bounds().Dx() != b.Dx() || mask.Bounds().Dy() != b.Dy() {
		return nil, fmt.Errorf("mask size %v does not match image size %v", mask.Bounds().Size(), b.Size())
	}

	r := int(math.Round(radius))
	r = clamp(r, 1, 100)

	fm := newMarcher(dst, mask, r)
	fm.run()
	return dst, nil
}

type marcher struct {
	img    *image.NRGBA
	w, h   int
	radius int
	state  []uint8
	t      []float64
	band   narrowBand
}

func newMarcher(img *image.NRGBA, mask *image.Gray, radius int) *marcher {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	m := &marcher{
		img:    img,
		w:      w,
		h:      h,
		radius: radius,
		state:  make([]uint8, w*h),
		t:      make([]float64, w*h),
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			m.t[i] = farAway
			if mask.Pix[y*mask.Stride+x] != 0 {
				m.state[i] = stateInside
			}
		}
	}

	// the initial band is the ring of known pixels 4-adjacent to the mask
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if m.state[i] != stateKnown || !m.touchesInside(x, y) {
				continue
			}
			m.state[i] = stateBand
			m.t[i] = 0
			heap.Push(&m.band, bandPixel{t: 0, idx: i, seq: len(m.band)})
		}
	}
	return m
}

var neighbours4 = [4]image.Point{{0, -1}, {-1, 0}, {0, 1}, {1, 0}}

func (m *marcher) touchesInside(x, y int) bool {
	for _, d := range neighbours4 {
		if m.stateAt(x+d.X, y+d.Y) == stateInside && m.in(x+d.X, y+d.Y) {
			return true
		}
	}
	return false
}

func (m *marcher) in(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.w && y < m.h
}

// stateAt treats pixels beyond the border as known and far away.
func (m *marcher) stateAt(x, y int) uint8 {
	if !m.in(x, y) {
		return stateKnown
	}
	return m.state[y*m.w+x]
}

func (m *marcher) tAt(x, y int) float64 {
	if !m.in(x, y) {
		return farAway
	}
	return m.t[y*m.w+x]
}

func (m *marcher) run() {
	seq := len(m.band)
	for m.band.Len() > 0 {
		p := heap.Pop(&m.band).(bandPixel)
		m.state[p.idx] = stateKnown
		px, py := p.idx%m.w, p.idx/m.w

		for _, d := range neighbours4 {
			x, y := px+d.X, py+d.Y
			if !m.in(x, y) || m.state[y*m.w+x] != stateInside {
				continue
			}
			dist := math.Min(
				math.Min(m.solve(x-1, y, x, y-1), m.solve(x+1, y, x, y-1)),
				math.Min(m.solve(x-1, y, x, y+1), m.solve(x+1, y, x, y+1)),
			)
			i := y*m.w + x
			m.t[i] = dist
			m.fill(x, y)
			m.state[i] = stateBand
			seq++
			heap.Push(&m.band, bandPixel{t: dist, idx: i, seq: seq})
		}
	}
}

// solve estimates the arrival time at a pixel from two adjacent neighbours.
func (m *marcher) solve(x1, y1, x2, y2 int) float64 {
	a1, a2 := m.tAt(x1, y1), m.tAt(x2, y2)
	in1 := m.stateAt(x1, y1) == stateInside
	in2 := m.stateAt(x2, y2) == stateInside
	lo := math.Min(a1, a2)

	switch {
	case !in1 && !in2:
		if math.Abs(a1-a2) >= 1 {
			return 1 + lo
		}
		return (a1 + a2 + math.Sqrt(2-(a1-a2)*(a1-a2))) * 0.5
	case !in1:
		return 1 + a1
	case !in2:
		return 1 + a2
	default:
		return 1 + lo
	}
}

// gradT is the gradient of the arrival time at (x, y).
func (m *marcher) gradT(x, y int) (gx, gy float64) {
	t := m.tAt(x, y)
	known := func(x, y int) bool { return m.in(x, y) && m.stateAt(x, y) != stateInside }

	switch {
	case known(x+1, y) && known(x-1, y):
		gx = (m.tAt(x+1, y) - m.tAt(x-1, y)) * 0.5
	case known(x+1, y):
		gx = m.tAt(x+1, y) - t
	case known(x-1, y):
		gx = t - m.tAt(x-1, y)
	}
	switch {
	case known(x, y+1) && known(x, y-1):
		gy = (m.tAt(x, y+1) - m.tAt(x, y-1)) * 0.5
	case known(x, y+1):
		gy = m.tAt(x, y+1) - t
	case known(x, y-1):
		gy = t - m.tAt(x, y-1)
	}
	return gx, gy
}

// fill computes the colour of (x, y) from the known pixels around it.
func (m *marcher) fill(x, y int) {
	gx, gy := m.gradT(x, y)
	t := m.tAt(x, y)
	r := m.radius

	var sum [4]float64
	s := 1e-20
	for k := y - r; k <= y+r; k++ {
		for l := x - r; l <= x+r; l++ {
			if !m.in(l, k) || m.state[k*m.w+l] == stateInside {
				continue
			}
			rx, ry := float64(x-l), float64(y-k)
			d2 := rx*rx + ry*ry
			if d2 == 0 || d2 > float64(r*r) {
				continue
			}
			dst := 1 / (d2 * math.Sqrt(d2))
			lev := 1 / (1 + math.Abs(m.t[k*m.w+l]-t))
			dir := rx*gx + ry*gy
			if math.Abs(dir) <= 0.01 {
				dir = 1e-6
			}
			w := math.Abs(dst * lev * dir)

			off := m.img.PixOffset(l, k)
			for c := 0; c < 4; c++ {
				sum[c] += w * float64(m.img.Pix[off+c])
			}
			s += w
		}
	}

	off := m.img.PixOffset(x, y)
	for c := 0; c < 4; c++ {
		m.img.Pix[off+c] = uint8(clamp(int(sum[c]/s+0.5), 0, 255))
	}
}

type bandPixel struct {
	t   float64
	idx int
	seq int
}

// narrowBand is a min-heap on arrival time, FIFO among equal times.
type narrowBand []bandPixel

func (h narrowBand) Len() int { return len(h) }
func (h narrowBand) Less(i, j int) bool {
	if h[i].t != h[j].t {
		return h[i].t < h[j].t
	}
	return h[i].seq < h[j].seq
}
func (h narrowBand) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *narrowBand) Push(x interface{}) { *h = append(*h, x.(bandPixel)) }
func (h *narrowBand) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
