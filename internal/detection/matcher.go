package detection

import (
	"fmt"
	"image"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/golang/geo/r2"

	"github.com/santhosh11wnl/Sai/internal/annotation"
	"github.com/santhosh11wnl/Sai/internal/geometry"
)

// ContourSource turns a diagram into a binary stroke mask and extracts the
// borders of its strokes. The native and OpenCV engines implement it.
type ContourSource interface {
	// Binarize returns a mask where stroke pixels are non-zero.
	Binarize(img image.Image) (*image.Gray, error)

	// FindContours returns every border of the mask with its hierarchy.
	FindContours(bin *image.Gray) ([]Contour, error)
}

// Match is an arrow whose head overlaps a standalone contour.
type Match struct {
	// Arrow is the activate shape that was matched.
	Arrow *annotation.Shape `json:"-"`

	// Head is the arrow's head box as annotated.
	Head []r2.Point `json:"head"`

	// Contour is the index of the winning contour.
	Contour int `json:"contour"`

	// Score is the number of contour pixels inside the head box.
	Score int `json:"score"`

	// Rect is the minimum-area rectangle around the winning contour.
	Rect geometry.RotatedRect `json:"rect"`
}

// MatchStats summarizes one matching pass.
type MatchStats struct {
	Arrows       int  `json:"arrows"`
	Contours     int  `json:"contours"`
	Accepted     int  `json:"accepted"`
	NoOverlap    int  `json:"no_overlap"`
	Nested       int  `json:"nested"`
	StoppedEarly bool `json:"stopped_early"`
}

// Matcher pairs annotated arrow heads with arrow contours.
type Matcher struct {
	Source ContourSource
}

// NewMatcher creates a matcher backed by source.
func NewMatcher(source ContourSource) *Matcher {
	return &Matcher{Source: source}
}

// Match finds the contour of each arrow in img.
//
// Text shapes are erased from a private copy of img before binarization, so
// img itself is never modified. See SelectArrows for the selection rules.
func (m *Matcher) Match(img image.Image, arrows, texts []*annotation.Shape, ceilingRatio float64) ([]Match, MatchStats, error) {
	work := imaging.Clone(img)
	EraseText(work, texts)

	bin, err := m.Source.Binarize(work)
	if err != nil {
		return nil, MatchStats{}, fmt.Errorf("failed to binarize image: %w", err)
	}
	contours, err := m.Source.FindContours(bin)
	if err != nil {
		return nil, MatchStats{}, fmt.Errorf("failed to find contours: %w", err)
	}

	matches, stats := SelectArrows(contours, arrows, ceilingRatio)
	return matches, stats, nil
}

// SelectArrows assigns contours to arrows, visiting arrows in order.
//
// An arrow's candidate is the contour with the most border pixels inside the
// arrow's head box; ties go to the lower contour index. The arrow is matched
// only if that score is positive and the contour is standalone (no parent,
// no child). After each arrow, selection stops once the number of matches
// exceeds int(len(arrows) * ceilingRatio), so the outcome depends on arrow
// order.
func SelectArrows(contours []Contour, arrows []*annotation.Shape, ceilingRatio float64) ([]Match, MatchStats) {
	stats := MatchStats{Arrows: len(arrows), Contours: len(contours)}
	maxMatches := int(float64(len(arrows)) * ceilingRatio)
	index := newContourIndex(contours)

	var matches []Match
	for i, arrow := range arrows {
		head := geometry.PixelBounds(arrow.Points)
		best, score := index.best(head)

		switch {
		case best < 0:
			stats.NoOverlap++
		case !contours[best].Standalone():
			stats.Nested++
		default:
			matches = append(matches, Match{
				Arrow:   arrow,
				Head:    arrow.Points,
				Contour: best,
				Score:   score,
				Rect:    geometry.MinAreaRect(geometry.ToR2(contours[best].Points)),
			})
		}

		if len(matches) > maxMatches {
			stats.StoppedEarly = i < len(arrows)-1
			break
		}
	}
	stats.Accepted = len(matches)
	return matches, stats
}

const indexCellSize = 32

// contourIndex buckets contours by the grid cells their bounds cover.
type contourIndex struct {
	contours []Contour
	cells    map[image.Point][]int
}

func newContourIndex(contours []Contour) *contourIndex {
	idx := &contourIndex{
		contours: contours,
		cells:    make(map[image.Point][]int),
	}
	for i := range contours {
		b := contours[i].Bounds()
		if b.Empty() {
			continue
		}
		lo, hi := cellOf(b.Min), cellOf(b.Max.Sub(image.Pt(1, 1)))
		for cy := lo.Y; cy <= hi.Y; cy++ {
			for cx := lo.X; cx <= hi.X; cx++ {
				c := image.Pt(cx, cy)
				idx.cells[c] = append(idx.cells[c], i)
			}
		}
	}
	return idx
}

func cellOf(p image.Point) image.Point {
	return image.Point{X: floorDiv(p.X, indexCellSize), Y: floorDiv(p.Y, indexCellSize)}
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// candidates returns, in ascending order, the contours whose cells touch r.
func (idx *contourIndex) candidates(r image.Rectangle) []int {
	if r.Empty() {
		return nil
	}
	seen := make(map[int]bool)
	var out []int
	lo, hi := cellOf(r.Min), cellOf(r.Max.Sub(image.Pt(1, 1)))
	for cy := lo.Y; cy <= hi.Y; cy++ {
		for cx := lo.X; cx <= hi.X; cx++ {
			for _, i := range idx.cells[image.Pt(cx, cy)] {
				if !seen[i] {
					seen[i] = true
					out = append(out, i)
				}
			}
		}
	}
	sort.Ints(out)
	return out
}

// best returns the lowest-indexed contour with the highest positive overlap
// with r, or -1 when no contour overlaps it.
func (idx *contourIndex) best(r image.Rectangle) (int, int) {
	best, bestScore := -1, 0
	for _, i := range idx.candidates(r) {
		if s := idx.contours[i].Overlap(r); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best, bestScore
}
