package detection

import (
	"image"
	"image/color"
	"testing"

	"github.com/golang/geo/r2"

	"github.com/santhosh11wnl/Sai/internal/annotation"
)

var noLinks = Hierarchy{Next: -1, Prev: -1, FirstChild: -1, Parent: -1}

// horizontalContour creates a standalone contour along row y from x0 to x1
func horizontalContour(y, x0, x1 int) Contour {
	var pts []image.Point
	for x := x0; x <= x1; x++ {
		pts = append(pts, image.Pt(x, y))
	}
	return NewContour(pts, false, noLinks)
}

func arrowShape(index string, x0, y0, x1, y1 float64) *annotation.Shape {
	return &annotation.Shape{
		Index:    index,
		Category: annotation.CategoryActivate,
		Points:   []r2.Point{{X: x0, Y: y0}, {X: x1, Y: y1}},
	}
}

func TestSelectArrows_PicksHighestOverlap(t *testing.T) {
	contours := []Contour{
		horizontalContour(10, 0, 12),
		horizontalContour(12, 0, 30),
	}
	arrows := []*annotation.Shape{arrowShape("1", 5, 8, 25, 15)}

	matches, stats := SelectArrows(contours, arrows, 1.0)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Contour != 1 {
		t.Errorf("expected contour 1, got %d", matches[0].Contour)
	}
	if matches[0].Score != 20 {
		t.Errorf("expected score 20, got %d", matches[0].Score)
	}
	if matches[0].Arrow != arrows[0] {
		t.Error("match should reference the arrow shape")
	}
	if stats.Accepted != 1 || stats.Contours != 2 || stats.Arrows != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if w := matches[0].Rect.Width; w < 30 || w > 31 {
		t.Errorf("rect width %v, want about 30", w)
	}
}

func TestSelectArrows_TieGoesToLowerIndex(t *testing.T) {
	contours := []Contour{
		horizontalContour(10, 0, 9),
		horizontalContour(11, 0, 9),
	}
	matches, _ := SelectArrows(contours, []*annotation.Shape{arrowShape("1", 0, 0, 20, 20)}, 1.0)
	if len(matches) != 1 || matches[0].Contour != 0 {
		t.Fatalf("expected contour 0 to win the tie, got %+v", matches)
	}
}

func TestSelectArrows_NoOverlap(t *testing.T) {
	contours := []Contour{horizontalContour(10, 0, 9)}
	arrows := []*annotation.Shape{arrowShape("1", 50, 50, 60, 60)}

	matches, stats := SelectArrows(contours, arrows, 1.0)
	if len(matches) != 0 {
		t.Fatalf("expected no match, got %d", len(matches))
	}
	if stats.NoOverlap != 1 {
		t.Errorf("expected NoOverlap 1, got %+v", stats)
	}
}

func TestSelectArrows_MaxRowExcluded(t *testing.T) {
	// the contour lies on the head box's bottom edge only
	contours := []Contour{horizontalContour(20, 0, 30)}
	matches, _ := SelectArrows(contours, []*annotation.Shape{arrowShape("1", 5, 10, 25, 20)}, 1.0)
	if len(matches) != 0 {
		t.Errorf("pixels on the maximum row should not count, got %+v", matches)
	}
}

func TestSelectArrows_NestedRejected(t *testing.T) {
	outer := horizontalContour(10, 0, 20)
	outer.Hierarchy.FirstChild = 1
	hole := horizontalContour(11, 0, 5)
	hole.Hole = true
	hole.Hierarchy.Parent = 0

	matches, stats := SelectArrows([]Contour{outer, hole}, []*annotation.Shape{arrowShape("1", 0, 5, 25, 15)}, 1.0)
	if len(matches) != 0 {
		t.Fatalf("nested contour should be rejected, got %+v", matches)
	}
	if stats.Nested != 1 {
		t.Errorf("expected Nested 1, got %+v", stats)
	}
}

func TestSelectArrows_HoleWinnerNotReplacedByRunnerUp(t *testing.T) {
	standalone := horizontalContour(10, 0, 3)
	outer := horizontalContour(30, 0, 20)
	outer.Hierarchy.FirstChild = 2
	hole := horizontalContour(12, 0, 20)
	hole.Hole = true
	hole.Hierarchy.Parent = 1

	contours := []Contour{standalone, outer, hole}
	matches, stats := SelectArrows(contours, []*annotation.Shape{arrowShape("1", 0, 5, 25, 15)}, 1.0)
	if len(matches) != 0 {
		t.Fatalf("hole border outscoring a standalone contour must reject the arrow, got %+v", matches)
	}
	if stats.Nested != 1 || stats.NoOverlap != 0 {
		t.Errorf("expected Nested 1 and NoOverlap 0, got %+v", stats)
	}
}

func TestSelectArrows_CeilingRatio(t *testing.T) {
	contours := []Contour{
		horizontalContour(10, 0, 10),
		horizontalContour(50, 0, 10),
		horizontalContour(90, 0, 10),
	}
	arrows := []*annotation.Shape{
		arrowShape("1", 0, 5, 12, 15),
		arrowShape("2", 0, 45, 12, 55),
		arrowShape("3", 0, 85, 12, 95),
	}

	tests := []struct {
		ratio    float64
		accepted int
		early    bool
	}{
		{1.0, 3, false},
		{0.5, 2, true},
		{0.0, 1, true},
	}

	for _, tt := range tests {
		matches, stats := SelectArrows(contours, arrows, tt.ratio)
		if len(matches) != tt.accepted {
			t.Errorf("ratio %v: got %d matches, want %d", tt.ratio, len(matches), tt.accepted)
		}
		if stats.StoppedEarly != tt.early {
			t.Errorf("ratio %v: StoppedEarly = %v, want %v", tt.ratio, stats.StoppedEarly, tt.early)
		}
	}
}

type stubSource struct {
	contours []Contour
	seen     image.Image
}

func (s *stubSource) Binarize(img image.Image) (*image.Gray, error) {
	s.seen = img
	return image.NewGray(img.Bounds()), nil
}

func (s *stubSource) FindContours(bin *image.Gray) ([]Contour, error) {
	return s.contours, nil
}

func TestMatcher_ErasesTextOnCopy(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for i := range img.Pix {
		img.Pix[i] = 0
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}

	src := &stubSource{contours: []Contour{horizontalContour(10, 0, 10)}}
	texts := []*annotation.Shape{{Category: annotation.CategoryText, Points: []r2.Point{{X: 20, Y: 20}, {X: 30, Y: 30}}}}
	arrows := []*annotation.Shape{arrowShape("1", 0, 5, 12, 15)}

	matches, stats, err := NewMatcher(src).Match(img, arrows, texts, 1.0)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if len(matches) != 1 || stats.Accepted != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}

	white := color.RGBA{255, 255, 255, 255}
	if got := color.RGBAModel.Convert(src.seen.At(25, 25)); got != white {
		t.Errorf("text box should be erased before binarization, got %v", got)
	}
	if img.NRGBAAt(25, 25) != (color.NRGBA{0, 0, 0, 255}) {
		t.Error("Match modified its input")
	}
}
