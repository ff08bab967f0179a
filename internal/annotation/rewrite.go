package annotation

import (
	"image"

	"github.com/golang/geo/r2"

	"github.com/santhosh11wnl/Sai/internal/geometry"
)

// Replacement pairs a matched arrow head with the inhibit polygon synthesized
// for it. Polygon is nil when synthesis failed for that arrow.
type Replacement struct {
	Head    []r2.Point
	Polygon []image.Point
}

// RewriteStats counts what Rewrite changed.
type RewriteStats struct {
	Arrows    int `json:"arrows"`
	Relations int `json:"relations"`
}

// Rewrite relabels activate arrows as inhibit arrows.
//
// Each activate shape whose points equal the head of a replacement with a
// polygon takes the first such polygon as its new points, becomes an
// inhibit polygon and gets a fresh rotated box. Activate relations linked to
// a rewritten arrow become inhibit relations. Shapes are modified in place;
// shapes without a usable replacement are left alone.
func Rewrite(shapes []*Shape, reps []Replacement) RewriteStats {
	var stats RewriteStats

	arrows := filterShapes(shapes, CategoryActivate)
	relations := filterShapes(shapes, CategoryActivateRelation)

	for _, arrow := range arrows {
		rep, ok := findReplacement(arrow.Points, reps)
		if !ok {
			continue
		}

		pts := geometry.ToR2(rep.Polygon)
		box := geometry.MinAreaRect(pts)
		arrow.Points = pts
		arrow.Category = CategoryInhibit
		arrow.ShapeType = "polygon"
		arrow.RotatedBox = &box
		stats.Arrows++

		if arrow.Link == "" {
			continue
		}
		for _, rel := range relations {
			if rel.Link == arrow.Link && rel.Is(CategoryActivateRelation) {
				rel.Category = CategoryInhibitRelation
				stats.Relations++
			}
		}
	}
	return stats
}

func findReplacement(points []r2.Point, reps []Replacement) (Replacement, bool) {
	for _, rep := range reps {
		if rep.Polygon != nil && geometry.Equal(points, rep.Head) {
			return rep, true
		}
	}
	return Replacement{}, false
}

// OrderLike arranges pool in the order given by keys.
//
// For the k-th occurrence of a key in keys, the k-th not yet placed shape
// with that key is taken. Each pool shape is placed at most once; shapes
// whose key never appears in keys are appended in pool order.
func OrderLike(keys []string, pool []*Shape) []*Shape {
	byKey := make(map[string][]int, len(pool))
	for i, s := range pool {
		byKey[s.Index] = append(byKey[s.Index], i)
	}

	visited := make([]bool, len(pool))
	out := make([]*Shape, 0, len(pool))
	for _, k := range keys {
		queue := byKey[k]
		if len(queue) == 0 {
			continue
		}
		i := queue[0]
		byKey[k] = queue[1:]
		visited[i] = true
		out = append(out, pool[i])
	}

	for i, s := range pool {
		if !visited[i] {
			out = append(out, s)
		}
	}
	return out
}

// GroupByCategory returns the shapes regrouped so that every shape of the
// given categories comes first, category by category, followed by the rest
// in file order.
func GroupByCategory(shapes []*Shape, order []Category) []*Shape {
	out := make([]*Shape, 0, len(shapes))
	taken := make(map[*Shape]bool, len(shapes))
	for _, c := range order {
		for _, s := range shapes {
			if s.Is(c) && !taken[s] {
				taken[s] = true
				out = append(out, s)
			}
		}
	}
	for _, s := range shapes {
		if !taken[s] {
			out = append(out, s)
		}
	}
	return out
}
