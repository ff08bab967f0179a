package annotation

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/golang/geo/r2"

	"github.com/santhosh11wnl/Sai/internal/geometry"
)

// Shape is one annotated polygon.
type Shape struct {
	// Index is the identity key of the shape, unique within its file.
	Index string

	// Category is the explicit category parsed from the label.
	Category Category

	// Link is the optional relation id shared by an arrow and its
	// relation box. Empty when the label carries none.
	Link string

	// Points are the polygon vertices in image coordinates.
	Points []r2.Point

	// ShapeType is the labelme shape type, e.g. "polygon" or "rectangle".
	ShapeType string

	// RotatedBox is the minimum-area oriented box of the polygon, when known.
	RotatedBox *geometry.RotatedRect

	// Extra holds every JSON key this package does not interpret.
	Extra map[string]json.RawMessage

	// positional is set when Index was assigned on load rather than read
	// from the label.
	positional bool
}

// Label returns the label string as it is written to disk.
func (s *Shape) Label() string {
	if s.positional {
		return formatLabel("", s.Category, s.Link)
	}
	return formatLabel(s.Index, s.Category, s.Link)
}

// Is reports whether the shape belongs to category c.
func (s *Shape) Is(c Category) bool {
	return s.Category == c
}

// assignPositionalIndex gives an unindexed shape the key "#<ordinal>".
func (s *Shape) assignPositionalIndex(ordinal int) {
	if s.Index != "" {
		return
	}
	s.Index = "#" + strconv.Itoa(ordinal)
	s.positional = true
}

const (
	keyLabel      = "label"
	keyPoints     = "points"
	keyShapeType  = "shape_type"
	keyRotatedBox = "rotated_box"
)

// UnmarshalJSON decodes a labelme shape object.
func (s *Shape) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid shape: %w", err)
	}

	var label string
	if v, ok := raw[keyLabel]; ok {
		if err := json.Unmarshal(v, &label); err != nil {
			return fmt.Errorf("invalid shape label: %w", err)
		}
		delete(raw, keyLabel)
	}
	s.Index, s.Category, s.Link = parseLabel(label)

	s.Points = nil
	if v, ok := raw[keyPoints]; ok {
		var pts [][2]float64
		if err := json.Unmarshal(v, &pts); err != nil {
			return fmt.Errorf("invalid points for shape %q: %w", label, err)
		}
		s.Points = make([]r2.Point, len(pts))
		for i, p := range pts {
			s.Points[i] = r2.Point{X: p[0], Y: p[1]}
		}
		delete(raw, keyPoints)
	}

	s.ShapeType = ""
	if v, ok := raw[keyShapeType]; ok {
		if err := json.Unmarshal(v, &s.ShapeType); err != nil {
			return fmt.Errorf("invalid shape_type for shape %q: %w", label, err)
		}
		delete(raw, keyShapeType)
	}

	s.RotatedBox = nil
	if v, ok := raw[keyRotatedBox]; ok {
		if string(v) != "null" {
			var box geometry.RotatedRect
			if err := json.Unmarshal(v, &box); err != nil {
				return fmt.Errorf("invalid rotated_box for shape %q: %w", label, err)
			}
			s.RotatedBox = &box
		}
		delete(raw, keyRotatedBox)
	}

	s.Extra = raw
	return nil
}

// MarshalJSON encodes the shape back into a labelme shape object.
func (s *Shape) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(s.Extra)+4)
	for k, v := range s.Extra {
		out[k] = v
	}

	pts := make([][2]float64, len(s.Points))
	for i, p := range s.Points {
		pts[i] = [2]float64{p.X, p.Y}
	}

	out[keyLabel] = s.Label()
	out[keyPoints] = pts
	if s.ShapeType != "" {
		out[keyShapeType] = s.ShapeType
	}
	if s.RotatedBox != nil {
		out[keyRotatedBox] = s.RotatedBox
	}
	return json.Marshal(out)
}
