package annotation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// File is a decoded annotation file.
type File struct {
	// Path is where the file was loaded from. It is not serialized.
	Path string `json:"-"`

	// ImagePath names the annotated image, relative to the image directory.
	ImagePath string

	// ImageWidth and ImageHeight are the image dimensions, zero if unknown.
	ImageWidth  int
	ImageHeight int

	// Shapes are kept in file order.
	Shapes []*Shape

	// Extra holds the top-level keys this package does not interpret.
	Extra map[string]json.RawMessage
}

const (
	keyShapes      = "shapes"
	keyImagePath   = "imagePath"
	keyImageWidth  = "imageWidth"
	keyImageHeight = "imageHeight"
	keyImageData   = "imageData"
)

// Load reads and decodes an annotation file. Shapes whose label carries no
// index are given positional keys.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read annotation: %w", err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	f.Path = path
	return f, nil
}

// Parse decodes annotation JSON.
func Parse(data []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	for i, s := range f.Shapes {
		s.assignPositionalIndex(i)
	}
	return &f, nil
}

// UnmarshalJSON decodes the top-level annotation object.
func (f *File) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid annotation: %w", err)
	}

	f.Shapes = nil
	if v, ok := raw[keyShapes]; ok {
		if err := json.Unmarshal(v, &f.Shapes); err != nil {
			return fmt.Errorf("invalid shapes: %w", err)
		}
		delete(raw, keyShapes)
	}
	for i, s := range f.Shapes {
		if s == nil {
			return fmt.Errorf("shape %d is null", i)
		}
	}

	f.ImagePath = ""
	if v, ok := raw[keyImagePath]; ok {
		if err := json.Unmarshal(v, &f.ImagePath); err != nil {
			return fmt.Errorf("invalid imagePath: %w", err)
		}
		delete(raw, keyImagePath)
	}

	f.ImageWidth, f.ImageHeight = 0, 0
	for key, dst := range map[string]*int{keyImageWidth: &f.ImageWidth, keyImageHeight: &f.ImageHeight} {
		v, ok := raw[key]
		if !ok {
			continue
		}
		if string(v) != "null" {
			if err := json.Unmarshal(v, dst); err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
		}
		delete(raw, key)
	}

	f.Extra = raw
	return nil
}

// MarshalJSON encodes the annotation back into its labelme layout.
func (f *File) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(f.Extra)+4)
	for k, v := range f.Extra {
		out[k] = v
	}
	shapes := f.Shapes
	if shapes == nil {
		shapes = []*Shape{}
	}
	out[keyShapes] = shapes
	out[keyImagePath] = f.ImagePath
	if f.ImageWidth > 0 && f.ImageHeight > 0 {
		out[keyImageWidth] = f.ImageWidth
		out[keyImageHeight] = f.ImageHeight
	} else {
		out[keyImageWidth] = nil
		out[keyImageHeight] = nil
	}
	return json.Marshal(out)
}

// Save writes the annotation as indented JSON, creating the parent
// directory if needed.
func (f *File) Save(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode annotation: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write annotation: %w", err)
	}
	return nil
}

// ClearImageData drops any embedded image payload so a derived annotation
// does not carry the source image.
func (f *File) ClearImageData() {
	if f.Extra == nil {
		f.Extra = make(map[string]json.RawMessage)
	}
	f.Extra[keyImageData] = json.RawMessage("null")
}

// ShapesFor returns the shapes of category c in file order.
func (f *File) ShapesFor(c Category) []*Shape {
	return filterShapes(f.Shapes, c)
}

// Keys returns the identity key of every shape in file order.
func (f *File) Keys() []string {
	keys := make([]string, len(f.Shapes))
	for i, s := range f.Shapes {
		keys[i] = s.Index
	}
	return keys
}

func filterShapes(shapes []*Shape, c Category) []*Shape {
	var out []*Shape
	for _, s := range shapes {
		if s.Is(c) {
			out = append(out, s)
		}
	}
	return out
}
