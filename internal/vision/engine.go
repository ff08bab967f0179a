package vision

import (
	"fmt"
	"image"
	"strings"

	"github.com/santhosh11wnl/Sai/internal/detection"
	"github.com/santhosh11wnl/Sai/internal/imaging"
	"github.com/santhosh11wnl/Sai/internal/inhibit"
)

// Engine names accepted by New.
const (
	EngineNative = "native"
	EngineOpenCV = "opencv"
)

// Engine is the image-processing backend of the simulator: it binarizes
// diagrams, extracts contours and inpaints erased arrows.
type Engine interface {
	detection.ContourSource
	inhibit.Inpainter

	// Name returns the engine name as accepted by New.
	Name() string
}

// New returns the engine called name configured with opts.
func New(name string, opts imaging.ThresholdOptions) (Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EngineNative:
		return NewNativeEngine(opts), nil
	case EngineOpenCV:
		e, err := NewOpenCVEngine(opts)
		if err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown vision engine %q", name)
	}
}

// NativeEngine implements Engine in pure Go.
type NativeEngine struct {
	Threshold imaging.ThresholdOptions
}

// NewNativeEngine creates a pure Go engine.
func NewNativeEngine(opts imaging.ThresholdOptions) *NativeEngine {
	return &NativeEngine{Threshold: opts}
}

// Name returns "native".
func (e *NativeEngine) Name() string {
	return EngineNative
}

// Binarize applies the adaptive mean threshold and inverts the result.
func (e *NativeEngine) Binarize(img image.Image) (*image.Gray, error) {
	return imaging.AdaptiveThreshold(img, e.Threshold)
}

// FindContours traces every border of bin with a two-level hierarchy.
func (e *NativeEngine) FindContours(bin *image.Gray) ([]detection.Contour, error) {
	return detection.FindContours(bin), nil
}

// Inpaint fills the masked pixels with Telea's method.
func (e *NativeEngine) Inpaint(img image.Image, mask *image.Gray, radius float64) (*image.NRGBA, error) {
	return imaging.Inpaint(img, mask, radius)
}
