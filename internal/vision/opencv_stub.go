//go:build !gocv
// +build !gocv

package vision

import (
	"errors"
	"image"

	"github.com/santhosh11wnl/Sai/internal/detection"
	"github.com/santhosh11wnl/Sai/internal/imaging"
)

var errNoOpenCV = errors.New("gocv build tag is not enabled")

// OpenCVEngine is unavailable in builds without the gocv tag.
type OpenCVEngine struct {
	Threshold imaging.ThresholdOptions
}

// NewOpenCVEngine returns an error when the binary was built without the
// gocv tag.
func NewOpenCVEngine(imaging.ThresholdOptions) (*OpenCVEngine, error) {
	return nil, errNoOpenCV
}

// Name returns "opencv".
func (e *OpenCVEngine) Name() string {
	return EngineOpenCV
}

// Binarize returns an error in builds without the gocv tag.
func (e *OpenCVEngine) Binarize(image.Image) (*image.Gray, error) {
	return nil, errNoOpenCV
}

// FindContours returns an error in builds without the gocv tag.
func (e *OpenCVEngine) FindContours(*image.Gray) ([]detection.Contour, error) {
	return nil, errNoOpenCV
}

// Inpaint returns an error in builds without the gocv tag.
func (e *OpenCVEngine) Inpaint(image.Image, *image.Gray, float64) (*image.NRGBA, error) {
	return nil, errNoOpenCV
}
