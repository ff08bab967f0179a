//go:build gocv
// +build gocv

package vision

import (
	"errors"
	"fmt"
	"image"

	disimaging "github.com/disintegration/imaging"
	"gocv.io/x/gocv"

	"github.com/santhosh11wnl/Sai/internal/detection"
	"github.com/santhosh11wnl/Sai/internal/imaging"
)

// OpenCVEngine implements Engine with OpenCV through gocv.
type OpenCVEngine struct {
	Threshold imaging.ThresholdOptions
}

// NewOpenCVEngine creates an OpenCV engine.
func NewOpenCVEngine(opts imaging.ThresholdOptions) (*OpenCVEngine, error) {
	return &OpenCVEngine{Threshold: opts}, nil
}

// Name returns "opencv".
func (e *OpenCVEngine) Name() string {
	return EngineOpenCV
}

// Binarize converts img to gray, applies a mean adaptive threshold and
// inverts the result.
func (e *OpenCVEngine) Binarize(img image.Image) (*image.Gray, error) {
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer src.Close()
	if src.Empty() {
		return nil, errors.New("empty image")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	bin := gocv.NewMat()
	defer bin.Close()
	gocv.AdaptiveThreshold(gray, &bin, 255, gocv.AdaptiveThresholdMean, gocv.ThresholdBinary,
		e.Threshold.BlockSize, float32(e.Threshold.Offset))

	inv := gocv.NewMat()
	defer inv.Close()
	gocv.BitwiseNot(bin, &inv)

	out, err := inv.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert mask: %w", err)
	}
	g, ok := out.(*image.Gray)
	if !ok {
		return nil, fmt.Errorf("unexpected mask type %T", out)
	}
	return g, nil
}

// FindContours runs findContours with RETR_CCOMP and CHAIN_APPROX_NONE.
func (e *OpenCVEngine) FindContours(bin *image.Gray) ([]detection.Contour, error) {
	mat, err := gocv.ImageGrayToMatGray(bin)
	if err != nil {
		return nil, fmt.Errorf("failed to convert mask: %w", err)
	}
	defer mat.Close()

	hier := gocv.NewMat()
	defer hier.Close()
	pv := gocv.FindContoursWithParams(mat, &hier, gocv.RetrievalCComp, gocv.ChainApproxNone)
	defer pv.Close()

	contours := make([]detection.Contour, pv.Size())
	for i := range contours {
		h := detection.Hierarchy{Next: -1, Prev: -1, FirstChild: -1, Parent: -1}
		if !hier.Empty() {
			v := hier.GetVeciAt(0, i)
			h = detection.Hierarchy{
				Next:       int(v[0]),
				Prev:       int(v[1]),
				FirstChild: int(v[2]),
				Parent:     int(v[3]),
			}
		}
		contours[i] = detection.NewContour(pv.At(i).ToPoints(), h.Parent >= 0, h)
	}
	return contours, nil
}

// Inpaint fills the masked pixels with cv::inpaint using INPAINT_TELEA.
func (e *OpenCVEngine) Inpaint(img image.Image, mask *image.Gray, radius float64) (*image.NRGBA, error) {
	if mask.Bounds().Size() != img.Bounds().Size() {
		return nil, fmt.Errorf("mask size %v does not match image size %v", mask.Bounds().Size(), img.Bounds().Size())
	}
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer src.Close()

	m, err := gocv.ImageGrayToMatGray(mask)
	if err != nil {
		return nil, fmt.Errorf("failed to convert mask: %w", err)
	}
	defer m.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Inpaint(src, m, &dst, float32(radius), gocv.Telea)

	out, err := dst.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert result: %w", err)
	}
	return toNRGBA(out), nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	return disimaging.Clone(img)
}
