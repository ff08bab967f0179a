package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
)

// ThresholdOptions configures AdaptiveThreshold.
type ThresholdOptions struct {
	// BlockSize is the odd side length of the square neighbourhood used for
	// the local mean.
	BlockSize int `yaml:"block_size" json:"block_size"`

	// Offset is subtracted from the local mean before comparing.
	Offset float64 `yaml:"offset" json:"offset"`
}

// DefaultThresholdOptions returns an 11x11 neighbourhood with offset 10.
func DefaultThresholdOptions() ThresholdOptions {
	return ThresholdOptions{BlockSize: 11, Offset: 10}
}

// Validate checks that the block size is odd and at least 3.
func (o ThresholdOptions) Validate() error {
	if o.BlockSize < 3 || o.BlockSize%2 == 0 {
		return fmt.Errorf("block size must be an odd number >= 3, got %d", o.BlockSize)
	}
	return nil
}

// ToGray converts an image to 8-bit luminance using ITU-R BT.601 weights
// (0.299*R + 0.587*G + 0.114*B).
func ToGray(img image.Image) *image.Gray {
	g := imaging.Grayscale(img)
	b := g.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := g.Pix[y*g.Stride : y*g.Stride+b.Dx()*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+b.Dx()]
		for x := range dst {
			dst[x] = src[x*4]
		}
	}
	return out
}

// AdaptiveThreshold returns the stroke mask of an image.
//
// Each pixel is compared with the mean of its BlockSize x BlockSize
// neighbourhood, borders replicated. Pixels brighter than mean - Offset are
// background (0); the remaining, darker pixels are strokes (255). This is a
// mean adaptive binary threshold followed by inversion.
func AdaptiveThreshold(img image.Image, opts ThresholdOptions) (*image.Gray, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	gray := ToGray(img)
	mean := blur.Box(gray, float64(opts.BlockSize-1)/2)

	b := gray.Bounds()
	out := image.NewGray(b)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			src := float64(gray.Pix[y*gray.Stride+x])
			m := float64(mean.Pix[y*mean.Stride+x*4])
			if src <= m-opts.Offset {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out, nil
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
