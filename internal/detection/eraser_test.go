package detection

import (
	"image"
	"image/color"
	"testing"

	"github.com/golang/geo/r2"

	"github.com/santhosh11wnl/Sai/internal/annotation"
)

func TestEraseText(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	black := color.NRGBA{0, 0, 0, 255}
	white := color.NRGBA{255, 255, 255, 255}
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			img.SetNRGBA(x, y, black)
		}
	}

	EraseText(img, []*annotation.Shape{
		{Points: []r2.Point{{X: 2.7, Y: 3.2}, {X: 5.9, Y: 6.1}}},
		{Points: []r2.Point{{X: 15, Y: 15}, {X: 40, Y: 40}}},
		{},
	})

	tests := []struct {
		x, y int
		want color.NRGBA
	}{
		{2, 3, white},
		{5, 6, white},
		{6, 6, black},
		{5, 7, black},
		{1, 3, black},
		{19, 19, white},
		{14, 15, black},
	}
	for _, tt := range tests {
		if got := img.NRGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d): got %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}
