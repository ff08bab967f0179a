package detection

import (
	"image"
	"image/draw"

	"github.com/santhosh11wnl/Sai/internal/annotation"
	"github.com/santhosh11wnl/Sai/internal/geometry"
)

// EraseText paints the bounding box of every shape white, both corners
// included, so that text strokes cannot be mistaken for arrow contours.
// Vertices are truncated to pixels first. Boxes falling outside the image
// are clipped.
func EraseText(img draw.Image, shapes []*annotation.Shape) {
	bounds := img.Bounds()
	for _, s := range shapes {
		if len(s.Points) == 0 {
			continue
		}
		r := geometry.PixelBounds(s.Points)
		r.Max = r.Max.Add(image.Pt(1, 1))
		r = r.Intersect(bounds)
		if r.Empty() {
			continue
		}
		draw.Draw(img, r, image.White, image.Point{}, draw.Src)
	}
}
