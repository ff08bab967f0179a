package imaging

import (
	"image"
	"image/color"
	"strconv"

	"github.com/disintegration/imaging"
)

// OverlayItem is one matched arrow drawn on a debug overlay.
type OverlayItem struct {
	// ArrowBox is the rotated rectangle of the matched contour.
	ArrowBox []image.Point

	// HeadBox is the annotated head polygon.
	HeadBox []image.Point

	// Inhibit is the synthesized inhibit polygon, nil if synthesis failed.
	Inhibit []image.Point
}

// Overlay colours.
var (
	overlayArrowColor   = color.NRGBA{0, 128, 255, 255}
	overlayHeadColor    = color.NRGBA{255, 0, 0, 255}
	overlayInhibitColor = color.NRGBA{0, 200, 0, 255}
	overlayLabelFG      = color.NRGBA{255, 255, 255, 255}
	overlayLabelBG      = color.NRGBA{0, 0, 0, 180}
)

// DebugOverlay draws the matched arrow rectangles (blue), head boxes (red)
// and inhibit polygons (green) over a copy of img, each tagged with its
// position in items.
func DebugOverlay(img image.Image, items []OverlayItem) *image.NRGBA {
	result := imaging.Clone(img)

	for i, it := range items {
		DrawPolyline(result, it.ArrowBox, 1, overlayArrowColor)
		DrawPolyline(result, it.HeadBox, 1, overlayHeadColor)
		if it.Inhibit != nil {
			DrawPolyline(result, it.Inhibit, 1, overlayInhibitColor)
		}
		if len(it.ArrowBox) > 0 {
			at := it.ArrowBox[0]
			drawIndex(result, at.X+2, at.Y+2, i, overlayLabelFG, overlayLabelBG)
		}
	}
	return result
}

// digitGlyphs is a 3x5 pixel font for the digits 0-9.
var digitGlyphs = [10][5]string{
	{"111", "101", "101", "101", "111"},
	{"010", "110", "010", "010", "111"},
	{"111", "001", "111", "100", "111"},
	{"111", "001", "111", "001", "111"},
	{"101", "101", "111", "001", "001"},
	{"111", "100", "111", "001", "111"},
	{"111", "100", "111", "101", "111"},
	{"111", "001", "001", "001", "001"},
	{"111", "101", "111", "101", "111"},
	{"111", "101", "111", "001", "111"},
}

const (
	digitAdvance = 4
	tagHeight    = 7
)

// drawIndex tags (x, y) with the decimal number n, one pixel of background
// padding around the digits. Pixels outside img are skipped.
func drawIndex(img *image.NRGBA, x, y, n int, fg, bg color.NRGBA) {
	digits := strconv.Itoa(n)
	bounds := img.Bounds()

	for dy := -1; dy < tagHeight; dy++ {
		for dx := -1; dx < len(digits)*digitAdvance; dx++ {
			setPixel(img, bounds, x+dx, y+dy, bg)
		}
	}

	for i, d := range digits {
		if d < '0' || d > '9' {
			continue
		}
		left := x + i*digitAdvance
		for row, line := range digitGlyphs[d-'0'] {
			for col, pixel := range line {
				if pixel == '1' {
					setPixel(img, bounds, left+col, y+row, fg)
				}
			}
		}
	}
}
