// Package imaging provides the pixel operations behind the inhibit simulator.
//
// This package implements image loading and saving, binarization, inpainting,
// simple raster drawing, marker colour selection and debug overlays. All
// operations work with standard Go image types and use a coordinate system
// where (0,0) is at the top-left corner, X increases rightward, and Y
// increases downward.
//
// # Binarization
//
// AdaptiveThreshold separates dark diagram strokes from the background by
// comparing each pixel with the mean of its neighbourhood (11x11 by default)
// minus an offset (10 by default). The local mean comes from a box blur with
// replicated borders.
//
// # Inpainting
//
// Inpaint removes masked regions with Telea's fast marching method. The
// pipeline uses it to erase matched arrows before drawing inhibit markers.
//
// # Drawing
//
// FillPolygon, DrawLine and DrawPolyline write into any draw.Image and clip
// against its bounds. Lines thicker than one pixel have rounded ends.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Individual image operations
// are stateless and can be called concurrently on different images.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Even or too small threshold block sizes
//   - Masks whose size differs from the image
//   - File I/O errors during image loading and saving
//   - Unsupported file extensions when saving
package imaging
