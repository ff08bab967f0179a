// Package geometry provides the planar helpers shared by the arrow matcher,
// the inhibit synthesizer and the annotation rewriter.
//
// Vertices are github.com/golang/geo/r2 points in image coordinates: the
// origin is the top-left pixel, X grows rightward and Y grows downward.
//
// # Rotated Rectangles
//
// RotatedRect follows the usual center/size/angle description of an oriented
// box. Points returns the four corners in the same order OpenCV's boxPoints
// produces them, which the inhibit synthesizer relies on when it pairs edges
// 0-1 and 0-3. MinAreaRect normalizes its result so that:
//
//   - Angle is in degrees within [0, 90)
//   - Width is the extent along the direction (cos Angle, sin Angle)
//   - Height is the extent along the perpendicular direction
//
// # Integer Conversion
//
// Wherever pixel coordinates are derived from floating point values the
// conversion truncates toward zero, matching int() on a float.
package geometry
