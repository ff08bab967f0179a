// Package detection finds the contours of arrows in pathway diagrams.
//
// FindContours traces the borders of a binary stroke mask and links them in
// a two-level hierarchy: outer borders of connected components at the top,
// hole borders as their children. SelectArrows pairs annotated arrow heads
// with standalone contours (no parent, no child) by counting border pixels
// inside each head box. EraseText blanks text boxes before binarization so
// that letters are never mistaken for arrows.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Head boxes use inclusive top-left and exclusive bottom-right
//
// # Ceiling Ratio
//
// Matching stops early once more than len(arrows) x ceilingRatio arrows have
// been accepted. Arrows are visited in annotation order, so reordering the
// annotation may change which arrows get converted.
package detection
