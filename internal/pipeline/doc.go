// Package pipeline drives the inhibit simulation over annotated diagrams.
//
// A Simulator processes one image at a time: it matches the activate arrows
// of the annotation to contours in the image, composites inhibit markers in
// their place and rewrites the annotation. ProcessFile adds the file I/O
// around that and Batch runs it over a directory of annotations.
//
// Images where no arrow matched are skipped: ProcessImage returns ErrSkip
// and nothing is written.
package pipeline
