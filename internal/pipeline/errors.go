package pipeline

import (
	"errors"
	"fmt"

	"github.com/santhosh11wnl/Sai/internal/detection"
)

// ErrSkip is returned when no arrow of an image could be matched. Nothing is
// written for a skipped image.
var ErrSkip = errors.New("no arrow matched")

// AnnotationLoadError reports an annotation file, or the image it names,
// that could not be read or decoded.
type AnnotationLoadError struct {
	Path string
	Err  error
}

func (e *AnnotationLoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Path, e.Err)
}

func (e *AnnotationLoadError) Unwrap() error {
	return e.Err
}

// EmptyResultError is the skip reported for one annotation file. It matches
// ErrSkip under errors.Is.
type EmptyResultError struct {
	Path  string
	Stats detection.MatchStats
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("%s: %v (%d arrows, %d contours)", e.Path, ErrSkip, e.Stats.Arrows, e.Stats.Contours)
}

// Is reports whether target is ErrSkip.
func (e *EmptyResultError) Is(target error) bool {
	return target == ErrSkip
}
