// Package vision selects the image-processing engine of the simulator.
//
// The native engine is pure Go and always available. The opencv engine
// wraps OpenCV through gocv and is only functional in binaries built with
// the gocv build tag.
package vision
