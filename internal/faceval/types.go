// Package faceval filters raw face detections into admissible
// single-subject evidence.
package faceval

import (
	"fmt"

	"github.com/kozaktomas/facegate/internal/engine"
)

// Reason classifies why an image was rejected by validation.
type Reason string

// A face dropped before the blur check still reads as "blurry" to the
// caller: the per-step cause is not surfaced, only whether any usable
// candidate existed at all.
const (
	ReasonBlurry        Reason = "blurry"
	ReasonMultipleFaces Reason = "multiple_faces"
	ReasonNoFace        Reason = "no_face"
)

// RejectionError is returned when no admissible face was found. The
// reason is terminal for the image; the input itself is unusable.
type RejectionError struct {
	Reason Reason
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("face validation rejected: %s", e.Reason)
}

// ValidFace is a detection that passed all filters. Detection runs on a
// downscaled copy of the image, so the face carries its box in both
// coordinate spaces. It exists only during one request's lifetime.
type ValidFace struct {
	Index      int
	Confidence float64
	Resized    engine.Box // detector space (downscaled copy)
	Original   engine.Box // source image space
	Area       float64    // in source image pixels
}

// Width returns the face width in source image pixels.
func (f *ValidFace) Width() float64 { return f.Original.W }

// Height returns the face height in source image pixels.
func (f *ValidFace) Height() float64 { return f.Original.H }

// toOriginal maps a detector-space box onto the source image.
func toOriginal(box engine.Box, resizedW, resizedH, originalW, originalH int) engine.Box {
	scaleX := float64(originalW) / float64(resizedW)
	scaleY := float64(originalH) / float64(resizedH)
	return engine.Box{
		X: box.X * scaleX,
		Y: box.Y * scaleY,
		W: box.W * scaleX,
		H: box.H * scaleY,
	}
}
