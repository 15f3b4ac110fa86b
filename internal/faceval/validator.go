package faceval

import (
	"image"

	"github.com/kozaktomas/facegate/internal/engine"
)

// Validator filters raw detections into admissible face evidence.
// Thresholds are injected from configuration; zero values are not usable.
type Validator struct {
	MinConfidence float64 // detections below this are detector noise
	MinFaceSize   int     // minimum face width/height in source pixels
	BlurThreshold float64 // Laplacian variance below this is blurry
	SizeRatio     float64 // batch path: keep faces >= ratio of largest area
}

// candidates runs filter steps 1-3 (confidence, degenerate landmarks,
// size) and returns the surviving faces in source-image coordinates,
// plus how many detections were dropped.
func (v *Validator) candidates(result *engine.ExtractResult, originalW, originalH int) (valid []ValidFace, dropped int) {
	for i, face := range result.Faces {
		if face.Confidence < v.MinConfidence {
			dropped++
			continue
		}
		// Identical eye coordinates are a known detector degeneracy,
		// not a real face.
		if face.Landmarks.LeftEye == face.Landmarks.RightEye {
			dropped++
			continue
		}

		original := toOriginal(face.BBox, result.Width, result.Height, originalW, originalH)
		if original.W < float64(v.MinFaceSize) || original.H < float64(v.MinFaceSize) {
			dropped++
			continue
		}

		valid = append(valid, ValidFace{
			Index:      i,
			Confidence: face.Confidence,
			Resized:    face.BBox,
			Original:   original,
			Area:       original.W * original.H,
		})
	}
	return valid, dropped
}

// blurFilter drops blurry candidates. When exactly one candidate remains
// before this step, its contrast is equalized first - single-subject
// shots are often low contrast and would fail the variance check
// otherwise.
func (v *Validator) blurFilter(img image.Image, candidates []ValidFace) (valid []ValidFace, dropped int) {
	single := len(candidates) == 1
	for _, face := range candidates {
		gray := cropFace(img,
			int(face.Original.X), int(face.Original.Y),
			int(face.Original.W), int(face.Original.H))
		if single {
			gray = equalizeHist(gray)
		}
		if laplacianVariance(gray) < v.BlurThreshold {
			dropped++
			continue
		}
		valid = append(valid, face)
	}
	return valid, dropped
}

// ValidateSingle runs the full filter pipeline and returns the one
// admissible face, or a RejectionError classifying the failure. The
// system requires single-subject evidence: more than one valid face
// rejects the whole image.
func (v *Validator) ValidateSingle(img image.Image, result *engine.ExtractResult) (*ValidFace, error) {
	bounds := img.Bounds()
	candidates, droppedEarly := v.candidates(result, bounds.Dx(), bounds.Dy())
	valid, droppedBlur := v.blurFilter(img, candidates)

	switch {
	case len(valid) > 1:
		return nil, &RejectionError{Reason: ReasonMultipleFaces}
	case len(valid) == 1:
		face := valid[0]
		return &face, nil
	case droppedEarly+droppedBlur > 0:
		return nil, &RejectionError{Reason: ReasonBlurry}
	default:
		return nil, &RejectionError{Reason: ReasonNoFace}
	}
}

// ValidateBatch runs the filter pipeline for the bulk-training path,
// where multiple valid faces may legitimately coexist. Spurious small
// secondary detections are dropped by the size-ratio filter.
func (v *Validator) ValidateBatch(img image.Image, result *engine.ExtractResult) []ValidFace {
	bounds := img.Bounds()
	candidates, _ := v.candidates(result, bounds.Dx(), bounds.Dy())
	valid, _ := v.blurFilter(img, candidates)
	return FilterBySize(valid, v.SizeRatio)
}
