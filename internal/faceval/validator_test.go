package faceval

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/kozaktomas/facegate/internal/engine"
)

func testValidator() *Validator {
	return &Validator{
		MinConfidence: 0.99,
		MinFaceSize:   70,
		BlurThreshold: 55,
		SizeRatio:     0.7,
	}
}

// checkerboard produces a maximally sharp image: every interior pixel is
// an edge, so the Laplacian variance is far above any sane threshold.
func checkerboard(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

// flat produces a featureless image with zero Laplacian variance.
func flat(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: 128})
		}
	}
	return img
}

// detection builds a DetectedFace with distinct eye landmarks.
func detection(x, y, w, h, confidence float64) engine.DetectedFace {
	return engine.DetectedFace{
		BBox:       engine.Box{X: x, Y: y, W: w, H: h},
		Confidence: confidence,
		Landmarks: engine.Landmarks{
			LeftEye:  engine.Point{X: x + w*0.3, Y: y + h*0.4},
			RightEye: engine.Point{X: x + w*0.7, Y: y + h*0.4},
		},
	}
}

// extractResult wraps detections with resized dims equal to the image
// dims, so detector space and source space coincide.
func extractResult(img image.Image, faces ...engine.DetectedFace) *engine.ExtractResult {
	return &engine.ExtractResult{
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
		Faces:  faces,
	}
}

func rejectionReason(t *testing.T, err error) Reason {
	t.Helper()
	var rej *RejectionError
	if !errors.As(err, &rej) {
		t.Fatalf("expected RejectionError, got %v", err)
	}
	return rej.Reason
}

func TestValidateSingleAccepts(t *testing.T) {
	img := checkerboard(400, 400)
	face, err := testValidator().ValidateSingle(img, extractResult(img, detection(50, 60, 120, 140, 0.995)))
	if err != nil {
		t.Fatalf("ValidateSingle() error: %v", err)
	}
	if face.Original.W != 120 || face.Original.H != 140 {
		t.Errorf("face dimensions = %vx%v, want 120x140", face.Original.W, face.Original.H)
	}
	if face.Area != 120*140 {
		t.Errorf("face area = %v, want %v", face.Area, 120*140)
	}
}

func TestValidateSingleLowConfidence(t *testing.T) {
	// Confidence below 0.99 rejects regardless of size or sharpness.
	img := checkerboard(400, 400)
	_, err := testValidator().ValidateSingle(img, extractResult(img, detection(50, 60, 200, 200, 0.98)))
	if got := rejectionReason(t, err); got != ReasonBlurry {
		t.Errorf("reason = %s, want %s (invalid faces existed)", got, ReasonBlurry)
	}
}

func TestValidateSingleDegenerateLandmarks(t *testing.T) {
	img := checkerboard(400, 400)
	face := detection(50, 60, 120, 140, 0.995)
	face.Landmarks.RightEye = face.Landmarks.LeftEye
	_, err := testValidator().ValidateSingle(img, extractResult(img, face))
	if got := rejectionReason(t, err); got != ReasonBlurry {
		t.Errorf("reason = %s, want %s", got, ReasonBlurry)
	}
}

func TestValidateSingleTooSmall(t *testing.T) {
	img := checkerboard(400, 400)
	_, err := testValidator().ValidateSingle(img, extractResult(img, detection(50, 60, 69, 140, 0.995)))
	if got := rejectionReason(t, err); got != ReasonBlurry {
		t.Errorf("reason = %s, want %s", got, ReasonBlurry)
	}
}

func TestValidateSingleBlurry(t *testing.T) {
	img := flat(400, 400)
	_, err := testValidator().ValidateSingle(img, extractResult(img, detection(50, 60, 120, 140, 0.995)))
	if got := rejectionReason(t, err); got != ReasonBlurry {
		t.Errorf("reason = %s, want %s", got, ReasonBlurry)
	}
}

func TestValidateSingleMultipleFaces(t *testing.T) {
	// Two otherwise-valid faces always reject the whole image.
	img := checkerboard(600, 400)
	_, err := testValidator().ValidateSingle(img, extractResult(img,
		detection(10, 10, 150, 150, 0.995),
		detection(300, 10, 150, 150, 0.999),
	))
	if got := rejectionReason(t, err); got != ReasonMultipleFaces {
		t.Errorf("reason = %s, want %s", got, ReasonMultipleFaces)
	}
}

func TestValidateSingleNoFace(t *testing.T) {
	img := checkerboard(400, 400)
	_, err := testValidator().ValidateSingle(img, extractResult(img))
	if got := rejectionReason(t, err); got != ReasonNoFace {
		t.Errorf("reason = %s, want %s", got, ReasonNoFace)
	}
}

func TestValidateSingleScalesCoordinates(t *testing.T) {
	// Detection ran on a half-size copy: original coordinates double.
	img := checkerboard(400, 400)
	result := &engine.ExtractResult{
		Width:  200,
		Height: 200,
		Faces:  []engine.DetectedFace{detection(20, 30, 50, 60, 0.995)},
	}
	face, err := testValidator().ValidateSingle(img, result)
	if err != nil {
		t.Fatalf("ValidateSingle() error: %v", err)
	}
	if face.Original.X != 40 || face.Original.Y != 60 {
		t.Errorf("original position = (%v, %v), want (40, 60)", face.Original.X, face.Original.Y)
	}
	if face.Original.W != 100 || face.Original.H != 120 {
		t.Errorf("original size = %vx%v, want 100x120", face.Original.W, face.Original.H)
	}
	if face.Resized.W != 50 {
		t.Errorf("resized box must be preserved, got W=%v", face.Resized.W)
	}
}

func TestValidateBatchKeepsLargest(t *testing.T) {
	img := checkerboard(800, 600)
	faces := testValidator().ValidateBatch(img, extractResult(img,
		detection(10, 10, 200, 200, 0.995),  // area 40000
		detection(400, 10, 190, 190, 0.995), // area 36100, ~90% of largest
		detection(10, 400, 80, 80, 0.995),   // area 6400, spurious
	))
	if len(faces) != 2 {
		t.Fatalf("ValidateBatch() kept %d faces, want 2", len(faces))
	}
	for _, face := range faces {
		if face.Area < 36100 {
			t.Errorf("kept spurious small face with area %v", face.Area)
		}
	}
}
