package faceval

import (
	"image"
	"image/color"
	"testing"
)

func TestLaplacianVariance(t *testing.T) {
	if v := laplacianVariance(flat(100, 100)); v != 0 {
		t.Errorf("flat image variance = %v, want 0", v)
	}
	if v := laplacianVariance(checkerboard(100, 100)); v < 1000 {
		t.Errorf("checkerboard variance = %v, want high", v)
	}
	// Degenerate crops must not panic or divide by zero.
	if v := laplacianVariance(image.NewGray(image.Rect(0, 0, 2, 2))); v != 0 {
		t.Errorf("tiny image variance = %v, want 0", v)
	}
}

func TestEqualizeHistSpreadsContrast(t *testing.T) {
	// Low-contrast gradient confined to 100..120.
	gray := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			gray.SetGray(x, y, color.Gray{Y: uint8(100 + x*20/64)})
		}
	}

	before := laplacianVariance(gray)
	after := laplacianVariance(equalizeHist(gray))
	if after <= before {
		t.Errorf("equalization did not raise variance: before=%v after=%v", before, after)
	}
}

func TestCropFaceClampsToBounds(t *testing.T) {
	img := checkerboard(100, 100)
	crop := cropFace(img, 80, 80, 50, 50)
	if crop.Bounds().Max.X > 100 || crop.Bounds().Max.Y > 100 {
		t.Errorf("crop exceeds image bounds: %v", crop.Bounds())
	}
}

func TestFilterBySize(t *testing.T) {
	face := func(area float64) ValidFace { return ValidFace{Area: area} }

	tests := []struct {
		name  string
		faces []ValidFace
		want  int
	}{
		{"empty", nil, 0},
		{"single passes through", []ValidFace{face(10)}, 1},
		{"all similar", []ValidFace{face(100), face(90), face(75)}, 3},
		{"drops small", []ValidFace{face(100), face(69), face(30)}, 1},
		{"boundary kept", []ValidFace{face(100), face(70)}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FilterBySize(tt.faces, 0.7); len(got) != tt.want {
				t.Errorf("FilterBySize() kept %d, want %d", len(got), tt.want)
			}
		})
	}
}
