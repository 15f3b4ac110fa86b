package faceval

import (
	"image"
	"image/color"
	"image/draw"
)

// equalizeHist applies histogram equalization to spread the gray levels
// across the full range. Used for single-subject shots where low contrast
// would otherwise depress the blur score.
func equalizeHist(gray *image.Gray) *image.Gray {
	bounds := gray.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return gray
	}

	var hist [256]int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			hist[gray.GrayAt(x, y).Y]++
		}
	}

	// Cumulative distribution mapped back onto 0-255.
	var lut [256]uint8
	cum := 0
	for i := 0; i < 256; i++ {
		cum += hist[i]
		lut[i] = uint8(cum * 255 / total)
	}

	out := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out.SetGray(x, y, color.Gray{Y: lut[gray.GrayAt(x, y).Y]})
		}
	}
	return out
}

// laplacianVariance measures image sharpness as the variance of the
// 4-neighbour Laplacian. Low variance means few edges, i.e. a blurry
// image.
func laplacianVariance(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < 3 || h < 3 {
		return 0
	}

	at := func(x, y int) float64 {
		return float64(gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
	}

	n := 0
	sum := 0.0
	sumSq := 0.0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			lap := at(x-1, y) + at(x+1, y) + at(x, y-1) + at(x, y+1) - 4*at(x, y)
			sum += lap
			sumSq += lap * lap
			n++
		}
	}

	mean := sum / float64(n)
	return sumSq/float64(n) - mean*mean
}

// cropFace extracts the face region from the source image, clamped to the
// image bounds.
func cropFace(img image.Image, x, y, w, h int) *image.Gray {
	bounds := img.Bounds()
	rect := image.Rect(x, y, x+w, y+h).Intersect(bounds)
	gray := image.NewGray(rect)
	draw.Draw(gray, rect, img, rect.Min, draw.Src)
	return gray
}
