package admission

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	xdraw "golang.org/x/image/draw"

	"github.com/kozaktomas/facegate/internal/engine"
)

const jpegQuality = 85

// CropJPEG cuts the face box out of the source image, scales it to
// the target height keeping aspect ratio, and encodes it as JPEG.
func CropJPEG(img image.Image, box engine.Box, height int) ([]byte, error) {
	rect := image.Rect(int(box.X), int(box.Y), int(box.X+box.W), int(box.Y+box.H)).
		Intersect(img.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("face box %v outside image bounds %v", box, img.Bounds())
	}

	crop := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	xdraw.Copy(crop, image.Point{}, img, rect, xdraw.Src, nil)

	width := rect.Dx() * height / rect.Dy()
	if width < 1 {
		width = 1
	}
	scaled := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), crop, crop.Bounds(), xdraw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encoding crop: %w", err)
	}
	return buf.Bytes(), nil
}
