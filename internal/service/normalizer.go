package service

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// NormalizeImage enforces the pixel-dimension ceiling on a rendered page.
// Pages already within the ceiling are returned as-is, without copying.
// Larger pages are downscaled proportionally with a Catmull-Rom filter so
// that the longest side equals maxDim.
func NormalizeImage(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}

	longest := w
	if h > longest {
		longest = h
	}
	ratio := float64(maxDim) / float64(longest)
	newW := int(math.Round(float64(w) * ratio))
	newH := int(math.Round(float64(h) * ratio))
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
	return dst
}
