package service

import (
	"image"
	"math"
	"testing"
)

func TestNormalizeImage_PassThrough(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1200, 900))

	got := NormalizeImage(img, 2000)
	if got != image.Image(img) {
		t.Fatalf("expected the original image back when within the ceiling")
	}
}

func TestNormalizeImage_DownscaleLandscape(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4000, 2000))

	got := NormalizeImage(img, 2000)
	bounds := got.Bounds()
	if bounds.Dx() != 2000 || bounds.Dy() != 1000 {
		t.Fatalf("expected 2000x1000, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestNormalizeImage_DownscalePortrait(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1000, 3000))

	got := NormalizeImage(img, 2000)
	bounds := got.Bounds()
	if bounds.Dy() != 2000 {
		t.Fatalf("expected longest side 2000, got %d", bounds.Dy())
	}
	if bounds.Dx() != 667 {
		t.Fatalf("expected width 667, got %d", bounds.Dx())
	}
}

func TestNormalizeImage_PreservesAspectRatio(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3507, 2481)) // A4 at 300 DPI

	got := NormalizeImage(img, 2000)
	bounds := got.Bounds()

	longest := bounds.Dx()
	if bounds.Dy() > longest {
		longest = bounds.Dy()
	}
	if longest != 2000 {
		t.Fatalf("expected longest side 2000, got %d", longest)
	}

	want := 3507.0 / 2481.0
	gotRatio := float64(bounds.Dx()) / float64(bounds.Dy())
	if math.Abs(gotRatio-want)/want > 0.01 {
		t.Fatalf("aspect ratio drifted: want %.4f, got %.4f", want, gotRatio)
	}
}

func TestNormalizeImage_NoCeiling(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 5000, 5000))

	got := NormalizeImage(img, 0)
	if got != image.Image(img) {
		t.Fatalf("expected pass-through when the ceiling is disabled")
	}
}
