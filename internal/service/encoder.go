package service

import (
	"bytes"
	"fmt"
	"image"

	"github.com/chai2010/webp"
)

// EncodeWebP serializes an image into lossy WebP at the given quality.
func EncodeWebP(img image.Image, quality int) ([]byte, error) {
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}
