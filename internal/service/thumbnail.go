package service

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	DefaultThumbnailSize = 256
	MaxThumbnailSize     = 1024
)

// MakeThumbnail decodes a JPEG or PNG and re-encodes it as a JPEG whose longer
// side is at most size pixels. Smaller images keep their size.
func MakeThumbnail(data []byte, size int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("decode image: empty bounds")
	}
	if size <= 0 {
		size = DefaultThumbnailSize
	}
	size = min(size, MaxThumbnailSize)

	nw, nh := w, h
	if w > h {
		if w > size {
			nw = size
			nh = int(float64(h) * (float64(size) / float64(w)))
		}
	} else if h > size {
		nh = size
		nw = int(float64(w) * (float64(size) / float64(h)))
	}
	nw = max(nw, 1)
	nh = max(nh, 1)

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: 82}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return out.Bytes(), nil
}
