package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

type rendition struct {
	data          []byte
	contentType   string
	width, height int
}

// dimensions returns the pixel size of a raster image, or zero when the format is unknown.
func dimensions(data []byte) (int, int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

// thumbnail scales the image to fit within a size x size box. Images already inside the box
// are re-encoded at their own size.
func thumbnail(data []byte, size int) (rendition, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return rendition{}, fmt.Errorf("%w: %v", ErrMediaDecode, err)
	}

	b := src.Bounds()
	w, h := fit(b.Dx(), b.Dy(), size)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	out := rendition{width: w, height: h}
	if format == "jpeg" {
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 85})
		out.contentType = "image/jpeg"
	} else {
		err = png.Encode(&buf, dst)
		out.contentType = "image/png"
	}
	if err != nil {
		return rendition{}, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	out.data = buf.Bytes()
	return out, nil
}

func fit(w, h, size int) (int, int) {
	if w <= size && h <= size {
		return w, h
	}
	if w >= h {
		scaled := h * size / w
		if scaled < 1 {
			scaled = 1
		}
		return size, scaled
	}
	scaled := w * size / h
	if scaled < 1 {
		scaled = 1
	}
	return scaled, size
}
