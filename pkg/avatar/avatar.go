package avatar

import (
	"bytes"
	"image"
	"image/jpeg"
	"net/http"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	maxDimension = 300
	jpegQuality  = 85
)

// Normalize downscales an uploaded image to at most 300px on the long side
// and re-encodes it as JPEG, compositing transparency onto white. Payloads
// that cannot be decoded are returned unchanged with their sniffed type.
func Normalize(data []byte) ([]byte, string) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, http.DetectContentType(data)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return data, http.DetectContentType(data)
	}

	scale := 1.0
	if w > maxDimension || h > maxDimension {
		scale = float64(maxDimension) / float64(w)
		if h > w {
			scale = float64(maxDimension) / float64(h)
		}
	}

	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return data, http.DetectContentType(data)
	}

	return buf.Bytes(), "image/jpeg"
}
