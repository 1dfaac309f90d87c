package avatar

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func decodeJPEG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("jpeg.Decode: %v", err)
	}
	return img
}

func TestNormalize_DownscalesWide(t *testing.T) {
	out, contentType := Normalize(encodePNG(t, 400, 200))
	if contentType != "image/jpeg" {
		t.Fatalf("contentType = %q, want image/jpeg", contentType)
	}
	img := decodeJPEG(t, out)
	if w, h := img.Bounds().Dx(), img.Bounds().Dy(); w != 300 || h != 150 {
		t.Fatalf("dimensions = %dx%d, want 300x150", w, h)
	}
}

func TestNormalize_DownscalesTall(t *testing.T) {
	out, _ := Normalize(encodePNG(t, 200, 400))
	img := decodeJPEG(t, out)
	if w, h := img.Bounds().Dx(), img.Bounds().Dy(); w != 150 || h != 300 {
		t.Fatalf("dimensions = %dx%d, want 150x300", w, h)
	}
}

func TestNormalize_SmallImageKeepsSize(t *testing.T) {
	out, contentType := Normalize(encodePNG(t, 64, 48))
	if contentType != "image/jpeg" {
		t.Fatalf("contentType = %q, want image/jpeg", contentType)
	}
	img := decodeJPEG(t, out)
	if w, h := img.Bounds().Dx(), img.Bounds().Dy(); w != 64 || h != 48 {
		t.Fatalf("dimensions = %dx%d, want 64x48", w, h)
	}
}

func TestNormalize_UndecodablePassesThrough(t *testing.T) {
	data := []byte("definitely not an image")
	out, contentType := Normalize(data)
	if !bytes.Equal(out, data) {
		t.Fatalf("undecodable input must come back unchanged")
	}
	if contentType != "text/plain; charset=utf-8" {
		t.Fatalf("contentType = %q", contentType)
	}
}
