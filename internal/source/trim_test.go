package source

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func page(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

func TestContentBounds(t *testing.T) {
	img := page(200, 160)
	draw.Draw(img, image.Rect(50, 40, 150, 120), image.NewUniform(color.Black), image.Point{}, draw.Src)

	box, ok := ContentBounds(img, EdgeThreshold)
	if !ok {
		t.Fatal("content not found")
	}
	t.Logf("content: %v", box)
	// Sobel responds one pixel either side of an edge.
	if box.Min.X < 48 || box.Min.X > 50 || box.Min.Y < 38 || box.Min.Y > 40 ||
		box.Max.X < 150 || box.Max.X > 152 || box.Max.Y < 120 || box.Max.Y > 122 {
		t.Errorf("bounds %v do not match the drawn block", box)
	}

	if _, ok := ContentBounds(page(50, 50), EdgeThreshold); ok {
		t.Error("blank page should have no content")
	}
}

func TestTrim(t *testing.T) {
	img := page(200, 160)
	draw.Draw(img, image.Rect(50, 40, 150, 120), image.NewUniform(color.Black), image.Point{}, draw.Src)

	out := Trim(img, 4)
	b := out.Bounds()
	if b.Min != (image.Point{}) || b.Dx() < 100 || b.Dx() > 112 || b.Dy() < 80 || b.Dy() > 92 {
		t.Errorf("trimmed to %v", b)
	}

	blank := page(30, 30)
	if Trim(blank, 4) != image.Image(blank) {
		t.Error("blank page should be returned unchanged")
	}
}
