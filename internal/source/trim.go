package source

import (
	"image"
	"image/draw"
	"math"
)

// EdgeThreshold is the Sobel gradient magnitude that counts as content.
const EdgeThreshold = 30.0

// ContentBounds finds the box around everything on a page that is not flat
// background: pixels whose grey-level gradient exceeds threshold. A blank
// page returns its full bounds and false.
func ContentBounds(img image.Image, threshold float64) (image.Rectangle, bool) {
	b := img.Bounds()
	gray := image.NewGray(b)
	draw.Draw(gray, b, img, b.Min, draw.Src)

	// Sobel kernels, x and y.
	kx := [3][3]float64{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
	ky := [3][3]float64{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}

	found := false
	var box image.Rectangle
	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		for x := b.Min.X + 1; x < b.Max.X-1; x++ {
			var gx, gy float64
			for j := -1; j <= 1; j++ {
				for i := -1; i <= 1; i++ {
					v := float64(gray.GrayAt(x+i, y+j).Y)
					gx += v * kx[j+1][i+1]
					gy += v * ky[j+1][i+1]
				}
			}
			if math.Hypot(gx, gy) <= threshold {
				continue
			}
			px := image.Rect(x, y, x+1, y+1)
			if !found {
				box, found = px, true
			} else {
				box = box.Union(px)
			}
		}
	}
	if !found {
		return b, false
	}
	return box, true
}

// Trim crops the uniform margins of a rendered page, keeping pad pixels
// around the content, so slides fill their frame. Blank pages are
// returned unchanged.
func Trim(img image.Image, pad int) image.Image {
	box, ok := ContentBounds(img, EdgeThreshold)
	if !ok {
		return img
	}
	box = box.Inset(-pad).Intersect(img.Bounds())
	if box == img.Bounds() {
		return img
	}
	out := image.NewRGBA(image.Rect(0, 0, box.Dx(), box.Dy()))
	draw.Draw(out, out.Bounds(), img, box.Min, draw.Src)
	return out
}
