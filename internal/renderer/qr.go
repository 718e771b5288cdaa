package renderer

import (
	"fmt"
	"image"

	qrcode "github.com/skip2/go-qrcode"
)

// QRCode encodes content as a size x size image with medium error
// correction.
func QRCode(content string, size int) (image.Image, error) {
	if content == "" {
		return nil, fmt.Errorf("empty QR content")
	}
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}
	return q.Image(size), nil
}

// QRPNG is QRCode as PNG bytes, for serving directly.
func QRPNG(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("empty QR content")
	}
	return qrcode.Encode(content, qrcode.Medium, size)
}
