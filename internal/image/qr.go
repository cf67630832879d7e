package imagepkg

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	minQRSize = 128
	maxQRSize = 1024
)

// LinkQR encodes a URL (the OAuth consent page) as a PNG QR code so it can be
// opened from a phone when the server runs headless. Size is clamped.
func LinkQR(link string, size int) ([]byte, error) {
	if link == "" {
		return nil, newError("link qr", ErrInvalidInput, fmt.Errorf("empty link"))
	}
	size = min(max(size, minQRSize), maxQRSize)
	b, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		return nil, newError("link qr", ErrEncode, err)
	}
	return b, nil
}
