package assets

import (
	"image"

	qrcode "github.com/skip2/go-qrcode"
)

// PlaceholderPoster renders a stand-in poster for an item whose real
// poster could not be fetched or decoded: a QR code of the asset URL,
// so a broken hero at least points at what failed.
func PlaceholderPoster(url string, size int) (image.Image, error) {
	qr, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	return qr.Image(size), nil
}
