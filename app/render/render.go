// Package render draws wire tokens as QR code images
package render

import (
	"encoding/base64"
	"errors"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize of the rendered image, in pixels
const DefaultSize = 300

// ErrEmpty returned for an empty token
var ErrEmpty = errors.New("nothing to render")

// Renderer makes QR images with the highest error correction level
type Renderer struct {
	Size int // DefaultSize if 0
}

// PNG renders token as a PNG image
func (r Renderer) PNG(token string) ([]byte, error) {
	if token == "" {
		return nil, ErrEmpty
	}
	size := r.Size
	if size <= 0 {
		size = DefaultSize
	}
	q, err := qrcode.New(token, qrcode.Highest)
	if err != nil {
		return nil, fmt.Errorf("can't encode qr: %w", err)
	}
	png, err := q.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("can't make png: %w", err)
	}
	return png, nil
}

// DataURL renders token as a "data:image/png;base64,..." url, ready for an img tag
func (r Renderer) DataURL(token string) (string, error) {
	png, err := r.PNG(token)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
