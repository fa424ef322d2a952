// Package firma handles the handwritten signature captured by the client.
// The drawing surface itself is a client concern; the server receives the
// finished bitmap as a data URL and only needs to decode it and decide
// whether it actually contains ink.
package firma

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"strings"
)

const prefijoPNG = "data:image/png;base64,"

var ErrFormatoInvalido = errors.New("firma con formato invalido")

// DecodificarPNG extracts the PNG bytes from a data:image/png;base64 payload.
func DecodificarPNG(dataURL string) ([]byte, error) {
	if !strings.HasPrefix(dataURL, prefijoPNG) {
		return nil, ErrFormatoInvalido
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, prefijoPNG))
	if err != nil {
		return nil, ErrFormatoInvalido
	}
	return raw, nil
}

// Decodificar parses the data URL into an image.
func Decodificar(dataURL string) (image.Image, error) {
	raw, err := DecodificarPNG(dataURL)
	if err != nil {
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, ErrFormatoInvalido
	}
	return img, nil
}

// TieneTinta reports whether the bitmap contains any non-white pixel.
// The canvas background is pure white, so a single stroked pixel counts.
// Every other pixel is sampled; the pen stroke is several pixels wide so
// sampling cannot miss a real signature.
func TieneTinta(img image.Image) bool {
	if img == nil {
		return false
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x += 2 {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r != 0xffff || g != 0xffff || bl != 0xffff {
				return true
			}
		}
	}
	return false
}
