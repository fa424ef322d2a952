package firma

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
)

func pngDataURL(t *testing.T, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	assert.NoError(t, png.Encode(&buf, img))
	return prefijoPNG + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func lienzoBlanco(ancho, alto int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, ancho, alto))
	for y := 0; y < alto; y++ {
		for x := 0; x < ancho; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func TestDecodificar_Success(t *testing.T) {
	img, err := Decodificar(pngDataURL(t, lienzoBlanco(10, 10)))

	assert.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 10, 10), img.Bounds())
}

func TestDecodificar_FormatoInvalido(t *testing.T) {
	casos := []string{
		"",
		"no-es-data-url",
		// wrong MIME, bad base64, base64 that is not a PNG
		"data:image/jpeg;base64,AAAA",
		"data:image/png;base64,???no-es-base64",
		"data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("no png")),
	}
	for _, c := range casos {
		_, err := Decodificar(c)
		assert.ErrorIs(t, err, ErrFormatoInvalido, "payload %q", c)
	}
}

func TestTieneTinta_LienzoBlanco(t *testing.T) {
	assert.False(t, TieneTinta(lienzoBlanco(40, 20)))
	assert.False(t, TieneTinta(nil))
}

func TestTieneTinta_ConTrazo(t *testing.T) {
	img := lienzoBlanco(40, 20)
	// A pen stroke is several pixels wide; paint a 2px line
	for x := 5; x < 30; x++ {
		img.Set(x, 10, color.Black)
		img.Set(x, 11, color.Black)
	}
	assert.True(t, TieneTinta(img))
}

func TestTieneTinta_TrazoTenue(t *testing.T) {
	img := lienzoBlanco(40, 20)
	// Light gray still counts as ink
	img.Set(10, 10, color.RGBA{R: 230, G: 230, B: 230, A: 255})
	img.Set(10, 11, img.At(10, 10))
	img.Set(11, 10, img.At(10, 10))
	img.Set(11, 11, img.At(10, 10))
	assert.True(t, TieneTinta(img))
}

func TestDecodificarPNG_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, png.Encode(&buf, lienzoBlanco(4, 4)))

	raw, err := DecodificarPNG(prefijoPNG + base64.StdEncoding.EncodeToString(buf.Bytes()))

	assert.NoError(t, err)
	assert.Equal(t, buf.Bytes(), raw)
}
