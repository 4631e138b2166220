package palette

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red   = color.NRGBA{R: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

type band struct {
	c    color.NRGBA
	cols int
}

// stripes builds an image of height h filled column-wise with bands, left
// to right.
func stripes(h int, bands ...band) *image.NRGBA {
	w := 0
	for _, b := range bands {
		w += b.cols
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	x := 0
	for _, b := range bands {
		for i := 0; i < b.cols; i++ {
			for y := 0; y < h; y++ {
				img.SetNRGBA(x, y, b.c)
			}
			x++
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestTransparentPixelYieldsFallback(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	assert.Equal(t, Fallback(), FromImage(img, DefaultOptions()))
}

func TestEmptyImageYieldsFallback(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 0, 0))
	assert.Equal(t, Fallback(), FromImage(img, Options{}))
}

func TestTwoColors(t *testing.T) {
	img := stripes(10, band{red, 14}, band{blue, 6})

	res := FromImage(img, DefaultOptions())
	assert.Equal(t, "#fc0404", res.Dominant)
	assert.Equal(t, "#0404fc", res.Accent)
	assert.Equal(t, []string{"#fc0404", "#0404fc"}, res.Palette)
}

func TestWhiteBackgroundIsSkipped(t *testing.T) {
	img := stripes(10, band{white, 30}, band{red, 8}, band{blue, 4})

	res := FromImage(img, DefaultOptions())
	assert.Equal(t, "#fc0404", res.Dominant)
	assert.Equal(t, "#0404fc", res.Accent)
	assert.NotContains(t, res.Palette, "#fcfcfc")
}

func TestMonochromeLogoKeepsBackground(t *testing.T) {
	img := stripes(10, band{white, 30}, band{red, 10})

	res := FromImage(img, DefaultOptions())
	assert.Equal(t, "#fcfcfc", res.Dominant)
	assert.Equal(t, "#fc0404", res.Accent)
}

func TestSingleColorDerivesAccent(t *testing.T) {
	img := stripes(4, band{red, 4})

	res := FromImage(img, DefaultOptions())
	assert.Equal(t, "#fc0404", res.Dominant)
	assert.NotEqual(t, res.Dominant, res.Accent)
	assert.Len(t, res.Palette, 2)
}

func TestPaletteSizeIsCapped(t *testing.T) {
	var bands []band
	for i := 0; i < 10; i++ {
		bands = append(bands, band{color.NRGBA{R: uint8(40 + i*20), G: uint8(200 - i*15), B: 90, A: 255}, 2 + i})
	}
	res := FromImage(stripes(6, bands...), Options{MaxPaletteSize: 4})
	assert.Len(t, res.Palette, 4)
	assert.Equal(t, res.Dominant, res.Palette[0])
	assert.Equal(t, res.Accent, res.Palette[1])
}

func TestLargeImageIsDownscaled(t *testing.T) {
	img := stripes(600, band{red, 700}, band{blue, 300})

	res := FromImage(img, DefaultOptions())
	assert.Equal(t, "#fc0404", res.Dominant)
	assert.Equal(t, "#0404fc", res.Accent)
}

func TestFromReaderIsDeterministic(t *testing.T) {
	raw := encodePNG(t, stripes(12, band{red, 5}, band{blue, 4}, band{white, 7}))

	first, err := FromReader(bytes.NewReader(raw), DefaultOptions())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := FromReader(bytes.NewReader(raw), DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestFromReaderRejectsGarbage(t *testing.T) {
	_, err := FromReader(bytes.NewReader([]byte("not an image")), DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestFetch(t *testing.T) {
	raw := encodePNG(t, stripes(10, band{red, 14}, band{blue, 6}))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(raw)
	}))
	defer srv.Close()

	res, err := Fetch(context.Background(), srv.Client(), srv.URL+"/logo.png", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "#fc0404", res.Dominant)

	_, err = Fetch(context.Background(), srv.Client(), srv.URL+"/missing.png", DefaultOptions())
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
}

func TestHSLRoundTrip(t *testing.T) {
	for _, c := range []rgb{{252, 4, 4}, {4, 4, 252}, {20, 140, 90}, {128, 128, 128}} {
		h, s, l := c.hsl()
		back := fromHSL(h, s, l)
		assert.InDelta(t, int(c.r), int(back.r), 1)
		assert.InDelta(t, int(c.g), int(back.g), 1)
		assert.InDelta(t, int(c.b), int(back.b), 1)
	}
}
