package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if x < 12 {
				img.Set(x, y, c)
			} else {
				img.Set(x, y, color.NRGBA{R: 0x20, G: 0x60, B: 0xe0, A: 0xff})
			}
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPrepareLogoPNG(t *testing.T) {
	up, err := prepareLogo(bytes.NewReader(pngBytes(t, color.NRGBA{R: 0xc0, G: 0x30, B: 0x30, A: 0xff})))
	require.NoError(t, err)
	assert.Equal(t, "image/png", up.MIME)
	assert.Equal(t, ".png", up.Ext)
	require.NotNil(t, up.Palette)
	assert.True(t, strings.HasPrefix(up.Palette.Dominant, "#"))

	meta, err := up.metadata()
	require.NoError(t, err)
	var doc struct {
		Palette struct{ Dominant string } `json:"palette"`
	}
	require.NoError(t, json.Unmarshal(meta, &doc))
	assert.Equal(t, up.Palette.Dominant, doc.Palette.Dominant)
}

func TestPrepareLogoSVGHasNoPalette(t *testing.T) {
	svg := `<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><rect width="10" height="10"/></svg>`
	up, err := prepareLogo(strings.NewReader(svg))
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", up.MIME)
	assert.Nil(t, up.Palette)

	meta, err := up.metadata()
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(meta))
}

func TestPrepareLogoRejects(t *testing.T) {
	_, err := prepareLogo(strings.NewReader("just some text"))
	assert.ErrorIs(t, err, errNotImage)

	big := bytes.Repeat([]byte{0}, maxLogoBytes+1)
	_, err = prepareLogo(bytes.NewReader(big))
	assert.Error(t, err)
}

func TestAppCommands(t *testing.T) {
	app := newApp()
	var names []string
	for _, c := range app.Commands {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"site", "page", "domain", "logo", "resolve"}, names)
}

func TestLogoPaletteCommandReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logo.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t, color.NRGBA{R: 0x10, G: 0x90, B: 0x40, A: 0xff}), 0o644))

	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	require.NoError(t, app.Run([]string{"sitectl", "logo", "palette", path}))

	var res struct {
		Dominant string   `json:"dominant"`
		Accent   string   `json:"accent"`
		Palette  []string `json:"palette"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.NotEmpty(t, res.Dominant)
	assert.NotEmpty(t, res.Palette)
}
