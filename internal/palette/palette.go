// internal/palette/palette.go
//
// Logo color extraction.
//
// Context
// -------
// Templates are tinted with two brand colors taken from the tenant's logo.
// Extraction runs once, when an operator uploads the logo (cmd/sitectl), and
// the Result is stored in the asset's metadata under "palette".  The public
// read path only ever reads that stored value.
//
// Workflow
// --------
//  1. Downscale so the longest side is at most Options.MaxSize.
//  2. Build a 5-bit-per-channel histogram over every SampleStride-th pixel,
//     skipping near-transparent pixels and, on a first pass, near-white and
//     near-black ones.  Fewer than two buckets triggers a second pass that
//     keeps the extremes.
//  3. Keep the 48 most frequent buckets.
//  4. Dominant is the most frequent.  Accent is the best-scoring bucket far
//     enough from dominant, else the second most frequent.
//  5. Palette is dominant, accent, then the remaining buckets.
//
// Notes
// -----
// • Output is deterministic: ties in frequency break on the bucket key.
// • No usable pixel at all yields Fallback(), never an error.

package palette

import (
	"errors"
	"fmt"
	"image"
	"io"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ErrDecode wraps image decoding failures.
var ErrDecode = errors.New("palette: cannot decode image")

// Options tune extraction.  Zero fields take the defaults.
type Options struct {
	MaxSize        int
	SampleStride   int
	MaxPaletteSize int
}

// DefaultOptions returns MaxSize 128, SampleStride 2, MaxPaletteSize 6.
func DefaultOptions() Options {
	return Options{MaxSize: 128, SampleStride: 2, MaxPaletteSize: 6}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxSize <= 0 {
		o.MaxSize = d.MaxSize
	}
	if o.SampleStride <= 0 {
		o.SampleStride = d.SampleStride
	}
	if o.MaxPaletteSize < 2 {
		o.MaxPaletteSize = d.MaxPaletteSize
	}
	return o
}

// Result is the extracted brand palette.  Colors are "#rrggbb".
type Result struct {
	Dominant string   `json:"dominant"`
	Accent   string   `json:"accent"`
	Palette  []string `json:"palette"`
}

// Fallback returns the fixed palette used when an image has no usable
// pixels.
func Fallback() Result {
	return Result{
		Dominant: "#1f2937",
		Accent:   "#2563eb",
		Palette:  []string{"#1f2937", "#2563eb", "#f59e0b", "#10b981", "#f3f4f6", "#111827"},
	}
}

// FromImage extracts the palette of img.
func FromImage(img image.Image, opts Options) Result {
	opts = opts.withDefaults()

	px := downscale(img, opts.MaxSize)
	if px == nil {
		return Fallback()
	}

	hist := histogram(px, opts.SampleStride, true)
	if len(hist) < 2 {
		hist = histogram(px, opts.SampleStride, false)
	}
	if len(hist) == 0 {
		return Fallback()
	}

	top := ranked(hist, topBuckets)
	dominant := top[0].rgb()
	accent := pickAccent(top)

	res := Result{Dominant: dominant.hex(), Accent: accent.hex()}
	res.Palette = assemble(res.Dominant, res.Accent, top, opts.MaxPaletteSize)
	return res
}

// FromReader decodes a PNG, JPEG, GIF, or WebP image and extracts its
// palette.
func FromReader(r io.Reader, opts Options) (Result, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return FromImage(img, opts), nil
}

func assemble(dominant, accent string, top []bucket, max int) []string {
	out := []string{dominant}
	seen := map[string]bool{dominant: true}
	if !seen[accent] {
		out = append(out, accent)
		seen[accent] = true
	}
	for _, b := range top {
		if len(out) >= max {
			break
		}
		h := b.rgb().hex()
		if seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}
