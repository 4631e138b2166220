package palette

import (
	"cmp"
	"fmt"
	"image"
	"math"
	"slices"

	xdraw "golang.org/x/image/draw"
)

const (
	alphaThreshold  = 125
	quantShift      = 3 // 8 bits down to 5
	topBuckets      = 48
	nearWhite       = 240
	nearBlack       = 16
	accentThreshold = 0.12
)

type rgb struct{ r, g, b uint8 }

func (c rgb) hex() string { return fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b) }

type bucket struct {
	key   uint16
	count int
}

// rgb dequantizes the bucket to the midpoint of its cell.
func (b bucket) rgb() rgb {
	return rgb{
		r: uint8((b.key>>10)&31)<<quantShift | 4,
		g: uint8((b.key>>5)&31)<<quantShift | 4,
		b: uint8(b.key&31)<<quantShift | 4,
	}
}

// downscale copies img into an NRGBA whose longest side is at most maxSize.
func downscale(img image.Image, maxSize int) *image.NRGBA {
	src := img.Bounds()
	w, h := src.Dx(), src.Dy()
	if w <= 0 || h <= 0 {
		return nil
	}

	dw, dh := w, h
	if longest := max(w, h); longest > maxSize {
		dw = max(1, w*maxSize/longest)
		dh = max(1, h*maxSize/longest)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))
	if dw == w && dh == h {
		xdraw.Draw(dst, dst.Bounds(), img, src.Min, xdraw.Src)
	} else {
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, src, xdraw.Src, nil)
	}
	return dst
}

func histogram(px *image.NRGBA, stride int, skipExtremes bool) map[uint16]int {
	hist := make(map[uint16]int)
	bounds := px.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stride {
		for x := bounds.Min.X; x < bounds.Max.X; x += stride {
			i := px.PixOffset(x, y)
			r, g, b, a := px.Pix[i], px.Pix[i+1], px.Pix[i+2], px.Pix[i+3]
			if a < alphaThreshold {
				continue
			}
			if skipExtremes && (min(r, g, b) >= nearWhite || max(r, g, b) <= nearBlack) {
				continue
			}
			key := uint16(r>>quantShift)<<10 | uint16(g>>quantShift)<<5 | uint16(b>>quantShift)
			hist[key]++
		}
	}
	return hist
}

// ranked returns up to n buckets, most frequent first.
func ranked(hist map[uint16]int, n int) []bucket {
	out := make([]bucket, 0, len(hist))
	for k, c := range hist {
		out = append(out, bucket{key: k, count: c})
	}
	slices.SortFunc(out, func(a, b bucket) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return cmp.Compare(a.key, b.key)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// pickAccent scores every bucket but the dominant one by saturation and hue
// distance, weighted by log frequency.  Candidates too close to dominant are
// skipped.
func pickAccent(top []bucket) rgb {
	dom := top[0].rgb()
	if len(top) == 1 {
		return shade(dom)
	}

	dh, ds, dl := dom.hsl()
	best, bestScore := -1, 0.0
	for i := 1; i < len(top); i++ {
		h, s, l := top[i].rgb().hsl()
		hd := hueDistance(dh, h)
		dist := 0.5*hd*math.Sqrt(ds*s) + 0.3*math.Abs(dl-l) + 0.2*math.Abs(ds-s)
		if dist <= accentThreshold {
			continue
		}
		score := (0.6*s + 0.4*hd) * math.Log(1+float64(top[i].count))
		if best < 0 || score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return top[1].rgb()
	}
	return top[best].rgb()
}

// shade derives a contrasting tone of c for single-color logos.
func shade(c rgb) rgb {
	h, s, l := c.hsl()
	if l > 0.5 {
		l -= 0.3
	} else {
		l += 0.3
	}
	return fromHSL(h, s, l)
}

// hueDistance is the circular distance between two hues in [0,1), scaled
// to [0,1].
func hueDistance(a, b float64) float64 {
	d := math.Abs(a - b)
	return math.Min(d, 1-d) * 2
}

// hsl converts to hue, saturation, and lightness, each in [0,1].
func (c rgb) hsl() (h, s, l float64) {
	r, g, b := float64(c.r)/255, float64(c.g)/255, float64(c.b)/255
	hi, lo := math.Max(r, math.Max(g, b)), math.Min(r, math.Min(g, b))
	l = (hi + lo) / 2
	if hi == lo {
		return 0, 0, l
	}

	d := hi - lo
	if l > 0.5 {
		s = d / (2 - hi - lo)
	} else {
		s = d / (hi + lo)
	}
	switch hi {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	return h / 6, s, l
}

func fromHSL(h, s, l float64) rgb {
	if s == 0 {
		v := uint8(math.Round(l * 255))
		return rgb{v, v, v}
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	conv := func(t float64) uint8 {
		switch {
		case t < 0:
			t++
		case t > 1:
			t--
		}
		var v float64
		switch {
		case t < 1.0/6:
			v = p + (q-p)*6*t
		case t < 0.5:
			v = q
		case t < 2.0/3:
			v = p + (q-p)*(2.0/3-t)*6
		default:
			v = p
		}
		return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
	}
	return rgb{conv(h + 1.0/3), conv(h), conv(h - 1.0/3)}
}
