package mandelgif

import (
	"math"
	"math/cmplx"
)

// Raster is one rendered frame: a Width x Height grid of palette-index
// bytes in row-major order. A raster is produced once by Render and then
// owned by whoever holds it; nothing mutates it after the handoff.
type Raster struct {
	Width  int
	Height int
	Pix    []uint8
}

// Render computes the escape-time field for one frame and quantizes it
// into palette indices. Pixel (i,j) maps linearly onto the bounding box,
// every point starts from the seed z0 and is iterated z = z*z + c exactly
// Iterations times; there is deliberately no early escape check, the
// smooth-coloring formula below depends on the fixed iteration count.
//
// Render has no shared state and is safe to call from many goroutines.
func Render(p FrameParams) (*Raster, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	var dx, dy float64
	if p.Width > 1 {
		dx = (p.Right - p.Left) / float64(p.Width-1)
	}
	if p.Height > 1 {
		dy = (p.Bottom - p.Top) / float64(p.Height-1)
	}

	pix := make([]uint8, p.Width*p.Height)
	k := 0
	for i := 0; i < p.Height; i++ {
		y := p.Top + float64(i)*dy
		for j := 0; j < p.Width; j++ {
			c := complex(p.Left+float64(j)*dx, y)
			z := p.Z0
			for n := 0; n < p.Iterations; n++ {
				z = z*z + c
			}
			pix[k] = smoothIndex(z, p.Iterations)
			k++
		}
	}
	return &Raster{Width: p.Width, Height: p.Height, Pix: pix}, nil
}

// smoothIndex maps the final iterate to an 8-bit palette index using the
// smooth-coloring formula 255*floor(n - log2(log10(1+|z|)))/n. The formula
// is not total: |z| can overflow to +Inf for strongly divergent points and
// log2(log10(1)) is -Inf when z lands on zero, so the result is clamped
// into [0,255] and NaN maps to 0.
func smoothIndex(z complex128, iterations int) uint8 {
	v := math.Floor(float64(iterations) - math.Log2(math.Log10(1+cmplx.Abs(z))))
	scaled := math.Floor(255 * v / float64(iterations))
	switch {
	case math.IsNaN(scaled):
		return 0
	case scaled < 0:
		return 0
	case scaled > 255:
		return 255
	}
	return uint8(scaled)
}
