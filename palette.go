package mandelgif

import "image/color"

// ColorFunc maps a raster intensity to an RGB palette entry.
type ColorFunc func(v uint8) color.RGBA

// Grayscale is the default color scheme: intensity v becomes gray (v,v,v).
func Grayscale(v uint8) color.RGBA {
	return color.RGBA{v, v, v, 0xff}
}

// ColorWheel walks the hue circle in six linear ramps, keeping intensity 0
// black so the set interior stays dark.
func ColorWheel(v uint8) color.RGBA {
	if v == 0 {
		return color.RGBA{0, 0, 0, 0xff}
	}
	pos := int(v) * 6
	t := uint8(pos % 256)
	switch pos / 256 {
	case 0:
		return color.RGBA{0xff, t, 0, 0xff}
	case 1:
		return color.RGBA{0xff - t, 0xff, 0, 0xff}
	case 2:
		return color.RGBA{0, 0xff, t, 0xff}
	case 3:
		return color.RGBA{0, 0xff - t, 0xff, 0xff}
	case 4:
		return color.RGBA{t, 0, 0xff, 0xff}
	default:
		return color.RGBA{0xff, 0, 0xff - t, 0xff}
	}
}

// palette is the global color table shared by every frame of an animation.
// It is derived once, from the first raster: the intensities actually used
// become table entries, padded up to the next power of two. Intensities
// that only show up in later frames quantize to the nearest used intensity
// through the precomputed lookup, which keeps every emitted index inside
// the table.
type palette struct {
	rgb    []color.RGBA
	depth  int // bits per index, log2(len(rgb))
	lookup [256]uint8
}

func newPalette(first *Raster, colorize ColorFunc) *palette {
	var seen [256]bool
	for _, v := range first.Pix {
		seen[v] = true
	}
	vals := make([]int, 0, 256)
	for v := 0; v < 256; v++ {
		if seen[v] {
			vals = append(vals, v)
		}
	}

	size, depth := 2, 1
	for size < len(vals) {
		size <<= 1
		depth++
	}

	p := &palette{rgb: make([]color.RGBA, size), depth: depth}
	for i, v := range vals {
		p.rgb[i] = colorize(uint8(v))
	}
	for v := 0; v < 256; v++ {
		best := 0
		for i, u := range vals {
			if abs(v-u) < abs(v-vals[best]) {
				best = i
			}
		}
		p.lookup[v] = uint8(best)
	}
	return p
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
