// Package mandelgif renders parameterized mandelbrot animations and streams
// them into an animated GIF. Frames are computed by a bounded worker pool,
// delivered in order, and consumed one at a time by the container encoder,
// so the whole animation is never held in memory.
package mandelgif

import (
	"bufio"
	"compress/lzw"
	"errors"
	"fmt"
	"io"
	"iter"
	"math"
	"time"
)

// Frames is a lazy, in-order frame sequence. A nil raster with a non-nil
// error terminates the sequence; the error of a failed frame arrives at
// that frame's position.
type Frames = iter.Seq2[*Raster, error]

// ErrEmptyAnimation is returned when the frame sequence yields nothing.
// Nothing has been written to the sink in that case.
var ErrEmptyAnimation = errors.New("animation has no frames")

// Encoder writes a frame sequence as an animated GIF89a stream: signature,
// logical screen descriptor and global color table derived from the first
// frame, a NETSCAPE2.0 loop-forever block, then one graphic control
// extension and image-data block per frame, then the trailer.
//
// The stream is written strictly forward; nothing is ever patched after the
// fact, which is why the screen size and palette come from the first frame
// alone. On any failure the output must be discarded: a partial stream is
// not a valid animation.
type Encoder struct {
	// Delay between frames, stored in the stream in centiseconds.
	Delay time.Duration

	// Colorize maps raster intensities to palette entries.
	// Nil means Grayscale.
	Colorize ColorFunc
}

// EncodeGIF streams frames into w as an animated GIF with the default
// grayscale palette.
func EncodeGIF(w io.Writer, frames Frames, delay time.Duration) error {
	e := Encoder{Delay: delay}
	return e.Encode(w, frames)
}

// Encode pulls frames lazily and writes the animation to w. It holds at
// most one raster beyond whatever the producing pipeline buffers.
func (e *Encoder) Encode(w io.Writer, frames Frames) error {
	next, stop := iter.Pull2(frames)
	defer stop()

	first, err, ok := next()
	if !ok {
		return ErrEmptyAnimation
	}
	if err != nil {
		return fmt.Errorf("rendering frames: %w", err)
	}

	width, height := first.Width, first.Height
	if width <= 0 || height <= 0 || width > 0xffff || height > 0xffff {
		// the screen descriptor stores dimensions as 16-bit values
		return fmt.Errorf("frame size %dx%d does not fit the container", width, height)
	}

	colorize := e.Colorize
	if colorize == nil {
		colorize = Grayscale
	}
	pal := newPalette(first, colorize)
	delay := delayCentiseconds(e.Delay)

	g := &gifWriter{w: bufio.NewWriter(w)}
	g.writeHeader(width, height, pal)

	raster := first
	first = nil
	for frame := 0; g.err == nil; frame++ {
		if frame > 0 {
			raster = nil // release the previous frame before pulling
			r, rerr, ok := next()
			if !ok {
				break
			}
			if rerr != nil {
				return fmt.Errorf("rendering frames: %w", rerr)
			}
			raster = r
		}
		if raster.Width != width || raster.Height != height {
			return fmt.Errorf("frame %d is %dx%d, animation is %dx%d",
				frame, raster.Width, raster.Height, width, height)
		}
		g.writeFrame(raster, pal, delay)
	}

	g.writeByte(0x3b) // trailer
	if g.err == nil {
		g.err = g.w.Flush()
	}
	if g.err != nil {
		return fmt.Errorf("writing animation: %w", g.err)
	}
	return nil
}

// gifWriter serializes the container blocks. The first write error sticks
// and turns every later call into a no-op, so encoding aborts mid-stream
// without masking the original failure.
type gifWriter struct {
	w   *bufio.Writer
	err error
}

func (g *gifWriter) write(p []byte) {
	if g.err != nil {
		return
	}
	_, g.err = g.w.Write(p)
}

func (g *gifWriter) writeByte(b byte) {
	if g.err != nil {
		return
	}
	g.err = g.w.WriteByte(b)
}

func (g *gifWriter) writeString(s string) {
	if g.err != nil {
		return
	}
	_, g.err = g.w.WriteString(s)
}

func (g *gifWriter) writeUint16(v uint16) {
	g.write([]byte{byte(v), byte(v >> 8)})
}

func (g *gifWriter) writeHeader(width, height int, pal *palette) {
	g.writeString("GIF89a")

	// logical screen descriptor, global color table present
	g.writeUint16(uint16(width))
	g.writeUint16(uint16(height))
	g.writeByte(0x80 | byte(pal.depth-1))
	g.writeByte(0x00) // background color index
	g.writeByte(0x00) // pixel aspect ratio

	for _, c := range pal.rgb {
		g.write([]byte{c.R, c.G, c.B})
	}

	// NETSCAPE2.0 application extension: loop forever
	g.write([]byte{0x21, 0xff, 0x0b})
	g.writeString("NETSCAPE2.0")
	g.write([]byte{0x03, 0x01})
	g.writeUint16(0xffff)
	g.writeByte(0x00)
}

func (g *gifWriter) writeFrame(r *Raster, pal *palette, delay uint16) {
	// graphic control extension: no disposal, no transparency
	g.write([]byte{0x21, 0xf9, 0x04, 0x00})
	g.writeUint16(delay)
	g.write([]byte{0x00, 0x00})

	// image descriptor at origin, global palette, not interlaced
	g.writeByte(0x2c)
	g.writeUint16(0)
	g.writeUint16(0)
	g.writeUint16(uint16(r.Width))
	g.writeUint16(uint16(r.Height))
	g.writeByte(0x00)

	litWidth := pal.depth
	if litWidth < 2 {
		litWidth = 2
	}
	g.writeByte(byte(litWidth))
	if g.err != nil {
		return
	}

	bw := &blockWriter{g: g}
	lw := lzw.NewWriter(bw, lzw.LSB, litWidth)
	row := make([]byte, r.Width)
	for y := 0; y < r.Height && g.err == nil; y++ {
		line := r.Pix[y*r.Width : (y+1)*r.Width]
		for x, v := range line {
			row[x] = pal.lookup[v]
		}
		if _, err := lw.Write(row); err != nil && g.err == nil {
			g.err = err
		}
	}
	if err := lw.Close(); err != nil && g.err == nil {
		g.err = err
	}
	bw.flush()
	g.writeByte(0x00) // block terminator
}

// blockWriter chops the LZW stream into GIF data sub-blocks of at most
// 255 bytes, each preceded by its length.
type blockWriter struct {
	g   *gifWriter
	buf [255]byte
	n   int
}

func (b *blockWriter) Write(p []byte) (int, error) {
	if b.g.err != nil {
		return 0, b.g.err
	}
	total := len(p)
	for len(p) > 0 {
		m := copy(b.buf[b.n:], p)
		b.n += m
		p = p[m:]
		if b.n == len(b.buf) {
			b.flush()
			if b.g.err != nil {
				return total - len(p), b.g.err
			}
		}
	}
	return total, nil
}

func (b *blockWriter) flush() {
	if b.n == 0 {
		return
	}
	b.g.writeByte(byte(b.n))
	b.g.write(b.buf[:b.n])
	b.n = 0
}

func delayCentiseconds(d time.Duration) uint16 {
	cs := math.Round(d.Seconds() * 100)
	switch {
	case cs < 0:
		return 0
	case cs > math.MaxUint16:
		return math.MaxUint16
	}
	return uint16(cs)
}
