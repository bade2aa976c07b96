package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/pflag"

	mandelgif "github.com/fractalview/mandelgif"
)

// Command mandelgif renders a mandelbrot z0 sweep into an animated GIF
// file, or to stdout with -o -.
func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	sweep := mandelgif.DefaultSweep()
	var (
		out     = pflag.StringP("out", "o", "mandelbrot.gif", `output file ("-" for stdout)`)
		workers = pflag.Int("workers", mandelgif.DefaultWorkers, "parallel render workers (0 renders sequentially)")
		palette = pflag.String("palette", "gray", "palette scheme: gray or wheel")
		delay   = pflag.Duration("delay", sweep.Delay, "frame delay")
	)
	pflag.IntVar(&sweep.Width, "width", sweep.Width, "frame width in pixels")
	pflag.IntVar(&sweep.Height, "height", sweep.Height, "frame height in pixels")
	pflag.Float64Var(&sweep.Left, "left", sweep.Left, "left edge of the complex-plane window")
	pflag.Float64Var(&sweep.Right, "right", sweep.Right, "right edge of the complex-plane window")
	pflag.Float64Var(&sweep.Top, "top", sweep.Top, "top edge of the complex-plane window")
	pflag.Float64Var(&sweep.Bottom, "bottom", sweep.Bottom, "bottom edge of the complex-plane window")
	pflag.IntVar(&sweep.Iterations, "iterations", sweep.Iterations, "iterations per pixel")
	pflag.Float64Var(&sweep.StartZ0, "start-z0", sweep.StartZ0, "first seed value")
	pflag.Float64Var(&sweep.EndZ0, "end-z0", sweep.EndZ0, "last seed value")
	pflag.Float64Var(&sweep.StepZ0, "step-z0", sweep.StepZ0, "seed increment per frame")
	pflag.Parse()
	sweep.Delay = *delay

	colorize := mandelgif.Grayscale
	switch *palette {
	case "gray":
	case "wheel":
		colorize = mandelgif.ColorWheel
	default:
		return fmt.Errorf("unknown palette %q", *palette)
	}

	frames, err := sweep.Frames()
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	var f *os.File
	if *out != "-" {
		f, err = os.Create(*out)
		if err != nil {
			return err
		}
		w = f
	}

	log.Printf("rendering %d frames at %dx%d", len(frames), sweep.Width, sweep.Height)
	start := time.Now()

	enc := mandelgif.Encoder{Delay: sweep.Delay, Colorize: colorize}
	seq := mandelgif.RenderSequence(context.Background(), frames, *workers)
	if err := enc.Encode(w, seq); err != nil {
		if f != nil {
			f.Close()
			os.Remove(f.Name())
		}
		return err
	}
	if f != nil {
		if err := f.Close(); err != nil {
			return err
		}
	}

	log.Printf("wrote %s in %s", *out, time.Since(start))
	return nil
}
