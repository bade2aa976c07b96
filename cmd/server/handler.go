package main

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	mandelgif "github.com/fractalview/mandelgif"
)

// renderHandler responds to GET requests with an animated mandelbrot GIF,
// streamed while the frames are still being rendered.
func renderHandler(cfg *config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sweep, colorize, err := sweepFromQuery(cfg, r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		frames, err := sweep.Frames()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		job := uuid.NewString()[:8]
		log.Printf("[%s] rendering %d frames at %dx%d for %s",
			job, len(frames), sweep.Width, sweep.Height, r.RemoteAddr)
		start := time.Now()

		w.Header().Set("Content-Type", "image/gif")
		enc := mandelgif.Encoder{Delay: sweep.Delay, Colorize: colorize}
		seq := mandelgif.RenderSequence(r.Context(), frames, cfg.Workers)
		if err := enc.Encode(w, seq); err != nil {
			log.Printf("[%s] encode: %v", job, err)
			// The format has no way to signal failure mid-stream. Cut the
			// connection so the client never mistakes a truncated body for
			// a complete animation.
			panic(http.ErrAbortHandler)
		}
		log.Printf("[%s] done in %s", job, time.Since(start))
	}
}

// sweepFromQuery overlays the request's query parameters on the configured
// defaults. Unknown or malformed values reject the whole request.
func sweepFromQuery(cfg *config, q url.Values) (mandelgif.Sweep, mandelgif.ColorFunc, error) {
	sweep := cfg.sweep()
	var err error

	intParam(q, "width", &sweep.Width, &err)
	intParam(q, "height", &sweep.Height, &err)
	intParam(q, "iterations", &sweep.Iterations, &err)
	floatParam(q, "left", &sweep.Left, &err)
	floatParam(q, "right", &sweep.Right, &err)
	floatParam(q, "top", &sweep.Top, &err)
	floatParam(q, "bottom", &sweep.Bottom, &err)
	floatParam(q, "start_z0", &sweep.StartZ0, &err)
	floatParam(q, "end_z0", &sweep.EndZ0, &err)
	floatParam(q, "step_z0", &sweep.StepZ0, &err)
	if err != nil {
		return mandelgif.Sweep{}, nil, err
	}

	if s := q.Get("delay"); s != "" {
		secs, perr := strconv.ParseFloat(s, 64)
		if perr != nil || secs < 0 {
			return mandelgif.Sweep{}, nil, fmt.Errorf("delay: %q is not a delay in seconds", s)
		}
		sweep.Delay = time.Duration(secs * float64(time.Second))
	}

	name := q.Get("palette")
	if name == "" {
		name = cfg.Render.Palette
	}
	colorize, err := colorFunc(name)
	if err != nil {
		return mandelgif.Sweep{}, nil, err
	}
	return sweep, colorize, nil
}

func colorFunc(name string) (mandelgif.ColorFunc, error) {
	switch name {
	case "", "gray":
		return mandelgif.Grayscale, nil
	case "wheel":
		return mandelgif.ColorWheel, nil
	}
	return nil, fmt.Errorf("palette: unknown scheme %q", name)
}

func intParam(q url.Values, name string, dst *int, err *error) {
	if *err != nil {
		return
	}
	s := q.Get(name)
	if s == "" {
		return
	}
	v, perr := strconv.Atoi(s)
	if perr != nil {
		*err = fmt.Errorf("%s: %q is not an integer", name, s)
		return
	}
	*dst = v
}

func floatParam(q url.Values, name string, dst *float64, err *error) {
	if *err != nil {
		return
	}
	s := q.Get(name)
	if s == "" {
		return
	}
	v, perr := strconv.ParseFloat(s, 64)
	if perr != nil {
		*err = fmt.Errorf("%s: %q is not a number", name, s)
		return
	}
	*dst = v
}
