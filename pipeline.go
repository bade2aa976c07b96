package mandelgif

import (
	"context"
	"fmt"
	"sync"
)

// DefaultWorkers is the worker count used by the bundled commands.
const DefaultWorkers = 5

// FrameError reports the failure of a single frame render. The pipeline
// delivers it at the frame's position in the output order, after every
// earlier frame has been yielded.
type FrameError struct {
	Frame int
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d: %v", e.Frame, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }

// RenderSequence renders frames on a pool of workers and yields the rasters
// strictly in input order, however the workers happen to finish. The
// sequence is lazy and single-pass; iterating it a second time re-renders.
//
// The pool is scoped to one iteration: on every exit path, including an
// early break by the consumer, outstanding work is cancelled and all
// workers are joined before the iterator returns. The feeder never runs
// more than workers frames ahead of the frame the consumer is waiting on,
// so at most O(workers) undelivered rasters exist at a time.
//
// workers <= 1 renders sequentially on the calling goroutine with
// identical output.
func RenderSequence(ctx context.Context, frames []FrameParams, workers int) Frames {
	return renderSequence(ctx, frames, workers, Render)
}

func renderSequence(ctx context.Context, frames []FrameParams, workers int, render func(FrameParams) (*Raster, error)) Frames {
	if workers <= 1 {
		return func(yield func(*Raster, error) bool) {
			for i, p := range frames {
				if err := ctx.Err(); err != nil {
					yield(nil, err)
					return
				}
				r, err := render(p)
				if err != nil {
					yield(nil, &FrameError{Frame: i, Err: err})
					return
				}
				if !yield(r, nil) {
					return
				}
			}
		}
	}

	return func(yield func(*Raster, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		var wg sync.WaitGroup
		defer func() {
			cancel()
			wg.Wait()
		}()

		type result struct {
			frame  int
			raster *Raster
			err    error
		}
		jobs := make(chan int)
		results := make(chan result, workers)
		// slots bounds how far submission runs ahead of in-order delivery
		slots := make(chan struct{}, workers)

		wg.Add(workers)
		for range workers {
			go func() {
				defer wg.Done()
				for frame := range jobs {
					raster, err := render(frames[frame])
					select {
					case results <- result{frame: frame, raster: raster, err: err}:
					case <-ctx.Done():
						return
					}
				}
			}()
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer close(jobs)
			for i := range frames {
				select {
				case slots <- struct{}{}:
				case <-ctx.Done():
					return
				}
				select {
				case jobs <- i:
				case <-ctx.Done():
					return
				}
			}
		}()

		// Reordering buffer: completed-but-not-due results parked by frame
		// index until the cursor reaches them. Holds at most workers-1
		// entries thanks to the slot bound above.
		pending := make(map[int]result, workers)
		for next := 0; next < len(frames); next++ {
			res, ok := pending[next]
			for !ok {
				select {
				case r := <-results:
					if r.frame == next {
						res, ok = r, true
					} else {
						pending[r.frame] = r
					}
				case <-ctx.Done():
					yield(nil, ctx.Err())
					return
				}
			}
			delete(pending, next)
			if res.err != nil {
				yield(nil, &FrameError{Frame: next, Err: res.err})
				return
			}
			if !yield(res.raster, nil) {
				return
			}
			<-slots
		}
	}
}
