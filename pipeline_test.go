package mandelgif

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSweep(frames int) []FrameParams {
	s := Sweep{
		Width: 8, Height: 8,
		Left: -2, Right: 1, Top: -1.2, Bottom: 1.2,
		Iterations: 4,
		StartZ0:    0,
		EndZ0:      float64(frames-1) * 0.1,
		StepZ0:     0.1,
	}
	fps, err := s.Frames()
	if err != nil {
		panic(err)
	}
	return fps
}

func TestRenderSequencePreservesOrder(t *testing.T) {
	frames := testSweep(10)
	want, err := collect(RenderSequence(context.Background(), frames, 0))
	require.NoError(t, err)
	require.Len(t, want, 10)

	for _, workers := range []int{1, 2, 5, 16} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			got, err := collect(RenderSequence(context.Background(), frames, workers))
			require.NoError(t, err)
			require.Len(t, got, len(want))
			for i := range want {
				assert.Equal(t, want[i].Pix, got[i].Pix, "frame %d", i)
			}
		})
	}
}

func TestRenderSequenceReverseCompletion(t *testing.T) {
	const n = 8
	frames := make([]FrameParams, n)
	for i := range frames {
		frames[i].Z0 = complex(float64(i), 0)
	}

	started := make(chan int, n)
	release := make([]chan struct{}, n)
	for i := range release {
		release[i] = make(chan struct{})
	}
	render := func(p FrameParams) (*Raster, error) {
		i := int(real(p.Z0))
		started <- i
		<-release[i]
		return &Raster{Width: 1, Height: 1, Pix: []uint8{uint8(i)}}, nil
	}

	// Hold every frame until all are in flight, then let them finish in
	// reverse order; the consumer must still observe 0,1,2,...
	go func() {
		for i := 0; i < n; i++ {
			<-started
		}
		for i := n - 1; i >= 0; i-- {
			close(release[i])
		}
	}()

	var got []uint8
	for r, err := range renderSequence(context.Background(), frames, n, render) {
		require.NoError(t, err)
		got = append(got, r.Pix[0])
	}
	assert.Equal(t, []uint8{0, 1, 2, 3, 4, 5, 6, 7}, got)
}

func TestRenderSequenceFailureAtFramePosition(t *testing.T) {
	const n = 6
	frames := make([]FrameParams, n)
	for i := range frames {
		frames[i].Z0 = complex(float64(i), 0)
	}
	boom := errors.New("boom")
	render := func(p FrameParams) (*Raster, error) {
		i := int(real(p.Z0))
		if i == 3 {
			return nil, boom
		}
		return &Raster{Width: 1, Height: 1, Pix: []uint8{uint8(i)}}, nil
	}

	for _, workers := range []int{0, 2, n} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			var got []uint8
			var gotErr error
			for r, err := range renderSequence(context.Background(), frames, workers, render) {
				if err != nil {
					gotErr = err
					break
				}
				got = append(got, r.Pix[0])
			}
			assert.Equal(t, []uint8{0, 1, 2}, got, "frames before the failure arrive in order")

			var fe *FrameError
			require.ErrorAs(t, gotErr, &fe)
			assert.Equal(t, 3, fe.Frame)
			assert.ErrorIs(t, gotErr, boom)
		})
	}
}

func TestRenderSequenceBoundedLookahead(t *testing.T) {
	const n, workers = 100, 2
	frames := make([]FrameParams, n)
	var renders atomic.Int32
	render := func(FrameParams) (*Raster, error) {
		renders.Add(1)
		return &Raster{Width: 1, Height: 1, Pix: []uint8{0}}, nil
	}

	delivered := 0
	for _, err := range renderSequence(context.Background(), frames, workers, render) {
		require.NoError(t, err)
		delivered++
		if delivered == 2 {
			break
		}
	}

	// Teardown happens before the range loop exits, so the counter is
	// stable here. Submission never runs more than workers frames past the
	// in-order delivery point.
	assert.LessOrEqual(t, renders.Load(), int32(delivered+workers))
	assert.GreaterOrEqual(t, renders.Load(), int32(delivered))
}

func TestRenderSequenceContextCancelled(t *testing.T) {
	frames := make([]FrameParams, 50)
	render := func(FrameParams) (*Raster, error) {
		return &Raster{Width: 1, Height: 1, Pix: []uint8{0}}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	delivered := 0
	var gotErr error
	for _, err := range renderSequence(ctx, frames, 3, render) {
		if err != nil {
			gotErr = err
			break
		}
		delivered++
		cancel()
	}
	require.ErrorIs(t, gotErr, context.Canceled)
	assert.Less(t, delivered, 50)
}

func TestRenderSequenceEmptyInput(t *testing.T) {
	for _, workers := range []int{0, 4} {
		got, err := collect(RenderSequence(context.Background(), nil, workers))
		require.NoError(t, err)
		assert.Empty(t, got)
	}
}

func collect(seq Frames) ([]*Raster, error) {
	var out []*Raster
	for r, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, r)
	}
	return out, nil
}
