package mandelgif

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidParams marks structurally invalid render parameters. It is
// always wrapped with the offending field, so check it with errors.Is.
var ErrInvalidParams = errors.New("invalid render parameters")

// FrameParams describes one frame of an animation: the pixel grid, the
// complex-plane window it is mapped onto, the iteration count and the seed
// value z0. The seed is the per-frame parameter being animated.
type FrameParams struct {
	Width  int
	Height int

	// Complex-plane bounding box. Row 0 maps to Top, the last row to Bottom.
	Left   float64
	Right  float64
	Top    float64
	Bottom float64

	Iterations int
	Z0         complex128
}

func (p FrameParams) validate() error {
	switch {
	case p.Width <= 0 || p.Height <= 0:
		return fmt.Errorf("%w: frame size %dx%d", ErrInvalidParams, p.Width, p.Height)
	case p.Width > 0xffff || p.Height > 0xffff:
		// the container stores dimensions as 16-bit values
		return fmt.Errorf("%w: frame size %dx%d exceeds 65535", ErrInvalidParams, p.Width, p.Height)
	case p.Iterations <= 0:
		return fmt.Errorf("%w: iterations %d", ErrInvalidParams, p.Iterations)
	case !isFinite(p.Left) || !isFinite(p.Right) || !isFinite(p.Top) || !isFinite(p.Bottom):
		return fmt.Errorf("%w: bounding box is not finite", ErrInvalidParams)
	case p.Left == p.Right || p.Top == p.Bottom:
		return fmt.Errorf("%w: degenerate bounding box [%g %g]x[%g %g]",
			ErrInvalidParams, p.Left, p.Right, p.Top, p.Bottom)
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Sweep describes a full animation: the frame geometry shared by every
// frame plus the z0 range being swept. One frame is rendered per step.
type Sweep struct {
	Width  int
	Height int

	Left   float64
	Right  float64
	Top    float64
	Bottom float64

	Iterations int

	StartZ0 float64
	EndZ0   float64
	StepZ0  float64

	// Delay between frames when the animation is played back.
	Delay time.Duration
}

// DefaultSweep returns the sweep rendered when no parameters are supplied:
// the full set swept from z0=-3 to z0=3 in steps of 0.1.
func DefaultSweep() Sweep {
	return Sweep{
		Width:      250,
		Height:     250,
		Left:       -2.68,
		Right:      1.32,
		Top:        -1.5,
		Bottom:     1.5,
		Iterations: 10,
		StartZ0:    -3,
		EndZ0:      3,
		StepZ0:     0.1,
		Delay:      100 * time.Millisecond,
	}
}

// Frames expands the sweep into the ordered per-frame parameter list.
// The end value is included when it lands exactly on a step.
func (s Sweep) Frames() ([]FrameParams, error) {
	base := FrameParams{
		Width:      s.Width,
		Height:     s.Height,
		Left:       s.Left,
		Right:      s.Right,
		Top:        s.Top,
		Bottom:     s.Bottom,
		Iterations: s.Iterations,
	}
	if err := base.validate(); err != nil {
		return nil, err
	}
	if s.StepZ0 == 0 || !isFinite(s.StepZ0) || !isFinite(s.StartZ0) || !isFinite(s.EndZ0) {
		return nil, fmt.Errorf("%w: z0 sweep %g..%g step %g", ErrInvalidParams, s.StartZ0, s.EndZ0, s.StepZ0)
	}
	// One frame per step from start to end. The step count is the nearest
	// integer to (end-start)/step so that float rounding noise in the
	// quotient can neither drop the final frame nor add one past the end.
	const maxFrames = 1 << 20
	steps := math.Floor((s.EndZ0-s.StartZ0)/s.StepZ0 + 0.5)
	if steps > maxFrames {
		return nil, fmt.Errorf("%w: z0 step %g yields %g frames", ErrInvalidParams, s.StepZ0, steps)
	}
	n := int(steps) + 1
	if n <= 0 {
		return nil, fmt.Errorf("%w: z0 step %g never reaches %g from %g",
			ErrInvalidParams, s.StepZ0, s.EndZ0, s.StartZ0)
	}
	frames := make([]FrameParams, n)
	for i := range frames {
		frames[i] = base
		frames[i].Z0 = complex(s.StartZ0+float64(i)*s.StepZ0, 0)
	}
	return frames, nil
}
