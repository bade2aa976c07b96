package mandelgif

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderGolden4x4(t *testing.T) {
	p := FrameParams{
		Width: 4, Height: 4,
		Left: -1, Right: 1, Top: -1, Bottom: 1,
		Iterations: 1,
		Z0:         0,
	}
	r, err := Render(p)
	require.NoError(t, err)
	require.Equal(t, 4, r.Width)
	require.Equal(t, 4, r.Height)

	// With one iteration from z0=0 every point ends at z=c, and each |c| on
	// this grid keeps the smooth value above the iteration count, so the
	// whole grid clamps to the top index.
	want := []uint8{
		255, 255, 255, 255,
		255, 255, 255, 255,
		255, 255, 255, 255,
		255, 255, 255, 255,
	}
	assert.Equal(t, want, r.Pix)

	again, err := Render(p)
	require.NoError(t, err)
	assert.Equal(t, r.Pix, again.Pix, "re-render must reproduce the grid exactly")
}

func TestRenderClampsDivergence(t *testing.T) {
	// The seed is large enough that z overflows to infinity immediately;
	// every pixel must clamp to 0 instead of leaking NaN/Inf.
	r, err := Render(FrameParams{
		Width: 3, Height: 3,
		Left: -1, Right: 1, Top: -1, Bottom: 1,
		Iterations: 3,
		Z0:         complex(1e160, 0),
	})
	require.NoError(t, err)
	for i, v := range r.Pix {
		assert.Equal(t, uint8(0), v, "pixel %d", i)
	}
}

func TestRenderSinglePixelColumn(t *testing.T) {
	r, err := Render(FrameParams{
		Width: 1, Height: 4,
		Left: -2, Right: 1, Top: -1, Bottom: 1,
		Iterations: 5,
	})
	require.NoError(t, err)
	assert.Len(t, r.Pix, 4)
}

func TestRenderDeterministicAcrossRandomParams(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		left := rng.Float64()*8 - 4
		top := rng.Float64()*8 - 4
		p := FrameParams{
			Width:      1 + rng.Intn(12),
			Height:     1 + rng.Intn(12),
			Left:       left,
			Right:      left + rng.Float64()*4 + 1e-3,
			Top:        top,
			Bottom:     top + rng.Float64()*4 + 1e-3,
			Iterations: 1 + rng.Intn(20),
			Z0:         complex(rng.Float64()*6-3, rng.Float64()*2-1),
		}
		r, err := Render(p)
		require.NoError(t, err)
		require.Len(t, r.Pix, p.Width*p.Height)

		again, err := Render(p)
		require.NoError(t, err)
		assert.Equal(t, r.Pix, again.Pix)
	}
}

func TestSmoothIndexEdgeCases(t *testing.T) {
	// z stuck at zero: log2(log10(1)) is -Inf, clamps to the top index
	assert.Equal(t, uint8(255), smoothIndex(0, 10))
	// overflowed iterate clamps to the bottom
	assert.Equal(t, uint8(0), smoothIndex(complex(math.Inf(1), 0), 10))
	// NaN maps to the fixed sentinel
	assert.Equal(t, uint8(0), smoothIndex(complex(math.NaN(), math.NaN()), 10))
}

func TestRenderInvalidParams(t *testing.T) {
	valid := FrameParams{
		Width: 8, Height: 8,
		Left: -2, Right: 1, Top: -1, Bottom: 1,
		Iterations: 10,
	}
	for name, mutate := range map[string]func(*FrameParams){
		"zero width":       func(p *FrameParams) { p.Width = 0 },
		"negative height":  func(p *FrameParams) { p.Height = -1 },
		"huge width":       func(p *FrameParams) { p.Width = 70000 },
		"zero iterations":  func(p *FrameParams) { p.Iterations = 0 },
		"flat horizontal":  func(p *FrameParams) { p.Right = p.Left },
		"flat vertical":    func(p *FrameParams) { p.Bottom = p.Top },
		"nan bounding box": func(p *FrameParams) { p.Left = math.NaN() },
	} {
		t.Run(name, func(t *testing.T) {
			p := valid
			mutate(&p)
			_, err := Render(p)
			require.ErrorIs(t, err, ErrInvalidParams)
		})
	}
}
