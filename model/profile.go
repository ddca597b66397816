package model

import (
	"fmt"
	"math"
)

// Profile holds one observed one-dimensional dataset: the ordered domain,
// observed values, optional per-point uncertainties, and a mutable
// calculation-range selector.
//
// The calculation range is a request, not a command: Grid clips it to the
// observed extent, and an unset bound (NaN) falls back to the observed data.
type Profile struct {
	x, y, dy []float64

	xmin, xmax, xstep float64 // NaN = take from observed data
}

// NewProfile creates a Profile from the observed arrays. dy may be nil.
// x must be strictly increasing and the arrays equally long.
func NewProfile(x, y, dy []float64) (*Profile, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, fmt.Errorf("%w: len(x)=%d len(y)=%d", ErrLengthMismatch, len(x), len(y))
	}
	if dy != nil && len(dy) != len(x) {
		return nil, fmt.Errorf("%w: len(dy)=%d len(x)=%d", ErrLengthMismatch, len(dy), len(x))
	}
	for i := 1; i < len(x); i++ {
		if x[i] <= x[i-1] {
			return nil, fmt.Errorf("%w: x[%d]=%g x[%d]=%g", ErrUnsortedDomain, i-1, x[i-1], i, x[i])
		}
	}

	p := &Profile{
		x: append([]float64(nil), x...),
		y: append([]float64(nil), y...),
	}
	if dy != nil {
		p.dy = append([]float64(nil), dy...)
	}
	p.xmin, p.xmax, p.xstep = math.NaN(), math.NaN(), math.NaN()

	return p, nil
}

// SetCalculationRange selects the fitting range [xmin, xmax] sampled at
// xstep. Pass NaN for any argument to fall back to the observed data: NaN
// bounds mean the observed extent, NaN (or non-positive) step means the
// observed sample points themselves.
func (p *Profile) SetCalculationRange(xmin, xmax, xstep float64) {
	p.xmin, p.xmax, p.xstep = xmin, xmax, xstep
}

// Range returns the current calculation-range request (NaN = observed).
func (p *Profile) Range() (xmin, xmax, xstep float64) { return p.xmin, p.xmax, p.xstep }

// Grid computes the calculation domain: the requested range clipped to the
// observed extent, sampled at the requested step or at the observed points.
// Returns ErrEmptyRange when the clipped range holds no points.
func (p *Profile) Grid() ([]float64, error) {
	lo, hi := p.x[0], p.x[len(p.x)-1]
	if !math.IsNaN(p.xmin) && p.xmin > lo {
		lo = p.xmin
	}
	if !math.IsNaN(p.xmax) && p.xmax < hi {
		hi = p.xmax
	}
	if lo > hi {
		return nil, fmt.Errorf("%w: [%g, %g]", ErrEmptyRange, lo, hi)
	}

	// No usable step: observed points inside [lo, hi].
	if math.IsNaN(p.xstep) || p.xstep <= 0 {
		var out []float64
		for _, xv := range p.x {
			if xv >= lo && xv <= hi {
				out = append(out, xv)
			}
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("%w: [%g, %g]", ErrEmptyRange, lo, hi)
		}

		return out, nil
	}

	// Regular grid, inclusive of hi up to half-step rounding.
	n := int(math.Floor((hi-lo)/p.xstep+0.5)) + 1
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		xv := lo + float64(i)*p.xstep
		if xv > hi+p.xstep/2 {
			break
		}
		out = append(out, xv)
	}

	return out, nil
}

// Observed interpolates the observed values (and uncertainties, when present)
// onto grid. Grid points that coincide with observed samples are exact;
// points in between are linear interpolations. dy is nil when the profile
// carries no uncertainty channel.
func (p *Profile) Observed(grid []float64) (y, dy []float64) {
	y = make([]float64, len(grid))
	if p.dy != nil {
		dy = make([]float64, len(grid))
	}

	if len(p.x) == 1 {
		for i := range grid {
			y[i] = p.y[0]
			if dy != nil {
				dy[i] = p.dy[0]
			}
		}

		return y, dy
	}

	j := 0
	for i, xv := range grid {
		for j < len(p.x)-2 && p.x[j+1] <= xv {
			j++
		}
		// linear interpolation on segment [j, j+1], clamped at the ends
		x0, x1 := p.x[j], p.x[j+1]
		t := (xv - x0) / (x1 - x0)
		if t < 0 {
			t = 0
		}
		if t > 1 {
			t = 1
		}
		y[i] = p.y[j] + t*(p.y[j+1]-p.y[j])
		if dy != nil {
			dy[i] = p.dy[j] + t*(p.dy[j+1]-p.dy[j])
		}
	}

	return y, dy
}

// Len returns the number of observed points.
func (p *Profile) Len() int { return len(p.x) }

// X returns the observed domain (shared slice; treat as read-only).
func (p *Profile) X() []float64 { return p.x }

// Y returns the observed values (shared slice; treat as read-only).
func (p *Profile) Y() []float64 { return p.y }

// DY returns the observed uncertainties, or nil (shared; treat as read-only).
func (p *Profile) DY() []float64 { return p.dy }
