package solve

import "math"

// feasibilityMargin keeps starting points strictly inside their box, where
// the bound transforms have nonzero gradient.
const feasibilityMargin = 1e-3

// boundKind classifies one coordinate's box.
type boundKind int

const (
	unbounded boundKind = iota
	lowerOnly
	upperOnly
	twoSided
)

// transform maps one unconstrained internal coordinate onto its box.
// Two-sided boxes use a sine map, one-sided boxes a hyperbolic shift.
type transform struct {
	kind   boundKind
	lo, hi float64
}

// newTransform builds the coordinate map for the box [lo, hi].
func newTransform(lo, hi float64) transform {
	loFin, hiFin := !math.IsInf(lo, -1), !math.IsInf(hi, 1)
	switch {
	case loFin && hiFin:
		return transform{kind: twoSided, lo: lo, hi: hi}
	case loFin:
		return transform{kind: lowerOnly, lo: lo}
	case hiFin:
		return transform{kind: upperOnly, hi: hi}
	default:
		return transform{kind: unbounded}
	}
}

// external maps an internal coordinate into the box.
func (tr transform) external(t float64) float64 {
	switch tr.kind {
	case twoSided:
		return tr.lo + (tr.hi-tr.lo)/2*(math.Sin(t)+1)
	case lowerOnly:
		return tr.lo + math.Sqrt(t*t+1) - 1
	case upperOnly:
		return tr.hi - math.Sqrt(t*t+1) + 1
	default:
		return t
	}
}

// internal maps a strictly feasible external coordinate to internal space.
// The input is first nudged off the box faces, where the maps are flat.
func (tr transform) internal(x float64) float64 {
	switch tr.kind {
	case twoSided:
		span := tr.hi - tr.lo
		x = math.Min(math.Max(x, tr.lo+feasibilityMargin*span), tr.hi-feasibilityMargin*span)

		return math.Asin(2*(x-tr.lo)/span - 1)
	case lowerOnly:
		x = math.Max(x, tr.lo+feasibilityMargin*math.Max(1, math.Abs(tr.lo)))
		d := x - tr.lo + 1

		return math.Sqrt(d*d - 1)
	case upperOnly:
		x = math.Min(x, tr.hi-feasibilityMargin*math.Max(1, math.Abs(tr.hi)))
		d := tr.hi - x + 1

		return -math.Sqrt(d*d - 1)
	default:
		return x
	}
}

// transforms builds the per-coordinate maps for the given bound vectors.
func transforms(lower, upper []float64) []transform {
	out := make([]transform, len(lower))
	for i := range lower {
		out[i] = newTransform(lower[i], upper[i])
	}

	return out
}

// externalize maps a full internal vector into the external box.
func externalize(trs []transform, t []float64) []float64 {
	out := make([]float64, len(t))
	for i, tr := range trs {
		out[i] = tr.external(t[i])
	}

	return out
}

// internalize maps a full external vector to internal space.
func internalize(trs []transform, x []float64) []float64 {
	out := make([]float64, len(x))
	for i, tr := range trs {
		out[i] = tr.internal(x[i])
	}

	return out
}
