package model

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/strufit/strufit/param"
	"github.com/strufit/strufit/structure"
)

// eightPiSq converts an isotropic displacement factor B into a mean-square
// displacement: <u²> = B / (8π²).
const eightPiSq = 8 * math.Pi * math.Pi

// minSigma floors the effective peak width so over-sharpened peaks stay
// finite.
const minSigma = 1e-3

// GenConfig configures a CrystalGenerator.
type GenConfig struct {
	// Name is the identifier the generator is referenced by in equations
	// ("G0", "G1", ...). Must be a valid identifier.
	Name string

	// Structure is the structural model the signal derives from.
	Structure structure.Model

	// Workers is the number of goroutines evaluating the per-site pair sums.
	// Values <= 1 mean sequential evaluation. Parallelism is internal to one
	// Eval call and does not change the result for a fixed worker count.
	Workers int

	// BaseWidth is the instrument contribution to the Gaussian peak width,
	// added in quadrature to the thermal width. Defaults to 0.05 when zero.
	BaseWidth float64
}

// CrystalGenerator computes a pair-distance peak-sum signal from a periodic
// structure: every atom pair (including lattice images within the evaluation
// range) contributes a Gaussian centered at the pair distance, with a width
// driven by the two sites' displacement factors and sharpened at low r by the
// delta1/delta2 correlation terms, the standard peak-width model for
// atomic pair distribution data.
type CrystalGenerator struct {
	name      string
	stru      structure.Model
	scale     *structure.Scalar
	delta1    *structure.Scalar
	delta2    *structure.Scalar
	workers   int
	baseWidth float64
}

// NewCrystalGenerator builds a CrystalGenerator from cfg.
// Scale starts at 1, delta1/delta2 at 0.
func NewCrystalGenerator(cfg GenConfig) (*CrystalGenerator, error) {
	if !validIdent(cfg.Name) {
		return nil, fmt.Errorf("%w: %q", ErrBadName, cfg.Name)
	}
	if cfg.Structure == nil {
		return nil, fmt.Errorf("%w: %q has no structure", ErrNilGenerator, cfg.Name)
	}
	bw := cfg.BaseWidth
	if bw == 0 {
		bw = 0.05
	}

	return &CrystalGenerator{
		name:      cfg.Name,
		stru:      cfg.Structure,
		scale:     structure.NewScalar(1),
		delta1:    structure.NewScalar(0),
		delta2:    structure.NewScalar(0),
		workers:   cfg.Workers,
		baseWidth: bw,
	}, nil
}

// Name returns the generator's equation identifier.
func (g *CrystalGenerator) Name() string { return g.name }

// ScaleCell returns the overall scale slot.
func (g *CrystalGenerator) ScaleCell() param.Cell { return g.scale }

// DeltaCell returns the delta1 or delta2 sharpening slot.
func (g *CrystalGenerator) DeltaCell(order int) (param.Cell, bool) {
	switch order {
	case 1:
		return g.delta1, true
	case 2:
		return g.delta2, true
	default:
		return nil, false
	}
}

// Structure returns the underlying structural model.
func (g *CrystalGenerator) Structure() structure.Model { return g.stru }

// site is an atom lifted into Cartesian coordinates for pair summation.
type site struct {
	px, py, pz float64
	biso       float64
}

// Eval computes the signal over x. Pair distances use lattice lengths on
// fractional offsets (orthogonal-cell metric); lattice images are expanded
// far enough to cover max(x).
//
// Complexity: O(images · n² · len(x)) worst case; the i-loop is distributed
// over Workers goroutines when Workers > 1.
func (g *CrystalGenerator) Eval(x []float64) ([]float64, error) {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out, nil
	}

	atoms := g.stru.Atoms()
	if len(atoms) == 0 {
		return out, nil
	}
	lat := g.stru.Lattice()
	la, lb, lc := lat.A.Value(), lat.B.Value(), lat.C.Value()

	xmax := x[len(x)-1]
	na := imageCount(xmax, la)
	nb := imageCount(xmax, lb)
	nc := imageCount(xmax, lc)

	// Snapshot the sites once so workers share immutable state.
	sites := make([]site, len(atoms))
	for i, a := range atoms {
		sites[i] = site{
			px:   a.X.Value() * la,
			py:   a.Y.Value() * lb,
			pz:   a.Z.Value() * lc,
			biso: a.Biso.Value(),
		}
	}

	scale := g.scale.Value()
	d1 := g.delta1.Value()
	d2 := g.delta2.Value()

	workers := g.workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(sites) {
		workers = len(sites)
	}

	// Each worker accumulates a private buffer over a contiguous i-range;
	// buffers merge in fixed chunk order, keeping the result independent of
	// goroutine scheduling.
	bufs := make([][]float64, workers)
	var eg errgroup.Group
	chunk := (len(sites) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		w := w
		lo, hi := w*chunk, (w+1)*chunk
		if hi > len(sites) {
			hi = len(sites)
		}
		eg.Go(func() error {
			buf := make([]float64, len(x))
			for i := lo; i < hi; i++ {
				g.accumulateSite(buf, x, sites, i, na, nb, nc, la, lb, lc, d1, d2)
			}
			bufs[w] = buf

			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	for _, buf := range bufs {
		for k, v := range buf {
			out[k] += v
		}
	}
	for k := range out {
		out[k] *= scale / 2 // every pair was visited from both ends
	}

	return out, nil
}

// accumulateSite adds site i's pair contributions over all partners and
// lattice images into buf.
func (g *CrystalGenerator) accumulateSite(
	buf, x []float64, sites []site, i, na, nb, nc int, la, lb, lc, d1, d2 float64,
) {
	si := sites[i]
	for j := range sites {
		sj := sites[j]
		for ia := -na; ia <= na; ia++ {
			for ib := -nb; ib <= nb; ib++ {
				for ic := -nc; ic <= nc; ic++ {
					dx := sj.px - si.px + float64(ia)*la
					dy := sj.py - si.py + float64(ib)*lb
					dz := sj.pz - si.pz + float64(ic)*lc
					r := math.Sqrt(dx*dx + dy*dy + dz*dz)
					if r < 1e-8 {
						continue // the self pair
					}

					sigma2 := (si.biso+sj.biso)/(2*eightPiSq) + g.baseWidth*g.baseWidth
					// low-r sharpening: sigma'² = sigma²(1 - delta1/r - delta2/r²)
					factor := 1 - d1/r - d2/(r*r)
					if factor > 0 {
						sigma2 *= factor
					}
					sigma := math.Sqrt(sigma2)
					if sigma < minSigma {
						sigma = minSigma
					}

					amp := 1 / (r * sigma * math.Sqrt(2*math.Pi))
					for k, xv := range x {
						d := (xv - r) / sigma
						if d > 6 || d < -6 {
							continue // negligible beyond six widths
						}
						buf[k] += amp * math.Exp(-0.5*d*d)
					}
				}
			}
		}
	}
}

// imageCount returns how many lattice images along one axis can still reach
// distances inside [0, xmax].
func imageCount(xmax, length float64) int {
	if length <= 0 {
		return 0
	}

	return int(math.Ceil(xmax/length)) + 1
}

// GaussianGenerator is a self-contained three-parameter profile generator: a
// single Gaussian with amplitude A, center X0 and width Sigma. It is the
// smallest useful Generator and doubles as the reference implementation for
// writing custom ones.
type GaussianGenerator struct {
	name  string
	a     *structure.Scalar
	x0    *structure.Scalar
	sigma *structure.Scalar
}

// NewGaussianGenerator creates a GaussianGenerator with A=1, X0=0, Sigma=1.
func NewGaussianGenerator(name string) (*GaussianGenerator, error) {
	if !validIdent(name) {
		return nil, fmt.Errorf("%w: %q", ErrBadName, name)
	}

	return &GaussianGenerator{
		name:  name,
		a:     structure.NewScalar(1),
		x0:    structure.NewScalar(0),
		sigma: structure.NewScalar(1),
	}, nil
}

// Name returns the generator's equation identifier.
func (g *GaussianGenerator) Name() string { return g.name }

// A returns the amplitude slot.
func (g *GaussianGenerator) A() param.Cell { return g.a }

// X0 returns the center slot.
func (g *GaussianGenerator) X0() param.Cell { return g.x0 }

// Sigma returns the width slot.
func (g *GaussianGenerator) Sigma() param.Cell { return g.sigma }

// Eval computes A·exp(-(x-X0)²/(2·Sigma²)).
func (g *GaussianGenerator) Eval(x []float64) ([]float64, error) {
	a, x0, sigma := g.a.Value(), g.x0.Value(), g.sigma.Value()
	out := make([]float64, len(x))
	for i, xv := range x {
		d := (xv - x0) / sigma
		out[i] = a * math.Exp(-0.5*d*d)
	}

	return out, nil
}
