package reduce

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/strufit/strufit/fit"
	"github.com/strufit/strufit/model"
	"github.com/strufit/strufit/param"
	"github.com/strufit/strufit/structure"
)

var (
	// ErrInvalidMode is returned for a mode string outside the documented set.
	ErrInvalidMode = errors.New("reduce: invalid mode")

	// ErrNilRecipe is returned when Initialize or AddGenVars receives a nil
	// recipe.
	ErrNilRecipe = errors.New("reduce: recipe is nil")

	// ErrNilGenerator is returned when AddGenVars receives a nil generator.
	ErrNilGenerator = errors.New("reduce: generator is nil")
)

// Default initial values and lower bounds, applied when the structural cell
// carries no value of its own.
const (
	defaultADP = 0.05
)

// Options selects, per category, how structural quantities become fit
// parameters. The zero value skips every category; use DefaultOptions for
// the conventional setup.
type Options struct {
	// Scale exposes the overall scale (initial 0, bounded below by 0).
	Scale bool
	// Delta exposes a sharpening coefficient: "1" for the 1/r term, "2"
	// for the 1/r² term, "" for none. Initial 0, bounded below by 0.
	Delta string
	// Lat exposes lattice constants: "s" for the symmetry-reduced set, "a"
	// for all six cells, "" for none. Initial cell value, bounded
	// (0, 2·value).
	Lat string
	// ADP exposes displacement factors: "a" per site, "e" one shared
	// parameter per element, "s" the symmetry-reduced set, "" none.
	// Initial cell value or 0.05, bounded below by 0.
	ADP string
	// XYZ exposes coordinates: "s" for the site-symmetry-free set, "a" for
	// every coordinate of every site, "" for none. Registered fixed and
	// unbounded.
	XYZ string
}

// DefaultOptions returns the conventional reduction: scale, delta2,
// symmetry-reduced lattice, per-site displacement factors, free coordinates
// registered but fixed.
func DefaultOptions() Options {
	return Options{Scale: true, Delta: "2", Lat: "s", ADP: "a", XYZ: "s"}
}

// validate rejects unknown mode strings before any parameter is created.
func (o Options) validate() error {
	switch o.Delta {
	case "", "1", "2":
	default:
		return fmt.Errorf("%w: delta %q (allowed: \"1\", \"2\")", ErrInvalidMode, o.Delta)
	}
	switch o.Lat {
	case "", "s", "a":
	default:
		return fmt.Errorf("%w: lat %q (allowed: \"s\", \"a\")", ErrInvalidMode, o.Lat)
	}
	switch o.ADP {
	case "", "a", "e", "s":
	default:
		return fmt.Errorf("%w: adp %q (allowed: \"a\", \"e\", \"s\")", ErrInvalidMode, o.ADP)
	}
	switch o.XYZ {
	case "", "s", "a":
	default:
		return fmt.Errorf("%w: xyz %q (allowed: \"s\", \"a\")", ErrInvalidMode, o.XYZ)
	}

	return nil
}

// Initialize runs AddGenVars for every refinable generator of every
// contribution in rc. Generators that expose no structural cells are
// skipped.
func Initialize(rc *fit.Recipe, opts Options) error {
	if rc == nil {
		return ErrNilRecipe
	}
	if err := opts.validate(); err != nil {
		return err
	}
	for _, con := range rc.Contributions() {
		for _, gen := range con.Generators() {
			ref, ok := gen.(model.Refinable)
			if !ok {
				continue
			}
			if err := AddGenVars(rc, ref, opts); err != nil {
				return err
			}
		}
	}

	return nil
}

// AddGenVars creates the fit parameters for one generator per opts, tags
// them with the category, the generator name and their union, and
// constrains the generator's structural cells to them.
func AddGenVars(rc *fit.Recipe, gen model.Refinable, opts Options) error {
	if rc == nil {
		return ErrNilRecipe
	}
	if gen == nil {
		return ErrNilGenerator
	}
	if err := opts.validate(); err != nil {
		return err
	}

	if opts.Scale {
		if err := addScale(rc.Registry(), gen); err != nil {
			return err
		}
	}
	if opts.Delta != "" {
		if err := addDelta(rc.Registry(), gen, opts.Delta); err != nil {
			return err
		}
	}
	if opts.Lat != "" {
		if err := addLat(rc.Registry(), gen, opts.Lat); err != nil {
			return err
		}
	}
	if opts.ADP != "" {
		if err := addADP(rc.Registry(), gen, opts.ADP); err != nil {
			return err
		}
	}
	if opts.XYZ != "" {
		if err := addXYZ(rc.Registry(), gen, opts.XYZ); err != nil {
			return err
		}
	}

	return nil
}

// tags builds the category / generator / union tag triple.
func tags(category, gen string) []string {
	return []string{category, gen, gen + "_" + category}
}

// addVar registers one parameter, applies its bounds and constrains the
// cells it drives.
func addVar(reg *param.Registry, name string, value, lo, hi float64, tg []string, cells ...param.Cell) (*param.Parameter, error) {
	p, err := reg.NewVar(name, value, tg...)
	if err != nil {
		return nil, err
	}
	if err := p.SetBounds(lo, hi); err != nil {
		return nil, err
	}
	for _, c := range cells {
		if err := reg.Constrain(c, p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func addScale(reg *param.Registry, gen model.Refinable) error {
	_, err := addVar(reg, gen.Name()+"_scale", 0, 0, math.Inf(1),
		tags("scale", gen.Name()), gen.ScaleCell())

	return err
}

func addDelta(reg *param.Registry, gen model.Refinable, mode string) error {
	order, _ := strconv.Atoi(mode)
	cell, ok := gen.DeltaCell(order)
	if !ok {
		return nil
	}
	_, err := addVar(reg, fmt.Sprintf("%s_delta%d", gen.Name(), order), 0, 0, math.Inf(1),
		tags("delta", gen.Name()), cell)

	return err
}

func addLat(reg *param.Registry, gen model.Refinable, mode string) error {
	stru := gen.Structure()
	var quantities []structure.Quantity
	if mode == "s" {
		quantities = stru.IndependentLatticeParams()
	} else {
		lat := stru.Lattice()
		for _, q := range []struct {
			name string
			cell *structure.Scalar
		}{
			{"a", lat.A}, {"b", lat.B}, {"c", lat.C},
			{"alpha", lat.Alpha}, {"beta", lat.Beta}, {"gamma", lat.Gamma},
		} {
			quantities = append(quantities, structure.Quantity{
				Name: q.name, Value: q.cell.Value(), Cells: []*structure.Scalar{q.cell},
			})
		}
	}

	tg := tags("lat", gen.Name())
	for _, q := range quantities {
		cells := make([]param.Cell, len(q.Cells))
		for i, c := range q.Cells {
			cells[i] = c
		}
		if _, err := addVar(reg, gen.Name()+"_"+q.Name, q.Value, 0, 2*q.Value, tg, cells...); err != nil {
			return err
		}
	}

	return nil
}

func addADP(reg *param.Registry, gen model.Refinable, mode string) error {
	stru := gen.Structure()
	tg := tags("adp", gen.Name())

	switch mode {
	case "e":
		for _, grp := range stru.ElementGroups() {
			name := fmt.Sprintf("%s_%s_Biso", gen.Name(), Sanitize(grp.Element))
			cells := make([]param.Cell, len(grp.Atoms))
			for i, a := range grp.Atoms {
				cells[i] = a.Biso
			}
			if _, err := addVar(reg, name, defaultADP, 0, math.Inf(1), tg, cells...); err != nil {
				return err
			}
		}

	case "a":
		for _, a := range stru.Atoms() {
			name := fmt.Sprintf("%s_%s_Biso", gen.Name(), Sanitize(a.Label))
			v := a.Biso.Value()
			if v == 0 {
				v = defaultADP
			}
			if _, err := addVar(reg, name, v, 0, math.Inf(1), tg, a.Biso); err != nil {
				return err
			}
		}

	case "s":
		atoms := stru.Atoms()
		for _, q := range stru.IndependentADPs() {
			name := gen.Name() + "_" + renameByAtom(q.Name, atoms)
			v := q.Value
			if v == 0 {
				v = defaultADP
			}
			cells := make([]param.Cell, len(q.Cells))
			for i, c := range q.Cells {
				cells[i] = c
			}
			if _, err := addVar(reg, name, v, 0, math.Inf(1), tg, cells...); err != nil {
				return err
			}
		}
	}

	return nil
}

func addXYZ(reg *param.Registry, gen model.Refinable, mode string) error {
	stru := gen.Structure()
	tg := tags("xyz", gen.Name())
	atoms := stru.Atoms()

	var quantities []structure.Quantity
	var names []string
	if mode == "s" {
		for _, q := range stru.IndependentCoordinates() {
			quantities = append(quantities, q)
			names = append(names, renameByAtom(q.Name, atoms))
		}
	} else {
		for _, a := range atoms {
			for _, ax := range []struct {
				axis string
				cell *structure.Scalar
			}{{"x", a.X}, {"y", a.Y}, {"z", a.Z}} {
				quantities = append(quantities, structure.Quantity{
					Value: ax.cell.Value(), Cells: []*structure.Scalar{ax.cell},
				})
				names = append(names, Sanitize(a.Label)+"_"+ax.axis)
			}
		}
	}

	for i, q := range quantities {
		cells := make([]param.Cell, len(q.Cells))
		for j, c := range q.Cells {
			cells[j] = c
		}
		p, err := addVar(reg, gen.Name()+"_"+names[i], q.Value,
			math.Inf(-1), math.Inf(1), tg, cells...)
		if err != nil {
			return err
		}
		p.Fix()
	}

	return nil
}

// renameByAtom swaps the positional index in a reduced quantity name for the
// site label and reverses the parts: "x_0" with site 0 labelled "Ni0"
// becomes "Ni0_x". Names that do not follow the "{quantity}_{index}" shape
// are returned unchanged.
func renameByAtom(name string, atoms []*structure.Atom) string {
	parts := strings.Split(name, "_")
	if len(parts) < 2 {
		return name
	}
	idx, err := strconv.Atoi(parts[1])
	if err != nil || idx < 0 || idx >= len(atoms) {
		return name
	}
	parts[1] = Sanitize(atoms[idx].Label)
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}

	return strings.Join(parts, "_")
}

// Sanitize makes a site label or element symbol safe for a parameter name:
// '+' becomes 'p', '-' becomes 'n', everything that is not a letter or a
// digit is dropped. "Zn2+" turns into "Zn2p".
func Sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '+':
			b.WriteRune('p')
		case r == '-':
			b.WriteRune('n')
		case ('0' <= r && r <= '9') || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z'):
			b.WriteRune(r)
		}
	}

	return b.String()
}
