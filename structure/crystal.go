package structure

import "strconv"

// System is the crystal system governing lattice-parameter reduction.
type System int

const (
	// Triclinic keeps all six lattice parameters independent.
	Triclinic System = iota
	// Monoclinic keeps a, b, c and beta.
	Monoclinic
	// Orthorhombic keeps a, b, c.
	Orthorhombic
	// Tetragonal keeps a (driving a, b) and c.
	Tetragonal
	// Hexagonal keeps a (driving a, b) and c.
	Hexagonal
	// Cubic keeps a single length a driving a, b and c.
	Cubic
)

// String returns the crystal-system name.
func (s System) String() string {
	switch s {
	case Monoclinic:
		return "monoclinic"
	case Orthorhombic:
		return "orthorhombic"
	case Tetragonal:
		return "tetragonal"
	case Hexagonal:
		return "hexagonal"
	case Cubic:
		return "cubic"
	default:
		return "triclinic"
	}
}

// Crystal is the concrete Model shipped with strufit: a periodic structure
// whose symmetry reduction follows declared crystal-system rules and per-atom
// site flags. External crystallography libraries can replace it by
// implementing Model.
type Crystal struct {
	system  System
	lattice *Lattice
	atoms   []*Atom
}

// NewCrystal creates a Crystal. Atoms are kept in declaration order, which
// fixes all downstream parameter naming.
func NewCrystal(system System, lattice *Lattice, atoms ...*Atom) *Crystal {
	return &Crystal{system: system, lattice: lattice, atoms: atoms}
}

// System returns the declared crystal system.
func (c *Crystal) System() System { return c.system }

// Lattice returns the lattice cells.
func (c *Crystal) Lattice() *Lattice { return c.lattice }

// Atoms returns the sites in declaration order.
func (c *Crystal) Atoms() []*Atom { return c.atoms }

// IndependentLatticeParams reduces the six lattice parameters to the
// independent set of the crystal system. Cell lists carry every driven slot,
// so a cubic "a" updates a, b and c through one constraint class.
func (c *Crystal) IndependentLatticeParams() []Quantity {
	l := c.lattice
	switch c.system {
	case Cubic:
		return []Quantity{
			{Name: "a", Value: l.A.Value(), Cells: []*Scalar{l.A, l.B, l.C}},
		}
	case Tetragonal, Hexagonal:
		return []Quantity{
			{Name: "a", Value: l.A.Value(), Cells: []*Scalar{l.A, l.B}},
			{Name: "c", Value: l.C.Value(), Cells: []*Scalar{l.C}},
		}
	case Orthorhombic:
		return []Quantity{
			{Name: "a", Value: l.A.Value(), Cells: []*Scalar{l.A}},
			{Name: "b", Value: l.B.Value(), Cells: []*Scalar{l.B}},
			{Name: "c", Value: l.C.Value(), Cells: []*Scalar{l.C}},
		}
	case Monoclinic:
		return []Quantity{
			{Name: "a", Value: l.A.Value(), Cells: []*Scalar{l.A}},
			{Name: "b", Value: l.B.Value(), Cells: []*Scalar{l.B}},
			{Name: "c", Value: l.C.Value(), Cells: []*Scalar{l.C}},
			{Name: "beta", Value: l.Beta.Value(), Cells: []*Scalar{l.Beta}},
		}
	default: // Triclinic
		return []Quantity{
			{Name: "a", Value: l.A.Value(), Cells: []*Scalar{l.A}},
			{Name: "b", Value: l.B.Value(), Cells: []*Scalar{l.B}},
			{Name: "c", Value: l.C.Value(), Cells: []*Scalar{l.C}},
			{Name: "alpha", Value: l.Alpha.Value(), Cells: []*Scalar{l.Alpha}},
			{Name: "beta", Value: l.Beta.Value(), Cells: []*Scalar{l.Beta}},
			{Name: "gamma", Value: l.Gamma.Value(), Cells: []*Scalar{l.Gamma}},
		}
	}
}

// IndependentCoordinates returns one quantity per site-symmetry-free
// coordinate, named "{axis}_{atom index}". Atoms on special positions
// (FreeXYZ all false, the default) contribute nothing.
func (c *Crystal) IndependentCoordinates() []Quantity {
	var out []Quantity
	axes := [3]string{"x", "y", "z"}
	for i, a := range c.atoms {
		cells := [3]*Scalar{a.X, a.Y, a.Z}
		for ax := 0; ax < 3; ax++ {
			if !a.FreeXYZ[ax] {
				continue
			}
			out = append(out, Quantity{
				Name:  axes[ax] + "_" + strconv.Itoa(i),
				Value: cells[ax].Value(),
				Cells: []*Scalar{cells[ax]},
			})
		}
	}

	return out
}

// IndependentADPs returns one isotropic displacement quantity per site,
// named "Biso_{atom index}".
func (c *Crystal) IndependentADPs() []Quantity {
	out := make([]Quantity, len(c.atoms))
	for i, a := range c.atoms {
		out[i] = Quantity{
			Name:  "Biso_" + strconv.Itoa(i),
			Value: a.Biso.Value(),
			Cells: []*Scalar{a.Biso},
		}
	}

	return out
}

// ElementGroups groups atoms by element, sorted by element symbol; within a
// group atoms keep declaration order.
func (c *Crystal) ElementGroups() []ElementGroup {
	return groupByElement(c.atoms)
}
