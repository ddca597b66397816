package structure

import "sort"

// Scalar is a settable structural value slot (a lattice length, a coordinate,
// a displacement factor). It satisfies the registry's Cell interface, so a
// Quantity's cells can be constrained to fit parameters directly.
type Scalar struct{ v float64 }

// NewScalar creates a Scalar holding v.
func NewScalar(v float64) *Scalar { return &Scalar{v: v} }

// Value returns the current value.
func (s *Scalar) Value() float64 { return s.v }

// SetValue overwrites the current value.
func (s *Scalar) SetValue(v float64) { s.v = v }

// Lattice holds the six lattice parameters: lengths in model units, angles in
// degrees. Each slot is an addressable cell.
type Lattice struct {
	A, B, C          *Scalar
	Alpha, Beta, Gamma *Scalar
}

// NewLattice creates a Lattice from lengths a, b, c and angles alpha, beta,
// gamma (degrees).
func NewLattice(a, b, c, alpha, beta, gamma float64) *Lattice {
	return &Lattice{
		A: NewScalar(a), B: NewScalar(b), C: NewScalar(c),
		Alpha: NewScalar(alpha), Beta: NewScalar(beta), Gamma: NewScalar(gamma),
	}
}

// Atom is one site of the structure. Coordinates are fractional; Biso is the
// isotropic displacement factor. FreeXYZ marks which coordinates are
// independent under the site symmetry (all false for a special position,
// which is the default).
type Atom struct {
	Label   string
	Element string
	X, Y, Z *Scalar
	Biso    *Scalar
	FreeXYZ [3]bool
}

// NewAtom creates an Atom at fractional position (x, y, z) with the given
// isotropic displacement factor. The label should be unique within a
// structure (e.g. "Ni0"); the element is the chemical symbol.
func NewAtom(label, element string, x, y, z, biso float64) *Atom {
	return &Atom{
		Label:   label,
		Element: element,
		X:       NewScalar(x), Y: NewScalar(y), Z: NewScalar(z),
		Biso: NewScalar(biso),
	}
}

// Quantity is one independent structural parameter together with every cell
// it drives. Cells[0] is the defining cell; the rest are symmetry copies.
type Quantity struct {
	Name  string
	Value float64
	Cells []*Scalar
}

// ElementGroup is the set of atoms sharing one chemical element.
type ElementGroup struct {
	Element string
	Atoms   []*Atom
}

// Model is the entire structural surface the refinement core depends on:
// the four queries plus raw access for signal generators.
type Model interface {
	// Lattice returns the lattice cells.
	Lattice() *Lattice
	// Atoms returns the sites in declaration order.
	Atoms() []*Atom
	// IndependentLatticeParams returns the symmetry-reduced lattice
	// parameters, each driving one or more lattice cells.
	IndependentLatticeParams() []Quantity
	// IndependentCoordinates returns the site-symmetry-free coordinates,
	// named "{axis}_{atom index}" ("x_0", "z_3", ...).
	IndependentCoordinates() []Quantity
	// IndependentADPs returns the reduced displacement parameters, named
	// "Biso_{atom index}".
	IndependentADPs() []Quantity
	// ElementGroups groups atoms by element, sorted by element symbol.
	ElementGroups() []ElementGroup
}

// groupByElement builds sorted element groups from a site list.
func groupByElement(atoms []*Atom) []ElementGroup {
	byElem := make(map[string][]*Atom)
	for _, a := range atoms {
		byElem[a.Element] = append(byElem[a.Element], a)
	}
	elems := make([]string, 0, len(byElem))
	for e := range byElem {
		elems = append(elems, e)
	}
	sort.Strings(elems)

	out := make([]ElementGroup, len(elems))
	for i, e := range elems {
		out[i] = ElementGroup{Element: e, Atoms: byElem[e]}
	}

	return out
}
