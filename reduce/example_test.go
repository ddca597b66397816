package reduce_test

import (
	"fmt"

	"github.com/strufit/strufit/fit"
	"github.com/strufit/strufit/model"
	"github.com/strufit/strufit/reduce"
	"github.com/strufit/strufit/structure"
)

// ExampleInitialize reduces a one-site cubic crystal to its independent fit
// parameters: cubic symmetry leaves a single lattice constant, and the
// special-position site contributes its displacement factor only.
func ExampleInitialize() {
	lattice := structure.NewLattice(3.52, 3.52, 3.52, 90, 90, 90)
	nickel := structure.NewCrystal(structure.Cubic, lattice,
		structure.NewAtom("Ni0", "Ni", 0, 0, 0, 0.5))

	gen, err := model.NewCrystalGenerator(model.GenConfig{Name: "G0", Structure: nickel})
	if err != nil {
		fmt.Println("error:", err)

		return
	}

	profile, err := model.NewProfile([]float64{1, 2, 3}, []float64{0, 0, 0}, nil)
	if err != nil {
		fmt.Println("error:", err)

		return
	}
	con, err := model.NewContribution("pdf", profile)
	if err != nil {
		fmt.Println("error:", err)

		return
	}
	if err = con.AddGenerator(gen); err != nil {
		fmt.Println("error:", err)

		return
	}

	rc := fit.NewRecipe()
	if err = rc.AddContribution(con, 1.0); err != nil {
		fmt.Println("error:", err)

		return
	}

	if err = reduce.Initialize(rc, reduce.DefaultOptions()); err != nil {
		fmt.Println("error:", err)

		return
	}

	for _, name := range rc.Names() {
		p, _ := rc.Lookup(name)
		fmt.Printf("%-13s = %v\n", name, p.Value())
	}
	// Output:
	// G0_scale      = 0
	// G0_delta2     = 0
	// G0_a          = 3.52
	// G0_Ni0_Biso   = 0.5
}

// ExampleSanitize bleaches ionic labels into identifier-safe names.
func ExampleSanitize() {
	fmt.Println(reduce.Sanitize("Zn2+"))
	fmt.Println(reduce.Sanitize("O2-"))
	// Output:
	// Zn2p
	// O2n
}
