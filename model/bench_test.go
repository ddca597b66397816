package model_test

import (
	"testing"

	"github.com/strufit/strufit/model"
	"github.com/strufit/strufit/structure"
)

// benchmarkCrystalEval runs one generator evaluation per iteration over a
// grid of n points, with the given worker count.
func benchmarkCrystalEval(b *testing.B, atoms, n, workers int) {
	lat := structure.NewLattice(3.52, 3.52, 3.52, 90, 90, 90)
	sites := make([]*structure.Atom, atoms)
	for i := range sites {
		frac := float64(i) / float64(atoms)
		sites[i] = structure.NewAtom("Ni"+string(rune('0'+i%10)), "Ni", frac, frac, frac, 0.5)
	}
	gen, err := model.NewCrystalGenerator(model.GenConfig{
		Name:      "G0",
		Structure: structure.NewCrystal(structure.Cubic, lat, sites...),
		Workers:   workers,
	})
	if err != nil {
		b.Fatalf("generator: %v", err)
	}

	grid := make([]float64, n)
	for i := range grid {
		grid[i] = 1.0 + float64(i)*0.02
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := gen.Eval(grid); err != nil {
			b.Fatalf("eval: %v", err)
		}
	}
}

// BenchmarkCrystalEval_Sequential is the single-goroutine baseline.
func BenchmarkCrystalEval_Sequential(b *testing.B) {
	benchmarkCrystalEval(b, 8, 500, 1)
}

// BenchmarkCrystalEval_Workers4 distributes the site loop over 4 workers.
func BenchmarkCrystalEval_Workers4(b *testing.B) {
	benchmarkCrystalEval(b, 8, 500, 4)
}
