// Package strufit refines structural signal models against measured
// one-dimensional data by staged, bounded nonlinear least squares.
//
// 🚀 What is strufit?
//
//	A library for building a fit "recipe" out of structural generators and
//	envelope functions, exposing the model's physical quantities (lattice
//	constants, displacement parameters, coordinates, envelope arguments) as
//	named, tagged, boundable variables, and driving a staged refinement that
//	frees parameter groups one schedule entry at a time:
//	  • Parameter registry: named/tagged variables, bounds, fix/free state
//	  • Constraint reduction: symmetry & element equivalence classes
//	  • Model composition: generators × envelopes via expression trees
//	  • Contributions: observed-vs-calculated residuals over a fit range
//	  • Staged refinement: fix-all → free tag groups → bounded solve
//
// ✨ Why choose strufit?
//
//   - Deterministic – stable parameter naming and ordering, reproducible fits
//   - Explicit – no singletons, no reflection; everything flows through a Recipe
//   - Numerically careful – staged unlocking keeps correlated fits stable
//   - Extensible – bring your own Generator, EnvelopeFunc or Solver
//
// Everything is organized under focused subpackages:
//
//	param/     — Parameter, Registry, tags, equality constraints
//	expr/      — expression trees and their interpreter
//	structure/ — the minimal structural-model surface (four queries)
//	model/     — generators, envelope functions, composer, Contribution
//	fit/       — Recipe: aggregate residual, values/bounds/names, fix/free
//	reduce/    — symmetry/element constraint reduction with deterministic names
//	solve/     — bounded Levenberg–Marquardt adapter and uncertainties
//	refine/    — the staged refinement controller
//
// A minimal fit reads:
//
//	prof, _ := model.NewProfile(x, y, nil)
//	con, _ := model.NewContribution("nickel", prof)
//	_ = con.AddGenerator(gen)
//	_ = con.SetEquation("G0")
//	rc := fit.NewRecipe()
//	_ = rc.AddContribution(con, 1)
//	_ = reduce.Initialize(rc, reduce.DefaultOptions())
//	rep, _ := refine.Refine(rc, refine.Schedule{{"scale"}, {"lat", "adp"}})
//
// Dive into examples/ for complete, runnable walkthroughs.
//
//	go get github.com/strufit/strufit
package strufit
