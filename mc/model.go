package mc

import (
	"math/rand"
	"reflect"
)

// Configuration is the mutable state of a physical model. Its concrete type
// is declared by the model via ConfigurationType; the engine never looks
// inside it.
type Configuration = any

// MoveData carries whatever a model needs to apply a previously proposed
// local move. Opaque to the engine.
type MoveData = any

// Model is the capability contract a physical model implements to be driven
// by the engine. Implementations live in sub-packages (see mc/ising); the
// engine calls these hooks and nothing else.
//
// Every sampling hook receives an explicit *rand.Rand drawn from the
// simulation's owned generator; models must not reach for a global one.
type Model interface {
	// ConfigurationType declares the concrete type SampleInitial returns.
	// Init verifies the two agree.
	ConfigurationType() reflect.Type

	// SampleInitial produces a valid random starting configuration.
	SampleInitial(rng *rand.Rand) Configuration

	// Energy computes the total energy of cfg from scratch. The engine calls
	// it once at initialization; afterwards energy is maintained
	// incrementally from accepted move deltas.
	Energy(cfg Configuration) float64

	// Sites returns the number of lattice sites in cfg. One sweep proposes
	// one local move per site, in site-index order.
	Sites(cfg Configuration) int

	// Beta returns the inverse temperature used in the acceptance rule.
	Beta() float64

	// ProposeLocal proposes a candidate change at one site without mutating
	// cfg. It returns the energy delta the change would cause and enough
	// data to apply it later.
	ProposeLocal(site int, cfg Configuration, energy float64, rng *rand.Rand) (float64, MoveData)

	// AcceptLocal applies a previously proposed move to cfg in place. Called
	// at most once per acceptance. It must not alter the energy itself; the
	// engine adds the delta.
	AcceptLocal(site int, cfg Configuration, energy float64, move MoveData, delta float64)

	// GlobalMove attempts a model-defined global update and reports whether
	// it was accepted. It may mutate cfg and must reconcile *energy itself
	// before returning; the engine adds no delta on this path.
	GlobalMove(cfg Configuration, energy *float64, rng *rand.Rand) bool

	// PrepareObservables declares the named observables this model tracks.
	// Called once per initialization.
	PrepareObservables() *Registry

	// Measure appends one sample into each relevant accumulator. Called once
	// per measurement sweep.
	Measure(reg *Registry, cfg Configuration, energy float64)

	// Finalize post-processes the accumulated series (e.g. normalization).
	// Called exactly once, after the sweep loop and before the registry is
	// sealed.
	Finalize(reg *Registry)
}
