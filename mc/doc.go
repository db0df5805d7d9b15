// Package mc provides a model-agnostic Metropolis Monte Carlo engine.
//
// # Reading Guide
//
// Start with these three files to understand the engine:
//   - model.go: the capability contract a physical model implements
//   - simulation.go: the run controller (init, sweep loop, global moves, reporting)
//   - observable.go: the per-run registry of measurement accumulators
//
// # Architecture
//
// The mc package owns the mechanics that must stay numerically consistent
// sweep after sweep: the per-site Metropolis pass, incremental energy
// bookkeeping, acceptance statistics at rolling and cumulative time scales,
// and the observable lifecycle (prepare, measure, finalize). Physical models
// live in sub-packages and plug in through the Model interface:
//   - mc/ising: two-dimensional Ising model with single-spin-flip local moves
//     and a full-lattice-flip global move
//
// A Simulation is built in two phases. Construction binds a model, run
// parameters, an owned random source, and a clock. Init then samples a fresh
// configuration, computes the initial energy, and resets statistics and
// observables; only an initialized simulation can Run. Init may be called
// again at any time to restart the chain from scratch, optionally reseeded
// for reproducibility.
//
// The engine is single-threaded by design: Configuration and Energy are
// mutated only by the sweep loop and the model's global-move hook, both
// driven by Run.
package mc
