package mc

import (
	"math"
	"math/rand"
	"reflect"
	"time"

	"github.com/sirupsen/logrus"
)

// Simulation binds a model to run parameters, an owned random source, and a
// clock. Construction alone does not produce a runnable chain: Init must
// sample a configuration first. Keeping the mutable chain state in a
// separate value (runState) makes "constructed" and "initialized" distinct
// states instead of half-filled struct fields.
type Simulation struct {
	model  Model
	params Parameters
	rng    *PartitionedRNG
	clock  Clock

	// state is nil until Init succeeds.
	state *runState
}

// runState is the mutable per-chain state created by Init and discarded by
// the next Init.
type runState struct {
	config   Configuration
	energy   float64
	sites    int
	stats    *Stats
	registry *Registry
	running  bool
}

// Option configures a Simulation at construction.
type Option func(*Simulation)

// WithParameters replaces the default run parameters.
func WithParameters(p Parameters) Option {
	return func(s *Simulation) { s.params = p }
}

// WithClock replaces the wall clock. Tests inject a ManualClock here.
func WithClock(c Clock) Option {
	return func(s *Simulation) { s.clock = c }
}

// New constructs a simulation bound to model with default parameters. The
// owned generator is seeded from the wall clock until Init is given an
// explicit seed.
func New(model Model, opts ...Option) *Simulation {
	s := &Simulation{
		model:  model,
		params: NewParameters(),
		rng:    NewPartitionedRNG(time.Now().UnixNano()),
		clock:  RealClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init (re)initializes the chain: reseeds the owned generator when a seed is
// given, samples a fresh configuration, computes the initial energy from
// scratch, and resets statistics and observables. Calling it again restarts
// the simulation from scratch; nothing from the previous chain survives.
func (s *Simulation) Init(seed ...int64) error {
	if len(seed) > 0 {
		s.rng = NewPartitionedRNG(seed[0])
	}
	cfg := s.model.SampleInitial(s.rng.ForSubsystem(SubsystemInit))
	if declared, got := s.model.ConfigurationType(), reflect.TypeOf(cfg); declared != got {
		return &ConfigurationTypeMismatchError{Declared: declared, Got: got}
	}
	s.state = &runState{
		config:   cfg,
		energy:   s.model.Energy(cfg),
		sites:    s.model.Sites(cfg),
		stats:    NewStats(),
		registry: s.model.PrepareObservables(),
	}
	return nil
}

// Parameters returns the current run parameters.
func (s *Simulation) Parameters() Parameters { return s.params }

// Energy returns the incrementally maintained total energy, NaN before Init.
func (s *Simulation) Energy() float64 {
	if s.state == nil {
		return math.NaN()
	}
	return s.state.energy
}

// Configuration returns the current chain configuration, nil before Init.
func (s *Simulation) Configuration() Configuration {
	if s.state == nil {
		return nil
	}
	return s.state.config
}

// Stats returns the acceptance and timing statistics, nil before Init.
func (s *Simulation) Stats() *Stats {
	if s.state == nil {
		return nil
	}
	return s.state.stats
}

// RunOption overrides run parameters for one Run call. Overrides persist:
// the stored Parameters are updated to match before the loop starts.
type RunOption func(*runOverrides)

type runOverrides struct {
	verbose        bool
	sweeps         *int
	thermalization *int
}

// WithVerbose enables periodic progress reports and the start/end summary.
func WithVerbose(v bool) RunOption {
	return func(o *runOverrides) { o.verbose = v }
}

// WithSweeps overrides the number of measurement sweeps.
func WithSweeps(n int) RunOption {
	return func(o *runOverrides) { o.sweeps = &n }
}

// WithThermalization overrides the number of thermalization sweeps.
func WithThermalization(n int) RunOption {
	return func(o *runOverrides) { o.thermalization = &n }
}

// Run executes the thermalization and measurement loop and returns the
// finalized observable registry.
//
// Per sweep: one full Metropolis pass over all sites; every GlobalRate-th
// sweep additionally invokes the model's global move; past the
// thermalization window the model measures into the registry. Every
// ReportInterval sweeps the rolling acceptance rates are computed, the
// interval duration recorded, and the rolling accumulators zeroed.
//
// Run fails with ErrUninitialized before Init and with ErrRunning while
// another Run on the same simulation is in progress. Any NumericalError
// aborts the run immediately; sweeps are not idempotent, so nothing is
// retried.
func (s *Simulation) Run(opts ...RunOption) (*Registry, error) {
	st := s.state
	if st == nil {
		return nil, ErrUninitialized
	}
	if st.running {
		return nil, ErrRunning
	}
	// A completed chain stays completed; restarting requires Init.
	if st.registry.Finalized() {
		return nil, ErrAlreadyFinalized
	}
	st.running = true
	defer func() { st.running = false }()

	var ov runOverrides
	for _, opt := range opts {
		opt(&ov)
	}
	if ov.sweeps != nil {
		s.params.Sweeps = *ov.sweeps
	}
	if ov.thermalization != nil {
		s.params.Thermalization = *ov.thermalization
	}

	total := s.params.Thermalization + s.params.Sweeps
	interval := s.params.ReportInterval
	if interval <= 0 {
		interval = NewParameters().ReportInterval
	}
	globalEvery := s.params.GlobalRate
	globalOn := s.params.GlobalMoves && globalEvery > 0

	start := s.clock.Now()
	if ov.verbose {
		logrus.Infof("run started at %s: %d thermalization + %d measurement sweeps",
			start.Format(time.RFC3339), s.params.Thermalization, s.params.Sweeps)
	}

	localRNG := s.rng.ForSubsystem(SubsystemLocal)
	globalRNG := s.rng.ForSubsystem(SubsystemGlobal)

	intervalStart := start
	intervalSweeps := 0
	intervalGlobalProps := 0

	for i := 1; i <= total; i++ {
		if err := s.sweep(i, localRNG); err != nil {
			return nil, err
		}
		if globalOn && i%globalEvery == 0 {
			st.stats.PropGlobal++
			intervalGlobalProps++
			if s.model.GlobalMove(st.config, &st.energy, globalRNG) {
				st.stats.AccGlobal++
				st.stats.AccRateGlobal++
			}
		}
		if i > s.params.Thermalization {
			s.model.Measure(st.registry, st.config, st.energy)
		}
		intervalSweeps++
		if i%interval == 0 {
			now := s.clock.Now()
			s.report(i, now.Sub(intervalStart), intervalSweeps, intervalGlobalProps, ov.verbose)
			intervalStart = now
			intervalSweeps = 0
			intervalGlobalProps = 0
		}
	}

	s.model.Finalize(st.registry)
	if err := st.registry.Finalize(); err != nil {
		return nil, err
	}
	st.stats.FinalizeRates()

	if ov.verbose {
		end := s.clock.Now()
		logrus.Infof("run finished at %s after %.3f min, local acceptance %.1f%%",
			end.Format(time.RFC3339), end.Sub(start).Minutes(), 100*st.stats.AccRate)
	}
	return st.registry, nil
}

// sweep performs one Metropolis pass, proposing a local move at every site
// in index order. idx is the 1-based sweep index carried into error context.
func (s *Simulation) sweep(idx int, rng *rand.Rand) error {
	st := s.state
	beta := s.model.Beta()
	invSites := 1.0 / float64(st.sites)
	for site := 0; site < st.sites; site++ {
		delta, move := s.model.ProposeLocal(site, st.config, st.energy, rng)
		st.stats.PropLocal++
		if math.IsNaN(delta) || math.IsInf(delta, 0) {
			return &NumericalError{Sweep: idx, Site: site, Delta: delta}
		}
		// Metropolis: always accept downhill, accept uphill with exp(-beta*dE).
		if delta <= 0 || rng.Float64() < math.Exp(-beta*delta) {
			s.model.AcceptLocal(site, st.config, st.energy, move, delta)
			st.energy += delta
			st.stats.AccLocal++
			st.stats.AccRate += invSites
		}
	}
	return nil
}

// report turns the rolling accumulators into per-interval acceptance rates,
// records the interval duration, optionally logs a progress line, and zeroes
// the rolling fields. The rolling rates are the authoritative periodic
// figures; the cumulative global ratio is printed alongside for reference.
func (s *Simulation) report(sweep int, dur time.Duration, sweeps, globalProps int, verbose bool) {
	st := s.state
	localRate := math.NaN()
	if sweeps > 0 {
		localRate = st.stats.AccRate / float64(sweeps)
	}
	globalRate := math.NaN()
	if globalProps > 0 {
		globalRate = st.stats.AccRateGlobal / float64(globalProps)
	}
	st.stats.IntervalDurations = append(st.stats.IntervalDurations, dur)

	if verbose {
		if s.params.GlobalMoves {
			logrus.Infof("sweep %d: %.2fs, local acceptance %.1f%%, global acceptance %.1f%% (cumulative %.1f%%)",
				sweep, dur.Seconds(), 100*localRate, 100*globalRate, 100*st.stats.CumulativeGlobalRate())
		} else {
			logrus.Infof("sweep %d: %.2fs, local acceptance %.1f%%",
				sweep, dur.Seconds(), 100*localRate)
		}
	}
	st.stats.ResetRolling()
}
