package mc

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubModel drives the engine with scripted per-site energy deltas. Its
// configuration is a []float64 whose sum is the energy, so accepted moves
// stay consistent with a from-scratch recomputation.
type stubModel struct {
	sites       int
	beta        float64
	deltas      []float64 // delta for site i is deltas[i%len(deltas)]
	globalOK    bool      // whether GlobalMove accepts
	globalShift float64   // energy shift applied by an accepted global move
	badType     bool      // SampleInitial returns the wrong type
	nanSite     int       // site whose proposal returns NaN; -1 disables

	measured  int
	finalized int
}

func newStubModel(sites int, deltas ...float64) *stubModel {
	if len(deltas) == 0 {
		deltas = []float64{-1}
	}
	return &stubModel{sites: sites, beta: 1, deltas: deltas, nanSite: -1}
}

func (m *stubModel) ConfigurationType() reflect.Type { return reflect.TypeOf([]float64(nil)) }

func (m *stubModel) SampleInitial(rng *rand.Rand) Configuration {
	if m.badType {
		return "bogus"
	}
	cfg := make([]float64, m.sites)
	for i := range cfg {
		cfg[i] = rng.Float64()
	}
	return cfg
}

func (m *stubModel) Energy(cfg Configuration) float64 {
	var sum float64
	for _, v := range cfg.([]float64) {
		sum += v
	}
	return sum
}

func (m *stubModel) Sites(cfg Configuration) int { return len(cfg.([]float64)) }

func (m *stubModel) Beta() float64 { return m.beta }

func (m *stubModel) ProposeLocal(site int, cfg Configuration, energy float64, rng *rand.Rand) (float64, MoveData) {
	if site == m.nanSite {
		return math.NaN(), nil
	}
	d := m.deltas[site%len(m.deltas)]
	return d, d
}

func (m *stubModel) AcceptLocal(site int, cfg Configuration, energy float64, move MoveData, delta float64) {
	cfg.([]float64)[site] += delta
}

func (m *stubModel) GlobalMove(cfg Configuration, energy *float64, rng *rand.Rand) bool {
	if !m.globalOK {
		return false
	}
	cfg.([]float64)[0] += m.globalShift
	*energy += m.globalShift
	return true
}

func (m *stubModel) PrepareObservables() *Registry {
	reg := NewRegistry()
	reg.MustAdd("energy")
	return reg
}

func (m *stubModel) Measure(reg *Registry, cfg Configuration, energy float64) {
	m.measured++
	reg.Record("energy", energy)
}

func (m *stubModel) Finalize(reg *Registry) { m.finalized++ }

// mustInitSim builds and initializes a simulation with a fixed seed.
func mustInitSim(t *testing.T, model Model, params Parameters) *Simulation {
	t.Helper()
	sim := New(model, WithParameters(params))
	if err := sim.Init(42); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return sim
}

func quietParams() Parameters {
	p := NewParameters()
	p.ReportInterval = 1 << 30 // no report boundaries unless a test wants them
	return p
}

func TestRun_BeforeInit(t *testing.T) {
	sim := New(newStubModel(4))
	_, err := sim.Run()
	assert.ErrorIs(t, err, ErrUninitialized)
}

func TestInit_ConfigurationTypeMismatch(t *testing.T) {
	m := newStubModel(4)
	m.badType = true
	sim := New(m)
	err := sim.Init(42)
	var mismatch *ConfigurationTypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, reflect.TypeOf([]float64(nil)), mismatch.Declared)
	assert.Equal(t, reflect.TypeOf(""), mismatch.Got)
}

func TestRun_AllProposalsAcceptedWhenDownhill(t *testing.T) {
	m := newStubModel(4, -1)
	sim := mustInitSim(t, m, quietParams())

	_, err := sim.Run(WithSweeps(10), WithThermalization(0))
	require.NoError(t, err)

	stats := sim.Stats()
	assert.Equal(t, int64(40), stats.PropLocal)
	assert.Equal(t, int64(40), stats.AccLocal)
	assert.Equal(t, 1.0, stats.AccRate)
}

func TestRun_ProposalCountIndependentOfAcceptance(t *testing.T) {
	m := newStubModel(3, 1)
	m.beta = 1e12 // uphill acceptance probability underflows to zero
	sim := mustInitSim(t, m, quietParams())

	_, err := sim.Run(WithSweeps(7), WithThermalization(0))
	require.NoError(t, err)

	stats := sim.Stats()
	assert.Equal(t, int64(21), stats.PropLocal)
	assert.Equal(t, int64(0), stats.AccLocal)
	assert.Equal(t, 0.0, stats.AccRate)
}

func TestRun_AcceptanceFractionDeterministicAtLargeBeta(t *testing.T) {
	// Sites alternate between a downhill and an uphill proposal; at
	// effectively infinite beta exactly half of all proposals are accepted.
	m := newStubModel(2, -1, 1)
	m.beta = 1e12
	sim := mustInitSim(t, m, quietParams())

	_, err := sim.Run(WithSweeps(100), WithThermalization(0))
	require.NoError(t, err)

	stats := sim.Stats()
	assert.Equal(t, int64(200), stats.PropLocal)
	assert.Equal(t, int64(100), stats.AccLocal)
	assert.Equal(t, 0.5, stats.AccRate)
}

func TestRun_EnergyMatchesRecompute(t *testing.T) {
	m := newStubModel(6, -0.5, 0.25, -1, 2)
	m.beta = 0.7
	sim := mustInitSim(t, m, quietParams())

	_, err := sim.Run(WithSweeps(50), WithThermalization(10))
	require.NoError(t, err)

	recomputed := m.Energy(sim.Configuration())
	assert.InEpsilon(t, recomputed, sim.Energy(), 1e-9)
}

func TestRun_GlobalMoveCadence(t *testing.T) {
	m := newStubModel(4, -1)
	m.globalOK = true
	m.globalShift = -2

	params := quietParams()
	params.GlobalMoves = true
	params.GlobalRate = 5
	sim := mustInitSim(t, m, params)

	_, err := sim.Run(WithSweeps(23), WithThermalization(0))
	require.NoError(t, err)

	stats := sim.Stats()
	assert.Equal(t, int64(4), stats.PropGlobal) // floor(23/5)
	assert.Equal(t, int64(4), stats.AccGlobal)
	assert.Equal(t, 1.0, stats.AccRateGlobal)

	// The model reconciled the energy for each accepted global move.
	assert.InEpsilon(t, m.Energy(sim.Configuration()), sim.Energy(), 1e-9)
}

func TestRun_RejectedGlobalMovesCountProposals(t *testing.T) {
	m := newStubModel(4, -1)
	m.globalOK = false

	params := quietParams()
	params.GlobalMoves = true
	params.GlobalRate = 2
	sim := mustInitSim(t, m, params)

	_, err := sim.Run(WithSweeps(10), WithThermalization(0))
	require.NoError(t, err)

	stats := sim.Stats()
	assert.Equal(t, int64(5), stats.PropGlobal)
	assert.Equal(t, int64(0), stats.AccGlobal)
	assert.Equal(t, 0.0, stats.AccRateGlobal)
}

func TestRun_MeasurementsExcludeThermalization(t *testing.T) {
	m := newStubModel(2, -1)
	sim := mustInitSim(t, m, quietParams())

	reg, err := sim.Run(WithSweeps(70), WithThermalization(30))
	require.NoError(t, err)

	assert.Equal(t, 70, m.measured)
	assert.Equal(t, 70, reg.Get("energy").Count())
}

func TestRun_ZeroSweeps(t *testing.T) {
	m := newStubModel(3, -1)
	sim := mustInitSim(t, m, quietParams())

	reg, err := sim.Run(WithSweeps(0), WithThermalization(0))
	require.NoError(t, err)

	assert.Equal(t, 0, reg.Get("energy").Count())
	assert.True(t, reg.Finalized())
	assert.Equal(t, 1, m.finalized)

	stats := sim.Stats()
	assert.Equal(t, int64(0), stats.PropLocal)
	assert.True(t, math.IsNaN(stats.AccRate))
	assert.True(t, math.IsNaN(stats.AccRateGlobal))
}

func TestRun_NumericalErrorCarriesContext(t *testing.T) {
	m := newStubModel(5, -1)
	m.nanSite = 3
	sim := mustInitSim(t, m, quietParams())

	_, err := sim.Run(WithSweeps(10), WithThermalization(0))
	var numErr *NumericalError
	require.ErrorAs(t, err, &numErr)
	assert.Equal(t, 1, numErr.Sweep)
	assert.Equal(t, 3, numErr.Site)
	assert.True(t, math.IsNaN(numErr.Delta))
}

func TestInit_TwiceResetsState(t *testing.T) {
	m := newStubModel(4, -1)
	sim := mustInitSim(t, m, quietParams())

	firstReg, err := sim.Run(WithSweeps(10), WithThermalization(0))
	require.NoError(t, err)
	require.NotZero(t, sim.Stats().PropLocal)

	require.NoError(t, sim.Init(42))

	stats := sim.Stats()
	assert.Equal(t, int64(0), stats.PropLocal)
	assert.Equal(t, int64(0), stats.AccLocal)
	assert.Equal(t, 0.0, stats.AccRate)
	assert.Empty(t, stats.IntervalDurations)

	// A fresh registry, not the finalized one from the previous chain.
	assert.NotSame(t, firstReg, sim.state.registry)
	assert.False(t, sim.state.registry.Finalized())
	assert.InEpsilon(t, m.Energy(sim.Configuration()), sim.Energy(), 1e-12)
}

func TestInit_SameSeedReproducesRun(t *testing.T) {
	run := func() (float64, int64) {
		m := newStubModel(8, 0.5, -0.5)
		m.beta = 1.0 // uphill moves accepted stochastically
		sim := New(m, WithParameters(quietParams()))
		if err := sim.Init(7); err != nil {
			t.Fatalf("Init: %v", err)
		}
		if _, err := sim.Run(WithSweeps(200), WithThermalization(0)); err != nil {
			t.Fatalf("Run: %v", err)
		}
		return sim.Energy(), sim.Stats().AccLocal
	}

	e1, a1 := run()
	e2, a2 := run()
	assert.Equal(t, e1, e2)
	assert.Equal(t, a1, a2)
}

func TestRun_OverridesUpdateStoredParameters(t *testing.T) {
	m := newStubModel(2, -1)
	sim := mustInitSim(t, m, quietParams())

	_, err := sim.Run(WithSweeps(7), WithThermalization(3))
	require.NoError(t, err)

	assert.Equal(t, 7, sim.Parameters().Sweeps)
	assert.Equal(t, 3, sim.Parameters().Thermalization)
}

func TestRun_AfterCompletionRequiresInit(t *testing.T) {
	m := newStubModel(2, -1)
	sim := mustInitSim(t, m, quietParams())

	_, err := sim.Run(WithSweeps(5), WithThermalization(0))
	require.NoError(t, err)

	_, err = sim.Run(WithSweeps(5), WithThermalization(0))
	assert.ErrorIs(t, err, ErrAlreadyFinalized)

	require.NoError(t, sim.Init(42))
	_, err = sim.Run(WithSweeps(5), WithThermalization(0))
	assert.NoError(t, err)
}

func TestRun_NotReentrant(t *testing.T) {
	m := newStubModel(2, -1)
	sim := mustInitSim(t, m, quietParams())

	sim.state.running = true
	_, err := sim.Run()
	assert.ErrorIs(t, err, ErrRunning)
}

// stepClock advances a fixed amount every time it is read, simulating
// elapsed wall-clock time between interval boundaries.
type stepClock struct {
	t    time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func TestRun_RecordsIntervalDurations(t *testing.T) {
	m := newStubModel(2, -1)
	params := NewParameters()
	params.ReportInterval = 10

	clock := &stepClock{t: time.Unix(0, 0), step: 250 * time.Millisecond}
	sim := New(m, WithParameters(params), WithClock(clock))
	require.NoError(t, sim.Init(42))

	_, err := sim.Run(WithSweeps(35), WithThermalization(0))
	require.NoError(t, err)

	stats := sim.Stats()
	require.Len(t, stats.IntervalDurations, 3) // boundaries at sweeps 10, 20, 30
	for _, d := range stats.IntervalDurations {
		assert.Equal(t, 250*time.Millisecond, d)
	}
	assert.Equal(t, 250*time.Millisecond, stats.MeanIntervalDuration())
}

func TestRun_RollingAccumulatorsResetAtReport(t *testing.T) {
	m := newStubModel(2, -1)
	params := NewParameters()
	params.ReportInterval = 5
	sim := New(m, WithParameters(params), WithClock(NewManualClock(time.Unix(0, 0))))
	require.NoError(t, sim.Init(42))

	// 10 sweeps = two full intervals; the rolling accumulator must be zeroed
	// at each boundary before final cumulative rates overwrite it.
	_, err := sim.Run(WithSweeps(10), WithThermalization(0))
	require.NoError(t, err)

	stats := sim.Stats()
	assert.Equal(t, int64(20), stats.PropLocal)
	assert.Equal(t, int64(20), stats.AccLocal)
	assert.Equal(t, 1.0, stats.AccRate) // cumulative ratio, not a stale rolling sum
	assert.Len(t, stats.IntervalDurations, 2)
}

func TestEnergy_NaNBeforeInit(t *testing.T) {
	sim := New(newStubModel(2))
	assert.True(t, math.IsNaN(sim.Energy()))
	assert.Nil(t, sim.Configuration())
	assert.Nil(t, sim.Stats())
}

func TestErrors_Unwrapping(t *testing.T) {
	err := error(&NumericalError{Sweep: 4, Site: 2, Delta: math.Inf(1)})
	var numErr *NumericalError
	assert.True(t, errors.As(err, &numErr))
	assert.Contains(t, err.Error(), "sweep 4")
	assert.Contains(t, err.Error(), "site 2")
}
