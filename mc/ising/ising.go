// Package ising implements a two-dimensional Ising model for the mc engine:
// an LxL periodic square lattice with nearest-neighbor coupling J and
// external field H at inverse temperature beta. Local moves flip a single
// spin; the global move flips the whole lattice.
package ising

import (
	"fmt"
	"math"
	"math/rand"
	"reflect"

	"github.com/zyHan2077/montecarlo/mc"
)

// Spins is the Ising configuration: one spin (+1 or -1) per site, row-major
// over the LxL lattice.
type Spins []int8

// Observable names declared by PrepareObservables. All series are
// normalized to per-site values by Finalize.
const (
	ObsEnergy               = "E"
	ObsEnergySquared        = "E2"
	ObsMagnetization        = "M"
	ObsAbsMagnetization     = "|M|"
	ObsMagnetizationSquared = "M2"
)

// Model is a ferromagnetic (J > 0) 2D Ising model. Construct with New.
type Model struct {
	size     int
	beta     float64
	coupling float64
	field    float64
}

var _ mc.Model = (*Model)(nil)

// New constructs a size x size Ising model at inverse temperature beta.
func New(size int, beta, coupling, field float64) (*Model, error) {
	if size < 1 {
		return nil, fmt.Errorf("ising: lattice size must be positive, got %d", size)
	}
	return &Model{size: size, beta: beta, coupling: coupling, field: field}, nil
}

// Size returns the lattice side length.
func (m *Model) Size() int { return m.size }

func (m *Model) ConfigurationType() reflect.Type {
	return reflect.TypeOf(Spins(nil))
}

// SampleInitial draws an infinite-temperature configuration: every spin
// up or down with equal probability.
func (m *Model) SampleInitial(rng *rand.Rand) mc.Configuration {
	s := make(Spins, m.size*m.size)
	for i := range s {
		if rng.Float64() < 0.5 {
			s[i] = 1
		} else {
			s[i] = -1
		}
	}
	return s
}

func (m *Model) Sites(cfg mc.Configuration) int {
	return len(cfg.(Spins))
}

func (m *Model) Beta() float64 { return m.beta }

// Energy computes E = -J sum_<ij> s_i s_j - H sum_i s_i from scratch, each
// bond counted once via the right and down neighbors.
func (m *Model) Energy(cfg mc.Configuration) float64 {
	s := cfg.(Spins)
	L := m.size
	var bonds, mag float64
	for y := 0; y < L; y++ {
		for x := 0; x < L; x++ {
			si := float64(s[x+y*L])
			right := float64(s[(x+1)%L+y*L])
			down := float64(s[x+((y+1)%L)*L])
			bonds += si * (right + down)
			mag += si
		}
	}
	return -m.coupling*bonds - m.field*mag
}

// neighborSum returns the sum of the four nearest-neighbor spins of site i
// under periodic boundaries.
func (m *Model) neighborSum(s Spins, i int) float64 {
	L := m.size
	x, y := i%L, i/L
	sum := int(s[(x+1)%L+y*L]) + int(s[(x-1+L)%L+y*L]) +
		int(s[x+((y+1)%L)*L]) + int(s[x+((y-1+L)%L)*L])
	return float64(sum)
}

// ProposeLocal proposes flipping the spin at site. Flipping s_i changes the
// energy by 2*s_i*(J*neighborSum + H); the move needs no payload beyond the
// site index.
func (m *Model) ProposeLocal(site int, cfg mc.Configuration, energy float64, rng *rand.Rand) (float64, mc.MoveData) {
	s := cfg.(Spins)
	si := float64(s[site])
	return 2 * si * (m.coupling*m.neighborSum(s, site) + m.field), nil
}

func (m *Model) AcceptLocal(site int, cfg mc.Configuration, energy float64, move mc.MoveData, delta float64) {
	s := cfg.(Spins)
	s[site] = -s[site]
}

// GlobalMove proposes flipping every spin at once. The bond term is
// invariant under a full flip, so only the field term changes:
// dE = 2*H*sum_i s_i. The move runs its own Metropolis test and reconciles
// the energy on acceptance; at H=0 it is always accepted.
func (m *Model) GlobalMove(cfg mc.Configuration, energy *float64, rng *rand.Rand) bool {
	s := cfg.(Spins)
	var mag float64
	for _, v := range s {
		mag += float64(v)
	}
	delta := 2 * m.field * mag
	if delta > 0 && rng.Float64() >= math.Exp(-m.beta*delta) {
		return false
	}
	for i := range s {
		s[i] = -s[i]
	}
	*energy += delta
	return true
}

func (m *Model) PrepareObservables() *mc.Registry {
	reg := mc.NewRegistry()
	for _, name := range []string{ObsEnergy, ObsEnergySquared, ObsMagnetization, ObsAbsMagnetization, ObsMagnetizationSquared} {
		reg.MustAdd(name)
	}
	return reg
}

// Measure records raw lattice totals; Finalize rescales them to per-site
// values once at the end of the run.
func (m *Model) Measure(reg *mc.Registry, cfg mc.Configuration, energy float64) {
	s := cfg.(Spins)
	var mag float64
	for _, v := range s {
		mag += float64(v)
	}
	reg.Record(ObsEnergy, energy)
	reg.Record(ObsEnergySquared, energy*energy)
	reg.Record(ObsMagnetization, mag)
	reg.Record(ObsAbsMagnetization, math.Abs(mag))
	reg.Record(ObsMagnetizationSquared, mag*mag)
}

// Finalize normalizes every series by the site count (squared observables by
// the count squared). The registry guarantees this runs once.
func (m *Model) Finalize(reg *mc.Registry) {
	n := float64(m.size * m.size)
	reg.Apply(ObsEnergy, func(v float64) float64 { return v / n })
	reg.Apply(ObsEnergySquared, func(v float64) float64 { return v / (n * n) })
	reg.Apply(ObsMagnetization, func(v float64) float64 { return v / n })
	reg.Apply(ObsAbsMagnetization, func(v float64) float64 { return v / n })
	reg.Apply(ObsMagnetizationSquared, func(v float64) float64 { return v / (n * n) })
}
