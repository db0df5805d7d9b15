package mc

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Stats accumulates acceptance-rate and timing statistics over a run.
//
// Rolling fields cover the sweeps since the last progress report: the sweep
// loop adds 1/N per accepted local move (N sites) and 1 per accepted global
// move, the reporter divides by the opportunities in the interval and zeroes
// them again. Cumulative counters only grow until FinalizeRates overwrites
// the rolling rates with the whole-run ratios for the final report.
type Stats struct {
	AccRate       float64 // rolling local acceptance accumulator / final cumulative rate
	PropLocal     int64   // cumulative local proposals
	AccLocal      int64   // cumulative local acceptances
	AccRateGlobal float64 // rolling global acceptance accumulator / final cumulative rate
	PropGlobal    int64   // cumulative global proposals
	AccGlobal     int64   // cumulative global acceptances

	// IntervalDurations records the wall-clock duration of each completed
	// report interval.
	IntervalDurations []time.Duration
}

// NewStats returns a zeroed Stats.
func NewStats() *Stats {
	return &Stats{}
}

// Reset zeroes every field, rolling and cumulative.
func (s *Stats) Reset() {
	*s = Stats{}
}

// ResetRolling zeroes the rolling accumulators at a report boundary.
func (s *Stats) ResetRolling() {
	s.AccRate = 0
	s.AccRateGlobal = 0
}

// FinalizeRates overwrites the rolling rates with the cumulative whole-run
// ratios. A channel with zero proposals reports NaN rather than panicking;
// sweeps=0 runs are legal.
func (s *Stats) FinalizeRates() {
	s.AccRate = ratio(s.AccLocal, s.PropLocal)
	s.AccRateGlobal = ratio(s.AccGlobal, s.PropGlobal)
}

// CumulativeGlobalRate returns the global acceptance ratio over the whole
// run so far, NaN when no global move has been proposed.
func (s *Stats) CumulativeGlobalRate() float64 {
	return ratio(s.AccGlobal, s.PropGlobal)
}

// MeanIntervalDuration returns the mean wall-clock duration of the recorded
// report intervals, zero when none completed.
func (s *Stats) MeanIntervalDuration() time.Duration {
	if len(s.IntervalDurations) == 0 {
		return 0
	}
	secs := make([]float64, len(s.IntervalDurations))
	for i, d := range s.IntervalDurations {
		secs[i] = d.Seconds()
	}
	return time.Duration(stat.Mean(secs, nil) * float64(time.Second))
}

func ratio(acc, prop int64) float64 {
	if prop == 0 {
		return math.NaN()
	}
	return float64(acc) / float64(prop)
}
