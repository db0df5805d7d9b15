package mc

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Observable accumulates the measurement series of one named quantity.
// Samples are appended through the owning Registry; the accessors may be
// read at any time.
type Observable struct {
	name   string
	series []float64
}

// Name returns the observable's registry name.
func (o *Observable) Name() string { return o.name }

// Count returns the number of recorded samples.
func (o *Observable) Count() int { return len(o.series) }

// Series returns the recorded samples. The slice is the accumulator's own
// backing store; callers must not mutate it.
func (o *Observable) Series() []float64 { return o.series }

// Mean returns the sample mean, NaN when no samples were recorded.
func (o *Observable) Mean() float64 {
	if len(o.series) == 0 {
		return math.NaN()
	}
	return stat.Mean(o.series, nil)
}

// Variance returns the unbiased sample variance, NaN with fewer than two
// samples.
func (o *Observable) Variance() float64 {
	if len(o.series) < 2 {
		return math.NaN()
	}
	return stat.Variance(o.series, nil)
}

// StdErr returns the naive standard error of the mean, with no
// autocorrelation correction.
func (o *Observable) StdErr() float64 {
	if len(o.series) < 2 {
		return math.NaN()
	}
	return stat.StdErr(stat.StdDev(o.series, nil), float64(len(o.series)))
}

// Registry is the named collection of observable accumulators belonging to
// one run. Names are unique at declaration; accumulation is append-only;
// Finalize seals it exactly once. A fresh Registry is created at every
// (re)initialization, so no accumulator outlives two Inits.
type Registry struct {
	names     []string
	obs       map[string]*Observable
	finalized bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{obs: make(map[string]*Observable)}
}

// Add declares a new observable. A duplicate name fails with
// DuplicateObservableError.
func (r *Registry) Add(name string) (*Observable, error) {
	if _, ok := r.obs[name]; ok {
		return nil, &DuplicateObservableError{Name: name}
	}
	o := &Observable{name: name}
	r.obs[name] = o
	r.names = append(r.names, name)
	return o, nil
}

// MustAdd is Add for static observable sets known to be duplicate-free.
func (r *Registry) MustAdd(name string) *Observable {
	o, err := r.Add(name)
	if err != nil {
		panic(err)
	}
	return o
}

// Record appends one sample to the named accumulator. Fails with
// ErrAlreadyFinalized once the registry is sealed.
func (r *Registry) Record(name string, v float64) error {
	if r.finalized {
		return ErrAlreadyFinalized
	}
	o, ok := r.obs[name]
	if !ok {
		return &UnknownObservableError{Name: name}
	}
	o.series = append(o.series, v)
	return nil
}

// Apply replaces every recorded sample of the named accumulator with
// f(sample). Intended for one-time post-processing (e.g. normalization) in a
// model's Finalize hook, which runs before the registry is sealed.
func (r *Registry) Apply(name string, f func(float64) float64) error {
	if r.finalized {
		return ErrAlreadyFinalized
	}
	o, ok := r.obs[name]
	if !ok {
		return &UnknownObservableError{Name: name}
	}
	for i, v := range o.series {
		o.series[i] = f(v)
	}
	return nil
}

// Get returns the named accumulator, nil when it was never declared.
func (r *Registry) Get(name string) *Observable {
	return r.obs[name]
}

// Names returns the observable names in declaration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Finalized reports whether the registry has been sealed.
func (r *Registry) Finalized() bool { return r.finalized }

// Finalize seals the registry. A second call fails with ErrAlreadyFinalized
// and leaves the accumulated values untouched.
func (r *Registry) Finalize() error {
	if r.finalized {
		return ErrAlreadyFinalized
	}
	r.finalized = true
	return nil
}
