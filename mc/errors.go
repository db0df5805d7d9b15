package mc

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrUninitialized is returned by Run when Init has not been called.
	ErrUninitialized = errors.New("mc: simulation not initialized")

	// ErrRunning is returned by Run when a run is already in progress.
	ErrRunning = errors.New("mc: run already in progress")

	// ErrAlreadyFinalized is returned when a registry is finalized a second
	// time, or mutated after finalization.
	ErrAlreadyFinalized = errors.New("mc: observable registry already finalized")
)

// ConfigurationTypeMismatchError reports that a model's declared
// configuration type does not match what SampleInitial produced.
type ConfigurationTypeMismatchError struct {
	Declared reflect.Type
	Got      reflect.Type
}

func (e *ConfigurationTypeMismatchError) Error() string {
	return fmt.Sprintf("mc: configuration type mismatch: model declares %v, SampleInitial returned %v",
		e.Declared, e.Got)
}

// NumericalError reports a non-finite energy delta from a local proposal.
// Sweep is the 1-based sweep index; Site is the lattice site of the
// offending proposal.
type NumericalError struct {
	Sweep int
	Site  int
	Delta float64
}

func (e *NumericalError) Error() string {
	return fmt.Sprintf("mc: non-finite energy delta %v at sweep %d, site %d", e.Delta, e.Sweep, e.Site)
}

// DuplicateObservableError reports a second declaration of an observable
// name within one registry.
type DuplicateObservableError struct {
	Name string
}

func (e *DuplicateObservableError) Error() string {
	return fmt.Sprintf("mc: duplicate observable %q", e.Name)
}

// UnknownObservableError reports a measurement into a name the registry
// never declared.
type UnknownObservableError struct {
	Name string
}

func (e *UnknownObservableError) Error() string {
	return fmt.Sprintf("mc: unknown observable %q", e.Name)
}
