package mc

// Parameters groups the run configuration of a simulation. Read-only while a
// run is in progress; Run's override options write back into the stored copy
// before the loop starts.
type Parameters struct {
	GlobalMoves    bool // enable the model's global-move hook
	GlobalRate     int  // attempt a global move every GlobalRate-th sweep
	Thermalization int  // leading sweeps excluded from measurement
	Sweeps         int  // measurement sweeps
	ReportInterval int  // sweeps between progress reports
}

// NewParameters returns the default run configuration.
func NewParameters() Parameters {
	return Parameters{
		GlobalMoves:    false,
		GlobalRate:     5,
		Thermalization: 0,
		Sweeps:         1000,
		ReportInterval: 1000,
	}
}
