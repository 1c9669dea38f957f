package cellrun

import "fmt"

// Execution models. Both are functionally equivalent; Message mirrors the
// rank-0/remote-rank send/receive protocol with a per-round barrier, Pool
// joins a bounded worker pool on every round instead.
const (
	ModeMessage = "message"
	ModePool    = "pool"
)

// Config is a serialisable representation of an experiment run
// configuration. The zero value is not useful on its own; start from
// DefaultConfig and override.
type Config struct {
	// Name is the experiment name; it names the results artifact. When empty
	// the artifact falls back to the current date.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Workers is the total worker count, the coordinator included.
	Workers int `json:"workers" yaml:"workers"`

	// CellCount is the number of replicates simulated per condition.
	CellCount int `json:"cellCount" yaml:"cellCount"`

	// Mode selects the execution model.
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty"`

	// Start is the simulation start time.
	Start float64 `json:"start,omitempty" yaml:"start,omitempty"`

	// ReportingStep is the fixed step between reported simulation rows.
	ReportingStep float64 `json:"reportingStep,omitempty" yaml:"reportingStep,omitempty"`

	// CacheDir is the durable result cache location.
	CacheDir string `json:"cacheDir,omitempty" yaml:"cacheDir,omitempty"`

	// OutputDir is the results artifact directory.
	OutputDir string `json:"outputDir,omitempty" yaml:"outputDir,omitempty"`
}

// DefaultConfig returns a single-worker, single-cell configuration with the
// engine's default reporting cadence.
func DefaultConfig() *Config {
	return &Config{
		Workers:       1,
		CellCount:     1,
		Mode:          ModeMessage,
		Start:         0,
		ReportingStep: 30,
		CacheDir:      ".cache",
		OutputDir:     "results",
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be > 0")
	}
	if c.CellCount <= 0 {
		return fmt.Errorf("cellCount must be > 0")
	}
	if c.ReportingStep <= 0 {
		return fmt.Errorf("reportingStep must be > 0")
	}
	switch c.Mode {
	case ModeMessage, ModePool:
	default:
		return fmt.Errorf("unknown execution mode %q", c.Mode)
	}
	return nil
}
