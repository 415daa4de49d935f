// Package sandbox implements the fuel-metered WASM sandbox: untrusted
// guest modules execute against a fixed host ABI, with fuel and memory
// caps enforced by the wasmtime engine (spec 4.P). This supersedes the
// upstream Docker-based sandbox.Manager — a fundamentally different
// isolation model not adapted here (see DESIGN.md).
package sandbox

import "time"

// ResourceLimits bounds a single sandbox invocation.
type ResourceLimits struct {
	MaxFuel         uint64
	MaxMemoryBytes  uint64
	MaxTime         time.Duration
}

// Config is the full per-invocation sandbox configuration.
type Config struct {
	ResourceLimits ResourceLimits
	Capabilities   map[string]bool
}

// ErrorKind classifies why a sandbox invocation failed.
type ErrorKind string

const (
	ErrModuleInvalid   ErrorKind = "module_invalid"
	ErrOutOfFuel       ErrorKind = "out_of_fuel"
	ErrExecutionFailed ErrorKind = "execution_failed"
	ErrTimeout         ErrorKind = "timeout"
)

// Error wraps a sandbox failure with its classification.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.Message }

// Result is the successful outcome of an invocation.
type Result struct {
	Output       []byte
	Logs         []string
	FuelConsumed uint64
	MemoryPeak   uint64
}
