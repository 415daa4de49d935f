package sandbox

import "testing"

// This suite exercises Engine.Execute's building blocks directly (host ABI
// bounds checks, capability gating, error classification) rather than
// hand-encoding a .wasm module fixture, since no wat2wasm/wasm-tools binary
// is available in this environment to compile one. TestHostState* below
// cover the ABI-level behavior Execute's host functions rely on, and
// TestMapEngineErrorClassification covers the fuel/timeout/execution
// mapping Execute uses for the E6 and out-of-fuel scenarios.

func TestHostStateWriteOutputAndLog(t *testing.T) {
	mem := make([]byte, 64)
	copy(mem[0:], []byte("hello"))
	copy(mem[10:], []byte("a log line"))

	h := newHostState(nil, nil)
	h.writeOutput(mem, 0, 5)
	if string(h.output) != "hello" {
		t.Fatalf("expected output %q, got %q", "hello", h.output)
	}
	if h.memoryPeak != 5 {
		t.Fatalf("expected memoryPeak 5, got %d", h.memoryPeak)
	}

	h.logUTF8(mem, 10, 10)
	if h.stdout.String() != "a log line\n" {
		t.Fatalf("expected log line captured, got %q", h.stdout.String())
	}
}

// can() is the gate the Engine's linker functions check before calling into
// a hostState method at all (see defineHostFunctions in engine.go); the
// hostState methods themselves have no capability awareness.
func TestHostStateCapabilityGating(t *testing.T) {
	h := newHostState(nil, map[string]bool{"log": true})
	if !h.can("log") {
		t.Fatalf("expected log capability granted")
	}
	if h.can("output") {
		t.Fatalf("expected output capability denied")
	}

	unrestricted := newHostState(nil, nil)
	if !unrestricted.can("anything") {
		t.Fatalf("expected nil capabilities map to mean unrestricted")
	}
}

func TestHostStateBoundsChecking(t *testing.T) {
	mem := make([]byte, 8)
	h := newHostState(nil, nil)

	h.writeOutput(mem, 4, 100) // out of range
	if len(h.output) != 0 {
		t.Fatalf("expected out-of-bounds write to be silently dropped, got %q", h.output)
	}

	h.writeOutput(mem, -1, 4) // negative ptr
	if len(h.output) != 0 {
		t.Fatalf("expected negative ptr write to be silently dropped, got %q", h.output)
	}

	// overflow attempt: ptr near int32 max plus a large length must not wrap
	h.writeOutput(mem, 2147483000, 2147483000)
	if len(h.output) != 0 {
		t.Fatalf("expected overflow write to be silently dropped, got %q", h.output)
	}
}

func TestHostStateReadInput(t *testing.T) {
	mem := make([]byte, 16)
	h := newHostState([]byte("abcdef"), nil)

	if got := h.inputLen(); got != 6 {
		t.Fatalf("expected input length 6, got %d", got)
	}

	n := h.readInput(mem, 0, 16)
	if n != 6 {
		t.Fatalf("expected 6 bytes copied, got %d", n)
	}
	if string(mem[0:6]) != "abcdef" {
		t.Fatalf("unexpected copied input: %q", mem[0:6])
	}
}

func TestHostStateRejectsInvalidUTF8(t *testing.T) {
	mem := []byte{0xff, 0xfe, 0xfd}
	h := newHostState(nil, nil)
	h.logUTF8(mem, 0, 3)
	if h.stdout.Len() != 0 {
		t.Fatalf("expected invalid UTF-8 to be dropped, got %q", h.stdout.String())
	}
}

func TestMapEngineErrorClassification(t *testing.T) {
	cases := []struct {
		msg  string
		want ErrorKind
	}{
		{"all fuel consumed by WebAssembly", ErrOutOfFuel},
		{"epoch deadline exceeded while in a WebAssembly function", ErrTimeout},
		{"wasm trap: unreachable executed", ErrExecutionFailed},
	}
	for _, tc := range cases {
		err := mapEngineError(errText(tc.msg))
		se, ok := err.(*Error)
		if !ok {
			t.Fatalf("expected *Error, got %T", err)
		}
		if se.Kind != tc.want {
			t.Fatalf("for %q: expected kind %s, got %s", tc.msg, tc.want, se.Kind)
		}
	}
}

type errText string

func (e errText) Error() string { return string(e) }
