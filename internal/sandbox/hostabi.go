package sandbox

import (
	"strings"
	"unicode/utf8"
)

// hostState is the fresh per-invocation state the four host functions read
// and write. It is never shared across invocations.
type hostState struct {
	stdout       strings.Builder
	stderr       strings.Builder
	output       []byte
	input        []byte
	capabilities map[string]bool
	memoryPeak   uint64
}

func newHostState(input []byte, capabilities map[string]bool) *hostState {
	return &hostState{input: input, capabilities: capabilities}
}

func (h *hostState) can(capability string) bool {
	if h.capabilities == nil {
		return true
	}
	return h.capabilities[capability]
}

// boundsCheck validates ptr+len against a guest memory view of the given
// size using checked (overflow-safe) arithmetic, per spec 4.P's safety
// requirement. It returns the valid [ptr, ptr+len) slice bounds, or false.
func boundsCheck(memLen int, ptr, length int32) (start, end int, ok bool) {
	if ptr < 0 || length < 0 {
		return 0, 0, false
	}
	start = int(ptr)
	// int32 + int32 cannot overflow a 64-bit int; promote before adding.
	end64 := int64(ptr) + int64(length)
	if end64 > int64(memLen) {
		return 0, 0, false
	}
	return start, int(end64), true
}

func (h *hostState) logUTF8(mem []byte, ptr, length int32) {
	start, end, ok := boundsCheck(len(mem), ptr, length)
	if !ok {
		return
	}
	s := mem[start:end]
	if !utf8.Valid(s) {
		return
	}
	h.stdout.Write(s)
	h.stdout.WriteByte('\n')
}

func (h *hostState) writeOutput(mem []byte, ptr, length int32) {
	start, end, ok := boundsCheck(len(mem), ptr, length)
	if !ok {
		return
	}
	h.output = append(h.output, mem[start:end]...)
	if peak := uint64(len(h.output)); peak > h.memoryPeak {
		h.memoryPeak = peak
	}
}

func (h *hostState) readInput(mem []byte, ptr, length int32) int32 {
	start, end, ok := boundsCheck(len(mem), ptr, length)
	if !ok {
		return 0
	}
	n := copy(mem[start:end], h.input)
	return int32(n)
}

func (h *hostState) inputLen() int32 {
	return int32(len(h.input))
}

