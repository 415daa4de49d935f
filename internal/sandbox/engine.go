package sandbox

import (
	"strings"
	"time"

	"github.com/bytecodealliance/wasmtime-go/v28"
)

// Engine runs guest WASM modules under a fuel budget against the fixed
// host ABI (host_log, host_write_output, host_read_input,
// host_get_input_len). A fresh Store (and host state) is created per
// invocation so concurrent Executes never share guest memory.
type Engine struct {
	engine *wasmtime.Engine
}

// NewEngine creates an Engine with fuel consumption and epoch-based
// interruption enabled, so a wall-clock timeout can be enforced alongside
// the fuel budget.
func NewEngine() *Engine {
	cfg := wasmtime.NewConfig()
	cfg.SetConsumeFuel(true)
	cfg.SetEpochInterruption(true)
	return &Engine{engine: wasmtime.NewEngineWithConfig(cfg)}
}

// Execute validates, instantiates, and runs moduleBytes against input under
// cfg's resource limits, per spec 4.P's numbered procedure.
func (e *Engine) Execute(moduleBytes []byte, input []byte, cfg Config) (Result, error) {
	module, err := wasmtime.NewModule(e.engine, moduleBytes)
	if err != nil {
		return Result{}, &Error{Kind: ErrModuleInvalid, Message: err.Error()}
	}

	store := wasmtime.NewStore(e.engine)
	if err := store.SetFuel(cfg.ResourceLimits.MaxFuel); err != nil {
		return Result{}, &Error{Kind: ErrModuleInvalid, Message: "seed fuel: " + err.Error()}
	}

	if cfg.ResourceLimits.MaxTime > 0 {
		store.SetEpochDeadline(1)
		timer := time.AfterFunc(cfg.ResourceLimits.MaxTime, e.engine.IncrementEpoch)
		defer timer.Stop()
	}

	if cfg.ResourceLimits.MaxMemoryBytes > 0 {
		store.Limiter(int64(cfg.ResourceLimits.MaxMemoryBytes), -1, -1, -1, -1)
	}

	state := newHostState(input, cfg.Capabilities)

	linker := wasmtime.NewLinker(e.engine)
	if err := e.defineHostFunctions(linker, store, state); err != nil {
		return Result{}, &Error{Kind: ErrModuleInvalid, Message: err.Error()}
	}

	instance, err := linker.Instantiate(store, module)
	if err != nil {
		return Result{}, mapEngineError(err)
	}

	mem := instance.GetExport(store, "memory")
	if mem == nil || mem.Memory() == nil {
		return Result{}, &Error{Kind: ErrModuleInvalid, Message: "module does not export memory"}
	}

	if err := e.invoke(store, instance, input); err != nil {
		return Result{}, mapEngineError(err)
	}

	remaining, ok := store.FuelConsumed()
	var consumed uint64
	if ok {
		consumed = remaining
	}

	peak := state.memoryPeak
	if memLen := uint64(len(mem.Memory().UnsafeData(store))); memLen > peak {
		peak = memLen
	}

	return Result{
		Output:       state.output,
		Logs:         splitLogLines(state.stdout.String()),
		FuelConsumed: consumed,
		MemoryPeak:   peak,
	}, nil
}

// invoke prefers the export execute(ptr,len)->i32 called with (0,
// len(input)); falls back to _start() if execute is not exported.
func (e *Engine) invoke(store *wasmtime.Store, instance *wasmtime.Instance, input []byte) error {
	if execFn := instance.GetFunc(store, "execute"); execFn != nil {
		_, err := execFn.Call(store, int32(0), int32(len(input)))
		return err
	}
	if startFn := instance.GetFunc(store, "_start"); startFn != nil {
		_, err := startFn.Call(store)
		return err
	}
	return &Error{Kind: ErrExecutionFailed, Message: "module exports neither execute(i32,i32) nor _start()"}
}

func (e *Engine) defineHostFunctions(linker *wasmtime.Linker, store *wasmtime.Store, state *hostState) error {
	memOf := func(caller *wasmtime.Caller) []byte {
		export := caller.GetExport("memory")
		if export == nil || export.Memory() == nil {
			return nil
		}
		return export.Memory().UnsafeData(caller)
	}

	if err := linker.FuncWrap("env", "host_log", func(caller *wasmtime.Caller, ptr, length int32) {
		if !state.can("log") {
			return
		}
		state.logUTF8(memOf(caller), ptr, length)
	}); err != nil {
		return err
	}

	if err := linker.FuncWrap("env", "host_write_output", func(caller *wasmtime.Caller, ptr, length int32) {
		if !state.can("output") {
			return
		}
		state.writeOutput(memOf(caller), ptr, length)
	}); err != nil {
		return err
	}

	if err := linker.FuncWrap("env", "host_read_input", func(caller *wasmtime.Caller, ptr, length int32) int32 {
		if !state.can("input") {
			return 0
		}
		return state.readInput(memOf(caller), ptr, length)
	}); err != nil {
		return err
	}

	if err := linker.FuncWrap("env", "host_get_input_len", func(caller *wasmtime.Caller) int32 {
		return state.inputLen()
	}); err != nil {
		return err
	}

	return nil
}

func mapEngineError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "fuel"):
		return &Error{Kind: ErrOutOfFuel, Message: err.Error()}
	case strings.Contains(msg, "epoch") || strings.Contains(msg, "interrupt"):
		return &Error{Kind: ErrTimeout, Message: err.Error()}
	default:
		return &Error{Kind: ErrExecutionFailed, Message: err.Error()}
	}
}

func splitLogLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
