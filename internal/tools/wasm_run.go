package tools

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/nextlevelbuilder/goclaw/internal/sandbox"
)

// WasmRunTool executes an untrusted guest WASM module through the fuel-metered
// sandbox (internal/sandbox) instead of running agent-authored code directly
// on the host. This is the replacement for the upstream Docker-based
// sandboxed exec/read-file tools, which assumed a mounted container
// filesystem that the new isolation model doesn't provide (see DESIGN.md).
type WasmRunTool struct {
	engine *sandbox.Engine
	cfg    sandbox.Config
}

func NewWasmRunTool(engine *sandbox.Engine, cfg sandbox.Config) *WasmRunTool {
	return &WasmRunTool{engine: engine, cfg: cfg}
}

func (t *WasmRunTool) Name() string { return "run_wasm" }
func (t *WasmRunTool) Description() string {
	return "Run a WASM module under a fuel and memory budget, returning its output and logs. Use this for untrusted or agent-generated code instead of exec."
}

func (t *WasmRunTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"module_path": map[string]interface{}{
				"type":        "string",
				"description": "Path to a compiled .wasm module on disk (mutually exclusive with module_base64)",
			},
			"module_base64": map[string]interface{}{
				"type":        "string",
				"description": "Base64-encoded WASM module bytes (mutually exclusive with module_path)",
			},
			"input": map[string]interface{}{
				"type":        "string",
				"description": "Input bytes passed to the module's execute(ptr,len) export, UTF-8 encoded",
			},
		},
	}
}

func (t *WasmRunTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	var moduleBytes []byte
	if path, _ := args["module_path"].(string); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return ErrorResult(fmt.Sprintf("failed to read module: %v", err))
		}
		moduleBytes = b
	} else if b64, _ := args["module_base64"].(string); b64 != "" {
		b, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return ErrorResult(fmt.Sprintf("invalid module_base64: %v", err))
		}
		moduleBytes = b
	} else {
		return ErrorResult("one of module_path or module_base64 is required")
	}

	input, _ := args["input"].(string)

	result, err := t.engine.Execute(moduleBytes, []byte(input), t.cfg)
	if err != nil {
		if se, ok := err.(*sandbox.Error); ok {
			return ErrorResult(fmt.Sprintf("sandbox %s: %s", se.Kind, se.Message))
		}
		return ErrorResult(err.Error())
	}

	var sb strings.Builder
	sb.WriteString(string(result.Output))
	if len(result.Logs) > 0 {
		sb.WriteString("\n\nlogs:\n")
		sb.WriteString(strings.Join(result.Logs, "\n"))
	}
	sb.WriteString(fmt.Sprintf("\n\n(fuel consumed: %d, memory peak: %d bytes)", result.FuelConsumed, result.MemoryPeak))
	return SilentResult(sb.String())
}
