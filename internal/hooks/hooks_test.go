package hooks

import (
	"context"
	"testing"
	"time"
)

func TestFireNoHooksReturnsContinue(t *testing.T) {
	r := New()
	out := r.Fire(context.Background(), "pre_tool", nil)
	if len(out) != 1 || out[0].Kind != OutcomeContinue {
		t.Fatalf("expected single Continue outcome, got %+v", out)
	}
}

func TestFireExitZeroIsContinue(t *testing.T) {
	r := New()
	r.Register(Hook{Event: "pre_tool", Command: "exit 0", Enabled: true})
	out := r.Fire(context.Background(), "pre_tool", map[string]string{"tool": "bash"})
	if len(out) != 1 || out[0].Kind != OutcomeContinue {
		t.Fatalf("expected Continue, got %+v", out)
	}
}

func TestFireExitOneIsBlockWithStderr(t *testing.T) {
	r := New()
	r.Register(Hook{Event: "pre_tool", Command: "echo denied >&2; exit 1", Enabled: true})
	out := r.Fire(context.Background(), "pre_tool", nil)
	if len(out) != 1 || out[0].Kind != OutcomeBlock || out[0].Reason != "denied" {
		t.Fatalf("expected Block with stderr reason, got %+v", out)
	}
}

func TestFireExitTwoParsesJSONModify(t *testing.T) {
	r := New()
	r.Register(Hook{Event: "pre_tool", Command: `echo '{"path":"/tmp/x"}'; exit 2`, Enabled: true})
	out := r.Fire(context.Background(), "pre_tool", nil)
	if len(out) != 1 || out[0].Kind != OutcomeModify || out[0].Patch["path"] != "/tmp/x" {
		t.Fatalf("expected Modify with parsed patch, got %+v", out)
	}
}

func TestFireExitTwoInvalidJSONDowngradesToContinue(t *testing.T) {
	r := New()
	r.Register(Hook{Event: "pre_tool", Command: `echo 'not json'; exit 2`, Enabled: true})
	out := r.Fire(context.Background(), "pre_tool", nil)
	if len(out) != 1 || out[0].Kind != OutcomeContinue {
		t.Fatalf("expected downgrade to Continue on invalid JSON, got %+v", out)
	}
}

func TestFireOtherExitCodeIsContinue(t *testing.T) {
	r := New()
	r.Register(Hook{Event: "pre_tool", Command: "exit 7", Enabled: true})
	out := r.Fire(context.Background(), "pre_tool", nil)
	if len(out) != 1 || out[0].Kind != OutcomeContinue {
		t.Fatalf("expected Continue for unrecognized exit code, got %+v", out)
	}
}

func TestFireTimeoutIsBlock(t *testing.T) {
	r := New()
	r.runCommand = func(ctx context.Context, timeout time.Duration, command string, env []string) (string, string, int, bool) {
		return "", "", -1, true
	}
	r.Register(Hook{Event: "pre_tool", Command: "sleep 10", TimeoutMS: 10, Enabled: true})
	out := r.Fire(context.Background(), "pre_tool", nil)
	if len(out) != 1 || out[0].Kind != OutcomeBlock || out[0].Reason != "Hook timed out" {
		t.Fatalf("expected Block(Hook timed out), got %+v", out)
	}
}

func TestBlockHaltsFurtherHooks(t *testing.T) {
	r := New()
	r.Register(Hook{Event: "pre_tool", Command: "exit 1", Enabled: true})
	r.Register(Hook{Event: "pre_tool", Command: "exit 0", Enabled: true})
	out := r.Fire(context.Background(), "pre_tool", nil)
	if len(out) != 1 {
		t.Fatalf("expected only the first (blocking) hook to run, got %d outcomes", len(out))
	}
}

func TestDisabledHooksAreSkipped(t *testing.T) {
	r := New()
	r.Register(Hook{Event: "pre_tool", Command: "exit 1", Enabled: false})
	out := r.Fire(context.Background(), "pre_tool", nil)
	if len(out) != 1 || out[0].Kind != OutcomeContinue {
		t.Fatalf("expected disabled hook to be skipped leaving Continue default, got %+v", out)
	}
}

func TestEnvVarsExported(t *testing.T) {
	r := New()
	var capturedEnv []string
	r.runCommand = func(ctx context.Context, timeout time.Duration, command string, env []string) (string, string, int, bool) {
		capturedEnv = env
		return "", "", 0, false
	}
	r.Register(Hook{Event: "tool_complete", Command: "noop", Enabled: true})
	r.Fire(context.Background(), "tool_complete", map[string]string{"tool": "bash", "success": "true"})

	found := map[string]bool{}
	for _, e := range capturedEnv {
		found[e] = true
	}
	if !found["RUSTANT_HOOK_EVENT=tool_complete"] || !found["RUSTANT_HOOK_TOOL=bash"] || !found["RUSTANT_HOOK_SUCCESS=true"] {
		t.Fatalf("expected event vars exported, got %v", capturedEnv)
	}
}
