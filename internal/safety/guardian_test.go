package safety

import "testing"

func TestModeEquivalencesReadOnly(t *testing.T) {
	action := Action{RiskLevel: RiskReadOnly, Path: "src/main.go"}
	for _, mode := range []ApprovalMode{ModeYolo, ModeSafe, ModeCautious} {
		g := New(Config{ApprovalMode: mode}, 0)
		got := g.CheckPermission("s1", action)
		if got.Kind != DecisionAllowed {
			t.Errorf("mode %s: expected Allowed for read-only action, got %v", mode, got.Kind)
		}
	}

	g := New(Config{ApprovalMode: ModeParanoid}, 0)
	got := g.CheckPermission("s1", action)
	if got.Kind != DecisionRequiresApproval {
		t.Errorf("paranoid mode: expected RequiresApproval, got %v", got.Kind)
	}
}

func TestModeEquivalencesDestructive(t *testing.T) {
	action := Action{RiskLevel: RiskDestructive, Path: "src/main.go"}
	for _, mode := range []ApprovalMode{ModeSafe, ModeCautious, ModeParanoid} {
		g := New(Config{ApprovalMode: mode}, 0)
		got := g.CheckPermission("s1", action)
		if got.Kind != DecisionRequiresApproval {
			t.Errorf("mode %s: expected RequiresApproval for destructive action, got %v", mode, got.Kind)
		}
	}

	g := New(Config{ApprovalMode: ModeYolo}, 0)
	got := g.CheckPermission("s1", action)
	if got.Kind != DecisionAllowed {
		t.Errorf("yolo mode: expected Allowed, got %v", got.Kind)
	}
}

func TestDenyPrecedesMode(t *testing.T) {
	g := New(Config{
		ApprovalMode: ModeYolo,
		DeniedPaths:  []string{"**/secrets/**"},
	}, 0)
	action := Action{RiskLevel: RiskReadOnly, Path: "config/secrets/api.key"}
	got := g.CheckPermission("s1", action)
	if got.Kind != DecisionDenied {
		t.Fatalf("expected Denied regardless of Yolo mode, got %v", got.Kind)
	}
}

func TestAuditLogRecordsOutcome(t *testing.T) {
	g := New(Config{ApprovalMode: ModeSafe}, 0)
	g.CheckPermission("session-a", Action{RiskLevel: RiskWrite})
	log := g.AuditLog()
	if len(log) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(log))
	}
	if log[0].SessionID != "session-a" {
		t.Fatalf("expected session id to be recorded")
	}
	if log[0].Event.Outcome.Kind != DecisionRequiresApproval {
		t.Fatalf("expected RequiresApproval outcome recorded")
	}
}

func TestAuditRingBufferEviction(t *testing.T) {
	g := New(Config{ApprovalMode: ModeYolo}, 3)
	for i := 0; i < 5; i++ {
		g.CheckPermission("s", Action{RiskLevel: RiskReadOnly})
	}
	log := g.AuditLog()
	if len(log) != 3 {
		t.Fatalf("expected ring buffer capped at 3, got %d", len(log))
	}
}
