package safety

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Guardian evaluates pending actions against the configured approval
// mode and deny-lists, and records every decision to an append-only,
// bounded audit log.
type Guardian struct {
	cfg Config

	mu    sync.Mutex
	audit []AuditEntry
	cap   int
}

const defaultAuditCapacity = 10_000

// New creates a Guardian with the given config. auditCapacity bounds
// the in-memory ring buffer (0 selects the spec default of 10,000).
func New(cfg Config, auditCapacity int) *Guardian {
	if auditCapacity <= 0 {
		auditCapacity = defaultAuditCapacity
	}
	return &Guardian{cfg: cfg, cap: auditCapacity}
}

// CheckPermission evaluates action against hard deny-lists first, then
// the configured approval mode, recording an audit entry for the
// outcome either way.
func (g *Guardian) CheckPermission(sessionID string, action Action) Decision {
	decision := g.evaluate(action)
	g.recordAudit(sessionID, AuditEvent{
		Kind:    EventRequest,
		Action:  action,
		Outcome: decision,
	})
	return decision
}

func (g *Guardian) evaluate(action Action) Decision {
	if action.Path != "" && MatchAny(g.cfg.DeniedPaths, action.Path) {
		return Denied("path matches a denied pattern")
	}
	if action.Command != "" && MatchCommand(g.cfg.DeniedCommands, action.Command) {
		return Denied("command matches a denied pattern")
	}
	if action.Host != "" && !MatchHost(g.cfg.AllowedHosts, action.Host) {
		return Denied("host is not in the allowed list")
	}

	switch g.cfg.ApprovalMode {
	case ModeYolo:
		return Allowed()
	case ModeSafe:
		if action.RiskLevel == RiskReadOnly {
			return Allowed()
		}
		return RequiresApproval("action is not read-only")
	case ModeCautious:
		if action.RiskLevel == RiskReadOnly || action.RiskLevel == RiskWrite {
			return Allowed()
		}
		return RequiresApproval("action is destructive")
	case ModeParanoid:
		return RequiresApproval("paranoid mode requires approval for every action")
	default:
		// Unknown mode: fail closed.
		return RequiresApproval("unrecognized approval mode")
	}
}

// RecordApprovalRequested logs that a human was asked to approve action.
func (g *Guardian) RecordApprovalRequested(sessionID string, action Action, context string) {
	g.recordAudit(sessionID, AuditEvent{
		Kind:   EventApprovalRequested,
		Action: action,
		Detail: context,
	})
}

// RecordApprovalDecision logs a human's approve/deny decision for a
// previously requested approval.
func (g *Guardian) RecordApprovalDecision(sessionID string, action Action, approved bool, reason string) {
	outcome := Denied(reason)
	if approved {
		outcome = Allowed()
	}
	g.recordAudit(sessionID, AuditEvent{
		Kind:    EventApprovalDecision,
		Action:  action,
		Outcome: outcome,
		Detail:  reason,
	})
}

// RecordExecute logs that action actually ran.
func (g *Guardian) RecordExecute(sessionID string, action Action, detail string) {
	g.recordAudit(sessionID, AuditEvent{
		Kind:   EventExecute,
		Action: action,
		Detail: detail,
	})
}

// recordAudit appends to the ring buffer. Per spec.md §7, the audit
// log is the one component that MUST succeed on write — capacity
// eviction of the oldest entry is not an error.
func (g *Guardian) recordAudit(sessionID string, event AuditEvent) {
	g.mu.Lock()
	defer g.mu.Unlock()
	entry := AuditEntry{
		ID:        uuid.New(),
		Timestamp: time.Now(),
		SessionID: sessionID,
		Event:     event,
	}
	g.audit = append(g.audit, entry)
	if len(g.audit) > g.cap {
		evicted := len(g.audit) - g.cap
		slog.Debug("safety: audit ring buffer evicting oldest entries", "count", evicted)
		g.audit = g.audit[evicted:]
	}
}

// AuditLog returns a snapshot of the current audit entries, oldest first.
func (g *Guardian) AuditLog() []AuditEntry {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]AuditEntry, len(g.audit))
	copy(out, g.audit)
	return out
}
