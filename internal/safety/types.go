// Package safety implements the safety guardian: policy-based
// permission checks over pending actions, with an append-only audit
// trail.
package safety

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalMode controls how aggressively the guardian requires
// human approval for actions that aren't hard-denied.
type ApprovalMode string

const (
	ModeYolo     ApprovalMode = "yolo"
	ModeSafe     ApprovalMode = "safe"
	ModeCautious ApprovalMode = "cautious"
	ModeParanoid ApprovalMode = "paranoid"
)

// RiskLevel classifies a pending action's blast radius.
type RiskLevel string

const (
	RiskReadOnly    RiskLevel = "read_only"
	RiskWrite       RiskLevel = "write"
	RiskDestructive RiskLevel = "destructive"
)

// Action is a pending operation submitted for a permission check.
type Action struct {
	Tool      string
	Path      string // filesystem path touched, if any
	Command   string // shell command, if any
	Host      string // network host touched, if any
	RiskLevel RiskLevel
}

// Decision is the result of CheckPermission.
type Decision struct {
	Kind    DecisionKind
	Reason  string // set for Denied
	Context string // set for RequiresApproval
}

type DecisionKind string

const (
	DecisionAllowed          DecisionKind = "allowed"
	DecisionDenied           DecisionKind = "denied"
	DecisionRequiresApproval DecisionKind = "requires_approval"
)

func Allowed() Decision { return Decision{Kind: DecisionAllowed} }
func Denied(reason string) Decision {
	return Decision{Kind: DecisionDenied, Reason: reason}
}
func RequiresApproval(context string) Decision {
	return Decision{Kind: DecisionRequiresApproval, Context: context}
}

// Config configures a Guardian.
type Config struct {
	ApprovalMode   ApprovalMode
	DeniedPaths    []string
	DeniedCommands []string
	AllowedHosts   []string
	MaxIterations  int
}

// AuditEventKind discriminates AuditEntry.Event variants.
type AuditEventKind string

const (
	EventRequest           AuditEventKind = "request"
	EventApprove           AuditEventKind = "approve"
	EventDeny              AuditEventKind = "deny"
	EventExecute           AuditEventKind = "execute"
	EventApprovalRequested AuditEventKind = "approval_requested"
	EventApprovalDecision  AuditEventKind = "approval_decision"
)

// AuditEvent is the payload of one AuditEntry.
type AuditEvent struct {
	Kind    AuditEventKind
	Action  Action
	Outcome Decision
	Detail  string
}

// AuditEntry is one append-only audit record.
type AuditEntry struct {
	ID        uuid.UUID
	Timestamp time.Time
	SessionID string
	Event     AuditEvent
}
