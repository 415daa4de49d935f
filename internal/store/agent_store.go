package store

import (
	"context"

	"github.com/google/uuid"
)

// Agent is the managed-mode record a channel adapter resolves an agent
// key (e.g. a bot's configured agent slug) against.
type Agent struct {
	ID uuid.UUID
}

// AgentContextFileData is one SOUL.md/AGENTS.md/USER.md-style context file
// stored per agent (shared) or per agent+user (open agents).
type AgentContextFileData struct {
	AgentID  uuid.UUID
	FileName string
	Content  string
}

// GroupFileWriter is a chat member allow-listed to edit protected context
// files (SOUL.md, IDENTITY.md, ...) from within a group chat.
type GroupFileWriter struct {
	UserID      string
	Username    *string
	DisplayName *string
}

// AgentStore resolves agent identity and context files in managed mode.
// Channel adapters receive it as nil in standalone mode, which disables
// group file writer management and context-file DB routing; they fall
// back to the workspace files on disk.
type AgentStore interface {
	GetByKey(ctx context.Context, key string) (*Agent, error)

	GetAgentContextFiles(ctx context.Context, agentID uuid.UUID) ([]AgentContextFileData, error)
	GetUserContextFiles(ctx context.Context, agentID uuid.UUID, userID string) ([]AgentContextFileData, error)
	SetAgentContextFile(ctx context.Context, agentID uuid.UUID, fileName, content string) error
	SetUserContextFile(ctx context.Context, agentID uuid.UUID, userID, fileName, content string) error
	DeleteUserContextFile(ctx context.Context, agentID uuid.UUID, userID, fileName string) error

	IsGroupFileWriter(ctx context.Context, agentID uuid.UUID, groupID, userID string) (bool, error)
	AddGroupFileWriter(ctx context.Context, agentID uuid.UUID, groupID, userID, firstName, username string) error
	RemoveGroupFileWriter(ctx context.Context, agentID uuid.UUID, groupID, userID string) error
	ListGroupFileWriters(ctx context.Context, agentID uuid.UUID, groupID string) ([]GroupFileWriter, error)
}

// TeamStore backs the /tasks and /task_detail channel commands in managed
// mode. No standalone channel adapter calls its methods directly yet —
// it is threaded through purely so a future team-tasks tool can be wired
// without changing channel constructor signatures again.
type TeamStore interface {
	ListTasks(ctx context.Context, teamID uuid.UUID) ([]TeamTask, error)
}

// TeamTask is one task tracked within an agent team.
type TeamTask struct {
	ID          uuid.UUID
	Title       string
	Status      string
	AssignedTo  string
	Description string
}
