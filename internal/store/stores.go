package store

// Stores is the top-level container for all storage backends. Standalone
// mode constructs Sessions and Pairing from internal/store/file; Agents,
// MCP, Teams and BuiltinTools are nil unless a future managed-mode backend
// is wired in.
type Stores struct {
	Sessions     SessionStore
	Pairing      PairingStore
	Agents       AgentStore     // nil in standalone mode
	MCP          MCPServerStore // nil in standalone mode
	Teams        TeamStore      // nil in standalone mode
	BuiltinTools BuiltinToolStore // nil in standalone mode
}
