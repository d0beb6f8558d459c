package types

// ContextKey is the type for values legame stores in a context.Context.
// A dedicated type keeps the keys collision-free across packages.
type ContextKey string

const (
	// ContextKeyUserID carries the end-user identifier for telemetry.
	ContextKeyUserID ContextKey = "user_id"
	// ContextKeySessionID carries the session identifier for telemetry.
	ContextKeySessionID ContextKey = "session_id"
	// ContextKeyRequestSource records where a request entered the system,
	// e.g. "server" or "cli".
	ContextKeyRequestSource ContextKey = "request_source"
)
