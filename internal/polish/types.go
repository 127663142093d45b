package polish

// Status is the lifecycle state of a polish session.
type Status int

const (
	StatusIdle Status = iota
	StatusRequesting
	StatusStreaming
	StatusCompleted
	StatusAborted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRequesting:
		return "requesting"
	case StatusStreaming:
		return "streaming"
	case StatusCompleted:
		return "completed"
	case StatusAborted:
		return "aborted"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can happen for the
// session that reached this status.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusAborted, StatusFailed:
		return true
	default:
		return false
	}
}

// SessionConfig carries the resolved per-provider settings for one session.
// Endpoint is set only for providers that route through an explicit gateway.
type SessionConfig struct {
	Provider string // provider tag, sent as modelType on the wire
	APIKey   string
	Model    string
	Endpoint string
}

// Complete reports whether the config can back a session. Completeness per
// provider descriptor is the resolver's job; this is the Start precondition.
func (c SessionConfig) Complete() bool {
	return c.Provider != "" && c.APIKey != "" && c.Model != ""
}

// Request is what the transport sends to the polish endpoint.
type Request struct {
	Content string
	Config  SessionConfig
}
