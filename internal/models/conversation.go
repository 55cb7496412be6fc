package models

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// MetadataContextType is the metadata key a handler sets on its reply so the
	// next user turn can be interpreted against it.
	MetadataContextType = "context_type"
)

// Turn is one message in a conversation.
type Turn struct {
	Role      string                 `json:"role"`
	Content   string                 `json:"content"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// ContextType returns the context_type metadata tag, or "".
func (t Turn) ContextType() string {
	if t.Metadata == nil {
		return ""
	}
	if v, ok := t.Metadata[MetadataContextType].(string); ok {
		return v
	}
	return ""
}
