package llm

// Role identifies who authored a conversation turn. It is owned by this
// package and is independent of any provider's wire representation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single role-tagged message in a conversation.
// Turns are immutable once created; layers that hold them copy on read
// rather than sharing slices.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewTurn creates a turn with the given role and content.
func NewTurn(role Role, content string) Turn {
	return Turn{Role: role, Content: content}
}
