package models

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one utterance of the conversation. Order is significant.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserTurn and AssistantTurn are small helpers for building conversations.
func UserTurn(content string) Turn { return Turn{Role: RoleUser, Content: content} }

func AssistantTurn(content string) Turn { return Turn{Role: RoleAssistant, Content: content} }
