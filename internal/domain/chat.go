package domain

import "context"

// ChatRole identifies the author of a chat message.
type ChatRole string

// Chat roles.
const (
	RoleSystem ChatRole = "system"
	RoleUser   ChatRole = "user"
)

// ChatMessage is one message of a chat completion request.
// A message carries either Text or ImageURL (a data: or https: URL).
type ChatMessage struct {
	Role     ChatRole
	Text     string
	ImageURL string
}

// ResponseSchema constrains a completion to JSON matching the shape of Target.
type ResponseSchema struct {
	Name   string
	Target any
	Strict bool
}

// ChatRequest is the shared chat completion contract between layers.
type ChatRequest struct {
	Messages    []ChatMessage
	Temperature float32
	Schema      *ResponseSchema
}

// ChatCompleter returns the assistant text for a chat request.
type ChatCompleter interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// TextMessage builds a text message.
func TextMessage(role ChatRole, text string) ChatMessage {
	return ChatMessage{Role: role, Text: text}
}

// ImageMessage builds a user message carrying a single image.
func ImageMessage(url string) ChatMessage {
	return ChatMessage{Role: RoleUser, ImageURL: url}
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
