package domain

import "context"

// Message is one role-tagged entry in a chat request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ChatRequest describes a single completion call against the remote
// generation endpoint.
type ChatRequest struct {
	Model    string
	Messages []Message

	// JSONMode asks the endpoint for a JSON object response. Clients fall
	// back to a plain call when the endpoint rejects the hint.
	JSONMode bool
}

// ChatClient is the boundary to the remote generation endpoint. The reply
// is a single text completion; its latency, error modes and content noise
// are exactly what the evaluation core must tolerate.
type ChatClient interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}
