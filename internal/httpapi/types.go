package httpapi

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// IngestRequest is the request body for POST /api/v1/documents.
type IngestRequest struct {
	Path string `json:"path"`
}

// SkipDetail describes one item that was skipped during ingestion or
// indexing while the rest of the document proceeded.
type SkipDetail struct {
	Page   int    `json:"page"`
	Reason string `json:"reason"`
}

// IngestResponse is the response body for POST /api/v1/documents.
type IngestResponse struct {
	ChunksIndexed int          `json:"chunks_indexed"`
	ImagesIndexed int          `json:"images_indexed"`
	Skips         []SkipDetail `json:"skips,omitempty"`
}

// WipeResponse is the response body for POST /api/v1/admin/wipe.
type WipeResponse struct {
	Status string `json:"status"`
}

// ChatRequest is the request body for POST /api/v1/chat.
type ChatRequest struct {
	Message      string `json:"message"`
	Conversation string `json:"conversation,omitempty"`
}

// ChatResponse is the response body for POST /api/v1/chat.
type ChatResponse struct {
	Answer       string `json:"answer"`
	Conversation string `json:"conversation"`
}

// CreateConversationRequest is the request body for POST /api/v1/conversations.
type CreateConversationRequest struct {
	Name string `json:"name,omitempty"`
}

// ConversationResponse describes a conversation without its history.
type ConversationResponse struct {
	Name    string   `json:"name"`
	Created bool     `json:"created,omitempty"`
	Scope   []string `json:"scope,omitempty"`
}

// ListConversationsResponse is the response body for GET /api/v1/conversations.
type ListConversationsResponse struct {
	Conversations []string `json:"conversations"`
}

// TurnDetail is one display-history turn.
type TurnDetail struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationDetailResponse is the response body for
// GET /api/v1/conversations/:name.
type ConversationDetailResponse struct {
	Name    string       `json:"name"`
	Scope   []string     `json:"scope,omitempty"`
	History []TurnDetail `json:"history"`
}

// SetScopeRequest is the request body for PUT /api/v1/conversations/:name/scope.
type SetScopeRequest struct {
	Sources []string `json:"sources"`
}
