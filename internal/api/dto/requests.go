// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// SendMessageRequest represents the request body for submitting a chat message.
type SendMessageRequest struct {
	Content     string                 `json:"content" binding:"required,min=1,max=4000"`
	UserID      string                 `json:"userId,omitempty"`
	SessionID   string                 `json:"sessionId,omitempty"`
	ClientID    string                 `json:"clientId" binding:"required"`
	CurrentView string                 `json:"currentView,omitempty"`
	Extra       map[string]interface{} `json:"extra,omitempty"`
}

// FeedbackRequest represents the request body for recording feedback on a
// bot response.
type FeedbackRequest struct {
	MessageID  string `json:"messageId" binding:"required"`
	WasHelpful bool   `json:"wasHelpful"`
	Comment    string `json:"comment,omitempty" binding:"max=1000"`
	SourceID   string `json:"sourceId,omitempty"`
}
