// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/crewhub/chatbot-service/internal/domain/models"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

// SuggestionResponse represents a quick-reply action in API responses.
type SuggestionResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// SendMessageResponse represents the engine's reply to one message.
type SendMessageResponse struct {
	Success            bool                 `json:"success"`
	Response           string               `json:"response"`
	Suggestions        []SuggestionResponse `json:"suggestions,omitempty"`
	SessionID          string               `json:"sessionId"`
	ResponseSource     string               `json:"responseSource"`
	Confidence         float64              `json:"confidence"`
	ShouldShowFeedback bool                 `json:"shouldShowFeedback"`
	MessageID          string               `json:"messageId,omitempty"`
}

// MessageResponse represents one conversation turn in API responses.
type MessageResponse struct {
	ID          string               `json:"id"`
	SessionID   string               `json:"sessionId"`
	UserID      string               `json:"userId,omitempty"`
	Sender      string               `json:"sender"`
	Content     string               `json:"content"`
	Suggestions []SuggestionResponse `json:"suggestions,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	Meta        *models.ResponseMeta `json:"meta,omitempty"`
}

// GetHistoryResponse represents the response for fetching conversation history.
type GetHistoryResponse struct {
	Messages []*MessageResponse `json:"messages"`
	Total    int64              `json:"total"`
	Limit    int64              `json:"limit"`
	Offset   int64              `json:"offset"`
}

// ClearHistoryResponse represents the response for clearing a session.
type ClearHistoryResponse struct {
	Deleted int64 `json:"deleted"`
}

// SessionResponse represents one session summary in API responses.
type SessionResponse struct {
	SessionID    string    `json:"sessionId"`
	MessageCount int64     `json:"messageCount"`
	LastMessage  string    `json:"lastMessage"`
	LastActivity time.Time `json:"lastActivity"`
	UserID       string    `json:"userId,omitempty"`
	UserName     string    `json:"userName,omitempty"`
	UserEmail    string    `json:"userEmail,omitempty"`
}

// GetSessionsResponse represents the response for listing sessions.
type GetSessionsResponse struct {
	Sessions []*SessionResponse `json:"sessions"`
	Total    int64              `json:"total"`
	Limit    int64              `json:"limit"`
	Offset   int64              `json:"offset"`
}

// FeedbackResponse acknowledges recorded feedback.
type FeedbackResponse struct {
	Success bool `json:"success"`
}

// FromMessage converts a domain message to its API representation.
func FromMessage(m *models.Message) *MessageResponse {
	resp := &MessageResponse{
		ID:        m.ID,
		SessionID: m.SessionID,
		UserID:    m.UserID,
		Sender:    string(m.Sender),
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		Meta:      m.Meta,
	}
	for _, sg := range m.Suggestions {
		resp.Suggestions = append(resp.Suggestions, SuggestionResponse{ID: sg.ID, Label: sg.Label})
	}
	return resp
}

// FromSuggestions converts domain suggestions to their API representation.
func FromSuggestions(suggestions []models.Suggestion) []SuggestionResponse {
	if len(suggestions) == 0 {
		return nil
	}
	out := make([]SuggestionResponse, 0, len(suggestions))
	for _, sg := range suggestions {
		out = append(out, SuggestionResponse{ID: sg.ID, Label: sg.Label})
	}
	return out
}

// FromSession converts a session summary to its API representation.
func FromSession(s *models.SessionSummary) *SessionResponse {
	return &SessionResponse{
		SessionID:    s.SessionID,
		MessageCount: s.MessageCount,
		LastMessage:  s.LastMessage,
		LastActivity: s.LastActivity,
		UserID:       s.UserID,
		UserName:     s.UserName,
		UserEmail:    s.UserEmail,
	}
}
