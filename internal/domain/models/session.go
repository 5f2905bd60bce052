// Package models contains domain models for the CrewHub Chatbot Service.
package models

import "time"

// SessionSummary is a derived view of one conversation thread. Sessions
// are not stored as first-class entities; they are produced by grouping
// messages on (businessId, clientId, sessionId).
type SessionSummary struct {
	SessionID    string    `json:"sessionId" bson:"_id"`
	MessageCount int64     `json:"messageCount" bson:"messageCount"`
	LastMessage  string    `json:"lastMessage" bson:"lastMessage"`
	LastActivity time.Time `json:"lastActivity" bson:"lastActivity"`
	UserID       string    `json:"userId,omitempty" bson:"userId,omitempty"`
	UserName     string    `json:"userName,omitempty" bson:"-"`
	UserEmail    string    `json:"userEmail,omitempty" bson:"-"`
}

// HistoryEntry is one turn of recent conversation context handed to the
// response engine.
type HistoryEntry struct {
	Sender  Sender `json:"sender"`
	Content string `json:"content"`
}

// ChatContext is the per-request, ephemeral context the response engine
// works with. It is rebuilt for every call and never persisted as-is;
// only the ResponseMeta derived from it survives.
type ChatContext struct {
	ConversationHistory []HistoryEntry         `json:"conversationHistory"`
	CurrentView         string                 `json:"currentView,omitempty"`
	MessageCount        int64                  `json:"messageCount"`
	Extra               map[string]interface{} `json:"extra,omitempty"`
}
