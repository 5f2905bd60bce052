// Package models contains domain models for the CrewHub Chatbot Service.
package models

import "time"

// KnowledgeDocument is a curated help-content entry searchable by
// topic/feature.
type KnowledgeDocument struct {
	ID           string    `json:"id" bson:"_id"`
	ClientID     string    `json:"clientId,omitempty" bson:"clientId,omitempty"`
	Title        string    `json:"title" bson:"title"`
	Content      string    `json:"content" bson:"content"`
	Tags         []string  `json:"tags,omitempty" bson:"tags,omitempty"`
	Features     []string  `json:"features,omitempty" bson:"features,omitempty"`
	BusinessType string    `json:"businessType,omitempty" bson:"businessType,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// LearnedResponse is a previously stored query→response pair the engine
// may reuse for similar future queries. The response engine only ever
// reads these and reports back whether a reused pair was helpful.
type LearnedResponse struct {
	ID           string    `json:"id" bson:"_id"`
	ClientID     string    `json:"clientId,omitempty" bson:"clientId,omitempty"`
	Category     string    `json:"category,omitempty" bson:"category,omitempty"`
	Query        string    `json:"query" bson:"query"`
	Response     string    `json:"response" bson:"response"`
	UseCount     int64     `json:"useCount" bson:"useCount"`
	SuccessCount int64     `json:"successCount" bson:"successCount"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`

	// Similarity is set per search result, not persisted.
	Similarity float64 `json:"similarity,omitempty" bson:"-"`
}

// UnrecognizedQuery logs a message no pipeline stage could answer
// confidently, feeding the continuous-improvement loop.
type UnrecognizedQuery struct {
	ID          string    `json:"id" bson:"_id"`
	BusinessID  string    `json:"businessId" bson:"businessId"`
	ClientID    string    `json:"clientId,omitempty" bson:"clientId,omitempty"`
	Query       string    `json:"query" bson:"query"`
	CurrentView string    `json:"currentView,omitempty" bson:"currentView,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}
