// Package models contains domain models for the CrewHub Chatbot Service.
package models

import "time"

// Sender identifies which side of the conversation produced a message.
type Sender string

const (
	// SenderUser represents a message typed by the end user.
	SenderUser Sender = "user"
	// SenderBot represents a message generated by the response engine.
	SenderBot Sender = "bot"
)

// ResponseSource identifies the pipeline stage that produced a bot response.
type ResponseSource string

const (
	// SourceClosure is a fixed farewell for conversation-ending messages.
	SourceClosure ResponseSource = "closure"
	// SourceConversation is a templated small-talk reply.
	SourceConversation ResponseSource = "conversation"
	// SourceKnowledge is a response built from a knowledge document.
	SourceKnowledge ResponseSource = "knowledge"
	// SourceLearned is a reused learned query/response pair.
	SourceLearned ResponseSource = "learned"
	// SourceNLP is a keyword-scored canned template (or the fallback default).
	SourceNLP ResponseSource = "nlp"
)

// Suggestion is a quick-reply action offered alongside a bot response.
type Suggestion struct {
	ID    string `json:"id" bson:"id"`
	Label string `json:"label" bson:"label"`
}

// Feedback records whether a bot response was helpful.
type Feedback struct {
	WasHelpful bool      `json:"wasHelpful" bson:"wasHelpful"`
	Comment    string    `json:"comment,omitempty" bson:"comment,omitempty"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

// ResponseMeta holds per-response metadata on bot messages. Each
// ResponseSource variant only populates the fields it produces; user
// messages carry no meta at all.
type ResponseMeta struct {
	Source             ResponseSource `json:"source" bson:"source"`
	Confidence         float64        `json:"confidence" bson:"confidence"`
	KnowledgeUsed      bool           `json:"knowledgeUsed,omitempty" bson:"knowledgeUsed,omitempty"`
	MatchedCategory    string         `json:"matchedCategory,omitempty" bson:"matchedCategory,omitempty"`
	LearnedSourceID    string         `json:"learnedSourceId,omitempty" bson:"learnedSourceId,omitempty"`
	UnrecognizedLogID  string         `json:"unrecognizedLogId,omitempty" bson:"unrecognizedLogId,omitempty"`
	ShouldShowFeedback bool           `json:"shouldShowFeedback" bson:"shouldShowFeedback"`
	CurrentView        string         `json:"currentView,omitempty" bson:"currentView,omitempty"`
	Feedback           *Feedback      `json:"feedback,omitempty" bson:"feedback,omitempty"`
}

// Message represents one persisted conversation turn. User and bot turns
// share a single collection, differentiated by the Sender field. A
// processed chat request produces exactly one user message and, on
// success, one bot message with the same session ID.
type Message struct {
	ID          string        `json:"id" bson:"_id"`
	BusinessID  string        `json:"businessId" bson:"businessId"`
	ClientID    string        `json:"clientId" bson:"clientId"`
	UserID      string        `json:"userId,omitempty" bson:"userId,omitempty"`
	Sender      Sender        `json:"sender" bson:"sender"`
	Content     string        `json:"content" bson:"content"`
	Suggestions []Suggestion  `json:"suggestions,omitempty" bson:"suggestions,omitempty"`
	SessionID   string        `json:"sessionId" bson:"sessionId"`
	CreatedAt   time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt" bson:"updatedAt"`
	Meta        *ResponseMeta `json:"meta,omitempty" bson:"meta,omitempty"`
}

// NewUserMessage creates a user turn.
func NewUserMessage(businessID, clientID, userID, sessionID, content string) *Message {
	now := time.Now().UTC()
	return &Message{
		BusinessID: businessID,
		ClientID:   clientID,
		UserID:     userID,
		Sender:     SenderUser,
		Content:    content,
		SessionID:  sessionID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// NewBotMessage creates a bot turn with its response metadata.
func NewBotMessage(businessID, clientID, sessionID, content string, suggestions []Suggestion, meta *ResponseMeta) *Message {
	now := time.Now().UTC()
	return &Message{
		BusinessID:  businessID,
		ClientID:    clientID,
		Sender:      SenderBot,
		Content:     content,
		Suggestions: suggestions,
		SessionID:   sessionID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Meta:        meta,
	}
}

// IsBot returns true for bot turns.
func (m *Message) IsBot() bool {
	return m.Sender == SenderBot
}

// AttachFeedback records feedback on a bot message. Messages are never
// otherwise mutated after creation.
func (m *Message) AttachFeedback(wasHelpful bool, comment string) {
	if m.Meta == nil {
		m.Meta = &ResponseMeta{}
	}
	m.Meta.Feedback = &Feedback{
		WasHelpful: wasHelpful,
		Comment:    comment,
		CreatedAt:  time.Now().UTC(),
	}
	m.UpdatedAt = time.Now().UTC()
}
