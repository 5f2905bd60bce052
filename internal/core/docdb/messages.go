// Package docdb provides the messages collection interface.
package docdb

import (
	"context"

	"github.com/crewhub/chatbot-service/internal/domain/models"
)

// SortOrder represents the sort direction.
type SortOrder string

const (
	// SortOrderAsc represents ascending order.
	SortOrderAsc SortOrder = "asc"
	// SortOrderDesc represents descending order.
	SortOrderDesc SortOrder = "desc"
)

// ListMessagesOptions contains options for listing messages. BusinessID
// and ClientID are required for tenant isolation; SessionID and UserID
// narrow the result further.
type ListMessagesOptions struct {
	BusinessID string
	ClientID   string
	SessionID  string
	UserID     string
	Limit      int64
	Skip       int64
	OrderBy    SortOrder // Order by createdAt
}

// ListSessionsOptions contains options for the session aggregation.
type ListSessionsOptions struct {
	BusinessID string
	ClientID   string
	Limit      int64
	Skip       int64
}

// MessagesCollection defines the interface for message collection operations.
type MessagesCollection interface {
	// Add inserts a new conversation turn.
	Add(ctx context.Context, message *models.Message) error

	// Get retrieves a message by ID within a business.
	Get(ctx context.Context, businessID, id string) (*models.Message, error)

	// List lists messages with pagination and sorting.
	List(ctx context.Context, opts *ListMessagesOptions) ([]*models.Message, error)

	// Count returns the number of messages matching the options.
	Count(ctx context.Context, opts *ListMessagesOptions) (int64, error)

	// DeleteBySession removes every message in a session and returns the
	// number deleted. Individual messages are never deleted.
	DeleteBySession(ctx context.Context, businessID, clientID, sessionID string) (int64, error)

	// UpdateMeta replaces the response metadata of a message (used to
	// attach feedback after the fact).
	UpdateMeta(ctx context.Context, businessID, id string, meta *models.ResponseMeta) error

	// ListSessions groups messages by session and returns per-session
	// summaries ordered by last activity, plus the total session count.
	ListSessions(ctx context.Context, opts *ListSessionsOptions) ([]*models.SessionSummary, int64, error)

	// EnsureIndexes creates necessary indexes for the collection.
	EnsureIndexes(ctx context.Context) error
}
