// Package docdb defines the document database client interface.
package docdb

import (
	"context"
)

// Client defines the interface for a document database client.
type Client interface {
	// Database returns the database interface.
	Database() Database

	// Messages returns the typed messages collection.
	Messages() MessagesCollection

	// KnowledgeDocuments returns the knowledge documents collection.
	KnowledgeDocuments() Collection

	// LearnedResponses returns the learned query/response collection.
	LearnedResponses() Collection

	// UnrecognizedQueries returns the unrecognized queries collection.
	UnrecognizedQueries() Collection

	// Businesses returns the businesses collection.
	Businesses() Collection

	// Users returns the users collection.
	Users() Collection

	// Ping verifies the database connection.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close(ctx context.Context) error

	// EnsureIndexes creates all necessary indexes.
	EnsureIndexes(ctx context.Context) error
}
