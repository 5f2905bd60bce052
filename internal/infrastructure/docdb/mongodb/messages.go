// Package mongodb provides the messages collection implementation.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/crewhub/chatbot-service/internal/core/docdb"
	"github.com/crewhub/chatbot-service/internal/domain/models"
)

// MessagesCollectionName is the name of the messages collection.
const MessagesCollectionName = "chat_messages"

// MessagesCollection implements the docdb.MessagesCollection interface for MongoDB.
type MessagesCollection struct {
	messages *mongo.Collection
}

// NewMessagesCollection creates a new messages collection wrapper.
func NewMessagesCollection(db *mongo.Database) *MessagesCollection {
	return &MessagesCollection{
		messages: db.Collection(MessagesCollectionName),
	}
}

// Add inserts a new conversation turn.
func (c *MessagesCollection) Add(ctx context.Context, message *models.Message) error {
	if message.ID == "" {
		return fmt.Errorf("message ID is required")
	}
	if message.BusinessID == "" || message.ClientID == "" {
		return fmt.Errorf("business ID and client ID are required")
	}

	_, err := c.messages.InsertOne(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	return nil
}

// Get retrieves a message by ID within a business.
func (c *MessagesCollection) Get(ctx context.Context, businessID, id string) (*models.Message, error) {
	var message models.Message
	err := c.messages.FindOne(ctx, bson.M{"_id": id, "businessId": businessID}).Decode(&message)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return &message, nil
}

// List lists messages with pagination and sorting.
func (c *MessagesCollection) List(ctx context.Context, opts *docdb.ListMessagesOptions) ([]*models.Message, error) {
	filter := buildMessagesFilter(opts)
	findOpts := buildFindOptions(opts)

	cursor, err := c.messages.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer cursor.Close(ctx)

	messages := []*models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}

	return messages, nil
}

// Count returns the number of messages matching the options.
func (c *MessagesCollection) Count(ctx context.Context, opts *docdb.ListMessagesOptions) (int64, error) {
	count, err := c.messages.CountDocuments(ctx, buildMessagesFilter(opts))
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

// DeleteBySession removes every message in a session.
func (c *MessagesCollection) DeleteBySession(ctx context.Context, businessID, clientID, sessionID string) (int64, error) {
	result, err := c.messages.DeleteMany(ctx, bson.M{
		"businessId": businessID,
		"clientId":   clientID,
		"sessionId":  sessionID,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete session messages: %w", err)
	}
	return result.DeletedCount, nil
}

// UpdateMeta replaces the response metadata of a message.
func (c *MessagesCollection) UpdateMeta(ctx context.Context, businessID, id string, meta *models.ResponseMeta) error {
	result, err := c.messages.UpdateOne(ctx,
		bson.M{"_id": id, "businessId": businessID},
		bson.M{"$set": bson.M{"meta": meta, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update message metadata: %w", err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListSessions groups messages by session with a last-message preview.
func (c *MessagesCollection) ListSessions(ctx context.Context, opts *docdb.ListSessionsOptions) ([]*models.SessionSummary, int64, error) {
	match := bson.M{
		"businessId": opts.BusinessID,
		"clientId":   opts.ClientID,
	}

	group := bson.M{
		"_id":          "$sessionId",
		"messageCount": bson.M{"$sum": 1},
		"lastMessage":  bson.M{"$last": "$content"},
		"lastActivity": bson.M{"$last": "$createdAt"},
		"userId":       bson.M{"$last": "$userId"},
	}

	pipeline := []bson.M{
		{"$match": match},
		{"$sort": bson.M{"createdAt": 1}},
		{"$group": group},
		{"$sort": bson.M{"lastActivity": -1}},
	}
	if opts.Skip > 0 {
		pipeline = append(pipeline, bson.M{"$skip": opts.Skip})
	}
	if opts.Limit > 0 {
		pipeline = append(pipeline, bson.M{"$limit": opts.Limit})
	}

	cursor, err := c.messages.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to aggregate sessions: %w", err)
	}
	defer cursor.Close(ctx)

	summaries := []*models.SessionSummary{}
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, 0, fmt.Errorf("failed to decode session summaries: %w", err)
	}

	// Total distinct sessions, independent of pagination.
	countCursor, err := c.messages.Aggregate(ctx, []bson.M{
		{"$match": match},
		{"$group": bson.M{"_id": "$sessionId"}},
		{"$count": "total"},
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	defer countCursor.Close(ctx)

	var counts []struct {
		Total int64 `bson:"total"`
	}
	if err := countCursor.All(ctx, &counts); err != nil {
		return nil, 0, fmt.Errorf("failed to decode session count: %w", err)
	}

	var total int64
	if len(counts) > 0 {
		total = counts[0].Total
	}

	return summaries, total, nil
}

// EnsureIndexes creates necessary indexes for the messages collection.
func (c *MessagesCollection) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "businessId", Value: 1},
				{Key: "clientId", Value: 1},
				{Key: "sessionId", Value: 1},
				{Key: "createdAt", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "businessId", Value: 1},
				{Key: "clientId", Value: 1},
				{Key: "userId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
	}

	if _, err := c.messages.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}
	return nil
}

// buildMessagesFilter builds the mongo filter from list options.
func buildMessagesFilter(opts *docdb.ListMessagesOptions) bson.M {
	filter := bson.M{
		"businessId": opts.BusinessID,
		"clientId":   opts.ClientID,
	}
	if opts.SessionID != "" {
		filter["sessionId"] = opts.SessionID
	}
	if opts.UserID != "" {
		filter["userId"] = opts.UserID
	}
	return filter
}

// buildFindOptions builds mongo find options from list options.
func buildFindOptions(opts *docdb.ListMessagesOptions) *options.FindOptions {
	findOpts := options.Find()
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}

	sortDir := 1
	if opts.OrderBy == docdb.SortOrderDesc {
		sortDir = -1
	}
	findOpts.SetSort(bson.M{"createdAt": sortDir})

	return findOpts
}
