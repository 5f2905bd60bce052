// Package knowledge provides search over help documents and learned
// query/response pairs, plus the unrecognized-query log that feeds the
// continuous-improvement loop.
package knowledge

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/crewhub/chatbot-service/internal/core/docdb"
	domainerrors "github.com/crewhub/chatbot-service/internal/domain/errors"
	"github.com/crewhub/chatbot-service/internal/domain/models"
)

const (
	// DefaultSearchLimit caps search results when the caller does not set one.
	DefaultSearchLimit = 5
	// candidateFetchLimit bounds how many documents are pulled for in-memory ranking.
	candidateFetchLimit = 200
)

// SearchDocumentsOptions narrows a document search.
type SearchDocumentsOptions struct {
	ClientID     string
	BusinessType string
	Features     []string
	CurrentView  string
	Limit        int
}

// SearchResponsesOptions narrows a learned-pair search.
type SearchResponsesOptions struct {
	Category string
	ClientID string
	Limit    int
}

// QueryContext carries the context stored with an unrecognized query.
type QueryContext struct {
	BusinessID  string
	ClientID    string
	CurrentView string
}

// Service defines the knowledge base operations the response engine consumes.
type Service interface {
	// SearchDocuments returns help documents ranked by relevance to the query.
	SearchDocuments(ctx context.Context, query string, opts *SearchDocumentsOptions) ([]*models.KnowledgeDocument, error)

	// SearchQueryResponses returns learned pairs ranked by similarity to the query.
	SearchQueryResponses(ctx context.Context, query string, opts *SearchResponsesOptions) ([]*models.LearnedResponse, error)

	// LogUnrecognizedQuery records a query no stage could answer and returns its ID.
	LogUnrecognizedQuery(ctx context.Context, query string, qctx *QueryContext) (string, error)

	// UpdateResponseSuccess reports whether a reused learned pair was helpful.
	// Returns a NotFound domain error when the ID is unknown.
	UpdateResponseSuccess(ctx context.Context, id string, wasHelpful bool) error

	// CleanupBadResponses deletes learned pairs whose response matches any
	// of the given regex patterns and returns the number removed.
	CleanupBadResponses(ctx context.Context, patterns []string) (int64, error)
}

// Config holds the dependencies for the knowledge service.
type Config struct {
	DocDBClient docdb.Client
	Logger      zerolog.Logger
}

// service implements the Service interface.
type service struct {
	docDBClient docdb.Client
	logger      zerolog.Logger
}

// NewService creates a new knowledge service.
func NewService(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.DocDBClient == nil {
		return nil, fmt.Errorf("docdb client is required")
	}

	return &service{
		docDBClient: cfg.DocDBClient,
		logger:      cfg.Logger,
	}, nil
}

// SearchDocuments returns help documents ranked by relevance to the query.
func (s *service) SearchDocuments(ctx context.Context, query string, opts *SearchDocumentsOptions) ([]*models.KnowledgeDocument, error) {
	if opts == nil {
		opts = &SearchDocumentsOptions{}
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	filter := bson.M{}
	if opts.ClientID != "" {
		// Global documents have no clientId.
		filter["$or"] = []bson.M{
			{"clientId": opts.ClientID},
			{"clientId": bson.M{"$exists": false}},
			{"clientId": ""},
		}
	}
	if opts.BusinessType != "" {
		filter["$and"] = []bson.M{
			{"$or": []bson.M{
				{"businessType": opts.BusinessType},
				{"businessType": bson.M{"$exists": false}},
				{"businessType": ""},
			}},
		}
	}

	cursor, err := s.docDBClient.KnowledgeDocuments().Find(ctx, filter, &docdb.FindOptions{Limit: candidateFetchLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch knowledge documents: %w", err)
	}
	defer cursor.Close(ctx)

	var candidates []*models.KnowledgeDocument
	if err := cursor.All(ctx, &candidates); err != nil {
		return nil, fmt.Errorf("failed to decode knowledge documents: %w", err)
	}

	terms := searchTerms(query)
	if len(terms) == 0 {
		return nil, nil
	}

	type scored struct {
		doc   *models.KnowledgeDocument
		score float64
	}
	var ranked []scored
	for _, doc := range candidates {
		score := scoreDocument(terms, doc, opts.Features)
		if score > 0 {
			ranked = append(ranked, scored{doc: doc, score: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	results := make([]*models.KnowledgeDocument, 0, limit)
	for i := 0; i < len(ranked) && i < limit; i++ {
		results = append(results, ranked[i].doc)
	}
	return results, nil
}

// SearchQueryResponses returns learned pairs ranked by similarity to the query.
func (s *service) SearchQueryResponses(ctx context.Context, query string, opts *SearchResponsesOptions) ([]*models.LearnedResponse, error) {
	if opts == nil {
		opts = &SearchResponsesOptions{}
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	filter := bson.M{}
	if opts.ClientID != "" {
		filter["$or"] = []bson.M{
			{"clientId": opts.ClientID},
			{"clientId": bson.M{"$exists": false}},
			{"clientId": ""},
		}
	}
	if opts.Category != "" {
		filter["category"] = opts.Category
	}

	cursor, err := s.docDBClient.LearnedResponses().Find(ctx, filter, &docdb.FindOptions{Limit: candidateFetchLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch learned responses: %w", err)
	}
	defer cursor.Close(ctx)

	var candidates []*models.LearnedResponse
	if err := cursor.All(ctx, &candidates); err != nil {
		return nil, fmt.Errorf("failed to decode learned responses: %w", err)
	}

	terms := searchTerms(query)
	if len(terms) == 0 {
		return nil, nil
	}

	var ranked []*models.LearnedResponse
	for _, pair := range candidates {
		sim := querySimilarity(terms, searchTerms(pair.Query))
		if sim > 0 {
			pair.Similarity = sim
			ranked = append(ranked, pair)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// LogUnrecognizedQuery records a query no stage could answer.
func (s *service) LogUnrecognizedQuery(ctx context.Context, query string, qctx *QueryContext) (string, error) {
	entry := &models.UnrecognizedQuery{
		ID:        uuid.NewString(),
		Query:     query,
		CreatedAt: time.Now().UTC(),
	}
	if qctx != nil {
		entry.BusinessID = qctx.BusinessID
		entry.ClientID = qctx.ClientID
		entry.CurrentView = qctx.CurrentView
	}

	if _, err := s.docDBClient.UnrecognizedQueries().InsertOne(ctx, entry); err != nil {
		return "", fmt.Errorf("failed to log unrecognized query: %w", err)
	}

	s.logger.Info().Str("query_id", entry.ID).Msg("unrecognized query logged")
	return entry.ID, nil
}

// UpdateResponseSuccess reports whether a reused learned pair was helpful.
func (s *service) UpdateResponseSuccess(ctx context.Context, id string, wasHelpful bool) error {
	inc := bson.M{"useCount": 1}
	if wasHelpful {
		inc["successCount"] = 1
	}

	result, err := s.docDBClient.LearnedResponses().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": inc, "$set": bson.M{"updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update learned response: %w", err)
	}
	if result.MatchedCount == 0 {
		return domainerrors.NewNotFoundError("learned response", id)
	}
	return nil
}

// CleanupBadResponses deletes learned pairs whose response matches any of
// the given regex patterns.
func (s *service) CleanupBadResponses(ctx context.Context, patterns []string) (int64, error) {
	if len(patterns) == 0 {
		return 0, nil
	}

	ors := make([]bson.M, 0, len(patterns))
	for _, p := range patterns {
		ors = append(ors, bson.M{"response": primitive.Regex{Pattern: p, Options: "i"}})
	}

	result, err := s.docDBClient.LearnedResponses().DeleteMany(ctx, bson.M{"$or": ors})
	if err != nil {
		return 0, fmt.Errorf("failed to clean up learned responses: %w", err)
	}

	if result.DeletedCount > 0 {
		s.logger.Info().Int64("deleted", result.DeletedCount).Msg("removed off-topic learned responses")
	}
	return result.DeletedCount, nil
}

// searchTerms tokenizes a query for overlap scoring. Punctuation is
// stripped and short tokens dropped.
func searchTerms(query string) []string {
	var b strings.Builder
	for _, r := range strings.ToLower(query) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == ' ' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	seen := map[string]bool{}
	var terms []string
	for _, tok := range strings.Fields(b.String()) {
		if len(tok) < 3 || seen[tok] {
			continue
		}
		seen[tok] = true
		terms = append(terms, tok)
	}
	return terms
}

// scoreDocument ranks a document against query terms. Title hits weigh
// most, then tags, then content; documents tagged with an enabled
// platform feature get a small boost.
func scoreDocument(terms []string, doc *models.KnowledgeDocument, features []string) float64 {
	title := strings.ToLower(doc.Title)
	content := strings.ToLower(doc.Content)

	var score float64
	for _, term := range terms {
		if strings.Contains(title, term) {
			score += 3
		}
		for _, tag := range doc.Tags {
			if strings.Contains(strings.ToLower(tag), term) {
				score += 2
				break
			}
		}
		if strings.Contains(content, term) {
			score++
		}
	}
	if score == 0 {
		return 0
	}

	for _, feat := range features {
		for _, docFeat := range doc.Features {
			if strings.EqualFold(feat, docFeat) {
				score += 0.5
			}
		}
	}

	return score / float64(len(terms))
}

// querySimilarity is the overlap coefficient between two term sets.
func querySimilarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	set := map[string]bool{}
	for _, t := range a {
		set[t] = true
	}

	var overlap int
	for _, t := range b {
		if set[t] {
			overlap++
		}
	}

	smaller := len(a)
	if len(b) < smaller {
		smaller = len(b)
	}
	return float64(overlap) / float64(smaller)
}
