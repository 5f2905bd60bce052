package knowledge

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/crewhub/chatbot-service/internal/core/docdb"
	domainerrors "github.com/crewhub/chatbot-service/internal/domain/errors"
	"github.com/crewhub/chatbot-service/internal/domain/models"
)

// sliceCursor replays a fixed result set.
type sliceCursor struct {
	items []interface{}
	pos   int
}

func (c *sliceCursor) Next(_ context.Context) bool {
	if c.pos >= len(c.items) {
		return false
	}
	c.pos++
	return true
}

func (c *sliceCursor) Decode(v interface{}) error {
	reflect.ValueOf(v).Elem().Set(reflect.ValueOf(c.items[c.pos-1]).Elem())
	return nil
}

func (c *sliceCursor) All(_ context.Context, results interface{}) error {
	rv := reflect.ValueOf(results).Elem()
	for _, item := range c.items {
		rv.Set(reflect.Append(rv, reflect.ValueOf(item)))
	}
	return nil
}

func (c *sliceCursor) Err() error                    { return nil }
func (c *sliceCursor) Close(_ context.Context) error { return nil }

// fakeCollection is a function-field docdb.Collection double.
type fakeCollection struct {
	findFunc   func(filter interface{}, opts *docdb.FindOptions) (docdb.Cursor, error)
	updateFunc func(filter, update interface{}) (*docdb.UpdateResult, error)
	deleteFunc func(filter interface{}) (*docdb.DeleteResult, error)
	inserted   []interface{}
}

func (f *fakeCollection) InsertOne(_ context.Context, document interface{}) (interface{}, error) {
	f.inserted = append(f.inserted, document)
	return nil, nil
}

func (f *fakeCollection) FindOne(_ context.Context, _ interface{}) docdb.SingleResult { return nil }

func (f *fakeCollection) Find(_ context.Context, filter interface{}, opts *docdb.FindOptions) (docdb.Cursor, error) {
	if f.findFunc == nil {
		return &sliceCursor{}, nil
	}
	return f.findFunc(filter, opts)
}

func (f *fakeCollection) Aggregate(_ context.Context, _ interface{}) (docdb.Cursor, error) {
	return &sliceCursor{}, nil
}

func (f *fakeCollection) UpdateOne(_ context.Context, filter, update interface{}) (*docdb.UpdateResult, error) {
	if f.updateFunc == nil {
		return &docdb.UpdateResult{}, nil
	}
	return f.updateFunc(filter, update)
}

func (f *fakeCollection) DeleteMany(_ context.Context, filter interface{}) (*docdb.DeleteResult, error) {
	if f.deleteFunc == nil {
		return &docdb.DeleteResult{}, nil
	}
	return f.deleteFunc(filter)
}

func (f *fakeCollection) CountDocuments(_ context.Context, _ interface{}) (int64, error) {
	return 0, nil
}

// fakeClient exposes the fake collections through the client interface.
type fakeClient struct {
	knowledgeDocs *fakeCollection
	learned       *fakeCollection
	unrecognized  *fakeCollection
}

func (f *fakeClient) Database() docdb.Database              { return nil }
func (f *fakeClient) Messages() docdb.MessagesCollection    { return nil }
func (f *fakeClient) KnowledgeDocuments() docdb.Collection  { return f.knowledgeDocs }
func (f *fakeClient) LearnedResponses() docdb.Collection    { return f.learned }
func (f *fakeClient) UnrecognizedQueries() docdb.Collection { return f.unrecognized }
func (f *fakeClient) Businesses() docdb.Collection          { return nil }
func (f *fakeClient) Users() docdb.Collection               { return nil }
func (f *fakeClient) Ping(_ context.Context) error          { return nil }
func (f *fakeClient) Close(_ context.Context) error         { return nil }
func (f *fakeClient) EnsureIndexes(_ context.Context) error { return nil }

func newTestService(t *testing.T) (Service, *fakeClient) {
	t.Helper()

	client := &fakeClient{
		knowledgeDocs: &fakeCollection{},
		learned:       &fakeCollection{},
		unrecognized:  &fakeCollection{},
	}
	svc, err := NewService(&Config{DocDBClient: client, Logger: zerolog.Nop()})
	require.NoError(t, err)
	return svc, client
}

func cursorOverDocs(docs ...*models.KnowledgeDocument) docdb.Cursor {
	items := make([]interface{}, 0, len(docs))
	for _, d := range docs {
		items = append(items, d)
	}
	return &sliceCursor{items: items}
}

func cursorOverPairs(pairs ...*models.LearnedResponse) docdb.Cursor {
	items := make([]interface{}, 0, len(pairs))
	for _, p := range pairs {
		items = append(items, p)
	}
	return &sliceCursor{items: items}
}

func TestSearchTerms(t *testing.T) {
	terms := searchTerms("How do I create a Project?!")

	assert.Equal(t, []string{"how", "create", "project"}, terms)
}

func TestSearchTerms_Deduplicates(t *testing.T) {
	terms := searchTerms("project project tasks")

	assert.Equal(t, []string{"project", "tasks"}, terms)
}

func TestScoreDocument_TitleOutweighsContent(t *testing.T) {
	titleHit := &models.KnowledgeDocument{Title: "Creating a project", Content: "Some unrelated text"}
	contentHit := &models.KnowledgeDocument{Title: "Other topic", Content: "Mentions a project once"}

	terms := []string{"project"}
	assert.Greater(t, scoreDocument(terms, titleHit, nil), scoreDocument(terms, contentHit, nil))
}

func TestScoreDocument_FeatureBoostOnlyWithHits(t *testing.T) {
	doc := &models.KnowledgeDocument{Title: "Billing", Content: "Plans and invoices", Features: []string{"chat"}}

	// No term hit means no score, boost or not.
	assert.Equal(t, 0.0, scoreDocument([]string{"project"}, doc, []string{"chat"}))

	base := scoreDocument([]string{"billing"}, doc, nil)
	boosted := scoreDocument([]string{"billing"}, doc, []string{"chat"})
	assert.Greater(t, boosted, base)
}

func TestQuerySimilarity(t *testing.T) {
	assert.Equal(t, 1.0, querySimilarity([]string{"create", "project"}, []string{"create", "project", "today"}))
	assert.Equal(t, 0.5, querySimilarity([]string{"create", "project"}, []string{"create", "task"}))
	assert.Equal(t, 0.0, querySimilarity([]string{"create"}, []string{"billing"}))
	assert.Equal(t, 0.0, querySimilarity(nil, []string{"billing"}))
}

func TestSearchDocuments_RanksAndFilters(t *testing.T) {
	svc, client := newTestService(t)
	client.knowledgeDocs.findFunc = func(_ interface{}, _ *docdb.FindOptions) (docdb.Cursor, error) {
		return cursorOverDocs(
			&models.KnowledgeDocument{ID: "doc-billing", Title: "Billing", Content: "Plans and invoices"},
			&models.KnowledgeDocument{ID: "doc-projects", Title: "Creating projects", Content: "Use the + button to create a project"},
		), nil
	}

	docs, err := svc.SearchDocuments(context.Background(), "how do I create a project", &SearchDocumentsOptions{ClientID: "client-1"})

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "doc-projects", docs[0].ID)
}

func TestSearchDocuments_EmptyQuery(t *testing.T) {
	svc, client := newTestService(t)
	client.knowledgeDocs.findFunc = func(_ interface{}, _ *docdb.FindOptions) (docdb.Cursor, error) {
		return cursorOverDocs(&models.KnowledgeDocument{ID: "doc-1", Title: "Anything"}), nil
	}

	docs, err := svc.SearchDocuments(context.Background(), "a an of", nil)

	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSearchQueryResponses_SetsSimilarityAndSorts(t *testing.T) {
	svc, client := newTestService(t)
	client.learned.findFunc = func(_ interface{}, _ *docdb.FindOptions) (docdb.Cursor, error) {
		return cursorOverPairs(
			&models.LearnedResponse{ID: "lr-weak", Query: "create checklist template", Response: "..."},
			&models.LearnedResponse{ID: "lr-strong", Query: "create new project", Response: "..."},
		), nil
	}

	pairs, err := svc.SearchQueryResponses(context.Background(), "create a project", &SearchResponsesOptions{ClientID: "client-1"})

	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "lr-strong", pairs[0].ID)
	assert.Greater(t, pairs[0].Similarity, pairs[1].Similarity)
}

func TestLogUnrecognizedQuery(t *testing.T) {
	svc, client := newTestService(t)

	id, err := svc.LogUnrecognizedQuery(context.Background(), "mystery question", &QueryContext{
		BusinessID:  "biz-1",
		ClientID:    "client-1",
		CurrentView: "dashboard",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, id)
	require.Len(t, client.unrecognized.inserted, 1)
	entry := client.unrecognized.inserted[0].(*models.UnrecognizedQuery)
	assert.Equal(t, "mystery question", entry.Query)
	assert.Equal(t, "biz-1", entry.BusinessID)
	assert.Equal(t, "dashboard", entry.CurrentView)
}

func TestUpdateResponseSuccess_IncrementsCounters(t *testing.T) {
	svc, client := newTestService(t)
	var captured bson.M
	client.learned.updateFunc = func(_, update interface{}) (*docdb.UpdateResult, error) {
		captured = update.(bson.M)
		return &docdb.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
	}

	err := svc.UpdateResponseSuccess(context.Background(), "lr-1", true)

	require.NoError(t, err)
	inc := captured["$inc"].(bson.M)
	assert.Equal(t, 1, inc["useCount"])
	assert.Equal(t, 1, inc["successCount"])
}

func TestUpdateResponseSuccess_UnhelpfulSkipsSuccessCount(t *testing.T) {
	svc, client := newTestService(t)
	var captured bson.M
	client.learned.updateFunc = func(_, update interface{}) (*docdb.UpdateResult, error) {
		captured = update.(bson.M)
		return &docdb.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
	}

	err := svc.UpdateResponseSuccess(context.Background(), "lr-1", false)

	require.NoError(t, err)
	inc := captured["$inc"].(bson.M)
	assert.Equal(t, 1, inc["useCount"])
	assert.NotContains(t, inc, "successCount")
}

func TestUpdateResponseSuccess_NotFound(t *testing.T) {
	svc, client := newTestService(t)
	client.learned.updateFunc = func(_, _ interface{}) (*docdb.UpdateResult, error) {
		return &docdb.UpdateResult{MatchedCount: 0}, nil
	}

	err := svc.UpdateResponseSuccess(context.Background(), "missing", true)

	assert.True(t, domainerrors.IsNotFound(err))
}

func TestCleanupBadResponses(t *testing.T) {
	svc, client := newTestService(t)
	var captured interface{}
	client.learned.deleteFunc = func(filter interface{}) (*docdb.DeleteResult, error) {
		captured = filter
		return &docdb.DeleteResult{DeletedCount: 3}, nil
	}

	deleted, err := svc.CleanupBadResponses(context.Background(), []string{`\bsports?\b`, `\bweather\b`})

	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	ors := captured.(bson.M)["$or"].([]bson.M)
	assert.Len(t, ors, 2)
}

func TestCleanupBadResponses_NoPatterns(t *testing.T) {
	svc, client := newTestService(t)
	client.learned.deleteFunc = func(_ interface{}) (*docdb.DeleteResult, error) {
		return nil, fmt.Errorf("should not be called")
	}

	deleted, err := svc.CleanupBadResponses(context.Background(), nil)

	require.NoError(t, err)
	assert.Zero(t, deleted)
}
