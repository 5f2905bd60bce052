package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	domainerrors "github.com/crewhub/chatbot-service/internal/domain/errors"
	"github.com/crewhub/chatbot-service/internal/domain/models"
)

type fakeDirectory struct {
	byAPIKeyFunc func(ctx context.Context, apiKey string) (*models.Business, error)
}

func (f *fakeDirectory) GetBusiness(_ context.Context, _ string) (*models.Business, error) {
	return nil, nil
}

func (f *fakeDirectory) GetBusinessByAPIKey(ctx context.Context, apiKey string) (*models.Business, error) {
	return f.byAPIKeyFunc(ctx, apiKey)
}

func (f *fakeDirectory) GetUser(_ context.Context, _ string) (*models.User, error) {
	return nil, nil
}

func setupAuthRouter(dir *fakeDirectory) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	auth := NewAuthMiddleware(dir)
	protected := router.Group("/businesses/:businessId", auth.Authenticate())
	protected.GET("/ping", func(c *gin.Context) {
		business := GetBusiness(c)
		if business == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "business not in context"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"business": business.ID})
	})
	return router
}

func TestAuthenticate_ValidKey(t *testing.T) {
	dir := &fakeDirectory{
		byAPIKeyFunc: func(_ context.Context, apiKey string) (*models.Business, error) {
			assert.Equal(t, "key-1", apiKey)
			return &models.Business{ID: "biz-1", Name: "Acme Builders"}, nil
		},
	}
	router := setupAuthRouter(dir)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/businesses/biz-1/ping", nil)
	req.Header.Set("X-API-Key", "key-1")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "biz-1")
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	router := setupAuthRouter(&fakeDirectory{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/businesses/biz-1/ping", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing X-API-Key")
}

func TestAuthenticate_InvalidKey(t *testing.T) {
	dir := &fakeDirectory{
		byAPIKeyFunc: func(_ context.Context, _ string) (*models.Business, error) {
			return nil, domainerrors.NewUnauthorizedError("invalid API key")
		},
	}
	router := setupAuthRouter(dir)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/businesses/biz-1/ping", nil)
	req.Header.Set("X-API-Key", "wrong")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid API key")
}

func TestAuthenticate_LookupFailureNotReportedAsInvalidKey(t *testing.T) {
	dir := &fakeDirectory{
		byAPIKeyFunc: func(_ context.Context, _ string) (*models.Business, error) {
			return nil, domainerrors.NewInternalError("directory down", nil)
		},
	}
	router := setupAuthRouter(dir)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/businesses/biz-1/ping", nil)
	req.Header.Set("X-API-Key", "key-1")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "authentication failed")
	assert.NotContains(t, w.Body.String(), "invalid API key")
}

func TestAuthenticate_KeyBusinessMismatch(t *testing.T) {
	dir := &fakeDirectory{
		byAPIKeyFunc: func(_ context.Context, _ string) (*models.Business, error) {
			return &models.Business{ID: "biz-other"}, nil
		},
	}
	router := setupAuthRouter(dir)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/businesses/biz-1/ping", nil)
	req.Header.Set("X-API-Key", "key-1")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "does not match business")
}

func TestGetBusiness_Unset(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, GetBusiness(c))
}
