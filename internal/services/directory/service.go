// Package directory provides read-only business and user lookups with
// cache-aside caching.
package directory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/crewhub/chatbot-service/internal/core/cache"
	"github.com/crewhub/chatbot-service/internal/core/docdb"
	domainerrors "github.com/crewhub/chatbot-service/internal/domain/errors"
	"github.com/crewhub/chatbot-service/internal/domain/models"
)

// DefaultCacheTTL is the default TTL for cached profiles.
const DefaultCacheTTL = 5 * time.Minute

// Service provides business and user lookups.
type Service interface {
	// GetBusiness retrieves a business profile by ID.
	GetBusiness(ctx context.Context, id string) (*models.Business, error)

	// GetBusinessByAPIKey retrieves the business owning the given API key.
	// Returns an Unauthorized domain error when no business matches.
	GetBusinessByAPIKey(ctx context.Context, apiKey string) (*models.Business, error)

	// GetUser retrieves a user profile by ID.
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// Config holds the dependencies for the directory service.
type Config struct {
	DocDBClient docdb.Client
	CacheClient cache.Client
	TTL         time.Duration
	Logger      zerolog.Logger
}

// service implements the Service interface.
type service struct {
	docDBClient docdb.Client
	cacheClient cache.Client
	ttl         time.Duration
	logger      zerolog.Logger
}

// NewService creates a new directory service.
func NewService(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.DocDBClient == nil {
		return nil, fmt.Errorf("docdb client is required")
	}
	if cfg.CacheClient == nil {
		return nil, fmt.Errorf("cache client is required")
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}

	return &service{
		docDBClient: cfg.DocDBClient,
		cacheClient: cfg.CacheClient,
		ttl:         ttl,
		logger:      cfg.Logger,
	}, nil
}

// GetBusiness retrieves a business profile by ID.
func (s *service) GetBusiness(ctx context.Context, id string) (*models.Business, error) {
	key := "business:" + id

	var business models.Business
	if s.cacheGet(ctx, key, &business) {
		return &business, nil
	}

	err := s.docDBClient.Businesses().FindOne(ctx, bson.M{"_id": id}).Decode(&business)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainerrors.NewNotFoundError("business", id)
		}
		return nil, fmt.Errorf("failed to look up business: %w", err)
	}

	s.cacheSet(ctx, key, &business)
	return &business, nil
}

// GetBusinessByAPIKey retrieves the business owning the given API key.
func (s *service) GetBusinessByAPIKey(ctx context.Context, apiKey string) (*models.Business, error) {
	// Key material never goes into the cache key verbatim.
	sum := sha256.Sum256([]byte(apiKey))
	key := "business:key:" + hex.EncodeToString(sum[:])

	var business models.Business
	if s.cacheGet(ctx, key, &business) {
		return &business, nil
	}

	err := s.docDBClient.Businesses().FindOne(ctx, bson.M{"apiKey": apiKey}).Decode(&business)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainerrors.NewUnauthorizedError("invalid API key")
		}
		return nil, fmt.Errorf("failed to look up business by API key: %w", err)
	}

	s.cacheSet(ctx, key, &business)
	return &business, nil
}

// GetUser retrieves a user profile by ID.
func (s *service) GetUser(ctx context.Context, id string) (*models.User, error) {
	key := "user:" + id

	var user models.User
	if s.cacheGet(ctx, key, &user) {
		return &user, nil
	}

	err := s.docDBClient.Users().FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainerrors.NewNotFoundError("user", id)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	s.cacheSet(ctx, key, &user)
	return &user, nil
}

// cacheGet attempts a cache read; a cache failure is logged and treated
// as a miss.
func (s *service) cacheGet(ctx context.Context, key string, v interface{}) bool {
	data, err := s.cacheClient.Get(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return false
	}
	if data == nil {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache entry corrupt")
		return false
	}
	return true
}

// cacheSet stores a profile in the cache, best-effort.
func (s *service) cacheSet(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cacheClient.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
