package chatbot

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/crewhub/chatbot-service/internal/core/docdb"
	domainerrors "github.com/crewhub/chatbot-service/internal/domain/errors"
	"github.com/crewhub/chatbot-service/internal/domain/models"
	"github.com/crewhub/chatbot-service/internal/services/directory"
	"github.com/crewhub/chatbot-service/internal/services/knowledge"
)

const (
	// DefaultHistoryLimit is how many recent turns feed the context.
	DefaultHistoryLimit = 5
	// DefaultFeedbackSampleRate samples feedback every Nth message when
	// no other rule forces it.
	DefaultFeedbackSampleRate = 5
	// DefaultPlatformName is used when config leaves it empty.
	DefaultPlatformName = "CrewHub"

	// shortMessageThreshold forces the feedback prompt for short inputs.
	shortMessageThreshold = 20
	// highConfidenceThreshold forces the feedback prompt on strong matches.
	highConfidenceThreshold = 0.7
	// unrecognizedThreshold triggers unrecognized-query logging.
	unrecognizedThreshold = 0.3

	apologyText = "Sorry, something went wrong on my end. Please try again in a moment."
)

// featureInquiryPattern gates the knowledge-first short-circuit.
var featureInquiryPattern = regexp.MustCompile(`(do you (offer|have|support)|is there|can i |does .+ (have|support)|how (do|can) i use)`)

// greetingPrefixPattern strips canned greeting openers on follow-ups.
var greetingPrefixPattern = regexp.MustCompile(`(?i)^(hi|hello|hey)[^.!]*[.!]\s*`)

// greetingStartPattern detects a greeting opener in small talk.
var greetingStartPattern = regexp.MustCompile(`^(hi|hello|hey|howdy)\b`)

// sentenceEndPattern splits knowledge content into sentences.
var sentenceEndPattern = regexp.MustCompile(`([.!?])\s+`)

// platformFeatures is the fallback feature vocabulary when a business
// profile carries no feature list.
var platformFeatures = []string{
	"chat", "projects", "tasks", "time", "scheduling", "reports",
	"checklists", "galleries", "safety", "supplies",
}

// suggestionKeywords maps content keywords to quick-reply actions for
// knowledge responses.
var suggestionKeywords = []struct {
	Keyword    string
	Suggestion models.Suggestion
}{
	{"project", models.Suggestion{ID: "projects", Label: "View projects"}},
	{"task", models.Suggestion{ID: "tasks", Label: "View tasks"}},
	{"schedule", models.Suggestion{ID: "schedule", Label: "Open schedule"}},
	{"report", models.Suggestion{ID: "reports", Label: "View reports"}},
	{"chat", models.Suggestion{ID: "chat", Label: "Open chat"}},
	{"checklist", models.Suggestion{ID: "checklists", Label: "Open checklists"}},
	{"team", models.Suggestion{ID: "team", Label: "View team"}},
	{"time", models.Suggestion{ID: "timesheets", Label: "View timesheets"}},
}

// SideEffectResult reports the outcome of a best-effort side effect.
// Callers log it; it never fails the pipeline.
type SideEffectResult struct {
	OK     bool
	Reason string
}

func sideEffectOK() SideEffectResult {
	return SideEffectResult{OK: true}
}

func sideEffectFailed(reason string) SideEffectResult {
	return SideEffectResult{Reason: reason}
}

// ProcessRequest carries one inbound chat message.
type ProcessRequest struct {
	BusinessID  string
	ClientID    string
	UserID      string
	SessionID   string
	Content     string
	CurrentView string
	Extra       map[string]interface{}
}

// ProcessResult is the engine's reply for one message.
type ProcessResult struct {
	Success            bool                  `json:"success"`
	Response           string                `json:"response"`
	Suggestions        []models.Suggestion   `json:"suggestions,omitempty"`
	SessionID          string                `json:"sessionId"`
	Source             models.ResponseSource `json:"responseSource"`
	Confidence         float64               `json:"confidence"`
	ShouldShowFeedback bool                  `json:"shouldShowFeedback"`
	MessageID          string                `json:"messageId,omitempty"`
}

// HistoryRequest filters a conversation history fetch.
type HistoryRequest struct {
	BusinessID string
	ClientID   string
	SessionID  string
	UserID     string
	Limit      int64
	Offset     int64
}

// HistoryResult is a paginated slice of conversation history.
type HistoryResult struct {
	Messages []*models.Message `json:"messages"`
	Total    int64             `json:"total"`
}

// SessionsRequest filters the active-session listing.
type SessionsRequest struct {
	BusinessID string
	ClientID   string
	Limit      int64
	Offset     int64
}

// SessionsResult is a paginated slice of session summaries.
type SessionsResult struct {
	Sessions []*models.SessionSummary `json:"sessions"`
	Total    int64                    `json:"total"`
}

// FeedbackRequest records helpfulness feedback on a bot message.
type FeedbackRequest struct {
	BusinessID string
	MessageID  string
	WasHelpful bool
	Comment    string
	SourceID   string
}

// Service is the chatbot response engine.
type Service interface {
	// ProcessMessage runs one message through the response pipeline.
	// Internal failures never surface as errors; they produce an
	// apologetic success=false result instead.
	ProcessMessage(ctx context.Context, req *ProcessRequest) (*ProcessResult, error)

	// GetHistory returns conversation history, chronological, paginated.
	GetHistory(ctx context.Context, req *HistoryRequest) (*HistoryResult, error)

	// ClearHistory deletes every message in a session and returns the count.
	ClearHistory(ctx context.Context, businessID, clientID, sessionID string) (int64, error)

	// ListSessions returns active session summaries with user display data.
	ListSessions(ctx context.Context, req *SessionsRequest) (*SessionsResult, error)

	// RecordFeedback attaches feedback to a bot message and best-effort
	// updates the learned-pair success counters.
	RecordFeedback(ctx context.Context, req *FeedbackRequest) error

	// ResetCleanupGuard re-arms the one-time learned-store cleanup.
	// Intended for test isolation.
	ResetCleanupGuard()
}

// Config holds the dependencies for the chatbot service.
type Config struct {
	DocDBClient        docdb.Client
	Knowledge          knowledge.Service
	Directory          directory.Service
	HistoryLimit       int64
	FeedbackSampleRate int64
	PlatformName       string
	Logger             zerolog.Logger
}

// service implements the Service interface.
type service struct {
	docDBClient        docdb.Client
	knowledge          knowledge.Service
	directory          directory.Service
	rules              []ResponseRule
	validator          *validator
	historyLimit       int64
	feedbackSampleRate int64
	platformName       string
	logger             zerolog.Logger

	cleanupMu   sync.Mutex
	cleanedOnce bool
}

// NewService creates a new chatbot service.
func NewService(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.DocDBClient == nil {
		return nil, fmt.Errorf("docdb client is required")
	}
	if cfg.Knowledge == nil {
		return nil, fmt.Errorf("knowledge service is required")
	}
	if cfg.Directory == nil {
		return nil, fmt.Errorf("directory service is required")
	}

	historyLimit := cfg.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	sampleRate := cfg.FeedbackSampleRate
	if sampleRate <= 0 {
		sampleRate = DefaultFeedbackSampleRate
	}
	platformName := cfg.PlatformName
	if platformName == "" {
		platformName = DefaultPlatformName
	}

	return &service{
		docDBClient:        cfg.DocDBClient,
		knowledge:          cfg.Knowledge,
		directory:          cfg.Directory,
		rules:              defaultRules(),
		validator:          &validator{platformName: platformName, logger: cfg.Logger},
		historyLimit:       historyLimit,
		feedbackSampleRate: sampleRate,
		platformName:       platformName,
		logger:             cfg.Logger,
	}, nil
}

// engineResponse is the internal result of the matching pipeline.
type engineResponse struct {
	Text        string
	Suggestions []models.Suggestion
	Meta        *models.ResponseMeta
}

// ProcessMessage runs one message through the response pipeline.
func (s *service) ProcessMessage(ctx context.Context, req *ProcessRequest) (*ProcessResult, error) {
	if req == nil || req.BusinessID == "" || req.ClientID == "" {
		return nil, domainerrors.NewValidationError("businessId and clientId are required", "")
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, domainerrors.NewValidationError("message content is required", "")
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	logger := s.logger.With().
		Str("business_id", req.BusinessID).
		Str("session_id", sessionID).
		Logger()

	// One-time denylist cleanup of the learned store, best-effort.
	if result := s.runCleanupOnce(ctx); !result.OK && result.Reason != "" {
		logger.Warn().Str("reason", result.Reason).Msg("learned-store cleanup failed")
	}

	chatCtx := s.buildContext(ctx, req, sessionID)

	// The user turn is persisted before anything can fail.
	userMessage := models.NewUserMessage(req.BusinessID, req.ClientID, req.UserID, sessionID, req.Content)
	userMessage.ID = uuid.NewString()
	if err := s.docDBClient.Messages().Add(ctx, userMessage); err != nil {
		logger.Error().Err(err).Msg("failed to persist user message")
		return s.apologize(sessionID), nil
	}

	resp := s.safeGenerate(ctx, req, chatCtx, sessionID, logger)
	if resp == nil {
		return s.apologize(sessionID), nil
	}

	resp.Meta.ShouldShowFeedback = s.shouldShowFeedback(resp.Meta, len(req.Content), chatCtx.MessageCount)
	resp.Meta.CurrentView = req.CurrentView

	botMessage := models.NewBotMessage(req.BusinessID, req.ClientID, sessionID, resp.Text, resp.Suggestions, resp.Meta)
	botMessage.ID = uuid.NewString()
	if err := s.docDBClient.Messages().Add(ctx, botMessage); err != nil {
		logger.Error().Err(err).Msg("failed to persist bot message")
		return s.apologize(sessionID), nil
	}

	logger.Info().
		Str("source", string(resp.Meta.Source)).
		Float64("confidence", resp.Meta.Confidence).
		Msg("message processed")

	return &ProcessResult{
		Success:            true,
		Response:           resp.Text,
		Suggestions:        resp.Suggestions,
		SessionID:          sessionID,
		Source:             resp.Meta.Source,
		Confidence:         resp.Meta.Confidence,
		ShouldShowFeedback: resp.Meta.ShouldShowFeedback,
		MessageID:          botMessage.ID,
	}, nil
}

// safeGenerate shields the caller from any failure inside the matching
// pipeline, including panics.
func (s *service) safeGenerate(ctx context.Context, req *ProcessRequest, chatCtx *models.ChatContext, sessionID string, logger zerolog.Logger) (resp *engineResponse) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("response generation panicked")
			resp = nil
		}
	}()

	business, err := s.directory.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to resolve business")
		return nil
	}

	var user *models.User
	if req.UserID != "" {
		user, err = s.directory.GetUser(ctx, req.UserID)
		if err != nil {
			// Personalization is optional; fall back to a generic address.
			logger.Warn().Err(err).Str("user_id", req.UserID).Msg("user lookup failed")
			user = nil
		}
	}

	resp, err = s.generateResponse(ctx, req, business, user, chatCtx)
	if err != nil {
		logger.Error().Err(err).Msg("response generation failed")
		return nil
	}
	return resp
}

// generateResponse sequences the matching stages. First match wins and
// is terminal for the call.
func (s *service) generateResponse(ctx context.Context, req *ProcessRequest, business *models.Business, user *models.User, chatCtx *models.ChatContext) (*engineResponse, error) {
	message := req.Content

	// Stage 1: closure.
	if isClosure(message) {
		return &engineResponse{
			Text: closureResponse.Text,
			Meta: &models.ResponseMeta{Source: models.SourceClosure, Confidence: 1.0},
		}, nil
	}

	// Stage 2: conversational small talk. Only specific handlers are
	// terminal; unhandled small talk falls through to later stages.
	if isConversational(message) {
		if resp := s.conversationalResponse(message, business, user); resp != nil {
			return resp, nil
		}
	}

	// Stage 3: knowledge-first short-circuit for feature questions.
	if feature := s.matchFeatureInquiry(message, business); feature != "" {
		resp, err := s.knowledgeResponse(ctx, req, business, user, 0.85)
		if err != nil {
			return nil, err
		}
		if resp != nil {
			return resp, nil
		}
	}

	queryTerms := ExtractKeyTerms(message)

	// Stage 4: learned query/response pairs.
	if resp := s.learnedResponse(ctx, req, business, user, queryTerms); resp != nil {
		return resp, nil
	}

	// Stage 5: knowledge documents, no feature gate.
	resp, err := s.knowledgeResponse(ctx, req, business, user, 0.75)
	if err != nil {
		return nil, err
	}
	if resp != nil {
		return resp, nil
	}

	// Stage 6: canned NLP templates.
	resp = s.templateResponse(message, queryTerms, business, user, chatCtx)

	// Stage 7: log queries nothing answered confidently.
	if resp.Meta.Confidence < unrecognizedThreshold {
		id, err := s.knowledge.LogUnrecognizedQuery(ctx, message, &knowledge.QueryContext{
			BusinessID:  req.BusinessID,
			ClientID:    req.ClientID,
			CurrentView: req.CurrentView,
		})
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to log unrecognized query")
		} else {
			resp.Meta.UnrecognizedLogID = id
		}
	}

	return resp, nil
}

// conversationalResponse handles the specific small-talk patterns.
// Returns nil when none of them matches.
func (s *service) conversationalResponse(message string, business *models.Business, user *models.User) *engineResponse {
	normalized := normalizeMessage(message)
	name := addressName(user)
	meta := &models.ResponseMeta{Source: models.SourceConversation, Confidence: 1.0}

	switch {
	case greetingStartPattern.MatchString(normalized):
		return &engineResponse{
			Text: fmt.Sprintf("Hi %s! I'm the %s assistant. What can I help you with today?", name, business.Name),
			Suggestions: []models.Suggestion{
				{ID: "projects", Label: "Manage projects"},
				{ID: "help", Label: "What can you do?"},
			},
			Meta: meta,
		}
	case strings.HasPrefix(normalized, "how are you") || strings.HasPrefix(normalized, "how's it going") || strings.HasPrefix(normalized, "hows it going"):
		return &engineResponse{
			Text: fmt.Sprintf("Doing great, thanks for asking! Ready to help with anything %s related. What do you need?", s.platformName),
			Meta: meta,
		}
	case strings.HasPrefix(normalized, "what's up") || strings.HasPrefix(normalized, "whats up") || strings.HasPrefix(normalized, "sup"):
		return &engineResponse{
			Text: fmt.Sprintf("Not much, just here to help %s run smoothly! Ask me about projects, tasks or scheduling.", business.Name),
			Meta: meta,
		}
	case strings.HasPrefix(normalized, "good morning"):
		return &engineResponse{Text: fmt.Sprintf("Good morning %s! What's on the plate today?", name), Meta: meta}
	case strings.HasPrefix(normalized, "good afternoon"):
		return &engineResponse{Text: fmt.Sprintf("Good afternoon %s! How can I help?", name), Meta: meta}
	case strings.HasPrefix(normalized, "good evening"):
		return &engineResponse{Text: fmt.Sprintf("Good evening %s! How can I help?", name), Meta: meta}
	}

	return nil
}

// matchFeatureInquiry returns the mentioned feature keyword when the
// message looks like a feature question, or "" otherwise.
func (s *service) matchFeatureInquiry(message string, business *models.Business) string {
	normalized := normalizeMessage(message)
	if !featureInquiryPattern.MatchString(normalized) {
		return ""
	}

	for _, feature := range platformFeatures {
		if !strings.Contains(normalized, strings.ToLower(feature)) {
			continue
		}
		// A business with an explicit plan is only gated on the
		// features that plan includes.
		if len(business.IncludedFeatures) > 0 && !business.HasFeature(feature) {
			continue
		}
		return feature
	}
	return ""
}

// learnedResponse tries the learned query/response store. A candidate
// that fails validation is logged and the stage falls through without
// retrying the remaining candidates.
func (s *service) learnedResponse(ctx context.Context, req *ProcessRequest, business *models.Business, user *models.User, queryTerms []string) *engineResponse {
	pairs, err := s.knowledge.SearchQueryResponses(ctx, req.Content, &knowledge.SearchResponsesOptions{
		ClientID: req.ClientID,
		Category: req.CurrentView,
		Limit:    3,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("learned response search failed")
		return nil
	}
	if len(pairs) == 0 {
		return nil
	}

	top := pairs[0]
	if !s.validator.validate(req.Content, top, queryTerms) {
		return nil
	}

	return &engineResponse{
		Text: s.substitute(top.Response, business, user),
		Meta: &models.ResponseMeta{
			Source:          models.SourceLearned,
			Confidence:      top.Similarity,
			LearnedSourceID: top.ID,
		},
	}
}

// knowledgeResponse searches help documents and formats the best hit.
func (s *service) knowledgeResponse(ctx context.Context, req *ProcessRequest, business *models.Business, user *models.User, confidence float64) (*engineResponse, error) {
	docs, err := s.knowledge.SearchDocuments(ctx, req.Content, &knowledge.SearchDocumentsOptions{
		ClientID:     req.ClientID,
		BusinessType: string(business.OperationType),
		Features:     business.IncludedFeatures,
		CurrentView:  req.CurrentView,
		Limit:        1,
	})
	if err != nil {
		return nil, fmt.Errorf("knowledge search failed: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	doc := docs[0]
	return &engineResponse{
		Text:        formatKnowledgeText(doc, addressName(user)),
		Suggestions: extractSuggestions(doc.Content, 4),
		Meta: &models.ResponseMeta{
			Source:        models.SourceKnowledge,
			Confidence:    confidence,
			KnowledgeUsed: true,
		},
	}, nil
}

// templateResponse scores the canned rule table and assembles the final
// NLP-stage reply, or the low-confidence default.
func (s *service) templateResponse(message string, queryTerms []string, business *models.Business, user *models.User, chatCtx *models.ChatContext) *engineResponse {
	normalized := normalizeMessage(message)

	// Explicit how-to-create questions override scoring.
	for _, howTo := range createHowToPatterns {
		if howTo.Pattern.MatchString(normalized) {
			return &engineResponse{
				Text:        s.substitute(howTo.Response.Text, business, user),
				Suggestions: howTo.Response.Suggestions,
				Meta:        &models.ResponseMeta{Source: models.SourceNLP, Confidence: 0.9},
			}
		}
	}

	// View-specific nudges only apply to short, greeting or help messages
	// so they never hijack a concrete question.
	if chatCtx.CurrentView != "" && isNudgeEligible(normalized) {
		if view, ok := viewResponses[chatCtx.CurrentView]; ok {
			return &engineResponse{
				Text:        s.substitute(view.Text, business, user),
				Suggestions: view.Suggestions,
				Meta:        &models.ResponseMeta{Source: models.SourceNLP, Confidence: 0.8, MatchedCategory: "view:" + chatCtx.CurrentView},
			}
		}
	}

	var best, second *ResponseRule
	var bestScore, secondScore float64
	for i := range s.rules {
		rule := &s.rules[i]
		score := scoreMatch(queryTerms, rule.Keywords)
		// Earlier rules win ties.
		if score > bestScore {
			second, secondScore = best, bestScore
			best, bestScore = rule, score
		} else if score > secondScore {
			second, secondScore = rule, score
		}
	}

	if best == nil || bestScore <= nlpScoreThreshold {
		return &engineResponse{
			Text:        defaultResponse.Text,
			Suggestions: defaultResponse.Suggestions,
			Meta:        &models.ResponseMeta{Source: models.SourceNLP, Confidence: defaultConfidence},
		}
	}

	text := s.substitute(best.Response.Text, business, user)
	suggestions := best.Response.Suggestions

	if isFollowUp(message, chatCtx.ConversationHistory) {
		text = greetingPrefixPattern.ReplaceAllString(text, "")
		if second != nil && secondScore > suggestionMergeThreshold {
			suggestions = mergeSuggestions(suggestions, second.Response.Suggestions)
		}
	}

	return &engineResponse{
		Text:        text,
		Suggestions: suggestions,
		Meta: &models.ResponseMeta{
			Source:          models.SourceNLP,
			Confidence:      bestScore,
			MatchedCategory: best.Category,
		},
	}
}

// shouldShowFeedback applies the feedback gating rules in order:
// suppression for closure/conversation, forced for knowledge/learned and
// logged queries, forced for confident or short messages, otherwise
// sampled every Nth message of the session.
func (s *service) shouldShowFeedback(meta *models.ResponseMeta, messageLen int, messageCount int64) bool {
	switch meta.Source {
	case models.SourceClosure, models.SourceConversation:
		return false
	case models.SourceKnowledge, models.SourceLearned:
		return true
	}
	if meta.UnrecognizedLogID != "" {
		return true
	}
	if meta.Confidence > highConfidenceThreshold {
		return true
	}
	if messageLen < shortMessageThreshold {
		return true
	}
	return messageCount%s.feedbackSampleRate == 0
}

// buildContext loads the recent history and assembles the per-request
// conversation context. Failures degrade to an empty context.
func (s *service) buildContext(ctx context.Context, req *ProcessRequest, sessionID string) *models.ChatContext {
	chatCtx := &models.ChatContext{
		CurrentView:  req.CurrentView,
		Extra:        req.Extra,
		MessageCount: 1,
	}

	opts := &docdb.ListMessagesOptions{
		BusinessID: req.BusinessID,
		ClientID:   req.ClientID,
		SessionID:  sessionID,
		Limit:      s.historyLimit,
		OrderBy:    docdb.SortOrderDesc,
	}

	recent, err := s.docDBClient.Messages().List(ctx, opts)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load conversation history")
		return chatCtx
	}

	// Newest-first from the store, chronological in the context.
	for i := len(recent) - 1; i >= 0; i-- {
		chatCtx.ConversationHistory = append(chatCtx.ConversationHistory, models.HistoryEntry{
			Sender:  recent[i].Sender,
			Content: recent[i].Content,
		})
	}

	count, err := s.docDBClient.Messages().Count(ctx, opts)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to count session messages")
		return chatCtx
	}
	chatCtx.MessageCount = count + 1

	return chatCtx
}

// runCleanupOnce removes denylisted learned responses exactly once per
// process lifetime. Marks itself complete even on failure to avoid
// retry storms.
func (s *service) runCleanupOnce(ctx context.Context) SideEffectResult {
	s.cleanupMu.Lock()
	if s.cleanedOnce {
		s.cleanupMu.Unlock()
		return sideEffectOK()
	}
	s.cleanedOnce = true
	s.cleanupMu.Unlock()

	count, err := s.knowledge.CleanupBadResponses(ctx, badResponsePatterns)
	if err != nil {
		return sideEffectFailed(err.Error())
	}
	if count > 0 {
		s.logger.Info().Int64("deleted", count).Msg("cleaned up off-topic learned responses")
	}
	return sideEffectOK()
}

// ResetCleanupGuard re-arms the one-time cleanup, for test isolation.
func (s *service) ResetCleanupGuard() {
	s.cleanupMu.Lock()
	s.cleanedOnce = false
	s.cleanupMu.Unlock()
}

// GetHistory returns conversation history, chronological, paginated.
func (s *service) GetHistory(ctx context.Context, req *HistoryRequest) (*HistoryResult, error) {
	if req == nil || req.BusinessID == "" || req.ClientID == "" {
		return nil, domainerrors.NewValidationError("businessId and clientId are required", "")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}

	opts := &docdb.ListMessagesOptions{
		BusinessID: req.BusinessID,
		ClientID:   req.ClientID,
		SessionID:  req.SessionID,
		UserID:     req.UserID,
		Limit:      limit,
		Skip:       req.Offset,
		OrderBy:    docdb.SortOrderAsc,
	}

	total, err := s.docDBClient.Messages().Count(ctx, opts)
	if err != nil {
		return nil, domainerrors.NewInternalError("failed to count messages", err)
	}

	messages, err := s.docDBClient.Messages().List(ctx, opts)
	if err != nil {
		return nil, domainerrors.NewInternalError("failed to list messages", err)
	}

	return &HistoryResult{Messages: messages, Total: total}, nil
}

// ClearHistory deletes every message in a session.
func (s *service) ClearHistory(ctx context.Context, businessID, clientID, sessionID string) (int64, error) {
	if businessID == "" || clientID == "" || sessionID == "" {
		return 0, domainerrors.NewValidationError("businessId, clientId and sessionId are required", "")
	}

	deleted, err := s.docDBClient.Messages().DeleteBySession(ctx, businessID, clientID, sessionID)
	if err != nil {
		return 0, domainerrors.NewInternalError("failed to clear session history", err)
	}

	s.logger.Info().
		Str("business_id", businessID).
		Str("session_id", sessionID).
		Int64("deleted", deleted).
		Msg("session history cleared")

	return deleted, nil
}

// ListSessions returns session summaries with user display data resolved
// concurrently. Individual lookup failures never abort the batch.
func (s *service) ListSessions(ctx context.Context, req *SessionsRequest) (*SessionsResult, error) {
	if req == nil || req.BusinessID == "" || req.ClientID == "" {
		return nil, domainerrors.NewValidationError("businessId and clientId are required", "")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}

	summaries, total, err := s.docDBClient.Messages().ListSessions(ctx, &docdb.ListSessionsOptions{
		BusinessID: req.BusinessID,
		ClientID:   req.ClientID,
		Limit:      limit,
		Skip:       req.Offset,
	})
	if err != nil {
		return nil, domainerrors.NewInternalError("failed to list sessions", err)
	}

	var wg sync.WaitGroup
	for _, summary := range summaries {
		if summary.UserID == "" {
			continue
		}
		wg.Add(1)
		go func(sm *models.SessionSummary) {
			defer wg.Done()
			user, err := s.directory.GetUser(ctx, sm.UserID)
			if err != nil {
				s.logger.Warn().Err(err).Str("user_id", sm.UserID).Msg("session user lookup failed")
				return
			}
			sm.UserName = user.Name
			sm.UserEmail = user.Email
		}(summary)
	}
	wg.Wait()

	return &SessionsResult{Sessions: summaries, Total: total}, nil
}

// RecordFeedback attaches feedback to a bot message. The learned-pair
// success update is best-effort: a missing pair is logged, not surfaced.
func (s *service) RecordFeedback(ctx context.Context, req *FeedbackRequest) error {
	if req == nil || req.BusinessID == "" || req.MessageID == "" {
		return domainerrors.NewValidationError("businessId and messageId are required", "")
	}

	message, err := s.docDBClient.Messages().Get(ctx, req.BusinessID, req.MessageID)
	if err != nil {
		return domainerrors.NewInternalError("failed to load message", err)
	}
	if message == nil {
		return domainerrors.NewNotFoundError("message", req.MessageID)
	}
	if !message.IsBot() {
		return domainerrors.NewBadRequestError("feedback can only be recorded on bot messages", req.MessageID)
	}

	message.AttachFeedback(req.WasHelpful, req.Comment)
	if err := s.docDBClient.Messages().UpdateMeta(ctx, req.BusinessID, req.MessageID, message.Meta); err != nil {
		return domainerrors.NewInternalError("failed to store feedback", err)
	}

	sourceID := req.SourceID
	if sourceID == "" && message.Meta != nil {
		sourceID = message.Meta.LearnedSourceID
	}
	if sourceID != "" {
		if result := s.updateLearnedSuccess(ctx, sourceID, req.WasHelpful); !result.OK {
			s.logger.Warn().
				Str("source_id", sourceID).
				Str("reason", result.Reason).
				Msg("learned response success update failed")
		}
	}

	return nil
}

// updateLearnedSuccess reports feedback to the knowledge base.
func (s *service) updateLearnedSuccess(ctx context.Context, sourceID string, wasHelpful bool) SideEffectResult {
	if err := s.knowledge.UpdateResponseSuccess(ctx, sourceID, wasHelpful); err != nil {
		if domainerrors.IsNotFound(err) {
			return sideEffectFailed("learned response not found")
		}
		return sideEffectFailed(err.Error())
	}
	return sideEffectOK()
}

// apologize is the fixed failure payload; internal errors never escape
// the pipeline.
func (s *service) apologize(sessionID string) *ProcessResult {
	return &ProcessResult{
		Success:   false,
		Response:  apologyText,
		SessionID: sessionID,
		Source:    models.SourceNLP,
	}
}

// substitute fills the business/user/platform placeholders.
func (s *service) substitute(text string, business *models.Business, user *models.User) string {
	text = strings.ReplaceAll(text, "{business}", business.Name)
	text = strings.ReplaceAll(text, "{user}", addressName(user))
	text = strings.ReplaceAll(text, "{platform}", s.platformName)
	return text
}

// addressName picks how to address the user in a reply.
func addressName(user *models.User) string {
	if user != nil && user.Name != "" {
		return user.Name
	}
	return "there"
}

// isNudgeEligible limits view nudges to short, greeting or help messages.
func isNudgeEligible(normalized string) bool {
	if len(strings.Fields(normalized)) <= 4 {
		return true
	}
	return isConversational(normalized) || strings.Contains(normalized, "help")
}

// formatKnowledgeText turns a document into a conversational answer:
// long content is cut to three sentences, a closing line is appended and
// the opening is personalized.
func formatKnowledgeText(doc *models.KnowledgeDocument, name string) string {
	content := strings.TrimSpace(doc.Content)
	if len(content) > 500 {
		content = firstSentences(content, 3)
	}

	opening := fmt.Sprintf("Here's what I found about %s:", doc.Title)
	if name != "there" {
		opening = fmt.Sprintf("Sure %s, here's what I found about %s:", name, doc.Title)
	}

	return opening + "\n\n" + content + "\n\nWant me to go into more detail?"
}

// firstSentences returns the first n sentences of text.
func firstSentences(text string, n int) string {
	parts := sentenceEndPattern.Split(text, n+1)
	ends := sentenceEndPattern.FindAllStringSubmatch(text, n)
	if len(parts) <= n {
		return text
	}

	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(strings.TrimSpace(parts[i]))
		if i < len(ends) {
			b.WriteString(ends[i][1])
		}
		b.WriteString(" ")
	}
	return strings.TrimSpace(b.String())
}

// extractSuggestions derives quick-reply actions from content keywords.
func extractSuggestions(content string, max int) []models.Suggestion {
	lowered := strings.ToLower(content)
	var suggestions []models.Suggestion
	for _, sk := range suggestionKeywords {
		if len(suggestions) >= max {
			break
		}
		if strings.Contains(lowered, sk.Keyword) {
			suggestions = append(suggestions, sk.Suggestion)
		}
	}
	return suggestions
}

// mergeSuggestions combines two suggestion lists, deduplicating by ID.
func mergeSuggestions(a, b []models.Suggestion) []models.Suggestion {
	seen := map[string]bool{}
	merged := make([]models.Suggestion, 0, len(a)+len(b))
	for _, sg := range append(append([]models.Suggestion{}, a...), b...) {
		if seen[sg.ID] {
			continue
		}
		seen[sg.ID] = true
		merged = append(merged, sg)
	}
	return merged
}
