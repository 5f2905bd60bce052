package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewhub/chatbot-service/internal/api/dto"
	domainerrors "github.com/crewhub/chatbot-service/internal/domain/errors"
	"github.com/crewhub/chatbot-service/internal/domain/models"
	"github.com/crewhub/chatbot-service/internal/services/chatbot"
)

// fakeChatbot implements chatbot.Service with function fields.
type fakeChatbot struct {
	processFunc  func(ctx context.Context, req *chatbot.ProcessRequest) (*chatbot.ProcessResult, error)
	historyFunc  func(ctx context.Context, req *chatbot.HistoryRequest) (*chatbot.HistoryResult, error)
	clearFunc    func(ctx context.Context, businessID, clientID, sessionID string) (int64, error)
	sessionsFunc func(ctx context.Context, req *chatbot.SessionsRequest) (*chatbot.SessionsResult, error)
	feedbackFunc func(ctx context.Context, req *chatbot.FeedbackRequest) error
}

func (f *fakeChatbot) ProcessMessage(ctx context.Context, req *chatbot.ProcessRequest) (*chatbot.ProcessResult, error) {
	return f.processFunc(ctx, req)
}

func (f *fakeChatbot) GetHistory(ctx context.Context, req *chatbot.HistoryRequest) (*chatbot.HistoryResult, error) {
	return f.historyFunc(ctx, req)
}

func (f *fakeChatbot) ClearHistory(ctx context.Context, businessID, clientID, sessionID string) (int64, error) {
	return f.clearFunc(ctx, businessID, clientID, sessionID)
}

func (f *fakeChatbot) ListSessions(ctx context.Context, req *chatbot.SessionsRequest) (*chatbot.SessionsResult, error) {
	return f.sessionsFunc(ctx, req)
}

func (f *fakeChatbot) RecordFeedback(ctx context.Context, req *chatbot.FeedbackRequest) error {
	return f.feedbackFunc(ctx, req)
}

func (f *fakeChatbot) ResetCleanupGuard() {}

func setupChatRouter(svc chatbot.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handler := NewChatHandler(svc)
	chat := router.Group("/businesses/:businessId/chat")
	chat.POST("/messages", handler.SendMessage)
	chat.GET("/history", handler.GetHistory)
	chat.GET("/sessions", handler.ListSessions)
	chat.DELETE("/sessions/:sessionId", handler.ClearHistory)
	chat.POST("/feedback", handler.RecordFeedback)
	return router
}

func TestSendMessage(t *testing.T) {
	var captured *chatbot.ProcessRequest
	svc := &fakeChatbot{
		processFunc: func(_ context.Context, req *chatbot.ProcessRequest) (*chatbot.ProcessResult, error) {
			captured = req
			return &chatbot.ProcessResult{
				Success:            true,
				Response:           "Hi Sam! How can I help you today?",
				SessionID:          "sess-1",
				Source:             models.SourceConversation,
				Confidence:         1.0,
				ShouldShowFeedback: false,
				MessageID:          "msg-1",
				Suggestions:        []models.Suggestion{{ID: "view_projects", Label: "View projects"}},
			}, nil
		},
	}
	router := setupChatRouter(svc)

	body, _ := json.Marshal(dto.SendMessageRequest{
		Content:  "hello",
		ClientID: "client-1",
		UserID:   "user-1",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/businesses/biz-1/chat/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "biz-1", captured.BusinessID)
	assert.Equal(t, "client-1", captured.ClientID)

	var resp dto.SendMessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "sess-1", resp.SessionID)
	assert.Equal(t, "conversation", resp.ResponseSource)
	require.Len(t, resp.Suggestions, 1)
	assert.Equal(t, "view_projects", resp.Suggestions[0].ID)
	assert.Equal(t, "msg-1", resp.MessageID)
}

func TestSendMessage_MissingContent(t *testing.T) {
	router := setupChatRouter(&fakeChatbot{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/businesses/biz-1/chat/messages",
		bytes.NewReader([]byte(`{"clientId":"client-1"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestSendMessage_ServiceError(t *testing.T) {
	svc := &fakeChatbot{
		processFunc: func(_ context.Context, _ *chatbot.ProcessRequest) (*chatbot.ProcessResult, error) {
			return nil, domainerrors.NewNotFoundError("business", "biz-1")
		},
	}
	router := setupChatRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/businesses/biz-1/chat/messages",
		bytes.NewReader([]byte(`{"clientId":"client-1","content":"hi"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestGetHistory_DefaultsLimit(t *testing.T) {
	var captured *chatbot.HistoryRequest
	svc := &fakeChatbot{
		historyFunc: func(_ context.Context, req *chatbot.HistoryRequest) (*chatbot.HistoryResult, error) {
			captured = req
			return &chatbot.HistoryResult{
				Messages: []*models.Message{
					{ID: "m1", Sender: models.SenderUser, Content: "hi", SessionID: "sess-1"},
					{ID: "m2", Sender: models.SenderBot, Content: "hello", SessionID: "sess-1"},
				},
				Total: 2,
			}, nil
		},
	}
	router := setupChatRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/businesses/biz-1/chat/history?clientId=client-1&sessionId=sess-1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(50), captured.Limit)
	assert.Equal(t, "sess-1", captured.SessionID)

	var resp dto.GetHistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, int64(2), resp.Total)
	assert.Equal(t, "user", resp.Messages[0].Sender)
}

func TestGetHistory_RequiresClientID(t *testing.T) {
	router := setupChatRouter(&fakeChatbot{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/businesses/biz-1/chat/history", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClearHistory(t *testing.T) {
	svc := &fakeChatbot{
		clearFunc: func(_ context.Context, businessID, clientID, sessionID string) (int64, error) {
			assert.Equal(t, "biz-1", businessID)
			assert.Equal(t, "client-1", clientID)
			assert.Equal(t, "sess-1", sessionID)
			return 4, nil
		},
	}
	router := setupChatRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/businesses/biz-1/chat/sessions/sess-1?clientId=client-1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.ClearHistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(4), resp.Deleted)
}

func TestListSessions_DefaultsLimit(t *testing.T) {
	var captured *chatbot.SessionsRequest
	svc := &fakeChatbot{
		sessionsFunc: func(_ context.Context, req *chatbot.SessionsRequest) (*chatbot.SessionsResult, error) {
			captured = req
			return &chatbot.SessionsResult{
				Sessions: []*models.SessionSummary{
					{SessionID: "sess-1", MessageCount: 6, LastMessage: "thanks", UserName: "Sam"},
				},
				Total: 1,
			}, nil
		},
	}
	router := setupChatRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/businesses/biz-1/chat/sessions?clientId=client-1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(20), captured.Limit)

	var resp dto.GetSessionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Sessions, 1)
	assert.Equal(t, "sess-1", resp.Sessions[0].SessionID)
	assert.Equal(t, "Sam", resp.Sessions[0].UserName)
}

func TestRecordFeedback(t *testing.T) {
	var captured *chatbot.FeedbackRequest
	svc := &fakeChatbot{
		feedbackFunc: func(_ context.Context, req *chatbot.FeedbackRequest) error {
			captured = req
			return nil
		},
	}
	router := setupChatRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/businesses/biz-1/chat/feedback",
		bytes.NewReader([]byte(`{"messageId":"msg-1","wasHelpful":true,"comment":"spot on"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "biz-1", captured.BusinessID)
	assert.Equal(t, "msg-1", captured.MessageID)
	assert.True(t, captured.WasHelpful)

	var resp dto.FeedbackResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestRecordFeedback_UnknownMessage(t *testing.T) {
	svc := &fakeChatbot{
		feedbackFunc: func(_ context.Context, _ *chatbot.FeedbackRequest) error {
			return domainerrors.NewNotFoundError("message", "ghost")
		},
	}
	router := setupChatRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/businesses/biz-1/chat/feedback",
		bytes.NewReader([]byte(`{"messageId":"ghost","wasHelpful":false}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
