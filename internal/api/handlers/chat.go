// Package handlers provides HTTP handlers for the API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crewhub/chatbot-service/internal/api/dto"
	"github.com/crewhub/chatbot-service/internal/api/middleware"
	"github.com/crewhub/chatbot-service/internal/domain/errors"
	"github.com/crewhub/chatbot-service/internal/services/chatbot"
)

// ChatHandler handles the chat endpoints.
type ChatHandler struct {
	chatbot chatbot.Service
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(svc chatbot.Service) *ChatHandler {
	return &ChatHandler{
		chatbot: svc,
	}
}

// SendMessage handles POST /businesses/{businessId}/chat/messages
// @Summary Submit a chat message
// @Description Runs one user message through the response engine and returns the bot reply
// @Tags Chat
// @Accept json
// @Produce json
// @Param businessId path string true "Business ID"
// @Param request body dto.SendMessageRequest true "Message payload"
// @Success 200 {object} dto.SendMessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/chatbot-service/businesses/{businessId}/chat/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.chatbot.ProcessMessage(c.Request.Context(), &chatbot.ProcessRequest{
		BusinessID:  c.Param("businessId"),
		ClientID:    req.ClientID,
		UserID:      req.UserID,
		SessionID:   req.SessionID,
		Content:     req.Content,
		CurrentView: req.CurrentView,
		Extra:       req.Extra,
	})
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SendMessageResponse{
		Success:            result.Success,
		Response:           result.Response,
		Suggestions:        dto.FromSuggestions(result.Suggestions),
		SessionID:          result.SessionID,
		ResponseSource:     string(result.Source),
		Confidence:         result.Confidence,
		ShouldShowFeedback: result.ShouldShowFeedback,
		MessageID:          result.MessageID,
	})
}

// GetHistoryRequest represents the query parameters for fetching history.
type GetHistoryRequest struct {
	ClientID  string `form:"clientId" binding:"required"`
	SessionID string `form:"sessionId"`
	UserID    string `form:"userId"`
	Limit     int64  `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset    int64  `form:"offset" binding:"omitempty,min=0"`
}

// GetHistory handles GET /businesses/{businessId}/chat/history
// @Summary Get conversation history
// @Description Retrieves conversation history in chronological order with pagination
// @Tags Chat
// @Produce json
// @Param businessId path string true "Business ID"
// @Param clientId query string true "Client ID"
// @Param sessionId query string false "Session ID"
// @Param userId query string false "User ID"
// @Param limit query int false "Maximum number of messages" default(50) minimum(1) maximum(100)
// @Param offset query int false "Offset for pagination" default(0) minimum(0)
// @Success 200 {object} dto.GetHistoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/chatbot-service/businesses/{businessId}/chat/history [get]
func (h *ChatHandler) GetHistory(c *gin.Context) {
	var req GetHistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleError(c, errors.NewValidationError("invalid query parameters", err.Error()))
		return
	}
	if req.Limit == 0 {
		req.Limit = 50
	}

	result, err := h.chatbot.GetHistory(c.Request.Context(), &chatbot.HistoryRequest{
		BusinessID: c.Param("businessId"),
		ClientID:   req.ClientID,
		SessionID:  req.SessionID,
		UserID:     req.UserID,
		Limit:      req.Limit,
		Offset:     req.Offset,
	})
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	messages := make([]*dto.MessageResponse, 0, len(result.Messages))
	for _, m := range result.Messages {
		messages = append(messages, dto.FromMessage(m))
	}

	c.JSON(http.StatusOK, dto.GetHistoryResponse{
		Messages: messages,
		Total:    result.Total,
		Limit:    req.Limit,
		Offset:   req.Offset,
	})
}

// ClearHistory handles DELETE /businesses/{businessId}/chat/sessions/{sessionId}
// @Summary Clear a session
// @Description Deletes every message in a conversation session
// @Tags Chat
// @Produce json
// @Param businessId path string true "Business ID"
// @Param sessionId path string true "Session ID"
// @Param clientId query string true "Client ID"
// @Success 200 {object} dto.ClearHistoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/chatbot-service/businesses/{businessId}/chat/sessions/{sessionId} [delete]
func (h *ChatHandler) ClearHistory(c *gin.Context) {
	deleted, err := h.chatbot.ClearHistory(
		c.Request.Context(),
		c.Param("businessId"),
		c.Query("clientId"),
		c.Param("sessionId"),
	)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ClearHistoryResponse{Deleted: deleted})
}

// ListSessionsRequest represents the query parameters for listing sessions.
type ListSessionsRequest struct {
	ClientID string `form:"clientId" binding:"required"`
	Limit    int64  `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset   int64  `form:"offset" binding:"omitempty,min=0"`
}

// ListSessions handles GET /businesses/{businessId}/chat/sessions
// @Summary List active sessions
// @Description Lists conversation sessions ordered by last activity
// @Tags Chat
// @Produce json
// @Param businessId path string true "Business ID"
// @Param clientId query string true "Client ID"
// @Param limit query int false "Maximum number of sessions" default(20) minimum(1) maximum(100)
// @Param offset query int false "Offset for pagination" default(0) minimum(0)
// @Success 200 {object} dto.GetSessionsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/chatbot-service/businesses/{businessId}/chat/sessions [get]
func (h *ChatHandler) ListSessions(c *gin.Context) {
	var req ListSessionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleError(c, errors.NewValidationError("invalid query parameters", err.Error()))
		return
	}
	if req.Limit == 0 {
		req.Limit = 20
	}

	result, err := h.chatbot.ListSessions(c.Request.Context(), &chatbot.SessionsRequest{
		BusinessID: c.Param("businessId"),
		ClientID:   req.ClientID,
		Limit:      req.Limit,
		Offset:     req.Offset,
	})
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	sessions := make([]*dto.SessionResponse, 0, len(result.Sessions))
	for _, s := range result.Sessions {
		sessions = append(sessions, dto.FromSession(s))
	}

	c.JSON(http.StatusOK, dto.GetSessionsResponse{
		Sessions: sessions,
		Total:    result.Total,
		Limit:    req.Limit,
		Offset:   req.Offset,
	})
}

// RecordFeedback handles POST /businesses/{businessId}/chat/feedback
// @Summary Record response feedback
// @Description Attaches helpfulness feedback to a bot message and updates learned-pair counters
// @Tags Chat
// @Accept json
// @Produce json
// @Param businessId path string true "Business ID"
// @Param request body dto.FeedbackRequest true "Feedback payload"
// @Success 200 {object} dto.FeedbackResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/chatbot-service/businesses/{businessId}/chat/feedback [post]
func (h *ChatHandler) RecordFeedback(c *gin.Context) {
	var req dto.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	err := h.chatbot.RecordFeedback(c.Request.Context(), &chatbot.FeedbackRequest{
		BusinessID: c.Param("businessId"),
		MessageID:  req.MessageID,
		WasHelpful: req.WasHelpful,
		Comment:    req.Comment,
		SourceID:   req.SourceID,
	})
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FeedbackResponse{Success: true})
}
