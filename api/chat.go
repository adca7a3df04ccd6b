package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/ragbooking/internal/service/chat"
	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	service chat.ChatUseCase
}

type chatRequest struct {
	SessionID  string `json:"session_id" binding:"required"`
	Query      string `json:"query" binding:"required"`
	DocumentID string `json:"document_id"`
}

func NewChatHandler(service chat.ChatUseCase) *ChatHandler {
	return &ChatHandler{service: service}
}

func (h *ChatHandler) Register(router *gin.RouterGroup) {
	router.POST("/message", h.message)
}

func (h *ChatHandler) message(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.Handle(c.Request.Context(), chat.Message{
		SessionID:  req.SessionID,
		Query:      req.Query,
		DocumentID: req.DocumentID,
	})
	if err != nil {
		_ = c.Error(err)
		c.JSON(chatStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func chatStatus(err error) int {
	switch {
	case errors.Is(err, chat.ErrInvalidMessage):
		return http.StatusBadRequest
	case errors.Is(err, chat.ErrBookingFailed), errors.Is(err, chat.ErrChatFailed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
