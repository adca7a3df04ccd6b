package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/ragbooking/internal/domain"
	"github.com/Domenick1991/ragbooking/internal/service/booking"
	"github.com/Domenick1991/ragbooking/internal/service/chat"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockChatUseCase is a mock implementation of chat.ChatUseCase
type MockChatUseCase struct {
	mock.Mock
}

func (m *MockChatUseCase) Handle(ctx context.Context, msg chat.Message) (*chat.Response, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*chat.Response), args.Error(1)
}

func newChatContext(body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/chat/message", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestChatHandler_messageRAG(t *testing.T) {
	mockService := &MockChatUseCase{}
	handler := NewChatHandler(mockService)
	c, w := newChatContext(`{"session_id":"s1","query":"what is the refund policy?","document_id":"doc-a"}`)

	mockService.On("Handle", c.Request.Context(), chat.Message{SessionID: "s1", Query: "what is the refund policy?", DocumentID: "doc-a"}).
		Return(&chat.Response{Answer: "Five days.", Sources: []domain.RetrievedChunk{{Text: "Refunds take 5 days.", DocumentID: "doc-a"}}}, nil)

	handler.message(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Five days.", body["answer"])
	assert.Len(t, body["sources"], 1)
	assert.NotContains(t, body, "booking")
	mockService.AssertExpectations(t)
}

func TestChatHandler_messageBooking(t *testing.T) {
	mockService := &MockChatUseCase{}
	handler := NewChatHandler(mockService)
	c, w := newChatContext(`{"session_id":"s1","query":"book me an interview"}`)

	result := &booking.Result{
		Error:   true,
		Kind:    booking.KindCollecting,
		Message: "I'm sorry, I didn't get your name. Could you share it?",
		Missing: []string{"name"},
	}
	mockService.On("Handle", c.Request.Context(), mock.AnythingOfType("chat.Message")).
		Return(&chat.Response{Answer: result.Message, Sources: []domain.RetrievedChunk{}, Booking: result}, nil)

	handler.message(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Answer  string           `json:"answer"`
		Sources []map[string]any `json:"sources"`
		Booking map[string]any   `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, result.Message, body.Answer)
	assert.NotNil(t, body.Sources)
	assert.Equal(t, true, body.Booking["error"])
	assert.Equal(t, []any{"name"}, body.Booking["missing"])
	assert.NotContains(t, body.Booking, "Kind")
}

func TestChatHandler_messageBadRequest(t *testing.T) {
	mockService := &MockChatUseCase{}
	handler := NewChatHandler(mockService)

	for _, payload := range []string{`{"query":"hi"}`, `{"session_id":"s1"}`, `not json`} {
		c, w := newChatContext(payload)
		handler.message(c)
		assert.Equal(t, http.StatusBadRequest, w.Code, payload)
	}
	mockService.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestChatHandler_messageErrors(t *testing.T) {
	testCases := []struct {
		err  error
		code int
	}{
		{chat.ErrInvalidMessage, http.StatusBadRequest},
		{fmt.Errorf("%w: ollama down", chat.ErrChatFailed), http.StatusServiceUnavailable},
		{fmt.Errorf("%w: boom", chat.ErrBookingFailed), http.StatusServiceUnavailable},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			mockService := &MockChatUseCase{}
			handler := NewChatHandler(mockService)
			c, w := newChatContext(`{"session_id":"s1","query":"hi"}`)
			mockService.On("Handle", mock.Anything, mock.Anything).Return(nil, tc.err)

			handler.message(c)

			assert.Equal(t, tc.code, w.Code)
			assert.Contains(t, w.Body.String(), tc.err.Error())
		})
	}
}
