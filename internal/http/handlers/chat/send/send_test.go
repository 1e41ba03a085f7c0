package send

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/skillswap/internal/http/middlewarectx"
	"github.com/magabrotheeeer/skillswap/internal/models"
	"github.com/magabrotheeeer/skillswap/internal/services/chat"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Send(ctx context.Context, req models.DummyMessage) (*models.Message, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*models.Message)
	return res, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

const (
	senderUID   = "5d2f3b54-4a0e-4a3c-9a68-2bb46e9a62b1"
	receiverUID = "0c6f1354-92c1-4a7e-bf2a-7a2f13f9a410"
)

func TestSendHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		withAuth       bool
		requestBody    interface{}
		mockRes        *models.Message
		mockErr        error
		callMock       bool
		wantStatusCode int
		wantError      string
	}{
		{
			name:        "success",
			withAuth:    true,
			requestBody: Request{ReceiverUID: receiverUID, Content: "hello"},
			mockRes: &models.Message{
				ID:             1,
				SenderUID:      senderUID,
				ReceiverUID:    receiverUID,
				Content:        "hello",
				SenderUsername: "alice",
			},
			callMock:       true,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "unauthorized without uid in context",
			withAuth:       false,
			requestBody:    Request{ReceiverUID: receiverUID, Content: "hello"},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "unauthorized",
		},
		{
			name:           "invalid json body",
			withAuth:       true,
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:           "validation error - empty content",
			withAuth:       true,
			requestBody:    Request{ReceiverUID: receiverUID},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Content is a required field",
		},
		{
			name:           "pair not connected",
			withAuth:       true,
			requestBody:    Request{ReceiverUID: receiverUID, Content: "hello"},
			mockErr:        chat.ErrNotConnected,
			callMock:       true,
			wantStatusCode: http.StatusForbidden,
			wantError:      "users are not connected",
		},
		{
			name:           "service error",
			withAuth:       true,
			requestBody:    Request{ReceiverUID: receiverUID, Content: "hello"},
			mockErr:        errors.New("db down"),
			callMock:       true,
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "could not send message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svcMock := new(ServiceMock)
			handler := New(newNoopLogger(), svcMock)

			if tt.callMock {
				reqBody := tt.requestBody.(Request)
				svcMock.On("Send", mock.Anything, models.DummyMessage{
					SenderUID:   senderUID,
					ReceiverUID: reqBody.ReceiverUID,
					Content:     reqBody.Content,
				}).Return(tt.mockRes, tt.mockErr).Once()
			}

			var bodyBytes []byte
			var err error
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/chat/messages", bytes.NewReader(bodyBytes))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			if tt.withAuth {
				ctx = context.WithValue(ctx, middlewarectx.UserUID, senderUID)
			}
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			if tt.wantError != "" {
				var got map[string]any
				err = json.NewDecoder(rec.Body).Decode(&got)
				assert.NoError(t, err)
				assert.Equal(t, "Error", got["status"])
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				// Сохранённое сообщение возвращается без конверта.
				var got models.Message
				err = json.NewDecoder(rec.Body).Decode(&got)
				assert.NoError(t, err)
				assert.Equal(t, tt.mockRes.ID, got.ID)
				assert.Equal(t, tt.mockRes.Content, got.Content)
				assert.Equal(t, tt.mockRes.SenderUsername, got.SenderUsername)
			}

			svcMock.AssertExpectations(t)
		})
	}
}
