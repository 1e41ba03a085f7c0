package add

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
	"github.com/magabrotheeeer/skillswap/internal/services/ledger"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Credit(ctx context.Context, userUID string, amount int) error {
	return m.Called(ctx, userUID, amount).Error(0)
}
func (m *ServiceMock) Balance(ctx context.Context, userUID string) (int, error) {
	args := m.Called(ctx, userUID)
	return args.Int(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

const targetUID = "5d2f3b54-4a0e-4a3c-9a68-2bb46e9a62b1"

func TestAddHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		role           string
		requestBody    interface{}
		setupMocks     func(m *ServiceMock)
		wantStatusCode int
		wantError      string
		wantTokens     float64
	}{
		{
			name:        "admin credits tokens",
			role:        "admin",
			requestBody: Request{UserUID: targetUID, Amount: 50},
			setupMocks: func(m *ServiceMock) {
				m.On("Credit", mock.Anything, targetUID, 50).Return(nil).Once()
				m.On("Balance", mock.Anything, targetUID).Return(150, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantTokens:     150,
		},
		{
			name:           "user role is forbidden",
			role:           "user",
			requestBody:    Request{UserUID: targetUID, Amount: 50},
			setupMocks:     func(_ *ServiceMock) {},
			wantStatusCode: http.StatusForbidden,
			wantError:      "admin role required",
		},
		{
			name:           "invalid json body",
			role:           "admin",
			requestBody:    "not a json",
			setupMocks:     func(_ *ServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:           "validation error - negative amount",
			role:           "admin",
			requestBody:    Request{UserUID: targetUID, Amount: -10},
			setupMocks:     func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Amount must be greater than zero",
		},
		{
			name:        "user not found",
			role:        "admin",
			requestBody: Request{UserUID: targetUID, Amount: 50},
			setupMocks: func(m *ServiceMock) {
				m.On("Credit", mock.Anything, targetUID, 50).
					Return(ledger.ErrUserNotFound).Once()
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      "user not found",
		},
		{
			name:        "service error",
			role:        "admin",
			requestBody: Request{UserUID: targetUID, Amount: 50},
			setupMocks: func(m *ServiceMock) {
				m.On("Credit", mock.Anything, targetUID, 50).
					Return(errors.New("db down")).Once()
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "could not credit tokens",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svcMock := new(ServiceMock)
			handler := New(newNoopLogger(), svcMock)
			tt.setupMocks(svcMock)

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

			req := httptest.NewRequest(http.MethodPut, "/add-tokens", bytes.NewReader(bodyBytes))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			ctx = context.WithValue(ctx, middlewarectx.Role, tt.role)
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err = json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			if tt.wantError != "" {
				assert.Equal(t, "Error", got["status"])
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				assert.Equal(t, "OK", got["status"])
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, tt.wantTokens, data["tokens"])
			}

			svcMock.AssertExpectations(t)
		})
	}
}
