package verify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/healthadmin-lite/internal/lib/sl"
	"github.com/magabrotheeeer/healthadmin-lite/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Verify(ctx context.Context, token string) (*models.UserSummary, error) {
	args := m.Called(ctx, token)
	if res := args.Get(0); res != nil {
		return res.(*models.UserSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestVerifyHandler(t *testing.T) {
	userID := uuid.MustParse("0b9f1d7e-3c55-4a1a-9a57-1f3a2b4c5d6e")

	tests := []struct {
		name           string
		header         string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "действующий токен",
			header: "Bearer good",
			setupMock: func(m *MockService) {
				m.On("Verify", mock.Anything, "good").Return(&models.UserSummary{
					ID: userID, Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"id":"0b9f1d7e-3c55-4a1a-9a57-1f3a2b4c5d6e","name":"Admin","email":"admin@example.com","role":"admin"}}`,
		},
		{
			name:           "нет заголовка",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"missing or invalid authorization header"}`,
		},
		{
			name:   "истёкший токен",
			header: "Bearer old",
			setupMock: func(m *MockService) {
				m.On("Verify", mock.Anything, "old").Return(nil, models.ErrTokenExpired)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"token expired"}`,
		},
		{
			name:   "ошибка хранилища",
			header: "Bearer good",
			setupMock: func(m *MockService) {
				m.On("Verify", mock.Anything, "good").Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"internal error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodPost, "/auth/verify", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			New(sl.Discard(), mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}
