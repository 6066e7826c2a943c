package middlewarectx_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/healthadmin-lite/internal/http/middlewarectx"
	"github.com/magabrotheeeer/healthadmin-lite/internal/lib/sl"
	"github.com/magabrotheeeer/healthadmin-lite/internal/models"
)

type VerifierMock struct {
	mock.Mock
}

func (m *VerifierMock) Verify(ctx context.Context, token string) (*models.UserSummary, error) {
	args := m.Called(ctx, token)
	user, _ := args.Get(0).(*models.UserSummary)
	return user, args.Error(1)
}

func TestJWTMiddleware(t *testing.T) {
	user := &models.UserSummary{ID: uuid.New(), Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin}

	tests := []struct {
		name           string
		authHeader     string
		token          string
		mockUser       *models.UserSummary
		mockErr        error
		wantStatusCode int
		wantBody       string
		wantCalled     bool
	}{
		{
			name:           "missing Authorization header",
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"status":"Error","error":"missing or invalid authorization header"}`,
		},
		{
			name:           "invalid Authorization header prefix",
			authHeader:     "Basic sometoken",
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"status":"Error","error":"missing or invalid authorization header"}`,
		},
		{
			name:           "empty bearer token",
			authHeader:     "Bearer   ",
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"status":"Error","error":"missing or invalid authorization header"}`,
		},
		{
			name:           "invalid token",
			authHeader:     "Bearer garbage",
			token:          "garbage",
			mockErr:        models.ErrTokenInvalid,
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"status":"Error","error":"invalid token"}`,
		},
		{
			name:           "expired token",
			authHeader:     "Bearer old",
			token:          "old",
			mockErr:        models.ErrTokenExpired,
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"status":"Error","error":"token expired"}`,
		},
		{
			name:           "user removed",
			authHeader:     "Bearer token",
			token:          "token",
			mockErr:        models.ErrUserNotFound,
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"status":"Error","error":"user not found"}`,
		},
		{
			name:           "user deactivated",
			authHeader:     "Bearer token",
			token:          "token",
			mockErr:        models.ErrAccountInactive,
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"status":"Error","error":"account inactive"}`,
		},
		{
			name:           "store failure hides details",
			authHeader:     "Bearer token",
			token:          "token",
			mockErr:        errors.New("pgx: connection refused"),
			wantStatusCode: http.StatusInternalServerError,
			wantBody:       `{"status":"Error","error":"internal error"}`,
		},
		{
			name:           "valid token",
			authHeader:     "Bearer validtoken",
			token:          "validtoken",
			mockUser:       user,
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := new(VerifierMock)
			if tt.token != "" {
				verifier.On("Verify", mock.Anything, tt.token).Return(tt.mockUser, tt.mockErr).Once()
			}

			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				got, ok := models.UserFromContext(r.Context())
				assert.True(t, ok)
				assert.Equal(t, *user, got)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/patients", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			middlewarectx.JWTMiddleware(verifier, sl.Discard())(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
			verifier.AssertExpectations(t)
		})
	}
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")

	token, err := middlewarectx.BearerToken(req)
	assert.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	req.Header.Set("Authorization", "bearer abc")
	_, err = middlewarectx.BearerToken(req)
	assert.ErrorIs(t, err, models.ErrTokenMissing)
}
