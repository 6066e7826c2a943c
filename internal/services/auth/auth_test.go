package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/healthadmin-lite/internal/lib/jwt"
	"github.com/magabrotheeeer/healthadmin-lite/internal/lib/password"
	"github.com/magabrotheeeer/healthadmin-lite/internal/models"
	"github.com/magabrotheeeer/healthadmin-lite/internal/services/auth"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// Мок для jwt.Maker
type JwtMakerMock struct {
	mock.Mock
}

func (m *JwtMakerMock) GenerateToken(userID, email, role string) (string, error) {
	args := m.Called(userID, email, role)
	return args.String(0), args.Error(1)
}

func (m *JwtMakerMock) ParseToken(token string) (*jwt.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jwt.Claims), args.Error(1)
}

const rawPassword = "correctpassword"

func newUser(t *testing.T, active bool) *models.User {
	t.Helper()
	hash, err := password.GetHash(rawPassword)
	require.NoError(t, err)
	return &models.User{
		ID:           uuid.New(),
		Name:         "Administrator",
		Email:        "admin@healthadmin.local",
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Active:       active,
	}
}

func TestService_Login(t *testing.T) {
	activeUser := newUser(t, true)
	inactiveUser := newUser(t, false)

	tests := []struct {
		name       string
		email      string
		password   string
		setupMocks func(r *UserRepoMock, j *JwtMakerMock)
		wantErr    error
	}{
		{
			name:     "successful login normalizes email",
			email:    "  Admin@HealthAdmin.Local ",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "admin@healthadmin.local").Return(activeUser, nil).Once()
				j.On("GenerateToken", activeUser.ID.String(), activeUser.Email, "admin").Return("signed-token", nil).Once()
			},
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "nobody@example.com").Return(nil, models.ErrUserNotFound).Once()
			},
			wantErr: models.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    activeUser.Email,
			password: "wrongpassword",
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, activeUser.Email).Return(activeUser, nil).Once()
			},
			wantErr: models.ErrInvalidCredentials,
		},
		{
			name:     "inactive account with correct password",
			email:    inactiveUser.Email,
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, inactiveUser.Email).Return(inactiveUser, nil).Once()
			},
			wantErr: models.ErrAccountInactive,
		},
		{
			name:     "inactive account with wrong password",
			email:    inactiveUser.Email,
			password: "wrongpassword",
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, inactiveUser.Email).Return(inactiveUser, nil).Once()
			},
			wantErr: models.ErrInvalidCredentials,
		},
		{
			name:       "missing fields",
			email:      "  ",
			password:   "",
			setupMocks: func(_ *UserRepoMock, _ *JwtMakerMock) {},
			wantErr:    models.ErrValidation,
		},
		{
			name:     "repository error",
			email:    activeUser.Email,
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, activeUser.Email).Return(nil, errors.New("db error")).Once()
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			jwtMock := new(JwtMakerMock)
			svc := auth.NewService(repo, jwtMock)
			tt.setupMocks(repo, jwtMock)

			res, err := svc.Login(context.Background(), tt.email, tt.password)
			switch {
			case tt.wantErr == nil:
				require.NoError(t, err)
				assert.Equal(t, "signed-token", res.Token)
				assert.Equal(t, activeUser.Summary(), res.User)
			case errors.Is(tt.wantErr, models.ErrInvalidCredentials),
				errors.Is(tt.wantErr, models.ErrAccountInactive),
				errors.Is(tt.wantErr, models.ErrValidation):
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
			default:
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
				assert.NotErrorIs(t, err, models.ErrInvalidCredentials)
			}

			repo.AssertExpectations(t)
			jwtMock.AssertExpectations(t)
		})
	}
}

func TestService_LoginThenVerify(t *testing.T) {
	user := newUser(t, true)
	repo := new(UserRepoMock)
	repo.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil)
	repo.On("GetUserByID", mock.Anything, user.ID).Return(user, nil)

	svc := auth.NewService(repo, jwt.NewJWTMaker("secret", 24*time.Hour))

	res, err := svc.Login(context.Background(), user.Email, rawPassword)
	require.NoError(t, err)

	summary, err := svc.Verify(context.Background(), res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, summary.ID)
	assert.Equal(t, user.Role, summary.Role)
	assert.Equal(t, res.User, *summary)
}

func TestService_Verify(t *testing.T) {
	user := newUser(t, true)
	inactive := newUser(t, false)

	tests := []struct {
		name       string
		token      string
		setupMocks func(r *UserRepoMock, j *JwtMakerMock)
		wantErr    error
	}{
		{
			name:       "missing token",
			token:      "",
			setupMocks: func(_ *UserRepoMock, _ *JwtMakerMock) {},
			wantErr:    models.ErrTokenMissing,
		},
		{
			name:  "expired token",
			token: "expired",
			setupMocks: func(_ *UserRepoMock, j *JwtMakerMock) {
				j.On("ParseToken", "expired").Return(nil, models.ErrTokenExpired).Once()
			},
			wantErr: models.ErrTokenExpired,
		},
		{
			name:  "invalid token",
			token: "garbage",
			setupMocks: func(_ *UserRepoMock, j *JwtMakerMock) {
				j.On("ParseToken", "garbage").Return(nil, models.ErrTokenInvalid).Once()
			},
			wantErr: models.ErrTokenInvalid,
		},
		{
			name:  "unexpected parser error is invalid",
			token: "weird",
			setupMocks: func(_ *UserRepoMock, j *JwtMakerMock) {
				j.On("ParseToken", "weird").Return(nil, errors.New("unexpected")).Once()
			},
			wantErr: models.ErrTokenInvalid,
		},
		{
			name:  "subject is not uuid",
			token: "bad-subject",
			setupMocks: func(_ *UserRepoMock, j *JwtMakerMock) {
				j.On("ParseToken", "bad-subject").Return(&jwt.Claims{UserID: "42"}, nil).Once()
			},
			wantErr: models.ErrTokenInvalid,
		},
		{
			name:  "user removed",
			token: "orphan",
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				id := uuid.New()
				j.On("ParseToken", "orphan").Return(&jwt.Claims{UserID: id.String()}, nil).Once()
				r.On("GetUserByID", mock.Anything, id).Return(nil, models.ErrUserNotFound).Once()
			},
			wantErr: models.ErrUserNotFound,
		},
		{
			name:  "user deactivated after issuance",
			token: "inactive",
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				j.On("ParseToken", "inactive").Return(&jwt.Claims{UserID: inactive.ID.String()}, nil).Once()
				r.On("GetUserByID", mock.Anything, inactive.ID).Return(inactive, nil).Once()
			},
			wantErr: models.ErrAccountInactive,
		},
		{
			name:  "valid",
			token: "valid",
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				j.On("ParseToken", "valid").Return(&jwt.Claims{UserID: user.ID.String()}, nil).Once()
				r.On("GetUserByID", mock.Anything, user.ID).Return(user, nil).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			jwtMock := new(JwtMakerMock)
			svc := auth.NewService(repo, jwtMock)
			tt.setupMocks(repo, jwtMock)

			summary, err := svc.Verify(context.Background(), tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, summary)
			} else {
				require.NoError(t, err)
				assert.Equal(t, user.Summary(), *summary)
			}
			repo.AssertExpectations(t)
			jwtMock.AssertExpectations(t)
		})
	}
}

func TestService_VerifyExpiredRealToken(t *testing.T) {
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := issued
	maker := jwt.NewJWTMaker("secret", 24*time.Hour, jwt.WithClock(func() time.Time { return now }))
	token, err := maker.GenerateToken(uuid.NewString(), "a@b.co", "user")
	require.NoError(t, err)

	svc := auth.NewService(new(UserRepoMock), maker)
	now = issued.Add(25 * time.Hour)

	_, err = svc.Verify(context.Background(), token)
	assert.ErrorIs(t, err, models.ErrTokenExpired)
}

func TestService_EnsureUser(t *testing.T) {
	ctx := context.Background()

	t.Run("creates missing user", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetUserByEmail", mock.Anything, "admin@healthadmin.local").Return(nil, models.ErrUserNotFound).Once()
		repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.Email == "admin@healthadmin.local" &&
				u.Role == models.RoleAdmin &&
				u.Active &&
				u.PasswordHash != "admin123" &&
				password.CompareHash(u.PasswordHash, "admin123") == nil
		})).Return(&models.User{Email: "admin@healthadmin.local"}, nil).Once()

		svc := auth.NewService(repo, new(JwtMakerMock))
		_, created, err := svc.EnsureUser(ctx, "Administrator", " Admin@HealthAdmin.local", "admin123", models.RoleAdmin)
		require.NoError(t, err)
		assert.True(t, created)
		repo.AssertExpectations(t)
	})

	t.Run("существующий пользователь не меняется", func(t *testing.T) {
		existing := newUser(t, true)
		repo := new(UserRepoMock)
		repo.On("GetUserByEmail", mock.Anything, existing.Email).Return(existing, nil).Once()

		svc := auth.NewService(repo, new(JwtMakerMock))
		got, created, err := svc.EnsureUser(ctx, "Other", existing.Email, "different", models.RoleUser)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, existing, got)
		repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("short password", func(t *testing.T) {
		repo := new(UserRepoMock)

		svc := auth.NewService(repo, new(JwtMakerMock))
		_, _, err := svc.EnsureUser(ctx, "A", "a@b.co", "123", models.RoleAdmin)
		assert.ErrorIs(t, err, models.ErrValidation)

		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []models.FieldError{{Field: "password", Message: "password must be at least 6 characters"}}, verr.Fields)
		repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("некорректный email не создаёт пользователя", func(t *testing.T) {
		repo := new(UserRepoMock)

		svc := auth.NewService(repo, new(JwtMakerMock))
		_, _, err := svc.EnsureUser(ctx, "Admin", "not-an-email", "admin123", models.RoleAdmin)

		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []models.FieldError{{Field: "email", Message: "email must be a valid email address"}}, verr.Fields)
		repo.AssertNotCalled(t, "GetUserByEmail", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})
}
