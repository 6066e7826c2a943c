// Package auth содержит логику аутентификации операторов: вход по email и паролю,
// проверку токена доступа и создание учётной записи администратора при старте.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/healthadmin-lite/internal/lib/jwt"
	"github.com/magabrotheeeer/healthadmin-lite/internal/lib/password"
	"github.com/magabrotheeeer/healthadmin-lite/internal/lib/validate"
	"github.com/magabrotheeeer/healthadmin-lite/internal/models"
)

var validateUser = validate.New()

// newUserInput — учётные данные создаваемой записи.
type newUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// UserRepository описывает хранилище учётных записей.
type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
}

// Service отвечает за вход, проверку токенов и начальную учётную запись.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// LoginResult — токен доступа и публичные данные пользователя.
type LoginResult struct {
	Token string             `json:"token"`
	User  models.UserSummary `json:"user"`
}

// NewService создаёт сервис аутентификации.
func NewService(users UserRepository, jwtMaker jwt.Maker) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// NormalizeEmail приводит email к виду, в котором он хранится.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login проверяет пароль и выпускает токен.
//
// Неизвестный email и неверный пароль неразличимы для клиента. О деактивированной
// учётной записи сообщается только после верного пароля.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*LoginResult, error) {
	const op = "auth.Login"

	email = NormalizeEmail(email)
	if fields := requiredCredentials(email, rawPassword); len(fields) > 0 {
		return nil, &models.ValidationError{Fields: fields}
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			password.CompareDummy(rawPassword)
			return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}
	if !user.Active {
		return nil, fmt.Errorf("%s: %w", op, models.ErrAccountInactive)
	}

	token, err := s.jwtMaker.GenerateToken(user.ID.String(), user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &LoginResult{Token: token, User: user.Summary()}, nil
}

// Verify проверяет токен и возвращает актуальные данные пользователя из хранилища.
func (s *Service) Verify(ctx context.Context, token string) (*models.UserSummary, error) {
	const op = "auth.Verify"
	if token == "" {
		return nil, fmt.Errorf("%s: %w", op, models.ErrTokenMissing)
	}

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		if isTokenError(err) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return nil, fmt.Errorf("%s: %w: %v", op, models.ErrTokenInvalid, err)
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrTokenInvalid)
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !user.Active {
		return nil, fmt.Errorf("%s: %w", op, models.ErrAccountInactive)
	}
	summary := user.Summary()
	return &summary, nil
}

// EnsureUser создаёт пользователя, если учётной записи с таким email ещё нет.
// Существующая запись не изменяется. Второй результат сообщает, была ли запись создана.
func (s *Service) EnsureUser(ctx context.Context, name, email, rawPassword string, role models.Role) (*models.User, bool, error) {
	const op = "auth.EnsureUser"

	email = NormalizeEmail(email)
	if fields := validate.Struct(validateUser, newUserInput{Email: email, Password: rawPassword}); len(fields) > 0 {
		return nil, false, fmt.Errorf("%s: %w", op, &models.ValidationError{Fields: fields})
	}

	existing, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, models.ErrUserNotFound) {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	created, err := s.users.CreateUser(ctx, &models.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
		Active:       true,
	})
	if err != nil {
		if errors.Is(err, models.ErrDuplicateKey) {
			// создан параллельно другим экземпляром
			existing, getErr := s.users.GetUserByEmail(ctx, email)
			if getErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return created, true, nil
}

func requiredCredentials(email, rawPassword string) []models.FieldError {
	var fields []models.FieldError
	if email == "" {
		fields = append(fields, models.FieldError{Field: "email", Message: "email is required"})
	}
	if rawPassword == "" {
		fields = append(fields, models.FieldError{Field: "password", Message: "password is required"})
	}
	return fields
}

func isTokenError(err error) bool {
	return errors.Is(err, models.ErrTokenMissing) ||
		errors.Is(err, models.ErrTokenInvalid) ||
		errors.Is(err, models.ErrTokenExpired)
}
