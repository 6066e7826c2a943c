package models

import "context"

type userCtxKey struct{}

// ContextWithUser сохраняет аутентифицированного пользователя в контексте запроса.
func ContextWithUser(ctx context.Context, u UserSummary) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext возвращает пользователя, сохранённого ContextWithUser.
func UserFromContext(ctx context.Context) (UserSummary, bool) {
	u, ok := ctx.Value(userCtxKey{}).(UserSummary)
	return u, ok
}
