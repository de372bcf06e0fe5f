// auth определяет вызывающего пользователя по bearer-токену.
//
// Любая неудача (плохой/просроченный токен, нет user_id, пользователь
// не найден или неактивен) наружу выглядит одинаково — ErrUnauthenticated.
// Конкретная причина пишется только в лог.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pribylovaa/profiles-service/internal/models"
	"github.com/pribylovaa/profiles-service/internal/pkg/log"
	"github.com/pribylovaa/profiles-service/internal/storage"
)

var (
	// ErrUnauthenticated — единственная ошибка, видимая за пределами пакета.
	ErrUnauthenticated = errors.New("unauthenticated")

	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrMissingClaim = errors.New("missing or malformed user_id claim")
	ErrInactiveUser = errors.New("user not found or not active")
)

// TokenDecoder — проверка подписи и срока действия токена.
type TokenDecoder interface {
	DecodeAccessToken(token string) (jwt.MapClaims, error)
}

// Authenticator сопоставляет токен с активным пользователем.
type Authenticator struct {
	tokens TokenDecoder
	users  storage.Users
}

func NewAuthenticator(tokens TokenDecoder, users storage.Users) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// CurrentUser возвращает активного пользователя (с группой) по токену.
// Ошибки: ErrUnauthenticated (обёрнутая причина), либо ошибка хранилища,
// не связанная с отсутствием пользователя.
func (a *Authenticator) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	const op = "auth/Authenticator/CurrentUser"

	lg := log.From(ctx).With("op", op)

	claims, err := a.tokens.DecodeAccessToken(token)
	if err != nil {
		lg.Warn("token_validation_failed", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w: %w", op, ErrUnauthenticated, err)
	}

	userID, err := UserIDFromClaims(claims)
	if err != nil {
		lg.Warn("token_validation_failed", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w: %w", op, ErrUnauthenticated, err)
	}

	user, err := a.users.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("user_not_found", slog.Int64("user_id", userID))
			return nil, fmt.Errorf("%s: %w: %w", op, ErrUnauthenticated, ErrInactiveUser)
		}

		lg.Error("user_lookup_failed", slog.Int64("user_id", userID), slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !user.IsActive {
		lg.Warn("user_inactive", slog.Int64("user_id", userID))
		return nil, fmt.Errorf("%s: %w: %w", op, ErrUnauthenticated, ErrInactiveUser)
	}

	return user, nil
}
