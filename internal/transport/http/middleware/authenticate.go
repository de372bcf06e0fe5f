package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pribylovaa/profiles-service/internal/auth"
	apierrors "github.com/pribylovaa/profiles-service/internal/errors"
	"github.com/pribylovaa/profiles-service/internal/models"
	logctx "github.com/pribylovaa/profiles-service/internal/pkg/log"
	"github.com/pribylovaa/profiles-service/internal/pkg/redact"
)

// UserAuthenticator — сопоставление bearer-токена с пользователем.
type UserAuthenticator interface {
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

type userKey struct{}

// Authenticate требует валидный Authorization: Bearer <token>
// и кладёт пользователя в контекст. Иначе — 401 с общим сообщением.
func Authenticate(a UserAuthenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")

			token, ok := bearerToken(header)
			if !ok {
				logctx.From(r.Context()).Warn("auth_header_invalid",
					slog.String("authorization", redact.Authorization(header)),
				)
				apierrors.WriteError(w, r, fmt.Errorf("middleware/Authenticate: %w", auth.ErrUnauthenticated))
				return
			}

			user, err := a.CurrentUser(r.Context(), token)
			if err != nil {
				apierrors.WriteError(w, r, err)
				return
			}

			ctx := logctx.With(context.WithValue(r.Context(), userKey{}, user), "caller_id", user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom возвращает пользователя, положенного Authenticate.
func UserFrom(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey{}).(*models.User)
	return u, ok && u != nil
}

// bearerToken достаёт credentials из "Bearer <token>"; схема без учёта регистра.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}
