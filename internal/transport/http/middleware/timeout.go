package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	apierrors "github.com/pribylovaa/profiles-service/internal/errors"
)

// Timeout ограничивает время обработки запроса сервисным таймаутом.
// Внешний deadline, если он короче, сохраняется. d <= 0 — no-op.
// Если обработчик вернулся по истёкшему deadline, ничего не записав, отвечаем 504.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r.WithContext(ctx))

			if sw.status == 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				apierrors.WriteError(sw, r, fmt.Errorf("middleware/Timeout: %w", ctx.Err()))
			}
		})
	}
}
