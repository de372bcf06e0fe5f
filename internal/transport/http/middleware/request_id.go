package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pribylovaa/profiles-service/internal/pkg/requestid"
)

// HeaderRequestID — заголовок корреляции запросов.
const HeaderRequestID = "X-Request-Id"

// maxRequestIDLen — входящие id длиннее заменяются сгенерированным.
const maxRequestIDLen = 128

// RequestID обеспечивает наличие X-Request-Id:
//  1. берёт входящий заголовок, если он есть и разумной длины;
//  2. иначе генерирует UUIDv4 без дефисов (32 hex-символа);
//  3. кладёт id в заголовок ответа и в контекст (requestid.From).
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(HeaderRequestID))
			if id == "" || len(id) > maxRequestIDLen {
				id = genID()
			}
			w.Header().Set(HeaderRequestID, id)

			next.ServeHTTP(w, r.WithContext(requestid.Into(r.Context(), id)))
		})
	}
}

func genID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
