// errors стандартизирует ответы об ошибках HTTP-слоя.
// На вход принимает ошибку сервисного слоя (или аутентификации/валидации),
// на выход даёт HTTP-статус и тело {"detail": ...} без утечки деталей.
//
// 422 — detail содержит массив ошибок полей, остальные статусы — одну строку.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/pribylovaa/profiles-service/internal/auth"
	"github.com/pribylovaa/profiles-service/internal/pkg/requestid"
	"github.com/pribylovaa/profiles-service/internal/schemas"
	"github.com/pribylovaa/profiles-service/internal/service"
)

// Нестандартный код «клиент закрыл соединение».
const StatusClientClosedRequest = 499

// Сообщения, которые видит клиент.
const (
	MsgUnauthenticated  = "Could not validate credentials."
	MsgPermissionDenied = "You don't have permission to edit this profile."
	MsgProfileExists    = "User already has a profile."
	MsgUserNotFound     = "User not found."
	MsgAvatarUpload     = "Failed to upload avatar. Please try again later."
	MsgBodyTooLarge     = "Request body too large."
	MsgCanceled         = "Request canceled."
	MsgDeadline         = "Request timed out."
	MsgInternal         = "Internal server error."
)

// ErrorResponse — корневой объект ответа об ошибке.
// Detail — строка либо []schemas.FieldError; RequestID — id запроса из контекста.
type ErrorResponse struct {
	Detail    any    `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

// ToHTTP конвертирует ошибку в HTTP-статус и тело ответа.
// err == nil — ошибка вызова: отвечаем 500, а не 200 с телом ошибки.
func ToHTTP(err error) (int, ErrorResponse) {
	if err == nil {
		return http.StatusInternalServerError, ErrorResponse{Detail: MsgInternal}
	}

	var verrs schemas.ValidationErrors
	if stderrors.As(err, &verrs) {
		return http.StatusUnprocessableEntity, ErrorResponse{Detail: []schemas.FieldError(verrs)}
	}

	status, msg := baseFromError(err)

	return status, ErrorResponse{Detail: msg}
}

// WriteError пишет статус и тело; для 401 добавляет WWW-Authenticate.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := requestid.From(r.Context()); rid != "" {
		resp.RequestID = rid
	}

	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}

	WriteJSON(w, status, resp)
}

// WriteJSON — общий хелпер записи JSON-ответа.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// baseFromError — таблица «ошибка -> статус/сообщение»:
//   - auth.ErrUnauthenticated -> 401
//   - service.ErrPermissionDenied -> 403
//   - service.ErrProfileExists -> 400
//   - service.ErrUserNotFound -> 404
//   - service.ErrAvatarUpload -> 500 (своё сообщение)
//   - *http.MaxBytesError -> 413
//   - context.Canceled -> 499, context.DeadlineExceeded -> 504
//   - прочее -> 500
func baseFromError(err error) (int, string) {
	var tooLarge *http.MaxBytesError

	switch {
	case stderrors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, MsgUnauthenticated
	case stderrors.Is(err, service.ErrPermissionDenied):
		return http.StatusForbidden, MsgPermissionDenied
	case stderrors.Is(err, service.ErrProfileExists):
		return http.StatusBadRequest, MsgProfileExists
	case stderrors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, MsgUserNotFound
	case stderrors.Is(err, service.ErrAvatarUpload):
		return http.StatusInternalServerError, MsgAvatarUpload
	case stderrors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, MsgBodyTooLarge
	case stderrors.Is(err, context.Canceled):
		return StatusClientClosedRequest, MsgCanceled
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, MsgDeadline
	default:
		return http.StatusInternalServerError, MsgInternal
	}
}
