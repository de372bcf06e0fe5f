package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pribylovaa/profiles-service/internal/auth"
	apierrors "github.com/pribylovaa/profiles-service/internal/errors"
	"github.com/pribylovaa/profiles-service/internal/schemas"
	"github.com/pribylovaa/profiles-service/internal/transport/http/middleware"
)

// CreateProfile — POST /users/{user_id}/profile/ (multipart/form-data).
// Пользователь уже положен в контекст мидлваром Authenticate.
func (h *Handlers) CreateProfile(w http.ResponseWriter, r *http.Request) {
	const op = "transport/http/handlers/CreateProfile"

	caller, ok := middleware.UserFrom(r.Context())
	if !ok {
		apierrors.WriteError(w, r, fmt.Errorf("%s: %w", op, auth.ErrUnauthenticated))
		return
	}

	raw := chi.URLParam(r, "user_id")
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		apierrors.WriteError(w, r, schemas.ValidationErrors{schemas.InvalidPathInt("user_id", raw)})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := r.ParseMultipartForm(h.maxBodyBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apierrors.WriteError(w, r, fmt.Errorf("%s: %w", op, err))
			return
		}

		apierrors.WriteError(w, r, schemas.ValidationErrors{
			schemas.InvalidBody("Request body must be valid multipart/form-data"),
		})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	req, err := h.schema.CreateFromForm(r.MultipartForm)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	profile, err := h.profiles.CreateProfile(r.Context(), userID, req, caller)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	apierrors.WriteJSON(w, http.StatusCreated, schemas.ProfileResponseFromModel(profile))
}
