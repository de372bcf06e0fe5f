package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/pribylovaa/profiles-service/internal/models"
	"github.com/pribylovaa/profiles-service/internal/pkg/log"
	"github.com/pribylovaa/profiles-service/internal/schemas"
	"github.com/pribylovaa/profiles-service/internal/storage"
)

// AvatarKey — ключ объекта аватара: "avatars/<userID>_<filename>".
func AvatarKey(userID int64, filename string) string {
	return "avatars/" + strconv.FormatInt(userID, 10) + "_" + filename
}

// CreateProfile создаёт анкету пользователя targetUserID от имени caller.
//
// Порядок шагов:
//  1. caller должен быть владельцем или состоять в группе администраторов (ErrPermissionDenied);
//  2. у пользователя не должно быть анкеты (ErrProfileExists);
//  3. аватар загружается в хранилище (ErrAvatarUpload);
//  4. анкета сохраняется с ключом аватара (ErrProfileExists при гонке, ErrUserNotFound);
//  5. ключ разрешается в ссылку для ответа.
//
// Загрузка не выполняется, если шаги 1–2 не пройдены.
func (s *Service) CreateProfile(ctx context.Context, targetUserID int64, req *schemas.ProfileCreate, caller *models.User) (*models.Profile, error) {
	const op = "service/profiles/CreateProfile"

	lg := log.From(ctx).With("op", op, "user_id", targetUserID)

	if caller == nil || (caller.ID != targetUserID && !caller.InGroup(s.adminGroup)) {
		var callerID int64
		if caller != nil {
			callerID = caller.ID
		}
		lg.Warn("permission_denied", slog.Int64("caller_id", callerID))
		profilesCreated.WithLabelValues(resultForbidden).Inc()

		return nil, fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	if _, err := s.profilesStorage.ProfileByUserID(ctx, targetUserID); err == nil {
		lg.Warn("profile_already_exists")
		profilesCreated.WithLabelValues(resultDuplicate).Inc()

		return nil, fmt.Errorf("%s: %w", op, ErrProfileExists)
	} else if !errors.Is(err, storage.ErrNotFound) {
		lg.Error("profile_lookup_failed", slog.String("err", err.Error()))
		profilesCreated.WithLabelValues(resultError).Inc()

		return nil, failure(op, ErrInternal, err)
	}

	key := AvatarKey(targetUserID, req.Avatar.Filename)

	if err := s.avatarsStorage.UploadAvatar(ctx, key, req.Avatar.Data, req.Avatar.ContentType); err != nil {
		lg.Error("avatar_upload_failed", slog.String("key", key), slog.String("err", err.Error()))
		profilesCreated.WithLabelValues(resultUpload).Inc()

		return nil, failure(op, ErrAvatarUpload, err)
	}

	created, err := s.profilesStorage.CreateProfile(ctx, &models.Profile{
		UserID:      targetUserID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Gender:      req.Gender,
		DateOfBirth: req.DateOfBirth,
		Info:        req.Info,
		Avatar:      key,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			lg.Warn("profile_already_exists", slog.String("stage", "insert"))
			profilesCreated.WithLabelValues(resultDuplicate).Inc()

			return nil, fmt.Errorf("%s: %w", op, ErrProfileExists)
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("target_user_not_found")
			profilesCreated.WithLabelValues(resultNoUser).Inc()

			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		default:
			lg.Error("profile_insert_failed", slog.String("err", err.Error()))
			profilesCreated.WithLabelValues(resultError).Inc()

			return nil, failure(op, ErrInternal, err)
		}
	}

	url, err := s.avatarsStorage.AvatarURL(ctx, created.Avatar)
	if err != nil {
		lg.Error("avatar_url_failed", slog.String("key", created.Avatar), slog.String("err", err.Error()))
		profilesCreated.WithLabelValues(resultError).Inc()

		return nil, failure(op, ErrInternal, err)
	}
	created.AvatarURL = url

	lg.Info("profile_created", slog.Int64("profile_id", created.ID))
	profilesCreated.WithLabelValues(resultCreated).Inc()

	return created, nil
}

// failure скрывает причину за sentinel, кроме отмены и таймаута запроса:
// они остаются в цепочке, чтобы транспорт ответил 499/504.
func failure(op string, sentinel, cause error) error {
	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, cause)
	}

	return fmt.Errorf("%s: %w", op, sentinel)
}
