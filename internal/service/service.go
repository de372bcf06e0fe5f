// service содержит бизнес-логику profiles-service: создание анкеты
// с проверкой прав, дубликата, загрузкой аватара и сохранением записи.
package service

import (
	"errors"

	"github.com/pribylovaa/profiles-service/internal/config"
	"github.com/pribylovaa/profiles-service/internal/models"
	"github.com/pribylovaa/profiles-service/internal/storage"
)

var (
	// ErrPermissionDenied — вызывающий не владелец анкеты и не администратор.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrProfileExists — у пользователя уже есть анкета.
	ErrProfileExists = errors.New("profile already exists")
	// ErrUserNotFound — целевой пользователь не существует.
	ErrUserNotFound = errors.New("user not found")
	// ErrAvatarUpload — объектное хранилище не приняло аватар.
	ErrAvatarUpload = errors.New("avatar upload failed")
	// ErrInternal — внутренняя ошибка сервиса.
	ErrInternal = errors.New("internal")
)

// Service — бизнес-логика profiles-service.
type Service struct {
	profilesStorage storage.Profiles
	avatarsStorage  storage.Avatars
	adminGroup      models.UserGroupName
}

// New создаёт Service. Группа администраторов берётся из cfg.Auth.AdminGroup.
func New(profilesStorage storage.Profiles, avatarsStorage storage.Avatars, cfg *config.Config) *Service {
	admin := models.UserGroupAdmin
	if cfg != nil && cfg.Auth.AdminGroup != "" {
		admin = models.UserGroupName(cfg.Auth.AdminGroup)
	}

	return &Service{
		profilesStorage: profilesStorage,
		avatarsStorage:  avatarsStorage,
		adminGroup:      admin,
	}
}
