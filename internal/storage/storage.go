// storage содержит контракты слоя хранилищ profiles-service.
//
// Users — чтение учётных записей (вместе с группой) для аутентификации.
// Profiles — анкеты в БД (проверка наличия и создание).
// Avatars — загрузка аватаров в S3/MinIO и выдача ссылок на них.
package storage

//go:generate mockgen -source=storage.go -destination=../../mocks/mock_storage.go -package=mocks

import (
	"context"
	"errors"

	"github.com/pribylovaa/profiles-service/internal/models"
)

var (
	// ErrNotFound — запись (или связанная запись) отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушено ограничение уникальности.
	ErrAlreadyExists = errors.New("already exists")
	// ErrUpload — объектное хранилище отклонило загрузку или недоступно.
	ErrUpload = errors.New("upload failed")
)

// Users — контракт чтения пользователей.
type Users interface {
	// UserByID возвращает пользователя с загруженной группой или ErrNotFound.
	UserByID(ctx context.Context, id int64) (*models.User, error)
}

// Profiles — контракт репозитория анкет.
type Profiles interface {
	// ProfileByUserID возвращает анкету пользователя или ErrNotFound.
	ProfileByUserID(ctx context.Context, userID int64) (*models.Profile, error)
	// CreateProfile сохраняет анкету и возвращает её с присвоенными ID/CreatedAt.
	// Повторная анкета того же пользователя — ErrAlreadyExists,
	// несуществующий пользователь — ErrNotFound.
	CreateProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error)
}

// ProfilesStorage — верхнеуровневый интерфейс реляционного хранилища.
type ProfilesStorage interface {
	Users
	Profiles
	Close()
}

// Avatars — контракт объектного хранилища аватаров.
type Avatars interface {
	// UploadAvatar кладёт объект под ключом key; при отказе возвращает ошибку, обёрнутую в ErrUpload.
	UploadAvatar(ctx context.Context, key string, data []byte, contentType string) error
	// AvatarURL возвращает ссылку на объект: публичную (если задан PublicBaseURL) или presigned GET.
	AvatarURL(ctx context.Context, key string) (string, error)
}

// AvatarsStorage — алиас-обёртка для внедрения зависимости.
type AvatarsStorage interface {
	Avatars
}
