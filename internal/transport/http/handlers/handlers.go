// handlers содержит HTTP-обработчики profiles-service.
package handlers

import (
	"context"

	"github.com/pribylovaa/profiles-service/internal/models"
	"github.com/pribylovaa/profiles-service/internal/schemas"
)

// ProfileCreator — сервисная операция создания анкеты.
type ProfileCreator interface {
	CreateProfile(ctx context.Context, targetUserID int64, req *schemas.ProfileCreate, caller *models.User) (*models.Profile, error)
}

// Handlers агрегирует зависимости обработчиков.
type Handlers struct {
	profiles     ProfileCreator
	schema       *schemas.ProfileSchema
	maxBodyBytes int64
}

// New создаёт Handlers. maxBodyBytes ограничивает тело multipart-запроса.
func New(profiles ProfileCreator, schema *schemas.ProfileSchema, maxBodyBytes int64) *Handlers {
	return &Handlers{
		profiles:     profiles,
		schema:       schema,
		maxBodyBytes: maxBodyBytes,
	}
}
