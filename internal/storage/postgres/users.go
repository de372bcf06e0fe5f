package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pribylovaa/profiles-service/internal/models"
	"github.com/pribylovaa/profiles-service/internal/storage"
)

// UserByID возвращает пользователя вместе с группой (одним запросом).
// Ошибки: storage.ErrNotFound, либо ошибка выполнения запроса.
func (s *Storage) UserByID(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage/postgres/users/UserByID"

	q := `
	SELECT u.id, u.email, u.is_active, u.group_id, g.id, g.name, u.created_at, u.updated_at
	FROM users u
	JOIN user_groups g ON g.id = u.group_id
	WHERE u.id = $1`

	var (
		user      models.User
		group     models.UserGroup
		groupName string
	)

	err := s.db.QueryRow(ctx, q, id).Scan(
		&user.ID,
		&user.Email,
		&user.IsActive,
		&user.GroupID,
		&group.ID,
		&groupName,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	group.Name = models.UserGroupName(groupName)
	user.Group = &group

	return &user, nil
}
