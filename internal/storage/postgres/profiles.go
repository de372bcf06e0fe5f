package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pribylovaa/profiles-service/internal/models"
	"github.com/pribylovaa/profiles-service/internal/storage"
)

// profileColumns — единый список колонок user_profiles для SELECT/RETURNING.
const profileColumns = `
id, user_id, first_name, last_name, gender, date_of_birth, info, avatar, created_at
`

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var profile models.Profile
	var gender string

	if err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.FirstName,
		&profile.LastName,
		&gender,
		&profile.DateOfBirth,
		&profile.Info,
		&profile.Avatar,
		&profile.CreatedAt,
	); err != nil {
		return nil, err
	}

	profile.Gender = models.Gender(gender)

	return &profile, nil
}

// ProfileByUserID возвращает анкету пользователя.
// Ошибки: storage.ErrNotFound, либо ошибка выполнения запроса.
func (s *Storage) ProfileByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	const op = "storage/postgres/profiles/ProfileByUserID"

	q := `SELECT ` + profileColumns + ` FROM user_profiles WHERE user_id = $1`

	result, err := scanProfile(s.db.QueryRow(ctx, q, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// CreateProfile вставляет анкету одной командой INSERT ... RETURNING.
// Ошибки: storage.ErrAlreadyExists (UNIQUE user_id), storage.ErrNotFound
// (нет пользователя, FK), иные — как есть.
func (s *Storage) CreateProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	const op = "storage/postgres/profiles/CreateProfile"

	q := `
	INSERT INTO user_profiles (user_id, first_name, last_name, gender, date_of_birth, info, avatar)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING
	` + profileColumns

	row := s.db.QueryRow(ctx, q,
		profile.UserID,
		profile.FirstName,
		profile.LastName,
		string(profile.Gender),
		profile.DateOfBirth,
		profile.Info,
		profile.Avatar,
	)

	result, err := scanProfile(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
			case pgerrcode.ForeignKeyViolation:
				return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
			}
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}
