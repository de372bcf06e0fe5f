// postgres предоставляет реализацию storage.ProfilesStorage на базе PostgreSQL.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pribylovaa/profiles-service/internal/storage"
)

type Storage struct {
	db *pgxpool.Pool
}

// New создаёт пул соединений к PostgreSQL и проверяет его ping-ом.
func New(ctx context.Context, dbURL string) (*Storage, error) {
	const op = "storage/postgres/New"

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

// Ping используется readiness-пробой.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close закрывает пул соединений.
func (s *Storage) Close() {
	s.db.Close()
}

var _ storage.ProfilesStorage = (*Storage)(nil)
