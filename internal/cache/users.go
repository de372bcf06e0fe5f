// cache — read-through кэш пользователей в Redis перед storage.Users.
// Отрицательные ответы (ErrNotFound) не кэшируются, а любая
// ошибка Redis деградирует до прямого обращения к хранилищу.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/pribylovaa/profiles-service/internal/models"
	"github.com/pribylovaa/profiles-service/internal/pkg/log"
	"github.com/pribylovaa/profiles-service/internal/storage"
	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "profiles:user:"

// Users — storage.Users с кэшем в Redis.
type Users struct {
	next   storage.Users
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

var _ storage.Users = (*Users)(nil)

// NewRedisClient создаёт клиент из URL (например, redis://:pass@host:6379/0)
// и проверяет соединение.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	const op = "cache/NewRedisClient"

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rdb, nil
}

// NewUsers оборачивает next кэшем с временем жизни записи ttl.
func NewUsers(next storage.Users, rdb *redis.Client, ttl time.Duration) *Users {
	return &Users{
		next:   next,
		rdb:    rdb,
		prefix: defaultPrefix,
		ttl:    ttl,
	}
}

func (c *Users) key(id int64) string { return c.prefix + strconv.FormatInt(id, 10) }

// UserByID отдаёт пользователя из кэша, при промахе — из next с записью в кэш.
func (c *Users) UserByID(ctx context.Context, id int64) (*models.User, error) {
	const op = "cache/Users/UserByID"

	lg := log.From(ctx).With("op", op, slog.Int64("user_id", id))

	user, ok, err := c.get(ctx, id)
	switch {
	case err != nil:
		lg.Warn("user_cache_read_failed", slog.String("err", err.Error()))
	case ok:
		return user, nil
	}

	user, err = c.next.UserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := c.set(ctx, user); err != nil {
		lg.Warn("user_cache_write_failed", slog.String("err", err.Error()))
	}

	return user, nil
}

// Храним как Redis Hash: email, active (0/1), gid, gname, created, updated (unix nano).
func (c *Users) get(ctx context.Context, id int64) (*models.User, bool, error) {
	m, err := c.rdb.HGetAll(ctx, c.key(id)).Result()
	if err != nil {
		return nil, false, err
	}

	if len(m) == 0 {
		return nil, false, nil
	}

	user, err := decodeUser(id, m)
	if err != nil {
		return nil, false, err
	}

	return user, true, nil
}

func (c *Users) set(ctx context.Context, u *models.User) error {
	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, c.key(u.ID), encodeUser(u))
	pipe.Expire(ctx, c.key(u.ID), c.ttl)

	_, err := pipe.Exec(ctx)
	return err
}

func encodeUser(u *models.User) map[string]string {
	m := map[string]string{
		"email":   u.Email,
		"active":  boolTo01(u.IsActive),
		"gid":     strconv.FormatInt(int64(u.GroupID), 10),
		"created": strconv.FormatInt(u.CreatedAt.UnixNano(), 10),
		"updated": strconv.FormatInt(u.UpdatedAt.UnixNano(), 10),
	}

	if u.Group != nil {
		m["gname"] = string(u.Group.Name)
	}

	return m
}

var errCorruptEntry = errors.New("corrupt user cache entry")

func decodeUser(id int64, m map[string]string) (*models.User, error) {
	gid, err := strconv.ParseInt(m["gid"], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: gid: %w", errCorruptEntry, err)
	}

	created, err := strconv.ParseInt(m["created"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: created: %w", errCorruptEntry, err)
	}

	updated, err := strconv.ParseInt(m["updated"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: updated: %w", errCorruptEntry, err)
	}

	u := &models.User{
		ID:        id,
		Email:     m["email"],
		IsActive:  m["active"] == "1",
		GroupID:   int32(gid),
		CreatedAt: time.Unix(0, created).UTC(),
		UpdatedAt: time.Unix(0, updated).UTC(),
	}

	if name, ok := m["gname"]; ok {
		u.Group = &models.UserGroup{ID: int32(gid), Name: models.UserGroupName(name)}
	}

	return u, nil
}

func boolTo01(b bool) string {
	if b {
		return "1"
	}

	return "0"
}
