package postgres

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pribylovaa/profiles-service/internal/models"
	"github.com/pribylovaa/profiles-service/internal/storage"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Интеграционные тесты поднимают postgres:16-alpine через testcontainers-go
// и применяют миграции из ./migrations.
//
// Запуск локально:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/postgres -v -race -count=1

func repoRootFromThisFile() string {
	// internal/storage/postgres/... -> на 3 уровня вверх.
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", "..", ".."))
}

func readMigration(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(repoRootFromThisFile(), "migrations", name)
	b, err := os.ReadFile(path)
	require.NoError(t, err, "read migration %s", path)
	return string(b)
}

func startPostgres(t *testing.T) (*Storage, func()) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "docker.io/postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "user", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "db"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
		ProviderType:     tc.ProviderDocker,
	})
	require.NoError(t, err)

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "5432/tcp")
	dsn := fmt.Sprintf("postgres://user:pass@%s:%s/db?sslmode=disable", host, port.Port())

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	_, err = pool.Exec(ctx, readMigration(t, "1_init_profiles.up.sql"))
	require.NoError(t, err)

	st, err := New(ctx, dsn)
	require.NoError(t, err)

	return st, func() {
		st.Close()
		_ = c.Terminate(context.Background())
	}
}

// seedUser создаёт пользователя в группе groupID и возвращает его id.
func seedUser(t *testing.T, st *Storage, email string, active bool, groupID int32) int64 {
	t.Helper()

	var id int64
	err := st.db.QueryRow(context.Background(),
		`INSERT INTO users (email, is_active, group_id) VALUES ($1, $2, $3) RETURNING id`,
		email, active, groupID,
	).Scan(&id)
	require.NoError(t, err)

	return id
}

func newProfile(userID int64) *models.Profile {
	return &models.Profile{
		UserID:      userID,
		FirstName:   "alice",
		LastName:    "smith",
		Gender:      models.GenderFemale,
		DateOfBirth: time.Date(1990, time.May, 17, 0, 0, 0, 0, time.UTC),
		Info:        "hello",
		Avatar:      fmt.Sprintf("avatars/%d_a.png", userID),
	}
}

func TestIntegration_UserByID_WithGroup(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	id := seedUser(t, st, "admin@example.com", true, 3)

	u, err := st.UserByID(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, id, u.ID)
	require.Equal(t, "admin@example.com", u.Email)
	require.True(t, u.IsActive)
	require.EqualValues(t, 3, u.GroupID)
	require.NotNil(t, u.Group)
	require.Equal(t, models.UserGroupAdmin, u.Group.Name)
}

func TestIntegration_UserByID_NotFound(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	_, err := st.UserByID(context.Background(), 424242)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIntegration_CreateProfile_And_ProfileByUserID_OK(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	uid := seedUser(t, st, "alice@example.com", true, 1)

	created, err := st.CreateProfile(context.Background(), newProfile(uid))
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, uid, created.UserID)
	require.Equal(t, "alice", created.FirstName)
	require.Equal(t, models.GenderFemale, created.Gender)
	require.Equal(t, "1990-05-17", created.DateOfBirth.Format("2006-01-02"))
	require.WithinDuration(t, time.Now(), created.CreatedAt, 5*time.Second)

	got, err := st.ProfileByUserID(context.Background(), uid)
	require.NoError(t, err)
	require.Equal(t, created, got)
}

func TestIntegration_CreateProfile_AlreadyExists(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	uid := seedUser(t, st, "dup@example.com", true, 1)

	_, err := st.CreateProfile(context.Background(), newProfile(uid))
	require.NoError(t, err)

	_, err = st.CreateProfile(context.Background(), newProfile(uid))
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestIntegration_CreateProfile_UnknownUser(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	_, err := st.CreateProfile(context.Background(), newProfile(999999))
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIntegration_ProfileByUserID_NotFound(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	_, err := st.ProfileByUserID(context.Background(), 1)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIntegration_ContextDeadlineExceeded(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := st.ProfileByUserID(ctx, 1)
	require.Error(t, err)
	require.NotErrorIs(t, err, storage.ErrNotFound)
}
