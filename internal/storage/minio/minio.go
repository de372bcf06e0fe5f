// minio предоставляет реализацию storage.AvatarsStorage на базе MinIO/S3.
// minio.go — конструктор клиента: нормализует endpoint, настраивает Secure/creds
// и проверяет наличие бакета.
// avatars.go — загрузка объекта и выдача ссылок на него.
package minio

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pribylovaa/profiles-service/internal/config"
	"github.com/pribylovaa/profiles-service/internal/storage"
)

// AvatarsStorage — адаптер MinIO для аватаров.
type AvatarsStorage struct {
	cfg    *config.Config
	client *mclient.Client
}

// New создаёт клиент MinIO и выполняет fail-fast проверку бакета.
// Endpoint допускается как со схемой (http/https), так и без неё.
func New(ctx context.Context, cfg *config.Config) (*AvatarsStorage, error) {
	const op = "storage/minio/New"

	endpoint, secure := normalizeEndpoint(cfg.S3.Endpoint)

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.S3.RootUser, cfg.S3.RootPassword, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, cfg.S3.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !exists {
		return nil, fmt.Errorf("%s: bucket %q does not exist", op, cfg.S3.Bucket)
	}

	return &AvatarsStorage{cfg: cfg, client: client}, nil
}

// normalizeEndpoint убирает схему из endpoint и выводит из неё Secure.
func normalizeEndpoint(endpoint string) (string, bool) {
	secure := strings.HasPrefix(endpoint, "https://")

	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" && u.Host != "" {
		return u.Host, u.Scheme == "https"
	}

	return endpoint, secure
}

var _ storage.AvatarsStorage = (*AvatarsStorage)(nil)
