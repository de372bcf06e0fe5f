package minio

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	mclient "github.com/minio/minio-go/v7"
	"github.com/pribylovaa/profiles-service/internal/storage"
)

// UploadAvatar кладёт аватар в бакет под ключом key.
// Любой отказ хранилища оборачивается в storage.ErrUpload.
func (s *AvatarsStorage) UploadAvatar(ctx context.Context, key string, data []byte, contentType string) error {
	const op = "storage/minio/avatars/UploadAvatar"

	_, err := s.client.PutObject(ctx, s.cfg.S3.Bucket, key,
		bytes.NewReader(data), int64(len(data)),
		mclient.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, storage.ErrUpload, err)
	}

	return nil
}

// AvatarURL возвращает ссылку на объект: PublicBaseURL + "/" + key,
// а если публичный префикс не задан — presigned GET на PresignTTL.
func (s *AvatarsStorage) AvatarURL(ctx context.Context, key string) (string, error) {
	const op = "storage/minio/avatars/AvatarURL"

	if base := s.cfg.S3.PublicBaseURL; base != "" {
		return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/"), nil
	}

	u, err := s.client.PresignedGetObject(ctx, s.cfg.S3.Bucket, key, s.cfg.S3.PresignTTL, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return u.String(), nil
}
