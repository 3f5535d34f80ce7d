package storage

import (
	"bytes"
	"fmt"
	"mime"
	"strings"
	"time"

	"context"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// ResourceKind selects store-side handling for an upload.
type ResourceKind string

const (
	// ResourceImage covers album art and song thumbnails.
	ResourceImage ResourceKind = "image"
	// ResourceAudio marks streaming audio; its objects always get a
	// normalized .mp3 key regardless of the declared subtype.
	ResourceAudio ResourceKind = "audio"
)

// Upload writes content to the bucket under folder and returns the durable
// public URL of the object. A failed upload leaves no catalog side effects;
// callers abort before any database write.
func (s *MinioStorage) Upload(ctx context.Context, content []byte, contentType, folder string, kind ResourceKind) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("empty upload content")
	}

	objectKey := objectKey(folder, contentType, kind)

	uploadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := minio.PutObjectOptions{
		ContentType:      contentType,
		DisableMultipart: true,
	}

	_, err := s.client.PutObject(uploadCtx, s.bucket, objectKey, bytes.NewReader(content), int64(len(content)), opts)
	if err != nil {
		return "", fmt.Errorf("failed to upload to MinIO: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.publicURL, "/"), s.bucket, objectKey), nil
}

// objectKey builds a collision-free object name under folder. Audio uploads
// are normalized to .mp3; other kinds derive the extension from the declared
// MIME type.
func objectKey(folder, contentType string, kind ResourceKind) string {
	ext := ".bin"
	if kind == ResourceAudio {
		ext = ".mp3"
	} else if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		ext = exts[len(exts)-1]
	}

	return fmt.Sprintf("%s/%s%s", strings.Trim(folder, "/"), uuid.NewString(), ext)
}
