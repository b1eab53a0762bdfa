package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// 支持的存储后端
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

var ErrInvalidKey = errors.New("invalid storage key")

// Storage persists uploaded media and returns the public URL of each object.
type Storage interface {
	Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// cleanKey 规范化对象 key，拒绝绝对路径与越级访问。
func cleanKey(key string) (string, error) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	if trimmed == "" || strings.HasPrefix(trimmed, "/") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(trimmed)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

func joinURL(prefix, key string) string {
	if prefix == "" {
		return "/" + key
	}
	return strings.TrimRight(prefix, "/") + "/" + key
}
