package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalConfig options for the filesystem backend
type LocalConfig struct {
	Dir       string // 媒体根目录
	URLPrefix string // 对外访问前缀，如 /media
}

// Local stores media on the local filesystem; gin serves Dir under URLPrefix.
type Local struct {
	dir       string
	urlPrefix string
}

// NewLocal creates the media directory if needed.
func NewLocal(cfg LocalConfig) (*Local, error) {
	if cfg.Dir == "" {
		return nil, errors.New("media directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &Local{dir: cfg.Dir, urlPrefix: cfg.URLPrefix}, nil
}

// Dir returns the media root directory.
func (l *Local) Dir() string {
	return l.dir
}

func (l *Local) Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target := filepath.Join(l.dir, filepath.FromSlash(cleaned))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	return l.URL(cleaned), nil
}

func (l *Local) Delete(ctx context.Context, key string) error {
	cleaned, err := cleanKey(key)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(l.dir, filepath.FromSlash(cleaned)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (l *Local) URL(key string) string {
	return joinURL(l.urlPrefix, key)
}
