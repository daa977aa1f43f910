package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pasugo/internal/config"
)

type LocalProvider struct {
	cfg *config.StorageConfig
}

func NewLocalProvider(cfg *config.StorageConfig) (*LocalProvider, error) {
	if err := os.MkdirAll(cfg.LocalPath, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalProvider{cfg: cfg}, nil
}

func (l *LocalProvider) Upload(ctx context.Context, req UploadRequest) (*UploadResponse, error) {
	path := filepath.Join(l.cfg.LocalPath, filepath.FromSlash(req.Key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, req.Body); err != nil {
		return nil, fmt.Errorf("write file: %w", err)
	}
	return &UploadResponse{Key: req.Key, URL: l.URL(req.Key)}, nil
}

func (l *LocalProvider) Delete(ctx context.Context, key string) error {
	path := filepath.Join(l.cfg.LocalPath, filepath.FromSlash(key))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

func (l *LocalProvider) URL(key string) string {
	return strings.TrimRight(l.cfg.LocalURL, "/") + "/" + key
}
