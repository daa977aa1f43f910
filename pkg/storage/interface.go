package storage

import (
	"context"
	"io"
)

type UploadRequest struct {
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
}

type UploadResponse struct {
	Key string
	URL string
}

// Provider abstracts where uploaded files land.
type Provider interface {
	Upload(ctx context.Context, req UploadRequest) (*UploadResponse, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}
