package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"pasugo/internal/apperrors"
	"pasugo/internal/utils"
	"pasugo/pkg/storage"
)

// UploadKind namespaces stored files by their purpose.
type UploadKind string

const (
	UploadPaymentProof    UploadKind = "payment-proofs"
	UploadCollectionProof UploadKind = "collection-proofs"
	UploadAvatar          UploadKind = "avatars"
	UploadLicense         UploadKind = "licenses"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type UploadService struct {
	provider storage.Provider
}

func NewUploadService(provider storage.Provider) *UploadService {
	return &UploadService{provider: provider}
}

// UploadImage stores an image under a random key and returns its URL.
func (s *UploadService) UploadImage(ctx context.Context, kind UploadKind, contentType string, size int64, body io.Reader) (*storage.UploadResponse, error) {
	ext, ok := allowedImageTypes[strings.ToLower(contentType)]
	if !ok {
		return nil, apperrors.Validation("unsupported image type")
	}
	if size <= 0 || size > utils.MaxUploadSizeMB*1024*1024 {
		return nil, apperrors.Validation(fmt.Sprintf("file must be between 1 byte and %d MB", utils.MaxUploadSizeMB))
	}

	key := path.Join(string(kind), uuid.NewString()+ext)
	resp, err := s.provider.Upload(ctx, storage.UploadRequest{
		Key:         key,
		Body:        body,
		Size:        size,
		ContentType: contentType,
	})
	if err != nil {
		return nil, apperrors.Internal("store upload", err)
	}
	return resp, nil
}

func (s *UploadService) Delete(ctx context.Context, key string) error {
	if err := s.provider.Delete(ctx, key); err != nil {
		return apperrors.Internal("delete upload", err)
	}
	return nil
}
