package storage

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"pasugo/internal/config"
)

type S3Provider struct {
	client *s3.Client
	cfg    *config.StorageConfig
}

func NewS3Provider(ctx context.Context, cfg *config.StorageConfig) (*S3Provider, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3Provider{
		client: s3.NewFromConfig(awsCfg),
		cfg:    cfg,
	}, nil
}

func (s *S3Provider) Upload(ctx context.Context, req UploadRequest) (*UploadResponse, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.cfg.Bucket,
		Key:         &req.Key,
		Body:        req.Body,
		ContentType: &req.ContentType,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 put object: %w", err)
	}
	return &UploadResponse{Key: req.Key, URL: s.URL(req.Key)}, nil
}

func (s *S3Provider) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.cfg.Bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("s3 delete object: %w", err)
	}
	return nil
}

func (s *S3Provider) URL(key string) string {
	if s.cfg.CDNDomain != "" {
		return fmt.Sprintf("https://%s/%s", s.cfg.CDNDomain, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}
