// Package storage provides media storage for uploaded images.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/buneko/backend/internal/domain/shared"
	"github.com/buneko/backend/internal/infrastructure/config"
	"github.com/buneko/backend/internal/infrastructure/logger"
)

// Ensure S3MediaStore implements MediaStore
var _ shared.MediaStore = (*S3MediaStore)(nil)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ErrUnsupportedImage is returned for uploads that are not jpeg, png, gif or webp
var ErrUnsupportedImage = shared.NewDomainError("INVALID_INPUT", "Only image files are allowed (jpeg, png, gif, webp)")

// S3MediaStore stores images in an S3-compatible bucket (AWS S3, MinIO, RustFS).
type S3MediaStore struct {
	client     *s3.Client
	bucket     string
	rootFolder string
	publicBase string
	logger     *zap.Logger
}

// S3MediaStoreOption is a functional option for configuring S3MediaStore
type S3MediaStoreOption func(*S3MediaStore)

// WithLogger sets a custom logger for S3MediaStore
func WithLogger(logger *zap.Logger) S3MediaStoreOption {
	return func(s *S3MediaStore) {
		s.logger = logger
	}
}

// NewS3MediaStore creates a media store from configuration
func NewS3MediaStore(cfg *config.StorageConfig, opts ...S3MediaStoreOption) (*S3MediaStore, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:9000"
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid storage endpoint: %w", err)
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	publicBase := strings.TrimRight(cfg.PublicBaseURL, "/")
	if publicBase == "" {
		publicBase = strings.TrimRight(endpoint, "/") + "/" + cfg.Bucket
	}

	store := &S3MediaStore{
		client:     client,
		bucket:     cfg.Bucket,
		rootFolder: strings.Trim(cfg.Folder, "/"),
		publicBase: publicBase,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// Upload stores an image and returns its public URL. Object keys are random
// so a replaced image never collides with the one it replaces.
func (s *S3MediaStore) Upload(ctx context.Context, folder string, file shared.MediaUpload) (string, error) {
	ext, ok := allowedImageTypes[strings.ToLower(file.ContentType)]
	if !ok {
		return "", ErrUnsupportedImage
	}
	if len(file.Data) == 0 {
		return "", shared.NewDomainError("INVALID_INPUT", "Uploaded file is empty")
	}

	key := path.Join(s.rootFolder, strings.Trim(folder, "/"), uuid.NewString()+ext)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file.Data),
		ContentType: aws.String(file.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	logger.Enrich(ctx, s.logger).Debug("image uploaded",
		zap.String("key", key),
		zap.Int("size", len(file.Data)),
	)
	return s.publicBase + "/" + key, nil
}

// Delete removes the object behind a URL returned by Upload. URLs outside
// this store are ignored.
func (s *S3MediaStore) Delete(ctx context.Context, rawURL string) error {
	key, ok := s.keyFromURL(rawURL)
	if !ok {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image %s: %w", key, err)
	}
	return nil
}

func (s *S3MediaStore) keyFromURL(rawURL string) (string, bool) {
	prefix := s.publicBase + "/"
	if !strings.HasPrefix(rawURL, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(rawURL, prefix)
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	return key, key != ""
}

// GetBucket returns the bucket name
func (s *S3MediaStore) GetBucket() string {
	return s.bucket
}
