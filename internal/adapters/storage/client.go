package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// UploadURLTTL bounds how long a presigned upload stays usable.
const UploadURLTTL = 15 * time.Minute

// MinIOService presigns and reads objects in MinIO.
type MinIOService struct {
	client      *minio.Client
	maxFileSize int64
	now         func() time.Time
}

func NewMinIOService(cfg Config) (*MinIOService, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, errors.New("minio: endpoint and credentials are required")
	}
	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &MinIOService{client: client, maxFileSize: cfg.GetMinIOMaxFileSize(), now: time.Now}, nil
}

// EnsureBucketExists creates bucket on first start.
func (s *MinIOService) EnsureBucketExists(ctx context.Context, bucket string) error {
	ok, err := s.client.BucketExists(ctx, bucket)
	switch {
	case err != nil:
		return fmt.Errorf("check bucket %s: %w", bucket, err)
	case ok:
		return nil
	}
	if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}
	return nil
}

// GenerateUploadURL checks the declared type and size, then presigns a PUT
// for a fresh key under folder.
func (s *MinIOService) GenerateUploadURL(ctx context.Context, bucket, folder, fileName, contentType string, sizeBytes int64) (*PresignedURL, error) {
	if !AllowedContentTypes[NormalizeContentType(contentType)] {
		return nil, fmt.Errorf("content type %q is not allowed", contentType)
	}
	if err := checkSize(sizeBytes, s.maxFileSize); err != nil {
		return nil, err
	}

	key := ObjectKey(folder, fileName, uuid.NewString()[:8])
	u, err := s.client.PresignedPutObject(ctx, bucket, key, UploadURLTTL)
	if err != nil {
		return nil, fmt.Errorf("presign upload %s: %w", key, err)
	}
	return s.presigned(u, key, UploadURLTTL), nil
}

// GenerateDownloadURL presigns a GET valid for ttl.
func (s *MinIOService) GenerateDownloadURL(ctx context.Context, bucket, fileKey string, ttl time.Duration) (*PresignedURL, error) {
	u, err := s.client.PresignedGetObject(ctx, bucket, fileKey, ttl, url.Values{})
	if err != nil {
		return nil, fmt.Errorf("presign download %s: %w", fileKey, err)
	}
	return s.presigned(u, fileKey, ttl), nil
}

// DownloadFile streams an object. The caller closes the reader.
func (s *MinIOService) DownloadFile(ctx context.Context, bucket, fileKey string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, bucket, fileKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", fileKey, err)
	}
	return obj, nil
}

func (s *MinIOService) presigned(u *url.URL, key string, ttl time.Duration) *PresignedURL {
	return &PresignedURL{URL: u.String(), FileKey: key, ExpiresAt: s.now().Add(ttl)}
}

// ObjectKey joins folder and a file name made unique with suffix. Path
// components in fileName are dropped.
func ObjectKey(folder, fileName, suffix string) string {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if base == "." || base == "/" {
		base = "upload"
	}
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return path.Join(folder, fmt.Sprintf("%s_%s%s", stem, suffix, ext))
}
