// Package storage wraps the S3-compatible object store that holds résumés and
// recorded video answers.
package storage

import "time"

// PresignedURL is a time-limited upload or download link for one object.
type PresignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Config is the MinIO slice of platform config.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	IsMinIOEnabled() bool
}

var _ Downloader = (*MinIOService)(nil)
