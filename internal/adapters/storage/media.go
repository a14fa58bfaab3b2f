package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"hiring_pipeline_backend/internal/hiring"
	"hiring_pipeline_backend/internal/hiring/scoring"
)

// Downloader is the part of MinIOService the media fetcher reads through.
type Downloader interface {
	DownloadFile(ctx context.Context, bucket, fileKey string) (io.ReadCloser, error)
	GenerateDownloadURL(ctx context.Context, bucket, fileKey string, ttl time.Duration) (*PresignedURL, error)
}

// Buckets names the résumé and video buckets.
type Buckets struct {
	Resumes string
	Videos  string
}

// DefaultDownloadTimeout bounds one object read when none is configured.
const DefaultDownloadTimeout = time.Minute

// Media loads applicant material for scoring and signs dossier links.
type Media struct {
	store          Downloader
	buckets        Buckets
	maxClipBytes   int64
	maxResumeBytes int64
	timeout        time.Duration
}

// NewMedia wires a fetcher with the per-object size ceilings and the time
// allowed for each download, body included.
func NewMedia(store Downloader, buckets Buckets, maxClipBytes, maxResumeBytes int64, timeout time.Duration) *Media {
	if timeout <= 0 {
		timeout = DefaultDownloadTimeout
	}
	return &Media{
		store:          store,
		buckets:        buckets,
		maxClipBytes:   maxClipBytes,
		maxResumeBytes: maxResumeBytes,
		timeout:        timeout,
	}
}

// FetchResume reads a résumé PDF, refusing objects above the résumé ceiling.
func (m *Media) FetchResume(ctx context.Context, key string) ([]byte, error) {
	return m.read(ctx, m.buckets.Resumes, key, m.maxResumeBytes)
}

// FetchClip reads one recorded answer, refusing objects above the clip ceiling.
func (m *Media) FetchClip(ctx context.Context, key string) (scoring.Clip, error) {
	data, err := m.read(ctx, m.buckets.Videos, key, m.maxClipBytes)
	if err != nil {
		return scoring.Clip{}, err
	}
	return scoring.Clip{MIMEType: VideoMIMEType(key), Data: data}, nil
}

// VideoLinks signs each clip key for founder review.
func (m *Media) VideoLinks(ctx context.Context, keys []string, ttl time.Duration) ([]string, error) {
	links := make([]string, 0, len(keys))
	for _, key := range keys {
		u, err := m.store.GenerateDownloadURL(ctx, m.buckets.Videos, key, ttl)
		if err != nil {
			return nil, err
		}
		links = append(links, u.URL)
	}
	return links, nil
}

func (m *Media) read(ctx context.Context, bucket, key string, limit int64) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	rc, err := m.store.DownloadFile(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("download object %s: %w", key, err)
	}
	defer func() {
		_ = rc.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	if int64(len(data)) > limit {
		return nil, hiring.Invalid("media", fmt.Sprintf("object %s exceeds %d bytes", key, limit))
	}
	if len(data) == 0 {
		return nil, hiring.Invalid("media", fmt.Sprintf("object %s is empty", key))
	}
	return data, nil
}
