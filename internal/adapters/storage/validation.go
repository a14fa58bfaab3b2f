package storage

import (
	"fmt"
	"path"
	"strings"
)

// AllowedContentTypes lists what applicants may upload: a PDF résumé or a
// recorded answer.
var AllowedContentTypes = map[string]bool{
	"application/pdf": true,
	"video/webm":      true,
	"video/mp4":       true,
	"video/quicktime": true,
}

// NormalizeContentType drops parameters such as codecs and lower-cases.
func NormalizeContentType(contentType string) string {
	return strings.TrimSpace(strings.ToLower(strings.Split(contentType, ";")[0]))
}

func checkSize(sizeBytes, max int64) error {
	if sizeBytes <= 0 {
		return fmt.Errorf("file size must be greater than 0")
	}
	if sizeBytes > max {
		return fmt.Errorf("file size %d bytes exceeds maximum allowed size of %d bytes", sizeBytes, max)
	}
	return nil
}

// IsVideoContentType reports whether an upload is a recorded answer.
func IsVideoContentType(contentType string) bool {
	return strings.HasPrefix(NormalizeContentType(contentType), "video/")
}

// VideoMIMEType infers a clip's type from its object key; recorders upload
// webm unless the key says otherwise.
func VideoMIMEType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".mp4", ".m4v":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	default:
		return "video/webm"
	}
}
