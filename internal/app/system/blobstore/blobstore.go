// Package blobstore is the file-upload collaborator: upload bytes under a
// path, get back a reference, and later turn the reference into a URL.
//
// Backends: S3-compatible object storage via minio, local disk, and an
// in-memory store for tests. Failures carry "storage/..." codes.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dalemusser/wardwatch/internal/app/system/apperr"
	"github.com/google/uuid"
)

// Ref identifies a stored object. It is the object path for every backend;
// absolute http(s) URLs are also accepted and resolve to themselves.
type Ref string

// Failure codes.
const (
	CodeCanceled           = "storage/canceled"
	CodeUnauthorized       = "storage/unauthorized"
	CodeQuotaExceeded      = "storage/quota-exceeded"
	CodeRetryLimitExceeded = "storage/retry-limit-exceeded"
	CodeUnknown            = "storage/unknown"
)

// File is an upload received from a client.
type File struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Uploader stores bytes.
type Uploader interface {
	Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) (Ref, error)
}

// Store uploads and resolves references.
type Store interface {
	Uploader
	URLOf(ctx context.Context, ref Ref) (string, error)
}

// IsURL reports whether ref is already an absolute URL.
func IsURL(ref Ref) bool {
	s := strings.ToLower(string(ref))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Resolve returns a URL for ref, or "" for an empty ref.
func Resolve(ctx context.Context, s Store, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	if IsURL(Ref(ref)) || s == nil {
		return ref, nil
	}
	return s.URLOf(ctx, Ref(ref))
}

// ComplaintEvidencePath returns complaints/<reporter>/<yyyy>/<mm>/<uuid8>-<name>.
func ComplaintEvidencePath(reporterID, filename string, now time.Time) string {
	now = now.UTC()
	return fmt.Sprintf("complaints/%s/%04d/%02d/%s-%s",
		SanitizeFilename(reporterID), now.Year(), now.Month(), uuid.New().String()[:8], SanitizeFilename(filename))
}

// ProfilePhotoPath returns profiles/<uid>. Re-uploads replace the photo.
func ProfilePhotoPath(uid string) string {
	return "profiles/" + SanitizeFilename(uid)
}

// BadgePath returns badges/<uid>/<uuid8>-<name>.
func BadgePath(uid, filename string) string {
	return fmt.Sprintf("badges/%s/%s-%s", SanitizeFilename(uid), uuid.New().String()[:8], SanitizeFilename(filename))
}

// SanitizeFilename keeps the base name and replaces anything outside
// [A-Za-z0-9._-] with "_". Names are capped at 100 bytes, keeping a short
// extension.
func SanitizeFilename(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if filename == "." || filename == "/" {
		filename = ""
	}

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	if len(result) == 0 || strings.Trim(string(result), ".") == "" {
		return "file"
	}
	if len(result) > 100 {
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}
	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}

// cleanPath drops a leading slash and rejects parent traversal and
// non-canonical paths.
func cleanPath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", apperr.Validation("upload path is empty", "path")
	}
	c := path.Clean("/" + p)[1:]
	if c == "" || c != strings.TrimPrefix(p, "/") || strings.Contains(p, "..") {
		return "", apperr.Validation(fmt.Sprintf("invalid upload path %q", p), "path")
	}
	return c, nil
}

// ctxFailure maps context errors to storage codes.
func ctxFailure(err error) (*apperr.Error, bool) {
	switch {
	case errors.Is(err, context.Canceled):
		return apperr.Collaborator(CodeCanceled, err), true
	case errors.Is(err, context.DeadlineExceeded):
		return apperr.Collaborator(CodeRetryLimitExceeded, err), true
	}
	return nil, false
}
