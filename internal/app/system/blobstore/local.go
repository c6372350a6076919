package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dalemusser/wardwatch/internal/app/system/apperr"
)

// Local stores objects under a directory and serves them from a URL prefix.
type Local struct {
	root      string
	urlPrefix string
}

// NewLocal creates root if needed.
func NewLocal(root, urlPrefix string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Local{root: root, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Root is the directory objects are written to.
func (l *Local) Root() string { return l.root }

// URLPrefix is the path objects are served from.
func (l *Local) URLPrefix() string { return l.urlPrefix }

func (l *Local) Upload(ctx context.Context, p string, r io.Reader, _ int64, _ string) (Ref, error) {
	clean, err := cleanPath(p)
	if err != nil {
		return "", err
	}
	if e, ok := ctxFailure(ctx.Err()); ok {
		return "", e
	}
	full := filepath.Join(l.root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", localFailure(err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return "", localFailure(err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, readerWithContext(ctx, r)); err != nil {
		tmp.Close()
		if e, ok := ctxFailure(err); ok {
			return "", e
		}
		return "", localFailure(err)
	}
	if err := tmp.Close(); err != nil {
		return "", localFailure(err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return "", localFailure(err)
	}
	return Ref(clean), nil
}

func (l *Local) URLOf(_ context.Context, ref Ref) (string, error) {
	if IsURL(ref) {
		return string(ref), nil
	}
	clean, err := cleanPath(string(ref))
	if err != nil {
		return "", err
	}
	return l.urlPrefix + "/" + clean, nil
}

func localFailure(err error) error {
	switch {
	case errors.Is(err, os.ErrPermission):
		return apperr.Collaborator(CodeUnauthorized, err)
	case errors.Is(err, syscall.ENOSPC):
		return apperr.Collaborator(CodeQuotaExceeded, err)
	}
	return apperr.Collaborator(CodeUnknown, err)
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
