package service

import (
	"context"
	"io"
)

type Uploader interface {
	Upload(ctx context.Context, file io.Reader, folder string, publicID string) (string, error)
	Delete(ctx context.Context, publicID string) error
	// PreviewURL returns a JPEG rendering of the first page of an uploaded PDF.
	PreviewURL(publicID string) (string, error)
}
