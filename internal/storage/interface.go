package storage

import (
	"context"
	"io"
)

type Storage interface {
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Upload(ctx context.Context, key string, data io.Reader) error
	Exists(ctx context.Context, key string) (bool, error)
}
