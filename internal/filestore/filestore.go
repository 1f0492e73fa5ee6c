package filestore

import (
	"context"
	"io"
)

// Store is the remote file system every per-operation artifact lives
// in. Paths are opaque object keys rooted at the operation id.
type Store interface {
	// Put uploads the whole stream and returns the stored path.
	Put(ctx context.Context, r io.Reader, path string) (string, error)
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	// Writer returns an appendable writer over a new object. The object
	// becomes visible on Close.
	Writer(ctx context.Context, path string) (io.WriteCloser, error)
	NumOfLines(ctx context.Context, path string) (int, error)
	Remove(ctx context.Context, paths ...string) error
}
