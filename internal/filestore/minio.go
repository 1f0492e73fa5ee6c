package filestore

import (
	"bufio"
	"context"
	"io"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioOpts func(c *minioConfig)

type minioConfig struct {
	endpoint        string
	bucket          string
	accessKey       string
	secretAccessKey string
	useSSL          bool
}

func newConfig(opts ...MinioOpts) *minioConfig {
	cfg := &minioConfig{useSSL: false}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

type MinioStore struct {
	cfg    *minioConfig
	client *minio.Client
}

var _ Store = (*MinioStore)(nil)

func NewMinioStore(opts ...MinioOpts) (*MinioStore, error) {
	cfg := newConfig(opts...)

	minioClient, err := minio.New(cfg.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.accessKey, cfg.secretAccessKey, ""),
		Secure: cfg.useSSL,
	})
	if err != nil {
		return nil, err
	}

	return &MinioStore{cfg: cfg, client: minioClient}, nil
}

func (s *MinioStore) Put(ctx context.Context, r io.Reader, path string) (string, error) {
	_, err := s.client.PutObject(ctx, s.cfg.bucket, path, r, -1, minio.PutObjectOptions{})
	if err != nil {
		return "", err
	}
	return path, nil
}

func (s *MinioStore) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	object, err := s.client.GetObject(ctx, s.cfg.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// GetObject is lazy; Stat surfaces a missing object before the
	// stage starts streaming.
	if _, err := object.Stat(); err != nil {
		_ = object.Close()
		return nil, err
	}
	return object, nil
}

func (s *MinioStore) Writer(ctx context.Context, path string) (io.WriteCloser, error) {
	pr, pw := io.Pipe()
	w := &objectWriter{pw: pw, done: make(chan error, 1)}
	go func() {
		_, err := s.client.PutObject(ctx, s.cfg.bucket, path, pr, -1, minio.PutObjectOptions{})
		if err != nil {
			_ = pr.CloseWithError(err)
		}
		w.done <- err
	}()
	return w, nil
}

func (s *MinioStore) NumOfLines(ctx context.Context, path string) (int, error) {
	r, err := s.Get(ctx, path)
	if err != nil {
		return 0, err
	}
	defer r.Close()
	return CountLines(r)
}

func (s *MinioStore) Remove(ctx context.Context, paths ...string) error {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := s.client.RemoveObject(ctx, s.cfg.bucket, path, minio.RemoveObjectOptions{}); err != nil {
			return err
		}
	}
	return nil
}

// CountLines counts the lines of a stream; a final line without a
// trailing newline still counts.
func CountLines(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	lines := 0
	for scanner.Scan() {
		lines++
	}
	return lines, scanner.Err()
}

// objectWriter streams writes into a PutObject running in the
// background; Close completes the upload and reports its error. Close
// is idempotent so callers may both defer it and check it explicitly.
type objectWriter struct {
	pw   *io.PipeWriter
	done chan error

	closeOnce sync.Once
	closeErr  error
}

func (w *objectWriter) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

func (w *objectWriter) Close() error {
	w.closeOnce.Do(func() {
		if err := w.pw.Close(); err != nil {
			w.closeErr = err
			return
		}
		w.closeErr = <-w.done
	})
	return w.closeErr
}

func WithEndpoint(endpoint string) MinioOpts {
	return func(c *minioConfig) {
		c.endpoint = endpoint
	}
}

func WithBucket(bucket string) MinioOpts {
	return func(c *minioConfig) {
		c.bucket = bucket
	}
}

func WithAccessKey(accessKey string) MinioOpts {
	return func(c *minioConfig) {
		c.accessKey = accessKey
	}
}

func WithSecretKey(secretAccessKey string) MinioOpts {
	return func(c *minioConfig) {
		c.secretAccessKey = secretAccessKey
	}
}

func WithSSL(useSSL bool) MinioOpts {
	return func(c *minioConfig) {
		c.useSSL = useSSL
	}
}
