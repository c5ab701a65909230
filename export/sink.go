package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/dsp/buffer"
)

const wavContentType = "audio/wav"

// Sink stores an exported file under name and returns where it ended up.
type Sink interface {
	Put(ctx context.Context, name string, r io.Reader, size int64) (string, error)
}

// Publish encodes buf as WAV and stores it in sink.
func Publish(ctx context.Context, sink Sink, name string, buf *buffer.Buffer, sampleRate float64, opts ...Option) (string, error) {
	data, err := EncodeWAVBytes(buf, sampleRate, opts...)
	if err != nil {
		return "", err
	}

	return sink.Put(ctx, name, bytes.NewReader(data), int64(len(data)))
}

// FileSink writes files below a directory.
type FileSink struct {
	Dir string
}

// NewFileSink returns a sink rooted at dir, creating it if needed.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	return &FileSink{Dir: dir}, nil
}

// Put implements Sink.
func (s *FileSink) Put(ctx context.Context, name string, r io.Reader, _ int64) (location string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := s.path(name)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}

	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("export: write %s: %w", path, err)
	}

	return path, nil
}

func (s *FileSink) path(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if name == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("export: file name %q escapes the sink: %w", name, daw.ErrInvalidParameter)
	}

	return filepath.Join(s.Dir, clean), nil
}

// MinioConfig locates an S3-compatible bucket.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	// Prefix is prepended to every object name.
	Prefix string
}

// MinioSink uploads files to a bucket.
type MinioSink struct {
	client *minio.Client
	cfg    MinioConfig
}

// NewMinioSink creates a client for cfg. It does not contact the server;
// call EnsureBucket to check the connection.
func NewMinioSink(cfg MinioConfig) (*MinioSink, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("export: minio sink needs an endpoint and a bucket: %w", daw.ErrInvalidParameter)
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("export: create minio client: %w: %w", err, daw.ErrIntegrationFailure)
	}

	return &MinioSink{client: client, cfg: cfg}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *MinioSink) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("export: check bucket %q: %w: %w", s.cfg.Bucket, err, daw.ErrIntegrationFailure)
	}

	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
		return fmt.Errorf("export: create bucket %q: %w: %w", s.cfg.Bucket, err, daw.ErrIntegrationFailure)
	}

	return nil
}

// ObjectName returns the key a file called name is stored under.
func (s *MinioSink) ObjectName(name string) string {
	if s.cfg.Prefix == "" {
		return name
	}

	return strings.TrimSuffix(s.cfg.Prefix, "/") + "/" + strings.TrimPrefix(name, "/")
}

// Put implements Sink.
func (s *MinioSink) Put(ctx context.Context, name string, r io.Reader, size int64) (string, error) {
	key := s.ObjectName(name)

	info, err := s.client.PutObject(ctx, s.cfg.Bucket, key, r, size, minio.PutObjectOptions{
		ContentType: wavContentType,
	})
	if err != nil {
		return "", fmt.Errorf("export: upload %s: %w: %w", key, err, daw.ErrIntegrationFailure)
	}

	return info.Bucket + "/" + info.Key, nil
}
