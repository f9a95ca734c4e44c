// Package storage writes media library objects to Cloud Storage and builds
// their object paths and public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	gcs "cloud.google.com/go/storage"
)

var (
	errInvalidBucket = errors.New("storage: bucket name is required")
	errInvalidObject = errors.New("storage: object name is required")
)

const cacheControlImmutable = "public, max-age=31536000, immutable"

// ErrObjectNotFound is returned by Delete when the object is already gone.
var ErrObjectNotFound = errors.New("storage: object not found")

// PutOptions describe the object being written.
type PutOptions struct {
	ContentType string
	// Metadata is stored as custom object metadata.
	Metadata map[string]string
}

type bucket interface {
	NewWriter(ctx context.Context, object string, opts PutOptions) io.WriteCloser
	Delete(ctx context.Context, object string) error
}

type gcsBucket struct {
	handle *gcs.BucketHandle
}

func (b gcsBucket) NewWriter(ctx context.Context, object string, opts PutOptions) io.WriteCloser {
	w := b.handle.Object(object).NewWriter(ctx)
	w.ContentType = opts.ContentType
	w.CacheControl = cacheControlImmutable
	w.Metadata = opts.Metadata
	return w
}

func (b gcsBucket) Delete(ctx context.Context, object string) error {
	err := b.handle.Object(object).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return ErrObjectNotFound
	}
	return err
}

// GCSStore stores uploaded media in a single bucket.
type GCSStore struct {
	bucket     bucket
	bucketName string
	publicBase string
}

// NewGCSStore wraps client. publicBaseURL, when set, replaces the default
// https://storage.googleapis.com/<bucket> prefix of returned URLs (a CDN host).
func NewGCSStore(client *gcs.Client, bucketName, publicBaseURL string) (*GCSStore, error) {
	if client == nil {
		return nil, errors.New("storage: client is required")
	}
	bucketName = strings.TrimSpace(bucketName)
	if bucketName == "" {
		return nil, errInvalidBucket
	}
	return newGCSStore(gcsBucket{handle: client.Bucket(bucketName)}, bucketName, publicBaseURL), nil
}

func newGCSStore(b bucket, bucketName, publicBaseURL string) *GCSStore {
	base := strings.TrimRight(strings.TrimSpace(publicBaseURL), "/")
	if base == "" {
		base = "https://storage.googleapis.com/" + bucketName
	}
	return &GCSStore{bucket: b, bucketName: bucketName, publicBase: base}
}

// Put streams r into object and returns its public URL.
func (s *GCSStore) Put(ctx context.Context, object string, r io.Reader, opts PutOptions) (string, error) {
	if s == nil || s.bucket == nil {
		return "", errors.New("storage: store is not initialised")
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return "", errInvalidObject
	}

	// Cancelling the writer context aborts a partial upload.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := s.bucket.NewWriter(ctx, object, opts)
	if _, err := io.Copy(w, r); err != nil {
		cancel()
		_ = w.Close()
		return "", fmt.Errorf("storage: write %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("storage: finalize %s: %w", object, err)
	}
	return s.PublicURL(object), nil
}

func (s *GCSStore) Delete(ctx context.Context, object string) error {
	object = strings.TrimSpace(object)
	if object == "" {
		return errInvalidObject
	}
	if err := s.bucket.Delete(ctx, object); err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return err
		}
		return fmt.Errorf("storage: delete %s: %w", object, err)
	}
	return nil
}

// PublicURL joins the public base and the escaped object path.
func (s *GCSStore) PublicURL(object string) string {
	return s.publicBase + "/" + escapePath(object)
}

func escapePath(object string) string {
	parts := strings.Split(object, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
