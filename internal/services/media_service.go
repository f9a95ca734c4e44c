package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/voltline/site/internal/domain"
	"github.com/voltline/site/internal/platform/pagination"
	"github.com/voltline/site/internal/platform/storage"
	"github.com/voltline/site/internal/repositories"
)

const (
	mediaLoggerEventUploaded     = "media.upload.success"
	mediaLoggerEventFailed       = "media.upload.error"
	mediaLoggerEventOrphanObject = "media.upload.orphan_object"
	defaultMediaLimit            = 50
	defaultMaxUploadBytes        = 20 << 20
)

var defaultMediaContentTypes = []string{"image/*", "application/pdf", "video/mp4"}

// MediaServiceDeps bundles constructor inputs for the media service.
type MediaServiceDeps struct {
	Media repositories.MediaRepository
	Store MediaStore
	// MaxBytes caps a single file. Zero uses 20 MiB.
	MaxBytes int64
	// AllowedTypes accepts exact types and "major/*" wildcards.
	AllowedTypes []string
	Meter        metric.Meter
	Clock        func() time.Time
	IDGen        func() string
	Logger       LoggerFunc
}

type mediaService struct {
	repo     repositories.MediaRepository
	store    MediaStore
	maxBytes int64
	allowed  []string
	uploads  metric.Int64Counter
	clock    func() time.Time
	newID    func() string
	logger   LoggerFunc
}

var _ MediaService = (*mediaService)(nil)

func NewMediaService(deps MediaServiceDeps) (MediaService, error) {
	if deps.Media == nil {
		return nil, errors.New("media service: media repository is required")
	}
	if deps.Store == nil {
		return nil, errors.New("media service: media store is required")
	}
	meter := deps.Meter
	if meter == nil {
		meter = otel.Meter("github.com/voltline/site/internal/services")
	}
	uploads, err := meter.Int64Counter("site.media.uploads",
		metric.WithDescription("Media files processed by the upload queue"),
		metric.WithUnit("{file}"))
	if err != nil {
		return nil, fmt.Errorf("media service: register counter: %w", err)
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGen
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = nopLogger
	}
	maxBytes := deps.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	allowed := deps.AllowedTypes
	if len(allowed) == 0 {
		allowed = defaultMediaContentTypes
	}
	return &mediaService{
		repo:     deps.Media,
		store:    deps.Store,
		maxBytes: maxBytes,
		allowed:  allowed,
		uploads:  uploads,
		clock:    func() time.Time { return clock().UTC() },
		newID:    idGen,
		logger:   logger,
	}, nil
}

// Upload queues every file as pending and processes them one at a time in
// submission order. A failed file is reported and the queue moves on; there
// are no retries.
func (s *mediaService) Upload(ctx context.Context, files []UploadFile, actorID string) []UploadResult {
	results := make([]UploadResult, len(files))
	for i, file := range files {
		results[i] = UploadResult{FileName: file.FileName, Status: domain.UploadPending}
	}
	for i, file := range files {
		results[i].Status = domain.UploadUploading
		item, err := s.uploadOne(ctx, file, actorID)
		if err != nil {
			results[i].Status = domain.UploadError
			results[i].Err = err
			s.record(ctx, domain.UploadError)
			s.logger(ctx, mediaLoggerEventFailed, map[string]any{"file": file.FileName, "error": err})
			continue
		}
		results[i].Status = domain.UploadSuccess
		results[i].Item = &item
		s.record(ctx, domain.UploadSuccess)
		s.logger(ctx, mediaLoggerEventUploaded, map[string]any{"file": file.FileName, "mediaId": item.ID, "size": item.Size})
	}
	return results
}

func (s *mediaService) uploadOne(ctx context.Context, file UploadFile, actorID string) (domain.MediaItem, error) {
	if err := ctx.Err(); err != nil {
		return domain.MediaItem{}, err
	}
	contentType, err := s.checkFile(file)
	if err != nil {
		return domain.MediaItem{}, err
	}

	now := s.clock()
	item := domain.MediaItem{
		ID:          s.newID(),
		FileName:    strings.TrimSpace(file.FileName),
		ContentType: contentType,
		Size:        file.Size,
		UploadedBy:  strings.TrimSpace(actorID),
		CreatedAt:   now,
	}
	item.ObjectName, err = storage.MediaObjectPath(item.ID, item.FileName, now)
	if err != nil {
		return domain.MediaItem{}, fmt.Errorf("%w: %v", ErrMediaInvalid, err)
	}

	body, err := file.Open()
	if err != nil {
		return domain.MediaItem{}, fmt.Errorf("open %s: %w", item.FileName, err)
	}
	defer body.Close()

	counted := &countingReader{r: io.LimitReader(body, s.maxBytes+1)}
	item.URL, err = s.store.Put(ctx, item.ObjectName, counted, storage.PutOptions{
		ContentType: contentType,
		Metadata:    map[string]string{"mediaId": item.ID, "originalName": item.FileName},
	})
	if err == nil && counted.n > s.maxBytes {
		err = fmt.Errorf("%w: file exceeds %d bytes", ErrMediaInvalid, s.maxBytes)
		_ = s.store.Delete(ctx, item.ObjectName)
	}
	if err != nil {
		return domain.MediaItem{}, err
	}
	item.Size = counted.n

	if err := s.repo.Insert(ctx, item); err != nil {
		if delErr := s.store.Delete(ctx, item.ObjectName); delErr != nil {
			s.logger(ctx, mediaLoggerEventOrphanObject, map[string]any{"object": item.ObjectName, "error": delErr})
		}
		return domain.MediaItem{}, fmt.Errorf("record %s: %w", item.FileName, err)
	}
	return item, nil
}

func (s *mediaService) checkFile(file UploadFile) (string, error) {
	if strings.TrimSpace(file.FileName) == "" {
		return "", fmt.Errorf("%w: file name is required", ErrMediaInvalid)
	}
	if file.Open == nil {
		return "", fmt.Errorf("%w: file has no content", ErrMediaInvalid)
	}
	if file.Size > s.maxBytes {
		return "", fmt.Errorf("%w: file exceeds %d bytes", ErrMediaInvalid, s.maxBytes)
	}
	contentType := strings.TrimSpace(file.ContentType)
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = parsed
	}
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(extension(file.FileName)); byExt != "" {
			contentType, _, _ = mime.ParseMediaType(byExt)
		}
	}
	if !contentTypeAllowed(contentType, s.allowed) {
		return "", fmt.Errorf("%w: content type %q is not allowed", ErrMediaInvalid, contentType)
	}
	return contentType, nil
}

func (s *mediaService) record(ctx context.Context, status domain.UploadStatus) {
	s.uploads.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(status))))
}

func (s *mediaService) List(ctx context.Context, params pagination.Params) (domain.ListResult[domain.MediaItem], error) {
	if params.Limit <= 0 {
		params.Limit = defaultMediaLimit
	}
	return s.repo.List(ctx, repositories.ListOptions{Offset: params.Offset(), Limit: params.Limit})
}

// Delete removes the stored object, then the record. An object that is
// already gone does not block removing the record.
func (s *mediaService) Delete(ctx context.Context, mediaID string) error {
	mediaID = strings.TrimSpace(mediaID)
	item, err := s.repo.FindByID(ctx, mediaID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return fmt.Errorf("%w: %s", ErrMediaNotFound, mediaID)
		}
		return err
	}
	if item.ObjectName != "" {
		if err := s.store.Delete(ctx, item.ObjectName); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			return err
		}
	}
	if err := s.repo.Delete(ctx, mediaID); err != nil {
		if repositories.IsNotFound(err) {
			return fmt.Errorf("%w: %s", ErrMediaNotFound, mediaID)
		}
		return err
	}
	return nil
}

func contentTypeAllowed(contentType string, allowed []string) bool {
	normalized := strings.ToLower(strings.TrimSpace(contentType))
	if normalized == "" {
		return false
	}
	for _, candidate := range allowed {
		candidate = strings.ToLower(strings.TrimSpace(candidate))
		switch {
		case candidate == "":
		case candidate == "*":
			return true
		case strings.HasSuffix(candidate, "/*"):
			if strings.HasPrefix(normalized, strings.TrimSuffix(candidate, "*")) {
				return true
			}
		case normalized == candidate:
			return true
		}
	}
	return false
}

func extension(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return strings.ToLower(name[i:])
	}
	return ""
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
