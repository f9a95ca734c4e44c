package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voltline/site/internal/domain"
	"github.com/voltline/site/internal/platform/pagination"
	"github.com/voltline/site/internal/platform/storage"
	"github.com/voltline/site/internal/repositories/memory"
)

type flakyMediaStore struct {
	*storage.MemoryStore
	failOn map[string]error
	puts   []string
}

func (s *flakyMediaStore) Put(ctx context.Context, object string, r io.Reader, opts storage.PutOptions) (string, error) {
	s.puts = append(s.puts, object)
	for suffix, err := range s.failOn {
		if strings.HasSuffix(object, suffix) {
			return "", err
		}
	}
	return s.MemoryStore.Put(ctx, object, r, opts)
}

func textFile(name, contentType, body string) UploadFile {
	return UploadFile{
		FileName:    name,
		ContentType: contentType,
		Size:        int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

func newTestMediaService(t *testing.T, store MediaStore, maxBytes int64) (MediaService, *memory.Store) {
	t.Helper()
	registry := memory.NewStore()
	svc, err := NewMediaService(MediaServiceDeps{
		Media:    registry.Media(),
		Store:    store,
		MaxBytes: maxBytes,
		Clock:    fixedClock(testNow),
		IDGen:    sequentialIDs("media"),
	})
	require.NoError(t, err)
	return svc, registry
}

func TestMediaService_UploadQueueContinuesAfterFailure(t *testing.T) {
	store := &flakyMediaStore{
		MemoryStore: storage.NewMemoryStore(""),
		failOn:      map[string]error{"/charger-side.png": errors.New("bucket unavailable")},
	}
	svc, registry := newTestMediaService(t, store, 0)

	results := svc.Upload(context.Background(), []UploadFile{
		textFile("charger-front.png", "image/png", "front"),
		textFile("charger-side.png", "image/png", "side"),
		textFile("manual.pdf", "application/pdf", "%PDF"),
	}, "editor-1")

	require.Len(t, results, 3)
	statuses := []domain.UploadStatus{results[0].Status, results[1].Status, results[2].Status}
	require.Equal(t, []domain.UploadStatus{domain.UploadSuccess, domain.UploadError, domain.UploadSuccess}, statuses)
	require.Error(t, results[1].Err)
	require.Nil(t, results[1].Item)
	require.Len(t, store.puts, 3, "files after the failure must still be attempted")

	require.NotNil(t, results[0].Item)
	require.Equal(t, "/uploads/media/2025/05/media001/charger-front.png", results[0].Item.URL)
	require.Equal(t, "editor-1", results[0].Item.UploadedBy)

	listed, err := svc.List(context.Background(), pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 2, listed.Total)
	_, err = registry.Media().FindByID(context.Background(), results[2].Item.ID)
	require.NoError(t, err)
}

func TestMediaService_UploadRejectsDisallowedAndOversizedFiles(t *testing.T) {
	store := storage.NewMemoryStore("")
	svc, _ := newTestMediaService(t, store, 8)

	lying := textFile("big.png", "image/png", "0123456789abcdef")
	lying.Size = 4

	results := svc.Upload(context.Background(), []UploadFile{
		textFile("script.sh", "text/x-shellscript", "echo"),
		lying,
		textFile("small.png", "", "tiny"),
	}, "")

	require.Equal(t, domain.UploadError, results[0].Status)
	require.ErrorIs(t, results[0].Err, ErrMediaInvalid)
	require.Equal(t, domain.UploadError, results[1].Status)
	require.ErrorIs(t, results[1].Err, ErrMediaInvalid)
	require.Equal(t, domain.UploadSuccess, results[2].Status)
	require.Equal(t, "image/png", results[2].Item.ContentType)

	_, ok := store.Open(results[2].Item.ObjectName)
	require.True(t, ok)
}

func TestMediaService_Delete(t *testing.T) {
	store := storage.NewMemoryStore("")
	svc, _ := newTestMediaService(t, store, 0)
	results := svc.Upload(context.Background(), []UploadFile{textFile("hero.jpg", "image/jpeg", "jpeg")}, "")
	require.Equal(t, domain.UploadSuccess, results[0].Status)
	item := results[0].Item

	// The object vanishing first must not block removing the record.
	require.NoError(t, store.Delete(context.Background(), item.ObjectName))
	require.NoError(t, svc.Delete(context.Background(), item.ID))
	require.ErrorIs(t, svc.Delete(context.Background(), item.ID), ErrMediaNotFound)
}

func TestContentTypeAllowed(t *testing.T) {
	allowed := []string{"image/*", "application/pdf"}
	cases := map[string]bool{
		"image/png":       true,
		"IMAGE/webp":      true,
		"application/pdf": true,
		"application/zip": false,
		"":                false,
	}
	for contentType, want := range cases {
		if got := contentTypeAllowed(contentType, allowed); got != want {
			t.Errorf("contentTypeAllowed(%q) = %v, want %v", contentType, got, want)
		}
	}
}
