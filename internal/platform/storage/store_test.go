package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

type fakeBucket struct {
	objects map[string][]byte
	opts    map[string]PutOptions
	failAt  error
}

type fakeWriter struct {
	bucket *fakeBucket
	object string
	opts   PutOptions
	buf    bytes.Buffer
}

func (w *fakeWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *fakeWriter) Close() error {
	if w.bucket.failAt != nil {
		return w.bucket.failAt
	}
	w.bucket.objects[w.object] = w.buf.Bytes()
	w.bucket.opts[w.object] = w.opts
	return nil
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string][]byte{}, opts: map[string]PutOptions{}}
}

func (b *fakeBucket) NewWriter(_ context.Context, object string, opts PutOptions) io.WriteCloser {
	return &fakeWriter{bucket: b, object: object, opts: opts}
}

func (b *fakeBucket) Delete(_ context.Context, object string) error {
	if _, ok := b.objects[object]; !ok {
		return ErrObjectNotFound
	}
	delete(b.objects, object)
	return nil
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestGCSStorePutReturnsPublicURL(t *testing.T) {
	b := newFakeBucket()
	store := newGCSStore(b, "site-media", "")

	url, err := store.Put(context.Background(), "media/2025/05/01J/photo one.jpg", strings.NewReader("jpeg"), PutOptions{ContentType: "image/jpeg"})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if want := "https://storage.googleapis.com/site-media/media/2025/05/01J/photo%20one.jpg"; url != want {
		t.Fatalf("expected %s, got %s", want, url)
	}
	if string(b.objects["media/2025/05/01J/photo one.jpg"]) != "jpeg" {
		t.Fatalf("object not written")
	}
	if b.opts["media/2025/05/01J/photo one.jpg"].ContentType != "image/jpeg" {
		t.Fatalf("content type not forwarded")
	}
}

func TestGCSStoreUsesPublicBase(t *testing.T) {
	store := newGCSStore(newFakeBucket(), "site-media", "https://cdn.example.com/")
	if got := store.PublicURL("media/a.png"); got != "https://cdn.example.com/media/a.png" {
		t.Fatalf("unexpected url %s", got)
	}
}

func TestGCSStorePutErrors(t *testing.T) {
	b := newFakeBucket()
	store := newGCSStore(b, "site-media", "")

	if _, err := store.Put(context.Background(), " ", strings.NewReader("x"), PutOptions{}); !errors.Is(err, errInvalidObject) {
		t.Fatalf("expected invalid object error, got %v", err)
	}
	if _, err := store.Put(context.Background(), "media/x", failingReader{}, PutOptions{}); err == nil {
		t.Fatalf("expected read error")
	}

	b.failAt = errors.New("quota exceeded")
	if _, err := store.Put(context.Background(), "media/y", strings.NewReader("y"), PutOptions{}); err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected finalize error, got %v", err)
	}
}

func TestGCSStoreDelete(t *testing.T) {
	b := newFakeBucket()
	store := newGCSStore(b, "site-media", "")
	if _, err := store.Put(context.Background(), "media/a", strings.NewReader("a"), PutOptions{}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Delete(context.Background(), "media/a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(context.Background(), "media/a"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore("")
	url, err := store.Put(context.Background(), "media/2025/01/x/a.png", strings.NewReader("png"), PutOptions{ContentType: "image/png"})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "/uploads/media/2025/01/x/a.png" {
		t.Fatalf("unexpected url %s", url)
	}
	obj, ok := store.Open("media/2025/01/x/a.png")
	if !ok || string(obj.Data) != "png" || obj.ContentType != "image/png" {
		t.Fatalf("unexpected object %#v", obj)
	}
	if err := store.Delete(context.Background(), "media/2025/01/x/a.png"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := store.Open("media/2025/01/x/a.png"); ok {
		t.Fatalf("object should be gone")
	}
}

func TestMediaObjectPath(t *testing.T) {
	at := time.Date(2025, 3, 9, 23, 0, 0, 0, time.FixedZone("CET", 3600))
	path, err := MediaObjectPath("01HZX", "Nabíječka Home.PNG", at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "media/2025/03/01HZX/nabijecka-home.png"; path != want {
		t.Fatalf("expected %s, got %s", want, path)
	}
}

func TestMediaObjectPathRejectsInvalidInput(t *testing.T) {
	if _, err := MediaObjectPath("../bad", "a.png", time.Now()); err == nil {
		t.Fatalf("expected error for traversal id")
	}
	if _, err := MediaObjectPath("id", "!!!.png", time.Now()); err == nil {
		t.Fatalf("expected error for empty file name")
	}
}
