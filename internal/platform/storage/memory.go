package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// MemoryObject is a stored object held by MemoryStore.
type MemoryObject struct {
	ContentType string
	Data        []byte
}

// MemoryStore keeps objects in process for the memory store driver. Objects
// are served back under the public base by Open.
type MemoryStore struct {
	publicBase string

	mu      sync.RWMutex
	objects map[string]MemoryObject
}

func NewMemoryStore(publicBaseURL string) *MemoryStore {
	base := strings.TrimRight(strings.TrimSpace(publicBaseURL), "/")
	if base == "" {
		base = "/uploads"
	}
	return &MemoryStore{publicBase: base, objects: map[string]MemoryObject{}}
}

func (s *MemoryStore) Put(ctx context.Context, object string, r io.Reader, opts PutOptions) (string, error) {
	object = strings.TrimSpace(object)
	if object == "" {
		return "", errInvalidObject
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", fmt.Errorf("storage: write %s: %w", object, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.objects[object] = MemoryObject{ContentType: opts.ContentType, Data: buf.Bytes()}
	s.mu.Unlock()
	return s.publicBase + "/" + escapePath(object), nil
}

func (s *MemoryStore) Delete(_ context.Context, object string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[object]; !ok {
		return ErrObjectNotFound
	}
	delete(s.objects, object)
	return nil
}

// Open returns a stored object.
func (s *MemoryStore) Open(object string) (MemoryObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[object]
	return obj, ok
}
