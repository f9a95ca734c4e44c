package handlers

import (
	"bytes"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/voltline/site/internal/platform/storage"
)

// UploadsHandler serves objects of the in-memory media store when no bucket
// is configured. Object names are immutable, so responses cache for a year.
func UploadsHandler(store *storage.MemoryStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		object, err := url.PathUnescape(chi.URLParam(r, "*"))
		if err != nil || object == "" {
			http.NotFound(w, r)
			return
		}
		obj, ok := store.Open(object)
		if !ok {
			http.NotFound(w, r)
			return
		}
		if obj.ContentType != "" {
			w.Header().Set("Content-Type", obj.ContentType)
		}
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		http.ServeContent(w, r, object, time.Time{}, bytes.NewReader(obj.Data))
	})
}
