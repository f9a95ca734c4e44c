package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/voltline/site/internal/domain"
	"github.com/voltline/site/internal/platform/auth"
	"github.com/voltline/site/internal/platform/httpx"
	"github.com/voltline/site/internal/services"
)

const (
	defaultMediaPageLimit = 50
	multipartMemory       = 8 << 20
	uploadFormField       = "files"
)

// MediaHandlers serves the media library.
type MediaHandlers struct {
	authn    *auth.Authenticator
	media    services.MediaService
	maxBytes int64
}

// NewMediaHandlers builds media handlers. maxRequestBytes caps a whole
// multipart request; zero leaves it unbounded.
func NewMediaHandlers(authn *auth.Authenticator, media services.MediaService, maxRequestBytes int64) *MediaHandlers {
	return &MediaHandlers{authn: authn, media: media, maxBytes: maxRequestBytes}
}

func (h *MediaHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Route("/media", func(rt chi.Router) {
		rt.Use(staffOnly(h.authn, auth.CapMediaManage)...)
		rt.Get("/", h.list)
		rt.Post("/", h.upload)
		rt.Delete("/{mediaID}", h.delete)
	})
}

type mediaPayload struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	URL         string    `json:"url"`
	UploadedBy  string    `json:"uploaded_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type uploadResultPayload struct {
	FileName string              `json:"file_name"`
	Status   domain.UploadStatus `json:"status"`
	Error    string              `json:"error,omitempty"`
	Item     *mediaPayload       `json:"item,omitempty"`
}

func newMediaPayload(item domain.MediaItem) mediaPayload {
	return mediaPayload{
		ID:          item.ID,
		FileName:    item.FileName,
		ContentType: item.ContentType,
		Size:        item.Size,
		URL:         item.URL,
		UploadedBy:  item.UploadedBy,
		CreatedAt:   item.CreatedAt.UTC(),
	}
}

func (h *MediaHandlers) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params, ok := parsePage(ctx, w, r, defaultMediaPageLimit)
	if !ok {
		return
	}
	result, err := h.media.List(ctx, params)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WritePage(w, convertAll(result.Items, newMediaPayload), params.Meta(result.Total))
}

// upload runs every file of the "files" field through the upload queue. The
// response lists per-file results in submission order: 201 when at least one
// file was stored, 400 when none was.
func (h *MediaHandlers) upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "upload exceeds the request size limit", http.StatusRequestEntityTooLarge))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "multipart form expected", http.StatusBadRequest))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File[uploadFormField]
	if len(headers) == 0 {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "no files in field "+uploadFormField, http.StatusBadRequest))
		return
	}

	files := make([]services.UploadFile, 0, len(headers))
	for _, header := range headers {
		files = append(files, services.UploadFile{
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Open: func() (io.ReadCloser, error) {
				return header.Open()
			},
		})
	}

	results := h.media.Upload(ctx, files, actorID(r))
	payload := make([]uploadResultPayload, 0, len(results))
	succeeded := 0
	for _, result := range results {
		entry := uploadResultPayload{FileName: result.FileName, Status: result.Status}
		if result.Err != nil {
			entry.Error = result.Err.Error()
		}
		if result.Item != nil {
			item := newMediaPayload(*result.Item)
			entry.Item = &item
		}
		if result.Status == domain.UploadSuccess {
			succeeded++
		}
		payload = append(payload, entry)
	}

	if succeeded == 0 {
		httpx.WriteError(ctx, w, httpx.NewError("upload_failed", "no file could be uploaded", http.StatusBadRequest).
			WithDetails(map[string]any{"files": payload}))
		return
	}
	httpx.WriteData(w, http.StatusCreated, payload)
}

func (h *MediaHandlers) delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.media.Delete(ctx, chi.URLParam(r, "mediaID")); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
