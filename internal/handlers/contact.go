package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/voltline/site/internal/domain"
	"github.com/voltline/site/internal/platform/auth"
	"github.com/voltline/site/internal/platform/httpx"
	"github.com/voltline/site/internal/platform/pagination"
	"github.com/voltline/site/internal/platform/requestctx"
	"github.com/voltline/site/internal/services"
)

const maxContactRequestBody = 32 * 1024

// ContactHandlers accepts the public contact form and lists the inbox.
type ContactHandlers struct {
	authn   *auth.Authenticator
	contact services.ContactService
}

func NewContactHandlers(authn *auth.Authenticator, contact services.ContactService) *ContactHandlers {
	return &ContactHandlers{authn: authn, contact: contact}
}

func (h *ContactHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Route("/contact", func(rt chi.Router) {
		rt.Post("/", h.submit)
		rt.With(staffOnly(h.authn, auth.CapContactRead)...).Get("/", h.list)
	})
}

type contactRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Company   string `json:"company,omitempty"`
	Message   string `json:"message"`
	Locale    string `json:"locale,omitempty"`
	ProductID string `json:"product_id,omitempty"`
}

type contactMessagePayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	Message   string    `json:"message"`
	Locale    string    `json:"locale,omitempty"`
	ProductID string    `json:"product_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func newContactMessagePayload(m domain.ContactMessage) contactMessagePayload {
	return contactMessagePayload{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Company:   m.Company,
		Message:   m.Message,
		Locale:    m.Locale,
		ProductID: m.ProductID,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

func (h *ContactHandlers) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req contactRequest
	if err := httpx.DecodeJSON(r, maxContactRequestBody, &req); err != nil {
		writeDecodeError(ctx, w, err)
		return
	}
	if req.Locale == "" {
		req.Locale = requestctx.Locale(ctx)
	}
	msg, err := h.contact.Submit(ctx, services.ContactCommand{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Company:   req.Company,
		Message:   req.Message,
		Locale:    req.Locale,
		ProductID: req.ProductID,
		RemoteIP:  clientIP(r),
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteData(w, http.StatusCreated, map[string]any{
		"id":         msg.ID,
		"created_at": msg.CreatedAt.UTC(),
	})
}

func (h *ContactHandlers) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params, ok := parsePage(ctx, w, r, pagination.DefaultLimit)
	if !ok {
		return
	}
	result, err := h.contact.List(ctx, params)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	httpx.WritePage(w, convertAll(result.Items, newContactMessagePayload), params.Meta(result.Total))
}
