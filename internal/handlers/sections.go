package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/voltline/site/internal/domain"
	"github.com/voltline/site/internal/platform/auth"
	"github.com/voltline/site/internal/platform/httpx"
	"github.com/voltline/site/internal/services"
)

const maxSectionRequestBody = 256 * 1024

// SectionHandlers is the admin API for page sections.
type SectionHandlers struct {
	authn    *auth.Authenticator
	sections services.SectionService
}

func NewSectionHandlers(authn *auth.Authenticator, sections services.SectionService) *SectionHandlers {
	return &SectionHandlers{authn: authn, sections: sections}
}

func (h *SectionHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	read := staffOnly(h.authn, auth.CapContentRead)
	write := staffOnly(h.authn, auth.CapContentWrite)

	r.With(read...).Get("/pages/{pageSlug}/sections", h.list)
	r.With(write...).Post("/pages/{pageSlug}/sections/reorder", h.reorder)
	r.Route("/sections", func(rt chi.Router) {
		rt.With(write...).Post("/", h.create)
		rt.With(write...).Put("/{sectionID}", h.update)
		rt.With(staffOnly(h.authn, auth.CapContentDelete)...).Delete("/{sectionID}", h.delete)
	})
}

type sectionPayload struct {
	ID           string               `json:"id,omitempty"`
	PageSlug     string               `json:"page_slug"`
	Type         string               `json:"type"`
	SortOrder    int                  `json:"sort_order"`
	IsActive     bool                 `json:"is_active"`
	Config       map[string]any       `json:"config,omitempty"`
	Translations []sectionTranslation `json:"translations"`
	Benefits     []benefitPayload     `json:"benefits,omitempty"`
	UpdatedAt    *time.Time           `json:"updated_at,omitempty"`
}

type sectionTranslation struct {
	Locale     string `json:"locale"`
	Heading    string `json:"heading,omitempty"`
	Subheading string `json:"subheading,omitempty"`
	Content    string `json:"content,omitempty"`
}

type benefitPayload struct {
	ID           string               `json:"id,omitempty"`
	Icon         string               `json:"icon"`
	ColorAccent  string               `json:"color_accent,omitempty"`
	SortOrder    int                  `json:"sort_order"`
	Translations []benefitTranslation `json:"translations"`
}

type benefitTranslation struct {
	Locale      string `json:"locale"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

func (p sectionPayload) toDomain() domain.Section {
	return domain.Section{
		ID:           p.ID,
		PageSlug:     p.PageSlug,
		Type:         p.Type,
		SortOrder:    p.SortOrder,
		IsActive:     p.IsActive,
		Config:       p.Config,
		Translations: convertAll(p.Translations, func(t sectionTranslation) domain.SectionTranslation { return domain.SectionTranslation(t) }),
		Benefits: convertAll(p.Benefits, func(b benefitPayload) domain.Benefit {
			return domain.Benefit{ID: b.ID, Icon: b.Icon, ColorAccent: b.ColorAccent, SortOrder: b.SortOrder,
				Translations: convertAll(b.Translations, func(t benefitTranslation) domain.BenefitTranslation { return domain.BenefitTranslation(t) })}
		}),
	}
}

func newSectionPayload(s domain.Section) sectionPayload {
	out := sectionPayload{
		ID:           s.ID,
		PageSlug:     s.PageSlug,
		Type:         s.Type,
		SortOrder:    s.SortOrder,
		IsActive:     s.IsActive,
		Config:       s.Config,
		Translations: convertAll(s.Translations, func(t domain.SectionTranslation) sectionTranslation { return sectionTranslation(t) }),
		Benefits: convertAll(s.Benefits, func(b domain.Benefit) benefitPayload {
			return benefitPayload{ID: b.ID, Icon: b.Icon, ColorAccent: b.ColorAccent, SortOrder: b.SortOrder,
				Translations: convertAll(b.Translations, func(t domain.BenefitTranslation) benefitTranslation { return benefitTranslation(t) })}
		}),
	}
	if !s.UpdatedAt.IsZero() {
		updated := s.UpdatedAt.UTC()
		out.UpdatedAt = &updated
	}
	return out
}

func (h *SectionHandlers) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	items, err := h.sections.ListSections(ctx, chi.URLParam(r, "pageSlug"))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, convertAll(items, newSectionPayload))
}

func (h *SectionHandlers) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload sectionPayload
	if err := httpx.DecodeJSON(r, maxSectionRequestBody, &payload); err != nil {
		writeDecodeError(ctx, w, err)
		return
	}
	section, err := h.sections.CreateSection(ctx, payload.toDomain())
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteData(w, http.StatusCreated, newSectionPayload(section))
}

func (h *SectionHandlers) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload sectionPayload
	if err := httpx.DecodeJSON(r, maxSectionRequestBody, &payload); err != nil {
		writeDecodeError(ctx, w, err)
		return
	}
	payload.ID = chi.URLParam(r, "sectionID")
	section, err := h.sections.UpdateSection(ctx, payload.toDomain())
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, newSectionPayload(section))
}

func (h *SectionHandlers) delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.sections.DeleteSection(ctx, chi.URLParam(r, "sectionID")); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SectionHandlers) reorder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req reorderRequest
	if err := httpx.DecodeJSON(r, 4*1024, &req); err != nil {
		writeDecodeError(ctx, w, err)
		return
	}
	ordered, err := h.sections.ReorderSections(ctx, chi.URLParam(r, "pageSlug"), req.ActiveID, req.OverID)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, convertAll(ordered, newSectionPayload))
}
