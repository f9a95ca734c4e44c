package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/voltline/site/internal/platform/i18n"
	"github.com/voltline/site/internal/platform/requestctx"
	"github.com/voltline/site/internal/services"
)

const homePageSlug = "home"

// PageHandlers serves the public corporate pages as HTML.
type PageHandlers struct {
	pages     services.PageService
	negotiate *i18n.Negotiator
	cache     CachePolicy
}

func NewPageHandlers(pages services.PageService, negotiate *i18n.Negotiator, cache CachePolicy) *PageHandlers {
	return &PageHandlers{pages: pages, negotiate: negotiate, cache: cache}
}

func (h *PageHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.redirectToLocale)
	r.Get("/{locale}", h.home)
	r.Get("/{locale}/", h.home)
	r.Get("/{locale}/{slug}", h.page)
}

// redirectToLocale sends / to the home page of the negotiated locale.
func (h *PageHandlers) redirectToLocale(w http.ResponseWriter, r *http.Request) {
	code, _ := h.negotiate.Resolve(r)
	w.Header().Add("Vary", "Accept-Language")
	http.Redirect(w, r, "/"+code+"/", http.StatusFound)
}

func (h *PageHandlers) home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, homePageSlug)
}

func (h *PageHandlers) page(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, strings.ToLower(chi.URLParam(r, "slug")))
}

func (h *PageHandlers) render(w http.ResponseWriter, r *http.Request, slug string) {
	ctx := r.Context()
	code, ok := h.negotiate.Match(chi.URLParam(r, "locale"))
	if !ok {
		h.notFound(w, r, h.negotiate.Default())
		return
	}

	page, err := h.pages.Compose(ctx, slug, code)
	if err != nil {
		if errors.Is(err, services.ErrPageNotFound) {
			h.notFound(w, r, code)
			return
		}
		requestctx.Logger(ctx).Error("page compose failed", zap.String("page", slug), zap.String("locale", code), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	data := layoutData{Page: page, Canonical: pagePath(code, slug)}
	for _, alt := range h.negotiate.Supported() {
		data.Alternates = append(data.Alternates, alternate{Locale: alt, Href: pagePath(alt, slug)})
	}

	w.Header().Set("Content-Language", page.Locale)
	h.cache.apply(w)
	templ.Handler(pageLayout(data)).ServeHTTP(w, r)
}

func (h *PageHandlers) notFound(w http.ResponseWriter, r *http.Request, code string) {
	w.Header().Set("Content-Language", code)
	w.Header().Set("Cache-Control", "no-store")
	templ.Handler(notFoundLayout(code), templ.WithStatus(http.StatusNotFound)).ServeHTTP(w, r)
}

func pagePath(code, slug string) string {
	if slug == homePageSlug {
		return "/" + code + "/"
	}
	return "/" + code + "/" + slug
}
