package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/voltline/site/internal/domain"
	"github.com/voltline/site/internal/locale"
	"github.com/voltline/site/internal/platform/auth"
	"github.com/voltline/site/internal/platform/httpx"
	"github.com/voltline/site/internal/platform/requestctx"
	"github.com/voltline/site/internal/services"
)

const (
	maxCatalogRequestBody   = 256 * 1024
	defaultArticlePageLimit = 12
)

// CatalogHandlers serves categories, FAQs, documents and articles.
type CatalogHandlers struct {
	authn   *auth.Authenticator
	catalog services.CatalogService
	cache   CachePolicy
}

func NewCatalogHandlers(authn *auth.Authenticator, catalog services.CatalogService, cache CachePolicy) *CatalogHandlers {
	return &CatalogHandlers{authn: authn, catalog: catalog, cache: cache}
}

// Routes registers catalog endpoints.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	write := staffOnly(h.authn, auth.CapContentWrite)
	remove := staffOnly(h.authn, auth.CapContentDelete)

	r.Route("/categories", func(rt chi.Router) {
		rt.Get("/", h.listCategories)
		rt.With(write...).Post("/", h.createCategory)
		rt.With(remove...).Delete("/{categoryID}", h.deleteCategory)
	})
	r.Route("/faqs", func(rt chi.Router) {
		rt.Get("/", h.listFAQs)
		rt.With(write...).Post("/", h.createFAQ)
		rt.With(remove...).Delete("/{faqID}", h.deleteFAQ)
	})
	r.Route("/documents", func(rt chi.Router) {
		rt.Get("/", h.listDocuments)
		rt.With(write...).Post("/", h.createDocument)
	})
	r.Route("/articles", func(rt chi.Router) {
		rt.Get("/", h.listArticles)
		rt.Get("/{slug}", h.getArticle)
		rt.With(write...).Post("/", h.createArticle)
	})
}

type categoryPayload struct {
	ID           string                `json:"id,omitempty"`
	Slug         string                `json:"slug"`
	SortOrder    int                   `json:"sort_order"`
	Translations []categoryTranslation `json:"translations"`
}

type categoryTranslation struct {
	Locale      string `json:"locale"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type faqPayload struct {
	ID           string           `json:"id,omitempty"`
	CategoryID   string           `json:"category_id,omitempty"`
	SortOrder    int              `json:"sort_order"`
	IsActive     bool             `json:"is_active"`
	Translations []faqTranslation `json:"translations"`
}

type faqTranslation struct {
	Locale   string `json:"locale"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type documentPayload struct {
	ID           string                `json:"id,omitempty"`
	Kind         string                `json:"kind"`
	FileURL      string                `json:"file_url"`
	FileSize     int64                 `json:"file_size"`
	IsActive     bool                  `json:"is_active"`
	SortOrder    int                   `json:"sort_order"`
	Translations []documentTranslation `json:"translations"`
}

type documentTranslation struct {
	Locale      string `json:"locale"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type articlePayload struct {
	ID              string               `json:"id,omitempty"`
	Slug            string               `json:"slug"`
	CoverImageURL   string               `json:"cover_image_url,omitempty"`
	IsPublished     bool                 `json:"is_published"`
	PublishedAt     *time.Time           `json:"published_at,omitempty"`
	Translations    []articleTranslation `json:"translations"`
	HTML            string               `json:"html,omitempty"`
	TranslationMeta *locale.Meta         `json:"translation_meta,omitempty"`
}

type articleTranslation struct {
	Locale  string `json:"locale"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt,omitempty"`
	Body    string `json:"body,omitempty"`
}

func newCategoryPayload(c domain.Category) categoryPayload {
	return categoryPayload{ID: c.ID, Slug: c.Slug, SortOrder: c.SortOrder,
		Translations: convertAll(c.Translations, func(t domain.CategoryTranslation) categoryTranslation { return categoryTranslation(t) })}
}

func newFAQPayload(f domain.FAQ) faqPayload {
	return faqPayload{ID: f.ID, CategoryID: f.CategoryID, SortOrder: f.SortOrder, IsActive: f.IsActive,
		Translations: convertAll(f.Translations, func(t domain.FAQTranslation) faqTranslation { return faqTranslation(t) })}
}

func newDocumentPayload(d domain.Document) documentPayload {
	return documentPayload{ID: d.ID, Kind: d.Kind, FileURL: d.FileURL, FileSize: d.FileSize, IsActive: d.IsActive, SortOrder: d.SortOrder,
		Translations: convertAll(d.Translations, func(t domain.DocumentTranslation) documentTranslation { return documentTranslation(t) })}
}

func newArticlePayload(a domain.Article) articlePayload {
	out := articlePayload{ID: a.ID, Slug: a.Slug, CoverImageURL: a.CoverImageURL, IsPublished: a.IsPublished,
		Translations: convertAll(a.Translations, func(t domain.ArticleTranslation) articleTranslation { return articleTranslation(t) })}
	if !a.PublishedAt.IsZero() {
		published := a.PublishedAt.UTC()
		out.PublishedAt = &published
	}
	return out
}

func (h *CatalogHandlers) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	h.cache.apply(w)
	httpx.WriteData(w, http.StatusOK, convertAll(categories, newCategoryPayload))
}

func (h *CatalogHandlers) createCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload categoryPayload
	if err := httpx.DecodeJSON(r, maxCatalogRequestBody, &payload); err != nil {
		writeDecodeError(ctx, w, err)
		return
	}
	category, err := h.catalog.CreateCategory(ctx, domain.Category{
		Slug:         payload.Slug,
		SortOrder:    payload.SortOrder,
		Translations: convertAll(payload.Translations, func(t categoryTranslation) domain.CategoryTranslation { return domain.CategoryTranslation(t) }),
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteData(w, http.StatusCreated, newCategoryPayload(category))
}

func (h *CatalogHandlers) deleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.catalog.DeleteCategory(ctx, chi.URLParam(r, "categoryID")); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listFAQs returns active FAQs unless active=false asks for all of them.
func (h *CatalogHandlers) listFAQs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	active, err := optionalBool(r, "active")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "active must be true or false", http.StatusBadRequest))
		return
	}
	activeOnly := active == nil || *active
	faqs, err := h.catalog.ListFAQs(ctx, r.URL.Query().Get("category"), activeOnly)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	h.cache.apply(w)
	httpx.WriteData(w, http.StatusOK, convertAll(faqs, newFAQPayload))
}

func (h *CatalogHandlers) createFAQ(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload faqPayload
	if err := httpx.DecodeJSON(r, maxCatalogRequestBody, &payload); err != nil {
		writeDecodeError(ctx, w, err)
		return
	}
	faq, err := h.catalog.CreateFAQ(ctx, domain.FAQ{
		CategoryID:   payload.CategoryID,
		SortOrder:    payload.SortOrder,
		IsActive:     payload.IsActive,
		Translations: convertAll(payload.Translations, func(t faqTranslation) domain.FAQTranslation { return domain.FAQTranslation(t) }),
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteData(w, http.StatusCreated, newFAQPayload(faq))
}

func (h *CatalogHandlers) deleteFAQ(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.catalog.DeleteFAQ(ctx, chi.URLParam(r, "faqID")); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandlers) listDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	active, err := optionalBool(r, "active")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "active must be true or false", http.StatusBadRequest))
		return
	}
	docs, err := h.catalog.ListDocuments(ctx, active)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	h.cache.apply(w)
	httpx.WriteData(w, http.StatusOK, convertAll(docs, newDocumentPayload))
}

func (h *CatalogHandlers) createDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload documentPayload
	if err := httpx.DecodeJSON(r, maxCatalogRequestBody, &payload); err != nil {
		writeDecodeError(ctx, w, err)
		return
	}
	doc, err := h.catalog.CreateDocument(ctx, domain.Document{
		Kind:         payload.Kind,
		FileURL:      payload.FileURL,
		FileSize:     payload.FileSize,
		IsActive:     payload.IsActive,
		SortOrder:    payload.SortOrder,
		Translations: convertAll(payload.Translations, func(t documentTranslation) domain.DocumentTranslation { return domain.DocumentTranslation(t) }),
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteData(w, http.StatusCreated, newDocumentPayload(doc))
}

func (h *CatalogHandlers) listArticles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params, ok := parsePage(ctx, w, r, defaultArticlePageLimit)
	if !ok {
		return
	}
	result, err := h.catalog.ListArticles(ctx, params)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	items := make([]articlePayload, 0, len(result.Items))
	for _, article := range result.Items {
		payload := newArticlePayload(article)
		for i := range payload.Translations {
			payload.Translations[i].Body = ""
		}
		items = append(items, payload)
	}
	h.cache.apply(w)
	httpx.WritePage(w, items, params.Meta(result.Total))
}

// getArticle renders the article body for ?locale=, falling back to the
// negotiated request locale.
func (h *CatalogHandlers) getArticle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	article, err := h.catalog.GetArticle(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	requested := strings.TrimSpace(r.URL.Query().Get("locale"))
	if requested == "" {
		requested = requestctx.Locale(ctx)
	}
	tr, html, meta := h.catalog.RenderArticle(article, requested)
	payload := newArticlePayload(article)
	payload.Translations = []articleTranslation{articleTranslation(tr)}
	payload.HTML = html
	payload.TranslationMeta = &meta
	h.cache.apply(w)
	httpx.WriteData(w, http.StatusOK, payload)
}

func (h *CatalogHandlers) createArticle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload articlePayload
	if err := httpx.DecodeJSON(r, maxCatalogRequestBody, &payload); err != nil {
		writeDecodeError(ctx, w, err)
		return
	}
	article := domain.Article{
		Slug:          payload.Slug,
		CoverImageURL: payload.CoverImageURL,
		IsPublished:   payload.IsPublished,
		Translations:  convertAll(payload.Translations, func(t articleTranslation) domain.ArticleTranslation { return domain.ArticleTranslation(t) }),
	}
	if payload.PublishedAt != nil {
		article.PublishedAt = payload.PublishedAt.UTC()
	}
	created, err := h.catalog.CreateArticle(ctx, article)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteData(w, http.StatusCreated, newArticlePayload(created))
}
