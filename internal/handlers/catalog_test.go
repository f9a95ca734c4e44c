package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/voltline/site/internal/platform/auth"
	"github.com/voltline/site/internal/repositories/memory"
	"github.com/voltline/site/internal/sections"
	"github.com/voltline/site/internal/services"
)

func newCatalogRouter(t *testing.T) chi.Router {
	t.Helper()
	store := memory.NewStore()
	svc, err := services.NewCatalogService(services.CatalogServiceDeps{
		Categories: store.Categories(),
		FAQs:       store.FAQs(),
		Documents:  store.Documents(),
		Articles:   store.Articles(),
		Locales:    testResolver,
		Supported:  []string{"cs", "en", "de"},
		Markdown:   sections.NewRenderer(testResolver).Markdown,
		Clock:      func() time.Time { return time.Date(2025, 5, 6, 9, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}
	router := chi.NewRouter()
	NewCatalogHandlers(nil, svc, DefaultCachePolicy()).Routes(router)
	return router
}

func post(t *testing.T, router http.Handler, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, asStaff(newJSONRequest(t, http.MethodPost, target, body), auth.RoleEditor))
	return rr
}

func TestCatalogHandlers_Categories(t *testing.T) {
	router := newCatalogRouter(t)

	rr := post(t, router, "/categories", map[string]any{
		"slug":         "chargers",
		"translations": []map[string]string{{"locale": "cs", "name": "Nabíječky"}},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var created struct {
		Data categoryPayload `json:"data"`
	}
	decodeJSON(t, rr, &created)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/categories", nil))
	var listed struct {
		Data []categoryPayload `json:"data"`
	}
	decodeJSON(t, rr, &listed)
	if len(listed.Data) != 1 || listed.Data[0].Slug != "chargers" {
		t.Fatalf("unexpected categories %+v", listed.Data)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, asStaff(httptest.NewRequest(http.MethodDelete, "/categories/"+created.Data.ID, nil), auth.RoleEditor))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, asStaff(httptest.NewRequest(http.MethodDelete, "/categories/"+created.Data.ID, nil), auth.RoleEditor))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rr.Code)
	}
}

func TestCatalogHandlers_FAQsDefaultToActive(t *testing.T) {
	router := newCatalogRouter(t)
	for _, active := range []bool{true, false} {
		rr := post(t, router, "/faqs", map[string]any{
			"is_active":    active,
			"translations": []map[string]string{{"locale": "cs", "question": "Otázka?", "answer": "Odpověď."}},
		})
		if rr.Code != http.StatusCreated {
			t.Fatalf("create faq: expected 201, got %d: %s", rr.Code, rr.Body.String())
		}
	}

	for query, want := range map[string]int{"": 1, "?active=false": 2} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/faqs"+query, nil))
		var body struct {
			Data []faqPayload `json:"data"`
		}
		decodeJSON(t, rr, &body)
		if len(body.Data) != want {
			t.Fatalf("GET /faqs%s: expected %d entries, got %d", query, want, len(body.Data))
		}
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/faqs?active=maybe", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad flag, got %d", rr.Code)
	}
}

func TestCatalogHandlers_DocumentValidation(t *testing.T) {
	router := newCatalogRouter(t)

	rr := post(t, router, "/documents", map[string]any{
		"kind":         "brochure",
		"translations": []map[string]string{{"locale": "cs", "title": "Katalog"}},
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var resp errorBody
	decodeJSON(t, rr, &resp)
	if resp.Fields["kind"] == "" || resp.Fields["file_url"] == "" {
		t.Fatalf("expected kind and file_url errors, got %v", resp.Fields)
	}
}

func TestCatalogHandlers_ArticleRendersFallbackLocale(t *testing.T) {
	router := newCatalogRouter(t)
	rr := post(t, router, "/articles", map[string]any{
		"slug":         "jak-vybrat-wallbox",
		"is_published": true,
		"translations": []map[string]string{{
			"locale": "cs",
			"title":  "Jak vybrat wallbox",
			"body":   "Vyberte **správný** výkon.<script>alert(1)</script>",
		}},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/articles/jak-vybrat-wallbox?locale=de", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rr.Code)
	}
	var body struct {
		Data articlePayload `json:"data"`
	}
	decodeJSON(t, rr, &body)
	if body.Data.TranslationMeta == nil || body.Data.TranslationMeta.Resolved != "cs" || !body.Data.TranslationMeta.FallbackUsed {
		t.Fatalf("unexpected meta %+v", body.Data.TranslationMeta)
	}
	if !strings.Contains(body.Data.HTML, "<strong>správný</strong>") || strings.Contains(body.Data.HTML, "<script") {
		t.Fatalf("unexpected html %q", body.Data.HTML)
	}
	if body.Data.PublishedAt == nil {
		t.Fatal("expected published_at to be set")
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/articles", nil))
	var list struct {
		Data []articlePayload `json:"data"`
	}
	decodeJSON(t, rr, &list)
	if len(list.Data) != 1 || list.Data[0].Translations[0].Body != "" {
		t.Fatalf("expected one article without body, got %+v", list.Data)
	}
}

func TestCatalogHandlers_DraftArticleIsHidden(t *testing.T) {
	router := newCatalogRouter(t)
	rr := post(t, router, "/articles", map[string]any{
		"slug":         "koncept",
		"translations": []map[string]string{{"locale": "cs", "title": "Koncept"}},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/articles/koncept", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
