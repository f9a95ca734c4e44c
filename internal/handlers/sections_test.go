package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/voltline/site/internal/platform/auth"
	"github.com/voltline/site/internal/repositories/memory"
	"github.com/voltline/site/internal/services"
)

type sectionFixture struct {
	router  chi.Router
	changed []string
}

func newSectionFixture(t *testing.T) *sectionFixture {
	t.Helper()
	f := &sectionFixture{}
	ids := 0
	svc, err := services.NewSectionService(services.SectionServiceDeps{
		Sections:  memory.NewSectionRepository(),
		Supported: []string{"cs", "en", "de"},
		OnChange:  func(slug string) { f.changed = append(f.changed, slug) },
		IDGen: func() string {
			ids++
			return fmt.Sprintf("sec%d", ids)
		},
	})
	if err != nil {
		t.Fatalf("NewSectionService: %v", err)
	}
	f.router = chi.NewRouter()
	NewSectionHandlers(nil, svc).Routes(f.router)
	return f
}

func (f *sectionFixture) create(t *testing.T, sectionType string, config map[string]any) sectionPayload {
	t.Helper()
	body := map[string]any{
		"page_slug":    "home",
		"type":         sectionType,
		"is_active":    true,
		"config":       config,
		"translations": []map[string]string{{"locale": "cs", "heading": "Nadpis " + sectionType}},
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, asStaff(newJSONRequest(t, http.MethodPost, "/sections", body), auth.RoleEditor))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create %s: expected 201, got %d: %s", sectionType, rr.Code, rr.Body.String())
	}
	var resp struct {
		Data sectionPayload `json:"data"`
	}
	decodeJSON(t, rr, &resp)
	return resp.Data
}

func TestSectionHandlers_CreateAndReorder(t *testing.T) {
	f := newSectionFixture(t)
	hero := f.create(t, "hero", map[string]any{"image": "https://cdn.example.com/hero.jpg"})
	text := f.create(t, "text", nil)
	cta := f.create(t, "cta", map[string]any{"label": "Kontakt", "href": "/cs/contact"})
	if hero.SortOrder != 0 || text.SortOrder != 1 || cta.SortOrder != 2 {
		t.Fatalf("expected appended sort orders, got %d %d %d", hero.SortOrder, text.SortOrder, cta.SortOrder)
	}

	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, asStaff(newJSONRequest(t, http.MethodPost, "/pages/home/sections/reorder",
		map[string]string{"active_id": cta.ID, "over_id": hero.ID}), auth.RoleEditor))
	if rr.Code != http.StatusOK {
		t.Fatalf("reorder: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	f.router.ServeHTTP(rr, asStaff(httptest.NewRequest(http.MethodGet, "/pages/home/sections", nil), auth.RoleViewer))
	if rr.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rr.Code)
	}
	var listed struct {
		Data []sectionPayload `json:"data"`
	}
	decodeJSON(t, rr, &listed)
	var order []string
	for _, s := range listed.Data {
		order = append(order, s.Type)
	}
	if fmt.Sprint(order) != "[cta hero text]" {
		t.Fatalf("unexpected order %v", order)
	}
	for i, s := range listed.Data {
		if s.SortOrder != i {
			t.Fatalf("section %s has sort order %d, want %d", s.ID, s.SortOrder, i)
		}
	}
	if len(f.changed) != 4 {
		t.Fatalf("expected 4 change notifications, got %v", f.changed)
	}
}

func TestSectionHandlers_InvalidConfig(t *testing.T) {
	f := newSectionFixture(t)
	body := map[string]any{
		"page_slug":    "home",
		"type":         "hero",
		"config":       map[string]any{},
		"translations": []map[string]string{{"locale": "cs", "heading": "Nadpis"}},
	}

	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, asStaff(newJSONRequest(t, http.MethodPost, "/sections", body), auth.RoleAdmin))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var resp errorBody
	decodeJSON(t, rr, &resp)
	if resp.Fields["config.image"] == "" {
		t.Fatalf("expected config.image field error, got %v", resp.Fields)
	}
}

func TestSectionHandlers_UpdateAndDelete(t *testing.T) {
	f := newSectionFixture(t)
	text := f.create(t, "text", nil)

	body := map[string]any{
		"page_slug":    "home",
		"type":         "text",
		"is_active":    false,
		"translations": []map[string]string{{"locale": "cs", "heading": "Nový nadpis"}},
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, asStaff(newJSONRequest(t, http.MethodPut, "/sections/"+text.ID, body), auth.RoleEditor))
	if rr.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var updated struct {
		Data sectionPayload `json:"data"`
	}
	decodeJSON(t, rr, &updated)
	if updated.Data.IsActive || updated.Data.Translations[0].Heading != "Nový nadpis" {
		t.Fatalf("unexpected update %+v", updated.Data)
	}

	rr = httptest.NewRecorder()
	f.router.ServeHTTP(rr, asStaff(httptest.NewRequest(http.MethodDelete, "/sections/"+text.ID, nil), auth.RoleEditor))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	f.router.ServeHTTP(rr, asStaff(httptest.NewRequest(http.MethodDelete, "/sections/"+text.ID, nil), auth.RoleEditor))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rr.Code)
	}
}

func TestSectionHandlers_ViewerCannotWrite(t *testing.T) {
	f := newSectionFixture(t)

	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, asStaff(newJSONRequest(t, http.MethodPost, "/sections", map[string]any{"page_slug": "home", "type": "text"}), auth.RoleViewer))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}
