package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/voltline/site/internal/domain"
	"github.com/voltline/site/internal/formarray"
	"github.com/voltline/site/internal/locale"
	"github.com/voltline/site/internal/platform/auth"
	"github.com/voltline/site/internal/platform/pagination"
	"github.com/voltline/site/internal/repositories/memory"
	"github.com/voltline/site/internal/services"
)

var testResolver = locale.NewResolver("cs", locale.PolicyDefaultLocale)

type stubProductService struct {
	services.ProductService
	listFilter services.ProductListFilter
	listResp   domain.ListResult[domain.Product]
	createCmd  services.CreateProductCommand
}

func (s *stubProductService) ListProducts(_ context.Context, filter services.ProductListFilter) (domain.ListResult[domain.Product], error) {
	s.listFilter = filter
	return s.listResp, nil
}

func (s *stubProductService) CreateProduct(_ context.Context, cmd services.CreateProductCommand) (domain.Product, error) {
	s.createCmd = cmd
	product := cmd.Product
	product.ID = "prod_1"
	return product, nil
}

func (s *stubProductService) Completeness(context.Context, string) (map[string]formarray.Status, error) {
	return map[string]formarray.Status{"cs": formarray.StatusComplete}, nil
}

func newProductRouter(svc services.ProductService) chi.Router {
	router := chi.NewRouter()
	NewProductHandlers(nil, svc, testResolver, DefaultCachePolicy()).Routes(router)
	return router
}

func TestProductHandlers_ListPagination(t *testing.T) {
	items := make([]domain.Product, 10)
	for i := range items {
		items[i] = domain.Product{ID: fmt.Sprintf("p%02d", i+10), Slug: fmt.Sprintf("wallbox-%d", i+10), SortOrder: i + 10}
	}
	svc := &stubProductService{listResp: domain.ListResult[domain.Product]{Items: items, Total: 25}}
	router := newProductRouter(svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/products?page=2&limit=10&type=ac_charger", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Cache-Control"); got != "public, max-age=300, s-maxage=3600, stale-while-revalidate=86400" {
		t.Fatalf("unexpected cache header %q", got)
	}
	if svc.listFilter.Pagination.Page != 2 || svc.listFilter.Pagination.Limit != 10 || svc.listFilter.Type != "ac_charger" {
		t.Fatalf("unexpected filter %+v", svc.listFilter)
	}
	var body struct {
		Data       []productPayload `json:"data"`
		Pagination pagination.Meta  `json:"pagination"`
	}
	decodeJSON(t, rr, &body)
	if len(body.Data) != 10 || body.Data[0].SortOrder != 10 {
		t.Fatalf("unexpected items %+v", body.Data)
	}
	if body.Pagination.Page != 2 || body.Pagination.Total != 25 || body.Pagination.TotalPages != 3 {
		t.Fatalf("unexpected pagination %+v", body.Pagination)
	}
}

func TestProductHandlers_ListRejectsBadPagination(t *testing.T) {
	router := newProductRouter(&stubProductService{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/products?page=zero", nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var body errorBody
	decodeJSON(t, rr, &body)
	if body.Error != "invalid_pagination" {
		t.Fatalf("expected invalid_pagination, got %q", body.Error)
	}
}

func TestProductHandlers_WritesRequireCapability(t *testing.T) {
	svc := &stubProductService{}
	router := newProductRouter(svc)
	body := map[string]any{"slug": "wallbox", "type": "ac_charger", "translations": []map[string]string{{"locale": "cs", "name": "Wallbox"}}}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, newJSONRequest(t, http.MethodPost, "/products", body))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, asStaff(newJSONRequest(t, http.MethodPost, "/products", body), auth.RoleViewer))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for viewer, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, asStaff(newJSONRequest(t, http.MethodPost, "/products", body), auth.RoleEditor))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 for editor, got %d: %s", rr.Code, rr.Body.String())
	}
	if svc.createCmd.ActorID != "staff-editor" {
		t.Fatalf("expected actor staff-editor, got %q", svc.createCmd.ActorID)
	}
	if rr.Header().Get("Location") != "/api/products/prod_1" {
		t.Fatalf("unexpected location %q", rr.Header().Get("Location"))
	}
}

func TestProductHandlers_CompletenessVisibleToViewer(t *testing.T) {
	router := newProductRouter(&stubProductService{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, asStaff(httptest.NewRequest(http.MethodGet, "/products/prod_1/completeness", nil), auth.RoleViewer))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body struct {
		Data map[string]string `json:"data"`
	}
	decodeJSON(t, rr, &body)
	if body.Data["cs"] != string(formarray.StatusComplete) {
		t.Fatalf("unexpected completeness %v", body.Data)
	}
}

func newMemoryProductService(t *testing.T) services.ProductService {
	t.Helper()
	svc, err := services.NewProductService(services.ProductServiceDeps{
		Products:  memory.NewProductRepository(),
		Locales:   testResolver,
		Supported: []string{"cs", "en", "de"},
		Clock:     func() time.Time { return time.Date(2025, 5, 6, 9, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewProductService: %v", err)
	}
	return svc
}

func TestProductHandlers_SingleLocaleProductFallsBack(t *testing.T) {
	router := newProductRouter(newMemoryProductService(t))
	body := map[string]any{
		"slug":     "home-wallbox-22",
		"type":     "ac_charger",
		"power_kw": 22,
		"translations": []map[string]string{
			{"locale": "cs", "name": "Domácí wallbox"},
		},
		"specifications": []map[string]any{
			{"key": "power", "unit": "kW", "translations": []map[string]string{{"locale": "cs", "label": "Výkon", "value": "22"}}},
		},
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, asStaff(newJSONRequest(t, http.MethodPost, "/products", body), auth.RoleAdmin))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var created struct {
		Data productPayload `json:"data"`
	}
	decodeJSON(t, rr, &created)
	if created.Data.ID == "" {
		t.Fatal("expected generated product id")
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/products/"+created.Data.ID+"?locale=en", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var got struct {
		Data productPayload `json:"data"`
	}
	decodeJSON(t, rr, &got)
	meta := got.Data.TranslationMeta
	if meta == nil || meta.Requested != "en" || meta.Resolved != "cs" || !meta.FallbackUsed {
		t.Fatalf("unexpected translation meta %+v", meta)
	}
	if len(got.Data.Translations) != 1 || got.Data.Translations[0].Name != "Domácí wallbox" {
		t.Fatalf("expected the cs translation, got %+v", got.Data.Translations)
	}
	if len(got.Data.Specifications) != 1 || got.Data.Specifications[0].Translations[0].Value != "22" {
		t.Fatalf("expected narrowed specification, got %+v", got.Data.Specifications)
	}
}

func TestProductHandlers_CreateValidationFields(t *testing.T) {
	router := newProductRouter(newMemoryProductService(t))
	body := map[string]any{
		"slug":         "Not A Slug",
		"type":         "ac_charger",
		"translations": []map[string]string{{"locale": "cs", "name": "Wallbox"}},
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, asStaff(newJSONRequest(t, http.MethodPost, "/products", body), auth.RoleAdmin))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var resp errorBody
	decodeJSON(t, rr, &resp)
	if resp.Error != "invalid_request" || resp.Fields["slug"] == "" {
		t.Fatalf("expected slug field error, got %+v", resp)
	}
}

func TestProductHandlers_GetMissingProduct(t *testing.T) {
	router := newProductRouter(newMemoryProductService(t))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/products/missing", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestProductHandlers_UnknownFieldsRejected(t *testing.T) {
	router := newProductRouter(&stubProductService{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, asStaff(newJSONRequest(t, http.MethodPost, "/products", map[string]any{"slug": "x", "price": 10}), auth.RoleAdmin))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}
