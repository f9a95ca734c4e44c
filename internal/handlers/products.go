package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/voltline/site/internal/locale"
	"github.com/voltline/site/internal/platform/auth"
	"github.com/voltline/site/internal/platform/httpx"
	"github.com/voltline/site/internal/platform/pagination"
	"github.com/voltline/site/internal/services"
)

const maxProductRequestBody = 512 * 1024

// ProductHandlers serves the product list/detail API and its admin writes.
type ProductHandlers struct {
	authn    *auth.Authenticator
	products services.ProductService
	resolver locale.Resolver
	cache    CachePolicy
}

func NewProductHandlers(authn *auth.Authenticator, products services.ProductService, resolver locale.Resolver, cache CachePolicy) *ProductHandlers {
	return &ProductHandlers{authn: authn, products: products, resolver: resolver, cache: cache}
}

// Routes registers product endpoints.
func (h *ProductHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Route("/products", func(rt chi.Router) {
		rt.Get("/", h.list)
		rt.Get("/{productID}", h.get)
		rt.With(staffOnly(h.authn, auth.CapContentRead)...).Get("/{productID}/completeness", h.completeness)
		rt.With(staffOnly(h.authn, auth.CapContentWrite)...).Post("/", h.create)
		rt.With(staffOnly(h.authn, auth.CapContentWrite)...).Put("/{productID}", h.update)
		rt.With(staffOnly(h.authn, auth.CapContentWrite)...).Post("/{productID}/reorder", h.reorder)
		rt.With(staffOnly(h.authn, auth.CapContentDelete)...).Delete("/{productID}", h.delete)
	})
}

func (h *ProductHandlers) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params, ok := parsePage(ctx, w, r, pagination.DefaultLimit)
	if !ok {
		return
	}
	active, err := optionalBool(r, "active")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "active must be true or false", http.StatusBadRequest))
		return
	}
	result, err := h.products.ListProducts(ctx, services.ProductListFilter{
		Type:       r.URL.Query().Get("type"),
		Active:     active,
		Pagination: params,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	items := make([]productPayload, 0, len(result.Items))
	for _, product := range result.Items {
		items = append(items, newProductPayload(product, nil, ""))
	}
	h.cache.apply(w)
	httpx.WritePage(w, items, params.Meta(result.Total))
}

func (h *ProductHandlers) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	product, err := h.products.GetProduct(ctx, chi.URLParam(r, "productID"))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	var resolver *locale.Resolver
	requested := strings.TrimSpace(r.URL.Query().Get("locale"))
	if requested != "" {
		resolver = &h.resolver
	}
	h.cache.apply(w)
	httpx.WriteData(w, http.StatusOK, newProductPayload(product, resolver, requested))
}

func (h *ProductHandlers) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload productPayload
	if err := httpx.DecodeJSON(r, maxProductRequestBody, &payload); err != nil {
		writeDecodeError(ctx, w, err)
		return
	}
	product, err := h.products.CreateProduct(ctx, services.CreateProductCommand{
		Product: payload.toDomain(),
		ActorID: actorID(r),
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	w.Header().Set("Location", "/api/products/"+product.ID)
	httpx.WriteData(w, http.StatusCreated, newProductPayload(product, nil, ""))
}

func (h *ProductHandlers) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload productPayload
	if err := httpx.DecodeJSON(r, maxProductRequestBody, &payload); err != nil {
		writeDecodeError(ctx, w, err)
		return
	}
	payload.ID = chi.URLParam(r, "productID")
	product, err := h.products.UpdateProduct(ctx, services.UpdateProductCommand{
		Product: payload.toDomain(),
		ActorID: actorID(r),
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, newProductPayload(product, nil, ""))
}

type reorderRequest struct {
	Field    string `json:"field,omitempty"`
	ActiveID string `json:"active_id"`
	OverID   string `json:"over_id"`
}

func (h *ProductHandlers) reorder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req reorderRequest
	if err := httpx.DecodeJSON(r, 4*1024, &req); err != nil {
		writeDecodeError(ctx, w, err)
		return
	}
	product, err := h.products.ReorderProduct(ctx, services.ReorderProductCommand{
		ProductID: chi.URLParam(r, "productID"),
		Field:     req.Field,
		ActiveID:  req.ActiveID,
		OverID:    req.OverID,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, newProductPayload(product, nil, ""))
}

func (h *ProductHandlers) delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.products.DeleteProduct(ctx, chi.URLParam(r, "productID")); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandlers) completeness(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	statuses, err := h.products.Completeness(ctx, chi.URLParam(r, "productID"))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, statuses)
}
