package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/voltline/site/internal/platform/httpx"
	"github.com/voltline/site/internal/platform/pagination"
	"github.com/voltline/site/internal/platform/requestctx"
	"github.com/voltline/site/internal/services"
)

var (
	invalidInputErrors = []error{
		services.ErrProductInvalid,
		services.ErrCatalogInvalid,
		services.ErrSectionInvalid,
		services.ErrMediaInvalid,
		services.ErrContactInvalid,
	}
	notFoundErrors = []error{
		services.ErrProductNotFound,
		services.ErrCategoryNotFound,
		services.ErrFAQNotFound,
		services.ErrArticleNotFound,
		services.ErrSectionNotFound,
		services.ErrPageNotFound,
		services.ErrMediaNotFound,
	}
	conflictErrors = []error{
		services.ErrProductConflict,
		services.ErrArticleConflict,
	}
)

// writeServiceError maps a service error onto the JSON error envelope.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case isAny(err, invalidInputErrors):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest).WithFields(services.FieldErrors(err)))
	case isAny(err, notFoundErrors):
		httpx.WriteError(ctx, w, httpx.NewError("not_found", err.Error(), http.StatusNotFound))
	case isAny(err, conflictErrors):
		httpx.WriteError(ctx, w, httpx.NewError("conflict", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrContactRateLimited):
		w.Header().Set("Retry-After", "60")
		httpx.WriteError(ctx, w, httpx.NewError("rate_limited", "too many submissions, try again later", http.StatusTooManyRequests))
	case errors.Is(err, context.DeadlineExceeded):
		httpx.WriteError(ctx, w, httpx.NewError("timeout", "request timed out", http.StatusGatewayTimeout))
	case errors.Is(err, services.ErrProductCreate):
		requestctx.Logger(ctx).Error("product create failed", zap.Error(err))
		httpx.WriteError(ctx, w, httpx.NewError("product_create_failed", "product could not be created", http.StatusInternalServerError))
	default:
		requestctx.Logger(ctx).Error("request failed", zap.Error(err))
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "internal server error", http.StatusInternalServerError))
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func writeDecodeError(ctx context.Context, w http.ResponseWriter, err error) {
	httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
}

func parsePage(ctx context.Context, w http.ResponseWriter, r *http.Request, defaultLimit int) (pagination.Params, bool) {
	params, err := pagination.Parse(r.URL.Query(), pagination.Options{DefaultLimit: defaultLimit, MaxLimit: pagination.MaxLimit})
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_pagination", err.Error(), http.StatusBadRequest))
		return pagination.Params{}, false
	}
	return params, true
}
