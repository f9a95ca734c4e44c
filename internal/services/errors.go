package services

import (
	"errors"
	"fmt"
	"maps"
	"sort"
	"strings"
)

var (
	ErrProductInvalid     = errors.New("product: invalid input")
	ErrProductNotFound    = errors.New("product: not found")
	ErrProductConflict    = errors.New("product: slug already in use")
	ErrProductCreate      = errors.New("product: create failed")
	ErrCategoryNotFound   = errors.New("category: not found")
	ErrFAQNotFound        = errors.New("faq: not found")
	ErrCatalogInvalid     = errors.New("catalog: invalid input")
	ErrArticleNotFound    = errors.New("article: not found")
	ErrArticleConflict    = errors.New("article: slug already in use")
	ErrSectionInvalid     = errors.New("section: invalid input")
	ErrSectionNotFound    = errors.New("section: not found")
	ErrPageNotFound       = errors.New("page: not found")
	ErrMediaInvalid       = errors.New("media: invalid input")
	ErrMediaNotFound      = errors.New("media: not found")
	ErrContactInvalid     = errors.New("contact: invalid input")
	ErrContactRateLimited = errors.New("contact: too many submissions")
)

// ValidationError carries per-field messages next to a sentinel so handlers
// can render inline errors.
type ValidationError struct {
	Kind   error
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", key, e.Fields[key]))
	}
	return fmt.Sprintf("%v (%s)", e.Kind, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return e.Kind }

// FieldErrors returns a copy of the field messages of err, or nil.
func FieldErrors(err error) map[string]string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return maps.Clone(verr.Fields)
	}
	return nil
}

type fieldErrors map[string]string

func (f fieldErrors) add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

func (f fieldErrors) err(kind error) error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Kind: kind, Fields: f}
}
