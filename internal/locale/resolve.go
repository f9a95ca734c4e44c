// Package locale picks the translation to show for a requested locale.
package locale

import (
	"fmt"
	"strings"

	"github.com/voltline/site/internal/domain"
)

// Translation is implemented by every per-locale record.
type Translation interface {
	LocaleCode() string
}

// Policy decides which translation stands in when the requested one is missing.
type Policy int

const (
	// PolicyDefaultLocale falls back to the configured default locale and
	// then to the first translation.
	PolicyDefaultLocale Policy = iota
	// PolicyFirst falls back straight to the first translation in storage order.
	PolicyFirst
)

func (p Policy) String() string {
	if p == PolicyFirst {
		return "first"
	}
	return "default"
}

// ParsePolicy maps the config value onto a Policy.
func ParsePolicy(value string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "default":
		return PolicyDefaultLocale, nil
	case "first":
		return PolicyFirst, nil
	default:
		return PolicyDefaultLocale, fmt.Errorf("locale: unknown fallback policy %q", value)
	}
}

// Meta describes how a translation was chosen.
type Meta struct {
	Requested    string   `json:"requested"`
	Resolved     string   `json:"resolved"`
	Available    []string `json:"available"`
	FallbackUsed bool     `json:"fallback_used"`
}

// Resolver holds the site-wide fallback settings.
type Resolver struct {
	defaultLocale string
	policy        Policy
}

func NewResolver(defaultLocale string, policy Policy) Resolver {
	return Resolver{defaultLocale: domain.NormalizeLocale(defaultLocale), policy: policy}
}

func (r Resolver) DefaultLocale() string { return r.defaultLocale }

func (r Resolver) Policy() Policy { return r.policy }

// Resolve returns the translation for requested following the resolver's
// policy. ok is false only when items is empty.
func Resolve[T Translation](r Resolver, items []T, requested string) (T, Meta, bool) {
	requested = domain.NormalizeLocale(requested)
	meta := Meta{Requested: requested, Available: Locales(items)}

	var zero T
	if len(items) == 0 {
		return zero, meta, false
	}

	if idx := indexOf(items, requested); idx >= 0 {
		meta.Resolved = requested
		return items[idx], meta, true
	}

	meta.FallbackUsed = true
	if r.policy == PolicyDefaultLocale && r.defaultLocale != "" {
		if idx := indexOf(items, r.defaultLocale); idx >= 0 {
			meta.Resolved = r.defaultLocale
			return items[idx], meta, true
		}
	}
	meta.Resolved = domain.NormalizeLocale(items[0].LocaleCode())
	return items[0], meta, true
}

// Only returns the single resolved translation as a slice, or nil.
func Only[T Translation](r Resolver, items []T, requested string) []T {
	chosen, _, ok := Resolve(r, items, requested)
	if !ok {
		return nil
	}
	return []T{chosen}
}

// Locales lists the locale codes present in items in storage order.
func Locales[T Translation](items []T) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, domain.NormalizeLocale(item.LocaleCode()))
	}
	return out
}

// Has reports whether items carries a translation for code.
func Has[T Translation](items []T, code string) bool {
	return indexOf(items, domain.NormalizeLocale(code)) >= 0
}

func indexOf[T Translation](items []T, code string) int {
	if code == "" {
		return -1
	}
	for i, item := range items {
		if domain.NormalizeLocale(item.LocaleCode()) == code {
			return i
		}
	}
	return -1
}
