package formarray

import (
	"strings"

	"github.com/voltline/site/internal/domain"
	"github.com/voltline/site/internal/locale"
)

// Status summarises how much of one locale's required copy is filled in.
type Status string

const (
	StatusEmpty    Status = "empty"
	StatusPartial  Status = "partial"
	StatusComplete Status = "complete"
)

// Completeness derives the status of code from translations. A missing
// translation counts as empty. Codes match the way locale.Resolve matches
// them, so a stored "cs-CZ" counts for "cs".
func Completeness[T locale.Translation](translations []T, code string, required ...func(T) string) Status {
	code = domain.NormalizeLocale(code)
	for _, tr := range translations {
		if domain.NormalizeLocale(tr.LocaleCode()) != code {
			continue
		}
		filled := 0
		for _, field := range required {
			if strings.TrimSpace(field(tr)) != "" {
				filled++
			}
		}
		switch {
		case len(required) == 0 || filled == len(required):
			return StatusComplete
		case filled == 0:
			return StatusEmpty
		default:
			return StatusPartial
		}
	}
	return StatusEmpty
}

// LocaleStatuses computes Completeness for every code.
func LocaleStatuses[T locale.Translation](translations []T, codes []string, required ...func(T) string) map[string]Status {
	out := make(map[string]Status, len(codes))
	for _, code := range codes {
		out[code] = Completeness(translations, code, required...)
	}
	return out
}
