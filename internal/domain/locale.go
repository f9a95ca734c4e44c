package domain

import "strings"

// Site locales. The configured default is usually LocaleCS.
const (
	LocaleCS = "cs"
	LocaleEN = "en"
	LocaleDE = "de"
)

// NormalizeLocale lowercases a locale code and keeps only the primary subtag,
// so "de-AT" and "DE" both become "de".
func NormalizeLocale(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if primary, _, found := strings.Cut(code, "-"); found {
		return primary
	}
	if primary, _, found := strings.Cut(code, "_"); found {
		return primary
	}
	return code
}
