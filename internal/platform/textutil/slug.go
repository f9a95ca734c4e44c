package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify folds diacritics and lowercases value, joining runs of letters and
// digits with single hyphens. "Nabíjecí stanice 22 kW" becomes
// "nabijeci-stanice-22-kw".
func Slugify(value string) string {
	return fold(value, "-")
}

// SafeFileName slugifies the stem of a file name and keeps its extension.
// Directory components are dropped.
func SafeFileName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	stem, ext := name, ""
	if i := strings.LastIndex(name, "."); i > 0 {
		stem, ext = name[:i], fold(name[i+1:], "")
	}
	stem = fold(stem, "-")
	if stem == "" {
		return ""
	}
	if ext == "" {
		return stem
	}
	return stem + "." + ext
}

// IsSlug reports whether value is already in Slugify form.
func IsSlug(value string) bool {
	return value != "" && Slugify(value) == value
}

func fold(value, sep string) string {
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), value)
	if err != nil {
		stripped = value
	}
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(stripped) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
		default:
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteString(sep)
			pending = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
