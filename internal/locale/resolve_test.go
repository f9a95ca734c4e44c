package locale

import (
	"testing"

	"github.com/voltline/site/internal/domain"
)

func translations(codes ...string) []domain.SectionTranslation {
	out := make([]domain.SectionTranslation, 0, len(codes))
	for _, code := range codes {
		out = append(out, domain.SectionTranslation{Locale: code, Heading: "heading-" + code})
	}
	return out
}

func TestResolveExactMatch(t *testing.T) {
	r := NewResolver("cs", PolicyDefaultLocale)
	got, meta, ok := Resolve(r, translations("de", "en", "cs"), "EN")
	if !ok || got.Locale != "en" {
		t.Fatalf("expected en translation, got %+v ok=%v", got, ok)
	}
	if meta.FallbackUsed || meta.Resolved != "en" || meta.Requested != "en" {
		t.Fatalf("unexpected meta %+v", meta)
	}
}

func TestResolveFirstPolicyFallsBackToIndexZero(t *testing.T) {
	r := NewResolver("cs", PolicyFirst)
	items := translations("de", "cs")

	got, meta, ok := Resolve(r, items, "en")
	if !ok {
		t.Fatalf("expected a translation")
	}
	if got != items[0] {
		t.Fatalf("expected translations[0], got %+v", got)
	}
	if !meta.FallbackUsed || meta.Resolved != "de" {
		t.Fatalf("unexpected meta %+v", meta)
	}
}

func TestResolveDefaultPolicyPrefersDefaultLocale(t *testing.T) {
	r := NewResolver("cs", PolicyDefaultLocale)

	got, meta, _ := Resolve(r, translations("de", "cs"), "en")
	if got.Locale != "cs" || meta.Resolved != "cs" || !meta.FallbackUsed {
		t.Fatalf("expected default locale cs, got %+v meta %+v", got, meta)
	}

	items := translations("de", "en")
	got, _, _ = Resolve(r, items, "pl")
	if got != items[0] {
		t.Fatalf("expected translations[0] when default is also missing, got %+v", got)
	}
}

func TestResolveEmpty(t *testing.T) {
	r := NewResolver("cs", PolicyDefaultLocale)
	if _, meta, ok := Resolve(r, []domain.SectionTranslation(nil), "cs"); ok || len(meta.Available) != 0 {
		t.Fatalf("expected no resolution for empty translations, meta %+v", meta)
	}
	if only := Only(r, []domain.SectionTranslation{}, "cs"); only != nil {
		t.Fatalf("expected nil, got %v", only)
	}
}

func TestParsePolicy(t *testing.T) {
	for input, want := range map[string]Policy{"": PolicyDefaultLocale, "default": PolicyDefaultLocale, " First ": PolicyFirst} {
		got, err := ParsePolicy(input)
		if err != nil || got != want {
			t.Fatalf("ParsePolicy(%q) = %v, %v", input, got, err)
		}
	}
	if _, err := ParsePolicy("nearest"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
