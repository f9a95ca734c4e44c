package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/voltline/site/internal/platform/requestctx"
)

func newNegotiator() *Negotiator {
	return NewNegotiator("cs", []string{"en", "cs", "de"})
}

func TestFromAcceptLanguage(t *testing.T) {
	n := newNegotiator()
	cases := map[string]string{
		"":                     "cs",
		"en-GB,en;q=0.9":       "en",
		"de-AT":                "de",
		"fr-FR,fr;q=0.9":       "cs",
		"cs-CZ,en;q=0.5":       "cs",
		"not a header;;;q=abc": "cs",
	}
	for header, want := range cases {
		if got := n.FromAcceptLanguage(header); got != want {
			t.Errorf("FromAcceptLanguage(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestSupportedPutsDefaultFirst(t *testing.T) {
	got := newNegotiator().Supported()
	if len(got) != 3 || got[0] != "cs" || got[1] != "en" || got[2] != "de" {
		t.Fatalf("unexpected supported list %v", got)
	}
}

func TestMiddlewarePrecedence(t *testing.T) {
	n := newNegotiator()

	var seen string
	h := n.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestctx.Locale(r.Context())
	}))

	t.Run("hl wins and is persisted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?hl=DE", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "en"})
		req.Header.Set("Accept-Language", "en")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if seen != "de" {
			t.Fatalf("expected de, got %q", seen)
		}
		if rec.Header().Get("Content-Language") != "de" {
			t.Fatalf("expected Content-Language de, got %q", rec.Header().Get("Content-Language"))
		}
		cookies := rec.Result().Cookies()
		if len(cookies) != 1 || cookies[0].Name != CookieName || cookies[0].Value != "de" {
			t.Fatalf("expected locale cookie, got %v", cookies)
		}
	})

	t.Run("cookie beats header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "en"})
		req.Header.Set("Accept-Language", "de")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if seen != "en" {
			t.Fatalf("expected en, got %q", seen)
		}
		if len(rec.Result().Cookies()) != 0 {
			t.Fatalf("cookie should only be set for explicit hl")
		}
	})

	t.Run("unsupported hl and cookie fall through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?hl=ja", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "xx"})
		req.Header.Set("Accept-Language", "de-DE")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if seen != "de" {
			t.Fatalf("expected de, got %q", seen)
		}
	})
}
