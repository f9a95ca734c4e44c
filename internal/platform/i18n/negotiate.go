// Package i18n negotiates the request locale from the hl query parameter,
// the site_locale cookie and Accept-Language.
package i18n

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/voltline/site/internal/domain"
	"github.com/voltline/site/internal/platform/requestctx"
)

const (
	QueryParam = "hl"
	CookieName = "site_locale"
	cookieTTL  = 365 * 24 * time.Hour
)

// Negotiator picks one of the supported site locales for a request.
type Negotiator struct {
	supported []string
	fallback  string
	matcher   language.Matcher
}

// NewNegotiator builds a matcher over supported. defaultLocale is moved to
// the front so it wins ties and unmatched headers.
func NewNegotiator(defaultLocale string, supported []string) *Negotiator {
	defaultLocale = domain.NormalizeLocale(defaultLocale)
	codes := []string{defaultLocale}
	for _, code := range supported {
		code = domain.NormalizeLocale(code)
		if code != "" && code != defaultLocale {
			codes = append(codes, code)
		}
	}
	tags := make([]language.Tag, 0, len(codes))
	for _, code := range codes {
		tags = append(tags, language.Make(code))
	}
	return &Negotiator{
		supported: codes,
		fallback:  defaultLocale,
		matcher:   language.NewMatcher(tags),
	}
}

func (n *Negotiator) Default() string { return n.fallback }

// Supported returns the locales with the default first.
func (n *Negotiator) Supported() []string {
	return append([]string(nil), n.supported...)
}

// Match returns code normalised when it is supported.
func (n *Negotiator) Match(code string) (string, bool) {
	code = domain.NormalizeLocale(code)
	for _, candidate := range n.supported {
		if candidate == code {
			return candidate, true
		}
	}
	return "", false
}

// FromAcceptLanguage maps an Accept-Language header onto a supported locale.
func (n *Negotiator) FromAcceptLanguage(header string) string {
	if strings.TrimSpace(header) == "" {
		return n.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return n.fallback
	}
	_, index, confidence := n.matcher.Match(tags...)
	if confidence == language.No {
		return n.fallback
	}
	return n.supported[index]
}

// Resolve applies the precedence hl, cookie, Accept-Language, default. The
// second result reports whether hl selected the locale.
func (n *Negotiator) Resolve(r *http.Request) (string, bool) {
	if code, ok := n.Match(r.URL.Query().Get(QueryParam)); ok {
		return code, true
	}
	if c, err := r.Cookie(CookieName); err == nil {
		if code, ok := n.Match(c.Value); ok {
			return code, false
		}
	}
	return n.FromAcceptLanguage(r.Header.Get("Accept-Language")), false
}

// Middleware stores the negotiated locale in the request context, persists
// explicit hl choices in a cookie and sets Content-Language.
func (n *Negotiator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code, explicit := n.Resolve(r)
		if explicit {
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    code,
				Path:     "/",
				MaxAge:   int(cookieTTL.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		w.Header().Set("Content-Language", code)
		w.Header().Add("Vary", "Accept-Language")
		next.ServeHTTP(w, r.WithContext(requestctx.WithLocale(r.Context(), code)))
	})
}
