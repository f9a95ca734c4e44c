package handlers

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/voltline/site/internal/platform/auth"
)

// staffOnly authenticates staff and checks capability. Without an
// authenticator the identity must already be on the context.
func staffOnly(authn *auth.Authenticator, capability auth.Capability) []func(http.Handler) http.Handler {
	var mws []func(http.Handler) http.Handler
	if authn != nil {
		mws = append(mws, authn.RequireFirebaseAuth(auth.RoleAdmin, auth.RoleEditor, auth.RoleViewer))
	}
	return append(mws, auth.RequireCapability(capability))
}

func actorID(r *http.Request) string {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		return ""
	}
	return strings.TrimSpace(identity.UID)
}

// optionalBool parses a boolean query value; absent means nil.
func optionalBool(r *http.Request, key string) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// forwardedClientIP sets RemoteAddr to the X-Forwarded-For entry written by
// the outermost trusted proxy, counting hops from the right. Entries further
// left are client supplied and never used.
func forwardedClientIP(hops int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if hops <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := forwardedHop(r.Header.Values("X-Forwarded-For"), hops); ip != "" {
				r.RemoteAddr = ip
			}
			next.ServeHTTP(w, r)
		})
	}
}

func forwardedHop(headers []string, hops int) string {
	var entries []string
	for _, header := range headers {
		for _, part := range strings.Split(header, ",") {
			if part = strings.TrimSpace(part); part != "" {
				entries = append(entries, part)
			}
		}
	}
	if len(entries) < hops {
		return ""
	}
	ip := net.ParseIP(entries[len(entries)-hops])
	if ip == nil {
		return ""
	}
	return ip.String()
}

func clientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
