package observability

import (
	"strings"
	"unicode"
)

// Rune limits for values copied from requests into log fields.
const (
	routeLimit  = 180
	methodLimit = 10
	idLimit     = 64
)

// clip drops control characters and keeps at most limit runes.
func clip(value string, limit int) string {
	var b strings.Builder
	kept := 0
	for _, r := range value {
		if unicode.IsControl(r) {
			continue
		}
		if kept == limit {
			break
		}
		b.WriteRune(r)
		kept++
	}
	return b.String()
}

func SanitizeRoute(route string) string {
	if route = clip(route, routeLimit); route == "" {
		return "/"
	}
	return route
}

func SanitizeMethod(method string) string {
	return strings.ToUpper(clip(method, methodLimit))
}

// SanitizeUserID limits identifiers written to logs.
func SanitizeUserID(uid string) string {
	return clip(uid, idLimit)
}
