package textutil

import "strings"

// CompactStringMap trims keys and values and keeps only entries where both
// are non-empty. It returns nil when nothing survives, which Pub/Sub accepts
// as "no attributes".
func CompactStringMap(values map[string]string) map[string]string {
	var out map[string]string
	for key, value := range values {
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		if out == nil {
			out = make(map[string]string, len(values))
		}
		out[key] = value
	}
	return out
}
