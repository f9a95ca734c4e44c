package textutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCompactStringMap(t *testing.T) {
	got := CompactStringMap(map[string]string{
		" locale ":  " cs ",
		"messageId": "01HX",
		"productId": " ",
		" ":         "ignored",
	})
	want := map[string]string{
		"locale":    "cs",
		"messageId": "01HX",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected map (-want +got):\n%s", diff)
	}

	if CompactStringMap(nil) != nil || CompactStringMap(map[string]string{"productId": ""}) != nil {
		t.Fatalf("expected nil when every entry is dropped")
	}
}
