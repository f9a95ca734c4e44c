package textutil

import "testing"

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Nabíjecí stanice 22 kW": "nabijeci-stanice-22-kw",
		"  Wallbox -- Home ":     "wallbox-home",
		"Übersicht Preise":       "ubersicht-preise",
		"":                       "",
		"***":                    "",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSafeFileName(t *testing.T) {
	cases := map[string]string{
		"Fotka nabíječky.JPG":     "fotka-nabijecky.jpg",
		`C:\Users\me\plan v2.pdf`: "plan-v2.pdf",
		"../../etc/passwd":        "passwd",
		".env":                    "env",
		"***.png":                 "",
		"README":                  "readme",
	}
	for in, want := range cases {
		if got := SafeFileName(in); got != want {
			t.Errorf("SafeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsSlug(t *testing.T) {
	if !IsSlug("ac-wallbox-22") {
		t.Fatalf("expected slug")
	}
	for _, value := range []string{"", "AC", "a b", "a--b", "-a"} {
		if IsSlug(value) {
			t.Fatalf("expected %q to be rejected", value)
		}
	}
}
