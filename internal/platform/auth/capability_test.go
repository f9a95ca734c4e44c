package auth

import "testing"

func TestHasCapabilityMatrix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		roles      []string
		capability Capability
		want       bool
	}{
		{name: "admin holds defined capability", roles: []string{"admin"}, capability: CapContactRead, want: true},
		{name: "admin denied undefined capability", roles: []string{"admin"}, capability: Capability("made.up"), want: false},
		{name: "editor writes content", roles: []string{"editor"}, capability: CapContentWrite, want: true},
		{name: "editor deletes content", roles: []string{" Editor "}, capability: CapContentDelete, want: true},
		{name: "editor cannot read inbox", roles: []string{"editor"}, capability: CapContactRead, want: false},
		{name: "viewer reads content", roles: []string{"viewer"}, capability: CapContentRead, want: true},
		{name: "viewer cannot write", roles: []string{"viewer"}, capability: CapContentWrite, want: false},
		{name: "no roles", roles: nil, capability: CapContentRead, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := HasCapability(tc.roles, tc.capability); got != tc.want {
				t.Fatalf("HasCapability(%v, %q) = %v, want %v", tc.roles, tc.capability, got, tc.want)
			}
		})
	}
}
