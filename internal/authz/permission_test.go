package authz

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		raw     string
		want    Permission
		wantErr bool
	}{
		{"users:read", PermUsersRead, false},
		{" tenant:admin ", PermTenantAdmin, false},
		{"users:*", "", true},
		{"users:readx", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := Parse(tc.raw)
		if tc.wantErr {
			if !errors.Is(err, ErrUnknownPermission) {
				t.Fatalf("Parse(%q): expected ErrUnknownPermission, got %v", tc.raw, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("Parse(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestMatches(t *testing.T) {
	if !Matches(PermUsersRead, PermUsersRead) {
		t.Fatal("exact match failed")
	}
	if !Matches(PermUsersAll, PermUsersDelete) {
		t.Fatal("wildcard grant must match same-prefix requirement")
	}
	if Matches(PermUsersAll, PermItemsRead) {
		t.Fatal("wildcard grant must not match a different prefix")
	}
	// One-directional: a wildcard on the required side never matches.
	if Matches(PermUsersRead, PermUsersAll) {
		t.Fatal("required-side wildcard must not match")
	}
}

func TestAllExcludesWildcards(t *testing.T) {
	for _, p := range All() {
		if p.IsWildcard() {
			t.Fatalf("catalog must not contain wildcard %s", p)
		}
	}
	if len(All()) != 8 {
		t.Fatalf("expected 8 requirable permissions, got %d", len(All()))
	}
}
