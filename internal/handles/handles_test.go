package handles

import (
	"strings"
	"testing"
)

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()
	h1 := r.Create([]byte("one"), "image/png")
	h2 := r.Create([]byte("two"), "image/gif")

	if h1 == h2 {
		t.Fatalf("expected distinct handles")
	}
	if !strings.HasPrefix(string(h1), "blob:") {
		t.Fatalf("unexpected handle %q", h1)
	}
	if b, ok := r.Open(h1); !ok || string(b) != "one" {
		t.Fatalf("Open(h1) = %q, %v", b, ok)
	}
	if r.MIME(h2) != "image/gif" {
		t.Fatalf("MIME(h2) = %q", r.MIME(h2))
	}
	if r.Live() != 2 {
		t.Fatalf("Live = %d", r.Live())
	}

	r.Revoke(h1)
	r.Revoke(h1)
	r.Revoke("")
	if _, ok := r.Open(h1); ok {
		t.Fatalf("expected h1 revoked")
	}
	if r.Live() != 1 {
		t.Fatalf("Live = %d after revoke", r.Live())
	}
}
