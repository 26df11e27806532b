package epub

import "testing"

func TestResolveHref(t *testing.T) {
	tests := []struct {
		name     string
		basePath string
		ref      string
		want     string
	}{
		{"parent directory", "Text/chapter1.html", "../Images/pic.jpg", "Images/pic.jpg"},
		{"no directory prefix", "chapter1.html", "pic.jpg", "pic.jpg"},
		{"sibling file", "Text/chapter1.html", "pic.jpg", "Text/pic.jpg"},
		{"current directory segment", "Text/chapter1.html", "./pic.jpg", "Text/pic.jpg"},
		{"nested parent", "a/b/c/doc.html", "../../img/x.png", "a/img/x.png"},
		{"climbs above root is clamped", "chapter1.html", "../../pic.jpg", "pic.jpg"},
		{"deep climb clamped", "Text/doc.html", "../../../Images/pic.jpg", "Images/pic.jpg"},
		{"package-absolute reference", "Text/chapter1.html", "/Images/pic.jpg", "Images/pic.jpg"},
		{"percent-encoded reference", "Text/chapter1.html", "../Images/my%20pic.jpg", "Images/my pic.jpg"},
		{"empty reference", "Text/chapter1.html", "", "Text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveHref(tt.basePath, tt.ref)
			if got != tt.want {
				t.Errorf("ResolveHref(%q, %q) = %q, want %q", tt.basePath, tt.ref, got, tt.want)
			}
		})
	}
}

func TestResolveHrefDeterministic(t *testing.T) {
	first := ResolveHref("Text/chapter1.html", "../Images/pic.jpg")
	for i := 0; i < 10; i++ {
		if got := ResolveHref("Text/chapter1.html", "../Images/pic.jpg"); got != first {
			t.Fatalf("resolution not deterministic: %q vs %q", got, first)
		}
	}
}

func TestResolveHrefIdempotent(t *testing.T) {
	// A path already at the package root resolves to itself.
	resolved := ResolveHref("chapter1.html", "pic.jpg")
	if got := ResolveHref(resolved, resolved); got != resolved {
		t.Errorf("ResolveHref(%q, %q) = %q, want %q", resolved, resolved, got, resolved)
	}
}
