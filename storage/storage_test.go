package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestMemoryStorePutAndRemove(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	url, err := s.Put(ctx, strings.NewReader("payload"), 7, "story-img-1.jpg", "image/jpeg")
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if !s.Exists(url) {
		t.Fatal("object should exist after Put")
	}

	data, ok := s.Object(url)
	if !ok || string(data) != "payload" {
		t.Errorf("Object = %q, %v", data, ok)
	}

	if err := s.Remove(ctx, url); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if s.Exists(url) {
		t.Error("object should be gone after Remove")
	}

	// Removing again is idempotent
	if err := s.Remove(ctx, url); err != nil {
		t.Errorf("second Remove should be a no-op, got %v", err)
	}
	if s.Removed() != 1 {
		t.Errorf("Removed = %d, want 1", s.Removed())
	}
}

func TestSplitObjectURL(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{"plain", "http://localhost:9000/stories/story-img-1.jpg", "stories", "story-img-1.jpg", false},
		{"nested object", "https://cdn.example.com/stories/imgs/a.png", "stories", "imgs/a.png", false},
		{"percent-encoded", "http://localhost:9000/stories/my%20pic.jpg", "stories", "my pic.jpg", false},
		{"no object", "http://localhost:9000/stories/", "", "", true},
		{"no bucket", "http://localhost:9000/", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, object, err := splitObjectURL(tt.url)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidURL) {
					t.Errorf("err = %v, want ErrInvalidURL", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("splitObjectURL failed: %v", err)
			}
			if bucket != tt.wantBucket || object != tt.wantObject {
				t.Errorf("got (%q, %q), want (%q, %q)", bucket, object, tt.wantBucket, tt.wantObject)
			}
		})
	}
}
