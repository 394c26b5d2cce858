package util

import (
	"errors"
	"testing"
)

func TestHashKey(t *testing.T) {
	id := "owner-12345"
	got := HashKey(id)
	if got != HashKey(id) {
		t.Fatalf("expected stable hash, got %s", got)
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("hash contains non-hex character: %c", ch)
		}
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(got))
	}
	if got != HashBytes([]byte(id)) {
		t.Fatalf("HashKey and HashBytes disagree")
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "resume.pdf", want: "resume.pdf"},
		{in: "  my cv.docx ", want: "my cv.docx"},
		{in: "../../etc/passwd", want: "passwd"},
		{in: `C:\Users\jane\cv.pdf`, want: "cv.pdf"},
		{in: "cv\x00.pdf", want: "cv.pdf"},
		{in: "resume..v2.pdf", want: "resume..v2.pdf"},
	}
	for _, tt := range tests {
		got, err := SanitizeFileName(tt.in)
		if err != nil {
			t.Fatalf("SanitizeFileName(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "   ", "..", "dir/", "a/.."} {
		if _, err := SanitizeFileName(bad); !errors.Is(err, ErrInvalidFileName) {
			t.Fatalf("SanitizeFileName(%q) err = %v, want ErrInvalidFileName", bad, err)
		}
	}
}
