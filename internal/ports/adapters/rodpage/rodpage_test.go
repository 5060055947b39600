package rodpage

import (
	"context"
	"testing"
)

func TestCollapseLines(t *testing.T) {
	tests := map[string]string{
		"":                                 "",
		"  one  \n two ":                   "one\ntwo",
		"para one\n\n\n\n  para   two  \n": "para one\n\npara two",
		"\n\n  lead\r\n\r\ntrail\n\n":      "lead\n\ntrail",
	}
	for in, want := range tests {
		if got := collapseLines(in); got != want {
			t.Fatalf("collapseLines(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCheckURL(t *testing.T) {
	tests := []struct {
		ref     string
		wantErr bool
	}{
		{"https://example.com/post", false},
		{"http://localhost:8080/a", false},
		{"ftp://example.com", true},
		{"/local/file.md", true},
		{"https://", true},
	}
	for _, tt := range tests {
		err := checkURL(tt.ref)
		if tt.wantErr != (err != nil) {
			t.Fatalf("checkURL(%q) err=%v, wantErr=%v", tt.ref, err, tt.wantErr)
		}
	}
}

func TestFetch_RejectsNonURLWithoutLaunching(t *testing.T) {
	if _, err := New("").Fetch(context.Background(), "notes.md"); err == nil {
		t.Fatalf("expected error for non-url ref")
	}
}
