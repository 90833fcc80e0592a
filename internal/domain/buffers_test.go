package domain

import (
	"strings"
	"testing"
)

func TestPreviewShortStringUnchanged(t *testing.T) {
	if got := Preview("short"); got != "short" {
		t.Fatalf("Preview = %q", got)
	}
	exact := strings.Repeat("a", PreviewLimit)
	if got := Preview(exact); got != exact {
		t.Fatalf("string at the limit should pass through, got %d chars", len(got))
	}
}

func TestPreviewNeverExceedsLimit(t *testing.T) {
	for _, n := range []int{PreviewLimit + 1, 1000, 10_000} {
		got := Preview(strings.Repeat("a", n))
		if len(got) > PreviewLimit {
			t.Fatalf("Preview of %d chars is %d chars, limit is %d", n, len(got), PreviewLimit)
		}
		if !strings.HasSuffix(got, "...") {
			t.Fatalf("truncated preview missing ellipsis: %q", got)
		}
	}
}

func TestPreviewCutsOnRuneBoundary(t *testing.T) {
	s := strings.Repeat("é", PreviewLimit)
	got := Preview(s)
	if len(got) > PreviewLimit {
		t.Fatalf("preview is %d chars, limit is %d", len(got), PreviewLimit)
	}
	trimmed := strings.TrimSuffix(got, "...")
	for _, r := range trimmed {
		if r != 'é' {
			t.Fatalf("preview split a rune: %q", trimmed)
		}
	}
}

func TestCountLines(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"one line", 1},
		{"one line\n", 1},
		{"a\nb\nc", 3},
		{"a\nb\nc\n", 3},
	}
	for _, tc := range cases {
		if got := CountLines(tc.in); got != tc.want {
			t.Errorf("CountLines(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
