package embed

import "testing"

func TestTruncate_ShorterThanMaxUnchanged(t *testing.T) {
	text := "hello world"
	if got := Truncate(text, 2048); got != text {
		t.Errorf("Truncate should not modify short text, got %q", got)
	}
}

func TestTruncate_CutsOnRuneBoundary(t *testing.T) {
	text := "日本語のテキスト"
	got := Truncate(text, 3)
	if len([]rune(got)) != 3 {
		t.Errorf("expected 3 runes, got %d (%q)", len([]rune(got)), got)
	}
}

func TestTruncate_DefaultsWhenMaxNonPositive(t *testing.T) {
	text := "short"
	if got := Truncate(text, 0); got != text {
		t.Errorf("Truncate with maxChars<=0 should fall back to MaxEmbedChars, got %q", got)
	}
}
