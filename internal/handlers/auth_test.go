package handlers

import "testing"

// TestNormalizeName проверяет нормализацию имени пользователя.
func TestNormalizeName(t *testing.T) {
	if got := normalizeName(nil); got != nil {
		t.Fatalf("expected nil for nil input, got %v", *got)
	}

	blank := "   "
	if got := normalizeName(&blank); got != nil {
		t.Fatalf("expected nil for blank input, got %q", *got)
	}

	padded := "  Alex  "
	got := normalizeName(&padded)
	if got == nil || *got != "Alex" {
		t.Fatalf("expected trimmed name, got %v", got)
	}
}
