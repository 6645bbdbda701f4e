package config

import "testing"

func TestGetEnvIntDefaults(t *testing.T) {
	t.Setenv("SOME_LIMIT", "")
	if got := getEnvInt("SOME_LIMIT", 7); got != 7 {
		t.Errorf("empty value should use default, got %d", got)
	}

	t.Setenv("SOME_LIMIT", "42")
	if got := getEnvInt("SOME_LIMIT", 7); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}

	// Garbage falls back to the default and is logged, not swallowed.
	t.Setenv("SOME_LIMIT", "ten")
	if got := getEnvInt("SOME_LIMIT", 7); got != 7 {
		t.Errorf("malformed value should use default, got %d", got)
	}
}

func TestParseAdminIDs(t *testing.T) {
	ids, err := parseAdminIDs(" 123, 456 ,")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != 123 || ids[1] != 456 {
		t.Errorf("unexpected ids %v", ids)
	}

	if _, err := parseAdminIDs("123,abc"); err == nil {
		t.Error("expected error for non-numeric id")
	}
}
