package config

import "testing"

func TestGetString(t *testing.T) {
	t.Setenv("REPORTING_TEST_STRING", "set")
	if got := GetString("REPORTING_TEST_STRING", "fallback"); got != "set" {
		t.Fatalf("GetString = %q, want %q", got, "set")
	}
	if got := GetString("REPORTING_TEST_ABSENT", "fallback"); got != "fallback" {
		t.Fatalf("GetString fallback = %q, want %q", got, "fallback")
	}
}

func TestGetIntInvalidFallsBack(t *testing.T) {
	t.Setenv("REPORTING_TEST_INT", "not-a-number")
	if got := GetInt("REPORTING_TEST_INT", 42); got != 42 {
		t.Fatalf("GetInt = %d, want fallback 42", got)
	}
	t.Setenv("REPORTING_TEST_INT", "7")
	if got := GetInt("REPORTING_TEST_INT", 42); got != 7 {
		t.Fatalf("GetInt = %d, want 7", got)
	}
}

func TestLoadLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	if got := Load().LogLevel; got != "warn" {
		t.Fatalf("LogLevel = %q, want %q", got, "warn")
	}
}
