package config

import (
	"testing"
	"time"
)

func TestBoolEnvOrDefault(t *testing.T) {
	t.Setenv("BOOL_TEST", "  ")
	if got := boolEnvOrDefault("BOOL_TEST", true); !got {
		t.Fatalf("expected default true when blank")
	}

	cases := map[string]bool{
		"true":  true,
		"TRUE":  true,
		"1":     true,
		"yes":   true,
		"on":    true,
		"false": false,
		"0":     false,
		"no":    false,
		"Off":   false,
		"maybe": true,
	}
	for val, want := range cases {
		t.Setenv("BOOL_TEST", val)
		if got := boolEnvOrDefault("BOOL_TEST", true); got != want {
			t.Fatalf("%q: expected %v got %v", val, want, got)
		}
	}
}

func TestDurationEnvOrDefault(t *testing.T) {
	cases := map[string]time.Duration{
		"":      time.Minute,
		"90s":   90 * time.Second,
		" 2m ":  2 * time.Minute,
		"-5s":   time.Minute,
		"0s":    time.Minute,
		"never": time.Minute,
	}
	for val, want := range cases {
		t.Setenv("DURATION_TEST", val)
		if got := durationEnvOrDefault("DURATION_TEST", time.Minute); got != want {
			t.Fatalf("%q: expected %v got %v", val, want, got)
		}
	}
}

func TestIntEnvOrDefault(t *testing.T) {
	cases := map[string]int{
		"":      24224,
		"24225": 24225,
		"-1":    24224,
		"port":  24224,
	}
	for val, want := range cases {
		t.Setenv("INT_TEST", val)
		if got := intEnvOrDefault("INT_TEST", 24224); got != want {
			t.Fatalf("%q: expected %d got %d", val, want, got)
		}
	}
}

func TestEnvOrDefaultTrims(t *testing.T) {
	t.Setenv("STRING_TEST", "  info ")
	if got := envOrDefault("STRING_TEST", "warn"); got != "info" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	t.Setenv("STRING_TEST", " ")
	if got := envOrDefault("STRING_TEST", "warn"); got != "warn" {
		t.Fatalf("expected default for blank value, got %q", got)
	}
}
