package preferences

import "testing"

func TestParsePositiveMinutes(t *testing.T) {
	if minutes, ok := parsePositiveMinutes(" 20 "); !ok || minutes != 20 {
		t.Fatalf("expected 20, got %v (%v)", minutes, ok)
	}
	if minutes, ok := parsePositiveMinutes("0.5"); !ok || minutes != 0.5 {
		t.Fatalf("expected 0.5, got %v (%v)", minutes, ok)
	}
	for _, value := range []string{"", "0", "-3", "soon"} {
		if _, ok := parsePositiveMinutes(value); ok {
			t.Fatalf("%q should be rejected", value)
		}
	}
}

func TestFormatMinutes(t *testing.T) {
	if got := formatMinutes(60); got != "60" {
		t.Fatalf("expected 60, got %q", got)
	}
	if got := formatMinutes(1.5); got != "1.5" {
		t.Fatalf("expected 1.5, got %q", got)
	}
}
