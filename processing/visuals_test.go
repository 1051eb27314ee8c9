package processing

import (
	"strings"
	"testing"
)

func TestFallbackDescription(t *testing.T) {
	got := FallbackDescription("A knight rides into the valley", "oil painting")
	if !strings.Contains(got, "oil painting") || !strings.Contains(got, "A knight rides into the valley") {
		t.Errorf("fallback = %q", got)
	}

	// Long narrations are truncated to keep the prompt bounded.
	long := strings.Repeat("word ", 100)
	got = FallbackDescription(long, "")
	if len(strings.Fields(got)) > 40 {
		t.Errorf("fallback too long: %d words", len(strings.Fields(got)))
	}
}

func TestFormatCharacters(t *testing.T) {
	got := formatCharacters([]Character{
		{Name: "Ava", Traits: "red cloak, silver hair"},
		{Name: "Bruno"},
	})
	want := "- Ava: red cloak, silver hair\n- Bruno"
	if got != want {
		t.Errorf("formatCharacters = %q, want %q", got, want)
	}
}
