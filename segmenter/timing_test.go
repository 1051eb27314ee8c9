package segmenter

import (
	"strings"
	"testing"
)

func TestDisplayDuration(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0.05, "1s"},
		{0.6, "1s"},
		{1.4, "1s"},
		{2.5, "3s"},
		{12.0, "12s"},
	}
	for _, tc := range cases {
		if got := DisplayDuration(tc.seconds); got != tc.want {
			t.Errorf("DisplayDuration(%f) = %s, want %s", tc.seconds, got, tc.want)
		}
	}
}

func TestDurationFromWordCount(t *testing.T) {
	cases := []struct {
		words int
		want  float64
	}{
		{0, 1},   // floor of one second
		{1, 1},   // 0.4s rounds to 0, floored
		{150, 60},
		{75, 30},
		{25, 10},
	}
	for _, tc := range cases {
		if got := DurationFromWordCount(tc.words); got != tc.want {
			t.Errorf("DurationFromWordCount(%d) = %f, want %f", tc.words, got, tc.want)
		}
	}
}

func TestScenesFromNarrations(t *testing.T) {
	narrations := []string{
		strings.Repeat("word ", 75), // 30s at 150 wpm
		"",                          // skipped
		"short one",
	}
	scenes := ScenesFromNarrations(narrations)
	if len(scenes) != 2 {
		t.Fatalf("got %d scenes, want 2", len(scenes))
	}
	if scenes[0].Duration != 30 {
		t.Errorf("first scene duration = %f, want 30", scenes[0].Duration)
	}
	if scenes[1].SceneNumber != 2 {
		t.Errorf("scene numbers must be sequential with no gaps, got %d", scenes[1].SceneNumber)
	}
	if scenes[1].Duration != 1 {
		t.Errorf("two-word scene duration = %f, want floor of 1", scenes[1].Duration)
	}
}
