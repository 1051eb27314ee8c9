package segmenter

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

const sampleSRT = `1
00:00:00,000 --> 00:00:02,000
Once upon a time

2
00:00:02,000 --> 00:00:04,000
there was a kingdom
`

func TestParseSubtitles(t *testing.T) {
	lines := ParseSubtitles(sampleSRT)
	if len(lines) != 2 {
		t.Fatalf("parsed %d lines, want 2", len(lines))
	}
	if lines[0].StartTime != 0 || lines[0].EndTime != 2 {
		t.Errorf("first line span = [%f, %f], want [0, 2]", lines[0].StartTime, lines[0].EndTime)
	}
	if lines[1].Text != "there was a kingdom" {
		t.Errorf("second line text = %q", lines[1].Text)
	}
}

func TestParseSubtitlesStripsMarkup(t *testing.T) {
	srt := "1\n00:00:01,500 --> 00:00:03,250\n<i>Hello</i> {\\an8}world\n"
	lines := ParseSubtitles(srt)
	if len(lines) != 1 {
		t.Fatalf("parsed %d lines, want 1", len(lines))
	}
	if lines[0].Text != "Hello world" {
		t.Errorf("text = %q, want %q", lines[0].Text, "Hello world")
	}
}

func TestParseSubtitlesDiscardsBadBlocks(t *testing.T) {
	srt := "garbage without timestamps\n\n2\n00:00:01,000 --> 00:00:02,000\n<i></i>\n\n3\n00:00:03,000 --> 00:00:04,000\nkept\n"
	lines := ParseSubtitles(srt)
	if len(lines) != 1 || lines[0].Text != "kept" {
		t.Fatalf("lines = %+v, want single %q cue", lines, "kept")
	}
}

func TestSegmentSubtitlesEmptyInput(t *testing.T) {
	if scenes := SegmentSubtitles("", 50); scenes != nil {
		t.Fatalf("expected nil scenes for empty input, got %d", len(scenes))
	}
	if scenes := SegmentSubtitles("not a subtitle file", 50); scenes != nil {
		t.Fatalf("expected nil scenes for unparsable input, got %d", len(scenes))
	}
}

// Two adjacent lines under the word budget collapse into one scene whose
// duration covers the whole block.
func TestSegmentSubtitlesMergesAdjacentLines(t *testing.T) {
	scenes := SegmentSubtitles(sampleSRT, 10)
	if len(scenes) != 1 {
		t.Fatalf("got %d scenes, want 1", len(scenes))
	}
	if scenes[0].Narration != "Once upon a time there was a kingdom" {
		t.Errorf("narration = %q", scenes[0].Narration)
	}
	if scenes[0].Duration != 4.0 {
		t.Errorf("duration = %f, want 4.0", scenes[0].Duration)
	}
}

// The same two lines separated by a 2 s pause split into two scenes, and
// the first scene's duration runs until the second scene starts.
func TestSegmentSubtitlesSplitsOnPause(t *testing.T) {
	srt := `1
00:00:00,000 --> 00:00:02,000
Once upon a time

2
00:00:04,000 --> 00:00:06,000
there was a kingdom
`
	scenes := SegmentSubtitles(srt, 10)
	if len(scenes) != 2 {
		t.Fatalf("got %d scenes, want 2", len(scenes))
	}
	if scenes[0].Duration != 4.0 {
		t.Errorf("first scene duration = %f, want 4.0 (runs to next scene start)", scenes[0].Duration)
	}
	if scenes[1].Duration != 2.0 {
		t.Errorf("last scene duration = %f, want 2.0", scenes[1].Duration)
	}
}

func TestSegmentSubtitlesWordBudget(t *testing.T) {
	srt := `1
00:00:00,000 --> 00:00:02,000
one two three four

2
00:00:02,200 --> 00:00:04,000
five six seven eight
`
	scenes := SegmentSubtitles(srt, 6)
	if len(scenes) != 2 {
		t.Fatalf("got %d scenes, want 2 (budget exceeded)", len(scenes))
	}
	for _, scene := range scenes {
		if WordCount(scene.Narration) > 6 {
			t.Errorf("scene %d has %d words, budget 6", scene.SceneNumber, WordCount(scene.Narration))
		}
	}
}

// A single line longer than the budget is never split; it forms its own scene.
func TestSegmentSubtitlesLongLineKeptWhole(t *testing.T) {
	srt := `1
00:00:00,000 --> 00:00:05,000
a b c d e f g h i j k l

2
00:00:05,200 --> 00:00:06,000
short tail
`
	scenes := SegmentSubtitles(srt, 5)
	if len(scenes) != 2 {
		t.Fatalf("got %d scenes, want 2", len(scenes))
	}
	if WordCount(scenes[0].Narration) != 12 {
		t.Errorf("long line was split: %q", scenes[0].Narration)
	}
}

// Scene durations always account for the full input time span: every scene
// except the last runs to the next scene's start, and the last scene keeps
// its own span.
func TestSegmentSubtitlesDurationsCoverTimeSpan(t *testing.T) {
	var b strings.Builder
	starts := []float64{0, 3, 8, 15, 20}
	for i, start := range starts {
		fmt.Fprintf(&b, "%d\n%s --> %s\nline number %d words here\n\n",
			i+1, srtStamp(start), srtStamp(start+2.5), i+1)
	}

	scenes := SegmentSubtitles(b.String(), 8)
	if len(scenes) < 2 {
		t.Fatalf("got %d scenes, want several", len(scenes))
	}

	total := 0.0
	for _, scene := range scenes {
		total += scene.Duration
	}
	// First cue starts at 0, last cue ends at 22.5.
	if math.Abs(total-22.5) > 1e-9 {
		t.Errorf("summed durations = %f, want 22.5", total)
	}
}

func srtStamp(seconds float64) string {
	whole := int(seconds)
	ms := int(math.Round((seconds - float64(whole)) * 1000))
	return fmt.Sprintf("%02d:%02d:%02d,%03d", whole/3600, (whole%3600)/60, whole%60, ms)
}
