package segmenter

import (
	"fmt"
	"math"
	"strings"
)

const (
	// PauseThreshold is the silence gap between subtitle lines that forces a new scene.
	PauseThreshold = 1.5

	// MinSceneDuration is the floor applied to precise scene durations.
	MinSceneDuration = 0.1

	// ReadingRateWPM is the assumed narration reading rate for script-derived scenes.
	ReadingRateWPM = 150
)

// TimedLine is one parsed subtitle cue. Ephemeral, consumed only by grouping.
type TimedLine struct {
	StartTime float64
	EndTime   float64
	Text      string
}

// SceneGroup accumulates subtitle lines before durations are finalized.
type SceneGroup struct {
	Narration string
	StartTime float64
	EndTime   float64
}

// Scene is one storyboard segment. Timing fields are set first; the
// visual description and image reference are filled in by enrichment.
type Scene struct {
	SceneNumber       int     `json:"scene_number"`
	Narration         string  `json:"narration"`
	Duration          float64 `json:"duration"`
	DisplayDuration   string  `json:"display_duration"`
	VisualDescription string  `json:"visual_description,omitempty"`
	ImageURL          string  `json:"image_url,omitempty"`
	Placeholder       bool    `json:"placeholder,omitempty"`
}

// WordCount counts whitespace-separated words in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// DisplayDuration renders a duration for presentation: rounded to whole
// seconds with a floor of one second.
func DisplayDuration(seconds float64) string {
	rounded := int(math.Round(seconds))
	if rounded < 1 {
		rounded = 1
	}
	return fmt.Sprintf("%ds", rounded)
}

// DurationFromWordCount derives a narration duration from word count at
// the fixed reading rate, rounded to whole seconds, minimum one second.
func DurationFromWordCount(words int) float64 {
	seconds := math.Round(float64(words) / ReadingRateWPM * 60)
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}

// ScenesFromNarrations builds timed scenes from narration strings produced
// by narrative segmentation. Empty narrations are skipped.
func ScenesFromNarrations(narrations []string) []Scene {
	scenes := make([]Scene, 0, len(narrations))
	for _, narration := range narrations {
		narration = strings.TrimSpace(narration)
		if narration == "" {
			continue
		}
		duration := DurationFromWordCount(WordCount(narration))
		scenes = append(scenes, Scene{
			SceneNumber:     len(scenes) + 1,
			Narration:       narration,
			Duration:        duration,
			DisplayDuration: DisplayDuration(duration),
		})
	}
	return scenes
}
