package segmenter

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	timestampRe = regexp.MustCompile(`(\d{2}):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2})[,.](\d{3})`)
	markupRe    = regexp.MustCompile(`<[^>]*>|\{[^}]*\}`)
)

// ParseSubtitles parses SRT text into timed lines. Blocks without a
// timestamp pair or with empty text are discarded.
func ParseSubtitles(subtitleText string) []TimedLine {
	normalized := strings.ReplaceAll(subtitleText, "\r\n", "\n")
	blocks := strings.Split(normalized, "\n\n")

	var lines []TimedLine
	for _, block := range blocks {
		match := timestampRe.FindStringSubmatchIndex(block)
		if match == nil {
			continue
		}

		groups := timestampRe.FindStringSubmatch(block)
		start := timestampSeconds(groups[1], groups[2], groups[3], groups[4])
		end := timestampSeconds(groups[5], groups[6], groups[7], groups[8])

		var parts []string
		for _, raw := range strings.Split(block[match[1]:], "\n") {
			text := strings.TrimSpace(markupRe.ReplaceAllString(raw, ""))
			if text != "" {
				parts = append(parts, text)
			}
		}
		if len(parts) == 0 {
			continue
		}

		lines = append(lines, TimedLine{
			StartTime: start,
			EndTime:   end,
			Text:      strings.Join(parts, " "),
		})
	}
	return lines
}

// SegmentSubtitles groups subtitle cues into timed scenes. A new scene
// starts when the silence gap before a line exceeds PauseThreshold, or
// when appending the line would push the group past maxWordsPerScene.
// A single line longer than the budget still forms a complete group; it
// is never split mid-line.
func SegmentSubtitles(subtitleText string, maxWordsPerScene int) []Scene {
	lines := ParseSubtitles(subtitleText)
	if len(lines) == 0 {
		return nil
	}

	var groups []SceneGroup
	current := SceneGroup{
		Narration: lines[0].Text,
		StartTime: lines[0].StartTime,
		EndTime:   lines[0].EndTime,
	}
	words := WordCount(lines[0].Text)

	for _, line := range lines[1:] {
		gap := line.StartTime - current.EndTime
		lineWords := WordCount(line.Text)

		if gap > PauseThreshold || words+lineWords > maxWordsPerScene {
			groups = append(groups, current)
			current = SceneGroup{
				Narration: line.Text,
				StartTime: line.StartTime,
				EndTime:   line.EndTime,
			}
			words = lineWords
			continue
		}

		current.Narration += " " + line.Text
		current.EndTime = line.EndTime
		words += lineWords
	}
	groups = append(groups, current)

	return finalizeGroups(groups)
}

// finalizeGroups converts groups into scenes. Every scene except the last
// runs until the next scene starts, so trailing silence before the next
// cue stays attributed to the scene that precedes it and the subtitle's
// real pacing is preserved. The last scene keeps its own span.
func finalizeGroups(groups []SceneGroup) []Scene {
	scenes := make([]Scene, 0, len(groups))
	for i, group := range groups {
		var duration float64
		if i < len(groups)-1 {
			duration = groups[i+1].StartTime - group.StartTime
		} else {
			duration = group.EndTime - group.StartTime
		}
		if duration < MinSceneDuration {
			duration = MinSceneDuration
		}

		scenes = append(scenes, Scene{
			SceneNumber:     i + 1,
			Narration:       group.Narration,
			Duration:        duration,
			DisplayDuration: DisplayDuration(duration),
		})
	}
	return scenes
}

func timestampSeconds(hh, mm, ss, ms string) float64 {
	hours, _ := strconv.Atoi(hh)
	minutes, _ := strconv.Atoi(mm)
	seconds, _ := strconv.Atoi(ss)
	millis, _ := strconv.Atoi(ms)
	return float64(hours)*3600 + float64(minutes)*60 + float64(seconds) + float64(millis)/1000
}
