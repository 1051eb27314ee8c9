package compositor

import (
	"fmt"
)

// Timeline maps global elapsed time to scene indexes. Scene starts are
// cumulative, so lookups advance monotonically with elapsed time.
type Timeline struct {
	Durations []float64
	starts    []float64
	total     float64
}

// NewTimeline builds a timeline from per-scene durations.
func NewTimeline(durations []float64) *Timeline {
	starts := make([]float64, len(durations))
	total := 0.0
	for i, d := range durations {
		starts[i] = total
		total += d
	}
	return &Timeline{Durations: durations, starts: starts, total: total}
}

// Total is the authoritative overall duration.
func (t *Timeline) Total() float64 {
	return t.total
}

// Advance returns the scene index active at elapsed, never moving before
// from. A prior scene is never revisited even if elapsed regresses.
func (t *Timeline) Advance(from int, elapsed float64) int {
	idx := from
	for idx < len(t.Durations)-1 && elapsed >= t.starts[idx+1] {
		idx++
	}
	return idx
}

// SceneStart returns the global start time of scene idx.
func (t *Timeline) SceneStart(idx int) float64 {
	return t.starts[idx]
}

// RescaleDurations scales every duration by the single uniform factor
// audioDuration / sum(durations), preserving relative pacing. Floating
// point residue is added entirely to the last scene so the sum equals
// the audio duration exactly.
func RescaleDurations(durations []float64, audioDuration float64) ([]float64, error) {
	if len(durations) == 0 {
		return nil, fmt.Errorf("no scene durations to rescale")
	}
	if audioDuration <= 0 {
		return nil, fmt.Errorf("invalid audio duration %f", audioDuration)
	}

	sum := 0.0
	for _, d := range durations {
		sum += d
	}
	if sum <= 0 {
		return nil, fmt.Errorf("scene durations sum to %f", sum)
	}

	factor := audioDuration / sum
	scaled := make([]float64, len(durations))
	scaledSum := 0.0
	for i, d := range durations {
		scaled[i] = d * factor
		scaledSum += scaled[i]
	}
	scaled[len(scaled)-1] += audioDuration - scaledSum

	return scaled, nil
}
