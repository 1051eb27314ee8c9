package compositor

import (
	"math"
	"testing"
)

func TestRescaleDurationsUniformFactor(t *testing.T) {
	// 10s of scenes against a 5s track: every scene scales by 0.5.
	durations := []float64{4, 3, 3}
	scaled, err := RescaleDurations(durations, 5)
	if err != nil {
		t.Fatalf("rescale: %v", err)
	}

	want := []float64{2, 1.5, 1.5}
	for i := range want {
		if math.Abs(scaled[i]-want[i]) > 1e-9 {
			t.Errorf("scaled[%d] = %f, want %f", i, scaled[i], want[i])
		}
	}

	sum := 0.0
	for _, d := range scaled {
		sum += d
	}
	if math.Abs(sum-5) > 1e-9 {
		t.Errorf("sum = %f, want exactly 5", sum)
	}
}

func TestRescaleDurationsResidueGoesToLastScene(t *testing.T) {
	// Durations chosen so the per-scene products do not sum cleanly.
	durations := []float64{1.1, 2.3, 0.7, 3.9}
	audio := 7.77
	scaled, err := RescaleDurations(durations, audio)
	if err != nil {
		t.Fatalf("rescale: %v", err)
	}

	sum := 0.0
	for _, d := range scaled {
		sum += d
	}
	if math.Abs(sum-audio) > 1e-12 {
		t.Errorf("sum = %.15f, want exactly %f", sum, audio)
	}

	// All scenes except the last carry exactly the uniform factor.
	factor := audio / (1.1 + 2.3 + 0.7 + 3.9)
	for i := 0; i < len(scaled)-1; i++ {
		if math.Abs(scaled[i]-durations[i]*factor) > 1e-12 {
			t.Errorf("scene %d not uniformly scaled: %f", i, scaled[i])
		}
	}
}

func TestRescaleDurationsRejectsBadInput(t *testing.T) {
	if _, err := RescaleDurations(nil, 5); err == nil {
		t.Error("empty durations must error")
	}
	if _, err := RescaleDurations([]float64{1}, 0); err == nil {
		t.Error("zero audio duration must error")
	}
	if _, err := RescaleDurations([]float64{0, 0}, 5); err == nil {
		t.Error("zero-sum durations must error")
	}
}

func TestTimelineAdvanceIsMonotonic(t *testing.T) {
	tl := NewTimeline([]float64{2, 3, 1})
	if tl.Total() != 6 {
		t.Fatalf("total = %f, want 6", tl.Total())
	}

	cases := []struct {
		elapsed float64
		want    int
	}{
		{0, 0},
		{1.99, 0},
		{2.0, 1},
		{4.99, 1},
		{5.0, 2},
		{5.9, 2},
	}
	idx := 0
	for _, tc := range cases {
		idx = tl.Advance(idx, tc.elapsed)
		if idx != tc.want {
			t.Errorf("Advance at %f = %d, want %d", tc.elapsed, idx, tc.want)
		}
	}

	// A prior scene is never revisited even if elapsed regresses.
	if got := tl.Advance(2, 0.5); got != 2 {
		t.Errorf("Advance(2, 0.5) = %d, want 2", got)
	}
}
