package compositor

import (
	"context"
	"testing"
)

func TestResolutionForTier(t *testing.T) {
	res, err := ResolutionForTier("720p")
	if err != nil || res != Resolution720p {
		t.Errorf("720p = %+v, %v", res, err)
	}
	res, err = ResolutionForTier("1080p")
	if err != nil || res != Resolution1080p {
		t.Errorf("1080p = %+v, %v", res, err)
	}
	if _, err := ResolutionForTier("8k"); err == nil {
		t.Error("unknown tier must error")
	}
}

func TestComposeRejectsInvalidClips(t *testing.T) {
	c := NewComposer()

	err := c.Compose(context.Background(), nil, "", "out.mp4", Resolution720p, nil)
	if err == nil {
		t.Error("empty clip list must error")
	}

	err = c.Compose(context.Background(), []Clip{{ImageRef: "x.png", Duration: 0}}, "", "out.mp4", Resolution720p, nil)
	if err == nil {
		t.Error("non-positive clip duration must error")
	}
}

func TestOutputFilename(t *testing.T) {
	cases := []struct{ title, want string }{
		{"My First Story!", "my-first-story.mp4"},
		{"  ", "storyboard.mp4"},
		{"Großes Märchen #2", "gro-es-m-rchen-2.mp4"},
	}
	for _, tc := range cases {
		if got := OutputFilename(tc.title); got != tc.want {
			t.Errorf("OutputFilename(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}
