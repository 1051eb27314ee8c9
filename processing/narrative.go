package processing

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptySegmentation is returned when the model yields zero scenes.
var ErrEmptySegmentation = errors.New("segmentation returned no scenes")

// ScriptBreakdown is the structured output for narrative segmentation.
type ScriptBreakdown struct {
	Narrations []string `json:"narrations" jsonschema_description:"The script text split into ordered scene narrations. Concatenated back together they must reproduce the original text; never rewrite, summarize, or reorder."`
}

var scriptBreakdownSchema = GenerateSchema[ScriptBreakdown]()

// SegmentScript splits free-form script text into scene narrations of
// roughly wordsPerScene words each. The model only cuts and groups; it
// must not rewrite. Durations are derived by the caller from word count.
func (c *Client) SegmentScript(ctx context.Context, script string, wordsPerScene int) ([]string, error) {
	prompt := fmt.Sprintf(`You are segmenting a narration script into visual scenes for a storyboard.
Split the following script into ordered scene narrations of roughly %d words each.
Cut at natural narrative boundaries (a change of subject, place, or action).
Reproduce the original text verbatim across the segments: do not rewrite, summarize, add, or reorder anything.

Script:
%s`, wordsPerScene, script)

	breakdown, err := getStructuredResponse[ScriptBreakdown](ctx, c.api, prompt, scriptBreakdownSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to segment script: %w", err)
	}

	if len(breakdown.Narrations) == 0 {
		return nil, ErrEmptySegmentation
	}
	return breakdown.Narrations, nil
}
