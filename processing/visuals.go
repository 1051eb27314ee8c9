package processing

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
)

// PlaceholderImageURL marks a scene whose image generation failed. The
// frontend renders it as a visibly degraded slot.
const PlaceholderImageURL = "/assets/placeholder-scene.png"

// DescribeRequest carries everything the model needs to author a visual
// description for one scene.
type DescribeRequest struct {
	Narration      string
	Style          string
	NegativePrompt string
	Characters     []Character
}

// VisualDescription is the structured output for scene description calls.
type VisualDescription struct {
	Description string `json:"description" jsonschema_description:"A detailed visual description of the scene: setting, subjects, mood, lighting. No camera jargon, no text overlays."`
}

var visualDescriptionSchema = GenerateSchema[VisualDescription]()

// DescribeScene turns a scene narration into a visual description,
// keeping character traits and the global style consistent.
func (c *Client) DescribeScene(ctx context.Context, req DescribeRequest) (string, error) {
	prompt := fmt.Sprintf(`You are a visual storyteller designing one scene of an illustrated narration video.
Overall visual style: "%s".
Scene narration: "%s".`, req.Style, req.Narration)

	if len(req.Characters) > 0 {
		prompt += "\nRecurring characters that must stay visually consistent:\n" + formatCharacters(req.Characters)
	}
	if req.NegativePrompt != "" {
		prompt += fmt.Sprintf("\nNever include any of the following: %s.", req.NegativePrompt)
	}
	prompt += "\nWrite a single detailed visual description of the scene."

	resp, err := getStructuredResponse[VisualDescription](ctx, c.api, prompt, visualDescriptionSchema)
	if err != nil {
		return "", fmt.Errorf("failed to describe scene: %w", err)
	}

	description := strings.TrimSpace(resp.Description)
	if description == "" {
		return "", fmt.Errorf("OpenAI returned empty scene description")
	}
	return description, nil
}

// GenerateImage renders a scene image from its visual description and
// returns an opaque URL to the generated asset.
func (c *Client) GenerateImage(ctx context.Context, description, style string) (string, error) {
	prompt := description
	if style != "" {
		prompt = fmt.Sprintf("%s. Style: %s", description, style)
	}

	resp, err := c.api.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModelDallE3,
		Size:   openai.ImageGenerateParamsSize1792x1024,
		N:      openai.Int(1),
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI image API error: %w", err)
	}

	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", fmt.Errorf("OpenAI returned no image data")
	}
	return resp.Data[0].URL, nil
}

// FallbackDescription builds a degraded visual description straight from
// the narration when the description call fails. The scene keeps going.
func FallbackDescription(narration, style string) string {
	excerpt := narration
	if words := strings.Fields(narration); len(words) > 30 {
		excerpt = strings.Join(words[:30], " ")
	}
	if style != "" {
		return fmt.Sprintf("An illustrative %s scene depicting: %s", style, excerpt)
	}
	return fmt.Sprintf("An illustrative scene depicting: %s", excerpt)
}

func formatCharacters(characters []Character) string {
	var lines []string
	for _, ch := range characters {
		if ch.Traits != "" {
			lines = append(lines, fmt.Sprintf("- %s: %s", ch.Name, ch.Traits))
		} else {
			lines = append(lines, fmt.Sprintf("- %s", ch.Name))
		}
	}
	return strings.Join(lines, "\n")
}
