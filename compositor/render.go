package compositor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"log"
	"math"
	"math/rand"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	xdraw "golang.org/x/image/draw"
)

// FPS is the fixed output frame rate.
const FPS = 30

// Rendering progress is mapped into this reserved band, leaving headroom
// for setup below and encoder finalization above.
const (
	progressRenderStart = 20
	progressRenderEnd   = 90
)

// ErrNoDataCaptured is returned when the encoder finished without
// producing any output. Distinct from an encoder startup failure.
var ErrNoDataCaptured = errors.New("no video data captured")

// Resolution tiers offered for export.
var (
	Resolution720p  = Resolution{Width: 1280, Height: 720}
	Resolution1080p = Resolution{Width: 1920, Height: 1080}
)

type Resolution struct {
	Width  int
	Height int
}

// ResolutionForTier maps the export parameter to a concrete resolution.
func ResolutionForTier(tier string) (Resolution, error) {
	switch tier {
	case "720p", "hd":
		return Resolution720p, nil
	case "1080p", "fullhd":
		return Resolution1080p, nil
	default:
		return Resolution{}, fmt.Errorf("unknown resolution tier %q", tier)
	}
}

// Clip is one scene as the compositor sees it: an image reference and a
// precise duration. Placeholder marks a scene whose image generation was
// degraded at creation time; its ImageRef points at a frontend asset the
// worker host cannot resolve, so the compositor substitutes a locally
// produced stand-in instead of loading it.
type Clip struct {
	ImageRef    string
	Duration    float64
	Placeholder bool
}

// ProgressFunc receives coarse composition progress.
type ProgressFunc func(percent int, message string)

// Composer renders timed scene images into an encoded video, one
// composition at a time. Each composition owns its drawing surface and
// encoder exclusively.
type Composer struct {
	rng *rand.Rand
}

func NewComposer() *Composer {
	return &Composer{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Compose renders clips into outPath at the given resolution. When
// audioPath is non-empty the audio duration becomes authoritative and
// scene durations are rescaled to match it.
func (c *Composer) Compose(ctx context.Context, clips []Clip, audioPath, outPath string, res Resolution, onProgress ProgressFunc) error {
	if onProgress == nil {
		onProgress = func(int, string) {}
	}
	if len(clips) == 0 {
		return fmt.Errorf("nothing to compose: no clips")
	}

	durations := make([]float64, len(clips))
	for i, clip := range clips {
		if clip.Duration <= 0 {
			return fmt.Errorf("clip %d has non-positive duration %f", i+1, clip.Duration)
		}
		durations[i] = clip.Duration
	}

	// Audio decode problems abort before any frame is produced.
	if audioPath != "" {
		audioDuration, err := probeAudioDuration(ctx, audioPath)
		if err != nil {
			return fmt.Errorf("audio track unusable: %w", err)
		}
		durations, err = RescaleDurations(durations, audioDuration)
		if err != nil {
			return err
		}
		log.Printf("Rescaled %d scene durations to %.3fs audio track", len(durations), audioDuration)
	}

	onProgress(5, "Loading scene images")
	images, err := prefetchImages(ctx, clips)
	if err != nil {
		return fmt.Errorf("composition aborted: %w", err)
	}

	timeline := NewTimeline(durations)
	transforms := make([]Transform, len(images))
	for i, img := range images {
		b := img.Bounds()
		transforms[i] = NewTransform(b.Dx(), b.Dy(), res.Width, res.Height, c.rng)
	}

	onProgress(15, "Starting encoder")
	if err := c.encode(ctx, images, transforms, timeline, audioPath, outPath, res, onProgress); err != nil {
		return err
	}

	info, err := os.Stat(outPath)
	if err != nil || info.Size() == 0 {
		return ErrNoDataCaptured
	}

	onProgress(100, "Encoding complete")
	return nil
}

// encode drives the frame loop, piping raw RGBA frames into ffmpeg. The
// loop is encoder-paced: frame index over FPS is the global elapsed
// time, the active scene index only moves forward, and production stops
// deterministically once elapsed reaches the total duration.
func (c *Composer) encode(ctx context.Context, images []image.Image, transforms []Transform, timeline *Timeline, audioPath, outPath string, res Resolution, onProgress ProgressFunc) error {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", res.Width, res.Height),
		"-r", strconv.Itoa(FPS),
		"-i", "-",
	}
	if audioPath != "" {
		args = append(args, "-i", audioPath, "-c:a", "aac", "-shortest")
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", "fast",
		"-pix_fmt", "yuv420p",
		outPath,
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("encoder pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("encoder failed to start: %w", err)
	}

	total := timeline.Total()
	frame := image.NewRGBA(image.Rect(0, 0, res.Width, res.Height))
	sceneIdx := 0

	for frameNo := 0; ; frameNo++ {
		elapsed := float64(frameNo) / FPS
		if elapsed >= total {
			break
		}
		if err := ctx.Err(); err != nil {
			stdin.Close()
			cmd.Wait()
			return err
		}

		sceneIdx = timeline.Advance(sceneIdx, elapsed)
		frac := (elapsed - timeline.SceneStart(sceneIdx)) / timeline.Durations[sceneIdx]

		img := images[sceneIdx]
		crop := transforms[sceneIdx].At(frac).Bounds(img.Bounds().Dx(), img.Bounds().Dy())
		xdraw.ApproxBiLinear.Scale(frame, frame.Bounds(), img, crop.Add(img.Bounds().Min), draw.Src, nil)

		if _, err := stdin.Write(frame.Pix); err != nil {
			stdin.Close()
			cmd.Wait()
			return fmt.Errorf("encoder rejected frame %d: %w", frameNo, err)
		}

		if frameNo%FPS == 0 {
			span := float64(progressRenderEnd - progressRenderStart)
			percent := progressRenderStart + int(span*elapsed/total)
			onProgress(percent, fmt.Sprintf("Rendering scene %d of %d", sceneIdx+1, len(images)))
		}
	}

	if err := stdin.Close(); err != nil {
		return fmt.Errorf("closing encoder input: %w", err)
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("encoder failed: %w", err)
	}
	return nil
}

// probeAudioDuration reads the exact track duration via ffprobe.
func probeAudioDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe returned unparsable duration %q", strings.TrimSpace(string(out)))
	}
	if duration <= 0 || math.IsNaN(duration) {
		return 0, fmt.Errorf("audio track has invalid duration %f", duration)
	}
	return duration, nil
}

var unsafeFilenameRe = regexp.MustCompile(`[^a-z0-9]+`)

// OutputFilename derives a human-friendly download name from a project title.
func OutputFilename(title string) string {
	slug := unsafeFilenameRe.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "storyboard"
	}
	return slug + ".mp4"
}
