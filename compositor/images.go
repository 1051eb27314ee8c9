package compositor

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"net/http"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// loadImage decodes a scene image from an http(s) URL or a local path.
func loadImage(ctx context.Context, ref string) (image.Image, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
		if err != nil {
			return nil, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetching image: HTTP %d", resp.StatusCode)
		}
		img, _, err := image.Decode(resp.Body)
		return img, err
	}

	f, err := os.Open(ref)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

// placeholderImage is the stand-in for a scene whose image generation
// was degraded. Produced locally so an export with placeholder scenes
// still runs end to end without resolving the scene's asset reference.
func placeholderImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 1280, 720))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 36, G: 40, B: 48, A: 255}), image.Point{}, draw.Src)
	return img
}

// prefetchImages loads every scene image before any frame is produced.
// Placeholder clips get a locally produced stand-in; any other failure
// aborts composition, a blank frame is never substituted.
func prefetchImages(ctx context.Context, clips []Clip) ([]image.Image, error) {
	images := make([]image.Image, len(clips))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, clip := range clips {
		if clip.Placeholder {
			images[i] = placeholderImage()
			continue
		}
		g.Go(func() error {
			img, err := loadImage(gctx, clip.ImageRef)
			if err != nil {
				return fmt.Errorf("scene %d image %q: %w", i+1, clip.ImageRef, err)
			}
			images[i] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}
