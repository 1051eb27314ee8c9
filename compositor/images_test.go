package compositor

import (
	"context"
	"testing"
)

func TestPrefetchSubstitutesPlaceholderScenes(t *testing.T) {
	clips := []Clip{
		{ImageRef: "/assets/placeholder-scene.png", Duration: 2, Placeholder: true},
	}
	images, err := prefetchImages(context.Background(), clips)
	if err != nil {
		t.Fatalf("prefetch: %v", err)
	}

	b := images[0].Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		t.Fatal("stand-in image is empty")
	}
	if b.Dx()*9 != b.Dy()*16 {
		t.Errorf("stand-in is %dx%d, want 16:9", b.Dx(), b.Dy())
	}
}

func TestPrefetchFailsOnUnreadableImage(t *testing.T) {
	_, err := prefetchImages(context.Background(), []Clip{
		{ImageRef: "testdata/does-not-exist.png", Duration: 2},
	})
	if err == nil {
		t.Fatal("expected an error for an unreadable image reference")
	}
}
