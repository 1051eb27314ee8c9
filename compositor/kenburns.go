package compositor

import (
	"image"
	"math"
	"math/rand"
)

// Zoom bounds relative to the cover-fit scale.
const (
	zoomNear = 1.0
	zoomFar  = 1.2
)

// Rect is an axis-aligned region in source-image pixel coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Bounds converts to an integer rectangle clamped to the image size.
func (r Rect) Bounds(imgW, imgH int) image.Rectangle {
	x0 := int(math.Round(r.X))
	y0 := int(math.Round(r.Y))
	x1 := int(math.Round(r.X + r.W))
	y1 := int(math.Round(r.Y + r.H))
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > imgW {
		x1 = imgW
	}
	if y1 > imgH {
		y1 = imgH
	}
	return image.Rect(x0, y0, x1, y1)
}

// Transform is a self-contained pan/zoom for one scene: the source crop
// moves linearly from Start to End over the scene's duration.
type Transform struct {
	Start Rect
	End   Rect
}

// At returns the crop rectangle at elapsed fraction frac of the scene,
// linearly interpolating position and size. frac is clamped to [0, 1].
func (t Transform) At(frac float64) Rect {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return Rect{
		X: lerp(t.Start.X, t.End.X, frac),
		Y: lerp(t.Start.Y, t.End.Y, frac),
		W: lerp(t.Start.W, t.End.W, frac),
		H: lerp(t.Start.H, t.End.H, frac),
	}
}

// NewTransform picks a pan/zoom for one scene image: the camera zooms
// from 1.0x to 1.2x of the cover-fit scale (or the reverse, chosen at
// random) while panning along a randomly biased axis as far as the
// overscan allows. Every intermediate crop stays inside the image and
// keeps the output aspect ratio.
func NewTransform(imgW, imgH, outW, outH int, rng *rand.Rand) Transform {
	zoomIn := rng.Intn(2) == 0
	startZoom, endZoom := zoomNear, zoomFar
	if !zoomIn {
		startZoom, endZoom = zoomFar, zoomNear
	}

	// Pan along one biased axis between opposite edges of the overscan;
	// the other axis stays centered.
	horizontal := rng.Intn(2) == 0
	forward := rng.Intn(2) == 0
	startPan, endPan := 0.0, 1.0
	if !forward {
		startPan, endPan = 1.0, 0.0
	}

	startFX, startFY := panFractions(horizontal, startPan)
	endFX, endFY := panFractions(horizontal, endPan)
	return Transform{
		Start: cropRect(imgW, imgH, outW, outH, startZoom, startFX, startFY),
		End:   cropRect(imgW, imgH, outW, outH, endZoom, endFX, endFY),
	}
}

func panFractions(horizontal bool, pan float64) (fx, fy float64) {
	if horizontal {
		return pan, 0.5
	}
	return 0.5, pan
}

// cropRect computes the visible source region at the given zoom. The
// cover-fit scale fills the output frame without distortion; zoom > 1
// shrinks the region, creating overscan the pan can traverse.
func cropRect(imgW, imgH, outW, outH int, zoom, fx, fy float64) Rect {
	fit := math.Max(float64(outW)/float64(imgW), float64(outH)/float64(imgH))
	w := float64(outW) / (fit * zoom)
	h := float64(outH) / (fit * zoom)

	maxX := float64(imgW) - w
	maxY := float64(imgH) - h
	if maxX < 0 {
		maxX = 0
	}
	if maxY < 0 {
		maxY = 0
	}
	return Rect{X: fx * maxX, Y: fy * maxY, W: w, H: h}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
