package compare

import (
	"bytes"
	"context"
	"image"
	"image/color"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"math"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
	"golang.org/x/sync/errgroup"

	"github.com/sdejongh/diffdeck/pkg/models"
)

const (
	// DefaultPixelThreshold is the summed RGB distance above which a pixel differs
	DefaultPixelThreshold = 30
	// DefaultMaxWidth bounds the working canvas width
	DefaultMaxWidth = 800
	// DefaultMaxHeight bounds the working canvas height
	DefaultMaxHeight = 600

	// maskSameAlpha dims matching pixels in the mask
	maskSameAlpha = 100
)

var maskDifferent = color.NRGBA{R: 255, A: 255}

// ImageOptions configures one image comparison
type ImageOptions struct {
	Threshold int
	MaxWidth  int
	MaxHeight int
}

// DefaultImageOptions returns the reference policy: threshold 30 on an 800x600 canvas
func DefaultImageOptions() ImageOptions {
	return ImageOptions{
		Threshold: DefaultPixelThreshold,
		MaxWidth:  DefaultMaxWidth,
		MaxHeight: DefaultMaxHeight,
	}
}

// ImageDiff is the output of an image comparison
type ImageDiff struct {
	Result models.ComparisonResult

	// Mask has the canvas size. Differing pixels are opaque red; matching
	// pixels carry the channel-wise maximum of both inputs at alpha 100.
	Mask *image.NRGBA

	Width  int
	Height int
	Scale  float64
}

// ImageEngine compares two raster images pixel by pixel
type ImageEngine struct {
	scaler draw.Scaler
}

// NewImageEngine creates an image engine that resamples with bilinear interpolation
func NewImageEngine() *ImageEngine {
	return &ImageEngine{scaler: draw.ApproxBiLinear}
}

// CompareEncoded decodes both images concurrently and compares them.
// Supported formats are PNG, JPEG, GIF, BMP and WebP.
func (e *ImageEngine) CompareEncoded(ctx context.Context, left, right []byte, opts ImageOptions) (*ImageDiff, error) {
	if len(left) == 0 || len(right) == 0 {
		return nil, newError(KindInputMissing, "both images are required")
	}

	var imgs [2]image.Image
	g, _ := errgroup.WithContext(ctx)
	for i, data := range [][]byte{left, right} {
		i, data := i, data
		g.Go(func() error {
			img, _, err := image.Decode(bytes.NewReader(data))
			if err != nil {
				side := "left"
				if i == 1 {
					side = "right"
				}
				return &Error{Kind: KindDecodeFailure, Message: "failed to decode " + side + " image", Err: err}
			}
			imgs[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return e.Compare(imgs[0], imgs[1], opts)
}

// Compare composites both images onto a common white canvas and classifies
// every pixel. Size differences are absorbed by the padding and never
// reported as added or removed.
func (e *ImageEngine) Compare(left, right image.Image, opts ImageOptions) (*ImageDiff, error) {
	if left == nil || right == nil {
		return nil, newError(KindInputMissing, "both images are required")
	}
	if opts.Threshold < 0 || opts.MaxWidth <= 0 || opts.MaxHeight <= 0 {
		return nil, newError(KindInvalidOption, "invalid image options: threshold=%d max=%dx%d", opts.Threshold, opts.MaxWidth, opts.MaxHeight)
	}

	lb, rb := left.Bounds(), right.Bounds()
	if lb.Empty() || rb.Empty() {
		return nil, newError(KindDecodeFailure, "image has no pixels")
	}

	scale := math.Min(fitScale(lb, opts), fitScale(rb, opts))
	lw, lh := scaled(lb.Dx(), scale), scaled(lb.Dy(), scale)
	rw, rh := scaled(rb.Dx(), scale), scaled(rb.Dy(), scale)
	width, height := max(lw, rw), max(lh, rh)

	lc := e.composite(left, lw, lh, width, height)
	rc := e.composite(right, rw, rh, width, height)
	mask := image.NewNRGBA(image.Rect(0, 0, width, height))

	var different uint64
	first := int64(-1)
	threshold := opts.Threshold

	for i := 0; i < len(lc.Pix); i += 4 {
		p1, p2 := lc.Pix[i:i+4:i+4], rc.Pix[i:i+4:i+4]
		d := absDiff(p1[0], p2[0]) + absDiff(p1[1], p2[1]) + absDiff(p1[2], p2[2])

		m := mask.Pix[i : i+4 : i+4]
		if d > threshold {
			m[0], m[1], m[2], m[3] = maskDifferent.R, maskDifferent.G, maskDifferent.B, maskDifferent.A
			if first < 0 {
				first = int64(i / 4)
			}
			different++
			continue
		}
		m[0], m[1], m[2], m[3] = max(p1[0], p2[0]), max(p1[1], p2[1]), max(p1[2], p2[2]), maskSameAlpha
	}

	total := uint64(width) * uint64(height)
	return &ImageDiff{
		Result: models.ComparisonResult{
			Modified:        different,
			Unchanged:       total - different,
			Total:           total,
			FirstDifference: first,
		},
		Mask:   mask,
		Width:  width,
		Height: height,
		Scale:  scale,
	}, nil
}

// composite draws src scaled to w x h at the top-left of a white canvas
func (e *ImageEngine) composite(src image.Image, w, h, canvasW, canvasH int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, canvasW, canvasH))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	sb := src.Bounds()
	dst := image.Rect(0, 0, w, h)
	if sb.Dx() == w && sb.Dy() == h {
		draw.Draw(canvas, dst, src, sb.Min, draw.Over)
	} else {
		e.scaler.Scale(canvas, dst, src, sb, draw.Over, nil)
	}
	return canvas
}

// fitScale returns the factor that fits b inside the canvas cap, never enlarging
func fitScale(b image.Rectangle, opts ImageOptions) float64 {
	return math.Min(1, math.Min(
		float64(opts.MaxWidth)/float64(b.Dx()),
		float64(opts.MaxHeight)/float64(b.Dy()),
	))
}

func scaled(n int, scale float64) int {
	return max(1, int(math.Floor(float64(n)*scale)))
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
