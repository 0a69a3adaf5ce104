package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"math"

	_ "image/gif"
	_ "image/png"

	"fotomagic/internal/domain"
)

// Strategy selects how a source image is reshaped before upload.
type Strategy string

const (
	// StrategyOriginal passes the source bytes through bit-identical.
	StrategyOriginal Strategy = "original"
	// StrategyNearest crops to the allow-listed ratio closest to the source.
	StrategyNearest Strategy = "nearest"
	// StrategyFarthest crops to the allow-listed ratio farthest from the
	// source. Used as a last-resort probe when the provider keeps rejecting
	// the nearest variant.
	StrategyFarthest Strategy = "farthest"
)

type aspectRatio struct {
	name string
	w, h int
}

func (r aspectRatio) value() float64 { return float64(r.w) / float64(r.h) }

// Ratios the generation provider accepts.
var allowedRatios = []aspectRatio{
	{"16:9", 16, 9},
	{"4:3", 4, 3},
	{"1:1", 1, 1},
	{"3:4", 3, 4},
	{"9:16", 9, 16},
	{"2:3", 2, 3},
	{"1:2", 1, 2},
	{"2:1", 2, 1},
	{"4:5", 4, 5},
	{"3:2", 3, 2},
	{"5:4", 5, 4},
	{"21:9", 21, 9},
}

const jpegQuality = 90

// Transcode reshapes src to satisfy the provider's aspect-ratio allow-list
// according to the strategy. The crop is symmetric about the center and the
// output never exceeds the source in either dimension. Images carrying an
// alpha or palette channel are flattened onto solid white first.
func Transcode(src []byte, strategy Strategy) ([]byte, error) {
	if strategy == StrategyOriginal {
		return src, nil
	}

	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTranscodeFailed, err)
	}

	flattened, changed := flattenToWhite(img)
	target := pickRatio(flattened.Bounds(), strategy)
	rect := centerCrop(flattened.Bounds(), target)

	if !changed && rect == flattened.Bounds() {
		// Already on the allow-list with no channel work to do; keep the
		// source pixels untouched.
		return src, nil
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flattened.SubImage(rect), &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("%w: encode: %v", domain.ErrTranscodeFailed, err)
	}
	return buf.Bytes(), nil
}

// flattenToWhite composites img onto an opaque white background. The second
// return reports whether the source actually had an alpha or palette channel;
// opaque sources are copied only so the caller can crop via SubImage.
func flattenToWhite(img image.Image) (*image.RGBA, bool) {
	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, bounds, img, bounds.Min, draw.Over)
	return dst, hasAlphaOrPalette(img)
}

func hasAlphaOrPalette(img image.Image) bool {
	switch img.ColorModel() {
	case color.YCbCrModel, color.GrayModel, color.Gray16Model, color.CMYKModel:
		return false
	}
	if _, ok := img.ColorModel().(color.Palette); ok {
		return true
	}
	return true
}

func pickRatio(bounds image.Rectangle, strategy Strategy) aspectRatio {
	src := float64(bounds.Dx()) / float64(bounds.Dy())
	best := allowedRatios[0]
	bestDev := math.Abs(src - best.value())
	for _, r := range allowedRatios[1:] {
		dev := math.Abs(src - r.value())
		switch strategy {
		case StrategyFarthest:
			if dev > bestDev {
				best, bestDev = r, dev
			}
		default:
			if dev < bestDev {
				best, bestDev = r, dev
			}
		}
	}
	return best
}

// centerCrop returns the largest rectangle of the target ratio that fits
// inside bounds, centered. The longer dimension is trimmed symmetrically;
// nothing is ever scaled or padded.
func centerCrop(bounds image.Rectangle, target aspectRatio) image.Rectangle {
	w, h := bounds.Dx(), bounds.Dy()
	cw, ch := w, h
	if w*target.h > h*target.w {
		cw = h * target.w / target.h
	} else if w*target.h < h*target.w {
		ch = w * target.h / target.w
	}
	x0 := bounds.Min.X + (w-cw)/2
	y0 := bounds.Min.Y + (h-ch)/2
	return image.Rect(x0, y0, x0+cw, y0+ch)
}
