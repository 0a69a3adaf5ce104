package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"fotomagic/internal/domain"
)

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 64, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func decodeDims(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestOriginalStrategyIsPassthrough(t *testing.T) {
	src := encodeJPEG(t, 333, 217)
	out, err := Transcode(src, StrategyOriginal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(out, src) {
		t.Fatal("original strategy must return source bytes unchanged")
	}
}

func TestNearestKeepsAllowListedSourceUntouched(t *testing.T) {
	src := encodeJPEG(t, 320, 180) // exactly 16:9
	out, err := Transcode(src, StrategyNearest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(out, src) {
		t.Fatal("allow-listed opaque source must pass through unchanged")
	}
}

func TestNearestCropsToClosestRatio(t *testing.T) {
	src := encodeJPEG(t, 500, 210) // 2.38, closest allowed is 21:9
	out, err := Transcode(src, StrategyNearest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w, h := decodeDims(t, out)
	if w != 490 || h != 210 {
		t.Fatalf("expected 490x210 crop, got %dx%d", w, h)
	}
}

func TestFarthestPicksMostDistantRatio(t *testing.T) {
	src := encodeJPEG(t, 210, 210) // square source, farthest allowed is 21:9
	out, err := Transcode(src, StrategyFarthest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w, h := decodeDims(t, out)
	if w != 210 || h != 90 {
		t.Fatalf("expected 210x90 crop, got %dx%d", w, h)
	}
	if w > 210 || h > 210 {
		t.Fatal("crop must never exceed the source dimensions")
	}
}

func TestCropNeverUpscales(t *testing.T) {
	for _, s := range []Strategy{StrategyNearest, StrategyFarthest} {
		src := encodeJPEG(t, 123, 457)
		out, err := Transcode(src, s)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", s, err)
		}
		w, h := decodeDims(t, out)
		if w > 123 || h > 457 {
			t.Fatalf("%s: output %dx%d larger than source", s, w, h)
		}
	}
}

func TestAlphaFlattenedOntoWhite(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100)) // fully transparent
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	out, err := Transcode(buf.Bytes(), StrategyNearest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	r, g, b, _ := decoded.At(50, 50).RGBA()
	const floor = 0xf0 << 8
	if r < floor || g < floor || b < floor {
		t.Fatalf("expected white background, got r=%d g=%d b=%d", r, g, b)
	}
}

func TestUndecodableSourceFails(t *testing.T) {
	_, err := Transcode([]byte("definitely not an image"), StrategyNearest)
	if !errors.Is(err, domain.ErrTranscodeFailed) {
		t.Fatalf("expected ErrTranscodeFailed, got %v", err)
	}
}
