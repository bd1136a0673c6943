package pixnorm

import (
	"bytes"
	"image"
	"os"
	"testing"

	"exiffix/lib/exiftag"
	fl "exiffix/lib/filelogger"
	"exiffix/lib/logx"
	"exiffix/lib/normalizer"
	"exiffix/lib/utils/testhelper"
)

func newNorm(t *testing.T, cfg Config) normalizer.Normalizer {
	t.Helper()
	lgr, err := fl.NewFileLogger(os.Stderr, logx.ERROR, fl.ColorOff)
	if err != nil {
		t.Fatalf("fl.NewFileLogger err: %v", err)
	}
	n, err := cfg.BuildNormalizer(lgr)
	if err != nil {
		t.Fatalf("BuildNormalizer err: %v", err)
	}
	return n
}

func decodeDims(t *testing.T, b []byte) (int, int) {
	t.Helper()
	cfg, _, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestRotationSwapsDimensions(t *testing.T) {
	n := newNorm(t, DefaultConfig)

	// orientation 6: rotate 90 cw, 100x200 must come out 200x100
	in := testhelper.JPEG(100, 200, 6, false)
	out, err := n.Normalize(in, 6)
	if err != nil {
		t.Fatalf("Normalize err: %v", err)
	}

	w, h := decodeDims(t, out)
	if w != 200 || h != 100 {
		t.Fatalf("got %dx%d, want 200x100", w, h)
	}
	if got := exiftag.Orient(out); got != 1 {
		t.Fatalf("output orientation %d, want 1", got)
	}
}

func TestNoSwapDimensions(t *testing.T) {
	n := newNorm(t, DefaultConfig)

	for _, code := range []int{2, 3, 4} {
		in := testhelper.JPEG(60, 40, uint16(code), false)
		out, err := n.Normalize(in, code)
		if err != nil {
			t.Fatalf("code %d: %v", code, err)
		}
		w, h := decodeDims(t, out)
		if w != 60 || h != 40 {
			t.Fatalf("code %d: got %dx%d, want 60x40", code, w, h)
		}
	}
}

func TestRotatedContent(t *testing.T) {
	n := newNorm(t, DefaultConfig)

	// gradient: red grows left to right. after 180 rotation the red
	// channel must grow right to left.
	in := testhelper.JPEG(64, 64, 3, false)
	out, err := n.Normalize(in, 3)
	if err != nil {
		t.Fatalf("Normalize err: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	lr, _, _, _ := img.At(2, 32).RGBA()
	rr, _, _, _ := img.At(61, 32).RGBA()
	if lr <= rr {
		t.Fatalf("left red %d <= right red %d; content not rotated", lr, rr)
	}
}

func TestDecodeFailure(t *testing.T) {
	n := newNorm(t, DefaultConfig)

	_, err := n.Normalize([]byte("this is not an image"), 6)
	if err == nil {
		t.Fatal("corrupt input did not error")
	}
}

func TestSizeGuards(t *testing.T) {
	cfg := DefaultConfig
	cfg.MaxPixels = 100
	n := newNorm(t, cfg)

	_, err := n.Normalize(testhelper.JPEG(64, 64, 6, false), 6)
	if err != ErrTooLarge {
		t.Fatalf("got %v, want ErrTooLarge", err)
	}

	cfg = DefaultConfig
	cfg.MaxFileSize = 16
	n = newNorm(t, cfg)

	_, err = n.Normalize(testhelper.JPEG(64, 64, 6, false), 6)
	if err != ErrTooLarge {
		t.Fatalf("got %v, want ErrTooLarge", err)
	}
}

func TestPNGDecodes(t *testing.T) {
	// png inputs normally short-circuit before reaching here, but the
	// decoder registration must still cover them
	n := newNorm(t, DefaultConfig)

	out, err := n.Normalize(testhelper.PNG(30, 20), 6)
	if err != nil {
		t.Fatalf("png: %v", err)
	}
	w, h := decodeDims(t, out)
	if w != 20 || h != 30 {
		t.Fatalf("png: got %dx%d, want 20x30", w, h)
	}
}
