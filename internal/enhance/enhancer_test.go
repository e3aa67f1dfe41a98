package enhance

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"fitroom-server/internal/domain"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 37), G: uint8(y * 53), B: uint8((x + y) * 11), A: 255})
		}
	}
	return img
}

func TestApplyPreservesDimensions(t *testing.T) {
	for _, size := range []struct{ w, h int }{{1, 1}, {3, 7}, {64, 48}} {
		out := Apply(testImage(size.w, size.h))
		b := out.Bounds()
		if b.Dx() != size.w || b.Dy() != size.h {
			t.Fatalf("bounds %dx%d, want %dx%d", b.Dx(), b.Dy(), size.w, size.h)
		}
	}
}

func TestApplyIsDeterministic(t *testing.T) {
	src := testImage(16, 16)
	first := Apply(src)
	second := Apply(src)
	if !bytes.Equal(first.Pix, second.Pix) {
		t.Fatalf("two runs over the same input differ")
	}
}

func TestEncodeJPEGRoundTrip(t *testing.T) {
	enhanced := Apply(testImage(10, 12))

	data, err := EncodeJPEG(enhanced, ProcessedQuality)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("empty jpeg output")
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("decode encoded output: %v", err)
	}
	b := decoded.Bounds()
	if b.Dx() != 10 || b.Dy() != 12 {
		t.Fatalf("decoded bounds %dx%d", b.Dx(), b.Dy())
	}
}

func TestDecodeAcceptsPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(4, 4)); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if _, err := Decode(buf.Bytes()); err != nil {
		t.Fatalf("decode png: %v", err)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not an image"))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
