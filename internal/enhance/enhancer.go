// Package enhance applies the fixed post-processing pipeline used for
// uploaded photos: saturation, contrast, then one sharpening pass.
package enhance

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"fitroom-server/internal/domain"
)

// JPEG encode qualities for the two variants the service produces.
const (
	ProcessedQuality  = 90
	ModelPhotoQuality = 95
)

// Fixed adjustment amounts. imaging expresses saturation and contrast as
// percentages, so these match boost factors of 1.2 and 1.1.
const (
	saturationBoost = 20
	contrastBoost   = 10
)

// sharpenKernel is the classic 3x3 sharpen (center 32, neighbors -2, scale
// 16) pre-divided for convolution.
var sharpenKernel = [9]float64{
	-0.125, -0.125, -0.125,
	-0.125, 2.0, -0.125,
	-0.125, -0.125, -0.125,
}

// Decode parses uploaded image bytes. JPEG and PNG decoders are registered
// via imaging's imports.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("enhance: decode: %w: %w", err, domain.ErrValidation)
	}
	return img, nil
}

// Apply runs the enhancement pipeline. It is deterministic and total over
// any decoded image: the input is first normalized to an RGB-backed buffer,
// then saturation, contrast and sharpening are applied in that order.
func Apply(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	out = imaging.AdjustSaturation(out, saturationBoost)
	out = imaging.AdjustContrast(out, contrastBoost)
	out = imaging.Convolve3x3(out, sharpenKernel, nil)
	return out
}

// EncodeJPEG serializes an image as JPEG at the given quality.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("enhance: encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
