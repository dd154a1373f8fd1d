package imageutil

import (
	"bytes"
	"context"
	"fmt"
	"image"

	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"

	"github.com/knights-analytics/zooexport/util"
)

func LoadImage(ctx context.Context, path string) (image.Image, error) {
	b, err := util.ReadFileBytes(ctx, path)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

type PreprocessStep interface {
	Apply(img image.Image) (image.Image, error)
}

// ExactResizePreprocessor resizes to a fixed width and height, ignoring the
// aspect ratio.
type ExactResizePreprocessor struct {
	width  int
	height int
}

func ExactResizeStep(width, height int) *ExactResizePreprocessor {
	return &ExactResizePreprocessor{width: width, height: height}
}

func (s *ExactResizePreprocessor) Apply(img image.Image) (image.Image, error) {
	if s.width <= 0 || s.height <= 0 {
		return nil, fmt.Errorf("invalid resize target %dx%d", s.width, s.height)
	}
	return resize.Resize(uint(s.width), uint(s.height), img, resize.Bilinear), nil
}

// ResizePreprocessor resizes the shorter side to targetSize, keeping the
// aspect ratio.
type ResizePreprocessor struct {
	targetSize int
}

func ResizeStep(targetSize int) *ResizePreprocessor {
	return &ResizePreprocessor{targetSize: targetSize}
}

func (s *ResizePreprocessor) Apply(img image.Image) (image.Image, error) {
	if s.targetSize <= 0 {
		return nil, fmt.Errorf("invalid resize target %d", s.targetSize)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	var newW, newH int
	if w < h {
		newW = s.targetSize
		newH = int(float32(h) * float32(s.targetSize) / float32(w))
	} else {
		newH = s.targetSize
		newW = int(float32(w) * float32(s.targetSize) / float32(h))
	}
	return resize.Resize(uint(newW), uint(newH), img, resize.Bilinear), nil
}

func CenterCropStep(targetWidth, targetHeight int) *CenterCropPreprocessor {
	return &CenterCropPreprocessor{targetWidth: targetWidth, targetHeight: targetHeight}
}

type CenterCropPreprocessor struct {
	targetWidth  int
	targetHeight int
}

func (s *CenterCropPreprocessor) Apply(img image.Image) (image.Image, error) {
	bounds := img.Bounds()
	if s.targetWidth > bounds.Dx() || s.targetHeight > bounds.Dy() {
		return nil, fmt.Errorf("cannot crop %dx%d image to %dx%d", bounds.Dx(), bounds.Dy(), s.targetWidth, s.targetHeight)
	}
	x0 := bounds.Min.X + (bounds.Dx()-s.targetWidth)/2
	y0 := bounds.Min.Y + (bounds.Dy()-s.targetHeight)/2
	rect := image.Rect(0, 0, s.targetWidth, s.targetHeight)
	dst := image.NewRGBA(rect)
	for y := 0; y < s.targetHeight; y++ {
		for x := 0; x < s.targetWidth; x++ {
			dst.Set(x, y, img.At(x0+x, y0+y))
		}
	}
	return dst, nil
}

type NormalizationStep interface {
	Apply(r, g, b float32) (float32, float32, float32)
}

type PixelNormalizationPreprocessor struct {
	mean [3]float32
	std  [3]float32
}

func (s *PixelNormalizationPreprocessor) Apply(r, g, b float32) (float32, float32, float32) {
	r = (r - s.mean[0]) / s.std[0]
	g = (g - s.mean[1]) / s.std[1]
	b = (b - s.mean[2]) / s.std[2]
	return r, g, b
}

func PixelNormalizationStep(mean, std [3]float32) *PixelNormalizationPreprocessor {
	return &PixelNormalizationPreprocessor{mean: mean, std: std}
}

type RescalePreprocessor struct{}

func (s *RescalePreprocessor) Apply(r, g, b float32) (float32, float32, float32) {
	scale := float32(1.0 / 255.0)
	return r * scale, g * scale, b * scale
}

func RescaleStep() *RescalePreprocessor {
	return &RescalePreprocessor{}
}

// Pipeline chains image steps and pixel steps into a single NCHW tensor
// with a batch of one.
type Pipeline struct {
	PreprocessSteps    []PreprocessStep
	NormalizationSteps []NormalizationStep
}

// Tensor applies the pipeline and returns the flat float32 backing data
// together with its [1,3,H,W] shape.
func (p Pipeline) Tensor(img image.Image) ([]float32, []int64, error) {
	processed := img
	for _, step := range p.PreprocessSteps {
		var err error
		processed, err = step.Apply(processed)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to apply preprocessing step: %w", err)
		}
	}

	bounds := processed.Bounds()
	hh, ww := bounds.Dy(), bounds.Dx()
	plane := hh * ww
	data := make([]float32, 3*plane)
	for y := range hh {
		for x := range ww {
			r, g, b, _ := processed.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			rf := float32(r >> 8)
			gf := float32(g >> 8)
			bf := float32(b >> 8)
			for _, step := range p.NormalizationSteps {
				rf, gf, bf = step.Apply(rf, gf, bf)
			}
			offset := y*ww + x
			data[offset] = rf
			data[plane+offset] = gf
			data[2*plane+offset] = bf
		}
	}
	return data, []int64{1, 3, int64(hh), int64(ww)}, nil
}
