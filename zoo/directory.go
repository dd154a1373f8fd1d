package zoo

import (
	"context"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/knights-analytics/zooexport/backends"
	"github.com/knights-analytics/zooexport/util"
)

const (
	WeightsFilename = "weights.json"
	ModelFilename   = "model.onnx"
)

// DirectoryZoo serves framework exports staged under a root directory, one
// folder per variant holding weights.json and model.onnx. The root can be a
// local path or an s3:// URL.
type DirectoryZoo struct {
	Root string
}

func NewDirectoryZoo(root string) *DirectoryZoo {
	return &DirectoryZoo{Root: root}
}

func (z *DirectoryZoo) Weights(ctx context.Context, variant string) (*Weights, error) {
	path := util.PathJoinSafe(z.Root, variant, WeightsFilename)
	b, err := util.ReadFileBytes(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights of %s: %w", variant, err)
	}
	weights := &Weights{}
	if err = jsoniter.Unmarshal(b, weights); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(weights.Categories) == 0 {
		return nil, fmt.Errorf("weights of %s declare no categories", variant)
	}
	if err = validateTransforms(weights.Transforms); err != nil {
		return nil, fmt.Errorf("weights of %s: %w", variant, err)
	}
	return weights, nil
}

// Export reads the staged graph. The staged graph was traced by the framework
// ahead of time, so the sample only has to be present.
func (z *DirectoryZoo) Export(ctx context.Context, variant string, sample *backends.Tensor) ([]byte, error) {
	if sample == nil {
		return nil, errors.New("a sample input is required to export a model")
	}
	path := util.PathJoinSafe(z.Root, variant, ModelFilename)
	exists, err := util.FileExists(ctx, path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("no export staged for %s at %s", variant, path)
	}
	return util.ReadFileBytes(ctx, path)
}

func validateTransforms(t Transforms) error {
	if (len(t.Mean) > 0 || len(t.Std) > 0) && !t.Normalizes() {
		return fmt.Errorf("normalization needs three mean and three std values, got %d and %d", len(t.Mean), len(t.Std))
	}
	for _, s := range t.Std {
		if s == 0 {
			return errors.New("normalization std values must be non zero")
		}
	}
	if t.ResizeSize < 0 || t.CropSize < 0 {
		return errors.New("resize and crop sizes must not be negative")
	}
	return nil
}
