// Package zoo reaches the pretrained model zoo: the weights metadata of a
// model variant (categories and preprocessing transforms) and its graph
// export.
package zoo

import (
	"context"

	"github.com/knights-analytics/zooexport/backends"
)

// Transforms describes the preprocessing the pretrained weights expect on top
// of the plain to-tensor conversion. Zero values disable a step.
type Transforms struct {
	ResizeSize int       `json:"resize_size"`
	CropSize   int       `json:"crop_size"`
	Mean       []float32 `json:"mean"`
	Std        []float32 `json:"std"`
}

// Normalizes reports whether the transforms carry a mean/std normalization.
func (t Transforms) Normalizes() bool {
	return len(t.Mean) == 3 && len(t.Std) == 3
}

// Weights is the metadata published with a pretrained model.
type Weights struct {
	Categories []string   `json:"categories"`
	Transforms Transforms `json:"transforms"`
}

// Zoo is the model zoo together with its graph exporter.
type Zoo interface {
	// Weights returns the metadata of the variant's default weights.
	Weights(ctx context.Context, variant string) (*Weights, error)
	// Export returns the serialized ONNX graph of the variant, traced with
	// the given sample input.
	Export(ctx context.Context, variant string, sample *backends.Tensor) ([]byte, error)
}
