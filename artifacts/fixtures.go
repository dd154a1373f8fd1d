package artifacts

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/knights-analytics/zooexport/backends"
	"github.com/knights-analytics/zooexport/util"
)

// ClassificationFixture maps every category to its softmax probability.
type ClassificationFixture map[string]float64

// NewClassificationFixture applies softmax to the first row of [batch, classes]
// logits and zips it with the categories. A category listed twice keeps the
// probability of its last index.
func NewClassificationFixture(categories []string, logits *backends.Tensor) (ClassificationFixture, error) {
	if logits == nil {
		return nil, fmt.Errorf("classification output is missing")
	}
	if len(logits.Shape) != 2 || logits.IsInt() {
		return nil, fmt.Errorf("classification output %s: expected float [batch, classes], got shape %v", logits.Name, logits.Shape)
	}
	classes := int(logits.Shape[1])
	if classes != len(categories) {
		return nil, fmt.Errorf("classification output %s has %d classes but %d categories are declared", logits.Name, classes, len(categories))
	}
	if logits.Len() < classes {
		return nil, fmt.Errorf("classification output %s is empty", logits.Name)
	}

	scores := util.SoftMax(logits.Float32[:classes])
	fixture := make(ClassificationFixture, classes)
	for i, category := range categories {
		fixture[category] = scores[i]
	}
	return fixture, nil
}

// TensorFixture is a tensor dumped with its shape.
type TensorFixture struct {
	Shape []int64   `json:"shape"`
	Data  []float64 `json:"data"`
}

// DetectionFixture holds the raw outputs of a detection family together with
// the category name of every detected label.
type DetectionFixture struct {
	Outputs    map[string]TensorFixture `json:"outputs"`
	LabelNames []string                 `json:"label_names,omitempty"`
}

// NewDetectionFixture dumps the named outputs. labelsOutput names the output
// carrying class indices; those are resolved against the categories.
func NewDetectionFixture(categories []string, outputs map[string]*backends.Tensor, outputNames []string, labelsOutput string) (*DetectionFixture, error) {
	fixture := &DetectionFixture{Outputs: make(map[string]TensorFixture, len(outputNames))}
	for _, name := range outputNames {
		output, ok := outputs[name]
		if !ok {
			return nil, fmt.Errorf("output %s is missing from the model results", name)
		}
		fixture.Outputs[name] = TensorFixture{Shape: output.Shape, Data: output.Values()}

		if name != labelsOutput {
			continue
		}
		if !output.IsInt() {
			return nil, fmt.Errorf("labels output %s must hold integers", name)
		}
		fixture.LabelNames = make([]string, 0, len(output.Int64))
		for _, label := range output.Int64 {
			if label < 0 || int(label) >= len(categories) {
				return nil, fmt.Errorf("label %d is outside the %d declared categories", label, len(categories))
			}
			fixture.LabelNames = append(fixture.LabelNames, categories[label])
		}
	}
	return fixture, nil
}

// SegmentationFixture maps every category to the share of pixels assigned to
// it by the per-pixel argmax.
type SegmentationFixture map[string]float64

// NewSegmentationFixture reduces [batch, classes, height, width] scores of
// the first batch element.
func NewSegmentationFixture(categories []string, scores *backends.Tensor) (SegmentationFixture, error) {
	if scores == nil {
		return nil, fmt.Errorf("segmentation output is missing")
	}
	if len(scores.Shape) != 4 || scores.IsInt() {
		return nil, fmt.Errorf("segmentation output %s: expected float [batch, classes, height, width], got shape %v", scores.Name, scores.Shape)
	}
	classes := int(scores.Shape[1])
	pixels := int(scores.Shape[2] * scores.Shape[3])
	if classes != len(categories) {
		return nil, fmt.Errorf("segmentation output %s has %d classes but %d categories are declared", scores.Name, classes, len(categories))
	}
	if pixels == 0 || scores.Len() < classes*pixels {
		return nil, fmt.Errorf("segmentation output %s is empty", scores.Name)
	}

	counts := make([]int, classes)
	pixelScores := make([]float32, classes)
	for p := range pixels {
		for c := range classes {
			pixelScores[c] = scores.Float32[c*pixels+p]
		}
		best, _, err := util.ArgMax(pixelScores)
		if err != nil {
			return nil, err
		}
		counts[best]++
	}

	fixture := make(SegmentationFixture, classes)
	for i, category := range categories {
		fixture[category] = float64(counts[i]) / float64(pixels)
	}
	return fixture, nil
}

func WriteFixture(ctx context.Context, path string, fixture any) error {
	b, err := jsoniter.Marshal(fixture)
	if err != nil {
		return fmt.Errorf("failed to encode fixture %s: %w", path, err)
	}
	return util.WriteFileBytes(ctx, path, b)
}

func ReadFixture(ctx context.Context, path string, fixture any) error {
	b, err := util.ReadFileBytes(ctx, path)
	if err != nil {
		return err
	}
	return jsoniter.Unmarshal(b, fixture)
}
