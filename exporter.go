package zooexport

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/knights-analytics/zooexport/artifacts"
	"github.com/knights-analytics/zooexport/backends"
	"github.com/knights-analytics/zooexport/graph"
	"github.com/knights-analytics/zooexport/util"
	"github.com/knights-analytics/zooexport/util/imageutil"
	"github.com/knights-analytics/zooexport/zoo"
)

// Exporter turns zoo models into ONNX artifacts. It owns a runtime, so it
// must be destroyed with Destroy once done.
type Exporter struct {
	layout      artifacts.Layout
	zoo         zoo.Zoo
	runtime     backends.Runtime
	sampleImage string
	logger      *zap.Logger
}

// Result lists what an export wrote.
type Result struct {
	Family         Family
	ModelPath      string
	CategoriesPath string
	FixturePath    string
	Categories     []string
	Outputs        []graph.ValueInfo
}

func NewExporter(opts ...WithOption) (*Exporter, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	exporter := &Exporter{
		layout:      artifacts.Layout{ModelsDir: o.modelsDir, ResultsDir: o.resultsDir},
		zoo:         o.zoo,
		runtime:     o.runtime,
		sampleImage: o.sampleImage,
		logger:      o.logger,
	}
	if exporter.logger == nil {
		exporter.logger = zap.NewNop()
	}
	if exporter.zoo == nil {
		exporter.zoo = zoo.NewDirectoryZoo(o.zooPath)
	}
	if exporter.runtime == nil {
		runtime, err := backends.NewRuntime(o.backend, o.libraryPath)
		if err != nil {
			return nil, err
		}
		exporter.runtime = runtime
	}
	return exporter, nil
}

// Layout returns where the exporter writes artifacts.
func (e *Exporter) Layout() artifacts.Layout {
	return e.layout
}

// Export runs the whole export of one family: categories, sample input,
// graph export, golden fixture and, for detection families, the output
// reshaping. model.onnx is only written once every other step succeeded.
func (e *Exporter) Export(ctx context.Context, family Family) (*Result, error) {
	logger := e.logger.With(zap.String("task", family.Task), zap.String("model", family.Name))

	if err := e.layout.Prepare(ctx, family.Task, family.Name); err != nil {
		return nil, fmt.Errorf("failed to create output directories: %w", err)
	}

	weights, err := e.zoo.Weights(ctx, family.Name)
	if err != nil {
		return nil, err
	}
	categories := artifacts.NormalizeCategories(weights.Categories)

	result := &Result{
		Family:         family,
		ModelPath:      e.layout.ModelPath(family.Task, family.Name),
		CategoriesPath: e.layout.CategoriesPath(family.Task, family.Name),
		FixturePath:    e.layout.FixturePath(family.Task, family.Name),
		Categories:     categories,
	}

	if err = artifacts.WriteCategories(ctx, result.CategoriesPath, categories); err != nil {
		return nil, fmt.Errorf("failed to write categories: %w", err)
	}
	logger.Debug("categories written", zap.String("path", result.CategoriesPath), zap.Int("categories", len(categories)))

	sample, err := e.sampleInput(ctx, family, weights.Transforms)
	if err != nil {
		return nil, err
	}

	onnxBytes, err := e.zoo.Export(ctx, family.Name, sample)
	if err != nil {
		return nil, fmt.Errorf("failed to export %s: %w", family.Name, err)
	}

	outputs, err := e.runtime.Run(onnxBytes, family.InputName, sample)
	if err != nil {
		return nil, fmt.Errorf("failed to run %s with the %s runtime: %w", family.Name, e.runtime.Name(), err)
	}
	fixture, err := goldenFixture(family, categories, outputs)
	if err != nil {
		return nil, err
	}
	if err = artifacts.WriteFixture(ctx, result.FixturePath, fixture); err != nil {
		return nil, err
	}
	logger.Debug("fixture written", zap.String("path", result.FixturePath))

	model, err := graph.LoadModel(onnxBytes)
	if err != nil {
		return nil, err
	}
	if len(family.Descriptors) > 0 {
		if err = graph.ReshapeOutputs(model.GetGraph(), family.Descriptors); err != nil {
			return nil, fmt.Errorf("failed to reshape outputs of %s: %w", family.Name, err)
		}
		if onnxBytes, err = graph.MarshalModel(model); err != nil {
			return nil, err
		}
	}
	result.Outputs = graph.Outputs(model.GetGraph())

	if err = util.WriteFileBytes(ctx, result.ModelPath, onnxBytes); err != nil {
		return nil, fmt.Errorf("failed to write model: %w", err)
	}
	logger.Info("model exported",
		zap.String("path", result.ModelPath),
		zap.Strings("outputs", describeOutputs(result.Outputs)))
	return result, nil
}

func (e *Exporter) sampleInput(ctx context.Context, family Family, transforms zoo.Transforms) (*backends.Tensor, error) {
	img, err := imageutil.LoadImage(ctx, e.sampleImage)
	if err != nil {
		return nil, fmt.Errorf("failed to load sample image: %w", err)
	}
	data, shape, err := samplePipeline(family, transforms).Tensor(img)
	if err != nil {
		return nil, err
	}
	return backends.NewFloat32Tensor(family.InputName, shape, data)
}

// samplePipeline converts the image to a [0,1] tensor resized to the family
// input shape, then applies the transforms of the pretrained weights.
func samplePipeline(family Family, transforms zoo.Transforms) imageutil.Pipeline {
	pipeline := imageutil.Pipeline{
		PreprocessSteps:    []imageutil.PreprocessStep{imageutil.ExactResizeStep(family.InputShape[1], family.InputShape[0])},
		NormalizationSteps: []imageutil.NormalizationStep{imageutil.RescaleStep()},
	}
	if transforms.ResizeSize > 0 {
		pipeline.PreprocessSteps = append(pipeline.PreprocessSteps, imageutil.ResizeStep(transforms.ResizeSize))
	}
	if transforms.CropSize > 0 {
		pipeline.PreprocessSteps = append(pipeline.PreprocessSteps, imageutil.CenterCropStep(transforms.CropSize, transforms.CropSize))
	}
	if transforms.Normalizes() {
		pipeline.NormalizationSteps = append(pipeline.NormalizationSteps, imageutil.PixelNormalizationStep(
			[3]float32{transforms.Mean[0], transforms.Mean[1], transforms.Mean[2]},
			[3]float32{transforms.Std[0], transforms.Std[1], transforms.Std[2]},
		))
	}
	return pipeline
}

func goldenFixture(family Family, categories []string, outputs map[string]*backends.Tensor) (any, error) {
	switch {
	case family.Task == Classification:
		return artifacts.NewClassificationFixture(categories, outputs[family.OutputNames[0]])
	case family.Task == Segmentation:
		return artifacts.NewSegmentationFixture(categories, outputs[family.OutputNames[0]])
	case family.IsDetection():
		return artifacts.NewDetectionFixture(categories, outputs, family.OutputNames, "labels")
	}
	return nil, fmt.Errorf("no golden fixture defined for task %s", family.Task)
}

func describeOutputs(infos []graph.ValueInfo) []string {
	described := make([]string, len(infos))
	for i, info := range infos {
		described[i] = info.String()
	}
	return described
}

// Destroy releases the runtime.
func (e *Exporter) Destroy() error {
	if e.runtime == nil {
		return nil
	}
	err := e.runtime.Destroy()
	e.runtime = nil
	return err
}
