package zoo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knights-analytics/zooexport/backends"
)

func stageVariant(t *testing.T, root, variant, weights string, model []byte) {
	t.Helper()
	dir := filepath.Join(root, variant)
	require.NoError(t, os.MkdirAll(dir, os.ModePerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, WeightsFilename), []byte(weights), 0o644))
	if model != nil {
		require.NoError(t, os.WriteFile(filepath.Join(dir, ModelFilename), model, 0o644))
	}
}

func TestDirectoryZooWeights(t *testing.T) {
	root := t.TempDir()
	stageVariant(t, root, "squeezenet1_1", `{
		"categories": ["tench", "goldfish", "great white shark"],
		"transforms": {"resize_size": 256, "crop_size": 224, "mean": [0.485, 0.456, 0.406], "std": [0.229, 0.224, 0.225]}
	}`, nil)

	weights, err := NewDirectoryZoo(root).Weights(context.Background(), "squeezenet1_1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tench", "goldfish", "great white shark"}, weights.Categories)
	assert.Equal(t, 256, weights.Transforms.ResizeSize)
	assert.Equal(t, 224, weights.Transforms.CropSize)
	assert.True(t, weights.Transforms.Normalizes())
}

func TestDirectoryZooWeightsInvalid(t *testing.T) {
	root := t.TempDir()
	stageVariant(t, root, "empty", `{"categories": []}`, nil)
	stageVariant(t, root, "badnorm", `{"categories": ["a"], "transforms": {"mean": [0.5], "std": [0.5]}}`, nil)
	stageVariant(t, root, "zerostd", `{"categories": ["a"], "transforms": {"mean": [0.5, 0.5, 0.5], "std": [0.5, 0, 0.5]}}`, nil)
	stageVariant(t, root, "broken", `{"categories": [`, nil)

	z := NewDirectoryZoo(root)
	for _, variant := range []string{"empty", "badnorm", "zerostd", "broken", "missing"} {
		_, err := z.Weights(context.Background(), variant)
		assert.Error(t, err, variant)
	}
}

func TestDirectoryZooExport(t *testing.T) {
	root := t.TempDir()
	stageVariant(t, root, "fasterrcnn_resnet50_fpn", `{"categories": ["__background__", "person"]}`, []byte("onnx"))
	z := NewDirectoryZoo(root)
	sample := &backends.Tensor{Name: "input", Shape: []int64{1}, Float32: []float32{0}}

	b, err := z.Export(context.Background(), "fasterrcnn_resnet50_fpn", sample)
	require.NoError(t, err)
	assert.Equal(t, []byte("onnx"), b)

	_, err = z.Export(context.Background(), "fasterrcnn_resnet50_fpn", nil)
	assert.Error(t, err)

	_, err = z.Export(context.Background(), "ssdlite320_mobilenet_v3_large", sample)
	assert.Error(t, err)
}
