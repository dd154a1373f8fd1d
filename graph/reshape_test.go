package graph

import (
	"errors"
	"testing"

	"github.com/advancedclimatesystems/gonnx/onnx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

func dimParam(name string) *onnx.TensorShapeProto_Dimension {
	return &onnx.TensorShapeProto_Dimension{Value: &onnx.TensorShapeProto_Dimension_DimParam{DimParam: name}}
}

func dimValue(v int64) *onnx.TensorShapeProto_Dimension {
	return &onnx.TensorShapeProto_Dimension{Value: &onnx.TensorShapeProto_Dimension_DimValue{DimValue: v}}
}

func valueInfo(name string, elemType onnx.TensorProto_DataType, dims ...*onnx.TensorShapeProto_Dimension) *onnx.ValueInfoProto {
	return &onnx.ValueInfoProto{
		Name: name,
		Type: &onnx.TypeProto{Value: &onnx.TypeProto_TensorType{TensorType: &onnx.TypeProto_Tensor{
			ElemType: int32(elemType),
			Shape:    &onnx.TensorShapeProto{Dim: dims},
		}}},
	}
}

// detectionGraph mimics the raw export of a four class detector: batchless
// boxes, labels and scores with one row per detection.
func detectionGraph() *onnx.GraphProto {
	return &onnx.GraphProto{
		Name: "detector",
		Input: []*onnx.ValueInfoProto{
			valueInfo("input", onnx.TensorProto_FLOAT, dimValue(1), dimValue(3), dimValue(224), dimValue(224)),
		},
		Node: []*onnx.NodeProto{
			{OpType: "Identity", Input: []string{"input"}, Output: []string{"boxes"}},
			{OpType: "Identity", Input: []string{"input"}, Output: []string{"labels"}},
			{OpType: "Identity", Input: []string{"input"}, Output: []string{"scores"}},
		},
		Initializer: []*onnx.TensorProto{
			{Name: "weight", DataType: int32(onnx.TensorProto_FLOAT), Dims: []int64{4}, FloatData: []float32{1, 2, 3, 4}},
		},
		Output: []*onnx.ValueInfoProto{
			valueInfo("boxes", onnx.TensorProto_FLOAT, dimParam("detections"), dimValue(4)),
			valueInfo("labels", onnx.TensorProto_INT64, dimParam("detections")),
			valueInfo("scores", onnx.TensorProto_FLOAT, dimParam("detections")),
		},
	}
}

func TestReshapeOutputsDetection(t *testing.T) {
	graph := detectionGraph()
	err := ReshapeOutputs(graph, DetectionOutputs("boxes", "labels", "scores"))
	require.NoError(t, err)

	outputs := Outputs(graph)
	require.Len(t, outputs, 3)
	assert.Equal(t, ValueInfo{Name: "boxes_unsqueezed", ElemType: "FLOAT", Dimensions: []string{"1", "None", "4"}}, outputs[0])
	assert.Equal(t, ValueInfo{Name: "labels_unsqueezed", ElemType: "INT64", Dimensions: []string{"1", "None"}}, outputs[1])
	assert.Equal(t, ValueInfo{Name: "scores_unsqueezed", ElemType: "FLOAT", Dimensions: []string{"1", "None"}}, outputs[2])

	require.Len(t, graph.GetNode(), 6)
	for i, name := range []string{"boxes", "labels", "scores"} {
		node := graph.GetNode()[3+i]
		assert.Equal(t, "Unsqueeze", node.GetOpType())
		assert.Equal(t, []string{name, name + "_axes"}, node.GetInput())
		assert.Equal(t, []string{name + "_unsqueezed"}, node.GetOutput())
	}

	require.Len(t, graph.GetInitializer(), 4)
	for i, name := range []string{"boxes", "labels", "scores"} {
		axes := graph.GetInitializer()[1+i]
		assert.Equal(t, name+"_axes", axes.GetName())
		assert.Equal(t, int32(onnx.TensorProto_INT64), axes.GetDataType())
		assert.Equal(t, []int64{1}, axes.GetDims())
		assert.Equal(t, []int64{0}, axes.GetInt64Data())
	}

	// untouched parts of the graph
	assert.Equal(t, "input", graph.GetInput()[0].GetName())
	assert.Equal(t, "weight", graph.GetInitializer()[0].GetName())
}

func TestReshapeOutputsDescriptorOrder(t *testing.T) {
	graph := detectionGraph()
	require.NoError(t, ReshapeOutputs(graph, DetectionOutputs("boxes", "scores", "labels")))
	assert.Equal(t, []string{"boxes_unsqueezed", "scores_unsqueezed", "labels_unsqueezed"}, OutputNames(graph))
}

func TestReshapeOutputsKeepsUndescribedOutputs(t *testing.T) {
	graph := detectionGraph()
	require.NoError(t, ReshapeOutputs(graph, DetectionOutputs("boxes")))
	assert.Equal(t, []string{"labels", "scores", "boxes_unsqueezed"}, OutputNames(graph))
}

func TestReshapeOutputsTemplates(t *testing.T) {
	graph := detectionGraph()
	graph.Output = append(graph.Output,
		valueInfo("keypoints", onnx.TensorProto_FLOAT, dimParam("detections"), dimValue(17), dimValue(3)),
		valueInfo("masks", onnx.TensorProto_FLOAT, dimParam("detections"), dimValue(1), dimValue(224), dimValue(224)),
	)
	descriptors := []OutputDescriptor{
		{Name: "keypoints", Kind: Float, Shape: NewShape(Detections, 17, 3)},
		{Name: "masks", Kind: Float, Shape: NewShape(Detections, 1, 224, 224)},
	}
	require.NoError(t, ReshapeOutputs(graph, descriptors))

	outputs := Outputs(graph)
	require.Len(t, outputs, 5)
	assert.Equal(t, []string{"1", "None", "17", "3"}, outputs[3].Dimensions)
	assert.Equal(t, []string{"1", "None", "1", "224", "224"}, outputs[4].Dimensions)
}

func TestReshapeOutputsMissingName(t *testing.T) {
	graph := detectionGraph()
	before := proto.Clone(graph)

	err := ReshapeOutputs(graph, []OutputDescriptor{
		{Name: "boxes", Kind: Float, Shape: NewShape(Detections, 4)},
		{Name: "masks", Kind: Float, Shape: NewShape(Detections, 1, 224, 224)},
	})
	var lookupErr *OutputLookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, "masks", lookupErr.Name)
	assert.Equal(t, 0, lookupErr.Matches)
	assert.True(t, proto.Equal(before, graph), "a failed reshape must not modify the graph")
}

func TestReshapeOutputsAmbiguousName(t *testing.T) {
	graph := detectionGraph()
	graph.Output = append(graph.Output, valueInfo("scores", onnx.TensorProto_FLOAT, dimParam("detections")))

	err := ReshapeOutputs(graph, DetectionOutputs("scores"))
	var lookupErr *OutputLookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, 2, lookupErr.Matches)
}

func TestReshapeOutputsRepeatedDescriptor(t *testing.T) {
	graph := detectionGraph()
	err := ReshapeOutputs(graph, DetectionOutputs("boxes", "boxes"))
	var lookupErr *OutputLookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.True(t, lookupErr.Repeated)
	assert.Equal(t, 1, lookupErr.Matches)
	assert.Equal(t, "output boxes is described more than once", err.Error())
	assert.Len(t, graph.GetOutput(), 3)
}

func TestReshapeOutputsMissingNameMessage(t *testing.T) {
	err := ReshapeOutputs(detectionGraph(), []OutputDescriptor{{Name: "masks", Kind: Float, Shape: NewShape(Detections, 1, 224, 224)}})
	require.Error(t, err)
	assert.Equal(t, "output masks not found in graph outputs", err.Error())
}

func TestDetectionOutputsUnknownName(t *testing.T) {
	assert.Len(t, DetectionOutputs("scores", "boxes"), 2)
	assert.Panics(t, func() {
		DetectionOutputs("boxes", "lables")
	})
}

func TestReshapeOutputsTwiceFails(t *testing.T) {
	graph := detectionGraph()
	descriptors := DetectionOutputs("boxes", "labels", "scores")
	require.NoError(t, ReshapeOutputs(graph, descriptors))

	err := ReshapeOutputs(graph, descriptors)
	var lookupErr *OutputLookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, "boxes", lookupErr.Name)
}

func TestReshapeOutputsNilGraph(t *testing.T) {
	assert.Error(t, ReshapeOutputs(nil, DetectionOutputs("boxes")))
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "[1,None,4]", NewShape(Detections, 4).Batched().String())
	assert.Equal(t, "[1,None]", NewShape(Detections).Batched().String())
}
