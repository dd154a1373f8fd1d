package graph

import (
	"errors"
	"fmt"

	"github.com/advancedclimatesystems/gonnx/onnx"
	"google.golang.org/protobuf/proto"
)

// LoadModel decodes a serialized ONNX model.
func LoadModel(onnxBytes []byte) (*onnx.ModelProto, error) {
	model := &onnx.ModelProto{}
	if err := proto.Unmarshal(onnxBytes, model); err != nil {
		return nil, fmt.Errorf("failed to decode onnx model: %w", err)
	}
	if model.GetGraph() == nil {
		return nil, errors.New("onnx model has no graph")
	}
	return model, nil
}

// MarshalModel serializes the model back to the ONNX wire format.
func MarshalModel(model *onnx.ModelProto) ([]byte, error) {
	onnxBytes, err := proto.Marshal(model)
	if err != nil {
		return nil, fmt.Errorf("failed to encode onnx model: %w", err)
	}
	return onnxBytes, nil
}

// ReshapeModelBytes decodes the model, reshapes its outputs and encodes it
// again.
func ReshapeModelBytes(onnxBytes []byte, descriptors []OutputDescriptor) ([]byte, error) {
	model, err := LoadModel(onnxBytes)
	if err != nil {
		return nil, err
	}
	if err = ReshapeOutputs(model.GetGraph(), descriptors); err != nil {
		return nil, err
	}
	return MarshalModel(model)
}
