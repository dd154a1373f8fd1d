package backends

import (
	"fmt"

	"github.com/advancedclimatesystems/gonnx"
	"gorgonia.org/tensor"
)

// GoRuntime runs graphs with the pure Go gonnx interpreter. It covers far
// fewer operators than onnxruntime; classification graphs are its main use.
type GoRuntime struct{}

func NewGoRuntime() *GoRuntime {
	return &GoRuntime{}
}

func (r *GoRuntime) Name() string {
	return "GO"
}

func (r *GoRuntime) Run(onnxBytes []byte, inputName string, input *Tensor) (map[string]*Tensor, error) {
	model, err := gonnx.NewModelFromBytes(onnxBytes)
	if err != nil {
		return nil, err
	}

	shape := make([]int, len(input.Shape))
	for i, d := range input.Shape {
		shape[i] = int(d)
	}
	inputMap := map[string]tensor.Tensor{
		inputName: tensor.New(
			tensor.Of(tensor.Float32),
			tensor.WithShape(shape...),
			tensor.WithBacking(input.Float32),
		),
	}

	tensors, err := model.Run(inputMap)
	if err != nil {
		return nil, err
	}

	outputs := make(map[string]*Tensor, len(tensors))
	for name, t := range tensors {
		converted, convertErr := convertGoTensor(name, t)
		if convertErr != nil {
			return nil, convertErr
		}
		outputs[name] = converted
	}
	return outputs, nil
}

func convertGoTensor(name string, t tensor.Tensor) (*Tensor, error) {
	dims := t.Shape()
	shape := make([]int64, len(dims))
	for i, d := range dims {
		shape[i] = int64(d)
	}
	switch data := t.Data().(type) {
	case []float32:
		return &Tensor{Name: name, Type: Float32Type, Shape: shape, Float32: append([]float32(nil), data...)}, nil
	case []int64:
		return &Tensor{Name: name, Type: Int64Type, Shape: shape, Int64: append([]int64(nil), data...)}, nil
	case float32:
		return &Tensor{Name: name, Type: Float32Type, Shape: shape, Float32: []float32{data}}, nil
	case int64:
		return &Tensor{Name: name, Type: Int64Type, Shape: shape, Int64: []int64{data}}, nil
	}
	return nil, fmt.Errorf("output %s: type %T is not supported", name, t.Data())
}

func (r *GoRuntime) Destroy() error {
	return nil
}
