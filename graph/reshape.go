package graph

import (
	"fmt"

	"github.com/advancedclimatesystems/gonnx/onnx"
)

// OutputLookupError is returned when a descriptor does not name exactly one
// of the graph's declared outputs.
type OutputLookupError struct {
	Name    string
	Matches int
	// Repeated is set when the name appears in more than one descriptor.
	Repeated bool
}

func (e *OutputLookupError) Error() string {
	if e.Repeated {
		return fmt.Sprintf("output %s is described more than once", e.Name)
	}
	if e.Matches == 0 {
		return fmt.Sprintf("output %s not found in graph outputs", e.Name)
	}
	return fmt.Sprintf("output %s matches %d graph outputs, expected exactly one", e.Name, e.Matches)
}

// ReshapeOutputs republishes every described output with a leading batch
// axis. For each descriptor an INT64 initializer <name>_axes holding 0 and an
// Unsqueeze node producing <name>_unsqueezed are appended, and the new output
// is declared with shape [1]+template. The original declarations are removed
// afterwards, so the graph only exposes the _unsqueezed variants of the
// described outputs, in descriptor order.
//
// All descriptors are checked before the graph is touched: on error the graph
// is left as it was.
func ReshapeOutputs(graph *onnx.GraphProto, descriptors []OutputDescriptor) error {
	if graph == nil {
		return fmt.Errorf("cannot reshape outputs of a nil graph")
	}

	seen := make(map[string]bool, len(descriptors))
	for _, descriptor := range descriptors {
		if seen[descriptor.Name] {
			return &OutputLookupError{Name: descriptor.Name, Matches: countOutputs(graph, descriptor.Name), Repeated: true}
		}
		seen[descriptor.Name] = true
		if matches := countOutputs(graph, descriptor.Name); matches != 1 {
			return &OutputLookupError{Name: descriptor.Name, Matches: matches}
		}
	}

	nodes := make([]*onnx.NodeProto, 0, len(descriptors))
	for _, descriptor := range descriptors {
		graph.Initializer = append(graph.Initializer, &onnx.TensorProto{
			Name:      descriptor.AxesName(),
			DataType:  int32(onnx.TensorProto_INT64),
			Dims:      []int64{1},
			Int64Data: []int64{0},
		})
		nodes = append(nodes, &onnx.NodeProto{
			OpType: "Unsqueeze",
			Input:  []string{descriptor.Name, descriptor.AxesName()},
			Output: []string{descriptor.UnsqueezedName()},
		})
	}
	graph.Node = append(graph.Node, nodes...)

	for _, descriptor := range descriptors {
		graph.Output = append(graph.Output, tensorValueInfo(descriptor.UnsqueezedName(), descriptor.Kind.DataType(), descriptor.Shape.Batched()))
	}

	kept := graph.Output[:0]
	for _, output := range graph.Output {
		if !seen[output.GetName()] {
			kept = append(kept, output)
		}
	}
	graph.Output = kept
	return nil
}

func countOutputs(graph *onnx.GraphProto, name string) int {
	matches := 0
	for _, output := range graph.GetOutput() {
		if output.GetName() == name {
			matches++
		}
	}
	return matches
}

// tensorValueInfo builds a tensor value info. Dimensions equal to Detections
// are left without value or parameter, which is how an unbounded axis is
// declared.
func tensorValueInfo(name string, elemType int32, shape Shape) *onnx.ValueInfoProto {
	dims := make([]*onnx.TensorShapeProto_Dimension, len(shape))
	for i, d := range shape {
		if d == Detections {
			dims[i] = &onnx.TensorShapeProto_Dimension{}
		} else {
			dims[i] = &onnx.TensorShapeProto_Dimension{
				Value: &onnx.TensorShapeProto_Dimension_DimValue{DimValue: d},
			}
		}
	}
	return &onnx.ValueInfoProto{
		Name: name,
		Type: &onnx.TypeProto{
			Value: &onnx.TypeProto_TensorType{
				TensorType: &onnx.TypeProto_Tensor{
					ElemType: elemType,
					Shape:    &onnx.TensorShapeProto{Dim: dims},
				},
			},
		},
	}
}
