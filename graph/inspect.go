package graph

import (
	"fmt"
	"strings"

	"github.com/advancedclimatesystems/gonnx/onnx"
)

// ValueInfo describes a declared graph input or output.
type ValueInfo struct {
	Name       string
	ElemType   string
	Dimensions []string
}

func (v ValueInfo) String() string {
	return fmt.Sprintf("%s %s [%s]", v.Name, v.ElemType, strings.Join(v.Dimensions, ","))
}

// Inputs lists the declared inputs of the graph.
func Inputs(graph *onnx.GraphProto) []ValueInfo {
	return describe(graph.GetInput())
}

// Outputs lists the declared outputs of the graph in declaration order.
func Outputs(graph *onnx.GraphProto) []ValueInfo {
	return describe(graph.GetOutput())
}

// OutputNames returns the names of the graph outputs.
func OutputNames(graph *onnx.GraphProto) []string {
	names := make([]string, 0, len(graph.GetOutput()))
	for _, output := range graph.GetOutput() {
		names = append(names, output.GetName())
	}
	return names
}

func describe(values []*onnx.ValueInfoProto) []ValueInfo {
	infos := make([]ValueInfo, 0, len(values))
	for _, value := range values {
		info := ValueInfo{Name: value.GetName()}
		tensorType := value.GetType().GetTensorType()
		if tensorType != nil {
			info.ElemType = onnx.TensorProto_DataType(tensorType.GetElemType()).String()
			for _, dim := range tensorType.GetShape().GetDim() {
				info.Dimensions = append(info.Dimensions, renderDim(dim))
			}
		}
		infos = append(infos, info)
	}
	return infos
}

func renderDim(dim *onnx.TensorShapeProto_Dimension) string {
	switch v := dim.GetValue().(type) {
	case *onnx.TensorShapeProto_Dimension_DimValue:
		return fmt.Sprintf("%d", v.DimValue)
	case *onnx.TensorShapeProto_Dimension_DimParam:
		return v.DimParam
	}
	return "None"
}
