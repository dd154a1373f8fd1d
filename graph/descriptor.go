package graph

import (
	"fmt"
	"strings"

	"github.com/advancedclimatesystems/gonnx/onnx"
)

// Detections marks the variable-length axis of a shape template. Exported
// detection graphs emit one row per detected object along this axis.
const Detections int64 = -1

// ElementKind is the element type an output descriptor publishes.
type ElementKind int

const (
	Float ElementKind = iota
	Label
)

func (k ElementKind) String() string {
	switch k {
	case Float:
		return "float"
	case Label:
		return "int64"
	}
	return fmt.Sprintf("ElementKind(%d)", int(k))
}

// DataType returns the ONNX tensor data type for the kind.
func (k ElementKind) DataType() int32 {
	if k == Label {
		return int32(onnx.TensorProto_INT64)
	}
	return int32(onnx.TensorProto_FLOAT)
}

// Shape is a shape template. Entries equal to Detections render as an
// unbounded dimension.
type Shape []int64

// NewShape returns a Shape with the given dimensions.
func NewShape(dimensions ...int64) Shape {
	return dimensions
}

// Batched returns the template with a leading batch axis of size one.
func (s Shape) Batched() Shape {
	return append(Shape{1}, s...)
}

func (s Shape) String() string {
	dims := make([]string, len(s))
	for i, d := range s {
		if d == Detections {
			dims[i] = "None"
		} else {
			dims[i] = fmt.Sprintf("%d", d)
		}
	}
	return "[" + strings.Join(dims, ",") + "]"
}

// OutputDescriptor declares how a family's ragged output is republished.
type OutputDescriptor struct {
	Name  string
	Kind  ElementKind
	Shape Shape
}

// UnsqueezedName is the name the output is republished under.
func (d OutputDescriptor) UnsqueezedName() string {
	return d.Name + "_unsqueezed"
}

// AxesName is the name of the initializer holding the inserted axis.
func (d OutputDescriptor) AxesName() string {
	return d.Name + "_axes"
}

// DetectionOutputs returns the boxes/labels/scores descriptors in the given
// order. It panics on any other name, as descriptor lists are declared
// statically.
func DetectionOutputs(names ...string) []OutputDescriptor {
	descriptors := make([]OutputDescriptor, 0, len(names))
	for _, name := range names {
		switch name {
		case "boxes":
			descriptors = append(descriptors, OutputDescriptor{Name: name, Kind: Float, Shape: NewShape(Detections, 4)})
		case "labels":
			descriptors = append(descriptors, OutputDescriptor{Name: name, Kind: Label, Shape: NewShape(Detections)})
		case "scores":
			descriptors = append(descriptors, OutputDescriptor{Name: name, Kind: Float, Shape: NewShape(Detections)})
		default:
			panic(fmt.Sprintf("graph: %q is not a detection output (boxes, labels or scores)", name))
		}
	}
	return descriptors
}
