package backends

import (
	"fmt"
)

// ElementType is the element type of a Tensor.
type ElementType int

const (
	Float32Type ElementType = iota
	Int64Type
)

func (e ElementType) String() string {
	if e == Int64Type {
		return "INT64"
	}
	return "FLOAT"
}

// Tensor is a runtime-neutral tensor value. Type selects which of Float32 and
// Int64 holds the row-major data; the other one is unused. The data slice may
// be nil when the tensor has no elements.
type Tensor struct {
	Name    string
	Type    ElementType
	Shape   []int64
	Float32 []float32
	Int64   []int64
}

// NewFloat32Tensor returns a float32 tensor after checking the data matches
// the shape.
func NewFloat32Tensor(name string, shape []int64, data []float32) (*Tensor, error) {
	if n := numElements(shape); n != len(data) {
		return nil, fmt.Errorf("tensor %s: shape %v needs %d elements, got %d", name, shape, n, len(data))
	}
	return &Tensor{Name: name, Type: Float32Type, Shape: shape, Float32: data}, nil
}

// NewInt64Tensor returns an int64 tensor after checking the data matches the
// shape.
func NewInt64Tensor(name string, shape []int64, data []int64) (*Tensor, error) {
	if n := numElements(shape); n != len(data) {
		return nil, fmt.Errorf("tensor %s: shape %v needs %d elements, got %d", name, shape, n, len(data))
	}
	return &Tensor{Name: name, Type: Int64Type, Shape: shape, Int64: data}, nil
}

// Len is the number of elements in the tensor.
func (t *Tensor) Len() int {
	if t.Type == Int64Type {
		return len(t.Int64)
	}
	return len(t.Float32)
}

// IsInt reports whether the tensor holds integer data.
func (t *Tensor) IsInt() bool {
	return t.Type == Int64Type
}

// Values returns the data widened to float64.
func (t *Tensor) Values() []float64 {
	values := make([]float64, 0, t.Len())
	if t.Type == Int64Type {
		for _, v := range t.Int64 {
			values = append(values, float64(v))
		}
		return values
	}
	for _, v := range t.Float32 {
		values = append(values, float64(v))
	}
	return values
}

func numElements(shape []int64) int {
	n := 1
	for _, d := range shape {
		n *= int(d)
	}
	return n
}
