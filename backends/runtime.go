package backends

import (
	"fmt"
	"strings"
)

// Runtime runs an exported graph on a single input tensor.
type Runtime interface {
	Name() string
	Run(onnxBytes []byte, inputName string, input *Tensor) (map[string]*Tensor, error)
	Destroy() error
}

// NewRuntime returns the runtime registered under backend ("ORT" or "GO").
func NewRuntime(backend string, libraryPath string) (Runtime, error) {
	switch strings.ToUpper(backend) {
	case "", "ORT":
		runtime, err := NewORTRuntime(libraryPath)
		if err != nil {
			return nil, err
		}
		return runtime, nil
	case "GO":
		return NewGoRuntime(), nil
	}
	return nil, fmt.Errorf("runtime %s not implemented", backend)
}
