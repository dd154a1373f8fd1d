//go:build !NOORT

package backends

import (
	"context"
	"errors"
	"fmt"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/knights-analytics/zooexport/util"
)

// ORTRuntime runs graphs through onnxruntime. The onnxruntime environment is
// process global, so only one ORTRuntime can be alive at a time.
type ORTRuntime struct {
	sessionOptions *ort.SessionOptions
}

func NewORTRuntime(libraryPath string) (*ORTRuntime, error) {
	if ort.IsInitialized() {
		return nil, errors.New("another onnxruntime environment is currently active, and only one can be active at one time")
	}
	if libraryPath != "" {
		exists, err := util.FileExists(context.Background(), libraryPath)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("cannot find the ort library at: %s", libraryPath)
		}
		ort.SetSharedLibraryPath(libraryPath)
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return nil, err
	}
	if err := ort.DisableTelemetry(); err != nil {
		return nil, errors.Join(err, ort.DestroyEnvironment())
	}
	sessionOptions, err := ort.NewSessionOptions()
	if err != nil {
		return nil, errors.Join(err, ort.DestroyEnvironment())
	}
	return &ORTRuntime{sessionOptions: sessionOptions}, nil
}

func (r *ORTRuntime) Name() string {
	return "ORT"
}

func (r *ORTRuntime) Run(onnxBytes []byte, inputName string, input *Tensor) (outputs map[string]*Tensor, err error) {
	_, outputsInfo, err := ort.GetInputOutputInfoWithONNXData(onnxBytes)
	if err != nil {
		return nil, err
	}
	outputNames := make([]string, len(outputsInfo))
	for i, info := range outputsInfo {
		outputNames[i] = info.Name
	}

	session, err := ort.NewDynamicAdvancedSessionWithONNXData(onnxBytes, []string{inputName}, outputNames, r.sessionOptions)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, session.Destroy())
	}()

	inputTensor, err := ort.NewTensor(ort.NewShape(input.Shape...), input.Float32)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, inputTensor.Destroy())
	}()

	// nil outputs are allocated by onnxruntime, which is required for the
	// data dependent detection outputs
	outputValues := make([]ort.Value, len(outputNames))
	defer func() {
		for _, value := range outputValues {
			if value != nil {
				err = errors.Join(err, value.Destroy())
			}
		}
	}()

	if err = session.Run([]ort.Value{inputTensor}, outputValues); err != nil {
		return nil, err
	}

	outputs = make(map[string]*Tensor, len(outputNames))
	for i, value := range outputValues {
		converted, convertErr := convertORTValue(outputNames[i], value)
		if convertErr != nil {
			return nil, convertErr
		}
		outputs[outputNames[i]] = converted
	}
	return outputs, nil
}

func convertORTValue(name string, value ort.Value) (*Tensor, error) {
	switch t := value.(type) {
	case *ort.Tensor[float32]:
		return &Tensor{Name: name, Type: Float32Type, Shape: t.GetShape(), Float32: append([]float32(nil), t.GetData()...)}, nil
	case *ort.Tensor[int64]:
		return &Tensor{Name: name, Type: Int64Type, Shape: t.GetShape(), Int64: append([]int64(nil), t.GetData()...)}, nil
	}
	return nil, fmt.Errorf("output %s: type %T is not supported", name, value)
}

func (r *ORTRuntime) Destroy() error {
	var err error
	if r.sessionOptions != nil {
		err = r.sessionOptions.Destroy()
		r.sessionOptions = nil
	}
	return errors.Join(err, ort.DestroyEnvironment())
}
