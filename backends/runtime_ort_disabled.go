//go:build NOORT

package backends

import "errors"

type ORTRuntime struct{}

func NewORTRuntime(_ string) (*ORTRuntime, error) {
	return nil, errors.New("ORT was disabled at build time, rebuild without the NOORT tag or use the GO runtime")
}

func (r *ORTRuntime) Name() string {
	return "ORT"
}

func (r *ORTRuntime) Run(_ []byte, _ string, _ *Tensor) (map[string]*Tensor, error) {
	return nil, errors.New("ORT was disabled at build time")
}

func (r *ORTRuntime) Destroy() error {
	return nil
}
