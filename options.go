package zooexport

import (
	"go.uber.org/zap"

	"github.com/knights-analytics/zooexport/artifacts"
	"github.com/knights-analytics/zooexport/backends"
	"github.com/knights-analytics/zooexport/zoo"
)

const (
	DefaultSampleImage = "test/assets/cat.jpg"
	DefaultZooPath     = "zoo"
)

type exporterOptions struct {
	modelsDir   string
	resultsDir  string
	sampleImage string
	zooPath     string
	zoo         zoo.Zoo
	backend     string
	libraryPath string
	runtime     backends.Runtime
	logger      *zap.Logger
}

func defaultOptions() *exporterOptions {
	return &exporterOptions{
		modelsDir:   artifacts.DefaultModelsDir,
		resultsDir:  artifacts.DefaultResultsDir,
		sampleImage: DefaultSampleImage,
		zooPath:     DefaultZooPath,
		backend:     "ORT",
	}
}

// WithOption is the interface for all option functions
type WithOption func(o *exporterOptions)

// WithModelsDir sets the root of the models tree. Default is "models".
func WithModelsDir(dir string) WithOption {
	return func(o *exporterOptions) {
		o.modelsDir = dir
	}
}

// WithResultsDir sets the root of the golden fixtures tree. Default is "test/assets/results".
func WithResultsDir(dir string) WithOption {
	return func(o *exporterOptions) {
		o.resultsDir = dir
	}
}

// WithSampleImage sets the image the sample input is prepared from.
func WithSampleImage(path string) WithOption {
	return func(o *exporterOptions) {
		o.sampleImage = path
	}
}

// WithZooPath serves the zoo from a staging directory, local or s3://.
func WithZooPath(path string) WithOption {
	return func(o *exporterOptions) {
		o.zooPath = path
	}
}

// WithZoo replaces the staging directory zoo.
func WithZoo(z zoo.Zoo) WithOption {
	return func(o *exporterOptions) {
		o.zoo = z
	}
}

// WithBackend selects the runtime computing golden outputs: "ORT" (default) or "GO".
func WithBackend(backend string) WithOption {
	return func(o *exporterOptions) {
		o.backend = backend
	}
}

// WithOnnxLibraryPath Use this function to set the path to the "onnxruntime.so" or "onnxruntime.dll" function.
// By default, it will be set to "onnxruntime.so" on non-Windows systems, and "onnxruntime.dll" on Windows.
func WithOnnxLibraryPath(ortLibraryPath string) WithOption {
	return func(o *exporterOptions) {
		o.libraryPath = ortLibraryPath
	}
}

// WithRuntime uses an already constructed runtime. The exporter destroys it.
func WithRuntime(runtime backends.Runtime) WithOption {
	return func(o *exporterOptions) {
		o.runtime = runtime
	}
}

// WithLogger sets the logger. Default is a no-op logger.
func WithLogger(logger *zap.Logger) WithOption {
	return func(o *exporterOptions) {
		o.logger = logger
	}
}
