package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"

	"github.com/knights-analytics/zooexport/artifacts"
)

// EnvPrefix prefixes the environment variables overriding file values:
// ZOOEXPORT_RUNTIME_BACKEND sets runtime.backend.
const EnvPrefix = "ZOOEXPORT_"

// ZooConfig locates the staged framework exports
type ZooConfig struct {
	Path string `koanf:"path"`
}

// OutputConfig defines where artifacts are written
type OutputConfig struct {
	Models  string `koanf:"models"`
	Results string `koanf:"results"`
}

// SampleConfig defines the image golden outputs are computed from
type SampleConfig struct {
	Image string `koanf:"image"`
}

// RuntimeConfig selects the runtime computing golden outputs
type RuntimeConfig struct {
	Backend string `koanf:"backend"`
	Library string `koanf:"library"`
}

// LogConfig related to logging
type LogConfig struct {
	Debug bool `koanf:"debug"`
}

// AppConfig defines the exporter configuration
type AppConfig struct {
	Zoo     ZooConfig     `koanf:"zoo"`
	Output  OutputConfig  `koanf:"output"`
	Sample  SampleConfig  `koanf:"sample"`
	Runtime RuntimeConfig `koanf:"runtime"`
	Log     LogConfig     `koanf:"log"`
}

func defaults() map[string]any {
	return map[string]any{
		"zoo.path":        "zoo",
		"output.models":   artifacts.DefaultModelsDir,
		"output.results":  artifacts.DefaultResultsDir,
		"sample.image":    "test/assets/cat.jpg",
		"runtime.backend": "ORT",
		"runtime.library": "",
		"log.debug":       false,
	}
}

// Load layers defaults, the yaml file at filePath (skipped when empty) and
// the environment.
func Load(filePath string) (*AppConfig, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, err
	}

	if filePath != "" {
		if err := k.Load(file.Provider(filePath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", filePath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, err
	}

	cfg := &AppConfig{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	return cfg, ValidateConfig(cfg)
}

// ValidateConfig rejects unknown runtimes.
func ValidateConfig(cfg *AppConfig) error {
	switch strings.ToUpper(cfg.Runtime.Backend) {
	case "ORT", "GO":
		return nil
	}
	return fmt.Errorf("runtime.backend must be ORT or GO, got %q", cfg.Runtime.Backend)
}
