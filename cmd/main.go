package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/knights-analytics/zooexport"
	"github.com/knights-analytics/zooexport/config"
	"github.com/knights-analytics/zooexport/graph"
	"github.com/knights-analytics/zooexport/logger"
	"github.com/knights-analytics/zooexport/util"
)

const modelNotFound = "Model not found"

// baseOptions are applied after the configured ones.
var baseOptions []zooexport.WithOption

var globalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Usage:   "Path to a yaml configuration file",
		Aliases: []string{"c"},
	},
	&cli.StringFlag{
		Name:  "zoo",
		Usage: "Staging directory holding <model>/weights.json and <model>/model.onnx, local or s3://",
	},
	&cli.StringFlag{
		Name:  "models",
		Usage: "Root of the exported models tree",
	},
	&cli.StringFlag{
		Name:  "results",
		Usage: "Root of the golden fixtures tree",
	},
	&cli.StringFlag{
		Name:  "sample",
		Usage: "Image the sample input is prepared from",
	},
	&cli.StringFlag{
		Name:  "runtime",
		Usage: "Runtime computing golden outputs: ORT or GO",
	},
	&cli.StringFlag{
		Name:    "onnxruntimeSharedLibrary",
		Usage:   "Path to onnxruntime.so",
		Aliases: []string{"s"},
	},
	&cli.BoolFlag{
		Name:  "debug",
		Usage: "Log every export step",
	},
}

func exportCommand(task string) *cli.Command {
	return &cli.Command{
		Name:      task,
		Usage:     fmt.Sprintf("Export a %s model", strings.ReplaceAll(task, "_", " ")),
		ArgsUsage: "<model>",
		Action: func(c *cli.Context) (err error) {
			family, ok := zooexport.Lookup(task, c.Args().First())
			if !ok {
				_, err = fmt.Fprintln(c.App.Writer, modelNotFound)
				return err
			}

			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			log := logger.New(cfg.Log.Debug)
			defer func() {
				_ = log.Sync()
			}()

			opts, err := exporterOptions(c.Context, cfg, log)
			if err != nil {
				return err
			}
			exporter, err := zooexport.NewExporter(append(opts, baseOptions...)...)
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, exporter.Destroy())
			}()

			result, err := exporter.Export(c.Context, family)
			if err != nil {
				return err
			}
			for _, p := range []string{result.ModelPath, result.CategoriesPath, result.FixturePath} {
				if _, err = fmt.Fprintln(c.App.Writer, p); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

var listCommand = &cli.Command{
	Name:  "list",
	Usage: "List the exportable models",
	Action: func(c *cli.Context) error {
		for _, task := range zooexport.Tasks() {
			for _, family := range zooexport.Families(task) {
				if _, err := fmt.Fprintf(c.App.Writer, "%s\t%s\t%dx%d\n", task, family.Name, family.InputShape[0], family.InputShape[1]); err != nil {
					return err
				}
			}
		}
		return nil
	},
}

var inspectCommand = &cli.Command{
	Name:  "inspect",
	Usage: "Print the inputs and outputs of an onnx model",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "model",
			Usage:    "Path to the .onnx model",
			Aliases:  []string{"p"},
			Required: true,
		},
	},
	Action: func(c *cli.Context) error {
		onnxBytes, err := util.ReadFileBytes(c.Context, c.String("model"))
		if err != nil {
			return err
		}
		model, err := graph.LoadModel(onnxBytes)
		if err != nil {
			return err
		}
		for _, info := range graph.Inputs(model.GetGraph()) {
			if _, err = fmt.Fprintf(c.App.Writer, "input  %s\n", info); err != nil {
				return err
			}
		}
		for _, info := range graph.Outputs(model.GetGraph()) {
			if _, err = fmt.Fprintf(c.App.Writer, "output %s\n", info); err != nil {
				return err
			}
		}
		return nil
	},
}

var reshapeCommand = &cli.Command{
	Name:      "reshape",
	Usage:     "Reshape the outputs of an already exported detection model",
	ArgsUsage: "<task> <model>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "model",
			Usage:    "Path to the .onnx model",
			Aliases:  []string{"p"},
			Required: true,
		},
		&cli.StringFlag{
			Name:    "output",
			Usage:   "Where to write the reshaped model. Defaults to overwriting --model",
			Aliases: []string{"o"},
		},
	},
	Action: func(c *cli.Context) error {
		family, ok := zooexport.Lookup(c.Args().Get(0), c.Args().Get(1))
		if !ok {
			_, err := fmt.Fprintln(c.App.Writer, modelNotFound)
			return err
		}
		if len(family.Descriptors) == 0 {
			return fmt.Errorf("%s has no outputs to reshape", family.Name)
		}

		modelPath := c.String("model")
		onnxBytes, err := util.ReadFileBytes(c.Context, modelPath)
		if err != nil {
			return err
		}
		reshaped, err := graph.ReshapeModelBytes(onnxBytes, family.Descriptors)
		if err != nil {
			return err
		}
		dest := c.String("output")
		if dest == "" {
			dest = modelPath
		}
		return util.WriteFileBytes(c.Context, dest, reshaped)
	},
}

// loadConfig layers the command line flags over the configuration file and
// the environment.
func loadConfig(c *cli.Context) (*config.AppConfig, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	overrides := map[string]*string{
		"zoo":                      &cfg.Zoo.Path,
		"models":                   &cfg.Output.Models,
		"results":                  &cfg.Output.Results,
		"sample":                   &cfg.Sample.Image,
		"runtime":                  &cfg.Runtime.Backend,
		"onnxruntimeSharedLibrary": &cfg.Runtime.Library,
	}
	for name, value := range overrides {
		if c.IsSet(name) {
			*value = c.String(name)
		}
	}
	if c.IsSet("debug") {
		cfg.Log.Debug = c.Bool("debug")
	}
	return cfg, config.ValidateConfig(cfg)
}

func exporterOptions(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) ([]zooexport.WithOption, error) {
	opts := []zooexport.WithOption{
		zooexport.WithZooPath(cfg.Zoo.Path),
		zooexport.WithModelsDir(cfg.Output.Models),
		zooexport.WithResultsDir(cfg.Output.Results),
		zooexport.WithSampleImage(cfg.Sample.Image),
		zooexport.WithBackend(cfg.Runtime.Backend),
		zooexport.WithLogger(log),
	}

	libraryPath := cfg.Runtime.Library
	if libraryPath == "" {
		// fall back to $HOME/lib/zooexport/onnxruntime.so when it exists
		if homeDir, err := os.UserHomeDir(); err == nil {
			candidate := util.PathJoinSafe(homeDir, "lib", "zooexport", "onnxruntime.so")
			exists, err := util.FileExists(ctx, candidate)
			if err != nil {
				return nil, err
			}
			if exists {
				libraryPath = candidate
			}
		}
	}
	if libraryPath != "" {
		opts = append(opts, zooexport.WithOnnxLibraryPath(libraryPath))
	}
	return opts, nil
}

func newApp() *cli.App {
	commands := make([]*cli.Command, 0, len(zooexport.Tasks())+3)
	for _, task := range zooexport.Tasks() {
		commands = append(commands, exportCommand(task))
	}
	commands = append(commands, listCommand, inspectCommand, reshapeCommand)

	return &cli.App{
		Name:     "zooexport",
		Usage:    "Export pretrained vision models to onnx with categories and golden outputs",
		Flags:    globalFlags,
		Commands: commands,
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
