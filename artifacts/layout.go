// Package artifacts writes what an export leaves behind: the model.onnx and
// categories.json pair under the models tree, and the golden fixture under
// the test results tree.
package artifacts

import (
	"context"

	"github.com/knights-analytics/zooexport/util"
)

const (
	DefaultModelsDir  = "models"
	DefaultResultsDir = "test/assets/results"

	ModelFilename      = "model.onnx"
	CategoriesFilename = "categories.json"
)

// Layout locates artifacts as <models>/<task>/<name>/{model.onnx,categories.json}
// and <results>/<task>/<name>.json.
type Layout struct {
	ModelsDir  string
	ResultsDir string
}

func DefaultLayout() Layout {
	return Layout{ModelsDir: DefaultModelsDir, ResultsDir: DefaultResultsDir}
}

func (l Layout) ModelDir(task, name string) string {
	return util.PathJoinSafe(l.ModelsDir, task, name)
}

func (l Layout) ModelPath(task, name string) string {
	return util.PathJoinSafe(l.ModelsDir, task, name, ModelFilename)
}

func (l Layout) CategoriesPath(task, name string) string {
	return util.PathJoinSafe(l.ModelsDir, task, name, CategoriesFilename)
}

func (l Layout) FixtureDir(task string) string {
	return util.PathJoinSafe(l.ResultsDir, task)
}

func (l Layout) FixturePath(task, name string) string {
	return util.PathJoinSafe(l.ResultsDir, task, name+".json")
}

// Prepare creates the model and fixture directories. It can be called any
// number of times.
func (l Layout) Prepare(ctx context.Context, task, name string) error {
	if err := util.CreateDir(ctx, l.ModelDir(task, name)); err != nil {
		return err
	}
	return util.CreateDir(ctx, l.FixtureDir(task))
}
