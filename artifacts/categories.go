package artifacts

import (
	"context"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/knights-analytics/zooexport/util"
)

// NormalizeCategory lowercases the label and replaces spaces with
// underscores.
func NormalizeCategory(category string) string {
	return strings.ReplaceAll(strings.ToLower(category), " ", "_")
}

func NormalizeCategories(categories []string) []string {
	normalized := make([]string, len(categories))
	for i, category := range categories {
		normalized[i] = NormalizeCategory(category)
	}
	return normalized
}

// WriteCategories persists the labels verbatim as a JSON array, index aligned
// with the model's class indices.
func WriteCategories(ctx context.Context, path string, categories []string) error {
	if categories == nil {
		categories = []string{}
	}
	b, err := jsoniter.Marshal(categories)
	if err != nil {
		return err
	}
	return util.WriteFileBytes(ctx, path, b)
}

func ReadCategories(ctx context.Context, path string) ([]string, error) {
	b, err := util.ReadFileBytes(ctx, path)
	if err != nil {
		return nil, err
	}
	var categories []string
	if err = jsoniter.Unmarshal(b, &categories); err != nil {
		return nil, fmt.Errorf("failed to parse categories %s: %w", path, err)
	}
	return categories, nil
}
