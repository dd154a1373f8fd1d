package util

import (
	"fmt"
	"math"
	"slices"

	"golang.org/x/exp/constraints"
)

// SoftMax take a vector and calculate softmax scores of its values.
func SoftMax[T constraints.Float](vector []T) []float64 {
	if len(vector) == 0 {
		return nil
	}
	maxLogit := float64(slices.Max(vector))
	shiftedExp := make([]float64, len(vector))
	for i, logit := range vector {
		shiftedExp[i] = math.Exp(float64(logit) - maxLogit)
	}
	sumExp := SumSlice(shiftedExp)
	scores := make([]float64, len(vector))
	for i, exp := range shiftedExp {
		scores[i] = exp / sumExp
	}
	return scores
}

func SumSlice[T constraints.Float](s []T) T {
	var sum T
	for _, v := range s {
		sum += v
	}
	return sum
}

// ArgMax find both index of max value in s and max value.
func ArgMax[T constraints.Float](s []T) (int, T, error) {
	if len(s) == 0 {
		return 0, 0, fmt.Errorf("attempted to calculate argmax of empty slice")
	}
	maxIndex := 0
	maxValue := s[0]
	for i, v := range s {
		if v > maxValue {
			maxValue = v
			maxIndex = i
		}
	}
	return maxIndex, maxValue, nil
}
