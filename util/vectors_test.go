package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoftMax(t *testing.T) {
	scores := SoftMax([]float32{1, 2, 3})
	require.Len(t, scores, 3)
	assert.InDelta(t, 1.0, SumSlice(scores), 1e-9)
	assert.InDelta(t, 0.0900305, scores[0], 1e-6)
	assert.InDelta(t, 0.6652410, scores[2], 1e-6)

	// large logits must not overflow
	scores = SoftMax([]float32{1000, 1000})
	assert.InDelta(t, 0.5, scores[0], 1e-9)

	assert.Nil(t, SoftMax([]float32{}))
}

func TestArgMax(t *testing.T) {
	index, value, err := ArgMax([]float32{0.1, 0.7, 0.2})
	require.NoError(t, err)
	assert.Equal(t, 1, index)
	assert.Equal(t, float32(0.7), value)

	_, _, err = ArgMax([]float64{})
	assert.Error(t, err)
}
