package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndentExpand(t *testing.T) {
	assert.Equal(t, "", IndentExpand("  ", 0))
	assert.Equal(t, "----", IndentExpand("--", 2))
}

func TestSliceMapFloorZero(t *testing.T) {
	arr := []float64{-3, 0, 2.5, math.NaN(), math.Inf(-1)}
	res := SliceMap(arr, FloorZero)
	assert.Equal(t, []float64{0, 0, 2.5, 0, 0}, res)
	assert.Equal(t, res, arr)
}
