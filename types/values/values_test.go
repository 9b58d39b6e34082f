package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlorigro/pytorch/types/tensors"
)

func TestNone(t *testing.T) {
	v := None()
	assert.True(t, v.IsNone())
	assert.Equal(t, KindNone, v.Kind())
	assert.True(t, Value{}.IsNone(), "zero Value must be None")
}

func TestScalars(t *testing.T) {
	assert.Equal(t, int64(5), FromInt(5).Int())
	assert.Equal(t, 2.5, FromFloat(2.5).Float())
	assert.Equal(t, true, FromBool(true).Bool())
	assert.Equal(t, "x", FromString("x").Str())

	require.Panics(t, func() { FromInt(5).Float() })
	require.Panics(t, func() { None().Int() })
}

func TestMoveTensor(t *testing.T) {
	tensor := tensors.FromFlatDataAndDimensions([]float32{1, 2}, 2)
	v := FromTensor(tensor)
	assert.True(t, v.IsTensor())

	moved := v.MoveTensor()
	assert.Same(t, tensor, moved)

	// A moved-from value holds nothing anymore.
	assert.False(t, v.IsTensor())
	require.Panics(t, func() { v.MoveTensor() })
}

func TestMoveTensorList(t *testing.T) {
	list := []*tensors.Tensor{tensors.Uninitialized(), tensors.Uninitialized()}
	v := FromTensorList(list)
	assert.True(t, v.IsTensorList())

	moved := v.MoveTensorList()
	require.Len(t, moved, 2)
	assert.Same(t, list[0], moved[0])
	require.Panics(t, func() { v.MoveTensorList() })
}
