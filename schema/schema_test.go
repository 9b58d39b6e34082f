package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlorigro/pytorch/types/values"
)

func TestArgumentConstructors(t *testing.T) {
	a := NewArgument("input")
	assert.Equal(t, TensorType, a.Type)
	assert.Nil(t, a.Default)

	b := NewTypedArgument("axis", IntType)
	assert.Equal(t, "int axis", b.String())

	c := NewOptionalArgument("extra", OptionalTensorListType, values.None())
	require.NotNil(t, c.Default)
	assert.True(t, c.Default.IsNone())
}

func TestFunctionSchema(t *testing.T) {
	s := New("_caffe2::LayerNorm",
		[]Argument{NewArgument("input"), NewTypedArgument("axis", IntType)},
		[]Argument{NewArgument("output")})

	assert.Equal(t, "_caffe2::LayerNorm", s.Name())
	assert.Equal(t, 2, s.NumArguments())
	assert.Equal(t, 1, s.NumReturns())
	assert.Equal(t, "axis", s.LastArgument().Name)
	assert.Equal(t, "_caffe2::LayerNorm(Tensor input, int axis) -> (Tensor output)", s.String())
}

func TestClone(t *testing.T) {
	s := New("op", []Argument{NewArgument("a")}, nil)
	clone := s.Clone()
	cloneArgs := clone.Arguments()
	cloneArgs[0].Name = "changed"
	assert.Equal(t, "a", s.Arguments()[0].Name)
}
