package ops

import (
	"os"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
	"k8s.io/klog/v2"

	"github.com/rlorigro/pytorch/caffe2"
	"github.com/rlorigro/pytorch/dispatch"
	"github.com/rlorigro/pytorch/types/shapes"
	"github.com/rlorigro/pytorch/types/tensors"
	"github.com/rlorigro/pytorch/types/values"
)

func TestMain(m *testing.M) {
	klog.InitFlags(nil)
	// All registration happened in init(); dispatch must keep working on a
	// frozen registry.
	dispatch.Default().Freeze()
	os.Exit(m.Run())
}

// callOp dispatches one operator call on the CPU backend and returns the
// single result tensor.
func callOp(t *testing.T, name string, preallocated values.Value, args ...values.Value) *tensors.Tensor {
	t.Helper()
	stack := dispatch.NewStack(len(args) + 1)
	for _, arg := range args {
		stack.Push(arg)
	}
	stack.Push(preallocated)
	require.NoError(t, dispatch.Default().Call(caffe2.SchemaNamePrefix+name, dispatch.KeyCPU, stack))
	require.Equal(t, 1, stack.Len())
	result := stack.Pop()
	require.True(t, result.IsTensor())
	return result.MoveTensor()
}

// callOpErr dispatches expecting a failure, and asserts nothing was pushed.
func callOpErr(t *testing.T, name string, args ...values.Value) error {
	t.Helper()
	stack := &dispatch.Stack{}
	for _, arg := range args {
		stack.Push(arg)
	}
	stack.Push(values.None())
	err := dispatch.Default().Call(caffe2.SchemaNamePrefix+name, dispatch.KeyCPU, stack)
	require.Error(t, err)
	assert.Equal(t, 0, stack.Len())
	return err
}

func TestRegisteredOperators(t *testing.T) {
	names := dispatch.Default().Operators()
	assert.Subset(t, names,
		[]string{"_caffe2::Add", "_caffe2::MatMul", "_caffe2::Scale", "_caffe2::SumElements"})
}

func TestAdd(t *testing.T) {
	out := callOp(t, "Add", values.None(),
		values.FromTensor(tensors.FromFlatDataAndDimensions([]float32{1, 2, 3}, 3)),
		values.FromTensor(tensors.FromFlatDataAndDimensions([]float32{10, 20, 30}, 3)))
	assert.Equal(t, []float32{11, 22, 33}, tensors.FlatData[float32](out))

	out = callOp(t, "Add", values.None(),
		values.FromTensor(tensors.FromFlatDataAndDimensions([]int64{1, 2}, 2)),
		values.FromTensor(tensors.FromFlatDataAndDimensions([]int64{3, 4}, 2)))
	assert.Equal(t, []int64{4, 6}, tensors.FlatData[int64](out))
}

func TestAddFloat16(t *testing.T) {
	a := []float16.Float16{float16.Fromfloat32(1.5), float16.Fromfloat32(2)}
	b := []float16.Float16{float16.Fromfloat32(0.5), float16.Fromfloat32(3)}
	out := callOp(t, "Add", values.None(),
		values.FromTensor(tensors.FromFlatDataAndDimensions(a, 2)),
		values.FromTensor(tensors.FromFlatDataAndDimensions(b, 2)))
	outFlat := tensors.FlatData[float16.Float16](out)
	assert.Equal(t, float32(2), outFlat[0].Float32())
	assert.Equal(t, float32(5), outFlat[1].Float32())
}

func TestAddPreallocatedOutput(t *testing.T) {
	buf := tensors.FromShape(shapes.Make(dtypes.Float32, 2))
	out := callOp(t, "Add",
		values.FromTensorList([]*tensors.Tensor{buf}),
		values.FromTensor(tensors.FromFlatDataAndDimensions([]float32{1, 2}, 2)),
		values.FromTensor(tensors.FromFlatDataAndDimensions([]float32{5, 6}, 2)))
	assert.Same(t, buf, out, "operator must write into the preallocated buffer")
	assert.Equal(t, []float32{6, 8}, tensors.FlatData[float32](buf))
}

func TestAddErrors(t *testing.T) {
	err := callOpErr(t, "Add",
		values.FromTensor(tensors.FromFlatDataAndDimensions([]float32{1, 2}, 2)),
		values.FromTensor(tensors.FromFlatDataAndDimensions([]float32{1, 2, 3}, 3)))
	assert.Contains(t, err.Error(), "shapes differ")

	err = callOpErr(t, "Add",
		values.FromTensor(tensors.FromFlatDataAndDimensions([]uint8{1}, 1)),
		values.FromTensor(tensors.FromFlatDataAndDimensions([]uint8{2}, 1)))
	assert.Contains(t, err.Error(), "unsupported dtype")
}

func TestScale(t *testing.T) {
	out := callOp(t, "Scale", values.None(),
		values.FromTensor(tensors.FromFlatDataAndDimensions([]float64{1, -2, 4}, 3)),
		values.FromFloat(2.5))
	assert.Equal(t, []float64{2.5, -5, 10}, tensors.FlatData[float64](out))
}

func TestMatMul(t *testing.T) {
	a := tensors.FromFlatDataAndDimensions([]float32{
		1, 2, 3,
		4, 5, 6,
	}, 2, 3)
	b := tensors.FromFlatDataAndDimensions([]float32{
		7, 8,
		9, 10,
		11, 12,
	}, 3, 2)
	out := callOp(t, "MatMul", values.None(),
		values.FromTensor(a), values.FromTensor(b))
	assert.Equal(t, shapes.Make(dtypes.Float32, 2, 2), out.Shape())
	assert.Equal(t, []float32{58, 64, 139, 154}, tensors.FlatData[float32](out))
}

func TestMatMulErrors(t *testing.T) {
	err := callOpErr(t, "MatMul",
		values.FromTensor(tensors.FromFlatDataAndDimensions([]float32{1, 2}, 2)),
		values.FromTensor(tensors.FromFlatDataAndDimensions([]float32{1, 2}, 1, 2)))
	assert.Contains(t, err.Error(), "rank-2")

	err = callOpErr(t, "MatMul",
		values.FromTensor(tensors.FromFlatDataAndDimensions([]float32{1, 2}, 1, 2)),
		values.FromTensor(tensors.FromFlatDataAndDimensions([]float32{1, 2}, 1, 2)))
	assert.Contains(t, err.Error(), "inner dimensions")
}

func TestSumElements(t *testing.T) {
	out := callOp(t, "SumElements", values.None(),
		values.FromTensor(tensors.FromFlatDataAndDimensions([]int32{1, 2, 3, 4}, 2, 2)))
	require.True(t, out.IsScalar())
	assert.Equal(t, []int32{10}, tensors.FlatData[int32](out))
}

func TestLargeParallelAdd(t *testing.T) {
	n := 100_000
	a := make([]float32, n)
	b := make([]float32, n)
	for i := range a {
		a[i] = float32(i)
		b[i] = float32(2 * i)
	}
	out := callOp(t, "Add", values.None(),
		values.FromTensor(tensors.FromFlatDataAndDimensions(a, n)),
		values.FromTensor(tensors.FromFlatDataAndDimensions(b, n)))
	outFlat := tensors.FlatData[float32](out)
	for _, i := range []int{0, 1, n / 2, n - 1} {
		require.Equal(t, float32(3*i), outFlat[i], "index %d", i)
	}
}
