package ops

import (
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"

	"github.com/rlorigro/pytorch/caffe2"
	"github.com/rlorigro/pytorch/dispatch"
	"github.com/rlorigro/pytorch/schema"
	"github.com/rlorigro/pytorch/types/shapes"
	"github.com/rlorigro/pytorch/types/tensors"
	"github.com/rlorigro/pytorch/types/values"
)

func init() {
	must.M1(caffe2.RegisterCPU(dispatch.Default(), caffe2.OpDef{
		Name: "MatMul",
		Inputs: []schema.Argument{
			schema.NewArgument("A"),
			schema.NewArgument("B"),
		},
		Outputs:     []schema.Argument{schema.NewArgument("C")},
		Constructor: NewMatMul,
	}))
}

// matMulOp computes C[m,n] = A[m,k] @ B[k,n] for rank-2 inputs.
type matMulOp struct {
	a, b    *tensors.Tensor
	outputs []*tensors.Tensor
}

// NewMatMul is the MatMul operator constructor.
func NewMatMul(_ *schema.FunctionSchema, inputs []values.Value, outputs []*tensors.Tensor) (caffe2.Operator, error) {
	if err := checkInputsOutputs("MatMul", len(inputs), 2, outputs, 1); err != nil {
		return nil, err
	}
	return &matMulOp{
		a:       inputs[0].MoveTensor(),
		b:       inputs[1].MoveTensor(),
		outputs: outputs,
	}, nil
}

func (op *matMulOp) Run() error {
	if op.a.Rank() != 2 || op.b.Rank() != 2 {
		return errors.Errorf("MatMul: inputs must be rank-2, got %s and %s", op.a.Shape(), op.b.Shape())
	}
	if op.a.DType() != op.b.DType() {
		return errors.Errorf("MatMul: dtypes differ, %s vs %s", op.a.DType(), op.b.DType())
	}
	if op.a.Shape().Dim(1) != op.b.Shape().Dim(0) {
		return errors.Errorf("MatMul: inner dimensions differ, %s @ %s", op.a.Shape(), op.b.Shape())
	}
	out := op.outputs[0]
	switch op.a.DType() {
	case dtypes.Float32:
		return matMulFlat[float32](out, op.a, op.b)
	case dtypes.Float64:
		return matMulFlat[float64](out, op.a, op.b)
	}
	return errors.Errorf("MatMul: unsupported dtype %s", op.a.DType())
}

func (op *matMulOp) MoveNewstyleOutputs() []*tensors.Tensor { return op.outputs }

// matMulFlat is a plain row-parallel triple loop; no blocking or SIMD.
func matMulFlat[T interface {
	~float32 | ~float64
	dtypes.Supported
}](out, a, b *tensors.Tensor) error {
	m, k, n := a.Shape().Dim(0), a.Shape().Dim(1), b.Shape().Dim(1)
	aFlat := tensors.FlatData[T](a)
	bFlat := tensors.FlatData[T](b)
	outFlat, err := outputFlat[T](out, shapes.Make(a.DType(), m, n))
	if err != nil {
		return err
	}
	pool.For(m, 1, func(fromRow, toRow int) {
		for row := fromRow; row < toRow; row++ {
			aRow := aFlat[row*k : (row+1)*k]
			outRow := outFlat[row*n : (row+1)*n]
			for col := range outRow {
				outRow[col] = 0
			}
			for i, aV := range aRow {
				bRow := bFlat[i*n : (i+1)*n]
				for col, bV := range bRow {
					outRow[col] += aV * bV
				}
			}
		}
	})
	return nil
}
