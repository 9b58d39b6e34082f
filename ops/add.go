package ops

import (
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"github.com/x448/float16"

	"github.com/rlorigro/pytorch/caffe2"
	"github.com/rlorigro/pytorch/dispatch"
	"github.com/rlorigro/pytorch/schema"
	"github.com/rlorigro/pytorch/types/tensors"
	"github.com/rlorigro/pytorch/types/values"
)

func init() {
	must.M1(caffe2.RegisterCPU(dispatch.Default(), caffe2.OpDef{
		Name: "Add",
		Inputs: []schema.Argument{
			schema.NewArgument("A"),
			schema.NewArgument("B"),
		},
		Outputs:     []schema.Argument{schema.NewArgument("C")},
		Constructor: NewAdd,
	}))
}

// addOp computes C = A + B element-wise.
type addOp struct {
	a, b    *tensors.Tensor
	outputs []*tensors.Tensor
}

// NewAdd is the Add operator constructor.
func NewAdd(_ *schema.FunctionSchema, inputs []values.Value, outputs []*tensors.Tensor) (caffe2.Operator, error) {
	if err := checkInputsOutputs("Add", len(inputs), 2, outputs, 1); err != nil {
		return nil, err
	}
	return &addOp{
		a:       inputs[0].MoveTensor(),
		b:       inputs[1].MoveTensor(),
		outputs: outputs,
	}, nil
}

func (op *addOp) Run() error {
	if !op.a.Shape().Equal(op.b.Shape()) {
		return errors.Errorf("Add: shapes differ, %s vs %s", op.a.Shape(), op.b.Shape())
	}
	out := op.outputs[0]
	switch op.a.DType() {
	case dtypes.Float32:
		return addFlat[float32](out, op.a, op.b)
	case dtypes.Float64:
		return addFlat[float64](out, op.a, op.b)
	case dtypes.Int32:
		return addFlat[int32](out, op.a, op.b)
	case dtypes.Int64:
		return addFlat[int64](out, op.a, op.b)
	case dtypes.Float16:
		return addFloat16(out, op.a, op.b)
	}
	return errors.Errorf("Add: unsupported dtype %s", op.a.DType())
}

func (op *addOp) MoveNewstyleOutputs() []*tensors.Tensor { return op.outputs }

func addFlat[T interface {
	numeric
	dtypes.Supported
}](out, a, b *tensors.Tensor) error {
	aFlat := tensors.FlatData[T](a)
	bFlat := tensors.FlatData[T](b)
	outFlat, err := outputFlat[T](out, a.Shape())
	if err != nil {
		return err
	}
	pool.For(len(outFlat), minChunk, func(from, to int) {
		for i := from; i < to; i++ {
			outFlat[i] = aFlat[i] + bFlat[i]
		}
	})
	return nil
}

func addFloat16(out, a, b *tensors.Tensor) error {
	aFlat := tensors.FlatData[float16.Float16](a)
	bFlat := tensors.FlatData[float16.Float16](b)
	outFlat, err := outputFlat[float16.Float16](out, a.Shape())
	if err != nil {
		return err
	}
	pool.For(len(outFlat), minChunk, func(from, to int) {
		for i := from; i < to; i++ {
			outFlat[i] = float16.Fromfloat32(aFlat[i].Float32() + bFlat[i].Float32())
		}
	})
	return nil
}
