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
		Name: "Scale",
		Inputs: []schema.Argument{
			schema.NewArgument("X"),
			schema.NewTypedArgument("scale", schema.FloatType),
		},
		Outputs:     []schema.Argument{schema.NewArgument("Y")},
		Constructor: NewScale,
	}))
}

// scaleOp computes Y = X * scale, with scale a float argument.
type scaleOp struct {
	x       *tensors.Tensor
	scale   float64
	outputs []*tensors.Tensor
}

// NewScale is the Scale operator constructor.
func NewScale(_ *schema.FunctionSchema, inputs []values.Value, outputs []*tensors.Tensor) (caffe2.Operator, error) {
	if err := checkInputsOutputs("Scale", len(inputs), 2, outputs, 1); err != nil {
		return nil, err
	}
	return &scaleOp{
		x:       inputs[0].MoveTensor(),
		scale:   inputs[1].Float(),
		outputs: outputs,
	}, nil
}

func (op *scaleOp) Run() error {
	out := op.outputs[0]
	switch op.x.DType() {
	case dtypes.Float32:
		return scaleFlat[float32](out, op.x, op.scale)
	case dtypes.Float64:
		return scaleFlat[float64](out, op.x, op.scale)
	case dtypes.Float16:
		return scaleFloat16(out, op.x, op.scale)
	}
	return errors.Errorf("Scale: unsupported dtype %s", op.x.DType())
}

func (op *scaleOp) MoveNewstyleOutputs() []*tensors.Tensor { return op.outputs }

func scaleFlat[T interface {
	~float32 | ~float64
	dtypes.Supported
}](out, x *tensors.Tensor, scale float64) error {
	xFlat := tensors.FlatData[T](x)
	outFlat, err := outputFlat[T](out, x.Shape())
	if err != nil {
		return err
	}
	factor := T(scale)
	pool.For(len(outFlat), minChunk, func(from, to int) {
		for i := from; i < to; i++ {
			outFlat[i] = xFlat[i] * factor
		}
	})
	return nil
}

func scaleFloat16(out, x *tensors.Tensor, scale float64) error {
	xFlat := tensors.FlatData[float16.Float16](x)
	outFlat, err := outputFlat[float16.Float16](out, x.Shape())
	if err != nil {
		return err
	}
	factor := float32(scale)
	pool.For(len(outFlat), minChunk, func(from, to int) {
		for i := from; i < to; i++ {
			outFlat[i] = float16.Fromfloat32(xFlat[i].Float32() * factor)
		}
	})
	return nil
}
