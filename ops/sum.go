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
		Name:        "SumElements",
		Inputs:      []schema.Argument{schema.NewArgument("X")},
		Outputs:     []schema.Argument{schema.NewArgument("sum")},
		Constructor: NewSumElements,
	}))
}

// sumElementsOp reduces X to a scalar holding the sum of its elements.
type sumElementsOp struct {
	x       *tensors.Tensor
	outputs []*tensors.Tensor
}

// NewSumElements is the SumElements operator constructor.
func NewSumElements(_ *schema.FunctionSchema, inputs []values.Value, outputs []*tensors.Tensor) (caffe2.Operator, error) {
	if err := checkInputsOutputs("SumElements", len(inputs), 1, outputs, 1); err != nil {
		return nil, err
	}
	return &sumElementsOp{x: inputs[0].MoveTensor(), outputs: outputs}, nil
}

func (op *sumElementsOp) Run() error {
	out := op.outputs[0]
	switch op.x.DType() {
	case dtypes.Float32:
		return sumFlat[float32](out, op.x)
	case dtypes.Float64:
		return sumFlat[float64](out, op.x)
	case dtypes.Int32:
		return sumFlat[int32](out, op.x)
	case dtypes.Int64:
		return sumFlat[int64](out, op.x)
	}
	return errors.Errorf("SumElements: unsupported dtype %s", op.x.DType())
}

func (op *sumElementsOp) MoveNewstyleOutputs() []*tensors.Tensor { return op.outputs }

func sumFlat[T interface {
	numeric
	dtypes.Supported
}](out, x *tensors.Tensor) error {
	var total T
	for _, v := range tensors.FlatData[T](x) {
		total += v
	}
	outFlat, err := outputFlat[T](out, shapes.Make(x.DType()))
	if err != nil {
		return err
	}
	outFlat[0] = total
	return nil
}
