package caffe2

import (
	"github.com/rlorigro/pytorch/schema"
	"github.com/rlorigro/pytorch/types/tensors"
	"github.com/rlorigro/pytorch/types/values"
)

// Operator is the legacy operator lifecycle: constructed per call, executed
// once with Run, then drained of its outputs. No state survives across calls.
type Operator interface {
	// Run executes the operator synchronously to completion.
	Run() error

	// MoveNewstyleOutputs yields the operator's final output tensors, one per
	// declared return. They may or may not be the preallocated tensors the
	// operator was constructed with -- it is free to reuse or replace them.
	// Only valid after Run; the operator must not be used afterwards.
	MoveNewstyleOutputs() []*tensors.Tensor
}

// Constructor builds one Operator instance for one call. The instance takes
// ownership of the input values and of the output tensor slots.
type Constructor func(sch *schema.FunctionSchema, inputs []values.Value, outputs []*tensors.Tensor) (Operator, error)

// CallOpFunc runs one full construct/Run/extract cycle of a legacy operator.
// It is the function-pointer shape shared by the type-erased adapter: per
// operator type there is exactly one CallOpFunc, and RunOperatorFromStack is
// reused across all of them.
type CallOpFunc func(sch *schema.FunctionSchema, inputs []values.Value, outputs []*tensors.Tensor) ([]*tensors.Tensor, error)

// CallOp returns the CallOpFunc for the given operator constructor:
// construct, Run, move the outputs out.
func CallOp(ctor Constructor) CallOpFunc {
	return func(sch *schema.FunctionSchema, inputs []values.Value, outputs []*tensors.Tensor) ([]*tensors.Tensor, error) {
		op, err := ctor(sch, inputs, outputs)
		if err != nil {
			return nil, err
		}
		if err = op.Run(); err != nil {
			return nil, err
		}
		return op.MoveNewstyleOutputs(), nil
	}
}
