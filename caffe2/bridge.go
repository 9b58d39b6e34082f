package caffe2

import (
	"github.com/gomlx/exceptions"

	"github.com/rlorigro/pytorch/dispatch"
	"github.com/rlorigro/pytorch/schema"
	"github.com/rlorigro/pytorch/types/tensors"
	"github.com/rlorigro/pytorch/types/values"
)

// RunOperatorFromStack executes one call of a bridged operator end-to-end:
// it pops the call's arguments off the stack according to the schema, resolves
// preallocated vs. fresh outputs, runs the operator through callOp, and pushes
// the results back.
//
// Precondition: the stack holds one value per schema argument, in declaration
// order. The last argument is the optional tensor list that (if not None)
// contains one preallocated output tensor per operator output.
//
// Postcondition: all argument values are cleared from the stack and there is
// now one value per output holding the result. These might reuse the
// preallocated tensors, but don't have to.
//
// A schema without the synthetic trailing argument, or a trailing runtime value
// that is neither None nor a tensor list, means a broken registration: both
// panic. An error from callOp is returned unmodified, with nothing pushed.
//
// This function is deliberately not specialized per operator type: the stack
// manipulation logic exists once, for every registered operator, and only the
// callOp indirection differs. MakeKernel binds that indirection per operator
// as a compile-time-known closure, so the whole chain remains inlinable where
// it matters. This mirrors the binary-size/speed trade-off of the original
// design.
func RunOperatorFromStack(stack *dispatch.Stack, sch *schema.FunctionSchema, callOp CallOpFunc) error {
	if sch.NumArguments() == 0 || sch.LastArgument().Type != schema.OptionalTensorListType {
		exceptions.Panicf("caffe2: schema %q is missing the trailing %q optional tensor-list argument"+
			" -- it was not built with MakeFunctionSchema", sch.Name(), PreallocatedOutputsArgName)
	}
	preallocated := stack.Pop()

	numOutputs := sch.NumReturns()
	numInputs := sch.NumArguments() - 1 // The last argument is the preallocated-outputs list.

	var outputs []*tensors.Tensor
	if preallocated.IsNone() {
		// No preallocated outputs were passed in: hand the operator a list of
		// uninitialized placeholder tensors to fill.
		outputs = make([]*tensors.Tensor, numOutputs)
		for i := range outputs {
			outputs[i] = tensors.Uninitialized()
		}
	} else {
		if !preallocated.IsTensorList() {
			exceptions.Panicf("caffe2: schema %q: the %q argument holds %s, expected None or a tensor list",
				sch.Name(), PreallocatedOutputsArgName, preallocated.Kind())
		}
		// Take ownership of the caller's list as the initial output set.
		// Its length is deliberately not checked against the schema's return
		// count here; a mismatch surfaces later, inside the operator or as a
		// result-count mismatch downstream.
		outputs = preallocated.MoveTensorList()
	}

	inputs := stack.PopN(numInputs)

	outputs, err := callOp(sch, inputs, outputs)
	if err != nil {
		return err
	}

	for _, output := range outputs {
		stack.Push(values.FromTensor(output))
	}
	return nil
}

// MakeKernel returns the dispatch kernel for one operator type: a thin closure
// binding the registered schema and the operator's CallOpFunc to the shared
// RunOperatorFromStack body.
func MakeKernel(handle *dispatch.OperatorHandle, ctor Constructor) dispatch.KernelFunc {
	sch := handle.Schema()
	callOp := CallOp(ctor)
	return func(stack *dispatch.Stack, _ *dispatch.KernelCache) error {
		return RunOperatorFromStack(stack, sch, callOp)
	}
}
