package caffe2

import (
	"github.com/rlorigro/pytorch/schema"
	"github.com/rlorigro/pytorch/types/values"
)

// PreallocatedOutputsArgName is the reserved name of the synthetic trailing
// argument carrying caller-preallocated output tensors. Declared operator
// inputs must not use this name (unchecked precondition).
const PreallocatedOutputsArgName = "_caffe2_preallocated_outputs"

// SchemaNamePrefix namespaces every bridged operator's registered name.
const SchemaNamePrefix = "_caffe2::"

// MakeFunctionSchema builds the dispatcher-facing schema for a bridged
// operator: the declared inputs followed by the synthetic optional tensor-list
// argument for preallocated outputs, paired with the unmodified output list,
// under the namespaced operator name.
func MakeFunctionSchema(operatorName string, inputs, outputs []schema.Argument) schema.FunctionSchema {
	actualInputs := make([]schema.Argument, 0, len(inputs)+1)
	actualInputs = append(actualInputs, inputs...)
	actualInputs = append(actualInputs,
		schema.NewOptionalArgument(PreallocatedOutputsArgName, schema.OptionalTensorListType, values.None()))
	return schema.New(SchemaNamePrefix+operatorName, actualInputs, outputs)
}
