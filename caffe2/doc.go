// Package caffe2 bridges legacy caffe2-style operators onto the schema-driven
// dispatcher in package dispatch.
//
// A legacy operator is constructed per call from (schema, inputs, outputs),
// executed with Run, and then gives up its final output tensors. The dispatcher
// instead passes all arguments over a flat Stack of type-erased values, and
// optionally lets the caller hand in preallocated output tensors. This package
// adapts one contract to the other.
//
// The schema registered for a bridged operator is the declared input list plus
// one synthetic trailing argument, named PreallocatedOutputsArgName, of type
// "optional tensor list". At call time, if that argument is None the operator
// receives freshly created placeholder outputs; otherwise it receives the
// caller's tensors as its initial output set.
//
// To register an operator for the CPU backend:
//
//	handle, err := caffe2.RegisterCPU(dispatch.Default(), caffe2.OpDef{
//		Name: "MyOperator",
//		Inputs: []schema.Argument{
//			schema.NewArgument("input1"),
//			schema.NewTypedArgument("argument2", schema.IntType),
//			schema.NewTypedArgument("argument3", schema.FloatType),
//		},
//		Outputs: []schema.Argument{
//			schema.NewArgument("output1"),
//			schema.NewArgument("output2"),
//		},
//		Constructor: NewMyOperator,
//	})
//
// and, optionally, for an accelerator backend (the CPU registration must come
// first -- it is the one that declares the schema):
//
//	err = caffe2.RegisterCUDA(dispatch.Default(), "MyOperator", NewMyOperatorCUDA)
//
// Declared inputs must not use the reserved PreallocatedOutputsArgName; this is
// an unchecked precondition, a collision silently corrupts the calling
// convention.
//
// Registration normally happens in init() functions, against the process-wide
// dispatch.Default() registry, and is suppressed entirely -- every Register*
// call becomes a no-op -- when dispatch registration is disabled (see
// DisableEnvVar), trading dispatch-based invocation for direct calls in builds
// that care about binary size.
package caffe2
