// Package ops implements caffe2-style operators bridged onto the dispatcher.
//
// Each operator follows the legacy lifecycle -- constructed per call from
// (schema, inputs, outputs), executed with Run, drained with
// MoveNewstyleOutputs -- and is registered for the CPU dispatch key in an
// init() function, so importing this package (possibly just for its side
// effects) populates dispatch.Default().
package ops

import (
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"

	"github.com/rlorigro/pytorch/internal/workerspool"
	"github.com/rlorigro/pytorch/types/shapes"
	"github.com/rlorigro/pytorch/types/tensors"
)

// pool bounds the goroutines used by all kernels in this package.
var pool = workerspool.New()

// SetMaxParallelism adjusts the kernels' parallelism; 0 disables it.
// Only call while no operator is running.
func SetMaxParallelism(maxParallelism int) {
	pool.SetMaxParallelism(maxParallelism)
}

// minChunk is the smallest per-goroutine slice of element-wise work worth
// spawning for.
const minChunk = 4096

// numeric are the Go element types the element-wise kernels handle generically.
// Float16 needs its own conversion path.
type numeric interface {
	constraints.Integer | constraints.Float
}

// outputFlat resolves one output slot: if the slot was preallocated with the
// right shape and dtype its storage is written in place (preserving the
// caller's buffer identity), otherwise the slot is (re)defined with fresh
// storage. Either way it returns the flat slice to fill.
func outputFlat[T dtypes.Supported](out *tensors.Tensor, shape shapes.Shape) ([]T, error) {
	if !out.Ok() || !out.Shape().Equal(shape) {
		if err := out.SetFlatData(shape.Clone(), make([]T, shape.Size())); err != nil {
			return nil, err
		}
	}
	return tensors.FlatData[T](out), nil
}

func checkInputsOutputs(name string, numInputs, wantInputs int, outputs []*tensors.Tensor, wantOutputs int) error {
	if numInputs != wantInputs {
		return errors.Errorf("%s: expected %d inputs, got %d", name, wantInputs, numInputs)
	}
	if len(outputs) != wantOutputs {
		return errors.Errorf("%s: expected %d output slots, got %d", name, wantOutputs, len(outputs))
	}
	return nil
}
