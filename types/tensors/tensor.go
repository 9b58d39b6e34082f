// Package tensors implements Tensor, the buffer handle passed into and out of
// operator invocations.
//
// A Tensor is defined by its shape (data type plus dimensions) and its content,
// stored as a flat (1D) slice of the shape's Go type. A Tensor may also be
// uninitialized: a placeholder handle with no shape and no storage, handed to an
// operator as a slot for it to define (see Uninitialized).
//
// Tensors are handles: they are passed by pointer and never copied implicitly.
// Exclusive ownership hand-off across an operator call is enforced one level up,
// by the type-erased values layer (see types/values) -- this package does no
// reference counting.
//
// Ways to construct a Tensor:
//
//   - FromShape(shape): allocated and zero-initialized.
//   - FromFlatDataAndDimensions(data, dimensions...): wraps the given flat slice.
//   - FromScalar(value): rank-0 tensor holding one value.
//   - Uninitialized(): placeholder to be defined later with SetFlatData.
package tensors

import (
	"fmt"
	"reflect"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"

	"github.com/rlorigro/pytorch/types/shapes"
)

// Tensor is a shape plus a flat slice of the underlying data type.
//
// The flat slice is always of type []T where T is the Go type of shape.DType,
// with length shape.Size(). An uninitialized Tensor has an invalid shape and a
// nil flat slice (see Uninitialized).
type Tensor struct {
	shape shapes.Shape

	// flat is a slice of the Go type corresponding to shape.DType, or nil if
	// the tensor is uninitialized.
	flat any
}

// FromShape returns a Tensor of the given shape with zero-initialized storage.
func FromShape(shape shapes.Shape) *Tensor {
	if !shape.Ok() {
		exceptions.Panicf("tensors.FromShape: invalid shape %s", shape)
	}
	flat := reflect.MakeSlice(reflect.SliceOf(shape.DType.GoType()), shape.Size(), shape.Size()).Interface()
	return &Tensor{shape: shape, flat: flat}
}

// FromFlatDataAndDimensions returns a Tensor with the given dimensions whose
// content is the given flat slice. The slice is used directly, not copied, and
// its length must match the product of the dimensions.
func FromFlatDataAndDimensions[T dtypes.Supported](data []T, dimensions ...int) *Tensor {
	shape := shapes.Make(dtypes.FromGenericsType[T](), dimensions...)
	if len(data) != shape.Size() {
		exceptions.Panicf("tensors.FromFlatDataAndDimensions: data has %d elements, shape %s requires %d",
			len(data), shape, shape.Size())
	}
	return &Tensor{shape: shape, flat: data}
}

// FromScalar returns a rank-0 Tensor holding the given value.
func FromScalar[T dtypes.Supported](value T) *Tensor {
	return &Tensor{
		shape: shapes.Shape{DType: dtypes.FromGenericsType[T]()},
		flat:  []T{value},
	}
}

// Uninitialized returns a placeholder Tensor with no shape and no storage.
// It reports Ok() == false until an operator defines it with SetFlatData.
func Uninitialized() *Tensor { return &Tensor{} }

// Ok returns whether the tensor is defined: non-nil, with a valid shape and storage.
func (t *Tensor) Ok() bool { return t != nil && t.shape.Ok() && t.flat != nil }

// Shape of the tensor. Invalid if the tensor is uninitialized.
func (t *Tensor) Shape() shapes.Shape { return t.shape }

// DType is a shortcut for Shape().DType.
func (t *Tensor) DType() dtypes.DType { return t.shape.DType }

// Rank is a shortcut for Shape().Rank().
func (t *Tensor) Rank() int { return t.shape.Rank() }

// IsScalar is a shortcut for Shape().IsScalar().
func (t *Tensor) IsScalar() bool { return t.shape.IsScalar() }

// Size returns the number of elements. A shortcut for Shape().Size().
func (t *Tensor) Size() int { return t.shape.Size() }

// Memory returns the number of bytes used to store the tensor's content.
func (t *Tensor) Memory() uintptr { return t.shape.Memory() }

// SetFlatData defines (or redefines) the tensor in place with the given shape
// and flat slice. The slice must be of the shape's Go type and matching length.
// Operators use this to fill the uninitialized output slots handed to them.
func (t *Tensor) SetFlatData(shape shapes.Shape, flat any) error {
	if !shape.Ok() {
		return errors.Errorf("Tensor.SetFlatData: invalid shape %s", shape)
	}
	want := reflect.SliceOf(shape.DType.GoType())
	got := reflect.TypeOf(flat)
	if got != want {
		return errors.Errorf("Tensor.SetFlatData: flat data is %s, shape %s requires %s", got, shape, want)
	}
	if reflect.ValueOf(flat).Len() != shape.Size() {
		return errors.Errorf("Tensor.SetFlatData: flat data has %d elements, shape %s requires %d",
			reflect.ValueOf(flat).Len(), shape, shape.Size())
	}
	t.shape = shape
	t.flat = flat
	return nil
}

// ConstFlatData returns the tensor's flat data for reading. The caller must not
// modify the returned slice.
func (t *Tensor) ConstFlatData() any {
	t.assertOk("ConstFlatData")
	return t.flat
}

// MutableFlatData returns the tensor's flat data for in-place mutation.
func (t *Tensor) MutableFlatData() any {
	t.assertOk("MutableFlatData")
	return t.flat
}

// FlatData returns the tensor's flat data as a []T. It panics if T does not
// match the tensor's DType.
func FlatData[T dtypes.Supported](t *Tensor) []T {
	t.assertOk("FlatData")
	flat, ok := t.flat.([]T)
	if !ok {
		var zero T
		exceptions.Panicf("tensors.FlatData[%T]: tensor holds %s values", zero, t.DType())
	}
	return flat
}

// Equal returns whether both tensors are defined, have the same shape and hold
// the same values.
func (t *Tensor) Equal(other *Tensor) bool {
	if !t.Ok() || !other.Ok() || !t.shape.Equal(other.shape) {
		return false
	}
	return reflect.DeepEqual(t.flat, other.flat)
}

func (t *Tensor) assertOk(op string) {
	if !t.Ok() {
		exceptions.Panicf("Tensor.%s: tensor is uninitialized (or nil)", op)
	}
}

// String renders the shape and memory footprint, not the contents.
func (t *Tensor) String() string {
	if !t.Ok() {
		return "Tensor(uninitialized)"
	}
	return fmt.Sprintf("Tensor(%s, %s)", t.shape, humanize.Bytes(uint64(t.Memory())))
}
