// Package values implements Value, the type-erased slot used to pass arguments
// and results through a dispatch stack.
//
// A Value holds one of: nothing (None), a tensor handle, a list of tensor
// handles, or a scalar (int64, float64, bool or string). The held kind is
// checkable at runtime; extracting the wrong kind is a programmer error and
// panics with a stack trace.
//
// Tensor and tensor-list payloads are move-only: MoveTensor and MoveTensorList
// transfer exclusive ownership to the caller and invalidate the source Value.
// This keeps the no-aliasing-after-extraction guarantee explicit -- there is no
// sharing and no reference counting. Scalar payloads are plain copies.
package values

import (
	"fmt"

	"github.com/gomlx/exceptions"

	"github.com/rlorigro/pytorch/types/tensors"
)

// Kind enumerates what a Value holds.
type Kind int

const (
	// KindNone is an absent value. It is also the zero Value.
	KindNone Kind = iota
	KindTensor
	KindTensorList
	KindInt
	KindFloat
	KindBool
	KindString

	// kindMoved marks a Value whose payload was extracted with a Move* method.
	kindMoved
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindTensor:
		return "Tensor"
	case KindTensorList:
		return "TensorList"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindBool:
		return "Bool"
	case KindString:
		return "String"
	case kindMoved:
		return "Moved"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is one type-erased slot. The zero Value is None.
//
// Values are meant to be handed off, not shared: pushing a Value onto a stack
// and popping it back transfers it wholesale, and the tensor payloads inside
// are extracted at most once.
type Value struct {
	kind   Kind
	tensor *tensors.Tensor
	list   []*tensors.Tensor
	i      int64
	f      float64
	b      bool
	s      string
}

// None returns an absent value.
func None() Value { return Value{} }

// FromTensor wraps a tensor handle. The Value takes ownership.
func FromTensor(t *tensors.Tensor) Value { return Value{kind: KindTensor, tensor: t} }

// FromTensorList wraps a list of tensor handles. The Value takes ownership of
// the slice and its elements.
func FromTensorList(list []*tensors.Tensor) Value { return Value{kind: KindTensorList, list: list} }

// FromInt wraps an int64 scalar.
func FromInt(v int64) Value { return Value{kind: KindInt, i: v} }

// FromFloat wraps a float64 scalar.
func FromFloat(v float64) Value { return Value{kind: KindFloat, f: v} }

// FromBool wraps a bool scalar.
func FromBool(v bool) Value { return Value{kind: KindBool, b: v} }

// FromString wraps a string scalar.
func FromString(v string) Value { return Value{kind: KindString, s: v} }

// Kind returns what the value currently holds.
func (v Value) Kind() Kind { return v.kind }

// IsNone reports whether the value is absent.
func (v Value) IsNone() bool { return v.kind == KindNone }

// IsTensor reports whether the value holds a tensor.
func (v Value) IsTensor() bool { return v.kind == KindTensor }

// IsTensorList reports whether the value holds a tensor list.
func (v Value) IsTensorList() bool { return v.kind == KindTensorList }

// MoveTensor extracts the tensor handle, invalidating the source value.
func (v *Value) MoveTensor() *tensors.Tensor {
	v.assertKind(KindTensor, "MoveTensor")
	t := v.tensor
	*v = Value{kind: kindMoved}
	return t
}

// MoveTensorList extracts the tensor list, invalidating the source value.
func (v *Value) MoveTensorList() []*tensors.Tensor {
	v.assertKind(KindTensorList, "MoveTensorList")
	list := v.list
	*v = Value{kind: kindMoved}
	return list
}

// Int returns the held int64. Scalars are copied, not moved.
func (v Value) Int() int64 {
	v.assertKind(KindInt, "Int")
	return v.i
}

// Float returns the held float64.
func (v Value) Float() float64 {
	v.assertKind(KindFloat, "Float")
	return v.f
}

// Bool returns the held bool.
func (v Value) Bool() bool {
	v.assertKind(KindBool, "Bool")
	return v.b
}

// Str returns the held string.
func (v Value) Str() string {
	v.assertKind(KindString, "Str")
	return v.s
}

func (v Value) assertKind(want Kind, op string) {
	if v.kind != want {
		exceptions.Panicf("values.Value.%s: value holds %s, not %s", op, v.kind, want)
	}
}

// String implements fmt.Stringer.
func (v Value) String() string {
	switch v.kind {
	case KindTensor:
		return fmt.Sprintf("Value(%s)", v.tensor)
	case KindTensorList:
		return fmt.Sprintf("Value(TensorList, len=%d)", len(v.list))
	case KindInt:
		return fmt.Sprintf("Value(Int, %d)", v.i)
	case KindFloat:
		return fmt.Sprintf("Value(Float, %g)", v.f)
	case KindBool:
		return fmt.Sprintf("Value(Bool, %v)", v.b)
	case KindString:
		return fmt.Sprintf("Value(String, %q)", v.s)
	default:
		return fmt.Sprintf("Value(%s)", v.kind)
	}
}
