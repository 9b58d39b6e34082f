// Package shapes defines Shape, the description of a tensor's data type and dimensions.
//
// Shape is used both by the concrete tensor values (see types/tensors) and by the
// operator signatures (see schema package) to describe what flows through an
// operator call.
//
// The data type (DType) enumeration comes from github.com/gomlx/gopjrt/dtypes.
// Go float16 support uses the github.com/x448/float16 implementation.
//
// Glossary:
//
//   - Rank: number of axes (dimensions) of a tensor.
//   - Axis: the index of a dimension. A scalar has rank 0.
//   - Dimension: the size of a tensor along one axis.
//   - DType: the data type of the unit element of a tensor.
package shapes

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
)

// Shape represents the data type and dimensions of a tensor.
//
// Use Make to create a new Shape. The zero value is invalid (Ok() == false).
type Shape struct {
	DType      dtypes.DType
	Dimensions []int
}

// Make returns a Shape with the given data type and dimensions.
// It panics if any dimension is <= 0 -- a shape is fully defined, there are no
// dynamic dimensions at this level.
func Make(dtype dtypes.DType, dimensions ...int) Shape {
	s := Shape{DType: dtype, Dimensions: slices.Clone(dimensions)}
	for _, dim := range dimensions {
		if dim <= 0 {
			exceptions.Panicf("shapes.Make(%s): cannot create a shape with an axis with dimension <= 0", s)
		}
	}
	return s
}

// Scalar returns a scalar (rank-0) Shape for the given Go type.
func Scalar[T dtypes.NumberNotComplex]() Shape {
	return Shape{DType: dtypes.FromGenericsType[T]()}
}

// Invalid returns an invalid Shape: Invalid().Ok() == false.
func Invalid() Shape { return Shape{DType: dtypes.InvalidDType} }

// Ok returns whether this is a valid Shape.
func (s Shape) Ok() bool { return s.DType != dtypes.InvalidDType }

// Rank of the shape, that is, the number of axes.
func (s Shape) Rank() int { return len(s.Dimensions) }

// IsScalar returns whether the shape is a scalar, that is, rank 0.
func (s Shape) IsScalar() bool { return s.Ok() && s.Rank() == 0 }

// Dim returns the dimension of the given axis. Negative values count from the
// end, so Dim(-1) is the dimension of the last axis. Out-of-bounds axes panic.
func (s Shape) Dim(axis int) int {
	adjusted := axis
	if adjusted < 0 {
		adjusted += s.Rank()
	}
	if adjusted < 0 || adjusted >= s.Rank() {
		exceptions.Panicf("Shape.Dim(%d) out-of-bounds for rank %d (shape=%s)", axis, s.Rank(), s)
	}
	return s.Dimensions[adjusted]
}

// Size returns the number of elements a tensor of this shape holds.
// A scalar has size 1.
func (s Shape) Size() int {
	size := 1
	for _, dim := range s.Dimensions {
		size *= dim
	}
	return size
}

// Memory returns the number of bytes needed to store a tensor of this shape.
func (s Shape) Memory() uintptr {
	return s.DType.Memory() * uintptr(s.Size())
}

// Equal compares DType and dimensions.
func (s Shape) Equal(other Shape) bool {
	return s.DType == other.DType && slices.Equal(s.Dimensions, other.Dimensions)
}

// Clone returns a deep copy of the shape.
func (s Shape) Clone() Shape {
	return Shape{DType: s.DType, Dimensions: slices.Clone(s.Dimensions)}
}

// String renders the shape like "(Float32)[2 3]", or "(Float32)" for scalars.
func (s Shape) String() string {
	if !s.Ok() {
		return "(invalid shape)"
	}
	if s.IsScalar() {
		return fmt.Sprintf("(%s)", s.DType)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "(%s)[", s.DType)
	for i, dim := range s.Dimensions {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d", dim)
	}
	b.WriteByte(']')
	return b.String()
}
