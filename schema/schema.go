// Package schema defines FunctionSchema, the canonical signature of a
// registered operator: its name, its ordered list of typed arguments and its
// ordered list of typed returns.
//
// A schema is built once at registration time and is immutable afterwards; the
// dispatcher and the invocation adapter only ever read it.
package schema

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rlorigro/pytorch/types/values"
)

// Type is the declared type of an argument or return.
type Type int

const (
	InvalidType Type = iota
	TensorType
	IntType
	FloatType
	BoolType
	StringType
	TensorListType
	OptionalTensorListType
)

// String renders the type in the schema text notation.
func (t Type) String() string {
	switch t {
	case TensorType:
		return "Tensor"
	case IntType:
		return "int"
	case FloatType:
		return "float"
	case BoolType:
		return "bool"
	case StringType:
		return "str"
	case TensorListType:
		return "Tensor[]"
	case OptionalTensorListType:
		return "Tensor[]?"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Argument is one named, typed parameter or return of an operator.
type Argument struct {
	Name string
	Type Type

	// Default is the value used when the caller omits the argument.
	// A None default on an optional type means "absent".
	Default *values.Value
}

// NewArgument returns a tensor-typed argument: the most common case, so the
// type is implied, mirroring how operator declarations usually read.
func NewArgument(name string) Argument {
	return Argument{Name: name, Type: TensorType}
}

// NewTypedArgument returns an argument of an explicit type.
func NewTypedArgument(name string, argType Type) Argument {
	return Argument{Name: name, Type: argType}
}

// NewOptionalArgument returns an argument with a default value.
func NewOptionalArgument(name string, argType Type, defaultValue values.Value) Argument {
	return Argument{Name: name, Type: argType, Default: &defaultValue}
}

// String renders the argument as "type name".
func (a Argument) String() string {
	return fmt.Sprintf("%s %s", a.Type, a.Name)
}

// FunctionSchema is the full signature of one operator.
//
// It is immutable after construction: accessors return the internal slices for
// zero-copy reads and callers must not modify them.
type FunctionSchema struct {
	name      string
	arguments []Argument
	returns   []Argument
}

// New returns a FunctionSchema with the given name, arguments and returns.
// The slices are owned by the schema afterwards.
func New(name string, arguments, returns []Argument) FunctionSchema {
	return FunctionSchema{name: name, arguments: arguments, returns: returns}
}

// Name of the operator, including any namespace prefix.
func (s *FunctionSchema) Name() string { return s.name }

// Arguments in declaration order. Read-only.
func (s *FunctionSchema) Arguments() []Argument { return s.arguments }

// Returns in declaration order. Read-only.
func (s *FunctionSchema) Returns() []Argument { return s.returns }

// NumArguments is a shortcut for len(Arguments()).
func (s *FunctionSchema) NumArguments() int { return len(s.arguments) }

// NumReturns is a shortcut for len(Returns()).
func (s *FunctionSchema) NumReturns() int { return len(s.returns) }

// LastArgument returns the final declared argument.
// It panics if the schema has no arguments.
func (s *FunctionSchema) LastArgument() Argument {
	return s.arguments[len(s.arguments)-1]
}

// Clone returns a deep-enough copy: the argument slices are cloned, so the
// copy can be extended without aliasing the original.
func (s *FunctionSchema) Clone() FunctionSchema {
	return FunctionSchema{
		name:      s.name,
		arguments: slices.Clone(s.arguments),
		returns:   slices.Clone(s.returns),
	}
}

// String renders the schema like "_caffe2::Op(Tensor a, int b) -> (Tensor c)".
func (s *FunctionSchema) String() string {
	var b strings.Builder
	b.WriteString(s.name)
	b.WriteByte('(')
	for i, arg := range s.arguments {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(arg.String())
	}
	b.WriteString(") -> (")
	for i, ret := range s.returns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(ret.String())
	}
	b.WriteByte(')')
	return b.String()
}
