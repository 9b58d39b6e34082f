package dispatch

import (
	"github.com/gomlx/exceptions"

	"github.com/rlorigro/pytorch/types/values"
)

// Stack is the single channel used to pass arguments into and results out of an
// operator call: one type-erased value per declared argument, in declaration
// order, with the last argument on top.
//
// Values are moved, never copied: popping transfers ownership of the slots to
// the caller and clears them from the stack; pushing transfers ownership back.
// A Stack is used by one call at a time -- there is no internal locking.
//
// The zero Stack is ready to use.
type Stack struct {
	slots []values.Value
}

// NewStack returns an empty stack with capacity for n values.
func NewStack(n int) *Stack {
	return &Stack{slots: make([]values.Value, 0, n)}
}

// Len returns the number of values currently on the stack.
func (s *Stack) Len() int { return len(s.slots) }

// Push places v on top of the stack, taking ownership of it.
func (s *Stack) Push(v values.Value) {
	s.slots = append(s.slots, v)
}

// Pop removes and returns the top value. Popping an empty stack is a
// programmer error and panics.
func (s *Stack) Pop() values.Value {
	if len(s.slots) == 0 {
		exceptions.Panicf("dispatch.Stack.Pop: stack is empty")
	}
	top := s.slots[len(s.slots)-1]
	s.slots[len(s.slots)-1] = values.Value{} // Clear the moved-out slot.
	s.slots = s.slots[:len(s.slots)-1]
	return top
}

// PopN removes the top n values and returns them in declaration order: the
// bottom-most of the removed region first, the old top last.
//
// TODO: reuse the returned slice through a per-operator KernelCache once
// kernel caches carry state, to avoid the allocation per call.
func (s *Stack) PopN(n int) []values.Value {
	if n < 0 || n > len(s.slots) {
		exceptions.Panicf("dispatch.Stack.PopN(%d): stack has %d values", n, len(s.slots))
	}
	from := len(s.slots) - n
	popped := make([]values.Value, n)
	copy(popped, s.slots[from:])
	for i := from; i < len(s.slots); i++ {
		s.slots[i] = values.Value{}
	}
	s.slots = s.slots[:from]
	return popped
}

// Peek returns the value at depth below the top (Peek(0) is the top) without
// moving it. Meant for tests and debugging; the value stays owned by the stack.
func (s *Stack) Peek(depth int) values.Value {
	if depth < 0 || depth >= len(s.slots) {
		exceptions.Panicf("dispatch.Stack.Peek(%d): stack has %d values", depth, len(s.slots))
	}
	return s.slots[len(s.slots)-1-depth]
}
