// Package dispatch implements the operator dispatcher: a registry that binds
// operator schemas to per-backend kernels, and the Stack used as the calling
// convention between the dispatcher and the kernels.
//
// The registry has a two-phase lifecycle: a single-writer registration phase
// during process initialization, then a read-only dispatch phase. Freeze flips
// the registry into the read-only phase; registering afterwards is a programmer
// error and panics. The registry is an explicit object -- tests can create
// their own with NewRegistry instead of sharing the process-wide Default one.
package dispatch

import (
	"sort"
	"sync"
	"time"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/rlorigro/pytorch/schema"
)

// KernelCache is an extension point reserved for future per-operator state
// (e.g. reusable scratch buffers). It is currently always nil.
type KernelCache struct{}

// KernelFunc is one registered entry point. It consumes the call's arguments
// from the stack and replaces them with the call's results.
//
// Run failures are returned unmodified to the dispatcher's caller; broken
// calling-convention invariants panic instead.
type KernelFunc func(stack *Stack, cache *KernelCache) error

// OperatorHandle is one registered operator: its schema plus the kernels
// registered for each dispatch key.
type OperatorHandle struct {
	schema  schema.FunctionSchema
	kernels [KeyLast]KernelFunc
}

// Schema returns the operator's schema.
func (h *OperatorHandle) Schema() *schema.FunctionSchema { return &h.schema }

// HasKernel reports whether a kernel is registered for the given key.
func (h *OperatorHandle) HasKernel(key Key) bool {
	return key >= 0 && key < KeyLast && h.kernels[key] != nil
}

// Registry maps operator names to their handles.
type Registry struct {
	mu     sync.RWMutex
	ops    map[string]*OperatorHandle
	frozen bool
}

// NewRegistry returns an empty, unfrozen registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]*OperatorHandle)}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry that init()-time registration
// writes into.
func Default() *Registry { return defaultRegistry }

// Register adds the schema to the registry and returns its handle.
//
// Registering a name that already exists returns the existing handle without
// touching its schema, so a second declaration of the same operator (e.g. an
// accelerator registration following the CPU one) resolves to the same entry.
func (r *Registry) Register(s schema.FunctionSchema) *OperatorHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lockedAssertWritable("Register", s.Name())
	if handle, found := r.ops[s.Name()]; found {
		klog.V(1).Infof("dispatch: schema %q already registered, reusing handle", s.Name())
		return handle
	}
	handle := &OperatorHandle{schema: s}
	r.ops[s.Name()] = handle
	klog.V(1).Infof("dispatch: registered schema %s", s.String())
	return handle
}

// RegisterKernel binds a kernel to (operator, key). If a kernel is already
// bound for that pair the last registration wins, with a warning logged.
func (r *Registry) RegisterKernel(handle *OperatorHandle, key Key, kernel KernelFunc) {
	if key < 0 || key >= KeyLast {
		exceptions.Panicf("dispatch.RegisterKernel(%q): invalid dispatch key %d", handle.Schema().Name(), key)
	}
	if kernel == nil {
		exceptions.Panicf("dispatch.RegisterKernel(%q, %s): nil kernel", handle.Schema().Name(), key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lockedAssertWritable("RegisterKernel", handle.Schema().Name())
	if handle.kernels[key] != nil {
		klog.Warningf("dispatch: kernel for %q/%s registered twice, last registration wins",
			handle.Schema().Name(), key)
	}
	handle.kernels[key] = kernel
}

func (r *Registry) lockedAssertWritable(op, name string) {
	if r.frozen {
		exceptions.Panicf("dispatch.Registry.%s(%q): registry is frozen, all registration"+
			" must happen during initialization", op, name)
	}
}

// Freeze ends the registration phase. The registry is read-only afterwards.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Lookup returns the handle registered under name.
func (r *Registry) Lookup(name string) (*OperatorHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handle, found := r.ops[name]
	return handle, found
}

// Operators returns the names of all registered operators, sorted.
// Meant for introspection and tests.
func (r *Registry) Operators() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call dispatches one invocation of the named operator on the given backend.
//
// The stack must hold one value per schema argument, in declaration order. On
// success the arguments have been replaced by the operator's results. On error
// the kernel guarantees no partial results were pushed.
func (r *Registry) Call(name string, key Key, stack *Stack) error {
	handle, found := r.Lookup(name)
	if !found {
		return errors.Errorf("dispatch.Call: operator %q is not registered", name)
	}
	return r.CallHandle(handle, key, stack)
}

// CallHandle is Call with the lookup already resolved.
func (r *Registry) CallHandle(handle *OperatorHandle, key Key, stack *Stack) error {
	if !handle.HasKernel(key) {
		return errors.Errorf("dispatch.Call: operator %q has no kernel for dispatch key %s",
			handle.Schema().Name(), key)
	}
	start := time.Now()
	err := handle.kernels[key](stack, nil)
	observeDispatch(handle.Schema().Name(), key, time.Since(start), err)
	if err != nil {
		return errors.WithMessagef(err, "operator %q (%s)", handle.Schema().Name(), key)
	}
	return nil
}

// CallDefault dispatches with the process-wide default dispatch key
// (see DefaultKey).
func (r *Registry) CallDefault(name string, stack *Stack) error {
	return r.Call(name, DefaultKey(), stack)
}
