package dispatch

import (
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlorigro/pytorch/schema"
	"github.com/rlorigro/pytorch/types/values"
)

func testSchema(name string) schema.FunctionSchema {
	return schema.New(name,
		[]schema.Argument{schema.NewArgument("x")},
		[]schema.Argument{schema.NewArgument("y")})
}

func TestRegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	handle := reg.Register(testSchema("_caffe2::Noop"))
	require.NotNil(t, handle)

	found, ok := reg.Lookup("_caffe2::Noop")
	require.True(t, ok)
	assert.Same(t, handle, found)

	_, ok = reg.Lookup("_caffe2::Missing")
	assert.False(t, ok)

	// Re-registering the same name resolves to the same handle.
	again := reg.Register(testSchema("_caffe2::Noop"))
	assert.Same(t, handle, again)
	assert.Equal(t, []string{"_caffe2::Noop"}, reg.Operators())
}

func TestRegisterKernelLastWins(t *testing.T) {
	reg := NewRegistry()
	handle := reg.Register(testSchema("_caffe2::Twice"))

	first := func(stack *Stack, _ *KernelCache) error {
		stack.Push(values.FromInt(1))
		return nil
	}
	second := func(stack *Stack, _ *KernelCache) error {
		stack.Push(values.FromInt(2))
		return nil
	}
	reg.RegisterKernel(handle, KeyCPU, first)
	reg.RegisterKernel(handle, KeyCPU, second)

	stack := &Stack{}
	require.NoError(t, reg.Call("_caffe2::Twice", KeyCPU, stack))
	assert.Equal(t, int64(2), stack.Pop().Int())
}

func TestCallErrors(t *testing.T) {
	reg := NewRegistry()
	handle := reg.Register(testSchema("_caffe2::Fails"))
	reg.RegisterKernel(handle, KeyCPU, func(_ *Stack, _ *KernelCache) error {
		return errors.New("boom")
	})

	stack := &Stack{}
	err := reg.Call("_caffe2::Fails", KeyCPU, stack)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	// No kernel for the accelerator key.
	err = reg.Call("_caffe2::Fails", KeyCUDA, stack)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no kernel")

	// Unknown operator.
	require.Error(t, reg.Call("_caffe2::Unknown", KeyCPU, stack))
}

func TestFreeze(t *testing.T) {
	reg := NewRegistry()
	handle := reg.Register(testSchema("_caffe2::Frozen"))
	reg.RegisterKernel(handle, KeyCPU, func(_ *Stack, _ *KernelCache) error { return nil })
	reg.Freeze()

	// Dispatch still works after the freeze...
	require.NoError(t, reg.Call("_caffe2::Frozen", KeyCPU, &Stack{}))

	// ...but registration is a programmer error.
	require.Panics(t, func() { reg.Register(testSchema("_caffe2::Late")) })
	require.Panics(t, func() {
		reg.RegisterKernel(handle, KeyCUDA, func(_ *Stack, _ *KernelCache) error { return nil })
	})
}

func TestKeyFromString(t *testing.T) {
	key, err := KeyFromString("cuda")
	require.NoError(t, err)
	assert.Equal(t, KeyCUDA, key)
	_, err = KeyFromString("tpu")
	assert.Error(t, err)
}

func TestLookupDefaultKey(t *testing.T) {
	t.Setenv(DefaultKeyEnvVar, "hip")
	assert.Equal(t, KeyHIP, lookupDefaultKey())

	t.Setenv(DefaultKeyEnvVar, "CUDA")
	assert.Equal(t, KeyCUDA, lookupDefaultKey(), "key names are case-insensitive")

	// Invalid values fall back to CPU instead of failing.
	t.Setenv(DefaultKeyEnvVar, "quantum")
	assert.Equal(t, KeyCPU, lookupDefaultKey())

	require.NoError(t, os.Unsetenv(DefaultKeyEnvVar))
	assert.Equal(t, KeyCPU, lookupDefaultKey())
}

func TestCallDefault(t *testing.T) {
	reg := NewRegistry()
	handle := reg.Register(testSchema("_caffe2::Defaulted"))
	reg.RegisterKernel(handle, DefaultKey(), func(stack *Stack, _ *KernelCache) error {
		stack.Push(values.FromInt(7))
		return nil
	})

	stack := &Stack{}
	require.NoError(t, reg.CallDefault("_caffe2::Defaulted", stack))
	assert.Equal(t, int64(7), stack.Pop().Int())
}
