package caffe2

import (
	"os"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/rlorigro/pytorch/dispatch"
	"github.com/rlorigro/pytorch/schema"
)

// DisableEnvVar suppresses all dispatcher registration when set to "1" or
// "true": every Register* call becomes a no-op. Meant for binary-size-oriented
// builds that invoke operators directly instead of through the dispatcher.
const DisableEnvVar = "PYTORCH_DISPATCH_DISABLED"

// registrationDisabled caches the DisableEnvVar check for the process
// lifetime. A variable so tests can exercise the suppressed path without
// re-executing the process.
var registrationDisabled = sync.OnceValue(disabledFromEnv)

func disabledFromEnv() bool {
	v := os.Getenv(DisableEnvVar)
	return v == "1" || v == "true"
}

// validate checks OpDef fields at registration time.
var validate = validator.New(validator.WithRequiredStructEnabled())

// OpDef declares one bridged operator: backend wiring is data, not macros.
type OpDef struct {
	// Name of the operator, without the namespace prefix.
	Name string `validate:"required"`

	// Inputs declared by the operator, in order. The synthetic
	// preallocated-outputs argument is appended automatically.
	Inputs []schema.Argument

	// Outputs declared by the operator, in order.
	Outputs []schema.Argument

	// Constructor builds the operator instance for the registering backend.
	Constructor Constructor `validate:"required"`
}

// RegisterCPU declares the operator's schema and binds its CPU kernel.
//
// It must precede any accelerator registration of the same operator: the CPU
// declaration is the one that defines the schema.
//
// The returned handle is nil when registration is disabled (see DisableEnvVar
// and Manifest).
func RegisterCPU(reg *dispatch.Registry, def OpDef) (*dispatch.OperatorHandle, error) {
	if err := validate.Struct(def); err != nil {
		return nil, errors.WithMessagef(err, "caffe2.RegisterCPU(%q)", def.Name)
	}
	if !registrationEnabled(def.Name, dispatch.KeyCPU) {
		klog.V(1).Infof("caffe2: registration of %q/CPU suppressed", def.Name)
		return nil, nil
	}
	sch := MakeFunctionSchema(def.Name, def.Inputs, def.Outputs)
	handle := reg.Register(sch)
	reg.RegisterKernel(handle, dispatch.KeyCPU, MakeKernel(handle, def.Constructor))
	return handle, nil
}

// RegisterCUDA binds a CUDA kernel to an operator already declared with
// RegisterCPU, reusing its schema.
func RegisterCUDA(reg *dispatch.Registry, operatorName string, ctor Constructor) error {
	return registerAccelerator(reg, operatorName, dispatch.KeyCUDA, ctor)
}

// RegisterHIP binds a HIP kernel to an operator already declared with
// RegisterCPU, reusing its schema.
func RegisterHIP(reg *dispatch.Registry, operatorName string, ctor Constructor) error {
	return registerAccelerator(reg, operatorName, dispatch.KeyHIP, ctor)
}

func registerAccelerator(reg *dispatch.Registry, operatorName string, key dispatch.Key, ctor Constructor) error {
	if ctor == nil {
		return errors.Errorf("caffe2: registering %q for %s with a nil constructor", operatorName, key)
	}
	if !registrationEnabled(operatorName, key) {
		klog.V(1).Infof("caffe2: registration of %q/%s suppressed", operatorName, key)
		return nil
	}
	handle, found := reg.Lookup(SchemaNamePrefix + operatorName)
	if !found {
		return errors.Errorf("caffe2: operator %q has no CPU declaration yet -- RegisterCPU must come first",
			operatorName)
	}
	reg.RegisterKernel(handle, key, MakeKernel(handle, ctor))
	return nil
}

func registrationEnabled(operatorName string, key dispatch.Key) bool {
	if registrationDisabled() {
		return false
	}
	return activeManifest().Enabled(operatorName, key)
}
