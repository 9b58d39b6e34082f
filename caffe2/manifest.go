package caffe2

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/rlorigro/pytorch/dispatch"
)

// Manifest is an optional, data-driven filter over dispatcher registration:
// it can disable registration entirely, or restrict listed operators to a
// subset of dispatch keys. Operators not listed are unrestricted.
//
// Example:
//
//	disabled: false
//	operators:
//	  - name: MatMul
//	    dispatch_keys: [cpu, cuda]
//	  - name: Scale
//	    dispatch_keys: [cpu]
type Manifest struct {
	// Disabled suppresses all registration, like DisableEnvVar.
	Disabled bool `yaml:"disabled"`

	// Operators restricts the listed operators to the given dispatch keys.
	Operators []ManifestOp `yaml:"operators"`
}

// ManifestOp is one per-operator restriction.
type ManifestOp struct {
	Name         string   `yaml:"name"`
	DispatchKeys []string `yaml:"dispatch_keys"`
}

// ParseManifest decodes and validates a YAML manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.WithMessage(err, "caffe2: parsing registration manifest")
	}
	for _, op := range m.Operators {
		if op.Name == "" {
			return nil, errors.New("caffe2: registration manifest has an operator without a name")
		}
		for _, keyName := range op.DispatchKeys {
			if _, err := dispatch.KeyFromString(keyName); err != nil {
				return nil, errors.WithMessagef(err, "caffe2: registration manifest, operator %q", op.Name)
			}
		}
	}
	return &m, nil
}

// LoadManifest reads and parses a YAML manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithMessagef(err, "caffe2: reading registration manifest %q", path)
	}
	return ParseManifest(data)
}

// Enabled reports whether (operator, key) may be registered under this
// manifest. A nil manifest allows everything.
func (m *Manifest) Enabled(operatorName string, key dispatch.Key) bool {
	if m == nil {
		return true
	}
	if m.Disabled {
		return false
	}
	for _, op := range m.Operators {
		if op.Name != operatorName {
			continue
		}
		for _, keyName := range op.DispatchKeys {
			if parsed, err := dispatch.KeyFromString(keyName); err == nil && parsed == key {
				return true
			}
		}
		return false
	}
	return true
}

var (
	manifestMu sync.RWMutex
	manifest   *Manifest
)

// UseManifest installs the manifest consulted by the Register* functions.
// Call it before any registration runs (i.e. before importing packages that
// register operators in init(), or from a TestMain). Pass nil to clear.
func UseManifest(m *Manifest) {
	manifestMu.Lock()
	defer manifestMu.Unlock()
	manifest = m
}

func activeManifest() *Manifest {
	manifestMu.RLock()
	defer manifestMu.RUnlock()
	return manifest
}
