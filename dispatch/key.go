package dispatch

import (
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Key identifies which backend a registered kernel targets.
type Key int

const (
	// KeyCPU is the general-purpose processor backend.
	KeyCPU Key = iota
	// KeyCUDA is the Nvidia GPU backend.
	KeyCUDA
	// KeyHIP is the AMD GPU backend.
	KeyHIP

	// KeyLast is one past the highest valid key; used to size per-key tables.
	KeyLast
)

// String implements fmt.Stringer.
func (k Key) String() string {
	switch k {
	case KeyCPU:
		return "CPU"
	case KeyCUDA:
		return "CUDA"
	case KeyHIP:
		return "HIP"
	}
	return "InvalidKey"
}

// KeyFromString parses a dispatch key name, case-insensitively.
func KeyFromString(name string) (Key, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "CPU":
		return KeyCPU, nil
	case "CUDA":
		return KeyCUDA, nil
	case "HIP":
		return KeyHIP, nil
	}
	return KeyLast, errors.Errorf("unknown dispatch key %q", name)
}

// DefaultKeyEnvVar is the environment variable selecting the dispatch key used
// by Registry.CallDefault. Unset or invalid values fall back to CPU.
const DefaultKeyEnvVar = "PYTORCH_DEFAULT_DISPATCH"

var (
	defaultKeyOnce sync.Once
	defaultKey     Key
)

// DefaultKey returns the process-wide default dispatch key: the value of
// PYTORCH_DEFAULT_DISPATCH if set and valid, otherwise CPU.
// It is resolved once, at first use.
func DefaultKey() Key {
	defaultKeyOnce.Do(func() {
		defaultKey = lookupDefaultKey()
	})
	return defaultKey
}

func lookupDefaultKey() Key {
	if name, found := os.LookupEnv(DefaultKeyEnvVar); found {
		if key, err := KeyFromString(name); err == nil {
			return key
		}
	}
	return KeyCPU
}
