// Package environment records the deployment stage the process was started
// in. Boot sets it once from the -env flag; anything else may only read it.
package environment

import "sync/atomic"

// Known stages.
const (
	Dev     = "dev"
	Staging = "staging"
	Prod    = "prod"
	Test    = "test"
)

// Defaults to Test so code under `go test` never accidentally behaves like
// production.
var current atomic.Value

func init() {
	current.Store(Test)
}

// SetCurrent sets the stage for the lifetime of the process. The first call
// wins; later calls are ignored so libraries can't re-stage a running service.
func SetCurrent(stage string) {
	switch stage {
	case Dev, Staging, Prod, Test:
	default:
		panic("environment: unknown stage " + stage)
	}
	current.CompareAndSwap(Test, stage)
}

// GetCurrent returns the current stage.
func GetCurrent() string {
	return current.Load().(string)
}

// IsProd reports whether the process is running against production.
func IsProd() bool {
	return GetCurrent() == Prod
}

// IsTest reports whether the process is running under test.
func IsTest() bool {
	return GetCurrent() == Test
}
