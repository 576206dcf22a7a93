//go:build !debug_mem_utils

package memutils

const (
	// AllocFillPattern is the byte written across newly-allocated payloads. It is only used
	// when the debug_mem_utils build tag is present.
	AllocFillPattern byte = 0xCD
	// FreeFillPattern is the byte written across freed payloads. It is only used
	// when the debug_mem_utils build tag is present.
	FreeFillPattern byte = 0xDD
)

// DebugFill writes pattern across every byte of data, making use of uninitialized or freed memory
// easy to spot in a memory dump. This method no-ops unless the debug_mem_utils build tag is present.
func DebugFill(data []byte, pattern byte) {
}

// DebugValidate will call Validate on the provided object and pass any error to fail. A nil fail
// panics with the error instead. This method no-ops unless the debug_mem_utils build tag is present
func DebugValidate(validatable Validatable, fail func(err error)) {
}
