// internal/flash/errors.go
package flash

import (
	"errors"
	"fmt"
)

// Failure classes. Match with errors.Is.
var (
	ErrTransport       = errors.New("flash: transport failure")
	ErrTimeout         = errors.New("flash: busy timeout")
	ErrUnsupportedSize = errors.New("flash: unsupported erase size")
)

// ErrorCode is the single failure value of the block-device contract.
// It stays clear of the filesystem library's own codes.
const ErrorCode = -5

// Error describes one failed device operation.
type Error struct {
	Op     string // read, program, erase
	Opcode Opcode
	Addr   uint32
	Kind   error // one of the failure classes
	Err    error // transport cause, if any
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("flash: %s addr=0x%06X op=%s: %v", e.Op, e.Addr, e.Opcode, e.Kind)
	}
	return fmt.Sprintf("flash: %s addr=0x%06X op=%s: %v: %v", e.Op, e.Addr, e.Opcode, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Code is a small numeric class for status reporting.
func (e *Error) Code() uint16 {
	switch e.Kind {
	case ErrTransport:
		return 1
	case ErrTimeout:
		return 2
	case ErrUnsupportedSize:
		return 3
	default:
		return 0xFFFF
	}
}

// ResultCode folds an operation result into the contract value:
// 0 on success, ErrorCode on any failure.
func ResultCode(err error) int {
	if err == nil {
		return 0
	}
	return ErrorCode
}
