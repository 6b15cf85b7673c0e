// cmd/flashctl/main.go
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "flashctl:", err)
		os.Exit(exitStatus(err))
	}
}

// exitStatus maps a coded error onto the process exit status.
// Errors that do not expose a code exit with 1.
func exitStatus(err error) int {
	code := errorCode(err)
	if code == 0 || code > 125 {
		return 1
	}
	return int(code)
}

// errorCode extracts a best-effort uint16 code from an error without assuming concrete types.
// If the error does not expose a code, returns 1 (generic error).
func errorCode(err error) uint16 {
	if err == nil {
		return 0
	}

	type coder interface{ Code() uint16 }

	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return 1
}
