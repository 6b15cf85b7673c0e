// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/norflash/internal/flash"
)

// PollResult is one status register sample.
type PollResult struct {
	At time.Time

	// Status is copied verbatim from the part.
	Status byte

	Err error // non-nil means the sample failed
}

// Busy reports whether the write-in-progress bit was set.
func (r PollResult) Busy() bool { return r.Err == nil && r.Status&flash.StatusWIP != 0 }

// WriteEnabled reports whether the write-enable latch was set.
func (r PollResult) WriteEnabled() bool { return r.Err == nil && r.Status&flash.StatusWEL != 0 }
