// internal/poller/poller.go
package poller

import (
	"errors"
	"time"
)

// StatusReader is the one device operation the poller needs.
// *flash.Device satisfies it.
type StatusReader interface {
	ReadStatus() (byte, error)
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	Interval time.Duration
}

// Poller is a dumb, clock-driven status sampler.
type Poller struct {
	cfg Config
	dev StatusReader
	now func() time.Time
}

// New creates a poller with immutable config.
func New(cfg Config, dev StatusReader) (*Poller, error) {
	if dev == nil {
		return nil, errors.New("poller: status reader required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	return &Poller{cfg: cfg, dev: dev, now: time.Now}, nil
}

// PollOnce performs exactly one status transaction.
func (p *Poller) PollOnce() PollResult {
	res := PollResult{At: p.now()}

	s, err := p.dev.ReadStatus()
	if err != nil {
		res.Err = err
		return res
	}
	res.Status = s
	return res
}
