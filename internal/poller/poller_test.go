// internal/poller/poller_test.go
package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tamzrod/norflash/internal/flash"
	"github.com/tamzrod/norflash/internal/flash/sim"
)

type fakeReader struct {
	status byte
	fail   bool
}

func (f *fakeReader) ReadStatus() (byte, error) {
	if f.fail {
		return 0, errors.New("fail status")
	}
	return f.status, nil
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{Interval: time.Second}, nil); err == nil {
		t.Fatalf("expected error for nil reader")
	}
	if _, err := New(Config{}, &fakeReader{}); err == nil {
		t.Fatalf("expected error for zero interval")
	}
}

func TestPollOnce_Success(t *testing.T) {
	p, err := New(Config{Interval: time.Second}, &fakeReader{status: 0x03})
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	res := p.PollOnce()
	if res.Err != nil {
		t.Fatalf("PollOnce err=%v", res.Err)
	}
	if !res.Busy() || !res.WriteEnabled() {
		t.Fatalf("status bits not decoded: 0x%02X", res.Status)
	}
	if res.At.IsZero() {
		t.Fatalf("timestamp not set")
	}
}

func TestPollOnce_Failure(t *testing.T) {
	p, err := New(Config{Interval: time.Second}, &fakeReader{status: 0xFF, fail: true})
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	res := p.PollOnce()
	if res.Err == nil {
		t.Fatalf("expected error")
	}
	if res.Busy() || res.Status != 0 {
		t.Fatalf("failed sample must not carry status")
	}
}

func TestPollOnce_AgainstChip(t *testing.T) {
	chip := sim.New()
	p, err := New(Config{Interval: time.Second}, flash.New(chip))
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	chip.StuckBusy = true
	if !p.PollOnce().Busy() {
		t.Fatalf("expected busy sample")
	}
	chip.StuckBusy = false
	if p.PollOnce().Busy() {
		t.Fatalf("expected idle sample")
	}
	if s := chip.Stats(); s.Selects != 2 || s.Deselects != 2 {
		t.Fatalf("stats=%+v", s)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	p, err := New(Config{Interval: time.Millisecond}, &fakeReader{})
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan PollResult)
	go p.Run(ctx, out)

	select {
	case <-out:
	case <-time.After(2 * time.Second):
		t.Fatalf("no sample emitted")
	}

	cancel()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-out:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("channel not closed after cancel")
		}
	}
}
