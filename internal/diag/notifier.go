// internal/diag/notifier.go
package diag

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tamzrod/norflash/internal/status"
)

// registerWriter is the exact contract the notifier uses.
type registerWriter interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}

// StatusPlan locates the status block inside the Modbus memory.
type StatusPlan struct {
	UnitID   uint8
	BaseSlot uint16
}

// StatusNotifier is an error manager that mirrors the last event into a
// Modbus status block. Notify never fails; write errors are logged and
// force a full block re-assert on the next event.
type StatusNotifier struct {
	plan StatusPlan
	cli  registerWriter
	log  *zap.Logger

	needFull bool
	last     status.Snapshot // what the remote side holds
	cur      status.Snapshot // what it should hold
}

// NewStatusNotifier builds a notifier writing through cli.
func NewStatusNotifier(plan StatusPlan, cli registerWriter, log *zap.Logger) *StatusNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &StatusNotifier{
		plan:     plan,
		cli:      cli,
		log:      log,
		needFull: true, // full re-assert on first write
	}
}

// Notify records one event and delivers it.
func (n *StatusNotifier) Notify(code uint16, fatal bool, opcode uint8) {
	n.cur = n.cur.Record(code, fatal, opcode)

	if err := n.write(n.cur); err != nil {
		n.log.Error("status notify failed",
			zap.Uint16("event", code),
			zap.Uint8("opcode", opcode),
			zap.Error(err),
		)
	}
}

// Snapshot returns the current (intended) status.
func (n *StatusNotifier) Snapshot() status.Snapshot { return n.cur }

func (n *StatusNotifier) baseAddr() uint16 {
	// Each device owns a fixed SlotsPerDevice block.
	return n.plan.BaseSlot * status.SlotsPerDevice
}

func (n *StatusNotifier) write(s status.Snapshot) error {
	if n.cli == nil {
		return errors.New("status notifier: no client")
	}

	base := n.baseAddr()

	// ------------------------------------------------------------
	// Full block write (re-assert)
	// ------------------------------------------------------------
	if n.needFull {
		if err := n.cli.WriteRegisters(n.plan.UnitID, base, status.Encode(s)); err != nil {
			return fmt.Errorf("status notifier: full block write failed: %w", err)
		}
		n.needFull = false
		n.last = s
		return nil
	}

	want := status.Encode(s)
	have := status.Encode(n.last)

	var errs []string
	for slot := 0; slot < status.SlotReservedStart; slot++ {
		if want[slot] == have[slot] {
			continue
		}
		if err := n.cli.WriteRegisters(n.plan.UnitID, base+uint16(slot), want[slot:slot+1]); err != nil {
			errs = append(errs, fmt.Sprintf("slot%d write failed: %v", slot, err))
		}
	}

	if len(errs) > 0 {
		// Any partial failure introduces doubt: re-assert on next event.
		n.needFull = true
		return errors.New("status notifier: " + strings.Join(errs, " | "))
	}

	n.last = s
	return nil
}
