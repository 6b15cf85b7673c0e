// internal/flash/device.go
package flash

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultBusyTimeout bounds the wait after a program or erase.
const DefaultBusyTimeout = 2000 * time.Millisecond

// EventBusyTimeout is reported when the part stays busy past the timeout.
const EventBusyTimeout uint16 = 0x0201

// Clock is the timer service used by the busy wait.
type Clock interface {
	Now() time.Time
}

// Emitter writes a diagnostic record (event code + opcode).
// Fire and forget: failures stay inside the emitter.
type Emitter interface {
	Emit(event uint16, opcode uint8)
}

// ErrorManager receives process-wide error events.
// Fire and forget: failures stay inside the manager.
type ErrorManager interface {
	Notify(event uint16, fatal bool, opcode uint8)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type nopEmitter struct{}

func (nopEmitter) Emit(uint16, uint8) {}

type nopManager struct{}

func (nopManager) Notify(uint16, bool, uint8) {}

// Device drives one IS25LP080D over a Transport.
//
// All operations are synchronous. The caller must serialize access:
// Device does no locking and assumes exclusive bus ownership.
type Device struct {
	tr          Transport
	clock       Clock
	busyTimeout time.Duration
	emitter     Emitter
	errMgr      ErrorManager
	log         *zap.Logger
}

// Option configures a Device.
type Option func(*Device)

func WithClock(c Clock) Option { return func(d *Device) { d.clock = c } }

func WithBusyTimeout(t time.Duration) Option { return func(d *Device) { d.busyTimeout = t } }

func WithEmitter(e Emitter) Option { return func(d *Device) { d.emitter = e } }

func WithErrorManager(m ErrorManager) Option { return func(d *Device) { d.errMgr = m } }

func WithLogger(l *zap.Logger) Option { return func(d *Device) { d.log = l } }

// New creates a device bound to t.
func New(t Transport, opts ...Option) *Device {
	if t == nil {
		panic("flash: nil transport")
	}
	d := &Device{
		tr:          t,
		clock:       systemClock{},
		busyTimeout: DefaultBusyTimeout,
		emitter:     nopEmitter{},
		errMgr:      nopManager{},
		log:         zap.NewNop(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Read fills buf from addr. Reads need no busy wait on this part.
func (d *Device) Read(addr uint32, buf []byte) error {
	checkRange(addr, buf)

	cmd := Frame(OpRead, addr)
	err := withSelected(d.tr, func(t Transport) error {
		if err := t.Transmit(cmd[:]); err != nil {
			return err
		}
		return t.Receive(buf)
	})
	if err != nil {
		return d.fail("read", OpRead, addr, ErrTransport, err)
	}
	return nil
}

// Program writes buf at addr and waits for completion.
// The target range must be erased; the part only clears bits.
func (d *Device) Program(addr uint32, buf []byte) error {
	checkRange(addr, buf)

	if err := d.writeEnable(); err != nil {
		return d.fail("program", OpWriteEnable, addr, ErrTransport, err)
	}

	cmd := Frame(OpPageProgram, addr)
	err := withSelected(d.tr, func(t Transport) error {
		if err := t.Transmit(cmd[:]); err != nil {
			return err
		}
		return t.Transmit(buf)
	})
	if err != nil {
		return d.fail("program", OpPageProgram, addr, ErrTransport, err)
	}

	return d.waitWhileBusy("program", OpPageProgram, addr)
}

// Erase clears one sector (4 KiB) or block (64 KiB) at addr.
// Any other size fails before the bus is touched.
func (d *Device) Erase(addr, size uint32) error {
	if addr >= Capacity {
		panic(fmt.Sprintf("flash: address 0x%X out of range", addr))
	}
	if size > Capacity {
		panic(fmt.Sprintf("flash: size %d out of range", size))
	}

	op, ok := eraseOpcode(size)
	if !ok {
		return &Error{Op: "erase", Addr: addr, Kind: ErrUnsupportedSize}
	}

	if err := d.writeEnable(); err != nil {
		return d.fail("erase", OpWriteEnable, addr, ErrTransport, err)
	}

	cmd := Frame(op, addr)
	err := withSelected(d.tr, func(t Transport) error {
		return t.Transmit(cmd[:])
	})
	if err != nil {
		return d.fail("erase", op, addr, ErrTransport, err)
	}

	return d.waitWhileBusy("erase", op, addr)
}

// Sync is a flush point for the filesystem. Every operation already blocks.
func (d *Device) Sync() error {
	return nil
}

// ReadStatus performs one status register transaction.
func (d *Device) ReadStatus() (byte, error) {
	var status [1]byte
	cmd := FrameOpcode(OpReadStatus)

	err := withSelected(d.tr, func(t Transport) error {
		if err := t.Transmit(cmd[:]); err != nil {
			return err
		}
		return t.Receive(status[:])
	})
	if err != nil {
		return 0, err
	}
	return status[0], nil
}

func (d *Device) writeEnable() error {
	cmd := FrameOpcode(OpWriteEnable)
	return withSelected(d.tr, func(t Transport) error {
		return t.Transmit(cmd[:])
	})
}

// waitWhileBusy polls the status register until WIP clears.
// The deadline is checked before every poll, so a part that is never
// ready costs one poll per clock step until the timeout expires.
func (d *Device) waitWhileBusy(opName string, op Opcode, addr uint32) error {
	start := d.clock.Now()

	for {
		if d.clock.Now().Sub(start) >= d.busyTimeout {
			d.log.Warn("flash busy timeout",
				zap.String("op", opName),
				zap.Stringer("opcode", op),
				zap.Uint32("addr", addr),
				zap.Duration("timeout", d.busyTimeout),
			)
			d.emitter.Emit(EventBusyTimeout, uint8(op))
			d.errMgr.Notify(EventBusyTimeout, false, uint8(op))
			return &Error{Op: opName, Opcode: op, Addr: addr, Kind: ErrTimeout}
		}

		status, err := d.ReadStatus()
		if err != nil {
			return d.fail(opName, OpReadStatus, addr, ErrTransport, err)
		}
		if status&StatusWIP == 0 {
			return nil
		}
	}
}

func (d *Device) fail(opName string, op Opcode, addr uint32, kind, cause error) error {
	d.log.Debug("flash operation failed",
		zap.String("op", opName),
		zap.Stringer("opcode", op),
		zap.Uint32("addr", addr),
		zap.Error(cause),
	)
	return &Error{Op: opName, Opcode: op, Addr: addr, Kind: kind, Err: cause}
}

func checkRange(addr uint32, buf []byte) {
	if buf == nil {
		panic("flash: nil buffer")
	}
	if addr >= Capacity {
		panic(fmt.Sprintf("flash: address 0x%X out of range", addr))
	}
	if len(buf) > Capacity {
		panic(fmt.Sprintf("flash: size %d out of range", len(buf)))
	}
}
