// internal/flash/sim/chip.go
package sim

import (
	"errors"
	"sync"

	"github.com/tamzrod/norflash/internal/flash"
)

var (
	ErrNotSelected     = errors.New("sim: chip not selected")
	ErrAlreadySelected = errors.New("sim: chip already selected")
	ErrInjected        = errors.New("sim: injected fault")
)

// Stats counts bus primitives seen by the chip.
type Stats struct {
	Selects     int
	Deselects   int
	Transmits   int
	Receives    int
	StatusReads int
}

// Chip models an IS25LP080D behind flash.Transport.
//
// Commands execute on chip-select release, like the real part.
// Programming only clears bits and wraps inside the 256-byte page.
// While busy, every command except read-status is ignored.
type Chip struct {
	mu sync.Mutex

	mem      []byte
	selected bool
	cmd      []byte
	readOff  uint32
	wel      bool
	busy     int
	stats    Stats

	// BusyPolls is how many status reads report WIP after each program/erase.
	BusyPolls int
	// StuckBusy makes WIP never clear.
	StuckBusy bool
	// FailTransmitAt fails the n-th Transmit (1-based, 0 = never).
	FailTransmitAt int
	// FailReceiveAt fails the n-th Receive (1-based, 0 = never).
	FailReceiveAt int
}

// New returns an erased chip.
func New() *Chip {
	mem := make([]byte, flash.Capacity)
	for i := range mem {
		mem[i] = 0xFF
	}
	return &Chip{mem: mem}
}

func (c *Chip) Select() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Selects++
	if c.selected {
		return ErrAlreadySelected
	}
	c.selected = true
	c.cmd = c.cmd[:0]
	c.readOff = 0
	return nil
}

func (c *Chip) Deselect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Deselects++
	if !c.selected {
		return ErrNotSelected
	}
	c.selected = false
	c.execute()
	return nil
}

func (c *Chip) Transmit(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Transmits++
	if c.FailTransmitAt != 0 && c.stats.Transmits == c.FailTransmitAt {
		return ErrInjected
	}
	if !c.selected {
		return ErrNotSelected
	}
	c.cmd = append(c.cmd, p...)
	return nil
}

func (c *Chip) Receive(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Receives++
	if c.FailReceiveAt != 0 && c.stats.Receives == c.FailReceiveAt {
		return ErrInjected
	}
	if !c.selected {
		return ErrNotSelected
	}
	if len(c.cmd) == 0 {
		fill(p, 0xFF)
		return nil
	}

	switch flash.Opcode(c.cmd[0]) {
	case flash.OpReadStatus:
		for i := range p {
			p[i] = c.status()
			c.stats.StatusReads++
			if c.busy > 0 {
				c.busy--
			}
		}
	case flash.OpRead:
		if len(c.cmd) < 4 || c.isBusy() {
			fill(p, 0xFF)
			return nil
		}
		addr := address(c.cmd)
		for i := range p {
			p[i] = c.mem[(addr+c.readOff)%flash.Capacity]
			c.readOff++
		}
	default:
		fill(p, 0xFF)
	}
	return nil
}

// Stats returns a copy of the call counters.
func (c *Chip) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// ResetStats zeroes the call counters.
func (c *Chip) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = Stats{}
}

// Selected reports whether chip-select is asserted.
func (c *Chip) Selected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Peek copies raw memory without going through the bus.
func (c *Chip) Peek(addr uint32, p []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	copy(p, c.mem[addr:])
}

func (c *Chip) status() byte {
	var s byte
	if c.isBusy() {
		s |= flash.StatusWIP
	}
	if c.wel {
		s |= flash.StatusWEL
	}
	return s
}

func (c *Chip) isBusy() bool {
	return c.StuckBusy || c.busy > 0
}

// execute runs the command latched during the last selection.
func (c *Chip) execute() {
	if len(c.cmd) == 0 || c.isBusy() {
		return
	}

	switch flash.Opcode(c.cmd[0]) {
	case flash.OpWriteEnable:
		c.wel = true

	case flash.OpWriteDisable:
		c.wel = false

	case flash.OpPageProgram:
		if !c.wel || len(c.cmd) < 4 {
			return
		}
		addr := address(c.cmd)
		page := addr &^ (flash.PageSize - 1)
		col := addr & (flash.PageSize - 1)
		for _, b := range c.cmd[4:] {
			c.mem[page+col] &= b
			col = (col + 1) % flash.PageSize
		}
		c.startBusy()

	case flash.OpSectorErase:
		c.erase(flash.SectorSize)

	case flash.OpBlockErase:
		c.erase(flash.BlockSize)
	}
}

func (c *Chip) erase(size uint32) {
	if !c.wel || len(c.cmd) < 4 {
		return
	}
	base := address(c.cmd) &^ (size - 1)
	fill(c.mem[base:base+size], 0xFF)
	c.startBusy()
}

func (c *Chip) startBusy() {
	c.wel = false
	c.busy = c.BusyPolls
}

func address(cmd []byte) uint32 {
	return (uint32(cmd[1])<<16 | uint32(cmd[2])<<8 | uint32(cmd[3])) % flash.Capacity
}

func fill(p []byte, v byte) {
	for i := range p {
		p[i] = v
	}
}

// Image returns a copy of the whole memory array.
func (c *Chip) Image() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.mem...)
}

// FromImage returns a chip holding img. Short images are padded with
// erased bytes; img must not exceed the part capacity.
func FromImage(img []byte) (*Chip, error) {
	if len(img) > flash.Capacity {
		return nil, errors.New("sim: image larger than capacity")
	}
	c := New()
	copy(c.mem, img)
	return c, nil
}
