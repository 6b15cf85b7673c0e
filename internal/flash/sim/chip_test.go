// internal/flash/sim/chip_test.go
package sim

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/tamzrod/norflash/internal/flash"
)

func TestRoundTrip_ProgramThenRead(t *testing.T) {
	chip := New()
	dev := flash.New(chip)

	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		// stay inside one page so the part does not wrap
		addr := uint32(rng.Intn(flash.Capacity))
		room := flash.PageSize - int(addr%flash.PageSize)
		size := 1 + rng.Intn(room)

		want := make([]byte, size)
		rng.Read(want)

		if err := dev.Erase(addr&^(flash.SectorSize-1), flash.SectorSize); err != nil {
			t.Fatalf("Erase() err=%v", err)
		}
		if err := dev.Program(addr, want); err != nil {
			t.Fatalf("Program() err=%v", err)
		}

		got := make([]byte, size)
		if err := dev.Read(addr, got); err != nil {
			t.Fatalf("Read() err=%v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("addr=0x%06X size=%d: round trip mismatch", addr, size)
		}
	}
}

func TestRoundTrip_LastByte(t *testing.T) {
	chip := New()
	dev := flash.New(chip)

	if err := dev.Program(flash.Capacity-1, []byte{0x5A}); err != nil {
		t.Fatalf("Program() err=%v", err)
	}
	got := make([]byte, 1)
	if err := dev.Read(flash.Capacity-1, got); err != nil {
		t.Fatalf("Read() err=%v", err)
	}
	if got[0] != 0x5A {
		t.Fatalf("got 0x%02X", got[0])
	}
}

func TestProgram_OnlyClearsBits(t *testing.T) {
	chip := New()
	dev := flash.New(chip)

	if err := dev.Program(0x200, []byte{0xF0}); err != nil {
		t.Fatalf("Program() err=%v", err)
	}
	if err := dev.Program(0x200, []byte{0x3C}); err != nil {
		t.Fatalf("Program() err=%v", err)
	}

	got := make([]byte, 1)
	chip.Peek(0x200, got)
	if got[0] != 0x30 {
		t.Fatalf("expected 0x30 after AND, got 0x%02X", got[0])
	}
}

func TestProgram_WrapsInsidePage(t *testing.T) {
	chip := New()
	dev := flash.New(chip)

	if err := dev.Program(flash.PageSize-1, []byte{0x11, 0x22}); err != nil {
		t.Fatalf("Program() err=%v", err)
	}

	got := make([]byte, flash.PageSize)
	chip.Peek(0, got)
	if got[flash.PageSize-1] != 0x11 || got[0] != 0x22 {
		t.Fatalf("page wrap not modelled: first=0x%02X last=0x%02X", got[0], got[flash.PageSize-1])
	}

	next := make([]byte, 1)
	chip.Peek(flash.PageSize, next)
	if next[0] != 0xFF {
		t.Fatalf("next page touched: 0x%02X", next[0])
	}
}

func TestErase_SectorAndBlock(t *testing.T) {
	chip := New()
	dev := flash.New(chip)

	zeros := make([]byte, flash.PageSize)
	for _, addr := range []uint32{0x10000, 0x10000 + flash.SectorSize, 0x1F000} {
		if err := dev.Program(addr, zeros); err != nil {
			t.Fatalf("Program() err=%v", err)
		}
	}

	if err := dev.Erase(0x10000, flash.SectorSize); err != nil {
		t.Fatalf("Erase(sector) err=%v", err)
	}
	b := make([]byte, 1)
	chip.Peek(0x10000, b)
	if b[0] != 0xFF {
		t.Fatalf("sector not erased")
	}
	chip.Peek(0x10000+flash.SectorSize, b)
	if b[0] != 0x00 {
		t.Fatalf("neighbouring sector erased")
	}

	if err := dev.Erase(0x10000, flash.BlockSize); err != nil {
		t.Fatalf("Erase(block) err=%v", err)
	}
	chip.Peek(0x1F000, b)
	if b[0] != 0xFF {
		t.Fatalf("block not erased")
	}
}

func TestWriteEnableRequired(t *testing.T) {
	chip := New()

	// program command without WREN is ignored by the part
	_ = chip.Select()
	cmd := flash.Frame(flash.OpPageProgram, 0)
	_ = chip.Transmit(cmd[:])
	_ = chip.Transmit([]byte{0x00})
	_ = chip.Deselect()

	b := make([]byte, 1)
	chip.Peek(0, b)
	if b[0] != 0xFF {
		t.Fatalf("program executed without write enable")
	}
}

func TestBusyPolls_CountStatusReads(t *testing.T) {
	chip := New()
	chip.BusyPolls = 7
	dev := flash.New(chip)

	if err := dev.Erase(0, flash.SectorSize); err != nil {
		t.Fatalf("Erase() err=%v", err)
	}
	if got := chip.Stats().StatusReads; got != 8 {
		t.Fatalf("expected 8 status reads, got %d", got)
	}
}

type fastClock struct{ now time.Time }

func (c *fastClock) Now() time.Time {
	c.now = c.now.Add(50 * time.Millisecond)
	return c.now
}

func TestStuckBusy_TimesOut(t *testing.T) {
	chip := New()
	chip.StuckBusy = true
	dev := flash.New(chip, flash.WithClock(&fastClock{}))

	err := dev.Program(0, []byte{0})
	if !errors.Is(err, flash.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if chip.Selected() {
		t.Fatalf("chip left selected")
	}
}

func TestStats_OnePairPerTransaction(t *testing.T) {
	chip := New()
	dev := flash.New(chip)

	if err := dev.Program(0, []byte{1, 2}); err != nil {
		t.Fatalf("Program() err=%v", err)
	}
	s := chip.Stats()
	// WREN, PP, RDSR
	if s.Selects != 3 || s.Deselects != 3 {
		t.Fatalf("stats=%+v", s)
	}

	chip.ResetStats()
	chip.FailReceiveAt = 1
	if err := dev.Read(0, make([]byte, 2)); !errors.Is(err, flash.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	s = chip.Stats()
	if s.Selects != 1 || s.Deselects != 1 || chip.Selected() {
		t.Fatalf("fault path stats=%+v selected=%v", s, chip.Selected())
	}
}

func TestBlockDevice_OverChip(t *testing.T) {
	chip := New()
	bd, err := flash.NewBlockDevice(flash.DefaultGeometry(), flash.New(chip), 8)
	if err != nil {
		t.Fatalf("NewBlockDevice() err=%v", err)
	}

	if err := bd.EraseBlock(1); err != nil {
		t.Fatalf("EraseBlock() err=%v", err)
	}
	if err := bd.ProgramBlock(1, 16, []byte("littlefs")); err != nil {
		t.Fatalf("ProgramBlock() err=%v", err)
	}

	raw := make([]byte, 8)
	chip.Peek(9*flash.SectorSize+16, raw)
	if string(raw) != "littlefs" {
		t.Fatalf("raw=%q", raw)
	}

	got := make([]byte, 8)
	if err := bd.ReadBlock(1, 16, got); err != nil {
		t.Fatalf("ReadBlock() err=%v", err)
	}
	if string(got) != "littlefs" {
		t.Fatalf("got=%q", got)
	}
}

func TestImage_RoundTrip(t *testing.T) {
	chip := New()
	if err := flash.New(chip).Program(0x300, []byte{0x12, 0x34}); err != nil {
		t.Fatalf("Program() err=%v", err)
	}

	again, err := FromImage(chip.Image())
	if err != nil {
		t.Fatalf("FromImage() err=%v", err)
	}
	got := make([]byte, 2)
	again.Peek(0x300, got)
	if got[0] != 0x12 || got[1] != 0x34 {
		t.Fatalf("got % X", got)
	}

	short, err := FromImage([]byte{0x00})
	if err != nil {
		t.Fatalf("FromImage(short) err=%v", err)
	}
	short.Peek(0, got)
	if got[0] != 0x00 || got[1] != 0xFF {
		t.Fatalf("short image not padded: % X", got)
	}

	if _, err := FromImage(make([]byte, flash.Capacity+1)); err == nil {
		t.Fatalf("expected oversize error")
	}
}
