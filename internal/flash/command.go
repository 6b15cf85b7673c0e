// internal/flash/command.go
package flash

// Opcode is one IS25LP080D command byte.
type Opcode uint8

const (
	OpRead         Opcode = 0x03
	OpWriteEnable  Opcode = 0x06
	OpWriteDisable Opcode = 0x04
	OpPageProgram  Opcode = 0x02
	OpSectorErase  Opcode = 0x20
	OpBlockErase   Opcode = 0xD8
	OpReadStatus   Opcode = 0x05
)

// ---- GEOMETRY ----

// Capacity is the size of the part in bytes (8 Mbit).
const Capacity = 1 << 20

// PageSize is the page program window.
const PageSize = 256

// SectorSize is the small erase unit.
const SectorSize = 4096

// BlockSize is the large erase unit.
const BlockSize = 65536

// ---- STATUS REGISTER ----

// StatusWIP is set while a program or erase is in flight.
const StatusWIP byte = 0x01

// StatusWEL is the write enable latch.
const StatusWEL byte = 0x02

// String returns the datasheet mnemonic.
func (op Opcode) String() string {
	switch op {
	case OpRead:
		return "READ"
	case OpWriteEnable:
		return "WREN"
	case OpWriteDisable:
		return "WRDI"
	case OpPageProgram:
		return "PP"
	case OpSectorErase:
		return "SER"
	case OpBlockErase:
		return "BER"
	case OpReadStatus:
		return "RDSR"
	default:
		return "UNKNOWN"
	}
}

// Frame builds an addressed command.
//
// Layout:
//   OP(1) A23..16(1) A15..8(1) A7..0(1)
//
// The top byte of addr is dropped; callers validate addr against Capacity.
func Frame(op Opcode, addr uint32) [4]byte {
	return [4]byte{
		byte(op),
		byte(addr >> 16),
		byte(addr >> 8),
		byte(addr),
	}
}

// FrameOpcode builds a one byte command (status, write enable).
func FrameOpcode(op Opcode) [1]byte {
	return [1]byte{byte(op)}
}

// eraseOpcode picks the erase command by exact size match.
func eraseOpcode(size uint32) (Opcode, bool) {
	switch size {
	case SectorSize:
		return OpSectorErase, true
	case BlockSize:
		return OpBlockErase, true
	default:
		return 0, false
	}
}
