// internal/flash/blockdev.go
package flash

import "fmt"

// Contract exposes a Device with the filesystem library's callback
// signatures. The context argument is unused: there is one fixed device.
// Every failure collapses to ErrorCode.
type Contract struct {
	Dev *Device
}

func (c Contract) Read(_ any, addr uint32, buf []byte, size uint32) int {
	return ResultCode(c.Dev.Read(addr, window(buf, size)))
}

func (c Contract) Program(_ any, addr uint32, buf []byte, size uint32) int {
	return ResultCode(c.Dev.Program(addr, window(buf, size)))
}

func (c Contract) Erase(_ any, addr uint32, size uint32) int {
	return ResultCode(c.Dev.Erase(addr, size))
}

func (c Contract) Sync(_ any) int {
	return ResultCode(c.Dev.Sync())
}

func window(buf []byte, size uint32) []byte {
	if buf == nil {
		panic("flash: nil buffer")
	}
	if uint64(size) > uint64(len(buf)) {
		panic(fmt.Sprintf("flash: size %d exceeds buffer of %d bytes", size, len(buf)))
	}
	return buf[:size]
}

// Geometry is the block-device configuration handed to littlefs.
type Geometry struct {
	ReadSize      uint32
	ProgSize      uint32
	BlockSize     uint32
	BlockCount    uint32
	CacheSize     uint32
	LookaheadSize uint32
	BlockCycles   int32
}

// DefaultGeometry maps littlefs blocks onto erase sectors.
func DefaultGeometry() Geometry {
	return Geometry{
		ReadSize:      PageSize,
		ProgSize:      PageSize,
		BlockSize:     SectorSize,
		BlockCount:    Capacity / SectorSize,
		CacheSize:     PageSize,
		LookaheadSize: PageSize,
		BlockCycles:   100,
	}
}

// BlockDevice adapts a Device to block/offset addressing.
type BlockDevice struct {
	geo        Geometry
	dev        *Device
	startBlock uint32
}

// NewBlockDevice maps block 0 onto startBlock of dev.
func NewBlockDevice(geo Geometry, dev *Device, startBlock uint32) (*BlockDevice, error) {
	if geo.BlockSize != SectorSize && geo.BlockSize != BlockSize {
		return nil, fmt.Errorf("flash: block size %d is not an erase unit", geo.BlockSize)
	}
	if startBlock >= Capacity/geo.BlockSize {
		return nil, fmt.Errorf("flash: start block %d out of range", startBlock)
	}
	if geo.BlockCount == 0 {
		geo.BlockCount = Capacity/geo.BlockSize - startBlock
	}
	if uint64(startBlock+geo.BlockCount)*uint64(geo.BlockSize) > Capacity {
		return nil, fmt.Errorf("flash: %d blocks from block %d exceed capacity", geo.BlockCount, startBlock)
	}
	return &BlockDevice{geo: geo, dev: dev, startBlock: startBlock}, nil
}

// Geometry returns the effective configuration.
func (bd *BlockDevice) Geometry() Geometry { return bd.geo }

func (bd *BlockDevice) ReadBlock(block, offset uint32, buf []byte) error {
	return bd.dev.Read(bd.addr(block, offset), buf)
}

func (bd *BlockDevice) ProgramBlock(block, offset uint32, buf []byte) error {
	return bd.dev.Program(bd.addr(block, offset), buf)
}

func (bd *BlockDevice) EraseBlock(block uint32) error {
	return bd.dev.Erase(bd.addr(block, 0), bd.geo.BlockSize)
}

func (bd *BlockDevice) Sync() error {
	return bd.dev.Sync()
}

func (bd *BlockDevice) addr(block, offset uint32) uint32 {
	if block >= bd.geo.BlockCount || offset >= bd.geo.BlockSize {
		panic(fmt.Sprintf("flash: block %d offset %d out of range", block, offset))
	}
	return bd.geo.BlockSize*(bd.startBlock+block) + offset
}
