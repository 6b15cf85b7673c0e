// internal/bridge/bridge.go
package bridge

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/goburrow/serial"
)

const (
	magicHi byte = 0x53 // 'S'
	magicLo byte = 0x42 // 'B'

	versionV1 byte = 0x01

	cmdSelect   byte = 0x01
	cmdDeselect byte = 0x02
	cmdTransmit byte = 0x03
	cmdReceive  byte = 0x04

	respOK       byte = 0x00
	respRejected byte = 0x01

	headerLen = 6
	maxChunk  = 0xFFFF
)

var ErrRejected = errors.New("bridge: rejected")

// Transport implements flash.Transport over a UART-attached SPI bridge.
// Every primitive is one request/response exchange. No retries.
type Transport struct {
	mu   sync.Mutex
	port io.ReadWriteCloser
}

// Config is the serial line configuration.
type Config struct {
	Address  string
	BaudRate int
	DataBits int
	StopBits int
	Parity   string
	Timeout  time.Duration
}

// Open opens the serial port and returns a bridge transport on it.
func Open(cfg Config) (*Transport, error) {
	if cfg.Address == "" {
		return nil, errors.New("bridge: address required")
	}

	port, err := serial.Open(&serial.Config{
		Address:  cfg.Address,
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		StopBits: cfg.StopBits,
		Parity:   cfg.Parity,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("bridge: open %s: %w", cfg.Address, err)
	}

	return New(port), nil
}

// New wraps an already open byte stream.
func New(port io.ReadWriteCloser) *Transport {
	return &Transport{port: port}
}

// Close closes the underlying port.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.port.Close()
}

// ---- flash.Transport interface ----

func (t *Transport) Select() error {
	return t.exchange(cmdSelect, nil, nil)
}

func (t *Transport) Deselect() error {
	return t.exchange(cmdDeselect, nil, nil)
}

func (t *Transport) Transmit(p []byte) error {
	for len(p) > 0 {
		n := min(len(p), maxChunk)
		if err := t.exchange(cmdTransmit, p[:n], nil); err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}

func (t *Transport) Receive(p []byte) error {
	for len(p) > 0 {
		n := min(len(p), maxChunk)
		var count [2]byte
		putU16(count[:], uint16(n))
		if err := t.exchange(cmdReceive, count[:], p[:n]); err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}

// ---- request/response ----

// exchange sends one request and reads the status byte, then exactly
// len(rx) data bytes when the bridge accepted the request.
func (t *Transport) exchange(cmd byte, payload, rx []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := writeAll(t.port, buildPacketV1(cmd, payload)); err != nil {
		return fmt.Errorf("bridge: write: %w", err)
	}

	var resp [1]byte
	if _, err := io.ReadFull(t.port, resp[:]); err != nil {
		return fmt.Errorf("bridge: read status: %w", err)
	}

	switch resp[0] {
	case respOK:
	case respRejected:
		return fmt.Errorf("%w: cmd=0x%02x", ErrRejected, cmd)
	default:
		return fmt.Errorf("bridge: unknown status 0x%02x", resp[0])
	}

	if len(rx) == 0 {
		return nil
	}
	if _, err := io.ReadFull(t.port, rx); err != nil {
		return fmt.Errorf("bridge: read data: %w", err)
	}
	return nil
}

//
// ---- Bridge v1 packet builder (LOCKED) ----
//
// Layout (6 bytes header):
// 0-1  Magic "SB"
// 2    Version (0x01)
// 3    Command
// 4-5  Payload length
// 6+   Payload
//

func buildPacketV1(cmd byte, payload []byte) []byte {
	pkt := make([]byte, headerLen, headerLen+len(payload))

	pkt[0] = magicHi
	pkt[1] = magicLo
	pkt[2] = versionV1
	pkt[3] = cmd
	putU16(pkt[4:6], uint16(len(payload)))

	return append(pkt, payload...)
}

//
// ---- helpers ----
//

func writeAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

func putU16(dst []byte, v uint16) {
	dst[0] = byte(v >> 8)
	dst[1] = byte(v)
}

func getU16(src []byte) uint16 {
	return uint16(src[0])<<8 | uint16(src[1])
}
