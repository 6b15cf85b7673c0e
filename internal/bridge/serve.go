// internal/bridge/serve.go
package bridge

import (
	"errors"
	"fmt"
	"io"
)

// Bus is the SPI side a bridge drives. flash.Transport satisfies it.
type Bus interface {
	Select() error
	Deselect() error
	Transmit(p []byte) error
	Receive(p []byte) error
}

// Serve runs the bridge side of the protocol on rw until the stream ends.
// Each request is answered with a status byte; a failing bus primitive is
// answered with respRejected and does not stop the loop. Framing errors do.
func Serve(rw io.ReadWriter, bus Bus) error {
	var hdr [headerLen]byte

	for {
		if _, err := io.ReadFull(rw, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("bridge serve: read header: %w", err)
		}
		if hdr[0] != magicHi || hdr[1] != magicLo {
			return fmt.Errorf("bridge serve: bad magic % x", hdr[:2])
		}
		if hdr[2] != versionV1 {
			return fmt.Errorf("bridge serve: unsupported version %d", hdr[2])
		}

		payload := make([]byte, getU16(hdr[4:6]))
		if _, err := io.ReadFull(rw, payload); err != nil {
			return fmt.Errorf("bridge serve: read payload: %w", err)
		}

		var (
			busErr error
			rx     []byte
		)
		switch hdr[3] {
		case cmdSelect:
			busErr = bus.Select()
		case cmdDeselect:
			busErr = bus.Deselect()
		case cmdTransmit:
			busErr = bus.Transmit(payload)
		case cmdReceive:
			if len(payload) != 2 {
				busErr = errors.New("bad receive count")
				break
			}
			rx = make([]byte, getU16(payload))
			busErr = bus.Receive(rx)
		default:
			busErr = fmt.Errorf("unknown command 0x%02x", hdr[3])
		}

		if busErr != nil {
			if err := writeAll(rw, []byte{respRejected}); err != nil {
				return fmt.Errorf("bridge serve: write status: %w", err)
			}
			continue
		}

		if err := writeAll(rw, append([]byte{respOK}, rx...)); err != nil {
			return fmt.Errorf("bridge serve: write response: %w", err)
		}
	}
}
