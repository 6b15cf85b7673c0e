// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/tamzrod/norflash/internal/status"
)

// maxBaseSlot keeps the status block inside the 16-bit register space.
const maxBaseSlot = 65536/status.SlotsPerDevice - 1

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil config")
	}

	// ------------------------------------------------------------
	// TRANSPORT
	// ------------------------------------------------------------

	switch cfg.Transport.Kind {
	case "", TransportSim:
	case TransportSerial:
		s := cfg.Transport.Serial
		if s.Address == "" {
			return fmt.Errorf("transport.serial: address is required")
		}
		if s.BaudRate < 0 {
			return fmt.Errorf("transport.serial: baud_rate must be >= 0 (got %d)", s.BaudRate)
		}
		if s.DataBits != 0 && (s.DataBits < 5 || s.DataBits > 8) {
			return fmt.Errorf("transport.serial: data_bits must be 5..8 (got %d)", s.DataBits)
		}
		if s.StopBits != 0 && s.StopBits != 1 && s.StopBits != 2 {
			return fmt.Errorf("transport.serial: stop_bits must be 1 or 2 (got %d)", s.StopBits)
		}
		switch s.Parity {
		case "", "N", "E", "O":
		default:
			return fmt.Errorf("transport.serial: parity must be N, E or O (got %q)", s.Parity)
		}
		if s.TimeoutMs < 0 {
			return fmt.Errorf("transport.serial: timeout_ms must be >= 0 (got %d)", s.TimeoutMs)
		}
	default:
		return fmt.Errorf("transport: unknown kind %q", cfg.Transport.Kind)
	}

	// ------------------------------------------------------------
	// FLASH
	// ------------------------------------------------------------

	if cfg.Flash.BusyTimeoutMs < 0 {
		return fmt.Errorf("flash: busy_timeout_ms must be >= 0 (got %d)", cfg.Flash.BusyTimeoutMs)
	}

	// ------------------------------------------------------------
	// DIAGNOSTICS STATUS MEMORY (OPT-IN)
	// ------------------------------------------------------------

	if m := cfg.Diagnostics.Modbus; m != nil {
		if m.Endpoint == "" {
			return fmt.Errorf("diagnostics.modbus: endpoint is required")
		}
		if int(m.BaseSlot) > maxBaseSlot {
			return fmt.Errorf("diagnostics.modbus: base_slot %d exceeds %d", m.BaseSlot, maxBaseSlot)
		}
		if m.TimeoutMs < 0 {
			return fmt.Errorf("diagnostics.modbus: timeout_ms must be >= 0 (got %d)", m.TimeoutMs)
		}
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	switch cfg.Log.Format {
	case "", "human", "json":
	default:
		return fmt.Errorf("log: format must be human or json (got %q)", cfg.Log.Format)
	}

	return nil
}
