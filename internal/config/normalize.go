// internal/config/normalize.go
package config

// Defaults applied by Normalize.
const (
	DefaultBusyTimeoutMs   = 2000
	DefaultBaudRate        = 115200
	DefaultDataBits        = 8
	DefaultStopBits        = 1
	DefaultParity          = "N"
	DefaultSerialTimeoutMs = 500
	DefaultModbusTimeoutMs = 1000
	DefaultLogFormat       = "human"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Transport.Kind == "" {
		cfg.Transport.Kind = TransportSim
	}

	if cfg.Transport.Kind == TransportSerial {
		s := &cfg.Transport.Serial
		if s.BaudRate == 0 {
			s.BaudRate = DefaultBaudRate
		}
		if s.DataBits == 0 {
			s.DataBits = DefaultDataBits
		}
		if s.StopBits == 0 {
			s.StopBits = DefaultStopBits
		}
		if s.Parity == "" {
			s.Parity = DefaultParity
		}
		if s.TimeoutMs == 0 {
			s.TimeoutMs = DefaultSerialTimeoutMs
		}
	}

	if cfg.Flash.BusyTimeoutMs == 0 {
		cfg.Flash.BusyTimeoutMs = DefaultBusyTimeoutMs
	}

	if m := cfg.Diagnostics.Modbus; m != nil && m.TimeoutMs == 0 {
		m.TimeoutMs = DefaultModbusTimeoutMs
	}

	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
