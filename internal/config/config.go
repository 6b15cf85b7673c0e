// internal/config/config.go
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Transport   TransportConfig   `yaml:"transport"`
	Flash       FlashConfig       `yaml:"flash"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
	Log         LogConfig         `yaml:"log"`
}

// ---- TRANSPORT ----

const (
	TransportSerial = "serial"
	TransportSim    = "sim"
)

type TransportConfig struct {
	Kind   string       `yaml:"kind"` // serial | sim
	Serial SerialConfig `yaml:"serial"`
	Sim    SimConfig    `yaml:"sim"`
}

type SerialConfig struct {
	Address   string `yaml:"address"`
	BaudRate  int    `yaml:"baud_rate"`
	DataBits  int    `yaml:"data_bits"`
	StopBits  int    `yaml:"stop_bits"`
	Parity    string `yaml:"parity"` // N | E | O
	TimeoutMs int    `yaml:"timeout_ms"`
}

// SimConfig backs the simulated part with an image file (optional).
// The image is loaded before and saved after every command.
type SimConfig struct {
	Image string `yaml:"image"`
}

// ---- FLASH ----

type FlashConfig struct {
	BusyTimeoutMs int `yaml:"busy_timeout_ms"`
}

// ---- DIAGNOSTICS ----

type DiagnosticsConfig struct {
	// Status memory (optional, opt-in)
	Modbus *ModbusStatusConfig `yaml:"modbus"`
}

type ModbusStatusConfig struct {
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	BaseSlot  uint16 `yaml:"base_slot"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- LOG ----

type LogConfig struct {
	Debug  bool   `yaml:"debug"`
	Format string `yaml:"format"` // human | json
	File   string `yaml:"file"`
}

// Load reads a YAML config file. It does not validate.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes YAML config bytes. Unknown keys are rejected.
// An empty document yields the zero Config.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return &cfg, nil
}
