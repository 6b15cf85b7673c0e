// internal/status/constants.go
package status

// Diagnostic Status Block layout constants.
// These values define the protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of holding registers per device.
const SlotsPerDevice = 8

// ---- SLOT INDICES ----

// SlotEventCode holds the last reported event code.
const SlotEventCode = 0

// SlotFatal is 1 when the last event was fatal, 0 otherwise.
const SlotFatal = 1

// SlotOpcode holds the flash opcode of the last event.
const SlotOpcode = 2

// SlotEventCount counts reported events since start.
const SlotEventCount = 3

// ---- RESERVED RANGE ----

// Slots 4-7 are reserved for future use.
const SlotReservedStart = 4
const SlotReservedEnd = 7

// ---- LIMITS ----

// EventCountMax is where the event counter saturates.
const EventCountMax uint16 = 65535
