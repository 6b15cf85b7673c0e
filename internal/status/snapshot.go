// internal/status/snapshot.go
package status

// Snapshot is exactly what the notifier is allowed to deliver.
// It carries no history beyond the counter.
type Snapshot struct {
	EventCode  uint16
	Fatal      bool
	Opcode     uint8
	EventCount uint16
}

// Record folds one event into the snapshot.
// The counter saturates at EventCountMax and never wraps.
func (s Snapshot) Record(code uint16, fatal bool, opcode uint8) Snapshot {
	s.EventCode = code
	s.Fatal = fatal
	s.Opcode = opcode
	if s.EventCount < EventCountMax {
		s.EventCount++
	}
	return s
}
