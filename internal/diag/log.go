// internal/diag/log.go
package diag

import "go.uber.org/zap"

// LogEmitter writes diagnostic records to a zap logger.
type LogEmitter struct {
	Log *zap.Logger
}

func (e LogEmitter) Emit(code uint16, opcode uint8) {
	e.Log.Warn("diagnostic record",
		zap.Uint16("event", code),
		zap.Uint8("opcode", opcode),
	)
}

// LogManager is the error manager used when no status memory is configured.
type LogManager struct {
	Log *zap.Logger
}

func (m LogManager) Notify(code uint16, fatal bool, opcode uint8) {
	if fatal {
		m.Log.Error("fatal event",
			zap.Uint16("event", code),
			zap.Uint8("opcode", opcode),
		)
		return
	}
	m.Log.Warn("recoverable event",
		zap.Uint16("event", code),
		zap.Uint8("opcode", opcode),
	)
}

// Notifier is anything that receives error events.
type Notifier interface {
	Notify(code uint16, fatal bool, opcode uint8)
}

// Multi fans one event out to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(code uint16, fatal bool, opcode uint8) {
	for _, n := range m {
		n.Notify(code, fatal, opcode)
	}
}
