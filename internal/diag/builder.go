// internal/diag/builder.go
package diag

import (
	"time"

	"go.uber.org/zap"

	cfg "github.com/tamzrod/norflash/internal/config"
)

// Services are the diagnostic collaborators handed to the flash device.
type Services struct {
	Emitter LogEmitter
	Manager Multi
	Status  *StatusNotifier // nil when status memory is not configured
}

// Build wires the diagnostic services from config.
// The log emitter and log manager are always present; the Modbus status
// notifier is opt-in. One connection attempt, no retries.
func Build(c cfg.DiagnosticsConfig, log *zap.Logger) (Services, func() error, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("diag")

	svc := Services{
		Emitter: LogEmitter{Log: log},
		Manager: Multi{LogManager{Log: log}},
	}

	if c.Modbus == nil {
		return svc, func() error { return nil }, nil
	}

	m := c.Modbus
	client, err := NewEndpointClient(EndpointConfig{
		Endpoint: m.Endpoint,
		Timeout:  time.Duration(m.TimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return Services{}, nil, err
	}

	svc.Status = NewStatusNotifier(
		StatusPlan{UnitID: m.UnitID, BaseSlot: m.BaseSlot},
		client,
		log,
	)
	svc.Manager = append(svc.Manager, svc.Status)

	return svc, client.Close, nil
}
