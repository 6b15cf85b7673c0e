// cmd/flashctl/env.go
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/norflash/internal/bridge"
	"github.com/tamzrod/norflash/internal/config"
	"github.com/tamzrod/norflash/internal/diag"
	"github.com/tamzrod/norflash/internal/flash"
	"github.com/tamzrod/norflash/internal/flash/sim"
	"github.com/tamzrod/norflash/internal/lfsfile"
	"github.com/tamzrod/norflash/internal/logger"
)

// env is the wired storage stack for one command.
type env struct {
	cfg  *config.Config
	log  *zap.Logger
	dev  *flash.Device
	pool *lfsfile.Pool

	chip    *sim.Chip // sim transport only
	closers []func() error
}

// loadConfig reads, validates and normalizes the config.
// Without a config file the stack runs on the simulated part.
func loadConfig(path string) (*config.Config, error) {
	cfg := &config.Config{}
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)
	return cfg, nil
}

func newEnv(opts rootOptions) (*env, error) {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	// CLI flags override the log section.
	if opts.debug {
		cfg.Log.Debug = true
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, log: log, pool: lfsfile.NewPool()}

	// --------------------
	// Transport
	// --------------------

	var tr flash.Transport
	switch cfg.Transport.Kind {
	case config.TransportSerial:
		s := cfg.Transport.Serial
		bt, err := bridge.Open(bridge.Config{
			Address:  s.Address,
			BaudRate: s.BaudRate,
			DataBits: s.DataBits,
			StopBits: s.StopBits,
			Parity:   s.Parity,
			Timeout:  time.Duration(s.TimeoutMs) * time.Millisecond,
		})
		if err != nil {
			e.close()
			return nil, err
		}
		e.closers = append(e.closers, bt.Close)
		tr = bt

	default:
		chip, err := openSimImage(cfg.Transport.Sim.Image)
		if err != nil {
			e.close()
			return nil, err
		}
		e.chip = chip
		tr = chip
	}

	// --------------------
	// Diagnostics
	// --------------------

	svc, closeDiag, err := diag.Build(cfg.Diagnostics, log)
	if err != nil {
		e.close()
		return nil, fmt.Errorf("diagnostics: %w", err)
	}
	e.closers = append(e.closers, closeDiag)

	e.dev = flash.New(tr,
		flash.WithBusyTimeout(time.Duration(cfg.Flash.BusyTimeoutMs)*time.Millisecond),
		flash.WithEmitter(svc.Emitter),
		flash.WithErrorManager(svc.Manager),
		flash.WithLogger(log.Named("flash")),
	)

	log.Debug("storage stack ready",
		zap.String("transport", cfg.Transport.Kind),
		zap.Int("busy_timeout_ms", cfg.Flash.BusyTimeoutMs),
		zap.Bool("status_memory", svc.Status != nil),
	)
	return e, nil
}

// close persists the sim image and releases every resource.
func (e *env) close() error {
	var errs []error

	if e.chip != nil && e.cfg.Transport.Sim.Image != "" {
		if err := os.WriteFile(e.cfg.Transport.Sim.Image, e.chip.Image(), 0o644); err != nil {
			errs = append(errs, fmt.Errorf("save sim image: %w", err))
		}
	}
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if e.log != nil {
		_ = e.log.Sync()
	}
	return errors.Join(errs...)
}

func openSimImage(path string) (*sim.Chip, error) {
	if path == "" {
		return sim.New(), nil
	}
	img, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return sim.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load sim image: %w", err)
	}
	return sim.FromImage(img)
}
