// Package backend assembles the storage and messaging infrastructure
// selected by configuration, so both binaries wire up the same way.
package backend

import (
	"fmt"

	"wallet/internal/amqp"
	"wallet/internal/config"
	"wallet/internal/log"
	"wallet/internal/storage"
)

// Result holds the assembled infrastructure. Events is nil when AMQP
// is not configured or unreachable; callers must treat it as optional.
type Result struct {
	Store  storage.Store
	Events *amqp.Client
}

// Close releases the store and the AMQP connection.
func (r *Result) Close() error {
	var firstErr error
	if r.Events != nil {
		if err := r.Events.Close(); err != nil {
			firstErr = err
		}
	}
	if err := r.Store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Build creates the store named by cfg.DataBackend and, when an AMQP
// URL is set, the event client. An unreachable broker is logged and
// skipped rather than treated as fatal: the ledger works without it.
func Build(cfg *config.Config, logger *log.Logger) (*Result, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentStorage)

	var store storage.Store
	switch cfg.DataBackend {
	case "memory":
		store = storage.NewMemory()
		logger.Info("Initialized memory backend")
	case "sqlite":
		s, err := storage.NewSQLite(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		store = s
		logger.Info("Initialized sqlite backend", "path", cfg.SQLiteDBPath)
	default:
		return nil, fmt.Errorf("unsupported data backend: %s", cfg.DataBackend)
	}

	var events *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without events", log.FieldError, err.Error())
		} else {
			events = client
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	return &Result{Store: store, Events: events}, nil
}
