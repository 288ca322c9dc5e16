package app

import (
	"context"
	"fmt"

	"github.com/agenthands/physiokg/internal/config"
	"github.com/agenthands/physiokg/internal/core"
	"github.com/agenthands/physiokg/internal/driver"
	"github.com/agenthands/physiokg/internal/logger"
)

// StoreStack layers the configured decorators over base. Metrics sit below the
// breaker so rejected calls are not counted as store queries.
func StoreStack(base driver.GraphDriver, cfg *config.Config, log *logger.Logger) driver.GraphDriver {
	var d driver.GraphDriver = driver.NewInstrumentedDriver(base)
	if cfg.Breaker.Enabled {
		d = driver.NewBreakerDriver(d, cfg.Breaker, log)
	}
	return d
}

// Open connects to the graph store and builds the engine. The returned
// function closes the store connection.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*core.Engine, func(), error) {
	base, err := driver.NewNeo4jDriver(ctx, cfg.Store, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to graph store: %w", err)
	}

	d := StoreStack(base, cfg, log)
	engine := core.NewEngine(d, log, cfg.Reasoning)

	closeFn := func() {
		if err := d.Close(context.Background()); err != nil {
			log.Warn("failed to close graph store", "error", err)
		}
	}
	return engine, closeFn, nil
}
