package driver

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/physiokg/internal/metrics"
)

// InstrumentedDriver records query counts and latency per catalogued query.
type InstrumentedDriver struct {
	next GraphDriver
}

func NewInstrumentedDriver(next GraphDriver) *InstrumentedDriver {
	return &InstrumentedDriver{next: next}
}

func (d *InstrumentedDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	name := QueryName(query)
	start := time.Now()

	res, err := d.next.ExecuteQuery(ctx, query, params)

	metrics.StoreQueryDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.StoreQueriesTotal.WithLabelValues(name, status).Inc()
	return res, err
}

func (d *InstrumentedDriver) BuildIndices(ctx context.Context) error {
	return d.next.BuildIndices(ctx)
}

func (d *InstrumentedDriver) Close(ctx context.Context) error {
	return d.next.Close(ctx)
}
