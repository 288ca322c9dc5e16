package driver

import (
	"context"
	"errors"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sony/gobreaker"

	"github.com/agenthands/physiokg/internal/config"
	"github.com/agenthands/physiokg/internal/logger"
	"github.com/agenthands/physiokg/internal/metrics"
)

// BreakerDriver fails fast while the graph store keeps failing. Caller
// cancellations and deadlines are not counted against the store.
type BreakerDriver struct {
	next GraphDriver
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerDriver(next GraphDriver, cfg config.BreakerConfig, log *logger.Logger) *BreakerDriver {
	const name = "graph-store"
	metrics.BreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.IntervalSeconds) * time.Second,
		Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
	})

	return &BreakerDriver{next: next, cb: cb}
}

func (b *BreakerDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.ExecuteQuery(ctx, query, params)
	})
	if err != nil {
		return neo4j.EagerResult{}, err
	}
	return res.(neo4j.EagerResult), nil
}

func (b *BreakerDriver) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerDriver) BuildIndices(ctx context.Context) error {
	return b.next.BuildIndices(ctx)
}

func (b *BreakerDriver) Close(ctx context.Context) error {
	return b.next.Close(ctx)
}
