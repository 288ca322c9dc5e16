package core

import (
	"context"

	"github.com/agenthands/physiokg/internal/config"
	"github.com/agenthands/physiokg/internal/core/apperr"
	"github.com/agenthands/physiokg/internal/core/index"
	"github.com/agenthands/physiokg/internal/core/model"
	"github.com/agenthands/physiokg/internal/core/reasoning"
	"github.com/agenthands/physiokg/internal/driver"
	"github.com/agenthands/physiokg/internal/logger"
)

// Engine is the read-only clinical reasoning core: condition lookup and
// reasoning record assembly over one graph store.
type Engine struct {
	Driver   driver.GraphDriver
	Index    *index.Index
	Reasoner *reasoning.Aggregator
}

func NewEngine(d driver.GraphDriver, log *logger.Logger, cfg config.ReasoningConfig) *Engine {
	ix := index.New(d, cfg.ListLimit, log)
	return &Engine{
		Driver:   d,
		Index:    ix,
		Reasoner: reasoning.NewAggregator(ix, reasoning.GraphSources(d, log), cfg.MaxConcurrentFetches, log),
	}
}

func (e *Engine) Search(ctx context.Context, fragment string) ([]string, error) {
	return e.Index.Search(ctx, fragment)
}

func (e *Engine) ListConditions(ctx context.Context) ([]string, error) {
	return e.Index.List(ctx)
}

func (e *Engine) Generate(ctx context.Context, condition string) (*model.ReasoningRecord, error) {
	return e.Reasoner.Generate(ctx, condition)
}

// Ping checks that the store answers queries.
func (e *Engine) Ping(ctx context.Context) error {
	_, err := e.Driver.ExecuteQuery(ctx, driver.PingQuery, nil)
	return apperr.FromStore(ctx, "core.Ping", err)
}

func (e *Engine) BuildIndices(ctx context.Context) error {
	return e.Driver.BuildIndices(ctx)
}
