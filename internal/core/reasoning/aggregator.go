package reasoning

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/physiokg/internal/core/apperr"
	"github.com/agenthands/physiokg/internal/core/category"
	"github.com/agenthands/physiokg/internal/core/model"
	"github.com/agenthands/physiokg/internal/driver"
	"github.com/agenthands/physiokg/internal/logger"
	"github.com/agenthands/physiokg/internal/metrics"
)

var ErrEmptyCondition = errors.New("condition is required")

// Resolver maps a requested condition to its stored display name, failing
// with apperr.NotFound when there is none.
type Resolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}

type Source[T any] interface {
	Fetch(ctx context.Context, condition string) ([]T, error)
}

// Sources holds one fetcher per knowledge category.
type Sources struct {
	Impairments     Source[model.Impairment]
	Assessments     Source[model.Assessment]
	Interventions   Source[model.Intervention]
	Exercises       Source[model.Exercise]
	RedFlags        Source[model.RedFlag]
	Medications     Source[model.Medication]
	OutcomeMeasures Source[model.OutcomeMeasure]
}

// GraphSources wires every category fetcher to d.
func GraphSources(d driver.GraphDriver, log *logger.Logger) Sources {
	return Sources{
		Impairments:     category.NewFetcher(d, category.Impairments, log),
		Assessments:     category.NewFetcher(d, category.Assessments, log),
		Interventions:   category.NewFetcher(d, category.Interventions, log),
		Exercises:       category.NewFetcher(d, category.Exercises, log),
		RedFlags:        category.NewFetcher(d, category.RedFlags, log),
		Medications:     category.NewFetcher(d, category.Medications, log),
		OutcomeMeasures: category.NewFetcher(d, category.OutcomeMeasures, log),
	}
}

type Aggregator struct {
	Resolver Resolver
	Sources  Sources
	// MaxConcurrency bounds the fan-out; 1 serializes, 0 is unbounded.
	MaxConcurrency int
	log            *logger.Logger
}

func NewAggregator(resolver Resolver, sources Sources, maxConcurrency int, log *logger.Logger) *Aggregator {
	return &Aggregator{
		Resolver:       resolver,
		Sources:        sources,
		MaxConcurrency: maxConcurrency,
		log:            log.With("component", "ReasoningAggregator"),
	}
}

// Generate assembles the reasoning record for condition. Either every
// category loads or the call fails; a partially filled record is never
// returned.
func (a *Aggregator) Generate(ctx context.Context, condition string) (*model.ReasoningRecord, error) {
	rec, err := a.generate(ctx, condition)
	metrics.ReasoningRequests.WithLabelValues(outcome(err)).Inc()
	return rec, err
}

func (a *Aggregator) generate(ctx context.Context, condition string) (*model.ReasoningRecord, error) {
	const op = "reasoning.Generate"
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return nil, apperr.New(apperr.InvalidArgument, op, ErrEmptyCondition)
	}

	name, err := a.Resolver.Resolve(ctx, condition)
	if err != nil {
		return nil, err
	}

	rec := &model.ReasoningRecord{Condition: name}

	g, gctx := errgroup.WithContext(ctx)
	if a.MaxConcurrency > 0 {
		g.SetLimit(a.MaxConcurrency)
	}
	g.Go(collect(gctx, "impairments", a.Sources.Impairments, name, &rec.Impairments))
	g.Go(collect(gctx, "assessments", a.Sources.Assessments, name, &rec.Assessments))
	g.Go(collect(gctx, "interventions", a.Sources.Interventions, name, &rec.Interventions))
	g.Go(collect(gctx, "exercises", a.Sources.Exercises, name, &rec.Exercises))
	g.Go(collect(gctx, "red_flags", a.Sources.RedFlags, name, &rec.RedFlags))
	g.Go(collect(gctx, "medications", a.Sources.Medications, name, &rec.Medications))
	g.Go(collect(gctx, "outcome_measures", a.Sources.OutcomeMeasures, name, &rec.OutcomeMeasures))

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, apperr.New(apperr.Timeout, op, ctx.Err())
		}
		a.log.Warn("category fetch failed", "condition", name, "error", err)
		return nil, err
	}
	return rec, nil
}

// collect runs one category fetch into dst. Each fetch owns its own field of
// the record, so no locking is needed.
func collect[T any](ctx context.Context, label string, src Source[T], condition string, dst *[]T) func() error {
	return func() error {
		// a sibling may already have failed
		if err := ctx.Err(); err != nil {
			return err
		}
		items, err := src.Fetch(ctx, condition)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", label, err)
		}
		if items == nil {
			items = []T{}
		}
		*dst = items
		return nil
	}
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return apperr.KindOf(err).String()
}
