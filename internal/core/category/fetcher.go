package category

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"

	"github.com/agenthands/physiokg/internal/core/apperr"
	"github.com/agenthands/physiokg/internal/core/common"
	"github.com/agenthands/physiokg/internal/driver"
	"github.com/agenthands/physiokg/internal/logger"
	"github.com/agenthands/physiokg/internal/metrics"
)

var ErrEmptyCondition = errors.New("condition is required")

// Descriptor is everything that differs between categories: the traversal,
// how a node's properties become a record, and how records are ordered.
type Descriptor[T any] struct {
	Name    string
	Query   string
	Decode  func(f *Fields) (T, error)
	Compare func(a, b T) int
}

// Fetcher follows one edge type from a condition and returns the related
// records in category order.
type Fetcher[T any] struct {
	Driver driver.GraphDriver
	Desc   Descriptor[T]
	log    *logger.Logger
}

func NewFetcher[T any](d driver.GraphDriver, desc Descriptor[T], log *logger.Logger) *Fetcher[T] {
	return &Fetcher[T]{
		Driver: d,
		Desc:   desc,
		log:    log.With("category", desc.Name),
	}
}

type entry[T any] struct {
	item T
	key  string
}

// Fetch returns the records linked to condition. A condition without any
// such records, or one that does not exist, yields an empty slice.
func (f *Fetcher[T]) Fetch(ctx context.Context, condition string) ([]T, error) {
	op := "category.Fetch(" + f.Desc.Name + ")"
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return nil, apperr.New(apperr.InvalidArgument, op, ErrEmptyCondition)
	}

	res, err := f.Driver.ExecuteQuery(ctx, f.Desc.Query, map[string]interface{}{
		"condition": condition,
	})
	if err != nil {
		return nil, apperr.FromStore(ctx, op, err)
	}

	entries := make([]entry[T], 0, len(res.Records))
	seen := make(map[string]struct{}, len(res.Records))
	for i, rec := range res.Records {
		props, err := common.MapValue(rec, "props")
		if err != nil {
			f.partial(condition, i, err, "entity skipped")
			continue
		}

		fields := NewFields(props)
		item, err := f.Desc.Decode(fields)
		for _, w := range fields.Warnings {
			f.partial(condition, i, w, "property dropped")
		}
		if err != nil {
			f.partial(condition, i, err, "entity skipped")
			continue
		}

		// parallel edges to the same node decode to the same record
		b, err := json.Marshal(item)
		if err != nil {
			f.partial(condition, i, err, "entity skipped")
			continue
		}
		key := string(b)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		entries = append(entries, entry[T]{item: item, key: key})
	}

	slices.SortFunc(entries, func(a, b entry[T]) int {
		return cmp.Or(f.Desc.Compare(a.item, b.item), strings.Compare(a.key, b.key))
	})

	out := make([]T, len(entries))
	for i, e := range entries {
		out[i] = e.item
	}
	return out, nil
}

func (f *Fetcher[T]) partial(condition string, row int, err error, outcome string) {
	metrics.PartialDataWarnings.WithLabelValues(f.Desc.Name).Inc()
	f.log.Warn("malformed category data", "condition", condition, "row", row, "outcome", outcome, "error", err)
}
