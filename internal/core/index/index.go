package index

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/physiokg/internal/core/apperr"
	"github.com/agenthands/physiokg/internal/core/common"
	"github.com/agenthands/physiokg/internal/driver"
	"github.com/agenthands/physiokg/internal/logger"
)

// MaxSearchResults caps Search. Extra matches are dropped silently.
const MaxSearchResults = 20

const DefaultListLimit = 1000

var (
	ErrEmptyFragment  = errors.New("search fragment is required")
	ErrEmptyCondition = errors.New("condition is required")
)

// Index answers name lookups over the condition catalogue.
type Index struct {
	Driver    driver.GraphDriver
	ListLimit int
	log       *logger.Logger
}

func New(d driver.GraphDriver, listLimit int, log *logger.Logger) *Index {
	if listLimit <= 0 {
		listLimit = DefaultListLimit
	}
	return &Index{
		Driver:    d,
		ListLimit: listLimit,
		log:       log.With("component", "ConditionIndex"),
	}
}

// Search returns condition names containing fragment, ignoring case, sorted
// ascending and capped at MaxSearchResults.
func (ix *Index) Search(ctx context.Context, fragment string) ([]string, error) {
	const op = "index.Search"
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil, apperr.New(apperr.InvalidArgument, op, ErrEmptyFragment)
	}

	res, err := ix.Driver.ExecuteQuery(ctx, driver.SearchConditionsQuery, map[string]interface{}{
		"fragment": fragment,
		"limit":    int64(MaxSearchResults),
	})
	if err != nil {
		return nil, apperr.FromStore(ctx, op, err)
	}

	needle := strings.ToLower(fragment)
	names := ix.names(res.Records, func(name string) bool {
		return strings.Contains(strings.ToLower(name), needle)
	})
	if len(names) > MaxSearchResults {
		names = names[:MaxSearchResults]
	}
	return names, nil
}

// List returns every condition name in ascending order, up to ListLimit.
func (ix *Index) List(ctx context.Context) ([]string, error) {
	const op = "index.List"
	res, err := ix.Driver.ExecuteQuery(ctx, driver.ListConditionsQuery, map[string]interface{}{
		"limit": int64(ix.ListLimit),
	})
	if err != nil {
		return nil, apperr.FromStore(ctx, op, err)
	}

	names := ix.names(res.Records, nil)
	if len(names) > ix.ListLimit {
		names = names[:ix.ListLimit]
	}
	return names, nil
}

// Resolve matches name case-insensitively against the catalogue and returns
// the stored display name. If several nodes differ only in case, the
// lexicographically smallest wins.
func (ix *Index) Resolve(ctx context.Context, name string) (string, error) {
	const op = "index.Resolve"
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.New(apperr.InvalidArgument, op, ErrEmptyCondition)
	}

	res, err := ix.Driver.ExecuteQuery(ctx, driver.ResolveConditionQuery, map[string]interface{}{
		"condition": name,
	})
	if err != nil {
		return "", apperr.FromStore(ctx, op, err)
	}

	names := ix.names(res.Records, func(candidate string) bool {
		return strings.EqualFold(candidate, name)
	})
	if len(names) == 0 {
		return "", apperr.New(apperr.NotFound, op, fmt.Errorf("condition %q not found", name))
	}
	return names[0], nil
}

// names extracts the "name" column, dropping malformed rows, rows rejected by
// keep, and duplicates. The result is sorted ascending.
func (ix *Index) names(records []*neo4j.Record, keep func(string) bool) []string {
	seen := make(map[string]struct{}, len(records))
	out := make([]string, 0, len(records))
	for _, rec := range records {
		name, err := common.StringValue(rec, "name")
		if err != nil {
			ix.log.Warn("skipping malformed condition row", "error", err)
			continue
		}
		if name == "" || (keep != nil && !keep(name)) {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}
