package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	bootstrap "github.com/agenthands/physiokg/internal/app"
	"github.com/agenthands/physiokg/internal/config"
	"github.com/agenthands/physiokg/internal/core/apperr"
	"github.com/agenthands/physiokg/internal/core/model"
	"github.com/agenthands/physiokg/internal/logger"
)

// engine is what the commands need from core.Engine.
type engine interface {
	Search(ctx context.Context, fragment string) ([]string, error)
	ListConditions(ctx context.Context) ([]string, error)
	Generate(ctx context.Context, condition string) (*model.ReasoningRecord, error)
	BuildIndices(ctx context.Context) error
}

type app struct {
	configPath string
	timeout    time.Duration
	out        io.Writer

	// open is replaced in tests.
	open func(ctx context.Context) (engine, func(), error)
}

func (a *app) stdout() io.Writer {
	if a.out != nil {
		return a.out
	}
	return os.Stdout
}

func (a *app) engine(ctx context.Context) (engine, func(), error) {
	if a.open != nil {
		return a.open(ctx)
	}
	if a.configPath != "" {
		os.Setenv("CONFIG_PATH", a.configPath)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, err
	}
	// keep stdout clean for piping; logs go to stderr
	lg, err := logger.New(config.LogConfig{Mode: "dev", Level: "warn"})
	if err != nil {
		return nil, nil, err
	}
	e, closeFn, err := bootstrap.Open(ctx, cfg, lg)
	if err != nil {
		return nil, nil, err
	}
	return e, closeFn, nil
}

// run opens the engine, applies the timeout and calls fn.
func (a *app) run(cmd *cobra.Command, fn func(ctx context.Context, e engine) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	e, closeFn, err := a.engine(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(ctx, e)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "physiokg",
		Short:         "Query the physiotherapy clinical knowledge graph",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config.toml (default $CONFIG_PATH or config/config.toml)")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 15*time.Second, "deadline for the whole command")

	root.AddCommand(
		newSearchCmd(a),
		newConditionsCmd(a),
		newReasonCmd(a),
		newIndicesCmd(a),
	)
	return root
}

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <fragment>",
		Short: "List conditions whose name contains a fragment",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, e engine) error {
				names, err := e.Search(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				for _, n := range names {
					fmt.Fprintln(a.stdout(), n)
				}
				return nil
			})
		},
	}
}

func newConditionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "conditions",
		Short: "List every condition in the graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, e engine) error {
				names, err := e.ListConditions(ctx)
				if err != nil {
					return err
				}
				for _, n := range names {
					fmt.Fprintln(a.stdout(), n)
				}
				return nil
			})
		},
	}
}

func newReasonCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reason <condition>",
		Short: "Print the clinical reasoning record for a condition as JSON",
		Example: `  physiokg reason "Frozen Shoulder"
  physiokg reason frozen shoulder --timeout 5s`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, e engine) error {
				rec, err := e.Generate(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				enc := json.NewEncoder(a.stdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rec)
			})
		},
	}
}

func newIndicesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "indices",
		Short: "Create name indexes used by the lookup queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, e engine) error {
				return e.BuildIndices(ctx)
			})
		},
	}
}

// exitCode distinguishes caller mistakes (2) and missing conditions (3) from
// store trouble (1).
func exitCode(err error) int {
	switch apperr.KindOf(err) {
	case apperr.InvalidArgument:
		return 2
	case apperr.NotFound:
		return 3
	default:
		return 1
	}
}
