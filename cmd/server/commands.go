package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/JonMunkholm/tutoradmin/internal/core"
	"github.com/JonMunkholm/tutoradmin/internal/web"
	"github.com/spf13/cobra"
)

// NewServeCommand starts the HTTP server and, when enabled, the scheduler.
func NewServeCommand() *cobra.Command {
	opts := &Options{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	opts.AddFlags(cmd.Flags())
	return cmd
}

func runServe(ctx context.Context, opts *Options) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()
	cfg := a.cfg

	// Jobs get their own context so an interrupted job is cancelled only
	// after the gate drain below has had its chance.
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	var scheduler *core.Scheduler
	if cfg.Schedule.Enabled {
		scheduler, err = core.NewScheduler(jobCtx, a.svc, core.ScheduleConfig{
			SyncCron:        cfg.Schedule.SyncCron,
			RecalculateCron: cfg.Schedule.RecalculateCron,
			RunOnStart:      cfg.Schedule.RunOnStart,
		})
		if err != nil {
			return err
		}
		scheduler.Start()
	}

	server := web.NewServer(a.svc, a.svc.Gate(), cfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.Server.Addr())
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}

	// Wait for an in-flight operation to finish writing
	if holder := a.svc.Gate().Holder(); holder != "" {
		slog.Info("waiting for running operation", "operation", holder)
		if err := a.svc.Gate().WaitForDrain(shutdownCtx); err != nil {
			slog.Warn("operation did not complete in time", "operation", holder, "error", err)
		}
	}

	slog.Info("server stopped")
	return nil
}

// newBatchCommand builds a one-shot command that runs fn against a freshly
// set up service and prints its result as JSON.
func newBatchCommand(use, short string, args cobra.PositionalArgs, fn func(ctx context.Context, svc *core.Service, args []string) (any, error)) *cobra.Command {
	opts := &Options{}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := fn(ctx, a.svc, args)
			if err != nil {
				return errors.New(core.FormatUserError(err) + ": " + err.Error())
			}
			if out == nil {
				return nil
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	opts.AddFlags(cmd.Flags())
	return cmd
}

// NewSyncCommand imports new form submissions.
func NewSyncCommand() *cobra.Command {
	return newBatchCommand("sync", "Import new form submissions into their tables", cobra.NoArgs,
		func(ctx context.Context, svc *core.Service, _ []string) (any, error) {
			return svc.SyncDataFromForms(ctx)
		})
}

// NewRecalculateCommand reconciles attendance.
func NewRecalculateCommand() *cobra.Command {
	return newBatchCommand("recalculate", "Recalculate attendance from the log and day statuses", cobra.NoArgs,
		func(ctx context.Context, svc *core.Service, _ []string) (any, error) {
			return svc.RecalculateAttendance(ctx)
		})
}

// NewScheduleCommand prints the mod schedule.
func NewScheduleCommand() *cobra.Command {
	return newBatchCommand("schedule", "Print the tutoring schedule by mod", cobra.NoArgs,
		func(ctx context.Context, svc *core.Service, _ []string) (any, error) {
			return svc.GenerateSchedule(ctx)
		})
}

// NewRebuildHeadersCommand rewrites the header row of the named tables.
func NewRebuildHeadersCommand() *cobra.Command {
	return newBatchCommand("rebuild-headers TABLE...", "Rewrite the header row of tables whose columns drifted", cobra.MinimumNArgs(1),
		func(ctx context.Context, svc *core.Service, args []string) (any, error) {
			for _, name := range args {
				if err := svc.RebuildHeaders(ctx, name); err != nil {
					return nil, err
				}
			}
			return map[string]any{"rebuilt": args}, nil
		})
}

// NewTablesCommand lists the registered tables. It does not open a store.
func NewTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List registered tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printTables(cmd.OutOrStdout(), core.All())
		},
	}
}

func printTables(w io.Writer, tables []core.TableInfo) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tKIND\tSHEET\tCOLUMNS")
	for _, info := range tables {
		kind := "entity"
		if info.IsForm {
			kind = "form"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", info.Name, kind, info.Sheet, len(info.Fields))
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
