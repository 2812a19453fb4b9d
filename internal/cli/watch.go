package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// WatchOptions holds the flags for the watch command.
type WatchOptions struct {
	Root *RootOptions

	Schedule string
	Once     bool
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(root *RootOptions) *cobra.Command {
	opts := &WatchOptions{Root: root}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the shared storage key and mirror writes from other contexts",
		Long: `Poll the shared storage key on a schedule and replace the local
collection whenever another context wrote a newer envelope. The watcher
never writes back from the sync path, so two contexts watching each other
do not loop.`,
		Example: `  agenda watch
  agenda watch --schedule "@every 5s"
  agenda watch --once`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Schedule, "schedule", "", "poll cadence (cron syntax, defaults to the configured sync_schedule)")
	cmd.Flags().BoolVar(&opts.Once, "once", false, "poll once and exit")

	return cmd
}

func runWatch(cmd *cobra.Command, opts *WatchOptions) error {
	formatter := newFormatter(cmd, opts.Root)

	app, err := newApp(cmd, opts.Root)
	if err != nil {
		return err
	}
	defer app.Close()

	if opts.Once {
		applied := app.Watcher.CheckNow(cmd.Context())
		if opts.Root.Format == "json" {
			return formatter.Success(map[string]any{"applied": applied, "events": len(app.Store.Events())})
		}
		if applied {
			fmt.Fprintf(cmd.OutOrStdout(), "Sincronizado: %d eventos.\n", len(app.Store.Events()))
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Nada novo para sincronizar.")
		}
		return nil
	}

	schedule := opts.Schedule
	if schedule == "" {
		schedule = app.Config.SyncSchedule
	}
	if err := app.Watcher.Start(schedule); err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("invalid schedule %q", schedule), err)
	}
	defer app.Watcher.Stop()

	// Setup signal handling for graceful shutdown
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	slog.Info("watcher started", "schedule", schedule, "db", app.Config.StoragePath)
	fmt.Fprintln(cmd.OutOrStdout(), "Observando a chave compartilhada. Ctrl-C para sair.")

	<-ctx.Done()
	fmt.Fprintln(cmd.OutOrStdout(), "Encerrado.")
	return nil
}
