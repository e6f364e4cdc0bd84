// Command mentor-train runs offline training against a conversations file
// and manages the stored prompt versions.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/mentor/internal/bootstrap"
	"github.com/MikeSquared-Agency/mentor/internal/config"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "mentor-train",
	Short: "Train and inspect the mentor prompt",
	Long: `Offline tooling for the mentor prompt loop.

Available subcommands:
  parse    - Segment a conversations file and show sample interactions
  train    - Run feedback optimization over samples from a conversations file
  reset    - Make the baseline prompt active again
  show     - Print the active prompt
  versions - List stored prompt versions`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(versionsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	lvl := slog.LevelInfo
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// openApp wires the service from the environment; callers must Close it.
func openApp(ctx context.Context) (*bootstrap.App, *slog.Logger, error) {
	logger := newLogger()
	app, err := bootstrap.New(ctx, config.Load(), logger)
	if err != nil {
		return nil, nil, err
	}
	return app, logger, nil
}

// openStore wires only the store side, for commands that never call the LLM.
func openStore(ctx context.Context) (*bootstrap.App, error) {
	return bootstrap.OpenStore(ctx, config.Load(), newLogger())
}
