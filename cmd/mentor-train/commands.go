package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/mentor/internal/conversation"
	"github.com/MikeSquared-Agency/mentor/internal/training"
)

var (
	parseSamples int

	trainAll      bool
	trainLimit    int
	trainState    string
	trainPause    time.Duration
	trainSeed     uint64
	trainNoVerify bool
	versionsLimit int
)

// parseCmd segments a conversations file without touching the store.
var parseCmd = &cobra.Command{
	Use:   "parse <conversations.json>",
	Short: "Segment a conversations file into training interactions",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

// trainCmd runs the feedback loop over samples from a conversations file.
var trainCmd = &cobra.Command{
	Use:   "train <conversations.json>",
	Short: "Optimize the active prompt from recorded conversations",
	Long: `Pick a sample interaction (or every pending one with --all), predict the
consultant reply with the active prompt, derive one corrective rule from the
gap to the real reply and commit the extended prompt.

Progress is kept in a state file so an interrupted --all run resumes where
it stopped.`,
	Args: cobra.ExactArgs(1),
	RunE: runTrain,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Commit the baseline prompt as the active version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		v, err := app.Service.Reset(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "baseline committed as version %d\n", v.Number)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active prompt",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		ins := app.Service.ActiveInstructions(cmd.Context())
		out := cmd.OutOrStdout()
		if ins.Baseline {
			fmt.Fprintln(out, "# baseline (no active version stored)")
		} else {
			fmt.Fprintf(out, "# version %d\n", ins.Number)
		}
		fmt.Fprintln(out, strings.TrimRight(ins.Text, "\n"))
		fmt.Fprintf(out, "\n# %d lines\n", strings.Count(strings.TrimRight(ins.Text, "\n"), "\n")+1)
		return nil
	},
}

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List stored prompt versions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		vs, err := app.Service.Versions(cmd.Context(), versionsLimit)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "VERSION\tACTIVE\tCREATED\tLENGTH\tNOTES")
		for _, v := range vs {
			active := ""
			if v.Active {
				active = "*"
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", v.Number, active, v.CreatedAt.Format(time.RFC3339), len(v.Text), v.Notes)
		}
		return tw.Flush()
	},
}

func init() {
	parseCmd.Flags().IntVarP(&parseSamples, "samples", "n", 3, "Number of sample interactions to print")

	trainCmd.Flags().BoolVar(&trainAll, "all", false, "Train on every pending sample")
	trainCmd.Flags().IntVar(&trainLimit, "limit", 0, "Max samples per run with --all (0 = no limit)")
	trainCmd.Flags().StringVar(&trainState, "state", training.DefaultStatePath, "Resumable state file")
	trainCmd.Flags().DurationVar(&trainPause, "pause", 2*time.Second, "Pause between samples")
	trainCmd.Flags().Uint64Var(&trainSeed, "seed", 0, "Random seed for sample selection (0 = time based)")
	trainCmd.Flags().BoolVar(&trainNoVerify, "no-verify", false, "Skip re-predicting with the new prompt")

	versionsCmd.Flags().IntVar(&versionsLimit, "limit", 20, "Number of versions to list")
}

func runParse(cmd *cobra.Command, args []string) error {
	interactions, err := conversation.LoadInteractions(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d training interactions\n", len(interactions))

	n := min(parseSamples, len(interactions))
	if n <= 0 {
		return nil
	}
	data, err := json.MarshalIndent(interactions[:n], "", "  ")
	if err != nil {
		return fmt.Errorf("marshal samples: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}

func runTrain(cmd *cobra.Command, args []string) error {
	app, logger, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	runner := training.NewRunner(training.Config{
		File:      args[0],
		StatePath: trainState,
		All:       trainAll,
		Limit:     trainLimit,
		Pause:     trainPause,
		Seed:      trainSeed,
		Verify:    !trainNoVerify,
	}, app.Service, logger)

	summary, err := runner.Run(cmd.Context())
	if summary != nil {
		printSummary(cmd, summary)
	}
	return err
}

func printSummary(cmd *cobra.Command, s *training.Summary) {
	out := cmd.OutOrStdout()
	for _, r := range s.Results {
		fmt.Fprintf(out, "\n> %s\n", r.Input)
		switch {
		case r.Err != nil:
			fmt.Fprintf(out, "  error: %v\n", r.Err)
		default:
			fmt.Fprintf(out, "  predicted: %s\n", r.Predicted)
			fmt.Fprintf(out, "  rule (v%d): %s\n", r.Version, r.Rule)
			if r.NewPrediction != "" {
				fmt.Fprintf(out, "  new prediction: %s\n", r.NewPrediction)
			}
		}
	}

	fmt.Fprintf(out, "\n=== Training Summary ===\n")
	fmt.Fprintf(out, "Samples: %d (%d pending before this run)\n", s.Samples, s.Pending)
	fmt.Fprintf(out, "Committed: %d\n", s.Committed)
	fmt.Fprintf(out, "Rejected: %d\n", s.Rejected)
	fmt.Fprintf(out, "Failed: %d\n", s.Failed)
	fmt.Fprintf(out, "State file: %s\n", s.StatePath)
}
