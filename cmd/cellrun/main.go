package main

import (
	"fmt"
	"os"

	"github.com/cellrun/cellrun"
	"github.com/cellrun/cellrun/engine"
	_ "github.com/cellrun/cellrun/engine/dryrun"
	"github.com/cellrun/cellrun/tracing"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "cellrun",
		Short: "Distribute condition/replicate simulation batches across workers",
		Long: `cellrun runs a simulation experiment: it orders conditions by their
preequilibration dependencies, spreads every (condition, cell) job over a
fixed worker pool in synchronization rounds, and collects all results into a
single artifact.`,
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("cellrun version %s\n", version)
		},
	}
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <experiment.yaml>",
		Short: "Run an experiment definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workers, _ := cmd.Flags().GetInt("workers")
			cells, _ := cmd.Flags().GetInt("cells")
			name, _ := cmd.Flags().GetString("name")
			mode, _ := cmd.Flags().GetString("mode")
			backend, _ := cmd.Flags().GetString("engine")
			trace, _ := cmd.Flags().GetString("trace")

			if trace != "" {
				if err := tracing.Init("cellrun", version, trace); err != nil {
					return fmt.Errorf("failed to initialise tracing: %w", err)
				}
			}
			factory, err := engine.Lookup(backend)
			if err != nil {
				return err
			}

			options := []cellrun.Option{cellrun.WithEngineFactory(factory)}
			if workers > 0 {
				options = append(options, cellrun.WithWorkers(workers))
			}
			if cells > 0 {
				options = append(options, cellrun.WithCellCount(cells))
			}
			if name != "" {
				options = append(options, cellrun.WithName(name))
			}
			if mode != "" {
				options = append(options, cellrun.WithMode(mode))
			}

			srv := cellrun.New(options...)
			ctx := cmd.Context()
			if err := srv.Load(ctx, args[0]); err != nil {
				return err
			}
			runtime, err := srv.Runtime()
			if err != nil {
				return err
			}
			location, err := runtime.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("results written to %s\n", location)
			return nil
		},
	}
	cmd.Flags().Int("workers", 0, "Total worker count (overrides the experiment definition)")
	cmd.Flags().Int("cells", 0, "Replicates per condition (overrides the experiment definition)")
	cmd.Flags().String("name", "", "Experiment name used for the results artifact")
	cmd.Flags().String("mode", "", "Execution model: message or pool")
	cmd.Flags().String("engine", "dryrun", "Simulation engine backend")
	cmd.Flags().String("trace", "", "Write OpenTelemetry spans to the given file")
	return cmd
}
