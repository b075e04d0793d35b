package commands

import (
	"github.com/dyluth/datalair/internal/printer"
	"github.com/spf13/cobra"
)

var pruneDryRun bool

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove datasets whose directory holds no files",
	Long: `Remove derived datasets whose directory contains nothing beyond the
derivation manifest, typically left by derivations that produced no output.

Use --dry-run to see what would be removed.`,
	RunE: runPrune,
}

func init() {
	pruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "Only print the datasets that would be pruned")
	rootCmd.AddCommand(pruneCmd)
}

func runPrune(cmd *cobra.Command, args []string) error {
	l, err := openLair()
	if err != nil {
		return err
	}

	pruned, err := l.PruneEmpty(pruneDryRun)
	if err != nil {
		return err
	}

	if len(pruned) == 0 {
		printer.Info("Nothing to prune.\n")
		return nil
	}

	for _, id := range pruned {
		if pruneDryRun {
			printer.Info("would prune %s\n", id)
		} else {
			printer.Success("pruned %s\n", id)
		}
	}
	return nil
}
