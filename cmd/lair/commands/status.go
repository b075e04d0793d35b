package commands

import (
	"errors"

	"github.com/dyluth/datalair/internal/printer"
	"github.com/dyluth/datalair/pkg/lair"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the structural health of the lair",
	Long: `Check the structural health of the lair: the status store must parse, every
recorded dataset directory must exist and be fully published, and no orphaned
or scratch directories may linger.

This is the fail-fast recovery checkpoint; run it after a crash before
trusting the lair's contents. Nothing is repaired automatically.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	l, err := openLair()
	if err != nil {
		return err
	}

	if err := l.AssertOkStatus(); err != nil {
		var ce *lair.CorruptionError
		if errors.As(err, &ce) {
			return printCorruption(ce)
		}
		return printer.Error(
			"Lair is not usable",
			err.Error(),
			[]string{"Run 'lair init' to create the root if it does not exist yet"},
		)
	}

	entries, err := l.Entries()
	if err != nil {
		return err
	}
	printer.Success("Lair at %s is healthy (%d datasets derived)\n", l.Root(), len(entries))
	return nil
}

func printCorruption(ce *lair.CorruptionError) error {
	var details []string
	for _, id := range ce.Report.MissingDirectories {
		details = append(details, "missing directory for dataset: "+string(id))
	}
	for _, id := range ce.Report.Orphans {
		details = append(details, "orphaned directory without status entry: "+string(id))
	}
	for _, id := range ce.Report.MissingManifests {
		details = append(details, "directory without derivation manifest: "+string(id))
	}
	for _, name := range ce.Report.ScratchLeftovers {
		details = append(details, "leftover scratch directory: "+name)
	}

	printer.Warning("Lair at %s is corrupted:\n", ce.Root)
	for _, d := range details {
		printer.Printf("  • %s\n", d)
	}
	return printer.Error(
		"Lair corrupted",
		"The status store and the filesystem disagree; inspect the findings above before repairing by hand.",
		nil,
	)
}
