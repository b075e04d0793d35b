package commands

import (
	"errors"

	"github.com/dyluth/datalair/internal/printer"
	"github.com/dyluth/datalair/pkg/lair"
	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <identity>",
	Short: "Remove a derived dataset",
	Long: `Remove a derived dataset's directory and its status entry. A later
derivation for the same identity runs from scratch.`,
	Args: cobra.ExactArgs(1),
	RunE: runRm,
}

func init() {
	rootCmd.AddCommand(rmCmd)
}

func runRm(cmd *cobra.Command, args []string) error {
	l, err := openLair()
	if err != nil {
		return err
	}

	id := lair.Identity(args[0])
	if err := l.DeleteFor(id); err != nil {
		if errors.Is(err, lair.ErrNotYetDerived) {
			return printer.Error(
				"Dataset not yet derived",
				"No derivation for '"+args[0]+"' has been published in this lair.",
				nil,
			)
		}
		return err
	}

	printer.Success("removed %s\n", id)
	return nil
}
