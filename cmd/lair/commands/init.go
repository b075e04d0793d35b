package commands

import (
	"errors"

	"github.com/dyluth/datalair/internal/printer"
	"github.com/dyluth/datalair/pkg/lair"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the lair root directory",
	Long: `Initialize the lair root directory and its status store.

Idempotent: running init on an already-initialized lair is a no-op. The root
comes from lair.yml in the working directory, or from --root.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	l, err := openLair()
	if err != nil {
		return err
	}

	if err := l.CreateIfNotExist(); err != nil {
		if errors.Is(err, lair.ErrRootConflict) {
			return printer.Error(
				"Cannot initialize lair",
				err.Error(),
				[]string{
					"Choose a different root with --root or in lair.yml",
					"Move the conflicting path out of the way",
				},
			)
		}
		return err
	}

	printer.Success("Initialized lair at %s\n", l.Root())
	return nil
}
