package commands

import (
	"errors"

	"github.com/dyluth/datalair/internal/printer"
	"github.com/dyluth/datalair/pkg/lair"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <identity>",
	Short: "Print the file paths of a derived dataset",
	Long: `Print every file of a derived dataset, one absolute path per line. The
listing is computed fresh from disk on each invocation.`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	l, err := openLair()
	if err != nil {
		return err
	}

	id := lair.Identity(args[0])
	files, err := l.FilepathsFor(id)
	if err != nil {
		if errors.Is(err, lair.ErrNotYetDerived) {
			return printer.Error(
				"Dataset not yet derived",
				"No derivation for '"+args[0]+"' has been published in this lair.",
				[]string{"Run 'lair list' to see the derived datasets"},
			)
		}
		return err
	}

	for _, f := range files {
		printer.Println(f)
	}
	return nil
}
