package commands

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/dyluth/datalair/pkg/lair"
	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all derived datasets",
	Long: `List every dataset the lair records as derived, with its derivation time
and file count.

Use --json for machine-readable output.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

// datasetInfo is one row of list output.
type datasetInfo struct {
	Identity  lair.Identity `json:"identity"`
	DerivedAt time.Time     `json:"derived_at"`
	Files     int           `json:"files"`
}

func runList(cmd *cobra.Command, args []string) error {
	l, err := openLair()
	if err != nil {
		return err
	}

	entries, err := l.Entries()
	if err != nil {
		return err
	}

	infos := make([]datasetInfo, 0, len(entries))
	for id, entry := range entries {
		files, err := l.FilepathsFor(id)
		if err != nil {
			// Count stays zero for inconsistent datasets; 'lair status'
			// reports the details.
			files = nil
		}
		infos = append(infos, datasetInfo{
			Identity:  id,
			DerivedAt: entry.DerivedAt,
			Files:     len(files),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Identity < infos[j].Identity
	})

	if len(infos) == 0 {
		if listJSON {
			fmt.Println("[]")
		} else {
			fmt.Println("No datasets derived yet.")
		}
		return nil
	}

	if listJSON {
		outputJSON(infos)
	} else {
		outputTable(infos)
	}
	return nil
}

func outputJSON(infos []datasetInfo) {
	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		fmt.Printf("Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func outputTable(infos []datasetInfo) {
	fmt.Printf("%-40s %-25s %s\n", "IDENTITY", "DERIVED AT", "FILES")

	for _, info := range infos {
		identity := string(info.Identity)
		if len(identity) > 40 {
			identity = identity[:37] + "..."
		}
		fmt.Printf("%-40s %-25s %d\n", identity, info.DerivedAt.Format(time.RFC3339), info.Files)
	}
}
