package commands

import (
	"fmt"

	"github.com/dyluth/datalair/internal/config"
	"github.com/dyluth/datalair/pkg/lair"
	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string
)

var (
	// rootPath overrides the root from lair.yml when set via --root
	rootPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lair",
	Short: "Datalair - reproducible on-disk dataset derivation cache",
	Long: `Datalair manages a root directory ("the lair") of derived dataset
artifacts. Derivations run exactly once, publish atomically, and leave no
half-written output behind after a crash.

The CLI operates on dataset identities only; derivation logic lives in Go
programs that use the pkg/lair library.`,
	Version: version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootPath, "root", "", "lair root directory (overrides lair.yml)")
}

// openLair loads lair.yml from the working directory (falling back to
// defaults), applies the --root override and returns a handle on the root.
func openLair() (*lair.Lair, error) {
	cfg, err := config.Load(config.DefaultFile)
	if err != nil {
		return nil, err
	}

	root := cfg.Root
	if rootPath != "" {
		root = rootPath
	}

	var opts []lair.Option
	if cfg.Archive != "" {
		opts = append(opts, lair.WithArchive(cfg.Archive))
	}
	return lair.New(root, opts...)
}
