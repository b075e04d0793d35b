package download

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/dyluth/datalair/pkg/lair"
)

// URLs is a ready-made lair.Dataset that derives by downloading a fixed set
// of named URLs into its output directory. The ID must be stable across runs
// (a 16-hex ID from lair.GenerateID works well) so the derivation stays
// idempotent.
type URLs struct {
	ID    string            // stable dataset name
	Files map[string]string // local filename → source URL
}

// Name returns the dataset's stable name.
func (d *URLs) Name() string { return d.ID }

// Derive downloads every file into the directory the lair resolves for this
// dataset. Files are fetched in filename order so failures are deterministic.
func (d *URLs) Derive(ctx context.Context, l *lair.Lair) error {
	if len(d.Files) == 0 {
		return fmt.Errorf("dataset %s has no files to download", d.ID)
	}
	dir, err := l.Path(d)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(d.Files))
	for name := range d.Files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := File(ctx, d.Files[name], filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}
