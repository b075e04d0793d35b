package lair

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// manifest is written into a dataset's directory as the last step before
// publication. Its presence distinguishes a fully published dataset directory
// from arbitrary directories inside the root.
type manifest struct {
	Identity  Identity  `json:"identity"`
	DerivedAt time.Time `json:"derived_at"`
}

func writeManifest(dir string, id Identity) error {
	data, err := json.MarshalIndent(manifest{Identity: id, DerivedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest for %s: %w", id, err)
	}
	if err := writeFileAtomic(filepath.Join(dir, manifestFileName), data, 0o644); err != nil {
		return fmt.Errorf("writing manifest for %s: %w", id, err)
	}
	return nil
}

func hasManifest(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, manifestFileName))
	return err == nil && info.Mode().IsRegular()
}
