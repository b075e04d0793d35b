package lair

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	// statusFileName is the metadata file at the root recording which
	// identities have been derived. Its presence also marks a directory as a
	// lair.
	statusFileName = "lair.json"

	// manifestFileName is written into every dataset directory just before it
	// is published. A directory without it is not a fully published dataset.
	manifestFileName = ".dataset.json"

	// scratchPrefix marks in-progress derivation directories inside the root.
	scratchPrefix = ".scratch-"

	statusVersion = "1"
)

// StatusEntry is one record in the status store: proof that a derivation for
// its identity was successfully published.
type StatusEntry struct {
	DerivedAt time.Time `json:"derived_at"`
}

type statusFile struct {
	Version  string                   `json:"version"`
	Datasets map[Identity]StatusEntry `json:"datasets"`
}

// StatusStore persists derivation outcomes in a single JSON file at the lair
// root. Every write goes through the same write-temp-then-rename discipline as
// dataset publication, so a crash can never leave the file half-written.
// Mutations load, modify and rewrite the whole file, so they are serialized
// with a mutex; a concurrent writer must never overwrite an entry it did not
// see.
type StatusStore struct {
	path string

	mu sync.Mutex // held across the load-modify-save cycle of every mutation
}

func newStatusStore(root string) *StatusStore {
	return &StatusStore{path: filepath.Join(root, statusFileName)}
}

// init writes an empty status file. Called when the root is created.
func (s *StatusStore) init() error {
	return s.save(&statusFile{Version: statusVersion, Datasets: map[Identity]StatusEntry{}})
}

func (s *StatusStore) load() (*statusFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading status file %s: %w", s.path, err)
	}
	var sf statusFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptStatus, s.path, err)
	}
	if sf.Datasets == nil {
		sf.Datasets = map[Identity]StatusEntry{}
	}
	return &sf, nil
}

func (s *StatusStore) save(sf *statusFile) error {
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling status file: %w", err)
	}
	if err := writeFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing status file %s: %w", s.path, err)
	}
	return nil
}

// IsDerived reports whether a prior derivation for the identity was
// successfully published. It answers from the status file only; staged or
// orphaned directories never count as derived.
func (s *StatusStore) IsDerived(id Identity) (bool, error) {
	sf, err := s.load()
	if err != nil {
		return false, err
	}
	_, ok := sf.Datasets[id]
	return ok, nil
}

// MarkDerived durably records a successful derivation for the identity.
func (s *StatusStore) MarkDerived(id Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sf, err := s.load()
	if err != nil {
		return err
	}
	sf.Datasets[id] = StatusEntry{DerivedAt: time.Now().UTC()}
	return s.save(sf)
}

// Forget removes the entry for the identity. Removing an absent entry is a
// no-op.
func (s *StatusStore) Forget(id Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sf, err := s.load()
	if err != nil {
		return err
	}
	delete(sf.Datasets, id)
	return s.save(sf)
}

// Entries returns a copy of all status entries.
func (s *StatusStore) Entries() (map[Identity]StatusEntry, error) {
	sf, err := s.load()
	if err != nil {
		return nil, err
	}
	entries := make(map[Identity]StatusEntry, len(sf.Datasets))
	for id, e := range sf.Datasets {
		entries[id] = e
	}
	return entries, nil
}

// Validate scans the root for disagreements between the status store and the
// filesystem: entries whose directory is missing, directories with no entry,
// directories without a manifest, and leftover scratch directories. It reports
// each finding and never repairs anything.
func (s *StatusStore) Validate(root string) (*HealthReport, error) {
	sf, err := s.load()
	if err != nil {
		return nil, err
	}

	report := &HealthReport{}

	for id := range sf.Datasets {
		info, err := os.Stat(filepath.Join(root, string(id)))
		if err != nil || !info.IsDir() {
			report.MissingDirectories = append(report.MissingDirectories, id)
			continue
		}
		if !hasManifest(filepath.Join(root, string(id))) {
			report.MissingManifests = append(report.MissingManifests, id)
		}
	}

	dirEntries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("scanning lair root %s: %w", root, err)
	}
	for _, entry := range dirEntries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, scratchPrefix) {
			report.ScratchLeftovers = append(report.ScratchLeftovers, name)
			continue
		}
		if _, ok := sf.Datasets[Identity(name)]; !ok {
			report.Orphans = append(report.Orphans, Identity(name))
		}
	}

	sortReport(report)
	return report, nil
}

// sortReport makes report ordering stable for display and tests.
func sortReport(r *HealthReport) {
	for _, ids := range [][]Identity{r.MissingDirectories, r.Orphans, r.MissingManifests} {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	sort.Strings(r.ScratchLeftovers)
}

// writeFileAtomic writes data to a temp file in the target directory, syncs
// it, and renames it into place. A crash at any point leaves either the old
// file or the new one, never a partial write.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	_ = tmp.Sync()
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
