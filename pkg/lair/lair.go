package lair

import (
	"context"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// RootStatus describes the structural state of a lair root directory.
type RootStatus string

const (
	// RootNotExist indicates the root directory does not exist.
	RootNotExist RootStatus = "not_exist"

	// RootNotDirectory indicates the root path exists but is not a directory.
	RootNotDirectory RootStatus = "not_directory"

	// RootStatusMissing indicates the root directory exists but lacks the
	// status file, so it does not follow this library's layout.
	RootStatusMissing RootStatus = "status_missing"

	// RootMalformed indicates the status file exists but cannot be parsed.
	RootMalformed RootStatus = "malformed"

	// RootOK indicates the root directory and its status file are intact.
	RootOK RootStatus = "ok"
)

// Lair is an explicit handle on one root storage location. All durable state
// lives on disk, so a Lair needs no teardown; it is safe to share between
// goroutines and to point multiple processes at the same root.
type Lair struct {
	root    string
	archive string
	status  *StatusStore

	mu     sync.Mutex
	cond   *sync.Cond
	busy   map[Identity]bool   // identities with a derivation in flight on this handle
	active map[Identity]string // identity → scratch dir of an in-flight derivation
}

// Option configures a Lair at construction time.
type Option func(*Lair)

// WithArchive points the lair at an auxiliary read-only directory of
// supplementary files, listed via ArchiveFilepaths.
func WithArchive(path string) Option {
	return func(l *Lair) {
		l.archive = path
	}
}

// New creates a handle on the given root path without touching the disk. The
// path is resolved to an absolute path so the handle stays valid across
// working-directory changes.
func New(root string, opts ...Option) (*Lair, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving lair root %q: %w", root, err)
	}
	l := &Lair{
		root:   abs,
		status: newStatusStore(abs),
		busy:   make(map[Identity]bool),
		active: make(map[Identity]string),
	}
	l.cond = sync.NewCond(&l.mu)
	for _, opt := range opts {
		opt(l)
	}
	if l.archive != "" {
		if l.archive, err = filepath.Abs(l.archive); err != nil {
			return nil, fmt.Errorf("resolving archive path: %w", err)
		}
	}
	return l, nil
}

// Root returns the absolute root path of the lair.
func (l *Lair) Root() string {
	return l.root
}

// Status reports the structural state of the root directory.
func (l *Lair) Status() RootStatus {
	info, err := os.Stat(l.root)
	if err != nil {
		return RootNotExist
	}
	if !info.IsDir() {
		return RootNotDirectory
	}
	if _, err := os.Stat(filepath.Join(l.root, statusFileName)); err != nil {
		return RootStatusMissing
	}
	if _, err := l.status.load(); err != nil {
		return RootMalformed
	}
	return RootOK
}

// Create creates the root directory and an empty status store.
func (l *Lair) Create() error {
	if err := os.MkdirAll(l.root, 0o755); err != nil {
		return fmt.Errorf("creating lair root %s: %w", l.root, err)
	}
	return l.status.init()
}

// CreateIfNotExist brings the root into existence idempotently: it creates a
// missing root, accepts an already well-formed one, adopts an existing empty
// directory, and returns ErrRootConflict for anything else.
func (l *Lair) CreateIfNotExist() error {
	switch st := l.Status(); st {
	case RootNotExist:
		return l.Create()
	case RootOK:
		return nil
	case RootNotDirectory:
		return fmt.Errorf("%w: %s exists and is not a directory", ErrRootConflict, l.root)
	case RootStatusMissing:
		entries, err := os.ReadDir(l.root)
		if err != nil {
			return fmt.Errorf("reading lair root %s: %w", l.root, err)
		}
		if len(entries) > 0 {
			return fmt.Errorf("%w: %s is a non-empty directory that is not a lair", ErrRootConflict, l.root)
		}
		return l.status.init()
	default: // RootMalformed
		_, err := l.status.load()
		return err
	}
}

// AssertOkStatus is the fail-fast recovery-detection checkpoint, expected to
// run at process startup. It validates the root structure, then cross-checks
// the status store against the filesystem and fails with a CorruptionError
// carrying the full HealthReport if any inconsistency is found.
func (l *Lair) AssertOkStatus() error {
	switch st := l.Status(); st {
	case RootOK:
	case RootMalformed:
		_, err := l.status.load()
		return err
	default:
		return fmt.Errorf("%w: lair at %s is %s", ErrRootConflict, l.root, st)
	}

	report, err := l.status.Validate(l.root)
	if err != nil {
		return err
	}
	if !report.Healthy() {
		return &CorruptionError{Root: l.root, Report: report}
	}
	return nil
}

// Delete removes the root directory. Without force it refuses to delete a
// root that still holds datasets, does not exist, or is not a lair at all.
func (l *Lair) Delete(force bool) error {
	if !force {
		switch st := l.Status(); st {
		case RootOK:
			entries, err := l.status.Entries()
			if err != nil {
				return err
			}
			if len(entries) > 0 {
				return fmt.Errorf("lair at %s still holds %d datasets; pass force to delete anyway", l.root, len(entries))
			}
		case RootNotExist:
			return fmt.Errorf("lair at %s does not exist", l.root)
		default:
			return fmt.Errorf("%w: %s is not a lair (%s)", ErrRootConflict, l.root, st)
		}
	}
	if err := os.RemoveAll(l.root); err != nil {
		return fmt.Errorf("deleting lair root %s: %w", l.root, err)
	}
	return nil
}

// StatusStore exposes the lair's status store for direct queries.
func (l *Lair) StatusStore() *StatusStore {
	return l.status
}

// Entries returns the status entry of every derived dataset.
func (l *Lair) Entries() (map[Identity]StatusEntry, error) {
	return l.status.Entries()
}

// pathFor maps an identity to its directory under the root. Pure; identities
// are validated at construction so distinct identities can never collide.
func (l *Lair) pathFor(id Identity) string {
	return filepath.Join(l.root, string(id))
}

// PathFor returns the final output path for an identity without consulting
// the status store. Most callers want Path instead; PathFor serves consumers
// that track identities rather than Dataset values.
func (l *Lair) PathFor(id Identity) (string, error) {
	if err := id.Validate(); err != nil {
		return "", err
	}
	return l.pathFor(id), nil
}

// Path resolves the directory a dataset should read from or write to. While
// the dataset's derivation is in flight on this lair, it resolves to the
// scratch directory, so partially-written files are never visible at the
// final path. Once derived, it resolves to the final path. Otherwise it fails
// with ErrNotYetDerived.
func (l *Lair) Path(ds Dataset) (string, error) {
	id, err := IdentityOf(ds)
	if err != nil {
		return "", err
	}

	l.mu.Lock()
	scratch, inFlight := l.active[id]
	l.mu.Unlock()
	if inFlight {
		return scratch, nil
	}

	derived, err := l.status.IsDerived(id)
	if err != nil {
		return "", err
	}
	if !derived {
		return "", fmt.Errorf("%w: %s", ErrNotYetDerived, id)
	}
	return l.pathFor(id), nil
}

// IsDerived reports whether the dataset has been successfully derived.
func (l *Lair) IsDerived(ds Dataset) (bool, error) {
	id, err := IdentityOf(ds)
	if err != nil {
		return false, err
	}
	return l.status.IsDerived(id)
}

// SafeDerive runs the dataset's derivation at most once. If the status store
// already records the identity as derived, it returns immediately without
// executing any user code or touching the filesystem. Otherwise the dataset
// derives into a scratch directory which is atomically published on success;
// on failure the scratch directory is discarded and the error propagates with
// nothing recorded.
func (l *Lair) SafeDerive(ctx context.Context, ds Dataset) error {
	id, err := IdentityOf(ds)
	if err != nil {
		return err
	}
	unlock := l.lockIdentity(id)
	defer unlock()

	derived, err := l.status.IsDerived(id)
	if err != nil {
		return err
	}
	if derived {
		return nil
	}
	return l.derive(ctx, ds, id)
}

// ForceDerive re-runs a derivation even if the dataset is already derived,
// replacing the previous output. Re-derivation is never implicit; this is the
// one explicit way to request it.
func (l *Lair) ForceDerive(ctx context.Context, ds Dataset) error {
	id, err := IdentityOf(ds)
	if err != nil {
		return err
	}
	unlock := l.lockIdentity(id)
	defer unlock()

	derived, err := l.status.IsDerived(id)
	if err != nil {
		return err
	}
	if derived {
		if err := l.remove(id); err != nil {
			return err
		}
	}
	return l.derive(ctx, ds, id)
}

// lockIdentity serializes derivations of one identity within this process, so
// concurrent SafeDerive calls run user code at most once per handle. Across
// processes, correctness rests on rename atomicity in promote, not on this
// lock.
func (l *Lair) lockIdentity(id Identity) func() {
	l.mu.Lock()
	for l.busy[id] {
		l.cond.Wait()
	}
	l.busy[id] = true
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		delete(l.busy, id)
		l.cond.Broadcast()
		l.mu.Unlock()
	}
}

// derive executes the safe-derivation protocol for one identity:
// scratch → user code → manifest → atomic publish → status record.
func (l *Lair) derive(ctx context.Context, ds Dataset, id Identity) error {
	scratch := filepath.Join(l.root, scratchName(id))
	if err := os.Mkdir(scratch, 0o755); err != nil {
		return fmt.Errorf("creating scratch directory for %s: %w", id, err)
	}

	l.mu.Lock()
	l.active[id] = scratch
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		delete(l.active, id)
		l.mu.Unlock()
	}()

	if err := ds.Derive(ctx, l); err != nil {
		_ = os.RemoveAll(scratch)
		return fmt.Errorf("deriving dataset %s: %w", id, err)
	}
	if err := writeManifest(scratch, id); err != nil {
		_ = os.RemoveAll(scratch)
		return err
	}
	if err := l.promote(scratch, l.pathFor(id)); err != nil {
		_ = os.RemoveAll(scratch)
		return err
	}
	return l.status.MarkDerived(id)
}

// promote publishes the scratch directory at the final path with a single
// rename. Any directory already at the final path is an equivalent derivation
// of the same identity (an orphan from a crash, or a concurrent deriver that
// won the race) and is replaced.
func (l *Lair) promote(scratch, final string) error {
	if err := os.RemoveAll(final); err != nil {
		return fmt.Errorf("clearing %s before publish: %w", final, err)
	}
	if err := os.Rename(scratch, final); err != nil {
		return fmt.Errorf("publishing %s: %w", final, err)
	}
	return nil
}

// scratchName returns a scratch directory name for the identity that cannot
// collide with another concurrent derivation or with any dataset directory.
func scratchName(id Identity) string {
	u := uuid.New()
	return scratchPrefix + string(id) + "-" + hex.EncodeToString(u[:4])
}

// Filepaths lists all files recursively under the dataset's final directory.
// The listing is computed fresh from disk on every call and sorted for
// stability; the derivation manifest is excluded. Fails with ErrNotYetDerived
// before a successful SafeDerive.
func (l *Lair) Filepaths(ds Dataset) ([]string, error) {
	id, err := IdentityOf(ds)
	if err != nil {
		return nil, err
	}
	return l.FilepathsFor(id)
}

// FilepathsFor is Filepaths keyed by identity instead of Dataset value.
func (l *Lair) FilepathsFor(id Identity) ([]string, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	derived, err := l.status.IsDerived(id)
	if err != nil {
		return nil, err
	}
	if !derived {
		return nil, fmt.Errorf("%w: %s", ErrNotYetDerived, id)
	}

	var files []string
	root := l.pathFor(id)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if path == filepath.Join(root, manifestFileName) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing files of %s: %w", id, err)
	}
	sort.Strings(files)
	return files, nil
}

// ArchiveFilepaths lists the files directly under the archive directory, or
// nil when no archive is configured.
func (l *Lair) ArchiveFilepaths() ([]string, error) {
	if l.archive == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(l.archive)
	if err != nil {
		return nil, fmt.Errorf("reading archive %s: %w", l.archive, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, filepath.Join(l.archive, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// DeleteDataset removes a published dataset's directory and status entry.
// Fails with ErrNotYetDerived if the dataset was never derived.
func (l *Lair) DeleteDataset(ds Dataset) error {
	id, err := IdentityOf(ds)
	if err != nil {
		return err
	}
	return l.DeleteFor(id)
}

// DeleteFor is DeleteDataset keyed by identity instead of Dataset value.
func (l *Lair) DeleteFor(id Identity) error {
	if err := id.Validate(); err != nil {
		return err
	}
	derived, err := l.status.IsDerived(id)
	if err != nil {
		return err
	}
	if !derived {
		return fmt.Errorf("%w: %s", ErrNotYetDerived, id)
	}
	return l.remove(id)
}

// remove forgets the status entry first: a crash between the two steps then
// leaves an orphan directory, which a later derivation replaces, rather than
// an entry pointing at nothing.
func (l *Lair) remove(id Identity) error {
	if err := l.status.Forget(id); err != nil {
		return err
	}
	if err := os.RemoveAll(l.pathFor(id)); err != nil {
		return fmt.Errorf("removing dataset %s: %w", id, err)
	}
	return nil
}

// PruneEmpty removes published datasets whose directory contains nothing but
// the derivation manifest, returning the identities that were (or with
// dryRun, would be) pruned.
func (l *Lair) PruneEmpty(dryRun bool) ([]Identity, error) {
	entries, err := l.status.Entries()
	if err != nil {
		return nil, err
	}

	var pruned []Identity
	for id := range entries {
		dirEntries, err := os.ReadDir(l.pathFor(id))
		if err != nil {
			continue // missing directories are AssertOkStatus's business
		}
		empty := true
		for _, e := range dirEntries {
			if e.Name() != manifestFileName {
				empty = false
				break
			}
		}
		if !empty {
			continue
		}
		if !dryRun {
			if err := l.remove(id); err != nil {
				return pruned, err
			}
		}
		pruned = append(pruned, id)
	}
	sort.Slice(pruned, func(i, j int) bool { return pruned[i] < pruned[j] })
	return pruned, nil
}
