// Package lair implements a crash-safe, idempotent on-disk derivation cache
// for dataset artifacts.
//
// # Overview
//
// A lair is a root directory that holds one subdirectory per derived dataset,
// plus a small status file recording which derivations have completed. Callers
// describe a dataset as anything implementing the Dataset interface; the lair
// runs the derivation at most once and guarantees the published directory is
// never observable in a half-written state.
//
// # Safe derivation
//
// SafeDerive drives the whole protocol: it checks the status store, runs the
// dataset's Derive method against a scratch directory, publishes the scratch
// directory with a single rename, and only then records success. If Derive
// fails, the scratch directory is discarded and nothing is published. From any
// external observer's perspective a dataset directory is either entirely
// absent or entirely present.
//
// While a derivation is in flight, Path resolves to the scratch directory, so
// a Derive implementation simply writes to whatever path the lair hands it:
//
//	type HelloDataset struct{}
//
//	func (HelloDataset) Name() string { return "hello" }
//
//	func (HelloDataset) Derive(ctx context.Context, l *lair.Lair) error {
//		dir, err := l.Path(HelloDataset{})
//		if err != nil {
//			return err
//		}
//		return os.WriteFile(filepath.Join(dir, "myfile.txt"), []byte("Hello World"), 0o644)
//	}
//
// # Corruption detection
//
// AssertOkStatus is the fail-fast startup checkpoint. It cross-checks the
// status store against the filesystem and reports every inconsistency (missing
// directories, orphaned directories, leftover scratch directories) in a
// CorruptionError. Nothing is repaired automatically; an operator decides.
//
// # Concurrency
//
// The lair holds no locks across derivations. Correctness rests on
// filesystem-level rename atomicity, so multiple processes may share one root:
// concurrent derivations of the same identity race harmlessly, with the loser
// discarding its scratch directory.
package lair
