package lair

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidIdentity indicates a dataset identity that is empty, too long
	// or uses characters outside the allowed set.
	ErrInvalidIdentity = errors.New("invalid dataset identity")

	// ErrRootConflict indicates the root path is unusable: it exists but is
	// not a directory, or is a non-empty directory that does not follow this
	// library's layout.
	ErrRootConflict = errors.New("lair root conflict")

	// ErrCorruptStatus indicates the status file exists but cannot be parsed.
	ErrCorruptStatus = errors.New("corrupt status store")

	// ErrNotYetDerived indicates a path or file listing was requested for a
	// dataset before a successful SafeDerive.
	ErrNotYetDerived = errors.New("dataset not yet derived")
)

// CorruptionError reports inconsistencies between the status store and the
// on-disk layout found by AssertOkStatus. It carries the full HealthReport so
// an operator can inspect every finding; nothing is repaired automatically.
type CorruptionError struct {
	Root   string
	Report *HealthReport
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("lair at %s is corrupted: %s", e.Root, e.Report.Summary())
}

// IsCorrupted returns true if the error is a CorruptionError.
func IsCorrupted(err error) bool {
	var ce *CorruptionError
	return errors.As(err, &ce)
}
