package lair

import (
	"fmt"
	"strings"
)

// HealthReport lists every inconsistency found between the status store and
// the filesystem. A healthy lair produces an empty report.
type HealthReport struct {
	// MissingDirectories are identities the status store records as derived
	// whose output directory no longer exists.
	MissingDirectories []Identity

	// Orphans are output directories with no corresponding status entry,
	// typically left by a crash between publishing and recording success.
	Orphans []Identity

	// MissingManifests are output directories that exist and have a status
	// entry but lack the derivation manifest, so their content cannot be
	// trusted as fully published.
	MissingManifests []Identity

	// ScratchLeftovers are scratch directories from an interrupted
	// derivation. They must never persist across a clean process lifetime.
	ScratchLeftovers []string
}

// Healthy returns true if the report contains no findings.
func (r *HealthReport) Healthy() bool {
	return len(r.MissingDirectories) == 0 &&
		len(r.Orphans) == 0 &&
		len(r.MissingManifests) == 0 &&
		len(r.ScratchLeftovers) == 0
}

// Summary renders the report as a single human-readable line.
func (r *HealthReport) Summary() string {
	if r.Healthy() {
		return "no inconsistencies"
	}

	var parts []string
	for _, id := range r.MissingDirectories {
		parts = append(parts, fmt.Sprintf("dataset %s is recorded as derived but its directory is missing", id))
	}
	for _, id := range r.Orphans {
		parts = append(parts, fmt.Sprintf("directory %s has no status entry", id))
	}
	for _, id := range r.MissingManifests {
		parts = append(parts, fmt.Sprintf("directory %s is missing its derivation manifest", id))
	}
	for _, name := range r.ScratchLeftovers {
		parts = append(parts, fmt.Sprintf("leftover scratch directory %s", name))
	}
	return strings.Join(parts, "; ")
}
