package lair

import (
	"context"
	"encoding/hex"
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

// Dataset is the capability contract for a unit of derivation. The lair never
// inspects a dataset's internals; it only computes its identity and invokes
// Derive.
type Dataset interface {
	// Name returns the stable name of the dataset. Two datasets with the same
	// name (and namespace) are the same logical derivation and share one
	// output directory.
	Name() string

	// Derive writes the dataset's complete output into the directory the lair
	// currently resolves for it (l.Path(ds)). It must return an error rather
	// than leave partial output with no signal.
	Derive(ctx context.Context, l *Lair) error
}

// Namespaced is an optional interface a Dataset can implement to prefix its
// identity with a namespace, keeping equally-named datasets from different
// projects apart in one lair.
type Namespaced interface {
	Namespace() string
}

// Identity is the deterministic key distinguishing one logical dataset from
// another. It doubles as the dataset's directory name under the root, so its
// character set is restricted to names that cannot collide or escape the root.
type Identity string

// MaxIdentityLength is the maximum length of an identity in bytes.
const MaxIdentityLength = 100

var identityPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// Validate checks that the identity is non-empty, within length limits and
// uses only the allowed character set.
func (id Identity) Validate() error {
	if id == "" {
		return fmt.Errorf("%w: identity is empty", ErrInvalidIdentity)
	}
	if len(id) > MaxIdentityLength {
		return fmt.Errorf("%w: %q exceeds %d characters", ErrInvalidIdentity, string(id), MaxIdentityLength)
	}
	if !identityPattern.MatchString(string(id)) {
		return fmt.Errorf("%w: %q must start with an alphanumeric character and contain only alphanumerics, '.', '_' or '-'", ErrInvalidIdentity, string(id))
	}
	return nil
}

// IdentityOf computes the identity of a dataset: its name, prefixed with
// "<namespace>-" when the dataset implements Namespaced. The computation is
// pure and deterministic, so the same logical dataset always resolves to the
// same output directory.
func IdentityOf(ds Dataset) (Identity, error) {
	name := ds.Name()
	if ns, ok := ds.(Namespaced); ok && ns.Namespace() != "" {
		name = ns.Namespace() + "-" + name
	}
	id := Identity(name)
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}

// GenerateID returns a random 16-digit hexadecimal dataset ID, suitable as a
// stable Name for datasets that want an opaque identity.
func GenerateID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:8])
}
