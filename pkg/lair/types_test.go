package lair

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedDataset struct {
	name      string
	namespace string
}

func (d namedDataset) Name() string      { return d.name }
func (d namedDataset) Namespace() string { return d.namespace }
func (d namedDataset) Derive(ctx context.Context, l *Lair) error {
	return nil
}

func TestIdentityValidate(t *testing.T) {
	t.Run("valid identities", func(t *testing.T) {
		for _, id := range []Identity{
			"mnist",
			"GSE25134",
			"0123456789abcdef",
			"genomics-GSE25134",
			"v1.2_raw",
		} {
			assert.NoError(t, id.Validate(), "identity %q", id)
		}
	})

	t.Run("invalid identities", func(t *testing.T) {
		long := make([]byte, MaxIdentityLength+1)
		for i := range long {
			long[i] = 'a'
		}
		for _, id := range []Identity{
			"",
			"..",
			".hidden",
			"-leading-dash",
			"has space",
			"has/slash",
			Identity(long),
		} {
			err := id.Validate()
			require.Error(t, err, "identity %q", id)
			assert.ErrorIs(t, err, ErrInvalidIdentity)
		}
	})
}

func TestIdentityOf(t *testing.T) {
	t.Run("name only", func(t *testing.T) {
		id, err := IdentityOf(namedDataset{name: "mnist"})
		require.NoError(t, err)
		assert.Equal(t, Identity("mnist"), id)
	})

	t.Run("namespace prefixes name", func(t *testing.T) {
		id, err := IdentityOf(namedDataset{name: "mnist", namespace: "vision"})
		require.NoError(t, err)
		assert.Equal(t, Identity("vision-mnist"), id)
	})

	t.Run("deterministic for equal parameters", func(t *testing.T) {
		a, err := IdentityOf(namedDataset{name: "mnist", namespace: "vision"})
		require.NoError(t, err)
		b, err := IdentityOf(namedDataset{name: "mnist", namespace: "vision"})
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("invalid name rejected", func(t *testing.T) {
		_, err := IdentityOf(namedDataset{name: "bad name"})
		assert.ErrorIs(t, err, ErrInvalidIdentity)
	})
}

func TestGenerateID(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9a-f]{16}$`)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateID()
		assert.Regexp(t, pattern, id)
		assert.False(t, seen[id], "duplicate generated ID %s", id)
		seen[id] = true
	}

	// A generated ID must itself be a valid identity.
	require.NoError(t, Identity(GenerateID()).Validate())
}
