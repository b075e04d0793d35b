package download

import (
	"path/filepath"
	"testing"

	"github.com/dyluth/datalair/pkg/lair"
	"github.com/stretchr/testify/require"
)

func newTestLair(t *testing.T) *lair.Lair {
	t.Helper()
	l, err := lair.New(filepath.Join(t.TempDir(), "lair"))
	require.NoError(t, err)
	require.NoError(t, l.CreateIfNotExist())
	return l
}
