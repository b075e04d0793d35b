package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile(t *testing.T) {
	t.Run("downloads body to dest", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("payload bytes"))
		}))
		defer srv.Close()

		dest := filepath.Join(t.TempDir(), "out.bin")
		require.NoError(t, File(context.Background(), srv.URL, dest))

		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, "payload bytes", string(data))
	})

	t.Run("non-200 status is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer srv.Close()

		dest := filepath.Join(t.TempDir(), "out.bin")
		err := File(context.Background(), srv.URL, dest)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status")
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer srv.Close()

		err := File(ctx, srv.URL, filepath.Join(t.TempDir(), "out.bin"))
		require.Error(t, err)
	})
}

func TestGEOSupplementaryDir(t *testing.T) {
	assert.Equal(t, "/geo/series/GSE25nnn/GSE25134/suppl/", geoSupplementaryDir("GSE25134"))
	assert.Equal(t, "/geo/series/GSE33nnn/GSE33126/suppl/", geoSupplementaryDir("GSE33126"))
}

func TestArrayExpressDir(t *testing.T) {
	assert.Equal(t, "/biostudies/fire/E-MTAB-/143/E-MTAB-7143/Files", arrayExpressDir("E-MTAB-7143"))
}

func TestAccessionValidation(t *testing.T) {
	t.Run("GEO", func(t *testing.T) {
		err := GEOSupplementary(context.Background(), "not-an-accession", t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid GEO series accession")
	})

	t.Run("ArrayExpress", func(t *testing.T) {
		err := ArrayExpress(context.Background(), "GSE25134", t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid ArrayExpress accession")
	})
}

func TestURLsDatasetName(t *testing.T) {
	ds := &URLs{ID: "82b0593c70732101"}
	assert.Equal(t, "82b0593c70732101", ds.Name())
}

func TestURLsDatasetRejectsEmptyFileSet(t *testing.T) {
	ds := &URLs{ID: "82b0593c70732101"}
	err := ds.Derive(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files to download")
}

func TestURLsDatasetDerive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("content of " + strings.TrimPrefix(r.URL.Path, "/")))
	}))
	defer srv.Close()

	l := newTestLair(t)
	ds := &URLs{
		ID: "82b0593c70732101",
		Files: map[string]string{
			"nodes.csv": srv.URL + "/nodes",
			"edges.csv": srv.URL + "/edges",
		},
	}

	require.NoError(t, l.SafeDerive(context.Background(), ds))

	files, err := l.Filepaths(ds)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.True(t, strings.HasSuffix(files[0], "edges.csv"))
	assert.True(t, strings.HasSuffix(files[1], "nodes.csv"))

	data, err := os.ReadFile(files[1])
	require.NoError(t, err)
	assert.Equal(t, "content of nodes", string(data))
}
