package jsonl

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listmatch/backend/internal/domain"
)

func mustListing(t *testing.T, raw string) *domain.Listing {
	t.Helper()
	l, err := domain.ParseListing([]byte(raw))
	require.NoError(t, err)
	return l
}

func TestWriteResults(t *testing.T) {
	listing := mustListing(t, `{"title":"Samsung SL202 10MP <Black>","manufacturer":"Samsung","currency":"USD","price":"79.99"}`)

	var buf bytes.Buffer
	err := WriteResults(&buf, []domain.ProductResult{
		{ProductName: "Samsung-SL202", Listings: []*domain.Listing{listing}},
		{ProductName: "Samsung_SL202"},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t,
		`{"product_name":"Samsung-SL202","listings":[{"title":"Samsung SL202 10MP <Black>","manufacturer":"Samsung","currency":"USD","price":"79.99"}]}`,
		lines[0])
	assert.Equal(t, `{"product_name":"Samsung_SL202","listings":[]}`, lines[1])
}

func TestWriteResultsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.txt")

	err := WriteResultsFile(path, []domain.ProductResult{{ProductName: "Nikon_D3000"}})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"product_name\":\"Nikon_D3000\",\"listings\":[]}\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestWriteResultsFile_Locked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.txt")

	held := flock.New(path + ".lock")
	ok, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer held.Unlock()

	err = WriteResultsFile(path, nil)
	assert.ErrorIs(t, err, domain.ErrResultsLocked)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteResultsFile_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.txt")
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0o644))

	require.NoError(t, WriteResultsFile(path, []domain.ProductResult{{ProductName: "Leica_Digilux"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
}
