package artifacts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads")
	store, err := NewStore(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())
	assert.DirExists(t, dir)
}

func TestHas(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	assert.False(t, store.Has("2024StockInvestor.pdf"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024StockInvestor.pdf"), []byte("%PDF"), 0644))
	assert.True(t, store.Has("2024StockInvestor.pdf"))
}

func TestRenamePrefersFirstCandidate(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "March 2024 Stock Investor.pdf"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "March 2024 StockInvestor.pdf"), []byte("b"), 0644))

	err = store.Rename(
		[]string{"March 2024 Stock Investor.pdf", "March 2024 StockInvestor.pdf"},
		"2024StockInvestor.pdf",
	)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "2024StockInvestor.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))
}

func TestRenameFallsBackToVariant(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "March 2024 StockInvestor.pdf"), []byte("b"), 0644))

	err = store.Rename(
		[]string{"March 2024 Stock-Investor.pdf", "March 2024 StockInvestor.pdf"},
		"2024Stock-Investor.pdf",
	)
	require.NoError(t, err)
	assert.True(t, store.Has("2024Stock-Investor.pdf"))
}

func TestRenameNoCandidateFound(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	err = store.Rename([]string{"missing.pdf", "alsomissing.pdf"}, "canonical.pdf")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
