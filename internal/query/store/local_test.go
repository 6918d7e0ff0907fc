package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/usrsp-rag/internal/query/store"
)

func writeIndex(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, store.LocalIndexFile), []byte(body), 0o600))
	return dir
}

const indexJSON = `{"documents": [
  {"content": "far",    "metadata": {"id": "d:far"},  "embedding": [10, 10]},
  {"content": "near",   "metadata": {"id": "d:near"}, "embedding": [1, 0]},
  {"content": "tie-a",  "metadata": {"id": "d:a"},    "embedding": [0, 2]},
  {"content": "tie-b",  "metadata": {"id": "d:b"},    "embedding": [2, 0]},
  {"content": "exact",  "embedding": [0, 0]}
]}`

func TestLocalIndexRanksBySquaredL2(t *testing.T) {
	idx := store.NewLocalIndex(writeIndex(t, indexJSON))

	docs, err := idx.Search(context.Background(), []float32{0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, "exact", docs[0].Content)
	assert.Zero(t, docs[0].Score)
	assert.Nil(t, docs[0].SourceID())

	assert.Equal(t, "near", docs[1].Content)
	assert.InDelta(t, 1.0, docs[1].Score, 1e-9)

	// Ties keep file order.
	assert.Equal(t, "tie-a", docs[2].Content)
	assert.InDelta(t, 4.0, docs[2].Score, 1e-9)
}

func TestLocalIndexFewerThanK(t *testing.T) {
	idx := store.NewLocalIndex(writeIndex(t, indexJSON))
	docs, err := idx.Search(context.Background(), []float32{0, 0}, 50)
	require.NoError(t, err)
	assert.Len(t, docs, 5)

	n, err := idx.Len()
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestLocalIndexEmpty(t *testing.T) {
	idx := store.NewLocalIndex(writeIndex(t, `{"documents": []}`))
	docs, err := idx.Search(context.Background(), []float32{1}, 5)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestLocalIndexMissing(t *testing.T) {
	idx := store.NewLocalIndex(filepath.Join(t.TempDir(), "chroma"))
	_, err := idx.Search(context.Background(), []float32{1}, 5)
	require.ErrorIs(t, err, store.ErrIndexNotFound)
}

func TestLocalIndexDimensionMismatch(t *testing.T) {
	idx := store.NewLocalIndex(writeIndex(t, indexJSON))
	_, err := idx.Search(context.Background(), []float32{1, 2, 3}, 5)
	require.ErrorIs(t, err, store.ErrDimensionMismatch)

	ragged := store.NewLocalIndex(writeIndex(t, `{"documents": [{"embedding": [1]}, {"embedding": [1, 2]}]}`))
	_, err = ragged.Search(context.Background(), []float32{1}, 5)
	require.ErrorIs(t, err, store.ErrDimensionMismatch)
}
