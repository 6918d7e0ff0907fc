package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/usrsp-rag/internal/model"
	"github.com/kart-io/usrsp-rag/internal/query/store"
)

type staticStore []model.RetrievedDocument

func (s staticStore) Search(context.Context, []float32, int) ([]model.RetrievedDocument, error) {
	return s, nil
}

func TestLazyVectorStoreOpensOnce(t *testing.T) {
	opens := 0
	lazy := store.NewLazyVectorStore(func(context.Context) (store.VectorStore, error) {
		opens++
		return staticStore{{Content: "x"}}, nil
	})
	assert.False(t, lazy.Opened())
	assert.Zero(t, opens)

	for i := 0; i < 3; i++ {
		docs, err := lazy.Search(context.Background(), nil, 5)
		require.NoError(t, err)
		assert.Len(t, docs, 1)
	}
	assert.Equal(t, 1, opens)
	assert.True(t, lazy.Opened())
}

func TestLazyVectorStoreRetriesFailedOpen(t *testing.T) {
	fail := true
	lazy := store.NewLazyVectorStore(func(context.Context) (store.VectorStore, error) {
		if fail {
			return nil, errors.New("dial failed")
		}
		return staticStore{}, nil
	})

	_, err := lazy.Search(context.Background(), nil, 5)
	require.ErrorContains(t, err, "dial failed")
	assert.False(t, lazy.Opened())

	fail = false
	_, err = lazy.Search(context.Background(), nil, 5)
	require.NoError(t, err)
}
