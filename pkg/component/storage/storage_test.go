package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/usrsp-rag/pkg/component/storage"
)

type fakeClient struct {
	name     string
	pingErr  error
	closeErr error
	closed   *[]string
}

func (f *fakeClient) Name() string                 { return f.name }
func (f *fakeClient) Ping(_ context.Context) error { return f.pingErr }
func (f *fakeClient) Close(_ context.Context) error {
	*f.closed = append(*f.closed, f.name)
	return f.closeErr
}

func TestManagerRegister(t *testing.T) {
	var closed []string
	mgr := storage.NewManager()

	require.NoError(t, mgr.Register("records", &fakeClient{name: "mongodb", closed: &closed}))
	err := mgr.Register("records", &fakeClient{name: "mongodb", closed: &closed})
	assert.ErrorIs(t, err, storage.ErrClientExists)

	assert.Error(t, mgr.Register("", &fakeClient{closed: &closed}))
	assert.Error(t, mgr.Register("vectors", nil))

	c, ok := mgr.Get("records")
	require.True(t, ok)
	assert.Equal(t, "mongodb", c.Name())
}

func TestManagerCloseAllReverseOrder(t *testing.T) {
	var closed []string
	mgr := storage.NewManager()
	require.NoError(t, mgr.Register("records", &fakeClient{name: "mongodb", closed: &closed}))
	require.NoError(t, mgr.Register("vectors", &fakeClient{name: "milvus", closed: &closed, closeErr: errors.New("boom")}))

	err := mgr.CloseAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vectors")
	assert.Equal(t, []string{"milvus", "mongodb"}, closed)
	assert.Empty(t, mgr.Names())
}

func TestManagerPingAll(t *testing.T) {
	var closed []string
	mgr := storage.NewManager()
	require.NoError(t, mgr.Register("records", &fakeClient{name: "mongodb", closed: &closed}))
	require.NoError(t, mgr.PingAll(context.Background()))

	require.NoError(t, mgr.Register("vectors", &fakeClient{name: "qdrant", closed: &closed, pingErr: errors.New("refused")}))
	err := mgr.PingAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vectors (qdrant)")
}
