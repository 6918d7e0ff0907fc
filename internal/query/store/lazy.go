package store

import (
	"context"
	"sync"

	"github.com/kart-io/usrsp-rag/internal/model"
)

// OpenFunc connects a vector backend.
type OpenFunc func(ctx context.Context) (VectorStore, error)

// LazyVectorStore defers connecting until the first search, so runs that
// stop before retrieval never touch the backend. A failed open is retried
// on the next search.
type LazyVectorStore struct {
	open OpenFunc

	mu    sync.Mutex
	store VectorStore
}

var _ VectorStore = (*LazyVectorStore)(nil)

// NewLazyVectorStore wraps open.
func NewLazyVectorStore(open OpenFunc) *LazyVectorStore {
	return &LazyVectorStore{open: open}
}

// Opened reports whether the backend has been connected.
func (l *LazyVectorStore) Opened() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store != nil
}

// Search opens the backend if needed and delegates.
func (l *LazyVectorStore) Search(ctx context.Context, vector []float32, k int) ([]model.RetrievedDocument, error) {
	l.mu.Lock()
	if l.store == nil {
		s, err := l.open(ctx)
		if err != nil {
			l.mu.Unlock()
			return nil, err
		}
		l.store = s
	}
	s := l.store
	l.mu.Unlock()

	return s.Search(ctx, vector, k)
}
