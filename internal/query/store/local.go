package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/kart-io/usrsp-rag/internal/model"
	"github.com/kart-io/usrsp-rag/pkg/utils/json"
)

// LocalIndexFile is the file name of a persisted local index inside its directory.
const LocalIndexFile = "index.json"

// localEntry is one persisted chunk.
type localEntry struct {
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Embedding []float32      `json:"embedding"`
}

type localIndexFile struct {
	Documents []localEntry `json:"documents"`
}

// LocalIndex is a read-only, file-backed vector index. It ranks by squared
// Euclidean distance, nearest first; equal distances keep file order.
// The file is read on first search.
type LocalIndex struct {
	dir string

	once    sync.Once
	entries []localEntry
	dim     int
	loadErr error
}

var _ VectorStore = (*LocalIndex)(nil)

// NewLocalIndex returns an index rooted at dir.
func NewLocalIndex(dir string) *LocalIndex {
	return &LocalIndex{dir: dir}
}

// Path returns the index file path.
func (x *LocalIndex) Path() string {
	return filepath.Join(x.dir, LocalIndexFile)
}

// Len returns the number of indexed chunks, loading the index if needed.
func (x *LocalIndex) Len() (int, error) {
	if err := x.load(); err != nil {
		return 0, err
	}
	return len(x.entries), nil
}

func (x *LocalIndex) load() error {
	x.once.Do(func() {
		data, err := os.ReadFile(x.Path())
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				x.loadErr = fmt.Errorf("%w: %s", ErrIndexNotFound, x.Path())
				return
			}
			x.loadErr = fmt.Errorf("read vector index: %w", err)
			return
		}

		var f localIndexFile
		if err := json.Unmarshal(data, &f); err != nil {
			x.loadErr = fmt.Errorf("parse vector index %s: %w", x.Path(), err)
			return
		}

		for i, e := range f.Documents {
			if i == 0 {
				x.dim = len(e.Embedding)
				continue
			}
			if len(e.Embedding) != x.dim {
				x.loadErr = fmt.Errorf("%w: document %d has %d dimensions, want %d",
					ErrDimensionMismatch, i, len(e.Embedding), x.dim)
				return
			}
		}
		x.entries = f.Documents
	})
	return x.loadErr
}

// Search returns up to k entries nearest to vector.
func (x *LocalIndex) Search(ctx context.Context, vector []float32, k int) ([]model.RetrievedDocument, error) {
	if err := x.load(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(x.entries) == 0 || k <= 0 {
		return []model.RetrievedDocument{}, nil
	}
	if len(vector) != x.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d", ErrDimensionMismatch, len(vector), x.dim)
	}

	type scored struct {
		idx  int
		dist float64
	}
	ranked := make([]scored, len(x.entries))
	for i := range x.entries {
		ranked[i] = scored{idx: i, dist: squaredL2(vector, x.entries[i].Embedding)}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].dist < ranked[b].dist
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]model.RetrievedDocument, 0, k)
	for _, r := range ranked[:k] {
		e := x.entries[r.idx]
		out = append(out, model.RetrievedDocument{
			Content:  e.Content,
			Score:    r.dist,
			Metadata: e.Metadata,
		})
	}
	return out, nil
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
