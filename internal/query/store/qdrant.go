package store

import (
	"context"
	"fmt"

	"github.com/kart-io/usrsp-rag/internal/model"
	"github.com/kart-io/usrsp-rag/pkg/component/qdrant"
)

// qdrantMetadataKey is the payload key LangChain-style loaders nest metadata under.
const qdrantMetadataKey = "metadata"

type qdrantSearcher interface {
	Search(ctx context.Context, collection string, vector []float32, limit uint64) ([]qdrant.SearchResult, error)
}

// QdrantVectorStore searches one Qdrant collection.
type QdrantVectorStore struct {
	client       qdrantSearcher
	collection   string
	contentField string
}

var _ VectorStore = (*QdrantVectorStore)(nil)

// NewQdrantVectorStore creates a store over collection.
func NewQdrantVectorStore(client qdrantSearcher, collection, contentField string) *QdrantVectorStore {
	return &QdrantVectorStore{client: client, collection: collection, contentField: contentField}
}

// Search returns up to k points in Qdrant ranking order with Qdrant scores.
// A nested "metadata" object becomes the document metadata; otherwise every
// payload key except the content field does.
func (s *QdrantVectorStore) Search(ctx context.Context, vector []float32, k int) ([]model.RetrievedDocument, error) {
	if k <= 0 {
		return []model.RetrievedDocument{}, nil
	}
	hits, err := s.client.Search(ctx, s.collection, vector, uint64(k))
	if err != nil {
		return nil, fmt.Errorf("qdrant search %s: %w", s.collection, err)
	}

	out := make([]model.RetrievedDocument, 0, len(hits))
	for _, h := range hits {
		doc := model.RetrievedDocument{Score: float64(h.Score)}
		if v, ok := h.Payload[s.contentField]; ok && v != nil {
			doc.Content = fmt.Sprint(v)
		}
		if nested, ok := h.Payload[qdrantMetadataKey].(map[string]any); ok {
			doc.Metadata = nested
		} else {
			for key, v := range h.Payload {
				if key == s.contentField {
					continue
				}
				if doc.Metadata == nil {
					doc.Metadata = make(map[string]any, len(h.Payload))
				}
				doc.Metadata[key] = v
			}
		}
		out = append(out, doc)
	}
	return out, nil
}
