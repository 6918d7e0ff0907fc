package store

import (
	"context"
	"fmt"

	"github.com/kart-io/usrsp-rag/internal/model"
	"github.com/kart-io/usrsp-rag/pkg/component/milvus"
)

// milvusSearcher is the part of the Milvus client the store needs.
type milvusSearcher interface {
	Search(ctx context.Context, collection string, vector []float32, topK int, outputFields []string) ([]milvus.SearchResult, error)
}

// MilvusVectorStore searches one Milvus collection.
type MilvusVectorStore struct {
	client         milvusSearcher
	collection     string
	contentField   string
	metadataFields []string
}

var _ VectorStore = (*MilvusVectorStore)(nil)

// NewMilvusVectorStore creates a store over collection. contentField is
// returned as document content and metadataFields as document metadata.
func NewMilvusVectorStore(client milvusSearcher, collection, contentField string, metadataFields []string) *MilvusVectorStore {
	return &MilvusVectorStore{
		client:         client,
		collection:     collection,
		contentField:   contentField,
		metadataFields: metadataFields,
	}
}

// Search returns up to k hits in Milvus ranking order with Milvus scores.
func (s *MilvusVectorStore) Search(ctx context.Context, vector []float32, k int) ([]model.RetrievedDocument, error) {
	fields := make([]string, 0, len(s.metadataFields)+1)
	fields = append(fields, s.contentField)
	fields = append(fields, s.metadataFields...)

	hits, err := s.client.Search(ctx, s.collection, vector, k, fields)
	if err != nil {
		return nil, fmt.Errorf("milvus search %s: %w", s.collection, err)
	}

	out := make([]model.RetrievedDocument, 0, len(hits))
	for _, h := range hits {
		doc := model.RetrievedDocument{Score: float64(h.Score)}
		for name, v := range h.Fields {
			if name == s.contentField {
				doc.Content = fmt.Sprint(v)
				continue
			}
			if doc.Metadata == nil {
				doc.Metadata = make(map[string]any, len(h.Fields))
			}
			doc.Metadata[name] = v
		}
		out = append(out, doc)
	}
	return out, nil
}
