package biz

import (
	"context"
	"fmt"

	"github.com/kart-io/usrsp-rag/internal/model"
	"github.com/kart-io/usrsp-rag/internal/query/store"
	logctx "github.com/kart-io/usrsp-rag/pkg/infra/logger"
	"github.com/kart-io/usrsp-rag/pkg/llm"
)

// TopK is the number of nearest documents requested on every search.
const TopK = 5

// Retriever 负责问题向量化与相似度检索。
type Retriever struct {
	store    store.VectorStore
	embedder llm.EmbeddingProvider
}

// NewRetriever 创建检索器实例。
func NewRetriever(vectors store.VectorStore, embedder llm.EmbeddingProvider) *Retriever {
	return &Retriever{store: vectors, embedder: embedder}
}

// Retrieve 原样向量化问题，并按后端排序返回最多 TopK 个文档，不做阈值过滤。
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]model.RetrievedDocument, error) {
	vector, err := r.embedder.EmbedSingle(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	docs, err := r.store.Search(ctx, vector, TopK)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}

	logctx.GetLogger(ctx).Debugw("similarity search finished", "k", TopK, "returned", len(docs), "embedder", r.embedder.Name())
	return docs, nil
}
