package biz

import "github.com/kart-io/usrsp-rag/internal/model"

// ExtractSources returns one source id per document, in order.
// Documents without an id yield nil.
func ExtractSources(docs []model.RetrievedDocument) []*string {
	out := make([]*string, len(docs))
	for i := range docs {
		out[i] = docs[i].SourceID()
	}
	return out
}
