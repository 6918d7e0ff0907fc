package model

import "fmt"

// SourceKey is the metadata key that carries a chunk's citation id.
const SourceKey = "id"

// RetrievedDocument is one chunk returned by a similarity search.
type RetrievedDocument struct {
	Content  string         `json:"content"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// SourceID returns the chunk's id metadata, or nil when it is absent.
func (d RetrievedDocument) SourceID() *string {
	v, ok := d.Metadata[SourceKey]
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	return &s
}

// QueryResult is everything one run produced.
type QueryResult struct {
	QueryID     string                `json:"query_id"`
	CustomerID  string                `json:"customer_id"`
	Question    string                `json:"question"`
	Invitations []InvitationRecord    `json:"invitations"`
	Families    []FamilyLinkingRecord `json:"families"`
	Documents   []RetrievedDocument   `json:"documents,omitempty"`
	Prompt      string                `json:"prompt,omitempty"`
	Answer      string                `json:"answer,omitempty"`
	Sources     []*string             `json:"sources,omitempty"`
}

// NoData reports whether neither record collection matched the customer.
func (r *QueryResult) NoData() bool {
	return len(r.Invitations) == 0 && len(r.Families) == 0
}
