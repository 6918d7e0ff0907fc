package biz_test

import (
	"context"
	"fmt"

	"github.com/kart-io/usrsp-rag/internal/model"
)

type mockRecordStore struct {
	invitations []model.InvitationRecord
	families    []model.FamilyLinkingRecord
	err         error

	invitationCalls int
	familyCalls     int
	gotIDs          []string
}

func (m *mockRecordStore) FindInvitations(_ context.Context, customerID string) ([]model.InvitationRecord, error) {
	m.invitationCalls++
	m.gotIDs = append(m.gotIDs, customerID)
	if m.err != nil {
		return nil, m.err
	}
	return m.invitations, nil
}

func (m *mockRecordStore) FindFamilyLinks(_ context.Context, customerID string) ([]model.FamilyLinkingRecord, error) {
	m.familyCalls++
	m.gotIDs = append(m.gotIDs, customerID)
	return m.families, nil
}

type mockVectorStore struct {
	docs  []model.RetrievedDocument
	err   error
	calls int
	gotK  []int
}

func (m *mockVectorStore) Search(_ context.Context, _ []float32, k int) ([]model.RetrievedDocument, error) {
	m.calls++
	m.gotK = append(m.gotK, k)
	if m.err != nil {
		return nil, m.err
	}
	if k < len(m.docs) {
		return m.docs[:k], nil
	}
	return m.docs, nil
}

type mockEmbedder struct {
	calls int
	texts []string
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i]))}
	}
	return out, nil
}

func (m *mockEmbedder) EmbedSingle(_ context.Context, text string) ([]float32, error) {
	m.calls++
	m.texts = append(m.texts, text)
	return []float32{float32(len(text))}, nil
}

func (m *mockEmbedder) Name() string { return "mock-embed" }

type mockChat struct {
	answer  string
	err     error
	calls   int
	prompts []string
	systems []string
}

func (m *mockChat) Generate(_ context.Context, prompt, systemPrompt string) (string, error) {
	m.calls++
	m.prompts = append(m.prompts, prompt)
	m.systems = append(m.systems, systemPrompt)
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func (m *mockChat) Name() string { return "mock-chat" }

// sixStoredDocs returns one more chunk than TopK so the limit is observable.
func sixStoredDocs() []model.RetrievedDocument {
	docs := make([]model.RetrievedDocument, 0, 6)
	for i := 0; i < 6; i++ {
		docs = append(docs, model.RetrievedDocument{
			Content:  fmt.Sprintf("chunk %d", i),
			Score:    float64(i) / 10,
			Metadata: map[string]any{"id": fmt.Sprintf("data/faq.pdf:%d:0", i)},
		})
	}
	return docs
}

type fixedID string

func (f fixedID) Generate() string { return string(f) }
