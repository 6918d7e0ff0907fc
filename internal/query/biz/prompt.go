package biz

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/kart-io/usrsp-rag/internal/model"
	"github.com/kart-io/usrsp-rag/pkg/utils/json"
)

// ContextSeparator joins retrieved document contents in the prompt.
const ContextSeparator = "\n\n---\n\n"

// DefaultPromptTemplate is the fixed prompt. Slots are filled by name.
// The text is sent as a plain completion, so no chat role prefix such as
// "Human: " is prepended.
const DefaultPromptTemplate = `
Answer the question based only on the following context and FamilyLinkingDetails data and InvitationDetails data:

Context:
{{.context}}

FamilyLinkingDetails Data:
{{.family_data}}

InvitationDetails Data:
{{.invitation_data}}
---

Answer the question based on the above context: {{.question}}
`

var promptTemplate = template.Must(template.New("prompt").Option("missingkey=error").Parse(DefaultPromptTemplate))

// PromptInput holds the four values substituted into the template.
type PromptInput struct {
	Documents   []model.RetrievedDocument
	Invitations []model.InvitationRecord
	Families    []model.FamilyLinkingRecord
	Question    string
}

// AssemblePrompt renders the template. It is deterministic: record maps
// are rendered with sorted keys and the question is inserted verbatim.
func AssemblePrompt(in PromptInput) (string, error) {
	invitations, err := RenderInvitations(in.Invitations)
	if err != nil {
		return "", err
	}
	families, err := RenderFamilies(in.Families)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if err := promptTemplate.Execute(&b, map[string]string{
		"context":         JoinContext(in.Documents),
		"family_data":     families,
		"invitation_data": invitations,
		"question":        in.Question,
	}); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return b.String(), nil
}

// JoinContext joins document contents with ContextSeparator.
func JoinContext(docs []model.RetrievedDocument) string {
	parts := make([]string, len(docs))
	for i := range docs {
		parts[i] = docs[i].Content
	}
	return strings.Join(parts, ContextSeparator)
}

// RenderInvitations renders records as a compact JSON array.
func RenderInvitations(records []model.InvitationRecord) (string, error) {
	flat := make([]map[string]any, len(records))
	for i := range records {
		flat[i] = records[i].Flatten()
	}
	return renderJSON("invitation", flat)
}

// RenderFamilies renders records as a compact JSON array.
func RenderFamilies(records []model.FamilyLinkingRecord) (string, error) {
	flat := make([]map[string]any, len(records))
	for i := range records {
		flat[i] = records[i].Flatten()
	}
	return renderJSON("family linking", flat)
}

func renderJSON(kind string, v any) (string, error) {
	s, err := json.MarshalString(v)
	if err != nil {
		return "", fmt.Errorf("render %s records: %w", kind, err)
	}
	return s, nil
}
