package query

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/usrsp-rag/internal/query/store"
	queryopts "github.com/kart-io/usrsp-rag/pkg/options/query"
)

const fixtureJSON = `{
  "invitationDetails": [
    {"_id": "inv-1", "inviterGcifId": "C123", "inviteeGcifId": "C456", "status": "accepted"},
    {"_id": "inv-2", "inviterGcifId": "C789", "inviteeGcifId": "C555", "status": "pending"}
  ],
  "familyLinkingDetails": [
    {"_id": "fam-1", "familyMembers": [{"inviterGcifId": "C456", "inviteeGcifId": "C123"}]}
  ]
}`

const indexJSON = `{"documents": [
  {"content": "Invitations expire after 30 days.", "metadata": {"id": "faq-1"}, "embedding": [1, 0]},
  {"content": "Family links need both parties.", "metadata": {"id": "faq-2"}, "embedding": [0, 1]},
  {"content": "Untagged chunk.", "embedding": [0.9, 0.1]}
]}`

type fakeOllama struct {
	generates atomic.Int32
	embeds    atomic.Int32
	prompt    atomic.Value
}

func newFakeOllama(t *testing.T) (*fakeOllama, string) {
	t.Helper()
	f := &fakeOllama{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/embed":
			f.embeds.Add(1)
			_, _ = w.Write([]byte(`{"model":"nomic-embed-text","embeddings":[[1,0]]}`))
		case "/api/generate":
			f.generates.Add(1)
			var req struct {
				Prompt string `json:"prompt"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			f.prompt.Store(req.Prompt)
			_, _ = w.Write([]byte(`{"model":"llama2","response":"C123 invited C456.","done":true}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return f, srv.URL
}

func testOptions(t *testing.T, ollamaURL string) *Options {
	t.Helper()
	dir := t.TempDir()
	fixture := filepath.Join(dir, "records.json")
	require.NoError(t, os.WriteFile(fixture, []byte(fixtureJSON), 0o600))

	indexDir := filepath.Join(dir, "chroma")
	require.NoError(t, os.MkdirAll(indexDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(indexDir, store.LocalIndexFile), []byte(indexJSON), 0o600))

	opts := NewOptions()
	opts.Records.Backend = queryopts.RecordBackendFixture
	opts.Records.FixturePath = fixture
	opts.Vector.IndexPath = indexDir
	opts.Embedding.BaseURL = ollamaURL
	opts.Chat.BaseURL = ollamaURL
	opts.Metrics.Textfile = filepath.Join(dir, "usrsp_rag.prom")
	require.NoError(t, opts.Complete())
	require.NoError(t, opts.Validate())
	return opts
}

func TestRunAnswersFromFixtureAndLocalIndex(t *testing.T) {
	ollama, url := newFakeOllama(t)
	opts := testOptions(t, url)

	var out bytes.Buffer
	result, err := Run(t.Context(), opts, "Who did C123 invite?", "C123", &out)
	require.NoError(t, err)

	assert.Equal(t, int32(1), ollama.embeds.Load())
	assert.Equal(t, int32(1), ollama.generates.Load())
	assert.Len(t, result.Invitations, 1)
	assert.Len(t, result.Families, 1)
	assert.Len(t, result.Documents, 3)
	assert.Equal(t, "faq-1", *result.Sources[0])
	assert.Nil(t, result.Sources[1])

	prompt, _ := ollama.prompt.Load().(string)
	assert.Contains(t, prompt, "Invitations expire after 30 days.")
	assert.Contains(t, prompt, "Who did C123 invite?")
	assert.Contains(t, prompt, `"inviterGcifId":"C123"`)

	report := out.String()
	assert.True(t, strings.HasPrefix(report, "Invitation data: "), report)
	assert.Contains(t, report, "\nFamily data: ")
	assert.True(t, strings.HasSuffix(report,
		"Response: C123 invited C456.\nSources: [\"faq-1\",null,\"faq-2\"]\n"), report)

	prom, err := os.ReadFile(opts.Metrics.Textfile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `usrsp_rag_runs_total{outcome="answered"} 1`)
}

func TestRunStopsWhenCustomerHasNoRecords(t *testing.T) {
	ollama, url := newFakeOllama(t)
	opts := testOptions(t, url)
	opts.Vector.IndexPath = filepath.Join(t.TempDir(), "missing")

	var out bytes.Buffer
	result, err := Run(t.Context(), opts, "anything", "C000", &out)
	require.NoError(t, err)
	assert.True(t, result.NoData())

	assert.Equal(t, "Invitation data: []\nFamily data: []\nNo data found for customer ID: C000\n", out.String())
	assert.Zero(t, ollama.embeds.Load())
	assert.Zero(t, ollama.generates.Load())
}

func TestNewAppRequiresTwoArguments(t *testing.T) {
	cmd := NewApp().Command()
	cmd.SetArgs([]string{"only-a-question"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	require.Error(t, cmd.Execute())
}

func TestRequireCollection(t *testing.T) {
	exists := func(_ context.Context, name string) (bool, error) { return name == "langchain", nil }
	require.NoError(t, requireCollection(t.Context(), exists, "langchain"))

	err := requireCollection(t.Context(), exists, "docs")
	require.ErrorIs(t, err, store.ErrIndexNotFound)
	assert.Contains(t, err.Error(), `"docs"`)

	boom := errors.New("unavailable")
	failing := func(context.Context, string) (bool, error) { return false, boom }
	assert.ErrorIs(t, requireCollection(t.Context(), failing, "langchain"), boom)
}
