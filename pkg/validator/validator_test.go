package validator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backendOptions struct {
	Backend    string `mapstructure:"backend" validate:"oneof=local milvus"`
	Collection string `mapstructure:"collection" validate:"collection"`
	IndexPath  string `mapstructure:"index-path" validate:"dirpath_or_missing"`
}

func TestStructReportsConfigKeys(t *testing.T) {
	errs := Global().Struct("vector", &backendOptions{Backend: "chroma", Collection: "docs", IndexPath: t.TempDir()})
	require.Len(t, errs, 1)
	assert.Equal(t, "vector.backend must be one of [local milvus]", errs[0].Error())
}

func TestStructValid(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "not-yet")
	assert.Empty(t, New().Struct("vector", &backendOptions{Backend: "local", Collection: "docs", IndexPath: missing}))
}

func TestCollectionRule(t *testing.T) {
	v := New()
	for _, ok := range []string{"invitationDetails", "_x", "a-b_1"} {
		assert.NoError(t, v.Var(ok, "collection"), ok)
	}
	for _, bad := range []string{"", "1abc", "a b", "a.b", "$x"} {
		assert.Error(t, v.Var(bad, "collection"), bad)
	}
}

func TestDirPathRuleRejectsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o600))

	errs := New().Struct("", &backendOptions{Backend: "local", Collection: "docs", IndexPath: file})
	require.Len(t, errs, 1)
	assert.Equal(t, "index-path must be a directory path", errs[0].Error())
}
