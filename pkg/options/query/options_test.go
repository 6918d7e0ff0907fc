package query_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/usrsp-rag/pkg/options/query"
)

func TestDefaultsAreValid(t *testing.T) {
	assert.Empty(t, query.NewRecordOptions().Validate())
	assert.Empty(t, query.NewVectorOptions().Validate())
	assert.Empty(t, query.NewReportOptions().Validate())
	assert.Empty(t, query.NewMetricsOptions().Validate())
	assert.Equal(t, "chroma", query.NewVectorOptions().IndexPath)
	assert.Equal(t, "invitationDetails", query.NewRecordOptions().InvitationCollection)
	assert.Equal(t, "familyLinkingDetails", query.NewRecordOptions().FamilyLinkingCollection)
}

func TestRecordValidation(t *testing.T) {
	o := query.NewRecordOptions()
	o.Backend = "fixture"
	errs := o.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "records.fixture-path")

	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))
	o.FixturePath = path
	assert.Empty(t, o.Validate())

	o.Backend = "sqlite"
	o.InvitationCollection = "bad name"
	assert.Len(t, o.Validate(), 2)
}

func TestVectorValidation(t *testing.T) {
	o := query.NewVectorOptions()
	o.Backend = "chroma"
	errs := o.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "vector.backend must be one of [local milvus qdrant]", errs[0].Error())
}

func TestMetricsValidation(t *testing.T) {
	o := query.NewMetricsOptions()
	o.Namespace = "usrsp.rag"
	o.Textfile = "out/"
	assert.Len(t, o.Validate(), 2)
}

func TestFlags(t *testing.T) {
	rec := query.NewRecordOptions()
	vec := query.NewVectorOptions()
	rep := query.NewReportOptions()
	met := query.NewMetricsOptions()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	rec.AddFlags(fs)
	vec.AddFlags(fs)
	rep.AddFlags(fs)
	met.AddFlags(fs)

	require.NoError(t, fs.Parse([]string{
		"--records.backend=fixture",
		"--vector.index-path=/tmp/idx",
		"--vector.backend=qdrant",
		"--report.color",
		"--metrics.textfile=/tmp/m.prom",
	}))
	assert.Equal(t, "fixture", rec.Backend)
	assert.Equal(t, "/tmp/idx", vec.IndexPath)
	assert.Equal(t, "qdrant", vec.Backend)
	assert.True(t, rep.Color)
	assert.Equal(t, "/tmp/m.prom", met.Textfile)
}
