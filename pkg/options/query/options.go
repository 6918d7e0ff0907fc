// Package query provides options for the record, vector, report and
// metrics stages of a customer query.
package query

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/kart-io/usrsp-rag/pkg/options"
	"github.com/kart-io/usrsp-rag/pkg/validator"
)

// Record backends.
const (
	RecordBackendMongoDB = "mongodb"
	RecordBackendFixture = "fixture"
)

// Vector backends.
const (
	VectorBackendLocal  = "local"
	VectorBackendMilvus = "milvus"
	VectorBackendQdrant = "qdrant"
)

var (
	_ options.IOptions = (*RecordOptions)(nil)
	_ options.IOptions = (*VectorOptions)(nil)
	_ options.IOptions = (*ReportOptions)(nil)
	_ options.IOptions = (*MetricsOptions)(nil)
)

// RecordOptions selects where invitation and family records come from.
type RecordOptions struct {
	Backend                 string `json:"backend" mapstructure:"backend" validate:"oneof=mongodb fixture"`
	InvitationCollection    string `json:"invitation-collection" mapstructure:"invitation-collection" validate:"collection"`
	FamilyLinkingCollection string `json:"family-collection" mapstructure:"family-collection" validate:"collection"`

	// FixturePath is a JSON file with "invitationDetails" and
	// "familyLinkingDetails" arrays. Required by the fixture backend.
	FixturePath string `json:"fixture-path" mapstructure:"fixture-path" validate:"omitempty,file"`
}

// NewRecordOptions returns the defaults used against the usrsp database.
func NewRecordOptions() *RecordOptions {
	return &RecordOptions{
		Backend:                 RecordBackendMongoDB,
		InvitationCollection:    "invitationDetails",
		FamilyLinkingCollection: "familyLinkingDetails",
	}
}

// AddFlags adds flags for record options to the specified FlagSet.
func (o *RecordOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "records."
	fs.StringVar(&o.Backend, p+"backend", o.Backend, "Record backend (mongodb|fixture).")
	fs.StringVar(&o.InvitationCollection, p+"invitation-collection", o.InvitationCollection, "Collection holding invitation records.")
	fs.StringVar(&o.FamilyLinkingCollection, p+"family-collection", o.FamilyLinkingCollection, "Collection holding family-linking records.")
	fs.StringVar(&o.FixturePath, p+"fixture-path", o.FixturePath, "JSON fixture file used by the fixture backend.")
}

// Validate validates the record options.
func (o *RecordOptions) Validate() []error {
	if o == nil {
		return nil
	}
	errs := validator.Global().Struct("records", o)
	if o.Backend == RecordBackendFixture && o.FixturePath == "" {
		errs = append(errs, fmt.Errorf("records.fixture-path is required by the fixture backend"))
	}
	return errs
}

// VectorOptions selects the similarity search backend.
type VectorOptions struct {
	Backend string `json:"backend" mapstructure:"backend" validate:"oneof=local milvus qdrant"`
	// IndexPath is the directory holding index.json for the local backend.
	IndexPath  string `json:"index-path" mapstructure:"index-path" validate:"dirpath_or_missing"`
	Collection string `json:"collection" mapstructure:"collection" validate:"collection"`
}

// NewVectorOptions returns the defaults: a local index under ./chroma.
func NewVectorOptions() *VectorOptions {
	return &VectorOptions{
		Backend:    VectorBackendLocal,
		IndexPath:  "chroma",
		Collection: "langchain",
	}
}

// AddFlags adds flags for vector options to the specified FlagSet.
func (o *VectorOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "vector."
	fs.StringVar(&o.Backend, p+"backend", o.Backend, "Vector backend (local|milvus|qdrant).")
	fs.StringVar(&o.IndexPath, p+"index-path", o.IndexPath, "Directory of the persisted local index.")
	fs.StringVar(&o.Collection, p+"collection", o.Collection, "Collection name in Milvus or Qdrant.")
}

// Validate validates the vector options.
func (o *VectorOptions) Validate() []error {
	if o == nil {
		return nil
	}
	return validator.Global().Struct("vector", o)
}

// ReportOptions controls the stdout report.
type ReportOptions struct {
	// Color adds coloured labels when stdout is a terminal.
	Color bool `json:"color" mapstructure:"color"`
}

// NewReportOptions returns plain, uncoloured output.
func NewReportOptions() *ReportOptions {
	return &ReportOptions{}
}

// AddFlags adds flags for report options to the specified FlagSet.
func (o *ReportOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "report."
	fs.BoolVar(&o.Color, p+"color", o.Color, "Colour report labels when stdout is a terminal.")
}

// Validate validates the report options.
func (o *ReportOptions) Validate() []error {
	return nil
}

// MetricsOptions controls where per-run metrics go.
type MetricsOptions struct {
	// Textfile is written in Prometheus text format after the run.
	// Empty disables the export.
	Textfile string `json:"textfile" mapstructure:"textfile"`
	// Namespace prefixes every metric name.
	Namespace string `json:"namespace" mapstructure:"namespace" validate:"required,excludesall=.-"`
}

// NewMetricsOptions returns metrics options with export disabled.
func NewMetricsOptions() *MetricsOptions {
	return &MetricsOptions{Namespace: "usrsp_rag"}
}

// AddFlags adds flags for metrics options to the specified FlagSet.
func (o *MetricsOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "metrics."
	fs.StringVar(&o.Textfile, p+"textfile", o.Textfile, "Write Prometheus metrics to this file after the run (node_exporter textfile format).")
	fs.StringVar(&o.Namespace, p+"namespace", o.Namespace, "Metric name namespace.")
}

// Validate validates the metrics options.
func (o *MetricsOptions) Validate() []error {
	if o == nil {
		return nil
	}
	errs := validator.Global().Struct("metrics", o)
	if o.Textfile != "" && o.Textfile[len(o.Textfile)-1] == '/' {
		errs = append(errs, fmt.Errorf("metrics.textfile must be a file path, got directory %q", o.Textfile))
	}
	return errs
}
