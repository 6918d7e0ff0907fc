package query

import (
	"fmt"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/kart-io/usrsp-rag/pkg/infra/app"
	llmopts "github.com/kart-io/usrsp-rag/pkg/options/llm"
	logopts "github.com/kart-io/usrsp-rag/pkg/options/logger"
	milvusopts "github.com/kart-io/usrsp-rag/pkg/options/milvus"
	mongodbopts "github.com/kart-io/usrsp-rag/pkg/options/mongodb"
	qdrantopts "github.com/kart-io/usrsp-rag/pkg/options/qdrant"
	queryopts "github.com/kart-io/usrsp-rag/pkg/options/query"
	tracingopts "github.com/kart-io/usrsp-rag/pkg/options/tracing"
)

var _ app.CliOptions = (*Options)(nil)

// Options contains all usrsp-rag options.
type Options struct {
	// Log contains logger configuration.
	Log *logopts.Options `json:"log" mapstructure:"log"`

	// MongoDB contains the record database connection.
	MongoDB *mongodbopts.Options `json:"mongodb" mapstructure:"mongodb"`

	// Records selects the record backend and collections.
	Records *queryopts.RecordOptions `json:"records" mapstructure:"records"`

	// Vector selects the similarity search backend.
	Vector *queryopts.VectorOptions `json:"vector" mapstructure:"vector"`

	// Milvus contains Milvus configuration, used when vector.backend=milvus.
	Milvus *milvusopts.Options `json:"milvus" mapstructure:"milvus"`

	// Qdrant contains Qdrant configuration, used when vector.backend=qdrant.
	Qdrant *qdrantopts.Options `json:"qdrant" mapstructure:"qdrant"`

	// Embedding contains embedding provider configuration.
	Embedding *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`

	// Chat contains chat provider configuration.
	Chat *llmopts.ProviderOptions `json:"chat" mapstructure:"chat"`

	// Tracing contains OpenTelemetry configuration.
	Tracing *tracingopts.Options `json:"tracing" mapstructure:"tracing"`

	// Metrics controls the Prometheus textfile export.
	Metrics *queryopts.MetricsOptions `json:"metrics" mapstructure:"metrics"`

	// Report controls the stdout report.
	Report *queryopts.ReportOptions `json:"report" mapstructure:"report"`
}

// NewOptions creates Options with defaults.
func NewOptions() *Options {
	return &Options{
		Log:       logopts.NewOptions(),
		MongoDB:   mongodbopts.NewOptions(),
		Records:   queryopts.NewRecordOptions(),
		Vector:    queryopts.NewVectorOptions(),
		Milvus:    milvusopts.NewOptions(),
		Qdrant:    qdrantopts.NewOptions(),
		Embedding: llmopts.NewEmbeddingOptions(),
		Chat:      llmopts.NewChatOptions(),
		Tracing:   tracingopts.NewOptions(),
		Metrics:   queryopts.NewMetricsOptions(),
		Report:    queryopts.NewReportOptions(),
	}
}

// Flags returns flags grouped by section.
func (o *Options) Flags() (fss app.NamedFlagSets) {
	o.Log.AddFlags(fss.FlagSet("log"))
	o.MongoDB.AddFlags(fss.FlagSet("mongodb"))
	o.Records.AddFlags(fss.FlagSet("records"))
	o.Vector.AddFlags(fss.FlagSet("vector"))
	o.Milvus.AddFlags(fss.FlagSet("milvus"))
	o.Qdrant.AddFlags(fss.FlagSet("qdrant"))
	o.Embedding.AddFlags(fss.FlagSet("embedding"), "embedding")
	o.Chat.AddFlags(fss.FlagSet("chat"), "chat")
	o.Tracing.AddFlags(fss.FlagSet("tracing"))
	o.Metrics.AddFlags(fss.FlagSet("metrics"))
	o.Report.AddFlags(fss.FlagSet("report"))
	return fss
}

// Complete fills secrets from the environment and derived defaults.
func (o *Options) Complete() error {
	if err := o.Log.Complete(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err := o.MongoDB.Complete(); err != nil {
		return fmt.Errorf("mongodb: %w", err)
	}
	if err := o.Embedding.Complete(); err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	if err := o.Chat.Complete(); err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	return nil
}

// Validate checks the options. Backend-specific sections are only checked
// when their backend is selected.
func (o *Options) Validate() error {
	errs := []error{}

	errs = append(errs, o.Log.Validate()...)
	errs = append(errs, o.Records.Validate()...)
	errs = append(errs, o.Vector.Validate()...)
	if o.Records.Backend == queryopts.RecordBackendMongoDB {
		errs = append(errs, o.MongoDB.Validate()...)
	}
	switch o.Vector.Backend {
	case queryopts.VectorBackendMilvus:
		errs = append(errs, o.Milvus.Validate()...)
	case queryopts.VectorBackendQdrant:
		errs = append(errs, o.Qdrant.Validate()...)
	}
	errs = append(errs, o.Embedding.Validate()...)
	errs = append(errs, o.Chat.Validate()...)
	errs = append(errs, o.Tracing.Validate()...)
	errs = append(errs, o.Metrics.Validate()...)
	errs = append(errs, o.Report.Validate()...)

	return utilerrors.NewAggregate(errs)
}
