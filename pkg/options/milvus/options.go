// Package milvusopts provides options for Milvus client configuration.
package milvusopts

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/usrsp-rag/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options contains Milvus client configuration.
type Options struct {
	// Address is the Milvus server address (host:port).
	Address string `json:"address" mapstructure:"address"`

	// Database is the database name to use.
	Database string `json:"database" mapstructure:"database"`

	// Username for authentication.
	Username string `json:"username" mapstructure:"username"`

	// Password for authentication.
	Password string `json:"-" mapstructure:"password"`

	// Timeout bounds connection establishment.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// VectorField is the ANN field searched in every collection.
	VectorField string `json:"vector-field" mapstructure:"vector-field"`

	// ContentField holds the chunk text.
	ContentField string `json:"content-field" mapstructure:"content-field"`

	// MetadataFields are returned alongside each hit and exposed as document metadata.
	MetadataFields []string `json:"metadata-fields" mapstructure:"metadata-fields"`

	// NProbe is the IVF search parameter.
	NProbe int `json:"nprobe" mapstructure:"nprobe"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Address:        "localhost:19530",
		Database:       "default",
		Timeout:        30 * time.Second,
		VectorField:    "embedding",
		ContentField:   "content",
		MetadataFields: []string{"id", "source", "page"},
		NProbe:         16,
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "milvus."
	fs.StringVar(&o.Address, p+"address", o.Address, "Milvus server address (host:port).")
	fs.StringVar(&o.Database, p+"database", o.Database, "Milvus database name.")
	fs.StringVar(&o.Username, p+"username", o.Username, "Milvus username for authentication.")
	fs.StringVar(&o.Password, p+"password", o.Password, "Milvus password for authentication.")
	fs.DurationVar(&o.Timeout, p+"timeout", o.Timeout, "Connection timeout.")
	fs.StringVar(&o.VectorField, p+"vector-field", o.VectorField, "Name of the float vector field to search.")
	fs.StringVar(&o.ContentField, p+"content-field", o.ContentField, "Name of the VARCHAR field holding chunk text.")
	fs.StringSliceVar(&o.MetadataFields, p+"metadata-fields", o.MetadataFields, "Scalar fields returned as document metadata.")
	fs.IntVar(&o.NProbe, p+"nprobe", o.NProbe, "IVF nprobe search parameter.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Address == "" {
		errs = append(errs, fmt.Errorf("milvus address is required"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("milvus timeout must be positive"))
	}
	if o.VectorField == "" || o.ContentField == "" {
		errs = append(errs, fmt.Errorf("milvus vector-field and content-field are required"))
	}
	if o.NProbe <= 0 {
		errs = append(errs, fmt.Errorf("milvus nprobe must be positive"))
	}
	return errs
}
