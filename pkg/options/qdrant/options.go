// Package qdrantopts provides options for the Qdrant gRPC client.
package qdrantopts

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/usrsp-rag/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options contains Qdrant client configuration.
type Options struct {
	// Host is the Qdrant server host.
	Host string `json:"host" mapstructure:"host"`

	// Port is the Qdrant gRPC port.
	Port int `json:"port" mapstructure:"port"`

	// APIKey is sent as the api-key request header when set.
	APIKey string `json:"-" mapstructure:"api-key"`

	// Timeout bounds the initial health check.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// ContentField is the payload key holding chunk text.
	ContentField string `json:"content-field" mapstructure:"content-field"`

	// VectorName selects a named vector; empty uses the default vector.
	VectorName string `json:"vector-name" mapstructure:"vector-name"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Host:         "localhost",
		Port:         6334,
		Timeout:      10 * time.Second,
		ContentField: "text",
	}
}

// Address returns host:port.
func (o *Options) Address() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "qdrant."
	fs.StringVar(&o.Host, p+"host", o.Host, "Qdrant server host.")
	fs.IntVar(&o.Port, p+"port", o.Port, "Qdrant gRPC port.")
	fs.StringVar(&o.APIKey, p+"api-key", o.APIKey, "Qdrant API key.")
	fs.DurationVar(&o.Timeout, p+"timeout", o.Timeout, "Timeout for the initial health check.")
	fs.StringVar(&o.ContentField, p+"content-field", o.ContentField, "Payload key holding chunk text.")
	fs.StringVar(&o.VectorName, p+"vector-name", o.VectorName, "Named vector to search; empty for the default vector.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Host == "" {
		errs = append(errs, fmt.Errorf("qdrant host is required"))
	}
	if o.Port <= 0 || o.Port > 65535 {
		errs = append(errs, fmt.Errorf("qdrant port must be between 1 and 65535"))
	}
	if o.ContentField == "" {
		errs = append(errs, fmt.Errorf("qdrant content-field is required"))
	}
	return errs
}
