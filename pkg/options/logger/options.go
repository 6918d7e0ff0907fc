// Package logger provides logger configuration options for usrsp-rag.
package logger

import (
	"fmt"

	"github.com/kart-io/logger"
	"github.com/kart-io/logger/core"
	"github.com/kart-io/logger/option"
	"github.com/spf13/pflag"

	"github.com/kart-io/usrsp-rag/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options wraps the logger option.LogOption.
//
// Logs default to stderr: stdout is reserved for the query report.
type Options struct {
	*option.LogOption `mapstructure:",squash"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	o := option.DefaultLogOption()
	o.OutputPaths = []string{"stderr"}
	o.Level = "WARN"
	return &Options{LogOption: o}
}

// AddFlags adds flags for logger options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "log."
	fs.StringVar(&o.Engine, p+"engine", o.Engine, "Logging engine (zap|slog).")
	fs.StringVar(&o.Level, p+"level", o.Level, "Log level (DEBUG|INFO|WARN|ERROR|FATAL).")
	fs.StringVar(&o.Format, p+"format", o.Format, "Log format (json|console).")
	fs.StringSliceVar(&o.OutputPaths, p+"output-paths", o.OutputPaths, "Output paths for logs.")
	fs.BoolVar(&o.Development, p+"development", o.Development, "Enable development mode.")
	fs.BoolVar(&o.DisableCaller, p+"disable-caller", o.DisableCaller, "Disable caller detection.")
	fs.BoolVar(&o.DisableStacktrace, p+"disable-stacktrace", o.DisableStacktrace, "Disable stacktrace capture.")
	fs.StringVar(&o.OTLPEndpoint, p+"otlp-endpoint", o.OTLPEndpoint, "OTLP endpoint URL for log export.")
}

// Validate validates the logger options.
func (o *Options) Validate() []error {
	if o == nil || o.LogOption == nil {
		return []error{fmt.Errorf("log options cannot be nil")}
	}
	if _, err := core.ParseLevel(o.Level); err != nil {
		return []error{fmt.Errorf("log.level: %w", err)}
	}
	if len(o.OutputPaths) == 0 {
		return []error{fmt.Errorf("log.output-paths must not be empty")}
	}
	return nil
}

// Complete completes the logger options with defaults.
func (o *Options) Complete() error {
	return nil
}

// AddInitialField attaches a field to every log entry.
func (o *Options) AddInitialField(key string, value any) {
	if o.InitialFields == nil {
		o.InitialFields = make(map[string]interface{})
	}
	o.InitialFields[key] = value
}

// Init initializes the global logger with the options.
func (o *Options) Init() error {
	if err := o.LogOption.Validate(); err != nil {
		return fmt.Errorf("invalid log options: %w", err)
	}
	log, err := logger.New(o.LogOption)
	if err != nil {
		return err
	}
	logger.SetGlobal(log)
	return nil
}
