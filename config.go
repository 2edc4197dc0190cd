package depot

import (
	opentracing "github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

// TracingConfig for the jaeger tracer
type TracingConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Service string `mapstructure:"service" json:"service,omitempty" yaml:"service,omitempty"`
	Agent   string `mapstructure:"agent" json:"agent,omitempty" yaml:"agent,omitempty"`
}

// MetricsConfig for pushing the metrics of a command to a prometheus push gateway
type MetricsConfig struct {
	PushGateway string `mapstructure:"push_gateway" json:"push_gateway,omitempty" yaml:"push_gateway,omitempty"`
	Job         string `mapstructure:"job" json:"job,omitempty" yaml:"job,omitempty"`
}

// Config for a depot runtime
type Config struct {
	Metadata string        `mapstructure:"metadata" json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Blobs    string        `mapstructure:"blobs" json:"blobs,omitempty" yaml:"blobs,omitempty"`
	LogLevel string        `mapstructure:"log_level" json:"log_level,omitempty" yaml:"log_level,omitempty"`
	Tracing  TracingConfig `mapstructure:"tracing" json:"tracing,omitempty" yaml:"tracing,omitempty"`
	Metrics  MetricsConfig `mapstructure:"metrics" json:"metrics,omitempty" yaml:"metrics,omitempty"`

	logger *zap.Logger
	tracer opentracing.Tracer
}

// Defaults fills in the unset locations
func (c *Config) Defaults() {
	if c.Metadata == "" {
		c.Metadata = ".depot"
	}
	if c.Blobs == "" {
		c.Blobs = ".depot/blobs"
	}
	if c.Tracing.Service == "" {
		c.Tracing.Service = "depot"
	}
	if c.Metrics.Job == "" {
		c.Metrics.Job = "depot"
	}
}

// Logger for the runtime, never nil
func (c *Config) Logger() *zap.Logger {
	if c.logger == nil {
		return zap.NewNop()
	}
	return c.logger
}

// Tracer for the runtime, never nil
func (c *Config) Tracer() opentracing.Tracer {
	if c.tracer == nil {
		return opentracing.NoopTracer{}
	}
	return c.tracer
}

// WithLogger sets the logger
func (c *Config) WithLogger(l *zap.Logger) *Config {
	c.logger = l
	return c
}

// WithTracer sets the tracer
func (c *Config) WithTracer(tr opentracing.Tracer) *Config {
	c.tracer = tr
	return c
}

// NewConfig creates a config with the defaults applied
func NewConfig(tracer opentracing.Tracer, logger *zap.Logger) *Config {
	c := &Config{
		logger: logger,
		tracer: tracer,
	}
	c.Defaults()
	return c
}
