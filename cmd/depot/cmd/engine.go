package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/oneconcern/depot"
	"github.com/oneconcern/depot/pkg/dlogger"
	"github.com/oneconcern/depot/pkg/engine"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	jaeger "github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	jprom "github.com/uber/jaeger-lib/metrics/prometheus"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func initContext() context.Context {
	return context.Background()
}

func loadConfig() (*depot.Config, error) {
	var cfg depot.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Defaults()
	return &cfg, nil
}

// initEngine builds a runtime from the config, the caller closes it
func initEngine() (*engine.Runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := dlogger.GetLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger = logger.With(zap.String("service", cfg.Tracing.Service))

	tr, closer, err := initTracer(cfg, logger)
	if err != nil {
		logger.Info("failed to initialize tracing, falling back to noop tracer", zap.Error(err))
		tr, closer = opentracing.NoopTracer{}, nil
	}

	var opts []engine.Option
	if closer != nil {
		opts = append(opts, engine.Closer(closer))
	}
	return engine.New(cfg.WithLogger(logger).WithTracer(tr), opts...)
}

// withEngine runs fn with a fresh runtime, which is closed whatever fn returns
func withEngine(fn func(context.Context, *engine.Runtime) error) (err error) {
	rt, err := initEngine()
	if err != nil {
		return errors.Wrap(err, "initialize depot")
	}
	defer func() {
		err = multierr.Append(err, rt.Close())
	}()
	return fn(initContext(), rt)
}

func initTracer(cfg *depot.Config, logger *zap.Logger) (opentracing.Tracer, io.Closer, error) {
	if !cfg.Tracing.Enabled {
		return opentracing.NoopTracer{}, nil, nil
	}

	jcfg := jaegercfg.Configuration{
		ServiceName: cfg.Tracing.Service,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: 1,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LocalAgentHostPort: cfg.Tracing.Agent,
		},
	}
	return jcfg.NewTracer(
		jaegercfg.Logger(jaegerLogger{logger: logger}),
		jaegercfg.Metrics(jprom.New()),
	)
}

type jaegerLogger struct {
	logger *zap.Logger
}

func (l jaegerLogger) Error(msg string) {
	l.logger.Error(msg)
}

func (l jaegerLogger) Infof(msg string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(msg, args...))
}
