package cmd

import (
	"github.com/oneconcern/depot"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// pushMetrics sends the metrics of this invocation to the push gateway, when one is configured
func pushMetrics() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return pushTo(cfg.Metrics, prometheus.DefaultGatherer)
}

func pushTo(cfg depot.MetricsConfig, g prometheus.Gatherer) error {
	if cfg.PushGateway == "" {
		return nil
	}
	return push.AddFromGatherer(cfg.Job, push.HostnameGroupingKey(), cfg.PushGateway, g)
}
