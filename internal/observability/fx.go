package observability

import (
	"github.com/smallbiznis/teamspace/internal/config"
	"github.com/smallbiznis/teamspace/internal/observability/metrics"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(provideMetrics),
)

func provideMetrics(cfg config.Config) *metrics.Metrics {
	return metrics.WithConfig(metrics.Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
	})
}
