package email

import (
	"github.com/smallbiznis/teamspace/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.email",
	fx.Provide(NewFromConfig),
	fx.Provide(NewDispatcher),
)

func NewFromConfig(log *zap.Logger, cfg config.Config) Provider {
	if !cfg.Email.Enabled {
		log.Info("email delivery disabled, using noop provider")
		return &NoOpProvider{}
	}
	return NewSMTP(Config{
		Host:     cfg.Email.SMTPHost,
		Port:     cfg.Email.SMTPPort,
		Username: cfg.Email.SMTPUsername,
		Password: cfg.Email.SMTPPassword,
		From:     cfg.Email.SMTPFrom,
	})
}
