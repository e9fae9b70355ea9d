package verification

import (
	"github.com/smallbiznis/teamspace/internal/verification/repository"
	"github.com/smallbiznis/teamspace/internal/verification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("verification.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
