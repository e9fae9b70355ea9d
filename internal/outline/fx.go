package outline

import (
	"github.com/smallbiznis/teamspace/internal/outline/repository"
	"github.com/smallbiznis/teamspace/internal/outline/service"
	"go.uber.org/fx"
)

var Module = fx.Module("outline.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
